// Package mock implements timing.Clock with manually controlled time,
// for deterministic tests of the real-time mode (the config watcher's
// debounce timer). It does not back
// virtual simulation time; see pkg/vtime and pkg/clock for that.
package mock

import (
	"sync"
	"time"

	"github.com/butter-bot-machines/desim/pkg/timing"
)

// Clock is a manually-advanced implementation of timing.Clock.
type Clock struct {
	mu      sync.Mutex
	now     time.Time
	timers  []*timer
	tickers []*ticker
}

// New creates a mock clock starting at now.
func New(now time.Time) *Clock {
	return &Clock{now: now}
}

// Now returns the clock's current time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Sleep advances the clock by d, firing anything due along the way.
func (c *Clock) Sleep(d time.Duration) {
	c.Advance(d)
}

// After is equivalent to NewTimer(d).C().
func (c *Clock) After(d time.Duration) <-chan time.Time {
	return c.NewTimer(d).C()
}

// NewTimer schedules a one-shot fire at now+d.
func (c *Clock) NewTimer(d time.Duration) timing.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &timer{clock: c, when: c.now.Add(d), ch: make(chan time.Time, 1), active: true}
	c.timers = append(c.timers, t)
	return t
}

// AfterFunc schedules f to run (in its own goroutine) at now+d.
func (c *Clock) AfterFunc(d time.Duration, f func()) timing.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &timer{clock: c, when: c.now.Add(d), fn: f, active: true}
	c.timers = append(c.timers, t)
	return t
}

// NewTicker schedules repeated fires every d, starting at now+d.
func (c *Clock) NewTicker(d time.Duration) timing.Ticker {
	if d <= 0 {
		panic("mock: non-positive interval for NewTicker")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &ticker{clock: c, period: d, next: c.now.Add(d), ch: make(chan time.Time, 1), active: true}
	c.tickers = append(c.tickers, t)
	return t
}

// Advance moves the clock forward by d, firing every timer/ticker due
// along the way in deadline order, one discrete step per deadline.
// Advance holds the clock's lock until it returns, and AfterFunc
// callbacks run on their own goroutines, so a timer that a callback
// creates or resets is registered only after this Advance returns and
// fires in a later one.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	target := c.now.Add(d)
	for c.now.Before(target) {
		next := target
		for _, t := range c.timers {
			if t.active && t.when.Before(next) {
				next = t.when
			}
		}
		for _, tk := range c.tickers {
			if tk.active && tk.next.Before(next) {
				next = tk.next
			}
		}
		c.now = next

		live := c.timers[:0]
		for _, t := range c.timers {
			if !t.active {
				continue
			}
			if t.when.After(c.now) {
				live = append(live, t)
				continue
			}
			t.fire()
		}
		c.timers = live

		for _, tk := range c.tickers {
			if !tk.active {
				continue
			}
			for !tk.next.After(c.now) {
				tk.fire()
				tk.next = tk.next.Add(tk.period)
			}
		}
	}
}

type timer struct {
	clock  *Clock
	when   time.Time
	ch     chan time.Time
	fn     func()
	active bool
}

func (t *timer) C() <-chan time.Time { return t.ch }

func (t *timer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := t.active
	t.active = false
	return active
}

func (t *timer) Reset(d time.Duration) bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := t.active
	t.active = true
	t.when = t.clock.now.Add(d)
	if !active {
		t.clock.timers = append(t.clock.timers, t)
	}
	return active
}

func (t *timer) fire() {
	if t.fn != nil {
		go t.fn()
	} else {
		select {
		case t.ch <- t.when:
		default:
		}
	}
	t.active = false
}

type ticker struct {
	clock  *Clock
	period time.Duration
	next   time.Time
	ch     chan time.Time
	active bool
}

func (t *ticker) C() <-chan time.Time { return t.ch }

func (t *ticker) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	t.active = false
}

func (t *ticker) fire() {
	select {
	case t.ch <- t.next:
	default:
	}
}

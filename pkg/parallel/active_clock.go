// Package parallel implements the master/worker clock topology: one
// ActiveClock (LocalClock) per worker thread, coordinated by a
// GlobalClock that keeps virtual time monotone and deterministic
// across workers via a fixed-window synchronization barrier (spec §2
// "ActiveClock/GlobalClock", §4.4).
package parallel

import (
	"math/rand/v2"
	"sync"

	"github.com/butter-bot-machines/desim/pkg/action"
	"github.com/butter-bot-machines/desim/pkg/clock"
	"github.com/butter-bot-machines/desim/pkg/logging"
	"github.com/butter-bot-machines/desim/pkg/vtime"
)

// inboxCapacity bounds the control-message channel each ActiveClock
// drains at the start of its window. It is sized generously so a
// cross-clock send (§4.4 "the sender does not block") never blocks in
// practice; an overflow is a sign the caller is scheduling faster than
// windows advance.
const inboxCapacity = 4096

// registeredChannel is an external channel an ActiveClock must drain
// before it may finish a window (§4.4 "Channels registration").
type registeredChannel struct {
	ch      chan interface{}
	handler func(interface{})
}

// ActiveClock is a LocalClock running on a non-master worker thread,
// driven by window-advance messages from a GlobalClock.
type ActiveClock struct {
	ID    int
	Clock *clock.LocalClock

	mu         sync.Mutex
	inbox      chan func(*clock.LocalClock)
	registered []registeredChannel
	rng        *rand.Rand
}

func newActiveClock(id int, dt vtime.Duration, t0 vtime.Time, logger logging.Logger) *ActiveClock {
	return &ActiveClock{
		ID:    id,
		Clock: clock.New(dt, t0, logger.With("worker", id)),
		inbox: make(chan func(*clock.LocalClock), inboxCapacity),
	}
}

// Register adds ch to the set of channels this worker must drain
// before a window is considered complete.
func (a *ActiveClock) Register(ch chan interface{}, handler func(interface{})) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.registered = append(a.registered, registeredChannel{ch: ch, handler: handler})
}

// RNG returns the worker's seeded random source (see SeedAll).
func (a *ActiveClock) RNG() *rand.Rand {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.rng == nil {
		a.rng = rand.New(rand.NewPCG(uint64(a.ID), uint64(a.ID)))
	}
	return a.rng
}

func (a *ActiveClock) seed(seed uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rng = rand.New(rand.NewPCG(seed, uint64(a.ID)))
}

// send posts fn to be applied to this worker's LocalClock at the start
// of its next window (§4.4 "Routing"). The sender blocks only when
// inboxCapacity messages are already pending.
func (a *ActiveClock) send(fn func(*clock.LocalClock)) {
	a.inbox <- fn
}

func (a *ActiveClock) drainInbox() {
	for {
		select {
		case fn := <-a.inbox:
			fn(a.Clock)
		default:
			return
		}
	}
}

func (a *ActiveClock) registeredSnapshot() []registeredChannel {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]registeredChannel, len(a.registered))
	copy(out, a.registered)
	return out
}

// drainRegistered empties every registered channel, yielding until
// each is empty (§4.4: "the worker yields until it is empty").
func (a *ActiveClock) drainRegistered() {
	for {
		progressed := false
		for _, rc := range a.registeredSnapshot() {
			for len(rc.ch) > 0 {
				v := <-rc.ch
				rc.handler(v)
				progressed = true
			}
		}
		if !progressed {
			return
		}
	}
}

// advance drives the worker from its current t to target, never past
// it, as one window of the synchronization protocol (§4.4 step 2-3).
func (a *ActiveClock) advance(target vtime.Time) error {
	a.drainInbox()
	dur := target.Sub(a.Clock.Tau())
	if dur > 0 {
		if _, err := a.Clock.Run(dur); err != nil {
			return err
		}
	}
	a.drainRegistered()
	return nil
}

func (a *ActiveClock) scheduleAt(act *action.Action, t interface{}) {
	a.send(func(c *clock.LocalClock) { c.At(act, t) })
}

func (a *ActiveClock) scheduleAfter(act *action.Action, d interface{}) {
	a.send(func(c *clock.LocalClock) { c.After(act, d) })
}

func (a *ActiveClock) scheduleEvery(act *action.Action, cycle interface{}, n uint32) {
	a.send(func(c *clock.LocalClock) { c.Every(act, cycle, n) })
}

func (a *ActiveClock) scheduleWhen(act, cond *action.Action) {
	a.send(func(c *clock.LocalClock) { c.When(act, cond) })
}

func (a *ActiveClock) schedulePeriodic(act *action.Action, dt vtime.Duration) {
	a.send(func(c *clock.LocalClock) { c.Periodic(act, dt) })
}

func (a *ActiveClock) scheduleProcess(body clock.ProcessBody, cycles int) {
	a.send(func(c *clock.LocalClock) { c.ProcessN(body, cycles) })
}

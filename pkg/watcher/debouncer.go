package watcher

import (
	"sync"
	"time"

	"github.com/butter-bot-machines/desim/pkg/timing"
	"github.com/butter-bot-machines/desim/pkg/timing/real"
)

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// debouncer coalesces rapid file-change notifications into a single
// call, the way the teacher's watcher/concrete debouncer coalesces
// fsnotify bursts before invoking the job queue.
type debouncer struct {
	clock    timing.Clock
	delay    time.Duration
	maxDelay time.Duration

	mu      sync.Mutex
	timers  map[string]timing.Timer
	firstAt map[string]time.Time
	done    chan struct{}
}

func newDebouncer(clock timing.Clock, delay, maxDelay time.Duration) *debouncer {
	if clock == nil {
		clock = real.New()
	}
	return &debouncer{
		clock:   clock,
		delay:   delay,
		maxDelay: maxDelay,
		timers:  make(map[string]timing.Timer),
		firstAt: make(map[string]time.Time),
		done:    make(chan struct{}),
	}
}

func (d *debouncer) debounce(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	select {
	case <-d.done:
		return
	default:
	}

	now := d.clock.Now()
	if _, ok := d.firstAt[key]; !ok {
		d.firstAt[key] = now
	}

	if t, ok := d.timers[key]; ok {
		t.Stop()
	}

	d.timers[key] = d.clock.AfterFunc(d.delay, func() {
		d.mu.Lock()
		elapsed := d.clock.Now().Sub(d.firstAt[key])
		delete(d.timers, key)
		delete(d.firstAt, key)
		d.mu.Unlock()

		select {
		case <-d.done:
			return
		default:
		}
		if d.maxDelay > 0 && elapsed > d.maxDelay+d.delay {
			return
		}
		fn()
	})
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	select {
	case <-d.done:
		return
	default:
		close(d.done)
	}
	for _, t := range d.timers {
		t.Stop()
	}
}

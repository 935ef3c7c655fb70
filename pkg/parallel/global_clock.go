package parallel

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/butter-bot-machines/desim/pkg/action"
	"github.com/butter-bot-machines/desim/pkg/clock"
	"github.com/butter-bot-machines/desim/pkg/config"
	"github.com/butter-bot-machines/desim/pkg/logging"
	"github.com/butter-bot-machines/desim/pkg/vtime"
	"golang.org/x/sync/errgroup"
)

// defaultWindow is used when a GlobalClock is forked with Δt = 0: the
// synchronization protocol still needs windows of finite length
// (§4.4: "if Δt = 0 but parallel clocks exist, a default window is
// used").
const defaultWindow vtime.Duration = 1

// GlobalClock is the user-visible clock once forked: it stays
// authoritative for virtual time and coordinates one ActiveClock per
// worker, synchronizing at each Δt window (spec §2, §4.4).
type GlobalClock struct {
	mu      sync.Mutex
	master  *clock.LocalClock
	workers []*ActiveClock
	window  vtime.Duration
	logger  logging.Logger
	rng     *rand.Rand
	running bool
}

// Fork creates a GlobalClock coordinating workers ActiveClocks, each a
// LocalClock with its own schedule and inbox.
func Fork(master *clock.LocalClock, workers int, logger logging.Logger) *GlobalClock {
	window := master.Dt()
	if window <= 0 {
		window = defaultWindow
	}
	g := &GlobalClock{
		master: master,
		window: window,
		logger: logger,
	}
	g.workers = make([]*ActiveClock, workers)
	for i := range g.workers {
		g.workers[i] = newActiveClock(i+1, master.Dt(), master.Tau(), logger)
	}
	return g
}

// Collapse tears down every worker clock; in-flight processes on those
// clocks are abandoned (spec §3 "collapse tears them down").
func (g *GlobalClock) Collapse() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, w := range g.workers {
		w.Clock.Stop()
	}
	g.workers = nil
}

// Worker returns the ActiveClock for 1-based thread index k.
func (g *GlobalClock) Worker(k int) *ActiveClock {
	g.mu.Lock()
	defer g.mu.Unlock()
	if k < 1 || k > len(g.workers) {
		return nil
	}
	return g.workers[k-1]
}

// WorkerCount returns the number of forked workers.
func (g *GlobalClock) WorkerCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.workers)
}

// Tau returns the master clock's virtual time.
func (g *GlobalClock) Tau() vtime.Time { return g.master.Tau() }

// SeedAll deterministically seeds every worker's RNG (and the
// master's) from a single seed, per §5 "a seed_all(s) operation must
// seed every worker's RNG deterministically from s" and §5.a.
func (g *GlobalClock) SeedAll(seed uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rng = rand.New(rand.NewPCG(seed, 0))
	for _, w := range g.workers {
		w.seed(seed)
	}
}

// Reload applies cfg's window and seed for the *next* fork/run cycle:
// a changed Δt or seed in a watched config file takes effect only once
// the current Run has returned. It never mutates g.window or g.rng
// while a run is in flight (SPEC_FULL.md §4.7).
func (g *GlobalClock) Reload(cfg config.EngineConfig) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running {
		return fmt.Errorf("parallel: cannot reload a GlobalClock while a run is in flight")
	}
	if cfg.Dt > 0 {
		g.window = vtime.Duration(cfg.Dt)
	} else {
		g.window = defaultWindow
	}
	g.rng = rand.New(rand.NewPCG(cfg.Seed, 0))
	for _, w := range g.workers {
		w.seed(cfg.Seed)
	}
	return nil
}

// RNG returns the master's seeded random source (see SeedAll).
func (g *GlobalClock) RNG() *rand.Rand {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(0, 0))
	}
	return g.rng
}

// At schedules a one-shot event at absolute time t on the clock
// identified by thread (0 = master).
func (g *GlobalClock) At(a *action.Action, t interface{}, thread int) error {
	if thread == 0 {
		_, err := g.master.At(a, t)
		return err
	}
	w := g.Worker(thread)
	w.scheduleAt(a, t)
	return nil
}

// After schedules a one-shot event after duration d on the clock
// identified by thread.
func (g *GlobalClock) After(a *action.Action, d interface{}, thread int) error {
	if thread == 0 {
		_, err := g.master.After(a, d)
		return err
	}
	g.Worker(thread).scheduleAfter(a, d)
	return nil
}

// Every schedules a repeater on the clock identified by thread.
func (g *GlobalClock) Every(a *action.Action, cycle interface{}, n uint32, thread int) error {
	if thread == 0 {
		_, err := g.master.Every(a, cycle, n)
		return err
	}
	g.Worker(thread).scheduleEvery(a, cycle, n)
	return nil
}

// When registers a conditional event on the clock identified by thread.
func (g *GlobalClock) When(a, cond *action.Action, thread int) {
	if thread == 0 {
		g.master.When(a, cond)
		return
	}
	g.Worker(thread).scheduleWhen(a, cond)
}

// Periodic registers a Sample on the clock identified by thread.
func (g *GlobalClock) Periodic(a *action.Action, dt vtime.Duration, thread int) {
	if thread == 0 {
		g.master.Periodic(a, dt)
		return
	}
	g.Worker(thread).schedulePeriodic(a, dt)
}

// Process spawns a process on the clock identified by thread.
func (g *GlobalClock) Process(body clock.ProcessBody, cycles int, thread int) {
	if thread == 0 {
		g.master.ProcessN(body, cycles)
		return
	}
	g.Worker(thread).scheduleProcess(body, cycles)
}

// Run drives the master and every worker forward by duration, one
// fixed Δt window at a time (§4.4 "Synchronization protocol"): each
// window, every worker is advanced concurrently via an errgroup
// barrier, then the master itself advances to the window boundary.
func (g *GlobalClock) Run(duration vtime.Duration) (clock.RunResult, error) {
	g.mu.Lock()
	g.running = true
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		g.running = false
		g.mu.Unlock()
	}()

	tEnd := g.master.Tau().Add(duration)

	for g.master.Tau().Before(tEnd) {
		remaining := tEnd.Sub(g.master.Tau())
		step := g.window
		if remaining < step {
			step = remaining
		}
		target := g.master.Tau().Add(step)

		g.mu.Lock()
		workers := make([]*ActiveClock, len(g.workers))
		copy(workers, g.workers)
		g.mu.Unlock()

		eg, _ := errgroup.WithContext(context.Background())
		for _, w := range workers {
			w := w
			eg.Go(func() error {
				if err := w.advance(target); err != nil {
					g.logger.Error("worker propagation", "worker", w.ID, "error", err)
					return err
				}
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return clock.RunResult{}, err
		}

		if _, err := g.master.Run(step); err != nil {
			return clock.RunResult{}, err
		}
	}

	return clock.RunResult{
		ClockEvents: g.master.EventCount(),
		SampleSteps: g.master.SampleSteps(),
		T:           g.master.Tau(),
	}, nil
}

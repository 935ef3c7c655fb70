// Package clock implements LocalClock: the core scheduler that owns a
// Schedule, a virtual time t, a sample interval Δt, a set of process
// handles, and the dispatcher hot loop that drives them all forward
// (spec §2 "LocalClock", §4.1 "Dispatcher").
package clock

import (
	"sync"

	"github.com/butter-bot-machines/desim/pkg/action"
	desimerrors "github.com/butter-bot-machines/desim/pkg/errors"
	"github.com/butter-bot-machines/desim/pkg/logging"
	"github.com/butter-bot-machines/desim/pkg/schedule"
	"github.com/butter-bot-machines/desim/pkg/vtime"
)

// K is the default divisor used to auto-install a condition poll
// cadence when Δt = 0 but conditions are registered (§4.1 "Condition
// polling cadence"). Chosen so §8 scenario D resolves at the expected
// tick without busy-spinning.
const K = 1000

// RunResult is the value returned by Run.
type RunResult struct {
	ClockEvents int
	SampleSteps int
	T           vtime.Time
}

// LocalClock is the core scheduler. It is single-writer: only its own
// dispatcher goroutine (the goroutine that calls Run) mutates t,
// counters, and the process set; other goroutines only read through
// the exported accessors, which take the lock.
type LocalClock struct {
	mu sync.RWMutex

	t  vtime.Time
	t0 vtime.Time
	dt vtime.Duration

	schedule *schedule.Schedule
	logger   logging.Logger

	processes map[uint64]*ProcessHandle
	nextProc  uint64

	nowQueueMu sync.Mutex
	nowQueue   []nowRequest

	clockEvents int
	sampleSteps int

	stopRequested bool
}

// New creates an idle LocalClock with sample interval dt and origin
// t0 (spec §3 "Lifecycles").
func New(dt vtime.Duration, t0 vtime.Time, logger logging.Logger) *LocalClock {
	return &LocalClock{
		t:         t0,
		t0:        t0,
		dt:        dt,
		schedule:  schedule.New(),
		logger:    logger,
		processes: make(map[uint64]*ProcessHandle),
	}
}

// Tau returns the clock's current virtual time.
func (c *LocalClock) Tau() vtime.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.t
}

// EventCount and SampleSteps report the cumulative counters across the
// clock's lifetime (reset by Reset).
func (c *LocalClock) EventCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.clockEvents
}

func (c *LocalClock) SampleSteps() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sampleSteps
}

// Dt returns the clock's current sample interval.
func (c *LocalClock) Dt() vtime.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dt
}

// Stop signals the dispatcher to return after the currently executing
// Action completes (spec §5 "Cancellation & timeouts").
func (c *LocalClock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopRequested = true
}

// Resume clears a prior Stop, allowing a later Run to proceed.
func (c *LocalClock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopRequested = false
}

func (c *LocalClock) stopped() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stopRequested
}

// Reset clears schedule state and restores t = t0. When hard is true,
// every process handle is dropped too (their goroutines, if still
// blocked on a rendezvous send, are abandoned - §3 "Lifecycles" does
// not define a forced-cancellation path for a process body).
func (c *LocalClock) Reset(dt vtime.Duration, t0 vtime.Time, hard bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schedule.Reset()
	c.t0 = t0
	c.t = t0
	c.dt = dt
	c.clockEvents = 0
	c.sampleSteps = 0
	c.stopRequested = false
	if hard {
		c.processes = make(map[uint64]*ProcessHandle)
	}
}

// At schedules a one-shot event firing a at absolute virtual time t
// (or a Distribution resolving to one).
func (c *LocalClock) At(a *action.Action, t interface{}) (uint64, error) {
	tFire := vtime.Time(vtime.Resolve(t))
	return c.pushOneShot(a, tFire)
}

// After schedules a one-shot event firing a after duration d (relative
// to the clock's current t at scheduling time).
func (c *LocalClock) After(a *action.Action, d interface{}) (uint64, error) {
	dur := vtime.Resolve(d)
	return c.pushOneShot(a, c.Tau().Add(dur))
}

func (c *LocalClock) pushOneShot(a *action.Action, tFire vtime.Time) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tFire.Before(c.t) {
		c.logger.Warn("schedule misuse", "t_fire", float64(tFire), "t", float64(c.t))
		return 0, desimerrors.NewScheduleMisuse(float64(tFire), float64(c.t))
	}
	id := c.schedule.NextID()
	c.schedule.PushEvent(&schedule.Event{TFire: tFire, ID: id, Action: a, Cycle: 0, N: 1})
	return id, nil
}

// Every schedules a repeater: n fires of a, the first at the clock's
// current t, each subsequent one cycle later (§8 scenario B).
func (c *LocalClock) Every(a *action.Action, cycle interface{}, n uint32) (uint64, error) {
	if n == 0 {
		return 0, nil
	}
	dur := vtime.Resolve(cycle)
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.schedule.NextID()
	c.schedule.PushEvent(&schedule.Event{TFire: c.t, ID: id, Action: a, Cycle: dur, N: n})
	return id, nil
}

// When registers a conditional event: a fires the first time cond
// evaluates true at a condition-check tick (§4.2 "event(clk, action,
// cond)").
func (c *LocalClock) When(a *action.Action, cond *action.Action) *schedule.Condition {
	cnd := &schedule.Condition{Action: a, Predicate: cond}
	c.schedule.PushCondition(cnd)
	return cnd
}

// Periodic registers a Sample, fired every tick. If dt is given and
// differs from the clock's current Δt, the smaller value wins (§4.2).
func (c *LocalClock) Periodic(a *action.Action, dt vtime.Duration) {
	c.mu.Lock()
	if dt > 0 && (c.dt == 0 || dt < c.dt) {
		c.dt = dt
	}
	c.mu.Unlock()
	c.schedule.PushSample(&schedule.Sample{Action: a})
}

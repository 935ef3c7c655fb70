package clock

import (
	"github.com/butter-bot-machines/desim/pkg/action"
	desimerrors "github.com/butter-bot-machines/desim/pkg/errors"
	"github.com/butter-bot-machines/desim/pkg/schedule"
	"github.com/butter-bot-machines/desim/pkg/vtime"
)

// Forever marks a process as looping its body indefinitely (spec §4.3
// "process(clk, body, cycles=∞)").
const Forever = -1

// ProcessBody is a user coroutine. It receives a ProcessContext, the
// only handle through which it may suspend itself.
type ProcessBody func(ctx *ProcessContext) error

// ProcessContext is the first argument to a process body: the
// blocking primitives a process may call (spec §4.3). A ProcessContext
// is only ever used on the goroutine running its own process body.
type ProcessContext struct {
	handle *ProcessHandle
}

// Tau returns the virtual time at which this process was last
// released - never greater than the owning clock's current t (§8
// invariant 7). A zero-value ProcessContext (one not handed to a body
// by Process/ProcessN) has no handle and reports t=0.
func (ctx *ProcessContext) Tau() vtime.Time {
	if ctx.handle == nil {
		return 0
	}
	return ctx.handle.tau()
}

// Delay suspends the process until the clock reaches t + d. Calling it
// on a ProcessContext with no handle - one never handed to a body by
// Process/ProcessN - is a ProcessMisuse (spec.md §7).
func (ctx *ProcessContext) Delay(d vtime.Duration) error {
	if ctx.handle == nil {
		return desimerrors.NewProcessMisuse("delay")
	}
	return ctx.handle.delay(d, 0, false)
}

// DelayUntil suspends the process until the clock reaches t.
func (ctx *ProcessContext) DelayUntil(t vtime.Time) error {
	if ctx.handle == nil {
		return desimerrors.NewProcessMisuse("delay")
	}
	return ctx.handle.delay(0, t, true)
}

// Wait suspends the process until cond evaluates true at a
// condition-check tick.
func (ctx *ProcessContext) Wait(cond *action.Action) error {
	if ctx.handle == nil {
		return desimerrors.NewProcessMisuse("wait")
	}
	return ctx.handle.wait(cond)
}

// Now enqueues a to run on the clock's own execution context at the
// current t, suspending the process until it returns (§4.3 "now").
func (ctx *ProcessContext) Now(a *action.Action) (interface{}, error) {
	if ctx.handle == nil {
		return nil, desimerrors.NewProcessMisuse("now")
	}
	return ctx.handle.now(a)
}

// Put suspends the process until v has been accepted onto ch (either
// handed directly to a waiting Take or buffered), a blocking channel
// operation per §5 "Suspension points".
func (ctx *ProcessContext) Put(ch *Channel, v interface{}) error {
	if ctx.handle == nil {
		return desimerrors.NewProcessMisuse("put")
	}
	return ctx.handle.put(ch, v)
}

// Take suspends the process until a value is available on ch.
func (ctx *ProcessContext) Take(ch *Channel) (interface{}, error) {
	if ctx.handle == nil {
		return nil, desimerrors.NewProcessMisuse("take")
	}
	return ctx.handle.take(ch)
}

type ackKind int

const (
	ackDelay ackKind = iota
	ackWait
	ackNow
	ackPut
	ackTake
	ackDone
)

type ackMsg struct {
	kind     ackKind
	dur      vtime.Duration
	until    vtime.Time
	absolute bool
	cond     *action.Action
	nowAct   *action.Action
	ch       *Channel
	val      interface{}
	err      error
}

type resumeMsg struct {
	t      vtime.Time
	result interface{}
	err    error
}

// ProcessHandle wraps a running process body and the single-element
// rendezvous slot the clock uses to release it (spec §3
// "ProcessHandle", §9 "one synchronization slot per process").
type ProcessHandle struct {
	ID    uint64
	clock *LocalClock

	resume chan resumeMsg
	ack    chan ackMsg

	lastT vtime.Time
}

func (h *ProcessHandle) tau() vtime.Time { return h.lastT }

func (h *ProcessHandle) delay(d vtime.Duration, until vtime.Time, absolute bool) error {
	tFire := until
	if !absolute {
		tFire = h.lastT.Add(d)
	}
	h.ack <- ackMsg{kind: ackDelay, until: tFire, absolute: true}
	msg := <-h.resume
	h.lastT = msg.t
	return msg.err
}

func (h *ProcessHandle) wait(cond *action.Action) error {
	h.ack <- ackMsg{kind: ackWait, cond: cond}
	msg := <-h.resume
	h.lastT = msg.t
	return msg.err
}

func (h *ProcessHandle) now(a *action.Action) (interface{}, error) {
	h.ack <- ackMsg{kind: ackNow, nowAct: a}
	msg := <-h.resume
	h.lastT = msg.t
	return msg.result, msg.err
}

func (h *ProcessHandle) put(ch *Channel, v interface{}) error {
	h.ack <- ackMsg{kind: ackPut, ch: ch, val: v}
	msg := <-h.resume
	h.lastT = msg.t
	return msg.err
}

func (h *ProcessHandle) take(ch *Channel) (interface{}, error) {
	h.ack <- ackMsg{kind: ackTake, ch: ch}
	msg := <-h.resume
	h.lastT = msg.t
	return msg.result, msg.err
}

type nowRequest struct {
	handle *ProcessHandle
	action *action.Action
}

// Process spawns body on its own goroutine and records its handle.
// If cycles is Forever, the body loops indefinitely; otherwise it
// loops in place that many times (§9 "choose 'loop the body in
// place'").
func (c *LocalClock) Process(body ProcessBody) *ProcessHandle {
	return c.process(body, Forever)
}

// ProcessN is Process with a finite cycle count.
func (c *LocalClock) ProcessN(body ProcessBody, cycles int) *ProcessHandle {
	return c.process(body, cycles)
}

func (c *LocalClock) process(body ProcessBody, cycles int) *ProcessHandle {
	c.mu.Lock()
	id := c.nextProc
	c.nextProc++
	h := &ProcessHandle{
		ID:     id,
		clock:  c,
		resume: make(chan resumeMsg),
		ack:    make(chan ackMsg),
		lastT:  c.t,
	}
	c.processes[id] = h
	c.mu.Unlock()

	go func() {
		ctx := &ProcessContext{handle: h}
		var err error
		for i := 0; cycles == Forever || i < cycles; i++ {
			if err = body(ctx); err != nil {
				break
			}
		}
		h.ack <- ackMsg{kind: ackDone, err: err}
	}()

	// The body runs immediately on its own goroutine (it is RUNNING
	// from the moment it is spawned); the first ack tells the caller
	// how to register its first suspension point.
	first := <-h.ack
	_ = c.handleAck(h, first)
	return h
}

// handleAck registers the schedule entry (or inbox request) implied by
// ack, or reaps the process on ackDone. It runs on whichever goroutine
// is currently holding the right to mutate clock state: the spawning
// goroutine for the first ack, or the dispatcher goroutine for every
// ack that follows a release.
func (c *LocalClock) handleAck(h *ProcessHandle, ack ackMsg) error {
	switch ack.kind {
	case ackDelay:
		tFire := ack.until
		c.mu.Lock()
		if tFire.Before(c.t) {
			c.mu.Unlock()
			c.logger.Warn("schedule misuse", "t_fire", float64(tFire), "t", float64(c.t))
			return desimerrors.NewScheduleMisuse(float64(tFire), float64(c.t))
		}
		id := c.schedule.NextID()
		releaseAction := action.New("process-release", func(...interface{}) (interface{}, error) {
			return nil, c.runLeg(h, resumeMsg{t: tFire})
		})
		c.schedule.PushEvent(&schedule.Event{TFire: tFire, ID: id, Action: releaseAction, Cycle: 0, N: 1})
		c.mu.Unlock()
		return nil

	case ackWait:
		var cond *schedule.Condition
		cond = &schedule.Condition{
			Predicate: ack.cond,
			Action: action.New("process-release-wait", func(...interface{}) (interface{}, error) {
				t := c.Tau()
				c.schedule.RemoveCondition(cond)
				return nil, c.runLeg(h, resumeMsg{t: t})
			}),
		}
		c.schedule.PushCondition(cond)
		return nil

	case ackNow:
		c.nowQueueMu.Lock()
		c.nowQueue = append(c.nowQueue, nowRequest{handle: h, action: ack.nowAct})
		c.nowQueueMu.Unlock()
		return nil

	case ackPut:
		return c.handlePut(h, ack.ch, ack.val)

	case ackTake:
		return c.handleTake(h, ack.ch)

	case ackDone:
		c.mu.Lock()
		delete(c.processes, h.ID)
		c.mu.Unlock()
		return nil
	}
	return nil
}

// runLeg releases h at the given time/result and waits for its next
// suspension, registering it in turn. Called from inside a fired
// Action, so the calling goroutine (the dispatcher) blocks here until
// the process suspends again - the exclusivity invariant of §5.
func (c *LocalClock) runLeg(h *ProcessHandle, msg resumeMsg) error {
	h.resume <- msg
	ack := <-h.ack
	return c.handleAck(h, ack)
}

// drainNow executes every now() request queued by processes, in FIFO
// order, on the dispatcher's own execution context at the current t
// (§4.3 "now").
func (c *LocalClock) drainNow() error {
	for {
		c.nowQueueMu.Lock()
		if len(c.nowQueue) == 0 {
			c.nowQueueMu.Unlock()
			return nil
		}
		req := c.nowQueue[0]
		c.nowQueue = c.nowQueue[1:]
		c.nowQueueMu.Unlock()

		v, err := req.action.Invoke(c.logger)
		if rerr := c.runLeg(req.handle, resumeMsg{t: c.Tau(), result: v, err: err}); rerr != nil {
			return rerr
		}
	}
}

package clock

import (
	"sync"

	desimerrors "github.com/butter-bot-machines/desim/pkg/errors"
)

// Channel is a bounded, clock-brokered rendezvous point between
// processes. Unlike a raw Go channel, Put/Take are mediated entirely
// through handleAck on the dispatcher's own execution context, so a
// blocked putter or taker never holds the dispatcher goroutine hostage
// waiting on a native channel operation (§5 "blocking channel
// operations (put!/take!)" are suspension points, not OS-level
// blocks).
type Channel struct {
	mu          sync.Mutex
	capacity    int
	buf         []interface{}
	putWaiters  []putWaiter
	takeWaiters []*ProcessHandle
	owner       *LocalClock // the clock of the first process to Put/Take
}

// bindOwner locks ch to clk on first use and rejects a process from a
// different clock: runLeg must only ever be called by a handle's own
// clock (§5's single-writer invariant), so a Channel shared across
// clocks would let one clock's dispatcher release a process it does
// not own.
func (ch *Channel) bindOwner(clk *LocalClock) error {
	if ch.owner == nil {
		ch.owner = clk
		return nil
	}
	if ch.owner != clk {
		return desimerrors.NewForeignClock("channel")
	}
	return nil
}

type putWaiter struct {
	handle *ProcessHandle
	val    interface{}
}

// NewChannel creates a Channel buffering up to capacity values (at
// least 1).
func NewChannel(capacity int) *Channel {
	if capacity < 1 {
		capacity = 1
	}
	return &Channel{capacity: capacity}
}

// handlePut accepts v onto ch on behalf of h: handing it directly to a
// waiting taker, buffering it if there is room, or else parking h as a
// put-waiter until a taker arrives.
func (c *LocalClock) handlePut(h *ProcessHandle, ch *Channel, v interface{}) error {
	ch.mu.Lock()
	if err := ch.bindOwner(h.clock); err != nil {
		ch.mu.Unlock()
		return c.runLeg(h, resumeMsg{t: c.Tau(), err: err})
	}
	if len(ch.takeWaiters) > 0 {
		taker := ch.takeWaiters[0]
		ch.takeWaiters = ch.takeWaiters[1:]
		ch.mu.Unlock()
		if err := c.runLeg(taker, resumeMsg{t: c.Tau(), result: v}); err != nil {
			return err
		}
		return c.runLeg(h, resumeMsg{t: c.Tau()})
	}
	if len(ch.buf) < ch.capacity {
		ch.buf = append(ch.buf, v)
		ch.mu.Unlock()
		return c.runLeg(h, resumeMsg{t: c.Tau()})
	}
	ch.putWaiters = append(ch.putWaiters, putWaiter{handle: h, val: v})
	ch.mu.Unlock()
	return nil
}

// handleTake hands h the next available value: from the buffer (back
// filling from a put-waiter, if any), directly from a waiting putter,
// or parks h as a take-waiter.
func (c *LocalClock) handleTake(h *ProcessHandle, ch *Channel) error {
	ch.mu.Lock()
	if err := ch.bindOwner(h.clock); err != nil {
		ch.mu.Unlock()
		return c.runLeg(h, resumeMsg{t: c.Tau(), err: err})
	}
	if len(ch.buf) > 0 {
		v := ch.buf[0]
		ch.buf = ch.buf[1:]
		var waiter *putWaiter
		if len(ch.putWaiters) > 0 {
			w := ch.putWaiters[0]
			ch.putWaiters = ch.putWaiters[1:]
			ch.buf = append(ch.buf, w.val)
			waiter = &w
		}
		ch.mu.Unlock()
		if err := c.runLeg(h, resumeMsg{t: c.Tau(), result: v}); err != nil {
			return err
		}
		if waiter != nil {
			return c.runLeg(waiter.handle, resumeMsg{t: c.Tau()})
		}
		return nil
	}
	if len(ch.putWaiters) > 0 {
		w := ch.putWaiters[0]
		ch.putWaiters = ch.putWaiters[1:]
		ch.mu.Unlock()
		if err := c.runLeg(h, resumeMsg{t: c.Tau(), result: w.val}); err != nil {
			return err
		}
		return c.runLeg(w.handle, resumeMsg{t: c.Tau()})
	}
	ch.takeWaiters = append(ch.takeWaiters, h)
	ch.mu.Unlock()
	return nil
}

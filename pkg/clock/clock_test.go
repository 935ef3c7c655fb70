package clock

import (
	"testing"

	"github.com/butter-bot-machines/desim/pkg/action"
	desimerrors "github.com/butter-bot-machines/desim/pkg/errors"
	"github.com/butter-bot-machines/desim/pkg/logging"
	"github.com/butter-bot-machines/desim/pkg/logging/memory"
	"github.com/butter-bot-machines/desim/pkg/vtime"
)

func newTestClock(dt vtime.Duration) *LocalClock {
	return New(dt, 0, memory.New(logging.LevelInfo))
}

// Scenario A: single timer.
func TestSingleTimer(t *testing.T) {
	c := newTestClock(0)
	var fired []vtime.Time
	rec := action.New("record", func(...interface{}) (interface{}, error) {
		fired = append(fired, c.Tau())
		return nil, nil
	})
	if _, err := c.At(rec, vtime.Time(5)); err != nil {
		t.Fatalf("At: %v", err)
	}

	res, err := c.Run(10)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(fired) != 1 || fired[0] != 5 {
		t.Fatalf("expected single fire at t=5, got %v", fired)
	}
	if res.T != 10 {
		t.Fatalf("expected final t=10, got %v", res.T)
	}
	if res.ClockEvents != 1 {
		t.Fatalf("expected 1 clock event, got %d", res.ClockEvents)
	}
}

// Scenario B: repeating timer.
func TestRepeatingTimer(t *testing.T) {
	c := newTestClock(0)
	var fired []vtime.Time
	rec := action.New("record", func(...interface{}) (interface{}, error) {
		fired = append(fired, c.Tau())
		return nil, nil
	})
	if _, err := c.Every(rec, vtime.Duration(2), 3); err != nil {
		t.Fatalf("Every: %v", err)
	}

	if _, err := c.Run(10); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []vtime.Time{0, 2, 4}
	if len(fired) != len(want) {
		t.Fatalf("expected %v, got %v", want, fired)
	}
	for i := range want {
		if fired[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, fired)
		}
	}
}

// Scenario D: conditional event integrated with the periodic sample
// tick.
func TestConditionalEventFiresOnPeriodicTick(t *testing.T) {
	c := newTestClock(1)
	x := 0
	var fireAt vtime.Time
	fired := false

	incr := action.New("incr", func(...interface{}) (interface{}, error) {
		x++
		return nil, nil
	})
	c.Periodic(incr, 0)

	cond := action.New("x>=5", func(...interface{}) (interface{}, error) {
		return x >= 5, nil
	})
	fire := action.New("fire", func(...interface{}) (interface{}, error) {
		fired = true
		fireAt = c.Tau()
		return nil, nil
	})
	c.When(fire, cond)

	if _, err := c.Run(10); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !fired {
		t.Fatal("expected condition to fire")
	}
	if fireAt != 5 {
		t.Fatalf("expected fire at t=5, got %v", fireAt)
	}
}

// Scenario invariant 1: tau is non-decreasing across firings.
func TestTauNonDecreasing(t *testing.T) {
	c := newTestClock(0)
	var taus []vtime.Time
	rec := action.New("record", func(...interface{}) (interface{}, error) {
		taus = append(taus, c.Tau())
		return nil, nil
	})
	for _, at := range []vtime.Time{1, 3, 2, 7, 5} {
		if _, err := c.At(rec, at); err != nil {
			t.Fatalf("At(%v): %v", at, err)
		}
	}
	if _, err := c.Run(10); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i := 1; i < len(taus); i++ {
		if taus[i] < taus[i-1] {
			t.Fatalf("tau decreased: %v", taus)
		}
	}
}

// ScheduleMisuse: scheduling at a past time fails immediately.
func TestScheduleMisusePastTime(t *testing.T) {
	c := newTestClock(0)
	rec := action.New("noop", func(...interface{}) (interface{}, error) { return nil, nil })
	if _, err := c.At(rec, vtime.Time(5)); err != nil {
		t.Fatalf("At: %v", err)
	}
	if _, err := c.Run(6); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := c.At(rec, vtime.Time(1)); err == nil {
		t.Fatal("expected ScheduleMisuse scheduling into the past")
	}
}

// ProcessMisuse: a zero-value ProcessContext (one never handed to a
// body by Process/ProcessN) rejects every blocking primitive instead
// of panicking on its nil handle.
func TestProcessMisuseOutsideProcess(t *testing.T) {
	var ctx ProcessContext
	if err := ctx.Delay(1); !desimerrors.IsType(err, desimerrors.ProcessMisuse) {
		t.Fatalf("expected ProcessMisuse from Delay, got %v", err)
	}
	cond := action.New("cond", func(...interface{}) (interface{}, error) { return true, nil })
	if err := ctx.Wait(cond); !desimerrors.IsType(err, desimerrors.ProcessMisuse) {
		t.Fatalf("expected ProcessMisuse from Wait, got %v", err)
	}
	noop := action.New("noop", func(...interface{}) (interface{}, error) { return nil, nil })
	if _, err := ctx.Now(noop); !desimerrors.IsType(err, desimerrors.ProcessMisuse) {
		t.Fatalf("expected ProcessMisuse from Now, got %v", err)
	}
	if err := ctx.Put(NewChannel(1), 1); !desimerrors.IsType(err, desimerrors.ProcessMisuse) {
		t.Fatalf("expected ProcessMisuse from Put, got %v", err)
	}
	if _, err := ctx.Take(NewChannel(1)); !desimerrors.IsType(err, desimerrors.ProcessMisuse) {
		t.Fatalf("expected ProcessMisuse from Take, got %v", err)
	}
	if ctx.Tau() != 0 {
		t.Fatalf("expected Tau()=0 on a handle-less context, got %v", ctx.Tau())
	}
}

// ForeignClock: a Channel first used by a process on one clock rejects
// a process spawned on a different clock rather than letting that
// clock's dispatcher release a handle it does not own.
func TestForeignClockChannelRejected(t *testing.T) {
	c1 := newTestClock(0)
	c2 := newTestClock(0)
	ch := NewChannel(1)

	var err1, err2 error
	c1.ProcessN(func(ctx *ProcessContext) error {
		err1 = ctx.Put(ch, 1)
		return nil
	}, 1)
	c2.ProcessN(func(ctx *ProcessContext) error {
		err2 = ctx.Put(ch, 2)
		return nil
	}, 1)

	if _, err := c1.Run(1); err != nil {
		t.Fatalf("c1 Run: %v", err)
	}
	if _, err := c2.Run(1); err != nil {
		t.Fatalf("c2 Run: %v", err)
	}

	if err1 != nil {
		t.Fatalf("expected the first clock to bind the channel cleanly, got %v", err1)
	}
	if !desimerrors.IsType(err2, desimerrors.ForeignClock) {
		t.Fatalf("expected ForeignClock from the second clock's Put, got %v", err2)
	}
}

// A process suspended with delay is released at the expected time.
func TestProcessDelay(t *testing.T) {
	c := newTestClock(0)
	var observed vtime.Time
	c.ProcessN(func(ctx *ProcessContext) error {
		if err := ctx.Delay(3); err != nil {
			return err
		}
		observed = ctx.Tau()
		return nil
	}, 1)

	if _, err := c.Run(10); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if observed != 3 {
		t.Fatalf("expected process released at t=3, got %v", observed)
	}
}

// Two processes rendezvous over a clock-brokered channel; B's first
// take never observes a tau earlier than A's matching put, and both
// processes make full progress within the run (loose form of §8
// scenario C, which leaves exact inter-process timing underspecified).
func TestProcessChannelRendezvous(t *testing.T) {
	c := newTestClock(0)
	ch := NewChannel(1)
	var aPuts, bTakes []vtime.Time

	c.ProcessN(func(ctx *ProcessContext) error {
		if err := ctx.Delay(1); err != nil {
			return err
		}
		if err := ctx.Put(ch, 1); err != nil {
			return err
		}
		aPuts = append(aPuts, ctx.Tau())
		if err := ctx.Delay(1); err != nil {
			return err
		}
		if err := ctx.Put(ch, 2); err != nil {
			return err
		}
		aPuts = append(aPuts, ctx.Tau())
		return nil
	}, 1)

	c.ProcessN(func(ctx *ProcessContext) error {
		if _, err := ctx.Take(ch); err != nil {
			return err
		}
		bTakes = append(bTakes, ctx.Tau())
		if err := ctx.Delay(0.5); err != nil {
			return err
		}
		if _, err := ctx.Take(ch); err != nil {
			return err
		}
		bTakes = append(bTakes, ctx.Tau())
		return nil
	}, 1)

	if _, err := c.Run(5); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(aPuts) != 2 || len(bTakes) != 2 {
		t.Fatalf("expected both processes to complete, got aPuts=%v bTakes=%v", aPuts, bTakes)
	}
	if bTakes[0] != aPuts[0] {
		t.Fatalf("expected B's first take to rendezvous with A's first put, got take=%v put=%v", bTakes[0], aPuts[0])
	}
	if bTakes[1] < aPuts[1] {
		t.Fatalf("B's second take (%v) observed before A's second put (%v)", bTakes[1], aPuts[1])
	}
}

// now() runs an action in-band on the clock's own execution context at
// the process's current t.
func TestProcessNow(t *testing.T) {
	c := newTestClock(0)
	var sawTau vtime.Time
	ioAction := action.New("io", func(...interface{}) (interface{}, error) {
		sawTau = c.Tau()
		return 42, nil
	})

	var result interface{}
	c.ProcessN(func(ctx *ProcessContext) error {
		if err := ctx.Delay(2); err != nil {
			return err
		}
		v, err := ctx.Now(ioAction)
		result = v
		return err
	}, 1)

	if _, err := c.Run(5); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sawTau != 2 {
		t.Fatalf("expected now() action to run at t=2, got %v", sawTau)
	}
	if result != 42 {
		t.Fatalf("expected now() result 42, got %v", result)
	}
}

// stop() halts the dispatcher after the current action completes.
func TestStop(t *testing.T) {
	c := newTestClock(0)
	count := 0
	rec := action.New("record", func(...interface{}) (interface{}, error) {
		count++
		if count == 2 {
			c.Stop()
		}
		return nil, nil
	})
	for _, at := range []vtime.Time{1, 2, 3, 4} {
		if _, err := c.At(rec, at); err != nil {
			t.Fatalf("At: %v", err)
		}
	}
	res, err := c.Run(10)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected dispatcher to stop after 2 fires, got %d", count)
	}
	if res.T != 2 {
		t.Fatalf("expected stop to leave t at the last fired instant (2), got %v", res.T)
	}
}

// reset clears schedule state and restores t0.
func TestReset(t *testing.T) {
	c := newTestClock(0)
	rec := action.New("noop", func(...interface{}) (interface{}, error) { return nil, nil })
	if _, err := c.At(rec, vtime.Time(5)); err != nil {
		t.Fatalf("At: %v", err)
	}
	if _, err := c.Run(10); err != nil {
		t.Fatalf("Run: %v", err)
	}
	c.Reset(0, 0, true)
	if c.Tau() != 0 {
		t.Fatalf("expected t=0 after reset, got %v", c.Tau())
	}
	if c.EventCount() != 0 {
		t.Fatalf("expected event count reset to 0, got %d", c.EventCount())
	}
}

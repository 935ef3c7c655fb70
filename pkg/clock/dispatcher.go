package clock

import (
	"math"

	"github.com/butter-bot-machines/desim/pkg/action"
	desimerrors "github.com/butter-bot-machines/desim/pkg/errors"
	"github.com/butter-bot-machines/desim/pkg/logging"
	"github.com/butter-bot-machines/desim/pkg/schedule"
	"github.com/butter-bot-machines/desim/pkg/vtime"
)

func evalCondition(cond *schedule.Condition, logger logging.Logger) (bool, error) {
	return action.EvalPredicate(cond.Predicate, logger)
}

// Run advances the clock from its current t to t+duration, firing
// every action due in [t, t_end] in priority order (spec §4.1). It
// returns the events/samples fired and the clock's final t.
func (c *LocalClock) Run(duration vtime.Duration) (RunResult, error) {
	tEnd := c.Tau().Add(duration)

	for {
		if c.stopped() {
			break
		}
		if err := c.drainNow(); err != nil {
			return c.result(), c.wrapFailure(err)
		}

		t := c.Tau()
		if !t.Before(tEnd) {
			// A tick landing on tEnd fires before events due at that same
			// instant; those events are still inside [t, t_end].
			if tNext, ok := c.schedule.NextEventTime(); ok && !tNext.After(tEnd) {
				if err := c.fireEvents(tNext); err != nil {
					return c.result(), c.wrapFailure(err)
				}
				continue
			}
			break
		}

		tNextEvent, hasEvent := c.schedule.NextEventTime()
		hasConditions := c.schedule.HasConditions()
		dtEff := c.effectiveTick(t, tEnd, hasConditions)

		var tTick vtime.Time
		hasTick := dtEff > 0
		if hasTick {
			tTick = vtime.NextTick(t, c.t0, dtEff)
		}

		switch {
		case hasTick && !tTick.After(tEnd) && (!hasEvent || !tTick.After(tNextEvent)):
			if err := c.fireTick(tTick); err != nil {
				return c.result(), c.wrapFailure(err)
			}
		case hasEvent && !tNextEvent.After(tEnd):
			if err := c.fireEvents(tNextEvent); err != nil {
				return c.result(), c.wrapFailure(err)
			}
		default:
			c.mu.Lock()
			c.t = tEnd
			c.mu.Unlock()
		}
	}

	return c.result(), nil
}

func (c *LocalClock) result() RunResult {
	return RunResult{
		ClockEvents: c.EventCount(),
		SampleSteps: c.SampleSteps(),
		T:           c.Tau(),
	}
}

func (c *LocalClock) wrapFailure(err error) error {
	wrapped := desimerrors.NewClockException(float64(c.Tau()), err)
	c.logger.Error("clock exception", "t", float64(c.Tau()), "error", err)
	return wrapped
}

// effectiveTick is Δt* from §4.1: the clock's own Δt if positive, else
// an auto-installed cadence fine enough to observe conditions within
// the run without busy-spinning, else no tick at all.
func (c *LocalClock) effectiveTick(t, tEnd vtime.Time, hasConditions bool) vtime.Duration {
	dt := c.Dt()
	if dt > 0 {
		return dt
	}
	if !hasConditions {
		return 0
	}
	remaining := float64(tEnd - t)
	const epsilon = 1e-9
	return vtime.Duration(math.Max(remaining, epsilon) / K)
}

// fireTick advances t to tt, fires every registered Sample in
// registration order, then evaluates conditions (§4.1, §9 "integrate
// [conditions] with the sample tick").
func (c *LocalClock) fireTick(tt vtime.Time) error {
	c.mu.Lock()
	c.t = tt
	c.mu.Unlock()

	for _, s := range c.schedule.Samples() {
		c.logger.Debug("fire", "kind", "sample", "name", s.Action.Name, "t_fire", float64(tt))
		if _, err := s.Action.Invoke(c.logger); err != nil {
			return err
		}
		c.mu.Lock()
		c.sampleSteps++
		c.mu.Unlock()
	}

	for _, cond := range c.schedule.Conditions() {
		ok, err := evalCondition(cond, c.logger)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		c.schedule.RemoveCondition(cond)
		c.logger.Debug("fire", "kind", "condition", "name", cond.Action.Name, "t_fire", float64(tt))
		if _, err := cond.Action.Invoke(c.logger); err != nil {
			return err
		}
	}
	return nil
}

// fireEvents advances t to tt and fires every event due at exactly tt,
// in ascending id order, re-queuing repeaters (§4.1).
func (c *LocalClock) fireEvents(tt vtime.Time) error {
	c.mu.Lock()
	c.t = tt
	c.mu.Unlock()

	due := c.schedule.PopDue(tt)
	for _, ev := range due {
		c.logger.Debug("fire", "kind", "event", "name", ev.Action.Name, "id", ev.ID, "t_fire", float64(tt))
		if _, err := ev.Action.Invoke(c.logger); err != nil {
			return err
		}
		c.mu.Lock()
		c.clockEvents++
		c.mu.Unlock()

		if ev.N > 1 {
			c.schedule.PushEvent(&schedule.Event{
				TFire:  tt.Add(ev.Cycle),
				ID:     ev.ID,
				Action: ev.Action,
				Cycle:  ev.Cycle,
				N:      ev.N - 1,
			})
		}
	}
	return nil
}

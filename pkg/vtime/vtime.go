// Package vtime defines the virtual time type shared by the scheduler,
// the schedule, and the process coupling. Virtual time is a plain
// monotone real number decoupled from the wall clock; it is advanced
// only by the dispatcher.
package vtime

import "math"

// Time is a point on a clock's virtual timeline.
type Time float64

// Duration is a span of virtual time.
type Duration float64

// Add returns t shifted forward by d. Negative d is allowed by the
// type; callers that must reject it (e.g. ScheduleMisuse checks) do so
// explicitly.
func (t Time) Add(d Duration) Time {
	return t + Time(d)
}

// Sub returns the duration between t and u (t - u).
func (t Time) Sub(u Time) Duration {
	return Duration(t - u)
}

// Before reports whether t is strictly earlier than u.
func (t Time) Before(u Time) bool {
	return t < u
}

// After reports whether t is strictly later than u.
func (t Time) After(u Time) bool {
	return t > u
}

// Distribution is the capability required of a stochastic scheduling
// argument: anything with Sample() can be passed to event/delay/every
// in place of a literal number. The value is drawn once, at the moment
// of scheduling.
type Distribution interface {
	Sample() float64
}

// Fixed is a Distribution that always samples the same value; it lets
// call sites accept a plain number through the same Distribution path
// as a real distribution.
type Fixed float64

// Sample implements Distribution.
func (f Fixed) Sample() float64 { return float64(f) }

// Resolve draws a Duration from either a literal number or a
// Distribution. It is the one point where §4.2's "stochastic-time
// arguments" rule is applied.
func Resolve(v interface{}) Duration {
	switch x := v.(type) {
	case Duration:
		return x
	case Time:
		return Duration(x)
	case float64:
		return Duration(x)
	case int:
		return Duration(x)
	case Distribution:
		return Duration(x.Sample())
	default:
		return 0
	}
}

// NextTick returns the next instant strictly after t that lies a whole
// number of Δt steps from t0, per
// Schedule invariant 3: t + (Δt - ((t - t0) mod Δt)) when the
// remainder is non-zero, else t + Δt.
func NextTick(t, t0 Time, dt Duration) Time {
	if dt <= 0 {
		return t
	}
	elapsed := float64(t - t0)
	step := float64(dt)
	rem := math.Mod(elapsed, step)
	if rem < 0 {
		rem += step
	}
	if rem == 0 {
		return t.Add(dt)
	}
	return t.Add(Duration(step - rem))
}

package errors

// NewClockException wraps a user action's failure at virtual time t.
func NewClockException(t float64, cause error) *Error {
	return Wrap(ClockException, cause, "clock exception at t=%v", t)
}

// NewScheduleMisuse reports an attempt to schedule at t_fire < t.
func NewScheduleMisuse(tFire, t float64) *Error {
	return New(ScheduleMisuse, "cannot schedule at t_fire=%v before current t=%v", tFire, t)
}

// NewProcessMisuse reports delay/wait/now called outside a process.
func NewProcessMisuse(op string) *Error {
	return New(ProcessMisuse, "%s may only be called from inside a process", op)
}

// NewForeignClock reports a handle used against a clock that did not
// create it.
func NewForeignClock(kind string) *Error {
	return New(ForeignClock, "%s belongs to a different clock", kind)
}

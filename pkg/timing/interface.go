// Package timing provides the wall-clock abstraction used by the
// secondary, non-core real-time mode (see SPEC_FULL.md §4.6/Non-goals):
// the pkg/watcher debounce timer behind the CLI's --watch. It
// never backs virtual time, which lives in pkg/vtime instead.
package timing

import "time"

// Clock abstracts wall-clock time operations.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
	After(d time.Duration) <-chan time.Time

	NewTimer(d time.Duration) Timer
	AfterFunc(d time.Duration, f func()) Timer

	NewTicker(d time.Duration) Ticker
}

// Timer abstracts time.Timer.
type Timer interface {
	C() <-chan time.Time
	Stop() bool
	Reset(d time.Duration) bool
}

// Ticker abstracts time.Ticker.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

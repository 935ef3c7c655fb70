// Package real implements timing.Clock over github.com/benbjohnson/clock,
// the library the pack already depends on for exactly this abstraction
// (it shipped as an indirect dependency of the teacher's go.mod before
// this module promoted it to direct).
package real

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/butter-bot-machines/desim/pkg/timing"
)

// Clock is the real-time implementation of timing.Clock.
type Clock struct {
	bj clock.Clock
}

// New creates a real-time clock backed by benbjohnson/clock's system
// clock.
func New() *Clock {
	return &Clock{bj: clock.New()}
}

func (c *Clock) Now() time.Time                      { return c.bj.Now() }
func (c *Clock) Sleep(d time.Duration)                { c.bj.Sleep(d) }
func (c *Clock) After(d time.Duration) <-chan time.Time { return c.bj.After(d) }

func (c *Clock) NewTimer(d time.Duration) timing.Timer {
	return &timer{t: c.bj.Timer(d)}
}

func (c *Clock) AfterFunc(d time.Duration, f func()) timing.Timer {
	return &timer{t: c.bj.AfterFunc(d, f)}
}

func (c *Clock) NewTicker(d time.Duration) timing.Ticker {
	return &ticker{t: c.bj.Ticker(d)}
}

type timer struct {
	t *clock.Timer
}

func (t *timer) C() <-chan time.Time     { return t.t.C }
func (t *timer) Stop() bool              { return t.t.Stop() }
func (t *timer) Reset(d time.Duration) bool { return t.t.Reset(d) }

type ticker struct {
	t *clock.Ticker
}

func (t *ticker) C() <-chan time.Time { return t.t.C }
func (t *ticker) Stop()               { t.t.Stop() }

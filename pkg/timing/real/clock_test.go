package real

import (
	"testing"
	"time"
)

func TestClockNowAdvancesWithWallClock(t *testing.T) {
	c := New()
	first := c.Now()
	time.Sleep(time.Millisecond)
	second := c.Now()
	if !second.After(first) {
		t.Fatalf("expected wall-clock time to advance, got %v then %v", first, second)
	}
}

func TestClockAfterFires(t *testing.T) {
	c := New()
	select {
	case <-c.After(10 * time.Millisecond):
	case <-time.After(time.Second):
		t.Fatal("After channel never fired")
	}
}

func TestClockTimerStop(t *testing.T) {
	c := New()
	timer := c.NewTimer(50 * time.Millisecond)
	if !timer.Stop() {
		t.Fatal("expected Stop to report the timer was active")
	}
	select {
	case <-timer.C():
		t.Fatal("stopped timer should not fire")
	case <-time.After(100 * time.Millisecond):
	}
}

package timer_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/momentics/netkit/timer"
)

func TestDefaultTimerFiresPeriodically(t *testing.T) {
	var count atomic.Int32
	tm := timer.New(timer.Default, 10*time.Millisecond, func() {
		count.Add(1)
	})
	if !tm.Activate(true) {
		t.Fatal("Activate(true) = false")
	}
	time.Sleep(55 * time.Millisecond)
	tm.Activate(false)
	if got := count.Load(); got < 2 {
		t.Errorf("callback fired %d times in 55ms at 10ms period, want >= 2", got)
	}
}

func TestHighResolutionTimerFires(t *testing.T) {
	var count atomic.Int32
	tm := timer.New(timer.HighResolution, 5*time.Millisecond, func() {
		count.Add(1)
	})
	tm.Activate(true)
	time.Sleep(30 * time.Millisecond)
	tm.Activate(false)
	if count.Load() == 0 {
		t.Error("high-resolution timer never fired")
	}
}

func TestActivateFalseIsIdempotent(t *testing.T) {
	tm := timer.New(timer.Default, 10*time.Millisecond, func() {})
	tm.Activate(true)
	tm.Activate(false)
	tm.Activate(false)
}

func TestActivateTrueRejectsMisconfiguredTimer(t *testing.T) {
	tm := timer.New(timer.Default, 0, func() {})
	if tm.Activate(true) {
		t.Error("Activate(true) with non-positive period = true, want false")
	}

	tm2 := timer.New(timer.Default, time.Millisecond, nil)
	if tm2.Activate(true) {
		t.Error("Activate(true) with nil callback = true, want false")
	}
}

func TestStopWaitsForInFlightCallback(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	tm := timer.New(timer.Default, 5*time.Millisecond, func() {
		close(started)
		<-release
	})
	tm.Activate(true)
	<-started

	stopped := make(chan struct{})
	go func() {
		tm.Activate(false)
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Activate(false) returned before the in-flight callback finished")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Activate(false) never returned after callback finished")
	}
}

package sync2_test

import (
	"testing"
	"time"

	"github.com/momentics/netkit/sync2"
)

func TestEventSignalWakesWaiter(t *testing.T) {
	e := sync2.NewEvent()
	done := make(chan bool, 1)
	go func() {
		done <- e.Wait(time.Second)
	}()
	time.Sleep(10 * time.Millisecond)
	e.Signal()
	if ok := <-done; !ok {
		t.Errorf("Wait returned false after Signal, want true")
	}
}

func TestEventWaitTimesOutWhenUnset(t *testing.T) {
	e := sync2.NewEvent()
	if e.Wait(20 * time.Millisecond) {
		t.Errorf("Wait returned true on an unsignalled event, want false")
	}
}

func TestEventNonBlockingPoll(t *testing.T) {
	e := sync2.NewEvent()
	if e.Wait(0) {
		t.Errorf("Wait(0) on unsignalled event returned true, want false")
	}
	e.Signal()
	if !e.Wait(0) {
		t.Errorf("Wait(0) on signalled event returned false, want true")
	}
}

func TestEventResetClearsState(t *testing.T) {
	e := sync2.NewEvent()
	e.Signal()
	if !e.IsSet() {
		t.Fatal("IsSet() = false after Signal, want true")
	}
	e.Reset()
	if e.IsSet() {
		t.Errorf("IsSet() = true after Reset, want false")
	}
}

func TestEventSignalIsIdempotent(t *testing.T) {
	e := sync2.NewEvent()
	e.Signal()
	e.Signal()
	if !e.IsSet() {
		t.Errorf("IsSet() = false after double Signal, want true")
	}
}

// Package thread implements a named, goroutine-backed worker with an
// idempotent Start and a cooperative Stop, grounded on event/thread.h.
// Go exposes no handle to an OS thread and no way to forcibly terminate a
// goroutine, so Stop can only ask and wait; see Stop's doc for the
// consequence of that when the run function refuses to return.
package thread

import (
	"sync/atomic"
	"time"

	"github.com/momentics/netkit/apierr"
	"github.com/momentics/netkit/sync2"
)

// RunFunc is the body a Thread executes. It must observe Signalled
// regularly and return promptly once true.
type RunFunc func(t *Thread)

const (
	stateIdle int32 = iota
	stateRunning
	stateStopping
)

// Thread is a named worker with cooperative stop semantics.
type Thread struct {
	Name string

	run       RunFunc
	state     atomic.Int32
	stopEvt   *sync2.Event
	doneEvt   *sync2.Event
	priority  Priority
}

// New constructs a Thread that will execute fn when Started.
func New(name string, fn RunFunc) *Thread {
	return &Thread{
		Name:    name,
		run:     fn,
		stopEvt: sync2.NewEvent(),
		doneEvt: sync2.NewEvent(),
	}
}

// Start launches the run function in a new goroutine. A second call while
// already running is a no-op success, matching the idempotent contract.
func (t *Thread) Start() error {
	if t.run == nil {
		return apierr.New(apierr.Runtime, "thread: nil run function").WithContext("name", t.Name)
	}
	if !t.state.CompareAndSwap(stateIdle, stateRunning) {
		return nil
	}
	t.stopEvt.Reset()
	t.doneEvt.Reset()
	go func() {
		defer func() {
			t.state.Store(stateIdle)
			t.doneEvt.Signal()
		}()
		t.run(t)
	}()
	return nil
}

// Signalled reports whether Stop has been requested. Run loops must check
// this on every iteration and return promptly once it is true.
func (t *Thread) Signalled() bool {
	return t.stopEvt.IsSet()
}

// Stop requests the run function to return and waits up to timeout for it
// to do so. Go cannot forcibly terminate a live goroutine the way the
// original forcibly terminates a stuck OS thread; if timeout elapses and
// the run function is still alive, Stop returns an error describing that
// instead of silently reporting success, and the Thread remains marked
// running until the function eventually does return.
func (t *Thread) Stop(timeout time.Duration) error {
	if t.state.Load() == stateIdle {
		return nil
	}
	t.state.CompareAndSwap(stateRunning, stateStopping)
	t.stopEvt.Signal()
	if t.doneEvt.Wait(timeout) {
		return nil
	}
	return apierr.New(apierr.Runtime, "thread: run function did not return within timeout").
		WithContext("name", t.Name).WithContext("timeout", timeout)
}

// Running reports whether the run function is currently executing.
func (t *Thread) Running() bool {
	return t.state.Load() != stateIdle
}

// SetPriority is a best-effort hint; see priority_linux.go / priority_windows.go.
func (t *Thread) SetPriority(p Priority) error {
	t.priority = p
	return applyPriority(p)
}

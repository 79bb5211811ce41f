package timer

import (
	"sync/atomic"
	"time"

	"github.com/momentics/netkit/sync2"
)

// Class selects a Timer's resolution strategy.
type Class int

const (
	// Default is millisecond-ish resolution, backed by the shared
	// per-process host scheduler.
	Default Class = iota
	// HighResolution is sub-millisecond where the platform permits, backed
	// by a dedicated goroutine per timer.
	HighResolution
)

// Callback is invoked on every tick. It must return promptly; re-entrancy
// is prevented, so a slow callback delays, rather than overlaps, the next tick.
type Callback func()

// Timer fires Callback periodically once Activate(true) succeeds.
type Timer struct {
	class    Class
	period   time.Duration
	callback Callback

	active    atomic.Bool
	notRunning *sync2.Event // set whenever no callback is currently executing

	host     *hostScheduler
	task     *scheduledTask
	hrStop   chan struct{}
	hrDone   chan struct{}
}

// New constructs an inactive Timer with the given period and class.
func New(class Class, period time.Duration, cb Callback) *Timer {
	t := &Timer{
		class:      class,
		period:     period,
		callback:   cb,
		notRunning: sync2.NewEvent(),
	}
	t.notRunning.Signal()
	return t
}

// Activate(true) starts the timer; Activate(false) stops it and blocks
// until any in-flight callback has returned. Both directions are
// idempotent. Activate(true) returns false if the timer is misconfigured
// (nil callback or non-positive period) and leaves it inactive.
func (t *Timer) Activate(on bool) bool {
	if on {
		return t.start()
	}
	t.stop()
	return true
}

func (t *Timer) start() bool {
	if t.callback == nil || t.period <= 0 {
		return false
	}
	if !t.active.CompareAndSwap(false, true) {
		return true
	}
	switch t.class {
	case HighResolution:
		t.hrStop = make(chan struct{})
		t.hrDone = make(chan struct{})
		go t.runHighResolution()
	default:
		t.host = acquireDefaultHost()
		t.task = t.host.schedule(time.Now().Add(t.period), t.tick)
	}
	return true
}

func (t *Timer) stop() {
	if !t.active.CompareAndSwap(true, false) {
		return
	}
	switch t.class {
	case HighResolution:
		close(t.hrStop)
		<-t.hrDone
	default:
		t.host.cancel(t.task)
		releaseDefaultHost(t.host)
		t.host = nil
		t.task = nil
	}
	// Wait for any in-flight callback to finish before returning, matching
	// the "not-running" event the original gates re-arming with.
	t.notRunning.Wait(sync2.Forever)
}

// tick is the Default-class entry point invoked from the shared host
// scheduler goroutine.
func (t *Timer) tick() {
	if !t.active.Load() {
		return
	}
	if !t.notRunning.Wait(0) {
		// previous tick still running; drop this one, don't re-arm.
		return
	}
	t.notRunning.Reset()
	t.callback()
	t.notRunning.Signal()
	if t.active.Load() {
		t.task = t.host.schedule(time.Now().Add(t.period), t.tick)
	}
}

func (t *Timer) runHighResolution() {
	defer close(t.hrDone)
	ticker := time.NewTicker(t.period)
	defer ticker.Stop()
	for {
		select {
		case <-t.hrStop:
			return
		case <-ticker.C:
			if !t.notRunning.Wait(0) {
				continue
			}
			t.notRunning.Reset()
			t.callback()
			t.notRunning.Signal()
		}
	}
}

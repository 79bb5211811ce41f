// Package workqueue implements a single-consumer FIFO of typed tasks
// executed on a dedicated worker, grounded on tools/work_queue.h. The FIFO
// itself is backed by github.com/eapache/queue, a dependency the teacher's
// go.mod requires but whose own code never imports.
package workqueue

import (
	"sync"
	"time"

	"github.com/eapache/queue"
	"github.com/momentics/netkit/sync2"
	"github.com/momentics/netkit/thread"
)

// WorkFunc is a unit of work. If a Work item carries its own WorkFunc (see
// Queue.QueueWork), that one is used; otherwise the queue's default
// function runs with the item's payload.
type WorkFunc func(payload any)

// Queue is a single-consumer FIFO task runner backed by a Thread.
type Queue struct {
	mu      sync.Mutex
	q       *queue.Queue
	notify  chan struct{}
	pending int

	defaultFn WorkFunc
	worker    *thread.Thread
	owner     sync2.OwnerToken

	idleEvt *sync2.Event
}

type workItem struct {
	payload any
	fn      WorkFunc
}

// New constructs a Queue whose worker invokes defaultFn for items queued
// without their own function.
func New(name string, defaultFn WorkFunc) *Queue {
	wq := &Queue{
		q:         queue.New(),
		notify:    make(chan struct{}, 1),
		defaultFn: defaultFn,
		owner:     sync2.NewOwnerToken(),
		idleEvt:   sync2.NewEvent(),
	}
	wq.idleEvt.Signal()
	wq.worker = thread.New(name, wq.run)
	return wq
}

// Start launches the worker goroutine; idempotent per thread.Thread.Start.
func (wq *Queue) Start() error { return wq.worker.Start() }

// Stop requests the worker to exit, waiting up to timeout. The worker
// finishes the item it is running; items still queued are not run.
func (wq *Queue) Stop(timeout time.Duration) error { return wq.worker.Stop(timeout) }

// QueueWork enqueues payload for execution on the worker. fn, if non-nil,
// overrides the queue's default function for this item.
func (wq *Queue) QueueWork(payload any, fn WorkFunc) {
	wq.mu.Lock()
	wq.q.Add(workItem{payload: payload, fn: fn})
	wq.pending++
	wq.idleEvt.Reset()
	wq.mu.Unlock()
	select {
	case wq.notify <- struct{}{}:
	default:
	}
}

// PendingCount returns the number of items not yet dequeued for execution.
func (wq *Queue) PendingCount() int {
	wq.mu.Lock()
	defer wq.mu.Unlock()
	return wq.pending
}

// Empty reports whether the queue currently holds no pending work.
func (wq *Queue) Empty() bool { return wq.PendingCount() == 0 }

// Idle reports whether the worker is neither executing a task nor holding
// pending work.
func (wq *Queue) Idle() bool { return wq.idleEvt.IsSet() }

// Flush blocks until the queue is empty and the worker is idle.
func (wq *Queue) Flush() {
	wq.idleEvt.Wait(sync2.Forever)
}

func (wq *Queue) dequeue() (workItem, bool) {
	wq.mu.Lock()
	defer wq.mu.Unlock()
	if wq.q.Length() == 0 {
		return workItem{}, false
	}
	item := wq.q.Remove().(workItem)
	wq.pending--
	return item, true
}

func (wq *Queue) run(t *thread.Thread) {
	for !t.Signalled() {
		item, ok := wq.dequeue()
		if !ok {
			select {
			case <-wq.notify:
			case <-time.After(50 * time.Millisecond):
			}
			continue
		}
		fn := item.fn
		if fn == nil {
			fn = wq.defaultFn
		}
		if fn != nil {
			func() {
				defer func() { _ = recover() }()
				fn(item.payload)
			}()
		}
		wq.mu.Lock()
		if wq.pending == 0 {
			wq.idleEvt.Signal()
		}
		wq.mu.Unlock()
	}
}

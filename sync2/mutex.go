package sync2

import (
	"sync"
	"sync/atomic"
)

// OwnerToken identifies a RecursiveMutex owner. It is deliberately not
// derived from a goroutine id (parsing runtime.Stack output is fragile and
// explicitly unsupported by the runtime). Instead every goroutine that
// wants recursive-mutex semantics obtains a token from NewOwnerToken, keeps
// it itself, and passes it to every Lock, Unlock and Guard call. This
// mirrors event/mutex.h's recursive lock without relying on anything the
// Go runtime doesn't actually expose.
type OwnerToken uint64

var ownerSeq uint64

// NewOwnerToken returns a fresh, process-unique token identifying a logical
// owner (goroutine) for RecursiveMutex purposes.
func NewOwnerToken() OwnerToken {
	return OwnerToken(atomic.AddUint64(&ownerSeq, 1))
}

// RecursiveMutex is a mutual-exclusion lock that the same owner may acquire
// any number of times, provided it releases the same number of times,
// matching event/mutex.h's recursive contract.
type RecursiveMutex struct {
	gate  sync.Mutex
	cond  *sync.Cond
	owner OwnerToken
	held  bool
	depth int
}

// NewRecursiveMutex constructs an unlocked RecursiveMutex.
func NewRecursiveMutex() *RecursiveMutex {
	m := &RecursiveMutex{}
	m.cond = sync.NewCond(&m.gate)
	return m
}

// Lock acquires the mutex for owner, blocking while a different owner holds it.
func (m *RecursiveMutex) Lock(owner OwnerToken) {
	m.gate.Lock()
	defer m.gate.Unlock()
	for m.held && m.owner != owner {
		m.cond.Wait()
	}
	m.owner = owner
	m.held = true
	m.depth++
}

// Unlock releases one level of ownership acquired by owner. The final
// Unlock for a given acquisition sequence wakes one waiting owner.
func (m *RecursiveMutex) Unlock(owner OwnerToken) {
	m.gate.Lock()
	defer m.gate.Unlock()
	if !m.held || m.owner != owner {
		panic("sync2: Unlock by non-owner")
	}
	m.depth--
	if m.depth == 0 {
		m.held = false
		m.cond.Signal()
	}
}

// Guard acquires mtx for owner and returns a release function meant to be
// deferred immediately, so it fires on every exit path — normal return,
// panic, or early return — mirroring the RAII scoped guard.
func Guard(mtx *RecursiveMutex, owner OwnerToken) func() {
	mtx.Lock(owner)
	return func() { mtx.Unlock(owner) }
}

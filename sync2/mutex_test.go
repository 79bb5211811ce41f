package sync2_test

import (
	"sync"
	"testing"
	"time"

	"github.com/momentics/netkit/sync2"
)

func TestRecursiveMutexSameOwnerReenters(t *testing.T) {
	m := sync2.NewRecursiveMutex()
	owner := sync2.NewOwnerToken()
	m.Lock(owner)
	m.Lock(owner)
	m.Unlock(owner)
	m.Unlock(owner)
}

func TestRecursiveMutexUnlockByNonOwnerPanics(t *testing.T) {
	m := sync2.NewRecursiveMutex()
	a := sync2.NewOwnerToken()
	b := sync2.NewOwnerToken()
	m.Lock(a)
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Unlock by non-owner did not panic")
		}
	}()
	m.Unlock(b)
}

func TestRecursiveMutexExcludesOtherOwners(t *testing.T) {
	m := sync2.NewRecursiveMutex()
	a := sync2.NewOwnerToken()
	b := sync2.NewOwnerToken()

	m.Lock(a)
	acquired := make(chan struct{})
	go func() {
		m.Lock(b)
		close(acquired)
		m.Unlock(b)
	}()

	select {
	case <-acquired:
		t.Fatal("owner b acquired the mutex while owner a still held it")
	case <-time.After(20 * time.Millisecond):
	}

	m.Unlock(a)
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("owner b never acquired the mutex after a released it")
	}
}

func TestGuardReleasesOnReturn(t *testing.T) {
	m := sync2.NewRecursiveMutex()
	owner := sync2.NewOwnerToken()
	func() {
		release := sync2.Guard(m, owner)
		defer release()
	}()

	other := sync2.NewOwnerToken()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		m.Lock(other)
		m.Unlock(other)
	}()
	wg.Wait()
}

package ops

import (
	"sync"
	"testing"
	"time"

	"github.com/tetherdocs/tether/internal/errors"
)

func TestLockManager_AcquireRelease(t *testing.T) {
	m := NewLockManager()

	release, err := m.Acquire("k", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	release()

	// Released lock can be re-acquired immediately
	release, err = m.Acquire("k", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("re-Acquire() error = %v", err)
	}
	release()
}

func TestLockManager_BusyOnTimeout(t *testing.T) {
	m := NewLockManager()

	release, err := m.Acquire("k", time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer release()

	_, err = m.Acquire("k", 5*time.Millisecond)
	if !errors.Is(err, errors.ErrBusy) {
		t.Errorf("error = %v, want BUSY", err)
	}
}

func TestLockManager_KeysIndependent(t *testing.T) {
	m := NewLockManager()

	r1, err := m.Acquire("a", time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer r1()

	r2, err := m.Acquire("b", time.Millisecond)
	if err != nil {
		t.Errorf("unrelated key blocked: %v", err)
	} else {
		r2()
	}
}

func TestLockManager_WaiterGetsLock(t *testing.T) {
	m := NewLockManager()

	release, err := m.Acquire("k", time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r, err := m.Acquire("k", time.Second)
		if err != nil {
			t.Errorf("waiter should get the lock after release: %v", err)
			return
		}
		r()
	}()

	time.Sleep(10 * time.Millisecond)
	release()
	wg.Wait()
}

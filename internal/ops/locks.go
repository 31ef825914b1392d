package ops

import (
	"fmt"
	"sync"
	"time"

	"github.com/tetherdocs/tether/internal/errors"
)

// LockManager provides per-key mutual exclusion with a bounded wait.
// Sync operations on the same artifact are serialized through it; a
// caller that cannot acquire the lock within the bound gets a retryable
// BUSY error instead of blocking indefinitely.
type LockManager struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

// NewLockManager creates an empty LockManager.
func NewLockManager() *LockManager {
	return &LockManager{locks: make(map[string]chan struct{})}
}

// Acquire takes the lock for key, waiting at most wait. On success it
// returns a release function that must be called exactly once.
func (m *LockManager) Acquire(key string, wait time.Duration) (func(), error) {
	ch := m.channel(key)

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	default:
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-timer.C:
		return nil, errors.NewBusy(fmt.Sprintf("artifact is locked by another operation (waited %s)", wait))
	}
}

// channel returns the buffered channel acting as the mutex for key.
// Channels are never removed; the set of keys is bounded by the set of
// artifacts touched by this process.
func (m *LockManager) channel(key string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		m.locks[key] = ch
	}
	return ch
}

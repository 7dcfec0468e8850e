package services

import (
	"context"
	"sync"
)

// OperationLock is the process-wide mutual exclusion for admin operations.
// It is a lock, not a queue: TryAcquire fails immediately when held.
type OperationLock struct {
	mu     sync.Mutex
	held   bool
	holder string
	freed  chan struct{}
}

// NewOperationLock creates an unheld lock.
func NewOperationLock() *OperationLock {
	return &OperationLock{}
}

// TryAcquire takes the lock for holder if it is free.
func (l *OperationLock) TryAcquire(holder string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return false
	}
	l.held = true
	l.holder = holder
	l.freed = make(chan struct{})
	return true
}

// Acquire waits for the lock or the context.
func (l *OperationLock) Acquire(ctx context.Context, holder string) error {
	for {
		if l.TryAcquire(holder) {
			return nil
		}
		l.mu.Lock()
		freed := l.freed
		l.mu.Unlock()
		if freed == nil {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-freed:
		}
	}
}

// Release frees the lock. Releasing a free lock is a no-op.
func (l *OperationLock) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.held {
		return
	}
	l.held = false
	l.holder = ""
	close(l.freed)
	l.freed = nil
}

// Held reports whether the lock is taken and by whom.
func (l *OperationLock) Held() (bool, string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held, l.holder
}

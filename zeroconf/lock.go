package zeroconf

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// QueryLock serializes discovery operations.
//
// Waiters are granted the lock in arrival order, and a waiter whose context
// ends gives up before the lock is granted. The lock is not reentrant.
// Share one QueryLock between Resolvers with WithQueryLock to serialize them
// together.
type QueryLock struct {
	sem *semaphore.Weighted
}

// NewQueryLock returns an unlocked QueryLock.
func NewQueryLock() *QueryLock {
	return &QueryLock{sem: semaphore.NewWeighted(1)}
}

// Lock blocks until the lock is held or ctx ends, returning ctx.Err() in
// the latter case.
func (l *QueryLock) Lock(ctx context.Context) error {
	return l.sem.Acquire(ctx, 1)
}

// TryLock takes the lock if it is free.
func (l *QueryLock) TryLock() bool {
	return l.sem.TryAcquire(1)
}

// Unlock releases the lock. Unlocking a free lock panics.
func (l *QueryLock) Unlock() {
	l.sem.Release(1)
}

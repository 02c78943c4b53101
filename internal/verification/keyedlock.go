package verification

import (
	"context"
	"sync"
	"time"
)

// KeyedLock serializes the read-apply-persist critical section per
// (employee, date) key. Different keys proceed fully in parallel. Waiting is
// bounded: a caller that cannot enter within its wait budget fails fast
// instead of queueing indefinitely.
type KeyedLock struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	sem  chan struct{} // capacity 1
	refs int
}

// NewKeyedLock creates an empty lock table.
func NewKeyedLock() *KeyedLock {
	return &KeyedLock{entries: make(map[string]*lockEntry)}
}

// Acquire takes the lock for key, waiting at most maxWait. On success the
// returned release function must be called exactly once. Returns ErrBusy on
// timeout and the context error on cancellation.
func (l *KeyedLock) Acquire(ctx context.Context, key string, maxWait time.Duration) (func(), error) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &lockEntry{sem: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	timer := time.NewTimer(maxWait)
	defer timer.Stop()

	select {
	case e.sem <- struct{}{}:
		return func() {
			<-e.sem
			l.put(key, e)
		}, nil
	case <-timer.C:
		l.put(key, e)
		return nil, ErrBusy
	case <-ctx.Done():
		l.put(key, e)
		return nil, ctx.Err()
	}
}

// put drops one reference and removes the entry once nobody holds or waits
// for it, so the table does not grow with one entry per employee-day
// forever.
func (l *KeyedLock) put(key string, e *lockEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

// Len returns the number of live entries, exposed for tests.
func (l *KeyedLock) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

package lock

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	sem  chan struct{}
	refs int
}

// MemoryLocker is a Locker for a single API instance.
type MemoryLocker struct {
	mu          sync.Mutex
	entries     map[string]*memoryEntry
	waitTimeout time.Duration
}

// NewMemoryLocker creates an in-process locker.
func NewMemoryLocker(waitTimeout time.Duration) *MemoryLocker {
	return &MemoryLocker{
		entries:     make(map[string]*memoryEntry),
		waitTimeout: waitTimeout,
	}
}

func (l *MemoryLocker) Acquire(ctx context.Context, key string) (Release, error) {
	entry := l.ref(key)

	waitCtx, cancel := waitContext(ctx, l.waitTimeout)
	defer cancel()

	select {
	case entry.sem <- struct{}{}:
	case <-waitCtx.Done():
		l.unref(key, entry)
		return nil, waitError(waitCtx, key)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-entry.sem
			l.unref(key, entry)
		})
	}, nil
}

func (l *MemoryLocker) ref(key string) *memoryEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok {
		entry = &memoryEntry{sem: make(chan struct{}, 1)}
		l.entries[key] = entry
	}
	entry.refs++
	return entry
}

// unref drops the entry once no holder or waiter is left.
func (l *MemoryLocker) unref(key string, entry *memoryEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry.refs--
	if entry.refs == 0 {
		delete(l.entries, key)
	}
}

package locker

import (
	"context"
	"sync"
)

type keyedEntry struct {
	sem  chan struct{}
	refs int
}

// KeyedLocker is an in-process Locker. Entries are dropped once nobody holds
// or waits for their key.
type KeyedLocker struct {
	mu      sync.Mutex
	entries map[string]*keyedEntry
}

// NewKeyedLocker creates an empty KeyedLocker.
func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{entries: make(map[string]*keyedEntry)}
}

func (l *KeyedLocker) acquireEntry(key string) *keyedEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &keyedEntry{sem: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *KeyedLocker) releaseEntry(key string, e *keyedEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

// Lock implements Locker.
func (l *KeyedLocker) Lock(ctx context.Context, key string) (Release, error) {
	e := l.acquireEntry(key)

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		l.releaseEntry(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() error {
		once.Do(func() {
			<-e.sem
			l.releaseEntry(key, e)
		})
		return nil
	}, nil
}

// Len returns the number of keys currently held or waited on.
func (l *KeyedLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

package locking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pet-auction/internal/biddingerrors"
)

// Locker serializes work on a key. Acquire blocks until the lock is held or
// ctx is done; the returned unlock func is safe to call more than once.
// ttl bounds how long a crashed holder can keep a distributed lock and is
// ignored by in-process implementations.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// AuctionKey is the lock key for one auction
func AuctionKey(auctionID string) string {
	return "auction:" + auctionID
}

// AcquireWithin waits at most wait for the lock and reports ErrLockTimeout
// when the wait runs out
func AcquireWithin(ctx context.Context, l Locker, key string, wait, ttl time.Duration) (func(), error) {
	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	unlock, err := l.Acquire(waitCtx, key, ttl)
	if err != nil {
		if ctx.Err() == nil && waitCtx.Err() != nil {
			return nil, fmt.Errorf("acquire %s after %s: %w", key, wait, biddingerrors.ErrLockTimeout)
		}
		return nil, err
	}
	return unlock, nil
}

type keyedEntry struct {
	ch   chan struct{}
	refs int
}

// KeyedLocker is an in-process Locker holding one mutex per key.
// Entries are dropped once nobody holds or waits for them.
type KeyedLocker struct {
	mu      sync.Mutex
	entries map[string]*keyedEntry
}

func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{entries: make(map[string]*keyedEntry)}
}

func (k *KeyedLocker) Acquire(ctx context.Context, key string, _ time.Duration) (func(), error) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &keyedEntry{ch: make(chan struct{}, 1)}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		k.release(key, e)
		return nil, fmt.Errorf("acquire %s: %w", key, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			k.release(key, e)
		})
	}, nil
}

func (k *KeyedLocker) release(key string, e *keyedEntry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
}

// Len returns the number of keys currently held or awaited
func (k *KeyedLocker) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}

var _ Locker = (*KeyedLocker)(nil)

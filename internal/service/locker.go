package service

import (
	"context"
	"fmt"
	"sync"
)

// Locker gives one writer at a time per key, ahead of the store transaction.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

// KeyedMutex is an in-process Locker. Entries are dropped once unused.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*keyedEntry
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{entries: make(map[string]*keyedEntry)}
}

func (k *KeyedMutex) Lock(_ context.Context, key string) (func(), error) {
	k.mu.Lock()
	entry, ok := k.entries[key]
	if !ok {
		entry = &keyedEntry{}
		k.entries[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}, nil
}

func ticketLockKey(collectionID uint, ticketID uint64) string {
	return fmt.Sprintf("ticket:%d:%d", collectionID, ticketID)
}

func collectionLockKey(collectionID uint) string {
	return fmt.Sprintf("collection:%d", collectionID)
}

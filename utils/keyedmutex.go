package utils

import "sync"

// KeyedMutex serializes work per aggregate id. Two concurrent writers on the
// same id would otherwise race the load-mutate-save window and corrupt the
// status history; different ids proceed in parallel.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[uint]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex creates an empty keyed mutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[uint]*entry)}
}

// Lock acquires the mutex for key, blocking while another caller holds it.
func (km *KeyedMutex) Lock(key uint) {
	km.mu.Lock()
	e, ok := km.locks[key]
	if !ok {
		e = &entry{}
		km.locks[key] = e
	}
	e.refs++
	km.mu.Unlock()

	e.mu.Lock()
}

// Unlock releases the mutex for key. Entries with no waiters are dropped so
// the map does not grow with the id space.
func (km *KeyedMutex) Unlock(key uint) {
	km.mu.Lock()
	e, ok := km.locks[key]
	if ok {
		e.refs--
		if e.refs == 0 {
			delete(km.locks, key)
		}
	}
	km.mu.Unlock()

	if ok {
		e.mu.Unlock()
	}
}

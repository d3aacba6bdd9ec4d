package proctor

import "sync"

// KeyMutex is a table of mutexes keyed by string. All coordinator work
// touching one session hash (read-then-admit, violation processing) runs
// under that hash's mutex; different hashes proceed in parallel. Entries are
// reference counted so the table does not grow with dead hashes.
type KeyMutex struct {
    mu    sync.Mutex
    locks map[string]*keyLockEntry
}

type keyLockEntry struct {
    mu   sync.Mutex
    refs int
}

func NewKeyMutex() *KeyMutex {
    return &KeyMutex{locks: map[string]*keyLockEntry{}}
}

func (k *KeyMutex) Lock(key string) {
    k.mu.Lock()
    e, ok := k.locks[key]
    if !ok {
        e = &keyLockEntry{}
        k.locks[key] = e
    }
    e.refs++
    k.mu.Unlock()

    e.mu.Lock()
}

func (k *KeyMutex) Unlock(key string) {
    k.mu.Lock()
    e, ok := k.locks[key]
    if !ok {
        k.mu.Unlock()
        panic("proctor: unlock of unheld key " + key)
    }
    e.refs--
    if e.refs == 0 {
        delete(k.locks, key)
    }
    k.mu.Unlock()

    e.mu.Unlock()
}

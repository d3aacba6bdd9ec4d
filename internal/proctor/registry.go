package proctor

import (
    "sync"
    "time"
)

// StudentIdentity is the display snapshot captured when a connection is
// admitted. Never persisted.
type StudentIdentity struct {
    Name  string
    Email string
}

// ActiveConnection is one live student connection, coordinator-memory only.
type ActiveConnection struct {
    ConnID      string
    Hash        string
    Student     StudentIdentity
    ConnectedAt time.Time
}

// Registry tracks active connections per session hash and enforces the
// simultaneous-connection ceiling. The count check and the insert happen
// under one lock, so two racing Admit calls can never both pass the check.
type Registry struct {
    mu     sync.RWMutex
    byHash map[string]map[string]*ActiveConnection
    byConn map[string]string
}

func NewRegistry() *Registry {
    return &Registry{
        byHash: map[string]map[string]*ActiveConnection{},
        byConn: map[string]string{},
    }
}

// Admit records a connection for hash unless the ceiling is already reached.
func (r *Registry) Admit(hash, connID string, student StudentIdentity, ceiling int) error {
    if ceiling < 1 {
        ceiling = 1
    }
    r.mu.Lock()
    defer r.mu.Unlock()

    conns := r.byHash[hash]
    if len(conns) >= ceiling {
        return ErrCapacityExceeded
    }
    if conns == nil {
        conns = map[string]*ActiveConnection{}
        r.byHash[hash] = conns
    }
    conns[connID] = &ActiveConnection{
        ConnID:      connID,
        Hash:        hash,
        Student:     student,
        ConnectedAt: time.Now(),
    }
    r.byConn[connID] = hash
    return nil
}

// Release removes a connection wherever it is tracked. Idempotent: releasing
// an unknown id is a no-op. Returns the hash it belonged to, if any.
func (r *Registry) Release(connID string) (string, bool) {
    r.mu.Lock()
    defer r.mu.Unlock()

    hash, ok := r.byConn[connID]
    if !ok {
        return "", false
    }
    delete(r.byConn, connID)
    if conns := r.byHash[hash]; conns != nil {
        delete(conns, connID)
        if len(conns) == 0 {
            delete(r.byHash, hash)
        }
    }
    return hash, true
}

// CountFor returns the current connection count for a hash.
func (r *Registry) CountFor(hash string) int {
    r.mu.RLock()
    defer r.mu.RUnlock()
    return len(r.byHash[hash])
}

// Lookup maps a transport connection id back to its tracked connection.
func (r *Registry) Lookup(connID string) (*ActiveConnection, bool) {
    r.mu.RLock()
    defer r.mu.RUnlock()

    hash, ok := r.byConn[connID]
    if !ok {
        return nil, false
    }
    conn, ok := r.byHash[hash][connID]
    return conn, ok
}

// DropAll removes every connection for a hash and returns the dropped ids.
// Used when a terminate penalty cancels the session.
func (r *Registry) DropAll(hash string) []string {
    r.mu.Lock()
    defer r.mu.Unlock()

    conns := r.byHash[hash]
    if len(conns) == 0 {
        return nil
    }
    dropped := make([]string, 0, len(conns))
    for id := range conns {
        dropped = append(dropped, id)
        delete(r.byConn, id)
    }
    delete(r.byHash, hash)
    return dropped
}

package proctor

import (
    "errors"
    "log"

    "github.com/avalia/avalia_backend/internal/metrics"
    "github.com/avalia/avalia_backend/internal/models"
)

// SessionRef bundles a validated session with the policy snapshot it was
// validated under.
type SessionRef struct {
    Session *models.ExamSession
    Policy  *PolicySnapshot
}

// SessionInfo is what a freshly admitted connection learns about itself.
type SessionInfo struct {
    Hash      string
    ExamTitle string
    Student   StudentIdentity
}

// Coordinator is the live proctoring session coordinator: it admits student
// connections, tracks them, and routes violation reports through the
// processor. One instance per deployment.
type Coordinator struct {
    store     Store
    registry  *Registry
    validator *Validator
    processor *Processor
    locks     *KeyMutex
}

func NewCoordinator(store Store, dispatcher Dispatcher) *Coordinator {
    registry := NewRegistry()
    locks := NewKeyMutex()
    return &Coordinator{
        store:     store,
        registry:  registry,
        validator: NewValidator(store),
        processor: NewProcessor(store, registry, dispatcher, locks),
        locks:     locks,
    }
}

// Registry exposes the connection registry (read paths for handlers/tests).
func (c *Coordinator) Registry() *Registry {
    return c.registry
}

// Connect validates and admits one student connection. The whole
// read-then-admit sequence runs under the hash's mutex so concurrent
// attempts against the same session serialize and the capacity ceiling
// holds.
func (c *Coordinator) Connect(hash, remoteIP, connID string) (*SessionInfo, error) {
    c.locks.Lock(hash)
    defer c.locks.Unlock(hash)

    ref, err := c.validator.Authorize(hash, remoteIP)
    if err != nil {
        metrics.ConnectsRejected.WithLabelValues(rejectReason(err)).Inc()
        return nil, err
    }
    student, err := c.store.StudentInfo(ref.Session.StudentIDRef)
    if err != nil {
        log.Printf("proctor: student lookup for %s failed: %v", hash, err)
    }
    if err := c.registry.Admit(hash, connID, student, ref.Policy.MaxConnections); err != nil {
        metrics.ConnectsRejected.WithLabelValues(rejectReason(err)).Inc()
        return nil, err
    }
    exam, err := c.store.ExamInfo(ref.Session.ExamInstanceIDRef)
    if err != nil {
        log.Printf("proctor: exam lookup for %s failed: %v", hash, err)
        exam = &ExamSummary{}
    }
    metrics.ConnectsAdmitted.Inc()
    metrics.ActiveConnections.Inc()
    return &SessionInfo{Hash: hash, ExamTitle: exam.Title, Student: student}, nil
}

// Disconnect releases a connection. Safe to call for ids that were already
// dropped (terminate cleanup races a closing socket here).
func (c *Coordinator) Disconnect(connID string) {
    if _, ok := c.registry.Release(connID); ok {
        metrics.ActiveConnections.Dec()
    }
}

// ReportViolation forwards a violation report for processing.
func (c *Coordinator) ReportViolation(connID, violationType string) {
    c.processor.Process(connID, violationType)
}

func rejectReason(err error) string {
    var ne *NotEligibleError
    switch {
    case errors.Is(err, ErrSessionNotFound):
        return "not_found"
    case errors.As(err, &ne):
        return "not_eligible"
    case errors.Is(err, ErrIPNotAllowed):
        return "ip_not_allowed"
    case errors.Is(err, ErrCapacityExceeded):
        return "capacity"
    }
    return "error"
}

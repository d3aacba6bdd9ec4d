package proctor

import (
    "errors"
    "sync"

    "github.com/avalia/avalia_backend/internal/models"
)

// fakeStore is an in-memory Store for coordinator tests.
type fakeStore struct {
    mu         sync.Mutex
    sessions   map[string]models.ExamSession
    policies   map[uint]PolicySnapshot
    exams      map[uint]ExamSummary
    students   map[uint]StudentIdentity
    records    []models.ViolationRecord
    failWrites bool
}

func newFakeStore() *fakeStore {
    return &fakeStore{
        sessions: map[string]models.ExamSession{},
        policies: map[uint]PolicySnapshot{},
        exams:    map[uint]ExamSummary{},
        students: map[uint]StudentIdentity{},
    }
}

func (s *fakeStore) putSession(sess models.ExamSession) {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.sessions[sess.Hash] = sess
}

func (s *fakeStore) session(hash string) models.ExamSession {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.sessions[hash]
}

func (s *fakeStore) SessionByHash(hash string) (*models.ExamSession, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    sess, ok := s.sessions[hash]
    if !ok {
        return nil, ErrSessionNotFound
    }
    out := sess
    return &out, nil
}

func (s *fakeStore) PolicyForExam(examID uint) (*PolicySnapshot, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    policy, ok := s.policies[examID]
    if !ok {
        return &PolicySnapshot{MaxConnections: DefaultMaxConnections}, nil
    }
    out := policy
    return &out, nil
}

func (s *fakeStore) ExamInfo(examID uint) (*ExamSummary, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    exam, ok := s.exams[examID]
    if !ok {
        return &ExamSummary{}, nil
    }
    out := exam
    return &out, nil
}

func (s *fakeStore) StudentInfo(studentID uint) (StudentIdentity, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.students[studentID], nil
}

func (s *fakeStore) OccurrenceCount(sessionID uint, violationType string) (int, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    count := 0
    for _, rec := range s.records {
        if rec.SessionIDRef == sessionID && rec.ViolationType == violationType {
            count++
        }
    }
    return count, nil
}

func (s *fakeStore) RuleApplications(sessionID uint) (map[uint]int, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    applied := map[uint]int{}
    for _, rec := range s.records {
        if rec.SessionIDRef == sessionID && rec.RuleIDRef != nil {
            applied[*rec.RuleIDRef]++
        }
    }
    return applied, nil
}

func (s *fakeStore) RecordOutcome(sess *models.ExamSession, rec *models.ViolationRecord) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.failWrites {
        return errors.New("write failed")
    }
    s.sessions[sess.Hash] = *sess
    s.records = append(s.records, *rec)
    return nil
}

// fakeDispatcher records outbound notifications.
type fakeDispatcher struct {
    mu               sync.Mutex
    evaluatorNotices []EvaluatorNotice
    studentNotices   []StudentNotice
    closedSessions   []string
}

func (d *fakeDispatcher) NotifyEvaluator(evaluatorID string, n EvaluatorNotice) {
    d.mu.Lock()
    defer d.mu.Unlock()
    d.evaluatorNotices = append(d.evaluatorNotices, n)
}

func (d *fakeDispatcher) NotifyStudent(hash string, n StudentNotice) {
    d.mu.Lock()
    defer d.mu.Unlock()
    d.studentNotices = append(d.studentNotices, n)
}

func (d *fakeDispatcher) CloseSession(hash string) {
    d.mu.Lock()
    defer d.mu.Unlock()
    d.closedSessions = append(d.closedSessions, hash)
}

func (d *fakeDispatcher) snapshot() (evals []EvaluatorNotice, students []StudentNotice, closed []string) {
    d.mu.Lock()
    defer d.mu.Unlock()
    return append([]EvaluatorNotice{}, d.evaluatorNotices...),
        append([]StudentNotice{}, d.studentNotices...),
        append([]string{}, d.closedSessions...)
}

package proctor

import "github.com/avalia/avalia_backend/internal/models"

// DefaultMaxConnections applies when an exam instance has no stored policy.
const DefaultMaxConnections = 1

// RuleSnapshot is an immutable copy of one escalation rule, detached from
// persistence so the rule engine stays a pure function.
type RuleSnapshot struct {
    ID                  uint
    ViolationType       string
    OccurrenceThreshold int
    PenaltyType         string
    ScorePenalty        float64
    TimePenaltySeconds  int
    AlwaysApply         bool
    MaxApplications     *int
}

// PolicySnapshot is the security policy in force for one exam instance,
// taken as a value at evaluation time.
type PolicySnapshot struct {
    MaxConnections   int
    IPControlEnabled bool
    AllowedIPs       []string
    Rules            []RuleSnapshot
}

// ExamSummary is what the coordinator needs to know about an exam instance:
// its display title and the user id of the evaluator observing it.
type ExamSummary struct {
    Title       string
    EvaluatorID string
}

// Store is the persistence seam consumed by the coordinator. The production
// implementation is backed by gorm; tests use an in-memory fake.
type Store interface {
    // SessionByHash resolves a session by its capability hash. Returns
    // ErrSessionNotFound when absent.
    SessionByHash(hash string) (*models.ExamSession, error)

    // PolicyForExam returns the policy snapshot for an exam instance, or a
    // default snapshot when none is configured.
    PolicyForExam(examID uint) (*PolicySnapshot, error)

    // ExamInfo returns title and evaluator identity for an exam instance.
    ExamInfo(examID uint) (*ExamSummary, error)

    // StudentInfo returns the display snapshot for a student user.
    StudentInfo(studentID uint) (StudentIdentity, error)

    // OccurrenceCount counts persisted violations of one type for a session.
    OccurrenceCount(sessionID uint, violationType string) (int, error)

    // RuleApplications counts, per rule id, how many times each rule has
    // already fired for a session.
    RuleApplications(sessionID uint) (map[uint]int, error)

    // RecordOutcome persists the session mutation and the violation record
    // atomically. If it fails, no penalty is considered applied.
    RecordOutcome(sess *models.ExamSession, rec *models.ViolationRecord) error
}

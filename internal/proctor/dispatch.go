package proctor

import (
    "fmt"

    "github.com/avalia/avalia_backend/internal/models"
)

// EvaluatorNotice is pushed to the observing evaluator for every processed
// violation, penalized or not.
type EvaluatorNotice struct {
    StudentName        string
    StudentEmail       string
    ViolationType      string
    ExamTitle          string
    OccurrenceCount    int
    PenaltyDescription string
}

// StudentNotice is pushed to the affected student's connection when a
// penalty was applied.
type StudentNotice struct {
    PenaltyType        string
    ScorePenalty       float64
    TimePenaltySeconds int
}

// Dispatcher pushes live-observation signals to connected clients. Delivery
// is best-effort: implementations log and drop when the target is not
// connected, and must never block the caller.
type Dispatcher interface {
    NotifyEvaluator(evaluatorID string, n EvaluatorNotice)
    NotifyStudent(hash string, n StudentNotice)

    // CloseSession closes every student transport for a hash after a
    // terminate penalty cancelled the session.
    CloseSession(hash string)
}

func describePenalty(rule *RuleSnapshot) string {
    switch rule.PenaltyType {
    case models.PenaltyReduceScore:
        return fmt.Sprintf("score reduced by %g", rule.ScorePenalty)
    case models.PenaltyReduceTime:
        return fmt.Sprintf("time reduced by %ds", rule.TimePenaltySeconds)
    case models.PenaltyTerminate:
        return "session terminated"
    }
    return rule.PenaltyType
}

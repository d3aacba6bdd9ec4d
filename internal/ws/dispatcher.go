package ws

import (
    "github.com/avalia/avalia_backend/internal/proctor"
)

// Dispatcher adapts coordinator notices onto the hubs. Satisfies
// proctor.Dispatcher; all delivery is fire-and-forget.
type Dispatcher struct {
    hubs *Hubs
}

func NewDispatcher(hubs *Hubs) *Dispatcher {
    return &Dispatcher{hubs: hubs}
}

func (d *Dispatcher) NotifyEvaluator(evaluatorID string, n proctor.EvaluatorNotice) {
    d.hubs.Evaluator.Notify(evaluatorID, EvaluatorEvent{
        Type:            EventViolationNotice,
        StudentName:     n.StudentName,
        StudentEmail:    n.StudentEmail,
        ViolationType:   n.ViolationType,
        ExamTitle:       n.ExamTitle,
        OccurrenceCount: n.OccurrenceCount,
        Penalty:         n.PenaltyDescription,
    })
}

func (d *Dispatcher) NotifyStudent(hash string, n proctor.StudentNotice) {
    d.hubs.Student.Notify(hash, StudentEvent{
        Type:               EventPenaltyApplied,
        PenaltyType:        n.PenaltyType,
        ScorePenalty:       n.ScorePenalty,
        TimePenaltySeconds: n.TimePenaltySeconds,
    })
}

func (d *Dispatcher) CloseSession(hash string) {
    d.hubs.Student.CloseSession(hash)
}

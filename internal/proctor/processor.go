package proctor

import (
    "log"
    "time"

    "github.com/avalia/avalia_backend/internal/metrics"
    "github.com/avalia/avalia_backend/internal/models"
)

// Processor handles violation reports from connected students: attribution,
// durable occurrence counting, rule evaluation, penalty application and
// notification. Processing for one session is serialized by the shared
// per-hash mutex; different sessions proceed in parallel.
type Processor struct {
    store      Store
    registry   *Registry
    dispatcher Dispatcher
    locks      *KeyMutex
}

func NewProcessor(store Store, registry *Registry, dispatcher Dispatcher, locks *KeyMutex) *Processor {
    return &Processor{store: store, registry: registry, dispatcher: dispatcher, locks: locks}
}

// Process runs one violation report end to end. Reports that cannot be
// attributed to a tracked connection, and reports whose durable write fails,
// are logged and dropped; no penalty is considered applied in either case.
func (p *Processor) Process(connID, violationType string) {
    conn, ok := p.registry.Lookup(connID)
    if !ok {
        log.Printf("proctor: dropping unattributed violation report conn=%s type=%s", connID, violationType)
        return
    }
    hash := conn.Hash

    p.locks.Lock(hash)
    defer p.locks.Unlock(hash)

    sess, err := p.store.SessionByHash(hash)
    if err != nil {
        log.Printf("proctor: violation for %s not processed: %v", hash, err)
        return
    }
    policy, err := p.store.PolicyForExam(sess.ExamInstanceIDRef)
    if err != nil {
        log.Printf("proctor: violation for %s not processed: %v", hash, err)
        return
    }
    count, err := p.store.OccurrenceCount(sess.ID, violationType)
    if err != nil {
        log.Printf("proctor: violation for %s not processed: %v", hash, err)
        return
    }
    count++
    applied, err := p.store.RuleApplications(sess.ID)
    if err != nil {
        log.Printf("proctor: violation for %s not processed: %v", hash, err)
        return
    }

    fired := EvaluateRules(violationType, count, policy.Rules, applied)

    rec := &models.ViolationRecord{
        SessionIDRef:    sess.ID,
        ViolationType:   violationType,
        OccurrenceCount: count,
    }
    terminated := false
    if fired != nil {
        rec.RuleIDRef = &fired.ID
        switch fired.PenaltyType {
        case models.PenaltyReduceScore:
            sess.ScoreTotal -= fired.ScorePenalty
            if sess.ScoreTotal < 0 {
                sess.ScoreTotal = 0
            }
        case models.PenaltyReduceTime:
            sess.PausedTimeOffsetSeconds += fired.TimePenaltySeconds
        case models.PenaltyTerminate:
            sess.State = models.StateCancelled
            now := time.Now()
            sess.FinalizedAt = &now
            terminated = true
        }
    }

    // Durable write first; notifications only after it succeeds, so a
    // redelivered report is safe to reprocess.
    if err := p.store.RecordOutcome(sess, rec); err != nil {
        log.Printf("proctor: violation for %s not processed: %v", hash, err)
        return
    }

    metrics.ViolationsProcessed.WithLabelValues(violationType).Inc()
    if fired != nil {
        metrics.PenaltiesApplied.WithLabelValues(fired.PenaltyType).Inc()
    }

    exam, err := p.store.ExamInfo(sess.ExamInstanceIDRef)
    if err != nil {
        log.Printf("proctor: exam lookup for %s failed, notice skipped: %v", hash, err)
        exam = &ExamSummary{}
    }

    notice := EvaluatorNotice{
        StudentName:     conn.Student.Name,
        StudentEmail:    conn.Student.Email,
        ViolationType:   violationType,
        ExamTitle:       exam.Title,
        OccurrenceCount: count,
    }
    if fired != nil {
        notice.PenaltyDescription = describePenalty(fired)
    }
    if exam.EvaluatorID != "" {
        p.dispatcher.NotifyEvaluator(exam.EvaluatorID, notice)
    }
    if fired != nil {
        p.dispatcher.NotifyStudent(hash, StudentNotice{
            PenaltyType:        fired.PenaltyType,
            ScorePenalty:       fired.ScorePenalty,
            TimePenaltySeconds: fired.TimePenaltySeconds,
        })
    }

    if terminated {
        dropped := p.registry.DropAll(hash)
        metrics.ActiveConnections.Sub(float64(len(dropped)))
        p.dispatcher.CloseSession(hash)
    }
}

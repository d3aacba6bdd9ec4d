package proctor

import (
    "errors"

    "gorm.io/gorm"

    "github.com/avalia/avalia_backend/internal/models"
)

// GormStore is the production Store backed by the relational schema.
type GormStore struct {
    db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
    return &GormStore{db: db}
}

func (s *GormStore) SessionByHash(hash string) (*models.ExamSession, error) {
    var sess models.ExamSession
    if err := s.db.Where("hash = ?", hash).First(&sess).Error; err != nil {
        if errors.Is(err, gorm.ErrRecordNotFound) {
            return nil, ErrSessionNotFound
        }
        return nil, err
    }
    return &sess, nil
}

func (s *GormStore) PolicyForExam(examID uint) (*PolicySnapshot, error) {
    var policy models.SecurityPolicy
    err := s.db.Preload("AllowedIPs").Preload("EscalationRules").
        Where("exam_instance_id_ref = ?", examID).First(&policy).Error
    if err != nil {
        if errors.Is(err, gorm.ErrRecordNotFound) {
            return &PolicySnapshot{MaxConnections: DefaultMaxConnections}, nil
        }
        return nil, err
    }

    snap := &PolicySnapshot{
        MaxConnections:   policy.MaxConnections,
        IPControlEnabled: policy.IPControlEnabled,
    }
    for _, ip := range policy.AllowedIPs {
        snap.AllowedIPs = append(snap.AllowedIPs, ip.Entry)
    }
    for _, rule := range policy.EscalationRules {
        snap.Rules = append(snap.Rules, RuleSnapshot{
            ID:                  rule.ID,
            ViolationType:       rule.ViolationType,
            OccurrenceThreshold: rule.OccurrenceThreshold,
            PenaltyType:         rule.PenaltyType,
            ScorePenalty:        rule.ScorePenalty,
            TimePenaltySeconds:  rule.TimePenaltySeconds,
            AlwaysApply:         rule.AlwaysApply,
            MaxApplications:     rule.MaxApplications,
        })
    }
    return snap, nil
}

func (s *GormStore) ExamInfo(examID uint) (*ExamSummary, error) {
    var exam models.ExamInstance
    if err := s.db.First(&exam, examID).Error; err != nil {
        return nil, err
    }
    summary := &ExamSummary{Title: exam.Title}
    var evaluator models.User
    if err := s.db.First(&evaluator, exam.EvaluatorIDRef).Error; err == nil {
        summary.EvaluatorID = evaluator.UserID
    }
    return summary, nil
}

func (s *GormStore) StudentInfo(studentID uint) (StudentIdentity, error) {
    var student models.User
    if err := s.db.First(&student, studentID).Error; err != nil {
        return StudentIdentity{}, err
    }
    return StudentIdentity{Name: student.FullName, Email: student.Email}, nil
}

func (s *GormStore) OccurrenceCount(sessionID uint, violationType string) (int, error) {
    var count int64
    err := s.db.Model(&models.ViolationRecord{}).
        Where("session_id_ref = ? AND violation_type = ?", sessionID, violationType).
        Count(&count).Error
    return int(count), err
}

func (s *GormStore) RuleApplications(sessionID uint) (map[uint]int, error) {
    var rows []struct {
        RuleIDRef uint
        Total     int
    }
    err := s.db.Model(&models.ViolationRecord{}).
        Select("rule_id_ref, count(*) as total").
        Where("session_id_ref = ? AND rule_id_ref IS NOT NULL", sessionID).
        Group("rule_id_ref").
        Scan(&rows).Error
    if err != nil {
        return nil, err
    }
    applied := make(map[uint]int, len(rows))
    for _, row := range rows {
        applied[row.RuleIDRef] = row.Total
    }
    return applied, nil
}

func (s *GormStore) RecordOutcome(sess *models.ExamSession, rec *models.ViolationRecord) error {
    return s.db.Transaction(func(tx *gorm.DB) error {
        if err := tx.Save(sess).Error; err != nil {
            return err
        }
        return tx.Create(rec).Error
    })
}

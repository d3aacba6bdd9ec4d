package models

import "time"

// SessionState enumerates the lifecycle of an exam session.
type SessionState string

const (
    StateCodeConfirmed SessionState = "code_confirmed"
    StateStarted       SessionState = "started"
    StateSubmitted     SessionState = "submitted"
    StateGraded        SessionState = "graded"
    StateClosed        SessionState = "closed"
    StateAbandoned     SessionState = "abandoned"
    StateReopened      SessionState = "reopened"
    StatePaused        SessionState = "paused"
    StateCancelled     SessionState = "cancelled"
)

// ExamSession is one student's attempt at an exam instance. The hash is the
// capability token used on the realtime channel instead of the row id.
type ExamSession struct {
    ID                      uint         `gorm:"primaryKey"`
    Hash                    string       `gorm:"uniqueIndex"`
    State                   SessionState `gorm:"index"`
    ScoreTotal              float64
    PausedTimeOffsetSeconds int
    ExamInstanceIDRef       uint `gorm:"index"`
    StudentIDRef            uint `gorm:"index"`
    FinalizedAt             *time.Time
    CreatedAt               time.Time
    UpdatedAt               time.Time
}

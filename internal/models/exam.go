package models

import "time"

// ExamInstance is one scheduled administration of an exam. Students join it
// by redeeming its access code; the owning evaluator monitors it live.
type ExamInstance struct {
    ID              uint   `gorm:"primaryKey"`
    Title           string
    EvaluatorIDRef  uint   `gorm:"index"`
    AccessCode      string `gorm:"uniqueIndex"`
    DurationMinutes int
    StartsAt        *time.Time
    EndsAt          *time.Time
    CreatedAt       time.Time
    UpdatedAt       time.Time
}

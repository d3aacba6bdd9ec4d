package models

import "time"

// ViolationRecord is the append-only trail of reported violations. One row
// per reported occurrence; RuleIDRef is set only when a rule fired on that
// occurrence. Counts are always derived by aggregating these rows.
type ViolationRecord struct {
    ID              uint  `gorm:"primaryKey"`
    SessionIDRef    uint  `gorm:"index"`
    RuleIDRef       *uint `gorm:"index"`
    ViolationType   string `gorm:"size:64;index"`
    OccurrenceCount int
    CreatedAt       time.Time
}

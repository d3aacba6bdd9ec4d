package models

import "time"

// Penalty types an escalation rule may apply.
const (
    PenaltyReduceScore = "reduce_score"
    PenaltyReduceTime  = "reduce_time"
    PenaltyTerminate   = "terminate"
)

// SecurityPolicy holds the integrity configuration for one exam instance.
type SecurityPolicy struct {
    ID                uint `gorm:"primaryKey"`
    ExamInstanceIDRef uint `gorm:"uniqueIndex"`
    MaxConnections    int
    IPControlEnabled  bool
    AllowedIPs        []PolicyAllowedIP `gorm:"foreignKey:PolicyIDRef"`
    EscalationRules   []EscalationRule  `gorm:"foreignKey:PolicyIDRef"`
    CreatedAt         time.Time
    UpdatedAt         time.Time
}

// PolicyAllowedIP is one allow-list entry: either a plain IPv4 address or a
// CIDR range (contains a slash).
type PolicyAllowedIP struct {
    ID          uint   `gorm:"primaryKey"`
    PolicyIDRef uint   `gorm:"index"`
    Entry       string `gorm:"size:64"`
    CreatedAt   time.Time
}

// EscalationRule maps cumulative occurrences of a violation type to a
// penalty. AlwaysApply rules re-fire on every multiple of the threshold;
// MaxApplications caps how many times a rule may fire per session (nil =
// unbounded).
type EscalationRule struct {
    ID                  uint   `gorm:"primaryKey"`
    PolicyIDRef         uint   `gorm:"index"`
    ViolationType       string `gorm:"size:64;index"`
    OccurrenceThreshold int
    PenaltyType         string `gorm:"size:32"`
    ScorePenalty        float64
    TimePenaltySeconds  int
    AlwaysApply         bool
    MaxApplications     *int
    CreatedAt           time.Time
    UpdatedAt           time.Time
}

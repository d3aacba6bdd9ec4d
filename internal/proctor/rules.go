package proctor

import "github.com/avalia/avalia_backend/internal/models"

// severityRank orders penalty types from least to most severe for the
// tie-break when several rules qualify at the same occurrence count.
func severityRank(penaltyType string) int {
    switch penaltyType {
    case models.PenaltyTerminate:
        return 3
    case models.PenaltyReduceTime:
        return 2
    case models.PenaltyReduceScore:
        return 1
    }
    return 0
}

// EvaluateRules decides which escalation rule, if any, fires for the given
// cumulative occurrence count of a violation type. Pure function over value
// snapshots.
//
// A rule is a candidate when its violation type matches and either
// alwaysApply is set and the count is a positive multiple of the threshold,
// or the count equals the threshold exactly. Candidates whose
// maxApplications cap is already reached are excluded. Among remaining
// candidates the most severe penalty wins, then the higher threshold.
// Returns nil in the common case that nothing fires.
func EvaluateRules(violationType string, occurrences int, rules []RuleSnapshot, applied map[uint]int) *RuleSnapshot {
    if occurrences <= 0 {
        return nil
    }
    var winner *RuleSnapshot
    for i := range rules {
        rule := &rules[i]
        if rule.ViolationType != violationType || rule.OccurrenceThreshold <= 0 {
            continue
        }
        if rule.AlwaysApply {
            if occurrences%rule.OccurrenceThreshold != 0 {
                continue
            }
        } else if occurrences != rule.OccurrenceThreshold {
            continue
        }
        if rule.MaxApplications != nil && applied[rule.ID] >= *rule.MaxApplications {
            continue
        }
        if winner == nil || moreSevere(rule, winner) {
            winner = rule
        }
    }
    if winner == nil {
        return nil
    }
    fired := *winner
    return &fired
}

func moreSevere(a, b *RuleSnapshot) bool {
    ra, rb := severityRank(a.PenaltyType), severityRank(b.PenaltyType)
    if ra != rb {
        return ra > rb
    }
    return a.OccurrenceThreshold > b.OccurrenceThreshold
}

package controllers

import (
    "errors"
    "fmt"
    "net/http"
    "strconv"

    "github.com/gin-gonic/gin"
    "gorm.io/gorm"

    "github.com/avalia/avalia_backend/internal/models"
    "github.com/avalia/avalia_backend/internal/proctor"
)

type PolicyController struct {
    DB *gorm.DB
}

type escalationRuleRequest struct {
    ViolationType       string         `json:"violation_type" binding:"required"`
    OccurrenceThreshold int            `json:"occurrence_threshold" binding:"required,min=1"`
    PenaltyType         string         `json:"penalty_type" binding:"required"`
    ScorePenalty        FlexibleString `json:"score_penalty"`
    TimePenaltySeconds  FlexibleString `json:"time_penalty_seconds"`
    AlwaysApply         bool           `json:"always_apply"`
    MaxApplications     *int           `json:"max_applications"`
}

type policyRequest struct {
    MaxConnections   int                     `json:"max_connections" binding:"min=1"`
    IPControlEnabled bool                    `json:"ip_control_enabled"`
    AllowedIPs       []string                `json:"allowed_ips"`
    Rules            []escalationRuleRequest `json:"rules"`
}

func (r escalationRuleRequest) toModel(policyID uint) (models.EscalationRule, error) {
    rule := models.EscalationRule{
        PolicyIDRef:         policyID,
        ViolationType:       r.ViolationType,
        OccurrenceThreshold: r.OccurrenceThreshold,
        PenaltyType:         r.PenaltyType,
        AlwaysApply:         r.AlwaysApply,
        MaxApplications:     r.MaxApplications,
    }
    switch r.PenaltyType {
    case models.PenaltyReduceScore, models.PenaltyReduceTime, models.PenaltyTerminate:
    default:
        return rule, fmt.Errorf("invalid penalty_type %q", r.PenaltyType)
    }
    if s := r.ScorePenalty.String(); s != "" {
        v, err := strconv.ParseFloat(s, 64)
        if err != nil || v < 0 {
            return rule, fmt.Errorf("invalid score_penalty %q", s)
        }
        rule.ScorePenalty = v
    }
    if s := r.TimePenaltySeconds.String(); s != "" {
        v, err := strconv.Atoi(s)
        if err != nil || v < 0 {
            return rule, fmt.Errorf("invalid time_penalty_seconds %q", s)
        }
        rule.TimePenaltySeconds = v
    }
    if rule.MaxApplications != nil && *rule.MaxApplications < 1 {
        return rule, fmt.Errorf("max_applications must be positive")
    }
    return rule, nil
}

func policyResponse(policy models.SecurityPolicy) gin.H {
    ips := make([]string, 0, len(policy.AllowedIPs))
    for _, ip := range policy.AllowedIPs {
        ips = append(ips, ip.Entry)
    }
    rules := make([]gin.H, 0, len(policy.EscalationRules))
    for _, rule := range policy.EscalationRules {
        rules = append(rules, gin.H{
            "id":                   rule.ID,
            "violation_type":       rule.ViolationType,
            "occurrence_threshold": rule.OccurrenceThreshold,
            "penalty_type":         rule.PenaltyType,
            "score_penalty":        rule.ScorePenalty,
            "time_penalty_seconds": rule.TimePenaltySeconds,
            "always_apply":         rule.AlwaysApply,
            "max_applications":     rule.MaxApplications,
        })
    }
    return gin.H{
        "max_connections":    policy.MaxConnections,
        "ip_control_enabled": policy.IPControlEnabled,
        "allowed_ips":        ips,
        "rules":              rules,
    }
}

// Get returns the security policy for an exam, or defaults when none is set.
func (pc *PolicyController) Get(c *gin.Context) {
    exam := ownedExam(c, pc.DB, c.Param("id"))
    if exam == nil {
        return
    }
    var policy models.SecurityPolicy
    err := pc.DB.Preload("AllowedIPs").Preload("EscalationRules").
        Where("exam_instance_id_ref = ?", exam.ID).First(&policy).Error
    if err != nil {
        if errors.Is(err, gorm.ErrRecordNotFound) {
            c.JSON(http.StatusOK, policyResponse(models.SecurityPolicy{
                MaxConnections: proctor.DefaultMaxConnections,
            }))
            return
        }
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, policyResponse(policy))
}

// Put replaces the whole policy (connection ceiling, allow-list, rules) for
// an exam in one transaction.
func (pc *PolicyController) Put(c *gin.Context) {
    exam := ownedExam(c, pc.DB, c.Param("id"))
    if exam == nil {
        return
    }
    var req policyRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    for _, entry := range req.AllowedIPs {
        if err := proctor.ValidateEntry(entry); err != nil {
            c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
            return
        }
    }
    newRules := make([]models.EscalationRule, 0, len(req.Rules))
    for _, raw := range req.Rules {
        rule, err := raw.toModel(0)
        if err != nil {
            c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
            return
        }
        newRules = append(newRules, rule)
    }

    err := pc.DB.Transaction(func(tx *gorm.DB) error {
        var policy models.SecurityPolicy
        err := tx.Where("exam_instance_id_ref = ?", exam.ID).First(&policy).Error
        if errors.Is(err, gorm.ErrRecordNotFound) {
            policy = models.SecurityPolicy{ExamInstanceIDRef: exam.ID}
        } else if err != nil {
            return err
        }
        policy.MaxConnections = req.MaxConnections
        policy.IPControlEnabled = req.IPControlEnabled
        if err := tx.Save(&policy).Error; err != nil {
            return err
        }
        if err := tx.Where("policy_id_ref = ?", policy.ID).Delete(&models.PolicyAllowedIP{}).Error; err != nil {
            return err
        }
        if err := tx.Where("policy_id_ref = ?", policy.ID).Delete(&models.EscalationRule{}).Error; err != nil {
            return err
        }
        for _, entry := range req.AllowedIPs {
            if err := tx.Create(&models.PolicyAllowedIP{PolicyIDRef: policy.ID, Entry: entry}).Error; err != nil {
                return err
            }
        }
        for i := range newRules {
            newRules[i].PolicyIDRef = policy.ID
            if err := tx.Create(&newRules[i]).Error; err != nil {
                return err
            }
        }
        return nil
    })
    if err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    var policy models.SecurityPolicy
    if err := pc.DB.Preload("AllowedIPs").Preload("EscalationRules").
        Where("exam_instance_id_ref = ?", exam.ID).First(&policy).Error; err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, policyResponse(policy))
}

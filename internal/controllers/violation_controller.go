package controllers

import (
    "net/http"

    "github.com/gin-gonic/gin"
    "gorm.io/gorm"

    "github.com/avalia/avalia_backend/internal/models"
)

type ViolationController struct {
    DB *gorm.DB
}

// ListForSession returns the append-only violation trail of one session for
// the evaluator owning its exam.
func (vc *ViolationController) ListForSession(c *gin.Context) {
    var sess models.ExamSession
    if err := vc.DB.Where("hash = ?", c.Param("hash")).First(&sess).Error; err != nil {
        c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
        return
    }
    if ownedExamByID(c, vc.DB, sess.ExamInstanceIDRef) == nil {
        return
    }

    var records []models.ViolationRecord
    if err := vc.DB.Where("session_id_ref = ?", sess.ID).
        Order("created_at asc").Find(&records).Error; err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    out := make([]gin.H, 0, len(records))
    for _, rec := range records {
        out = append(out, gin.H{
            "violation_type":   rec.ViolationType,
            "occurrence_count": rec.OccurrenceCount,
            "rule_id":          rec.RuleIDRef,
            "created_at":       rec.CreatedAt,
        })
    }
    c.JSON(http.StatusOK, gin.H{"violations": out})
}

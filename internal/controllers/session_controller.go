package controllers

import (
    "errors"
    "net/http"
    "time"

    "github.com/gin-gonic/gin"
    "gorm.io/gorm"

    "github.com/avalia/avalia_backend/internal/models"
    "github.com/avalia/avalia_backend/internal/proctor"
    "github.com/avalia/avalia_backend/internal/utils"
)

type SessionController struct {
    DB *gorm.DB
}

type redeemRequest struct {
    AccessCode string `json:"access_code" binding:"required"`
}

type gradeRequest struct {
    Score float64 `json:"score" binding:"min=0"`
}

func sessionResponse(sess models.ExamSession) gin.H {
    return gin.H{
        "hash":                       sess.Hash,
        "state":                      sess.State,
        "score_total":                sess.ScoreTotal,
        "paused_time_offset_seconds": sess.PausedTimeOffsetSeconds,
        "exam_id":                    sess.ExamInstanceIDRef,
        "finalized_at":               sess.FinalizedAt,
        "created_at":                 sess.CreatedAt,
    }
}

// Redeem exchanges an exam access code for a session. Idempotent per
// student: an existing non-terminal session for the same exam is returned
// instead of creating a duplicate attempt.
func (sc *SessionController) Redeem(c *gin.Context) {
    uVal, _ := c.Get("user")
    user := uVal.(models.User)

    var req redeemRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    var exam models.ExamInstance
    if err := sc.DB.Where("access_code = ?", req.AccessCode).First(&exam).Error; err != nil {
        c.JSON(http.StatusNotFound, gin.H{"error": "invalid access code"})
        return
    }

    var existing models.ExamSession
    err := sc.DB.Where("exam_instance_id_ref = ? AND student_id_ref = ?", exam.ID, user.ID).
        Order("created_at desc").First(&existing).Error
    if err == nil && !proctor.IsTerminal(existing.State) {
        c.JSON(http.StatusOK, sessionResponse(existing))
        return
    }
    if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }

    sess := models.ExamSession{
        Hash:              utils.NewSessionHash(),
        State:             models.StateCodeConfirmed,
        ExamInstanceIDRef: exam.ID,
        StudentIDRef:      user.ID,
    }
    if err := sc.DB.Create(&sess).Error; err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusCreated, sessionResponse(sess))
}

// ownSession loads the caller's session by hash.
func (sc *SessionController) ownSession(c *gin.Context) *models.ExamSession {
    uVal, _ := c.Get("user")
    user := uVal.(models.User)

    var sess models.ExamSession
    if err := sc.DB.Where("hash = ?", c.Param("hash")).First(&sess).Error; err != nil {
        c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
        return nil
    }
    if user.Role != "admin" && sess.StudentIDRef != user.ID {
        c.JSON(http.StatusForbidden, gin.H{"error": "not your session"})
        return nil
    }
    return &sess
}

// evaluatorSession loads a session whose exam the caller owns.
func (sc *SessionController) evaluatorSession(c *gin.Context) *models.ExamSession {
    var sess models.ExamSession
    if err := sc.DB.Where("hash = ?", c.Param("hash")).First(&sess).Error; err != nil {
        c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
        return nil
    }
    if ownedExamByID(c, sc.DB, sess.ExamInstanceIDRef) == nil {
        return nil
    }
    return &sess
}

func (sc *SessionController) transition(c *gin.Context, sess *models.ExamSession, to models.SessionState) {
    if !proctor.CanTransition(sess.State, to) {
        c.JSON(http.StatusConflict, gin.H{
            "error": "illegal transition",
            "from":  sess.State,
            "to":    to,
        })
        return
    }
    sess.State = to
    if to == models.StateSubmitted || proctor.IsTerminal(to) {
        now := time.Now()
        sess.FinalizedAt = &now
    }
    if err := sc.DB.Save(sess).Error; err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, sessionResponse(*sess))
}

func (sc *SessionController) Start(c *gin.Context) {
    sess := sc.ownSession(c)
    if sess == nil {
        return
    }
    sc.transition(c, sess, models.StateStarted)
}

func (sc *SessionController) Submit(c *gin.Context) {
    sess := sc.ownSession(c)
    if sess == nil {
        return
    }
    sc.transition(c, sess, models.StateSubmitted)
}

func (sc *SessionController) GetSelf(c *gin.Context) {
    sess := sc.ownSession(c)
    if sess == nil {
        return
    }
    c.JSON(http.StatusOK, sessionResponse(*sess))
}

// Grade records the final score and closes grading. External grading
// collaborators land here.
func (sc *SessionController) Grade(c *gin.Context) {
    sess := sc.evaluatorSession(c)
    if sess == nil {
        return
    }
    var req gradeRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    sess.ScoreTotal = req.Score
    sc.transition(c, sess, models.StateGraded)
}

func (sc *SessionController) Reopen(c *gin.Context) {
    sess := sc.evaluatorSession(c)
    if sess == nil {
        return
    }
    sess.FinalizedAt = nil
    sc.transition(c, sess, models.StateReopened)
}

func (sc *SessionController) Close(c *gin.Context) {
    sess := sc.evaluatorSession(c)
    if sess == nil {
        return
    }
    sc.transition(c, sess, models.StateClosed)
}

// ListForExam lists an exam's sessions for its evaluator.
func (sc *SessionController) ListForExam(c *gin.Context) {
    exam := ownedExam(c, sc.DB, c.Param("id"))
    if exam == nil {
        return
    }
    var sessions []models.ExamSession
    if err := sc.DB.Where("exam_instance_id_ref = ?", exam.ID).
        Order("created_at desc").Find(&sessions).Error; err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    out := make([]gin.H, 0, len(sessions))
    for _, sess := range sessions {
        out = append(out, sessionResponse(sess))
    }
    c.JSON(http.StatusOK, gin.H{"sessions": out})
}

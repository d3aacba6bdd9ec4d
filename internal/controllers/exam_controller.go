package controllers

import (
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/gin-gonic/gin"
    "github.com/jackc/pgx/v5/pgconn"
    "gorm.io/gorm"

    "github.com/avalia/avalia_backend/internal/models"
    "github.com/avalia/avalia_backend/internal/utils"
)

type ExamController struct {
    DB *gorm.DB
}

type examRequest struct {
    Title           string     `json:"title" binding:"required"`
    DurationMinutes int        `json:"duration_minutes"`
    StartsAt        *time.Time `json:"starts_at"`
    EndsAt          *time.Time `json:"ends_at"`
}

func examResponse(exam models.ExamInstance) gin.H {
    return gin.H{
        "id":               exam.ID,
        "title":            exam.Title,
        "access_code":      exam.AccessCode,
        "duration_minutes": exam.DurationMinutes,
        "starts_at":        exam.StartsAt,
        "ends_at":          exam.EndsAt,
        "created_at":       exam.CreatedAt,
    }
}

// ownedExam loads an exam instance and enforces evaluator ownership
// (admins pass). Writes the error response itself and returns nil on failure.
func ownedExam(c *gin.Context, db *gorm.DB, examID string) *models.ExamInstance {
    uVal, _ := c.Get("user")
    user := uVal.(models.User)

    var exam models.ExamInstance
    if err := db.First(&exam, "id = ?", examID).Error; err != nil {
        if errors.Is(err, gorm.ErrRecordNotFound) {
            c.JSON(http.StatusNotFound, gin.H{"error": "exam not found"})
        } else {
            c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        }
        return nil
    }
    if user.Role != "admin" && exam.EvaluatorIDRef != user.ID {
        c.JSON(http.StatusForbidden, gin.H{"error": "not your exam"})
        return nil
    }
    return &exam
}

func ownedExamByID(c *gin.Context, db *gorm.DB, examID uint) *models.ExamInstance {
    return ownedExam(c, db, strconv.FormatUint(uint64(examID), 10))
}

func (ec *ExamController) Create(c *gin.Context) {
    uVal, _ := c.Get("user")
    user := uVal.(models.User)

    var req examRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    code, err := utils.GenerateCode(6)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate access code"})
        return
    }

    exam := models.ExamInstance{
        Title:           req.Title,
        EvaluatorIDRef:  user.ID,
        AccessCode:      code,
        DurationMinutes: req.DurationMinutes,
        StartsAt:        req.StartsAt,
        EndsAt:          req.EndsAt,
    }
    if err := ec.DB.Create(&exam).Error; err != nil {
        var pgErr *pgconn.PgError
        if errors.As(err, &pgErr) && pgErr.Code == "23505" {
            c.JSON(http.StatusConflict, gin.H{"error": "access code collision, retry"})
            return
        }
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusCreated, examResponse(exam))
}

func (ec *ExamController) List(c *gin.Context) {
    uVal, _ := c.Get("user")
    user := uVal.(models.User)

    var exams []models.ExamInstance
    q := ec.DB.Order("created_at desc")
    if user.Role != "admin" {
        q = q.Where("evaluator_id_ref = ?", user.ID)
    }
    if err := q.Find(&exams).Error; err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    out := make([]gin.H, 0, len(exams))
    for _, exam := range exams {
        out = append(out, examResponse(exam))
    }
    c.JSON(http.StatusOK, gin.H{"exams": out})
}

func (ec *ExamController) Get(c *gin.Context) {
    exam := ownedExam(c, ec.DB, c.Param("id"))
    if exam == nil {
        return
    }
    c.JSON(http.StatusOK, examResponse(*exam))
}

func (ec *ExamController) Update(c *gin.Context) {
    exam := ownedExam(c, ec.DB, c.Param("id"))
    if exam == nil {
        return
    }
    var req examRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    exam.Title = req.Title
    exam.DurationMinutes = req.DurationMinutes
    exam.StartsAt = req.StartsAt
    exam.EndsAt = req.EndsAt
    if err := ec.DB.Save(exam).Error; err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, examResponse(*exam))
}

func (ec *ExamController) Delete(c *gin.Context) {
    exam := ownedExam(c, ec.DB, c.Param("id"))
    if exam == nil {
        return
    }
    if err := ec.DB.Delete(exam).Error; err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// RegenerateCode replaces the access code, invalidating the old one for
// future redemptions. Existing sessions keep running.
func (ec *ExamController) RegenerateCode(c *gin.Context) {
    exam := ownedExam(c, ec.DB, c.Param("id"))
    if exam == nil {
        return
    }
    code, err := utils.GenerateCode(6)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate access code"})
        return
    }
    exam.AccessCode = code
    if err := ec.DB.Save(exam).Error; err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"access_code": exam.AccessCode})
}

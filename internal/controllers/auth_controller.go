package controllers

import (
    "net/http"
    "time"

    "github.com/gin-gonic/gin"
    "github.com/golang-jwt/jwt/v5"
    "github.com/google/uuid"
    "gorm.io/gorm"

    "github.com/avalia/avalia_backend/internal/middleware"
    "github.com/avalia/avalia_backend/internal/models"
    "github.com/avalia/avalia_backend/internal/utils"
)

type AuthController struct {
    DB        *gorm.DB
    JWTSecret string
    ExpiresIn time.Duration
}

type registerRequest struct {
    FullName string `json:"full_name" binding:"required"`
    Email    string `json:"email" binding:"required,email"`
    Password string `json:"password" binding:"required,min=6"`
    Role     string `json:"role"`
    Active   *bool  `json:"active"`
}

type loginRequest struct {
    Email    string `json:"email" binding:"required,email"`
    Password string `json:"password" binding:"required"`
}

// Register creates an account. Admin-only; the default role is student.
func (a *AuthController) Register(c *gin.Context) {
    var req registerRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    pw, err := utils.HashPassword(req.Password)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
        return
    }

    role := req.Role
    if role == "" {
        role = "student"
    }
    if !IsValidRole(role) {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
        return
    }

    active := true
    if req.Active != nil {
        active = *req.Active
    }

    user := models.User{
        UserID:   uuid.NewString(),
        FullName: req.FullName,
        Email:    req.Email,
        Password: pw,
        Role:     role,
        Active:   active,
    }

    if err := a.DB.Create(&user).Error; err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    c.JSON(http.StatusCreated, gin.H{
        "message":   "registered",
        "user_id":   user.UserID,
        "email":     user.Email,
        "full_name": user.FullName,
        "role":      user.Role,
    })
}

func (a *AuthController) Login(c *gin.Context) {
    var req loginRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    var user models.User
    if err := a.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
        c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
        return
    }

    if !user.Active || !utils.CheckPassword(user.Password, req.Password) {
        c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
        return
    }

    now := time.Now()
    claims := middleware.Claims{
        UserID: user.UserID,
        Role:   user.Role,
        Email:  user.Email,
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   user.UserID,
            IssuedAt:  jwt.NewNumericDate(now),
            ExpiresAt: jwt.NewNumericDate(now.Add(a.ExpiresIn)),
        },
    }
    token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := token.SignedString([]byte(a.JWTSecret))
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign token"})
        return
    }

    c.JSON(http.StatusOK, gin.H{
        "access_token": signed,
        "token_type":   "Bearer",
        "expires_in":   int(a.ExpiresIn.Seconds()),
        "role":         user.Role,
    })
}

func (a *AuthController) Me(c *gin.Context) {
    uVal, ok := c.Get("user")
    if !ok {
        c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
        return
    }
    user := uVal.(models.User)
    c.JSON(http.StatusOK, gin.H{
        "user_id":   user.UserID,
        "email":     user.Email,
        "full_name": user.FullName,
        "role":      user.Role,
        "active":    user.Active,
    })
}

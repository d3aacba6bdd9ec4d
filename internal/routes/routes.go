package routes

import (
    "time"

    "github.com/gin-gonic/gin"
    "gorm.io/gorm"

    "github.com/avalia/avalia_backend/internal/config"
    "github.com/avalia/avalia_backend/internal/controllers"
    "github.com/avalia/avalia_backend/internal/metrics"
    "github.com/avalia/avalia_backend/internal/middleware"
    "github.com/avalia/avalia_backend/internal/proctor"
    "github.com/avalia/avalia_backend/internal/ws"
)

func Register(r *gin.Engine, db *gorm.DB, cfg *config.Config, hubs *ws.Hubs, coordinator *proctor.Coordinator) {
    expiresMins, err := time.ParseDuration(cfg.JWTExpiresIn + "m")
    if err != nil || expiresMins == 0 {
        expiresMins = 60 * time.Minute
    }
    authCtrl := &controllers.AuthController{DB: db, JWTSecret: cfg.JWTSecret, ExpiresIn: expiresMins}
    examCtrl := &controllers.ExamController{DB: db}
    policyCtrl := &controllers.PolicyController{DB: db}
    sessionCtrl := &controllers.SessionController{DB: db}
    violationCtrl := &controllers.ViolationController{DB: db}

    // Public
    auth := r.Group("/api/v1/auth")
    {
        auth.POST("/login", authCtrl.Login)
    }

    r.GET("/metrics", gin.WrapH(metrics.Handler()))

    // Student realtime channel; the session hash is the credential.
    r.GET("/ws/student/:hash", ws.StudentHandler(hubs, coordinator))

    // Protected
    authMW := middleware.AuthMiddleware(db, middleware.AuthConfig{
        JWTSecret:    cfg.JWTSecret,
        JWTExpiresIn: expiresMins,
    })
    r.GET("/ws/evaluator", authMW, ws.EvaluatorHandler(hubs.Evaluator))

    api := r.Group("/api/v1", authMW)
    {
        api.GET("/auth/me", authCtrl.Me)

        // Admin-only
        admin := api.Group("/admin", middleware.RequireRoles("admin"))
        {
            admin.POST("/users", authCtrl.Register)
        }

        // Evaluator area (and admin)
        exams := api.Group("/exams", middleware.RequireRoles("evaluator", "admin"))
        {
            exams.POST("", examCtrl.Create)
            exams.GET("", examCtrl.List)
            exams.GET("/:id", examCtrl.Get)
            exams.PUT("/:id", examCtrl.Update)
            exams.DELETE("/:id", examCtrl.Delete)
            exams.POST("/:id/access-code", examCtrl.RegenerateCode)

            exams.GET("/:id/policy", policyCtrl.Get)
            exams.PUT("/:id/policy", policyCtrl.Put)

            exams.GET("/:id/sessions", sessionCtrl.ListForExam)
        }

        // Evaluator-side session transitions (external grading collaborators)
        grading := api.Group("/sessions", middleware.RequireRoles("evaluator", "admin"))
        {
            grading.POST("/:hash/grade", sessionCtrl.Grade)
            grading.POST("/:hash/reopen", sessionCtrl.Reopen)
            grading.POST("/:hash/close", sessionCtrl.Close)
            grading.GET("/:hash/violations", violationCtrl.ListForSession)
        }

        // Student area (and admin)
        student := api.Group("/sessions", middleware.RequireRoles("student", "admin"))
        {
            student.POST("/redeem", sessionCtrl.Redeem)
            student.POST("/:hash/start", sessionCtrl.Start)
            student.POST("/:hash/submit", sessionCtrl.Submit)
            student.GET("/:hash", sessionCtrl.GetSelf)
        }
    }
}

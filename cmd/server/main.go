package main

import (
    "log"
    "os"

    "github.com/joho/godotenv"

    "github.com/gin-gonic/gin"

    "github.com/avalia/avalia_backend/internal/config"
    "github.com/avalia/avalia_backend/internal/database"
    "github.com/avalia/avalia_backend/internal/proctor"
    "github.com/avalia/avalia_backend/internal/routes"
    "github.com/avalia/avalia_backend/internal/ws"
)

func main() {
    // Load .env (non-fatal if missing in production)
    _ = godotenv.Load()

    cfg := config.Load()

    db, err := database.Connect(cfg)
    if err != nil {
        log.Fatalf("database connection failed: %v", err)
    }

    if err := database.Migrate(db); err != nil {
        log.Fatalf("database migration failed: %v", err)
    }

    if err := database.SeedAdmin(db, cfg); err != nil {
        log.Fatalf("admin seed failed: %v", err)
    }

    hubs := ws.NewHubs()
    hubs.Start()

    coordinator := proctor.NewCoordinator(proctor.NewGormStore(db), ws.NewDispatcher(hubs))

    r := gin.Default()
    routes.Register(r, db, cfg, hubs, coordinator)

    port := cfg.Port
    if port == "" {
        port = "8080"
    }

    if err := r.Run(":" + port); err != nil {
        log.Println("server exited with error:", err)
        os.Exit(1)
    }
}

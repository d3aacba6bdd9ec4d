package ws

import (
    "net/http"

    "github.com/gin-gonic/gin"

    "github.com/avalia/avalia_backend/internal/models"
)

// EvaluatorHandler opens the observing channel. The bearer credential is
// validated by the auth middleware before this runs; anything without a
// valid evaluator identity is disconnected here.
func EvaluatorHandler(hub *EvaluatorHub) gin.HandlerFunc {
    return func(c *gin.Context) {
        uVal, ok := c.Get("user")
        if !ok {
            c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
            return
        }
        user := uVal.(models.User)
        if user.Role != "evaluator" && user.Role != "admin" {
            c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
            return
        }

        conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
        if err != nil {
            return
        }
        client := newEvaluatorClient(hub, conn, user.UserID)
        hub.register <- client

        go client.writePump()
        client.readPump()
    }
}

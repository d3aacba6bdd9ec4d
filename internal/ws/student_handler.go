package ws

import (
    "errors"
    "net/http"

    "github.com/gin-gonic/gin"
    "github.com/google/uuid"
    "github.com/gorilla/websocket"

    "github.com/avalia/avalia_backend/internal/proctor"
)

var upgrader = websocket.Upgrader{
    CheckOrigin: func(r *http.Request) bool {
        // Student channel is keyed by the session hash capability token;
        // evaluator channel by JWT auth.
        return true
    },
}

// StudentHandler opens the realtime channel for one exam session. The hash
// is the capability token: validation happens after the upgrade so that
// rejections reach the client as a validation-error frame before the socket
// closes.
func StudentHandler(hubs *Hubs, coordinator *proctor.Coordinator) gin.HandlerFunc {
    return func(c *gin.Context) {
        if hubs == nil || hubs.Student == nil {
            c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "realtime not available"})
            return
        }
        hash := c.Param("hash")

        conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
        if err != nil {
            return
        }

        connID := uuid.NewString()
        info, err := coordinator.Connect(hash, c.ClientIP(), connID)
        if err != nil {
            conn.WriteJSON(validationError(err))
            conn.Close()
            return
        }

        client := newStudentClient(hubs.Student, conn, connID, hash)
        hubs.Student.register <- client
        client.enqueue(StudentEvent{
            Type:        EventSessionAuthorized,
            SessionHash: hash,
            StudentName: info.Student.Name,
            ExamTitle:   info.ExamTitle,
        })

        go client.writePump()
        client.readPump(func(violationType string) {
            coordinator.ReportViolation(connID, violationType)
        })
        coordinator.Disconnect(connID)
    }
}

func validationError(err error) StudentEvent {
    event := StudentEvent{Type: EventValidationError}
    var notEligible *proctor.NotEligibleError
    switch {
    case errors.Is(err, proctor.ErrSessionNotFound):
        event.Code = "session_not_found"
        event.Reason = "session not found"
    case errors.As(err, &notEligible):
        event.Code = "session_not_eligible"
        event.Reason = "session does not permit connections"
        event.State = string(notEligible.State)
    case errors.Is(err, proctor.ErrIPNotAllowed):
        event.Code = "ip_not_allowed"
        event.Reason = "caller address is not on the allow-list"
    case errors.Is(err, proctor.ErrCapacityExceeded):
        event.Code = "capacity_exceeded"
        event.Reason = "capacity exceeded"
    default:
        event.Code = "error"
        event.Reason = "connection could not be validated"
    }
    return event
}

package proctor

import (
    "errors"
    "fmt"

    "github.com/avalia/avalia_backend/internal/models"
)

// Connection-attempt rejections. Each of these terminates the attempt: the
// websocket handler emits a validation-error frame and closes the transport.
// Anything else (unattributed or malformed violation reports) is logged and
// dropped without a client-visible error.
var (
    ErrSessionNotFound   = errors.New("session not found")
    ErrIPNotAllowed      = errors.New("ip not allowed")
    ErrCapacityExceeded  = errors.New("capacity exceeded")
)

// NotEligibleError rejects a connection against a session whose state does
// not permit live connections. Carries the state for client display.
type NotEligibleError struct {
    State models.SessionState
}

func (e *NotEligibleError) Error() string {
    return fmt.Sprintf("session not eligible for connection (state %s)", e.State)
}

package ws

import (
    "errors"
    "testing"

    "github.com/stretchr/testify/assert"

    "github.com/avalia/avalia_backend/internal/models"
    "github.com/avalia/avalia_backend/internal/proctor"
)

func TestValidationErrorMapping(t *testing.T) {
    tests := []struct {
        name      string
        err       error
        wantCode  string
        wantState string
    }{
        {"not found", proctor.ErrSessionNotFound, "session_not_found", ""},
        {"not eligible", &proctor.NotEligibleError{State: models.StateSubmitted}, "session_not_eligible", "submitted"},
        {"ip not allowed", proctor.ErrIPNotAllowed, "ip_not_allowed", ""},
        {"capacity", proctor.ErrCapacityExceeded, "capacity_exceeded", ""},
        {"unknown", errors.New("boom"), "error", ""},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            event := validationError(tt.err)
            assert.Equal(t, EventValidationError, event.Type)
            assert.Equal(t, tt.wantCode, event.Code)
            assert.Equal(t, tt.wantState, event.State)
            assert.NotEmpty(t, event.Reason)
        })
    }
}

package proctor

import (
    "testing"

    "github.com/stretchr/testify/assert"

    "github.com/avalia/avalia_backend/internal/models"
)

func TestCanConnect(t *testing.T) {
    connectable := map[models.SessionState]bool{
        models.StateStarted:       true,
        models.StateReopened:      true,
        models.StateCodeConfirmed: false,
        models.StateSubmitted:     false,
        models.StateGraded:        false,
        models.StateClosed:        false,
        models.StateAbandoned:     false,
        models.StatePaused:        false,
        models.StateCancelled:     false,
    }
    for state, want := range connectable {
        assert.Equal(t, want, CanConnect(state), "state %s", state)
    }
}

func TestCanTransition(t *testing.T) {
    assert.True(t, CanTransition(models.StateCodeConfirmed, models.StateStarted))
    assert.True(t, CanTransition(models.StateStarted, models.StateSubmitted))
    assert.True(t, CanTransition(models.StateStarted, models.StateCancelled))
    assert.True(t, CanTransition(models.StateSubmitted, models.StateGraded))
    assert.True(t, CanTransition(models.StateSubmitted, models.StateReopened))
    assert.True(t, CanTransition(models.StatePaused, models.StateReopened))

    assert.False(t, CanTransition(models.StateCodeConfirmed, models.StateSubmitted))
    assert.False(t, CanTransition(models.StateStarted, models.StateGraded))
}

func TestTerminalStates(t *testing.T) {
    for _, state := range []models.SessionState{
        models.StateCancelled, models.StateClosed,
        models.StateAbandoned, models.StateGraded,
    } {
        assert.True(t, IsTerminal(state), "state %s", state)
        for _, to := range []models.SessionState{
            models.StateStarted, models.StateReopened, models.StateSubmitted,
            models.StateCancelled, models.StateClosed,
        } {
            assert.False(t, CanTransition(state, to), "%s -> %s", state, to)
        }
    }
    assert.False(t, IsTerminal(models.StateStarted))
    assert.False(t, IsTerminal(models.StateSubmitted))
}

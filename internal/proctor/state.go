package proctor

import "github.com/avalia/avalia_backend/internal/models"

// transitions lists the legal next states per state. States absent from the
// map (graded, closed, abandoned, cancelled) are terminal.
var transitions = map[models.SessionState][]models.SessionState{
    models.StateCodeConfirmed: {models.StateStarted, models.StateAbandoned},
    models.StateStarted: {
        models.StateSubmitted, models.StatePaused, models.StateClosed,
        models.StateAbandoned, models.StateCancelled,
    },
    models.StateReopened: {
        models.StateSubmitted, models.StatePaused, models.StateClosed,
        models.StateAbandoned, models.StateCancelled,
    },
    models.StatePaused:    {models.StateReopened, models.StateAbandoned, models.StateCancelled},
    models.StateSubmitted: {models.StateGraded, models.StateReopened},
}

// CanConnect reports whether a live connection may be admitted for a session
// in the given state.
func CanConnect(s models.SessionState) bool {
    return s == models.StateStarted || s == models.StateReopened
}

// CanTransition reports whether moving a session from one state to another
// is legal.
func CanTransition(from, to models.SessionState) bool {
    for _, next := range transitions[from] {
        if next == to {
            return true
        }
    }
    return false
}

// IsTerminal reports whether no transition leaves the given state.
func IsTerminal(s models.SessionState) bool {
    return len(transitions[s]) == 0
}

package proctor

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/avalia/avalia_backend/internal/models"
)

func startedSession(hash string, examID uint) models.ExamSession {
    return models.ExamSession{
        ID:                1,
        Hash:              hash,
        State:             models.StateStarted,
        ExamInstanceIDRef: examID,
        StudentIDRef:      1,
    }
}

func TestAuthorizeUnknownHash(t *testing.T) {
    v := NewValidator(newFakeStore())
    _, err := v.Authorize("missing", "10.0.0.1")
    assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAuthorizeIneligibleState(t *testing.T) {
    store := newFakeStore()
    sess := startedSession("h1", 1)
    sess.State = models.StateSubmitted
    store.putSession(sess)

    v := NewValidator(store)
    _, err := v.Authorize("h1", "10.0.0.1")

    var notEligible *NotEligibleError
    require.ErrorAs(t, err, &notEligible)
    assert.Equal(t, models.StateSubmitted, notEligible.State)
}

func TestAuthorizeIPControlDisabled(t *testing.T) {
    store := newFakeStore()
    store.putSession(startedSession("h1", 1))
    store.policies[1] = PolicySnapshot{
        MaxConnections:   2,
        IPControlEnabled: false,
        AllowedIPs:       []string{"192.168.1.1"}, // ignored while disabled
    }

    v := NewValidator(store)
    ref, err := v.Authorize("h1", "203.0.113.50")
    require.NoError(t, err)
    assert.Equal(t, 2, ref.Policy.MaxConnections)
}

func TestAuthorizeAllowList(t *testing.T) {
    store := newFakeStore()
    store.putSession(startedSession("h1", 1))
    store.policies[1] = PolicySnapshot{
        MaxConnections:   1,
        IPControlEnabled: true,
        AllowedIPs:       []string{"192.168.1.7", "10.0.0.0/8"},
    }
    v := NewValidator(store)

    _, err := v.Authorize("h1", "192.168.1.7")
    assert.NoError(t, err, "exact match")

    _, err = v.Authorize("h1", "10.44.2.9")
    assert.NoError(t, err, "cidr match")

    _, err = v.Authorize("h1", "192.168.1.8")
    assert.ErrorIs(t, err, ErrIPNotAllowed)
}

func TestAuthorizeReopenedSession(t *testing.T) {
    store := newFakeStore()
    sess := startedSession("h1", 1)
    sess.State = models.StateReopened
    store.putSession(sess)

    v := NewValidator(store)
    _, err := v.Authorize("h1", "10.0.0.1")
    assert.NoError(t, err)
}

package proctor

import (
    "fmt"
    "sync"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/avalia/avalia_backend/internal/models"
)

func newTestCoordinator(t *testing.T, policy PolicySnapshot) (*Coordinator, *fakeStore, *fakeDispatcher) {
    t.Helper()
    store := newFakeStore()
    store.putSession(startedSession("h1", 1))
    store.policies[1] = policy
    store.exams[1] = ExamSummary{Title: "Algebra I", EvaluatorID: "eval-1"}
    store.students[1] = StudentIdentity{Name: "Ana", Email: "ana@example.com"}

    dispatcher := &fakeDispatcher{}
    return NewCoordinator(store, dispatcher), store, dispatcher
}

func TestConnectAndAuthorize(t *testing.T) {
    coord, _, _ := newTestCoordinator(t, PolicySnapshot{MaxConnections: 2})

    info, err := coord.Connect("h1", "10.0.0.1", "c1")
    require.NoError(t, err)
    assert.Equal(t, "Algebra I", info.ExamTitle)
    assert.Equal(t, "Ana", info.Student.Name)
    assert.Equal(t, 1, coord.Registry().CountFor("h1"))

    coord.Disconnect("c1")
    assert.Equal(t, 0, coord.Registry().CountFor("h1"))
}

func TestConnectCapacityRace(t *testing.T) {
    coord, _, _ := newTestCoordinator(t, PolicySnapshot{MaxConnections: 1})

    const attempts = 16
    var wg sync.WaitGroup
    var mu sync.Mutex
    admitted, rejected := 0, 0

    for i := 0; i < attempts; i++ {
        wg.Add(1)
        go func(i int) {
            defer wg.Done()
            _, err := coord.Connect("h1", "10.0.0.1", fmt.Sprintf("c%d", i))
            mu.Lock()
            defer mu.Unlock()
            if err == nil {
                admitted++
            } else {
                assert.ErrorIs(t, err, ErrCapacityExceeded)
                rejected++
            }
        }(i)
    }
    wg.Wait()

    assert.Equal(t, 1, admitted)
    assert.Equal(t, attempts-1, rejected)
}

func TestViolationEscalation(t *testing.T) {
    coord, store, dispatcher := newTestCoordinator(t, PolicySnapshot{
        MaxConnections: 1,
        Rules: []RuleSnapshot{{
            ID:                  1,
            ViolationType:       "tab-switch",
            OccurrenceThreshold: 3,
            PenaltyType:         models.PenaltyReduceScore,
            ScorePenalty:        10,
        }},
    })
    sess := store.session("h1")
    sess.ScoreTotal = 25
    store.putSession(sess)

    _, err := coord.Connect("h1", "10.0.0.1", "c1")
    require.NoError(t, err)

    coord.ReportViolation("c1", "tab-switch")
    coord.ReportViolation("c1", "tab-switch")

    evals, students, _ := dispatcher.snapshot()
    require.Len(t, evals, 2)
    assert.Equal(t, 1, evals[0].OccurrenceCount)
    assert.Equal(t, 2, evals[1].OccurrenceCount)
    assert.Empty(t, evals[0].PenaltyDescription)
    assert.Empty(t, students, "no penalty before the threshold")
    assert.Equal(t, float64(25), store.session("h1").ScoreTotal)

    coord.ReportViolation("c1", "tab-switch")

    evals, students, _ = dispatcher.snapshot()
    require.Len(t, evals, 3)
    assert.Equal(t, 3, evals[2].OccurrenceCount)
    assert.NotEmpty(t, evals[2].PenaltyDescription)
    require.Len(t, students, 1)
    assert.Equal(t, models.PenaltyReduceScore, students[0].PenaltyType)
    assert.Equal(t, float64(10), students[0].ScorePenalty)
    assert.Equal(t, float64(15), store.session("h1").ScoreTotal)
}

func TestScoreFloorsAtZero(t *testing.T) {
    coord, store, _ := newTestCoordinator(t, PolicySnapshot{
        MaxConnections: 1,
        Rules: []RuleSnapshot{{
            ID:                  1,
            ViolationType:       "tab-switch",
            OccurrenceThreshold: 1,
            PenaltyType:         models.PenaltyReduceScore,
            ScorePenalty:        10,
        }},
    })
    sess := store.session("h1")
    sess.ScoreTotal = 4
    store.putSession(sess)

    _, err := coord.Connect("h1", "10.0.0.1", "c1")
    require.NoError(t, err)
    coord.ReportViolation("c1", "tab-switch")

    assert.Equal(t, float64(0), store.session("h1").ScoreTotal)
}

func TestTimePenaltyAccumulates(t *testing.T) {
    coord, store, _ := newTestCoordinator(t, PolicySnapshot{
        MaxConnections: 1,
        Rules: []RuleSnapshot{{
            ID:                  1,
            ViolationType:       "clipboard",
            OccurrenceThreshold: 1,
            PenaltyType:         models.PenaltyReduceTime,
            TimePenaltySeconds:  90,
            AlwaysApply:         true,
        }},
    })

    _, err := coord.Connect("h1", "10.0.0.1", "c1")
    require.NoError(t, err)
    coord.ReportViolation("c1", "clipboard")
    coord.ReportViolation("c1", "clipboard")

    assert.Equal(t, 180, store.session("h1").PausedTimeOffsetSeconds)
}

func TestTerminatePenalty(t *testing.T) {
    coord, store, dispatcher := newTestCoordinator(t, PolicySnapshot{
        MaxConnections: 2,
        Rules: []RuleSnapshot{{
            ID:                  1,
            ViolationType:       "screen-share",
            OccurrenceThreshold: 1,
            PenaltyType:         models.PenaltyTerminate,
        }},
    })

    _, err := coord.Connect("h1", "10.0.0.1", "c1")
    require.NoError(t, err)
    _, err = coord.Connect("h1", "10.0.0.1", "c2")
    require.NoError(t, err)

    coord.ReportViolation("c1", "screen-share")

    sess := store.session("h1")
    assert.Equal(t, models.StateCancelled, sess.State)
    assert.NotNil(t, sess.FinalizedAt)
    assert.Equal(t, 0, coord.Registry().CountFor("h1"))

    _, _, closed := dispatcher.snapshot()
    assert.Equal(t, []string{"h1"}, closed)

    // reconnecting a cancelled session is rejected with its state
    _, err = coord.Connect("h1", "10.0.0.1", "c3")
    var notEligible *NotEligibleError
    require.ErrorAs(t, err, &notEligible)
    assert.Equal(t, models.StateCancelled, notEligible.State)
}

func TestUnattributedReportDropped(t *testing.T) {
    coord, store, dispatcher := newTestCoordinator(t, PolicySnapshot{MaxConnections: 1})

    coord.ReportViolation("unknown-conn", "tab-switch")

    evals, students, closed := dispatcher.snapshot()
    assert.Empty(t, evals)
    assert.Empty(t, students)
    assert.Empty(t, closed)
    store.mu.Lock()
    defer store.mu.Unlock()
    assert.Empty(t, store.records)
}

func TestPersistenceFailureAppliesNothing(t *testing.T) {
    coord, store, dispatcher := newTestCoordinator(t, PolicySnapshot{
        MaxConnections: 1,
        Rules: []RuleSnapshot{{
            ID:                  1,
            ViolationType:       "tab-switch",
            OccurrenceThreshold: 1,
            PenaltyType:         models.PenaltyReduceScore,
            ScorePenalty:        10,
        }},
    })
    sess := store.session("h1")
    sess.ScoreTotal = 20
    store.putSession(sess)

    _, err := coord.Connect("h1", "10.0.0.1", "c1")
    require.NoError(t, err)

    store.failWrites = true
    coord.ReportViolation("c1", "tab-switch")

    evals, students, _ := dispatcher.snapshot()
    assert.Empty(t, evals, "no notification when the write failed")
    assert.Empty(t, students)
    assert.Equal(t, float64(20), store.session("h1").ScoreTotal)

    // the event is safe to reprocess once the store recovers
    store.failWrites = false
    coord.ReportViolation("c1", "tab-switch")
    assert.Equal(t, float64(10), store.session("h1").ScoreTotal)
}

func TestConcurrentReportsDoNotDoubleFire(t *testing.T) {
    coord, store, dispatcher := newTestCoordinator(t, PolicySnapshot{
        MaxConnections: 1,
        Rules: []RuleSnapshot{{
            ID:                  1,
            ViolationType:       "tab-switch",
            OccurrenceThreshold: 2,
            PenaltyType:         models.PenaltyReduceScore,
            ScorePenalty:        10,
        }},
    })
    sess := store.session("h1")
    sess.ScoreTotal = 100
    store.putSession(sess)

    _, err := coord.Connect("h1", "10.0.0.1", "c1")
    require.NoError(t, err)

    var wg sync.WaitGroup
    for i := 0; i < 2; i++ {
        wg.Add(1)
        go func() {
            defer wg.Done()
            coord.ReportViolation("c1", "tab-switch")
        }()
    }
    wg.Wait()

    // both reports processed, the one-shot rule fired exactly once
    assert.Equal(t, float64(90), store.session("h1").ScoreTotal)
    _, students, _ := dispatcher.snapshot()
    assert.Len(t, students, 1)
}

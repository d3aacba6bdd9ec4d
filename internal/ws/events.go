package ws

// Student channel, server to client.
const (
    EventSessionAuthorized = "session-authorized"
    EventValidationError   = "validation-error"
    EventPenaltyApplied    = "penalty-applied"
)

// Student channel, client to server.
const EventReportViolation = "report-violation"

// Evaluator channel, server to client.
const EventViolationNotice = "violation-notice"

// StudentEvent is the tagged frame pushed to a student connection.
type StudentEvent struct {
    Type               string  `json:"type"`
    SessionHash        string  `json:"session_hash,omitempty"`
    StudentName        string  `json:"student_name,omitempty"`
    ExamTitle          string  `json:"exam_title,omitempty"`
    Reason             string  `json:"reason,omitempty"`
    State              string  `json:"state,omitempty"`
    Code               string  `json:"code,omitempty"`
    PenaltyType        string  `json:"penalty_type,omitempty"`
    ScorePenalty       float64 `json:"score_penalty,omitempty"`
    TimePenaltySeconds int     `json:"time_penalty_seconds,omitempty"`
}

// EvaluatorEvent is the tagged frame pushed to an observing evaluator.
type EvaluatorEvent struct {
    Type            string `json:"type"`
    StudentName     string `json:"student_name"`
    StudentEmail    string `json:"student_email"`
    ViolationType   string `json:"violation_type"`
    ExamTitle       string `json:"exam_title"`
    OccurrenceCount int    `json:"occurrence_count"`
    Penalty         string `json:"penalty,omitempty"`
}

// inboundEvent is validated at the channel boundary; only well-formed
// report-violation frames reach the coordinator.
type inboundEvent struct {
    Type          string `json:"type"`
    ViolationType string `json:"violation_type"`
}

package types

// EventType names an externally observable session transition.
type EventType string

const (
	EventSessionStarted  EventType = "session_started"
	EventRoundStart      EventType = "round_start"
	EventQuestion        EventType = "question"
	EventFollowUp        EventType = "follow_up"
	EventEvaluating      EventType = "evaluating"
	EventEvaluation      EventType = "evaluation"
	EventCommitteeStart  EventType = "committee_start"
	EventFinalEvaluation EventType = "final_evaluation"
	EventSessionComplete EventType = "session_complete"
	EventSessionEnded    EventType = "session_ended"
	EventError           EventType = "error"
)

// Event is one message pushed to the transport layer. Every state
// transition produces exactly one event, in transition order.
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	Payload   any       `json:"payload,omitempty"`
}

// SessionStartedPayload accompanies EventSessionStarted.
type SessionStartedPayload struct {
	UserID      string `json:"user_id"`
	Position    string `json:"position"`
	Mode        Mode   `json:"mode"`
	TotalRounds int    `json:"total_rounds"`
}

// RoundStartPayload accompanies EventRoundStart.
type RoundStartPayload struct {
	RoundKind   RoundKind `json:"round_kind"`
	RoundIndex  int       `json:"round_index"`
	TotalRounds int       `json:"total_rounds"`
	RoundName   string    `json:"round_name"`
	Weight      float64   `json:"weight"`
}

// QuestionPayload accompanies EventQuestion.
type QuestionPayload struct {
	RoundKind RoundKind `json:"round_kind"`
	RoundName string    `json:"round_name"`
	Question  string    `json:"question"`
	Degraded  bool      `json:"degraded,omitempty"`
}

// FollowUpPayload accompanies EventFollowUp.
type FollowUpPayload struct {
	RoundKind    RoundKind `json:"round_kind"`
	Question     string    `json:"question"`
	Reason       string    `json:"reason"`
	FollowUpNum  int       `json:"follow_up_number"`
	MaxFollowUps int       `json:"max_follow_ups"`
	Degraded     bool      `json:"degraded,omitempty"`
}

// EvaluatingPayload accompanies EventEvaluating, a progress ping sent while
// the backend scores an answer.
type EvaluatingPayload struct {
	RoundKind RoundKind `json:"round_kind"`
}

// EvaluationPayload accompanies EventEvaluation for interviewer rounds.
type EvaluationPayload struct {
	RoundKind  RoundKind  `json:"round_kind"`
	Evaluation Evaluation `json:"evaluation"`
	ScoreLevel string     `json:"score_level,omitempty"`
}

// FinalEvaluationPayload accompanies EventFinalEvaluation after the
// committee round.
type FinalEvaluationPayload struct {
	Final         FinalEvaluation `json:"final"`
	WeightedScore float64         `json:"weighted_score"`
	ScoreLevel    string          `json:"score_level,omitempty"`
}

// CommitteeStartPayload accompanies EventCommitteeStart.
type CommitteeStartPayload struct {
	RoundsReviewed int `json:"rounds_reviewed"`
}

// SessionCompletePayload accompanies EventSessionComplete.
type SessionCompletePayload struct {
	SessionID  string   `json:"session_id"`
	FinalScore *float64 `json:"final_score,omitempty"`
	Decision   string   `json:"decision,omitempty"`
}

// SessionEndedPayload accompanies EventSessionEnded when a session is cut
// short.
type SessionEndedPayload struct {
	Reason string `json:"reason"`
}

// ErrorPayload accompanies EventError.
type ErrorPayload struct {
	Message string `json:"message"`
}

package types

import "time"

// SessionStatus is the lifecycle state of a session. Transitions are
// monotonic: Active ends in exactly one of Completed or EndedEarly.
type SessionStatus string

const (
	SessionActive     SessionStatus = "active"
	SessionCompleted  SessionStatus = "completed"
	SessionEndedEarly SessionStatus = "ended_early"
)

// Terminal reports whether the session can no longer accept commands.
func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionEndedEarly
}

// Session is one complete interview attempt by one user.
type Session struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	Position  string        `json:"position"`
	Mode      Mode          `json:"mode"`
	Rounds    []RoundRecord `json:"rounds"`
	Status    SessionStatus `json:"status"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   *time.Time    `json:"ended_at,omitempty"`

	// FinalScore is the committee's score in full mode, or the single
	// round's score in practice mode. WeightedScore is the arithmetic
	// reference value and is reported for transparency only.
	FinalScore      *float64              `json:"final_score,omitempty"`
	FinalDecision   string                `json:"final_decision,omitempty"`
	OverallFeedback string                `json:"overall_feedback,omitempty"`
	DimensionScores map[RoundKind]float64 `json:"dimension_scores,omitempty"`
	WeightedScore   *float64              `json:"weighted_score,omitempty"`
}

// CompletedInterviewerRounds returns the finished non-committee rounds, the
// input to committee aggregation and to the weighted reference score.
func (s *Session) CompletedInterviewerRounds() []RoundRecord {
	var out []RoundRecord
	for _, r := range s.Rounds {
		if r.Kind.Interviewer() && r.Score != nil {
			out = append(out, r)
		}
	}
	return out
}

// RoundScores maps each scored round kind to its score.
func (s *Session) RoundScores() map[RoundKind]float64 {
	scores := make(map[RoundKind]float64)
	for _, r := range s.Rounds {
		if r.Score != nil {
			scores[r.Kind] = *r.Score
		}
	}
	return scores
}

package types

// DepthSignal is the interviewer's judgment of how thoroughly an answer
// covered the question. Shallow answers are candidates for a follow-up.
type DepthSignal string

const (
	DepthShallow  DepthSignal = "shallow"
	DepthAdequate DepthSignal = "adequate"
	DepthDeep     DepthSignal = "deep"
)

// Evaluation is the structured result of scoring one answer.
type Evaluation struct {
	Score           float64     `json:"score"`
	Feedback        string      `json:"feedback"`
	StrengthTags    []string    `json:"strength_tags,omitempty"`
	WeaknessTags    []string    `json:"weakness_tags,omitempty"`
	ImprovementHint string      `json:"improvement_hint,omitempty"`
	Depth           DepthSignal `json:"depth,omitempty"`

	// FollowUpHint explains what a probe should dig into; FollowUpQuestion
	// is the interviewer's suggested probe. Both are advisory — the
	// follow-up policy decides whether either is used.
	FollowUpHint     string `json:"follow_up_hint,omitempty"`
	FollowUpQuestion string `json:"follow_up_question,omitempty"`

	// Degraded marks an evaluation produced by the deterministic stand-in
	// after the backend could not be reached.
	Degraded bool `json:"degraded,omitempty"`
}

// FinalEvaluation is the committee's verdict over all completed rounds.
// FinalScore is authoritative for full-mode sessions and may deviate from
// the arithmetic weighted score.
type FinalEvaluation struct {
	FinalScore             float64               `json:"final_score"`
	Decision               string                `json:"decision"`
	OverallFeedback        string                `json:"overall_feedback"`
	KeyStrengths           []string              `json:"key_strengths,omitempty"`
	KeyWeaknesses          []string              `json:"key_weaknesses,omitempty"`
	ImprovementSuggestions []string              `json:"improvement_suggestions,omitempty"`
	DimensionScores        map[RoundKind]float64 `json:"dimension_scores,omitempty"`
	Degraded               bool                  `json:"degraded,omitempty"`
}

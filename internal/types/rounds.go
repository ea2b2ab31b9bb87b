// Package types provides type definitions for structured data used throughout the interview-simulator system.
package types

// RoundKind identifies one interviewer role in the interview sequence.
type RoundKind string

const (
	RoundHR            RoundKind = "HR"
	RoundHiringManager RoundKind = "HiringManager"
	RoundTechnical     RoundKind = "Technical"
	RoundCultureFit    RoundKind = "CultureFit"
	RoundCommittee     RoundKind = "Committee"
)

// FullSequence returns the fixed round order for a full-mode interview.
// The committee round always runs last and is never part of practice mode.
func FullSequence() []RoundKind {
	return []RoundKind{
		RoundHR,
		RoundHiringManager,
		RoundTechnical,
		RoundCultureFit,
		RoundCommittee,
	}
}

// InterviewerKinds returns the roles that ask questions, i.e. every round
// except Committee. These are the valid choices for a practice round.
func InterviewerKinds() []RoundKind {
	return []RoundKind{
		RoundHR,
		RoundHiringManager,
		RoundTechnical,
		RoundCultureFit,
	}
}

// Valid reports whether k is a known round kind.
func (k RoundKind) Valid() bool {
	switch k {
	case RoundHR, RoundHiringManager, RoundTechnical, RoundCultureFit, RoundCommittee:
		return true
	}
	return false
}

// Interviewer reports whether k is an interactive interviewer role.
func (k RoundKind) Interviewer() bool {
	return k.Valid() && k != RoundCommittee
}

// Mode selects between a full five-round interview and a single-round practice.
type Mode string

const (
	ModeFull     Mode = "full"
	ModePractice Mode = "practice"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeFull || m == ModePractice
}

// Exchange is a single question/answer pair within a round. Answer is empty
// while the candidate has not responded yet.
type Exchange struct {
	Question       string `json:"question"`
	Answer         string `json:"answer,omitempty"`
	Answered       bool   `json:"answered"`
	IsFollowUp     bool   `json:"is_follow_up"`
	FollowUpReason string `json:"follow_up_reason,omitempty"`
}

// RoundRecord captures one round of the interview, complete or in progress.
// Score is nil until the round reaches its terminal state.
type RoundRecord struct {
	Kind            RoundKind  `json:"kind"`
	DisplayName     string     `json:"display_name"`
	Exchanges       []Exchange `json:"exchanges"`
	Score           *float64   `json:"score,omitempty"`
	Feedback        string     `json:"feedback,omitempty"`
	StrengthTags    []string   `json:"strength_tags,omitempty"`
	WeaknessTags    []string   `json:"weakness_tags,omitempty"`
	ImprovementHint string     `json:"improvement_hint,omitempty"`
	Skipped         bool       `json:"skipped,omitempty"`
	Degraded        bool       `json:"degraded,omitempty"`
}

// FollowUpCount returns how many follow-up exchanges the round has issued.
func (r *RoundRecord) FollowUpCount() int {
	n := 0
	for _, ex := range r.Exchanges {
		if ex.IsFollowUp {
			n++
		}
	}
	return n
}

// CurrentExchange returns the most recent exchange, or nil if the round has
// not asked anything yet.
func (r *RoundRecord) CurrentExchange() *Exchange {
	if len(r.Exchanges) == 0 {
		return nil
	}
	return &r.Exchanges[len(r.Exchanges)-1]
}

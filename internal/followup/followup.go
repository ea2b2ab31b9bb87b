// Package followup decides whether an evaluated answer warrants a
// supplementary question within the same round.
package followup

import (
	"strings"

	"github.com/jonathan/interview-simulator/internal/types"
)

// Policy holds the tunable follow-up rules. The zero value disables
// follow-ups entirely; use DefaultPolicy for the standard behavior.
type Policy struct {
	// MaxFollowUps caps supplementary questions per round. Once a round
	// has issued this many, any further recommendation is ignored and the
	// round finalizes on its last evaluation.
	MaxFollowUps int
	// ScoreThreshold triggers a follow-up for scores strictly below it
	// when the evaluation carries no explicit depth signal.
	ScoreThreshold float64
	// HedgeKeywords are answer fragments that read as uncertainty and
	// count as a shallow-depth signal.
	HedgeKeywords []string
}

// DefaultPolicy returns the standard policy: at most one follow-up per
// round, triggered by a shallow depth signal, a score below 5, or hedging
// language in the answer.
func DefaultPolicy() Policy {
	return Policy{
		MaxFollowUps:   1,
		ScoreThreshold: 5,
		HedgeKeywords: []string{
			"not sure",
			"i guess",
			"maybe",
			"probably",
			"i think so",
			"don't know",
		},
	}
}

// Decision is the outcome of applying the policy to one evaluation.
type Decision struct {
	Ask    bool
	Reason string
}

// Decide determines whether to issue a follow-up given the evaluation of the
// answer and the number of follow-ups the round has already used. The result
// is deterministic in its inputs.
func (p Policy) Decide(answer string, eval types.Evaluation, used int) Decision {
	if used >= p.MaxFollowUps {
		return Decision{}
	}

	if eval.Depth == types.DepthShallow {
		return Decision{Ask: true, Reason: reasonOr(eval.FollowUpHint, "the answer stayed at the surface")}
	}
	if eval.Depth == "" && eval.Score < p.ScoreThreshold {
		return Decision{Ask: true, Reason: reasonOr(eval.FollowUpHint, "the answer scored below the bar")}
	}
	if p.hedges(answer) {
		return Decision{Ask: true, Reason: reasonOr(eval.FollowUpHint, "the answer sounded uncertain")}
	}
	return Decision{}
}

func (p Policy) hedges(answer string) bool {
	lower := strings.ToLower(answer)
	for _, kw := range p.HedgeKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func reasonOr(hint, fallback string) string {
	if hint != "" {
		return hint
	}
	return fallback
}

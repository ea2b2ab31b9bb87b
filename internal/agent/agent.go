// Package agent defines the text-generation capability behind the interview:
// producing questions, evaluating answers, and aggregating the final verdict.
// The orchestrator depends only on the Capability interface; implementations
// cover the Gemini backend and a deterministic stand-in for degraded mode.
package agent

import (
	"context"

	"github.com/jonathan/interview-simulator/internal/types"
)

// QA is a compact record of one prior exchange, passed as context so later
// rounds can build on earlier answers.
type QA struct {
	Round    types.RoundKind
	Question string
	Answer   string
}

// Context carries everything a capability call may ground itself on.
// All fields are optional.
type Context struct {
	Position       string
	ProfileHints   []string // e.g. recurring weaknesses from past sessions
	PriorExchanges []QA     // earlier rounds' Q&A in session order
}

// Capability is the three-call contract the orchestrator consumes. Each
// call is stateless and may fail with a *TransientError (worth retrying)
// or a *FatalError (surface to the caller).
type Capability interface {
	// AskQuestion produces the opening question for a round.
	AskQuestion(ctx context.Context, role types.RoundKind, ic Context) (string, error)

	// Evaluate scores a candidate answer and reports depth plus an
	// optional suggested follow-up probe.
	Evaluate(ctx context.Context, role types.RoundKind, ic Context, question, answer string) (types.Evaluation, error)

	// Aggregate is the committee call: it weighs all completed rounds
	// and returns the final verdict.
	Aggregate(ctx context.Context, ic Context, records []types.RoundRecord) (types.FinalEvaluation, error)
}

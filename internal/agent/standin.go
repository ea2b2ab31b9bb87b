package agent

import (
	"context"
	"fmt"

	"github.com/jonathan/interview-simulator/internal/scoring"
	"github.com/jonathan/interview-simulator/internal/types"
)

// standinQuestions are the fixed per-role questions used when the backend
// is unreachable. Deterministic content keeps degraded sessions repeatable.
var standinQuestions = map[types.RoundKind]string{
	types.RoundHR:            "Tell me about yourself and what draws you to this position.",
	types.RoundHiringManager: "Walk me through a project you owned end to end. What was the outcome, and what would you do differently?",
	types.RoundTechnical:     "Describe a data analysis you ran recently: the question, the method you chose, and why that method fit.",
	types.RoundCultureFit:    "Tell me about a time you disagreed with a teammate. How did you handle it, and how did it resolve?",
}

const standinScore = 5.0

// Standin is a deterministic Capability used when the real backend is
// failing, and as an offline mode for local runs. Every result it produces
// is flagged degraded so the transport layer can surface it.
type Standin struct{}

// NewStandin returns the deterministic stand-in capability.
func NewStandin() *Standin { return &Standin{} }

// AskQuestion returns the fixed question for the role.
func (s *Standin) AskQuestion(_ context.Context, role types.RoundKind, _ Context) (string, error) {
	q, ok := standinQuestions[role]
	if !ok {
		return "", &FatalError{Op: "ask_question", Err: fmt.Errorf("no stand-in question for role %s", role)}
	}
	return q, nil
}

// Evaluate returns a neutral mid-scale evaluation. It never recommends a
// follow-up, so degraded rounds finish in one exchange.
func (s *Standin) Evaluate(_ context.Context, _ types.RoundKind, _ Context, _, _ string) (types.Evaluation, error) {
	return types.Evaluation{
		Score:    standinScore,
		Feedback: "The interviewer is temporarily unavailable; a neutral score was recorded. This answer did not affect your strengths or weaknesses profile.",
		Depth:    types.DepthAdequate,
		Degraded: true,
	}, nil
}

// Aggregate computes the verdict arithmetically from the round scores,
// since no judgment call is available.
func (s *Standin) Aggregate(_ context.Context, _ Context, records []types.RoundRecord) (types.FinalEvaluation, error) {
	scores := make(map[types.RoundKind]float64)
	dims := make(map[types.RoundKind]float64)
	for _, r := range records {
		if r.Score == nil {
			continue
		}
		scores[r.Kind] = *r.Score
		if r.Kind.Interviewer() {
			dims[r.Kind] = *r.Score
		}
	}

	final := scoring.WeightedScore(scores)
	return types.FinalEvaluation{
		FinalScore:      final,
		Decision:        scoring.DecisionFor(final),
		OverallFeedback: "The hiring committee is temporarily unavailable. This verdict is the weighted average of your round scores.",
		DimensionScores: dims,
		Degraded:        true,
	}, nil
}

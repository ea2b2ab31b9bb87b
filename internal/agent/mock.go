package agent

import (
	"context"
	"sync"

	"github.com/jonathan/interview-simulator/internal/types"
)

// Mock is a scriptable Capability for tests and local development. Calls
// are counted, and per-call errors can be injected.
type Mock struct {
	mu sync.Mutex

	Question   string
	QuestionFn func(role types.RoundKind, ic Context) (string, error)

	Evaluation types.Evaluation
	EvaluateFn func(role types.RoundKind, ic Context, question, answer string) (types.Evaluation, error)

	Final       types.FinalEvaluation
	AggregateFn func(ic Context, records []types.RoundRecord) (types.FinalEvaluation, error)

	AskCalls       int
	EvaluateCalls  int
	AggregateCalls int
}

// NewMock returns a mock that answers every call successfully with bland
// fixed content.
func NewMock() *Mock {
	return &Mock{
		Question:   "Tell me about a recent project.",
		Evaluation: types.Evaluation{Score: 7, Feedback: "Reasonable answer.", Depth: types.DepthAdequate},
		Final: types.FinalEvaluation{
			FinalScore:      7,
			Decision:        "Hire",
			OverallFeedback: "Consistent across rounds.",
		},
	}
}

func (m *Mock) AskQuestion(_ context.Context, role types.RoundKind, ic Context) (string, error) {
	m.mu.Lock()
	m.AskCalls++
	fn := m.QuestionFn
	q := m.Question
	m.mu.Unlock()

	if fn != nil {
		return fn(role, ic)
	}
	return q, nil
}

func (m *Mock) Evaluate(_ context.Context, role types.RoundKind, ic Context, question, answer string) (types.Evaluation, error) {
	m.mu.Lock()
	m.EvaluateCalls++
	fn := m.EvaluateFn
	eval := m.Evaluation
	m.mu.Unlock()

	if fn != nil {
		return fn(role, ic, question, answer)
	}
	return eval, nil
}

func (m *Mock) Aggregate(_ context.Context, ic Context, records []types.RoundRecord) (types.FinalEvaluation, error) {
	m.mu.Lock()
	m.AggregateCalls++
	fn := m.AggregateFn
	final := m.Final
	m.mu.Unlock()

	if fn != nil {
		return fn(ic, records)
	}
	return final, nil
}

// Calls returns the total number of capability calls made.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.AskCalls + m.EvaluateCalls + m.AggregateCalls
}

package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/jonathan/interview-simulator/internal/types"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"score": 5}`, `{"score": 5}`},
		{"json fence", "```json\n{\"score\": 5}\n```", `{"score": 5}`},
		{"bare fence", "```\n{\"score\": 5}\n```", `{"score": 5}`},
		{"whitespace", "  {\"score\": 5}\n", `{"score": 5}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanJSONBlock(tt.in); got != tt.want {
				t.Errorf("CleanJSONBlock() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorClassification(t *testing.T) {
	transient := &TransientError{Op: "evaluate", Err: errors.New("timeout")}
	fatal := &FatalError{Op: "evaluate", Err: errors.New("bad key")}

	if !IsTransient(transient) {
		t.Error("TransientError not recognized as transient")
	}
	if IsTransient(fatal) {
		t.Error("FatalError recognized as transient")
	}
	if !IsFatal(fatal) {
		t.Error("FatalError not recognized as fatal")
	}
	if IsFatal(transient) {
		t.Error("TransientError recognized as fatal")
	}

	// Wrapped errors unwrap correctly.
	wrapped := &TransientError{Op: "ask_question", Err: context.DeadlineExceeded}
	if !errors.Is(wrapped, context.DeadlineExceeded) {
		t.Error("TransientError does not unwrap its cause")
	}

	// A canceled context is never retryable.
	canceled := &TransientError{Op: "evaluate", Err: context.Canceled}
	if IsTransient(canceled) {
		t.Error("canceled context must not be transient")
	}
}

func TestNormalizeEvaluation(t *testing.T) {
	eval := types.Evaluation{Score: 14, Depth: "bottomless"}
	normalizeEvaluation(&eval)
	if eval.Score != 10 {
		t.Errorf("Score = %v, want clamp to 10", eval.Score)
	}
	if eval.Depth != "" {
		t.Errorf("Depth = %q, want cleared", eval.Depth)
	}

	eval = types.Evaluation{Score: -2, Depth: types.DepthDeep}
	normalizeEvaluation(&eval)
	if eval.Score != 0 {
		t.Errorf("Score = %v, want clamp to 0", eval.Score)
	}
	if eval.Depth != types.DepthDeep {
		t.Errorf("Depth = %q, want preserved", eval.Depth)
	}
}

func TestStandinDeterminism(t *testing.T) {
	s := NewStandin()
	ctx := context.Background()

	q1, err := s.AskQuestion(ctx, types.RoundTechnical, Context{})
	if err != nil {
		t.Fatalf("AskQuestion failed: %v", err)
	}
	q2, _ := s.AskQuestion(ctx, types.RoundTechnical, Context{})
	if q1 != q2 {
		t.Error("stand-in questions are not deterministic")
	}

	eval, err := s.Evaluate(ctx, types.RoundTechnical, Context{}, q1, "some answer")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !eval.Degraded {
		t.Error("stand-in evaluation must be flagged degraded")
	}
	if eval.Score != standinScore {
		t.Errorf("Score = %v, want %v", eval.Score, standinScore)
	}
}

func TestStandinRejectsCommitteeQuestion(t *testing.T) {
	s := NewStandin()
	if _, err := s.AskQuestion(context.Background(), types.RoundCommittee, Context{}); err == nil {
		t.Error("expected error asking a question for the committee round")
	}
}

func TestStandinAggregate(t *testing.T) {
	s := NewStandin()
	seven, eight := 7.0, 8.0
	records := []types.RoundRecord{
		{Kind: types.RoundHR, Score: &eight},
		{Kind: types.RoundTechnical, Score: &seven},
	}

	final, err := s.Aggregate(context.Background(), Context{}, records)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if !final.Degraded {
		t.Error("stand-in verdict must be flagged degraded")
	}
	// (8*0.15 + 7*0.35) / 0.50 = 7.3
	if final.FinalScore != 7.3 {
		t.Errorf("FinalScore = %v, want 7.3", final.FinalScore)
	}
	if final.Decision != "Hire" {
		t.Errorf("Decision = %q, want Hire", final.Decision)
	}
	if len(final.DimensionScores) != 2 {
		t.Errorf("DimensionScores = %v, want 2 entries", final.DimensionScores)
	}
}

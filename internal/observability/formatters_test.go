package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jonathan/interview-simulator/internal/types"
)

func TestPrintQuestion(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintQuestion("Technical Interview", "Describe a system you designed.", false)

	out := buf.String()
	if !strings.Contains(out, "Technical Interview") {
		t.Errorf("expected round name in output, got:\n%s", out)
	}
	if !strings.Contains(out, "Describe a system you designed.") {
		t.Errorf("expected question text in output, got:\n%s", out)
	}
	if strings.Contains(out, "FOLLOW-UP") {
		t.Error("did not expect follow-up marker on an initial question")
	}
}

func TestPrintQuestionFollowUp(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintQuestion("HR Screening", "Can you give a concrete example?", true)

	if !strings.Contains(buf.String(), "FOLLOW-UP") {
		t.Error("expected follow-up marker in title")
	}
}

func TestPrintQuestionWrapsLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	long := strings.Repeat("walk me through the trade-offs ", 10)
	p.PrintQuestion("Technical Interview", long, false)

	for _, line := range strings.Split(buf.String(), "\n") {
		if len([]rune(line)) > boxWidth+2 {
			t.Errorf("line exceeds box width: %q", line)
		}
	}
}

func TestPrintEvaluation(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintEvaluation(&types.Evaluation{
		Score:           7.5,
		Feedback:        "Solid structure, clear ownership.",
		StrengthTags:    []string{"communication", "ownership"},
		WeaknessTags:    []string{"metrics"},
		ImprovementHint: "Quantify the impact next time.",
	})

	out := buf.String()
	for _, want := range []string{
		"7.5/10", "Good",
		"Solid structure, clear ownership.",
		"communication, ownership",
		"metrics",
		"Quantify the impact next time.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "degraded") {
		t.Error("did not expect degraded notice for a normal evaluation")
	}
}

func TestPrintEvaluationDegraded(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintEvaluation(&types.Evaluation{Score: 5, Feedback: "Recorded.", Degraded: true})

	if !strings.Contains(buf.String(), "degraded") {
		t.Error("expected degraded notice")
	}
}

func TestPrintEvaluationNilIsNoop(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintEvaluation(nil)
	if buf.Len() != 0 {
		t.Errorf("expected no output for nil evaluation, got %q", buf.String())
	}
}

func TestPrintFinalVerdict(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintFinalVerdict(&types.FinalEvaluation{
		FinalScore:             7.8,
		Decision:               "Hire",
		OverallFeedback:        "Consistent performance across rounds.",
		KeyStrengths:           []string{"system design"},
		KeyWeaknesses:          []string{"behavioral depth"},
		ImprovementSuggestions: []string{"Practice STAR answers."},
	}, 7.42)

	out := buf.String()
	for _, want := range []string{
		"COMMITTEE VERDICT",
		"7.8/10", "Hire",
		"7.42/10",
		"Consistent performance across rounds.",
		"system design",
		"behavioral depth",
		"Practice STAR answers.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestPrintSessionSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	hr := 6.0
	tech := 8.0
	final := 7.4
	p.PrintSessionSummary(&types.Session{
		Rounds: []types.RoundRecord{
			{Kind: types.RoundHR, DisplayName: "HR Screening", Score: &hr},
			{Kind: types.RoundHiringManager, DisplayName: "Hiring Manager", Skipped: true},
			{Kind: types.RoundTechnical, DisplayName: "Technical Interview", Score: &tech},
			{Kind: types.RoundCommittee, DisplayName: "Committee Review"},
		},
		FinalScore:    &final,
		FinalDecision: "Hire",
	})

	out := buf.String()
	if !strings.Contains(out, "HR Screening") || !strings.Contains(out, "6.0/10") {
		t.Errorf("expected HR score line, got:\n%s", out)
	}
	if !strings.Contains(out, "skipped") {
		t.Error("expected skipped marker for the skipped round")
	}
	if strings.Contains(out, "Committee Review") {
		t.Error("committee round should not appear in the per-round table")
	}
	if !strings.Contains(out, "FINAL") || !strings.Contains(out, "Hire") {
		t.Errorf("expected final verdict line, got:\n%s", out)
	}
}

func TestCappedLimitsItems(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e", "f", "g"}
	got := capped(items)
	if len(got) != maxItemsToShow {
		t.Errorf("expected %d items, got %d", maxItemsToShow, len(got))
	}
}

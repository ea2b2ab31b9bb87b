package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonathan/interview-simulator/internal/types"
)

func sampleSession() *types.Session {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	end := now.Add(40 * time.Minute)
	final, weighted := 7.4, 6.95
	tech, hr := 8.0, 6.0
	return &types.Session{
		ID:              "s-1",
		UserID:          "candidate-42",
		Position:        "Data Analyst",
		Mode:            types.ModeFull,
		Status:          types.SessionCompleted,
		StartedAt:       now,
		EndedAt:         &end,
		FinalScore:      &final,
		WeightedScore:   &weighted,
		FinalDecision:   "Hire",
		OverallFeedback: "Consistent and well-reasoned answers.",
		DimensionScores: map[types.RoundKind]float64{
			types.RoundHR:        6,
			types.RoundTechnical: 8,
		},
		Rounds: []types.RoundRecord{
			{
				Kind:        types.RoundHR,
				DisplayName: "HR Screen",
				Score:       &hr,
				Feedback:    "Adequate but brief.",
				Exchanges: []types.Exchange{
					{Question: "Why this role?", Answer: "I enjoy data work.", Answered: true},
					{Question: "Can you be more specific?", Answer: "Dashboards mostly.", Answered: true, IsFollowUp: true},
				},
			},
			{
				Kind:         types.RoundTechnical,
				DisplayName:  "Technical Interview",
				Score:        &tech,
				Feedback:     "Strong SQL reasoning.",
				StrengthTags: []string{"sql"},
				Exchanges: []types.Exchange{
					{Question: "Explain a JOIN.", Answer: "A JOIN combines rows...", Answered: true},
				},
			},
			{Kind: types.RoundCommittee, DisplayName: "Hiring Committee Review", Score: &final},
		},
	}
}

func TestMarkdownContainsVerdictAndRounds(t *testing.T) {
	md := Markdown(sampleSession(), nil)

	for _, want := range []string{
		"# Mock Interview Report",
		"**Candidate**: candidate-42",
		"Final score: 7.4/10 (Good)",
		"**Decision**: Hire",
		"Weighted round score (reference)**: 6.95/10",
		"### 1. HR Screen",
		"### 2. Technical Interview",
		"**Follow-up**:",
		"| Technical Interview | 8.0/10 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q", want)
		}
	}

	if strings.Contains(md, "### 3.") {
		t.Error("committee round must not appear as a numbered round")
	}
}

func TestMarkdownSkippedRound(t *testing.T) {
	s := sampleSession()
	zero := 0.0
	s.Rounds[0].Skipped = true
	s.Rounds[0].Score = &zero

	md := Markdown(s, nil)
	if !strings.Contains(md, "Skipped by the candidate") {
		t.Error("skipped round not noted")
	}
	if strings.Contains(md, "Why this role?") {
		t.Error("skipped round must not print its exchanges")
	}
}

func TestMarkdownEndedEarly(t *testing.T) {
	s := sampleSession()
	s.Status = types.SessionEndedEarly
	s.FinalScore = nil
	s.FinalDecision = ""

	md := Markdown(s, nil)
	if !strings.Contains(md, "ended early") {
		t.Error("ended-early note missing")
	}
	if strings.Contains(md, "Final score:") {
		t.Error("ended-early report must not claim a final score")
	}
}

func TestMarkdownDegradedNotice(t *testing.T) {
	s := sampleSession()
	s.Rounds[1].Degraded = true

	md := Markdown(s, nil)
	if !strings.Contains(md, "degraded mode") {
		t.Error("degraded notice missing")
	}
}

func TestMarkdownProgressSection(t *testing.T) {
	p := &types.UserProfile{
		UserID:         "candidate-42",
		SessionCount:   3,
		ScoredSessions: 3,
		AverageScore:   6.5,
		BestScore:      7.4,
		DimensionAverages: map[types.RoundKind]float64{
			types.RoundHR:        7,
			types.RoundTechnical: 5,
		},
		WeaknessTagCounts: map[string]int{"statistics": 2},
	}

	md := Markdown(sampleSession(), p)
	for _, want := range []string{
		"## Progress",
		"Sessions on record: 3",
		"above your running average",
		"Technical Interview",
		"statistics",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("progress section missing %q", want)
		}
	}
}

func TestSaveWritesFile(t *testing.T) {
	dir := t.TempDir()
	path, err := Save(dir, sampleSession(), nil)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("report saved outside dir: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(data), "# Mock Interview Report") {
		t.Error("saved report missing title")
	}
}

// Package report renders finished interview sessions as Markdown reports.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/interview-simulator/internal/scoring"
	"github.com/jonathan/interview-simulator/internal/types"
)

// Markdown renders a full interview report for a finished session. The
// profile is optional; when present, a history section compares this
// session against the user's averages.
func Markdown(s *types.Session, profile *types.UserProfile) string {
	var sb strings.Builder

	sb.WriteString("# Mock Interview Report\n\n")
	fmt.Fprintf(&sb, "**Candidate**: %s\n", s.UserID)
	fmt.Fprintf(&sb, "**Position**: %s\n", s.Position)
	fmt.Fprintf(&sb, "**Interview date**: %s\n", s.StartedAt.Format("2006-01-02"))
	fmt.Fprintf(&sb, "**Generated**: %s\n\n", time.Now().Format("2006-01-02 15:04"))

	writeOverall(&sb, s)
	writeDimensions(&sb, s)
	writeRounds(&sb, s)
	writeHistory(&sb, s, profile)

	sb.WriteString("---\n")
	sb.WriteString("*Generated by the interview simulator.*\n")
	return sb.String()
}

func writeOverall(sb *strings.Builder, s *types.Session) {
	sb.WriteString("---\n## Overall Assessment\n\n")

	if s.Status == types.SessionEndedEarly {
		sb.WriteString("The interview was ended early; no final verdict was reached.\n\n")
		return
	}
	if s.FinalScore == nil {
		sb.WriteString("No final score is available for this session.\n\n")
		return
	}

	level := scoring.LevelFor(*s.FinalScore)
	fmt.Fprintf(sb, "### Final score: %.1f/10 (%s)\n\n", *s.FinalScore, level.Name)
	fmt.Fprintf(sb, "**Decision**: %s\n\n", s.FinalDecision)
	if s.WeightedScore != nil {
		fmt.Fprintf(sb, "**Weighted round score (reference)**: %.2f/10\n\n", *s.WeightedScore)
	}
	if s.OverallFeedback != "" {
		fmt.Fprintf(sb, "**Committee summary**: %s\n\n", s.OverallFeedback)
	}
	if degradedAnywhere(s) {
		sb.WriteString("> Parts of this interview ran in degraded mode; some scores are neutral placeholders.\n\n")
	}
}

func writeDimensions(sb *strings.Builder, s *types.Session) {
	if len(s.DimensionScores) == 0 {
		return
	}
	sb.WriteString("### Dimension Scores\n\n")
	sb.WriteString("| Dimension | Score | Level |\n")
	sb.WriteString("|-----------|-------|-------|\n")
	for _, kind := range types.InterviewerKinds() {
		score, ok := s.DimensionScores[kind]
		if !ok {
			continue
		}
		fmt.Fprintf(sb, "| %s | %.1f/10 | %s |\n",
			displayName(s, kind), score, scoring.LevelFor(score).Name)
	}
	sb.WriteString("\n")
}

func writeRounds(sb *strings.Builder, s *types.Session) {
	sb.WriteString("---\n## Round Details\n\n")

	n := 0
	for _, r := range s.Rounds {
		if r.Kind == types.RoundCommittee {
			continue
		}
		n++
		name := r.DisplayName
		if name == "" {
			name = string(r.Kind)
		}
		fmt.Fprintf(sb, "### %d. %s\n\n", n, name)

		if r.Skipped {
			sb.WriteString("Skipped by the candidate. Scored 0/10.\n\n")
			continue
		}
		if r.Score != nil {
			fmt.Fprintf(sb, "**Score**: %.1f/10\n\n", *r.Score)
		}

		for _, ex := range r.Exchanges {
			label := "Question"
			if ex.IsFollowUp {
				label = "Follow-up"
			}
			fmt.Fprintf(sb, "**%s**:\n> %s\n\n", label, ex.Question)
			if ex.Answered {
				fmt.Fprintf(sb, "**Your answer**:\n> %s\n\n", ex.Answer)
			}
		}

		if r.Feedback != "" {
			fmt.Fprintf(sb, "**Interviewer feedback**: %s\n\n", r.Feedback)
		}
		if r.ImprovementHint != "" {
			fmt.Fprintf(sb, "**How to improve**: %s\n\n", r.ImprovementHint)
		}
		if len(r.StrengthTags) > 0 {
			fmt.Fprintf(sb, "**Strengths**: %s\n\n", strings.Join(r.StrengthTags, ", "))
		}
		if len(r.WeaknessTags) > 0 {
			fmt.Fprintf(sb, "**Weaknesses**: %s\n\n", strings.Join(r.WeaknessTags, ", "))
		}
	}
}

func writeHistory(sb *strings.Builder, s *types.Session, profile *types.UserProfile) {
	if profile == nil || profile.ScoredSessions == 0 {
		return
	}
	sb.WriteString("---\n## Progress\n\n")
	fmt.Fprintf(sb, "Sessions on record: %d. Average score %.2f, best %.2f.\n\n",
		profile.SessionCount, profile.AverageScore, profile.BestScore)

	if s.FinalScore != nil {
		switch {
		case *s.FinalScore > profile.AverageScore:
			sb.WriteString("This session scored above your running average.\n\n")
		case *s.FinalScore < profile.AverageScore:
			sb.WriteString("This session scored below your running average.\n\n")
		}
	}
	if kind, ok := profile.RecommendedPracticeRound(); ok {
		fmt.Fprintf(sb, "Suggested practice focus: **%s** (your weakest dimension).\n\n",
			displayName(s, kind))
	}
	if weak := profile.TopWeaknesses(3); len(weak) > 0 {
		fmt.Fprintf(sb, "Recurring weaknesses: %s.\n\n", strings.Join(weak, ", "))
	}
}

// Save writes a Markdown report to dir and returns the file path.
func Save(dir string, s *types.Session, profile *types.UserProfile) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports dir: %w", err)
	}
	name := fmt.Sprintf("%s_%s_report.md", s.UserID, time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(Markdown(s, profile)), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

func displayName(s *types.Session, kind types.RoundKind) string {
	for _, r := range s.Rounds {
		if r.Kind == kind && r.DisplayName != "" {
			return r.DisplayName
		}
	}
	return string(kind)
}

func degradedAnywhere(s *types.Session) bool {
	for _, r := range s.Rounds {
		if r.Degraded {
			return true
		}
	}
	return false
}

// Package observability provides formatted output utilities for the
// interactive CLI interview.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/interview-simulator/internal/scoring"
	"github.com/jonathan/interview-simulator/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the terminal interview
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range wrapLines(content, boxWidth-4) {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// wrapLines splits content into lines no wider than width.
func wrapLines(content string, width int) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		for len(line) > width {
			cut := strings.LastIndex(line[:width], " ")
			if cut <= 0 {
				cut = width
			}
			out = append(out, line[:cut])
			line = strings.TrimLeft(line[cut:], " ")
		}
		out = append(out, line)
	}
	return out
}

// PrintRoundStart announces the next round.
//
//nolint:errcheck
func (p *Printer) PrintRoundStart(index, total int, name string) {
	fmt.Fprintf(p.out, "\n═══ Round %d/%d: %s ═══\n\n", index+1, total, name)
}

// PrintQuestion outputs the interviewer's question.
func (p *Printer) PrintQuestion(roundName, question string, followUp bool) {
	title := roundName
	if followUp {
		title = roundName + " — FOLLOW-UP"
	}
	p.printBox(title, question)
}

// PrintEvaluation outputs the interviewer's verdict on one answer.
func (p *Printer) PrintEvaluation(eval *types.Evaluation) {
	if eval == nil {
		return
	}

	var sb strings.Builder
	level := scoring.LevelFor(eval.Score)
	sb.WriteString(fmt.Sprintf("Score:    %.1f/10 (%s)\n", eval.Score, level.Name))
	sb.WriteString(fmt.Sprintf("Feedback: %s\n", eval.Feedback))

	if len(eval.StrengthTags) > 0 {
		sb.WriteString(fmt.Sprintf("Strengths:  %s\n", joinCapped(eval.StrengthTags)))
	}
	if len(eval.WeaknessTags) > 0 {
		sb.WriteString(fmt.Sprintf("Weaknesses: %s\n", joinCapped(eval.WeaknessTags)))
	}
	if eval.ImprovementHint != "" {
		sb.WriteString(fmt.Sprintf("Hint: %s\n", eval.ImprovementHint))
	}
	if eval.Degraded {
		sb.WriteString("(degraded mode: neutral placeholder score)\n")
	}

	p.printBox("EVALUATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintFinalVerdict outputs the committee's decision.
func (p *Printer) PrintFinalVerdict(final *types.FinalEvaluation, weightedScore float64) {
	if final == nil {
		return
	}

	var sb strings.Builder
	level := scoring.LevelFor(final.FinalScore)
	sb.WriteString(fmt.Sprintf("Final score: %.1f/10 (%s)\n", final.FinalScore, level.Name))
	sb.WriteString(fmt.Sprintf("Decision:    %s\n", final.Decision))
	sb.WriteString(fmt.Sprintf("Weighted reference: %.2f/10\n\n", weightedScore))
	sb.WriteString(final.OverallFeedback)
	sb.WriteString("\n")

	if len(final.KeyStrengths) > 0 {
		sb.WriteString("\nKey strengths:\n")
		for _, s := range capped(final.KeyStrengths) {
			sb.WriteString(fmt.Sprintf("  • %s\n", s))
		}
	}
	if len(final.KeyWeaknesses) > 0 {
		sb.WriteString("\nAreas to improve:\n")
		for _, w := range capped(final.KeyWeaknesses) {
			sb.WriteString(fmt.Sprintf("  • %s\n", w))
		}
	}
	if len(final.ImprovementSuggestions) > 0 {
		sb.WriteString("\nSuggestions:\n")
		for i, s := range capped(final.ImprovementSuggestions) {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, s))
		}
	}

	p.printBox("COMMITTEE VERDICT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSessionSummary outputs the per-round score table once a session is
// over.
func (p *Printer) PrintSessionSummary(s *types.Session) {
	if s == nil {
		return
	}

	var sb strings.Builder
	for _, r := range s.Rounds {
		if r.Kind == types.RoundCommittee {
			continue
		}
		name := r.DisplayName
		if name == "" {
			name = string(r.Kind)
		}
		switch {
		case r.Skipped:
			sb.WriteString(fmt.Sprintf("%-28s skipped (0.0)\n", name))
		case r.Score != nil:
			sb.WriteString(fmt.Sprintf("%-28s %.1f/10\n", name, *r.Score))
		default:
			sb.WriteString(fmt.Sprintf("%-28s not reached\n", name))
		}
	}
	if s.FinalScore != nil {
		sb.WriteString(fmt.Sprintf("\n%-28s %.1f/10 — %s", "FINAL", *s.FinalScore, s.FinalDecision))
	}

	p.printBox("INTERVIEW SUMMARY", sb.String())
}

func joinCapped(items []string) string {
	return strings.Join(capped(items), ", ")
}

func capped(items []string) []string {
	if len(items) > maxItemsToShow {
		return items[:maxItemsToShow]
	}
	return items
}

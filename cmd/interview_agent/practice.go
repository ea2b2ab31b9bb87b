package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jonathan/interview-simulator/internal/agent"
	"github.com/jonathan/interview-simulator/internal/config"
	"github.com/jonathan/interview-simulator/internal/followup"
	"github.com/jonathan/interview-simulator/internal/observability"
	"github.com/jonathan/interview-simulator/internal/session"
	"github.com/jonathan/interview-simulator/internal/types"
	"github.com/spf13/cobra"
)

var (
	practiceUser     string
	practicePosition string
	practiceRound    string
	practiceFull     bool
	practiceOffline  bool
	practiceRounds   string
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Run an interactive interview in the terminal",
	Long: `Run an interview session in the terminal, answering questions on stdin.
By default this is a single practice round; pass --full for the complete
five-round interview ending in a committee verdict.`,
	RunE: runPractice,
}

func init() {
	practiceCmd.Flags().StringVar(&practiceUser, "user", "local", "User ID for the session")
	practiceCmd.Flags().StringVar(&practicePosition, "position", "Software Engineer", "Position being interviewed for")
	practiceCmd.Flags().StringVar(&practiceRound, "round", "Technical", "Practice round: HR, HiringManager, Technical, or CultureFit")
	practiceCmd.Flags().BoolVar(&practiceFull, "full", false, "Run the full interview instead of a single practice round")
	practiceCmd.Flags().BoolVar(&practiceOffline, "offline", false, "Use the deterministic stand-in interviewer instead of Gemini")
	practiceCmd.Flags().StringVar(&practiceRounds, "rounds", "", "Path to YAML round definitions")
	rootCmd.AddCommand(practiceCmd)
}

func runPractice(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	capability, err := practiceCapability(ctx)
	if err != nil {
		return err
	}

	rounds, err := config.LoadRounds(practiceRounds)
	if err != nil {
		return err
	}

	opts := session.Options{
		UserID:     practiceUser,
		Position:   practicePosition,
		Mode:       types.ModePractice,
		Rounds:     rounds,
		Capability: capability,
		Policy:     followup.DefaultPolicy(),
		Sink:       newConsoleSink(os.Stdout),
	}
	if practiceFull {
		opts.Mode = types.ModeFull
	} else {
		kind := types.RoundKind(practiceRound)
		if !kind.Interviewer() {
			return fmt.Errorf("invalid practice round %q: must be one of %v", practiceRound, types.InterviewerKinds())
		}
		opts.PracticeRound = kind
	}

	o := session.New(opts)
	if err := o.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		snap := o.Snapshot()
		if snap.Status.Terminal() {
			observability.NewPrinter(os.Stdout).PrintSessionSummary(&snap)
			return nil
		}

		fmt.Print("\n> ")
		if !scanner.Scan() {
			// stdin closed; bail out but keep what was answered
			return o.EndEarly("input closed")
		}
		answer := strings.TrimSpace(scanner.Text())

		switch answer {
		case "/skip":
			err = o.Skip(ctx)
		case "/quit":
			return o.EndEarly("ended by user")
		case "":
			fmt.Println("(empty answer ignored; type /skip to skip the round, /quit to stop)")
			continue
		default:
			err = o.SubmitAnswer(ctx, answer)
		}
		if err != nil {
			return err
		}
	}
}

// practiceCapability selects the interviewer backend: Gemini when an API
// key is available, the deterministic stand-in otherwise.
func practiceCapability(ctx context.Context) (agent.Capability, error) {
	if practiceOffline {
		return agent.NewStandin(), nil
	}
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "GEMINI_API_KEY not set; using the offline stand-in interviewer")
		return agent.NewStandin(), nil
	}
	g, err := agent.NewGemini(ctx, apiKey, "")
	if err != nil {
		return nil, fmt.Errorf("failed to create interview agent: %w", err)
	}
	return g, nil
}

// newConsoleSink renders session events to the terminal as they happen.
func newConsoleSink(out *os.File) session.EventSink {
	p := observability.NewPrinter(out)
	return func(ev types.Event) {
		switch payload := ev.Payload.(type) {
		case types.RoundStartPayload:
			p.PrintRoundStart(payload.RoundIndex, payload.TotalRounds, payload.RoundName)
		case types.QuestionPayload:
			p.PrintQuestion(payload.RoundName, payload.Question, false)
		case types.FollowUpPayload:
			p.PrintQuestion(string(payload.RoundKind), payload.Question, true)
		case types.EvaluationPayload:
			eval := payload.Evaluation
			p.PrintEvaluation(&eval)
		case types.CommitteeStartPayload:
			fmt.Fprintf(out, "\nThe committee is reviewing %d completed rounds...\n", payload.RoundsReviewed)
		case types.FinalEvaluationPayload:
			p.PrintFinalVerdict(&payload.Final, payload.WeightedScore)
		case types.SessionEndedPayload:
			fmt.Fprintf(out, "\nSession ended: %s\n", payload.Reason)
		}
	}
}

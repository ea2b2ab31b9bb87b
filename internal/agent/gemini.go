package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/jonathan/interview-simulator/internal/prompts"
	"github.com/jonathan/interview-simulator/internal/schemas"
	"github.com/jonathan/interview-simulator/internal/types"
)

const (
	promptFile   = "interview.json"
	defaultModel = "gemini-2.5-flash"

	// Temperatures per call: questions benefit from variety, scoring from
	// consistency.
	questionTemperature  = 0.8
	evaluateTemperature  = 0.2
	aggregateTemperature = 0.5
)

// Gemini implements Capability on the Google Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini-backed capability. Pass an empty model to use
// the default.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = defaultModel
	}
	return &Gemini{client: client, model: model}, nil
}

// Close releases resources held by the client.
func (g *Gemini) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// AskQuestion produces the opening question for a round.
func (g *Gemini) AskQuestion(ctx context.Context, role types.RoundKind, ic Context) (string, error) {
	prompt := persona(role, ic.Position) + "\n\n" + prompts.Format(
		prompts.MustGet(promptFile, "question_task"),
		map[string]string{
			"Position": ic.Position,
			"Hints":    formatHints(ic),
			"History":  formatHistory(ic),
		})

	text, err := g.generate(ctx, prompt, questionTemperature, false)
	if err != nil {
		return "", classify("ask_question", err)
	}
	question := strings.TrimSpace(text)
	if question == "" {
		return "", &TransientError{Op: "ask_question", Err: errors.New("empty question from model")}
	}
	return question, nil
}

// Evaluate scores a candidate answer. The reply is schema-checked and
// normalized before it is returned.
func (g *Gemini) Evaluate(ctx context.Context, role types.RoundKind, ic Context, question, answer string) (types.Evaluation, error) {
	prompt := persona(role, ic.Position) + "\n\n" + prompts.Format(
		prompts.MustGet(promptFile, "evaluation_task"),
		map[string]string{
			"Question": question,
			"Answer":   answer,
			"Hints":    formatHints(ic),
			"History":  formatHistory(ic),
		})

	text, err := g.generate(ctx, prompt, evaluateTemperature, true)
	if err != nil {
		return types.Evaluation{}, classify("evaluate", err)
	}

	raw := []byte(CleanJSONBlock(text))
	if err := schemas.Validate(schemas.Evaluation, raw); err != nil {
		return types.Evaluation{}, &TransientError{Op: "evaluate", Err: err}
	}

	var eval types.Evaluation
	if err := json.Unmarshal(raw, &eval); err != nil {
		return types.Evaluation{}, &TransientError{Op: "evaluate", Err: err}
	}
	normalizeEvaluation(&eval)
	return eval, nil
}

// Aggregate produces the committee verdict over the completed rounds.
func (g *Gemini) Aggregate(ctx context.Context, ic Context, records []types.RoundRecord) (types.FinalEvaluation, error) {
	prompt := persona(types.RoundCommittee, ic.Position) + "\n\n" + prompts.Format(
		prompts.MustGet(promptFile, "aggregate_task"),
		map[string]string{
			"Record":        formatRecords(records),
			"WeightedScore": "see record",
		})

	text, err := g.generate(ctx, prompt, aggregateTemperature, true)
	if err != nil {
		return types.FinalEvaluation{}, classify("aggregate", err)
	}

	raw := []byte(CleanJSONBlock(text))
	if err := schemas.Validate(schemas.FinalEvaluation, raw); err != nil {
		return types.FinalEvaluation{}, &TransientError{Op: "aggregate", Err: err}
	}

	var final types.FinalEvaluation
	if err := json.Unmarshal(raw, &final); err != nil {
		return types.FinalEvaluation{}, &TransientError{Op: "aggregate", Err: err}
	}
	final.FinalScore = clampScore(final.FinalScore)
	return final, nil
}

func (g *Gemini) generate(ctx context.Context, prompt string, temperature float32, jsonMode bool) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(temperature)
	if jsonMode {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	return extractText(resp)
}

// extractText extracts text from a Gemini API response.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", errors.New("no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", errors.New("no text parts in response")
	}
	return strings.Join(parts, ""), nil
}

// classify splits API failures into transient and fatal. Client-side
// request problems (bad key, malformed request) will not heal on retry;
// everything else is assumed to be network or service trouble.
func classify(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 400, 401, 403, 404:
			return &FatalError{Op: op, Err: err}
		}
	}
	return &TransientError{Op: op, Err: err}
}

func persona(role types.RoundKind, position string) string {
	key := map[types.RoundKind]string{
		types.RoundHR:            "persona_hr",
		types.RoundHiringManager: "persona_hiring_manager",
		types.RoundTechnical:     "persona_technical",
		types.RoundCultureFit:    "persona_culture_fit",
		types.RoundCommittee:     "persona_committee",
	}[role]
	return prompts.Format(prompts.MustGet(promptFile, key), map[string]string{"Position": position})
}

func normalizeEvaluation(eval *types.Evaluation) {
	eval.Score = clampScore(eval.Score)
	switch eval.Depth {
	case types.DepthShallow, types.DepthAdequate, types.DepthDeep:
	default:
		eval.Depth = ""
	}
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}

func formatHints(ic Context) string {
	if len(ic.ProfileHints) == 0 {
		return "first interview, no history"
	}
	return strings.Join(ic.ProfileHints, "; ")
}

func formatHistory(ic Context) string {
	if len(ic.PriorExchanges) == 0 {
		return "(none yet)"
	}
	var sb strings.Builder
	for _, qa := range ic.PriorExchanges {
		fmt.Fprintf(&sb, "[%s] Q: %s\n    A: %s\n", qa.Round, truncate(qa.Question, 200), truncate(qa.Answer, 300))
	}
	return sb.String()
}

func formatRecords(records []types.RoundRecord) string {
	var sb strings.Builder
	for _, r := range records {
		score := "unscored"
		if r.Score != nil {
			score = fmt.Sprintf("%.1f/10", *r.Score)
		}
		fmt.Fprintf(&sb, "## %s (%s) — %s\n", r.DisplayName, r.Kind, score)
		if r.Skipped {
			sb.WriteString("Candidate skipped this round.\n")
		}
		for _, ex := range r.Exchanges {
			fmt.Fprintf(&sb, "Q: %s\nA: %s\n", ex.Question, ex.Answer)
		}
		if r.Feedback != "" {
			fmt.Fprintf(&sb, "Feedback: %s\n", r.Feedback)
		}
		if len(r.StrengthTags) > 0 {
			fmt.Fprintf(&sb, "Strengths: %s\n", strings.Join(r.StrengthTags, ", "))
		}
		if len(r.WeaknessTags) > 0 {
			fmt.Fprintf(&sb, "Weaknesses: %s\n", strings.Join(r.WeaknessTags, ", "))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Package round implements the state machine that drives a single
// interview round: question, answer, evaluation, optional follow-ups, and
// completion. The committee variant aggregates instead of asking.
package round

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/interview-simulator/internal/agent"
	"github.com/jonathan/interview-simulator/internal/followup"
	"github.com/jonathan/interview-simulator/internal/scoring"
	"github.com/jonathan/interview-simulator/internal/types"
)

// State is the round's position in its lifecycle.
type State string

const (
	StateAwaitingQuestion State = "awaiting_question"
	StateAwaitingAnswer   State = "awaiting_answer"
	StateEvaluating       State = "evaluating"
	StateFollowUpPending  State = "follow_up_pending"
	StateCompleted        State = "completed"
)

// ErrInvalidState rejects a command issued in a state that forbids it.
// The round is left unchanged.
var ErrInvalidState = errors.New("command not valid in current round state")

// EmitFunc receives one event per externally observable transition, in
// transition order, before the transition's operation returns.
type EmitFunc func(eventType types.EventType, payload any)

// Options configures a round machine.
type Options struct {
	Capability agent.Capability
	Fallback   agent.Capability // deterministic stand-in for degraded mode
	Policy     followup.Policy
	// FollowUpEnabled gates the policy entirely for this round.
	FollowUpEnabled bool
	// Timeout bounds each capability call; zero means no deadline.
	Timeout time.Duration
	// RetryDelay is the backoff before the single retry of a transient
	// failure.
	RetryDelay time.Duration
	Emit       EmitFunc
}

// Machine drives one round. It is not safe for concurrent use; the session
// orchestrator serializes commands before they reach it.
type Machine struct {
	record *types.RoundRecord
	state  State
	opts   Options

	// committeeInput holds the completed rounds for the committee variant;
	// finalEval holds its verdict once produced.
	committeeInput []types.RoundRecord
	finalEval      *types.FinalEvaluation
}

// New creates a machine for an interviewer round. The machine mutates the
// given record in place; the caller retains ownership.
func New(record *types.RoundRecord, opts Options) *Machine {
	if opts.Emit == nil {
		opts.Emit = func(types.EventType, any) {}
	}
	return &Machine{record: record, state: StateAwaitingQuestion, opts: opts}
}

// NewCommittee creates a machine for the committee round, which aggregates
// the given completed rounds instead of asking a question.
func NewCommittee(record *types.RoundRecord, completed []types.RoundRecord, opts Options) *Machine {
	m := New(record, opts)
	m.committeeInput = completed
	return m
}

// State returns the machine's current state.
func (m *Machine) State() State { return m.state }

// Record returns the round record the machine mutates.
func (m *Machine) Record() *types.RoundRecord { return m.record }

// Completed reports whether the round reached its terminal state.
func (m *Machine) Completed() bool { return m.state == StateCompleted }

// FinalEvaluation returns the committee verdict, or nil for interviewer
// rounds and committee rounds that have not completed.
func (m *Machine) FinalEvaluation() *types.FinalEvaluation { return m.finalEval }

// Enter starts the round. For interviewer rounds it requests the opening
// question and emits a question event; for the committee round it runs the
// aggregation to completion and emits a final_evaluation event.
func (m *Machine) Enter(ctx context.Context, ic agent.Context) error {
	if m.state != StateAwaitingQuestion {
		return fmt.Errorf("%w: enter in %s", ErrInvalidState, m.state)
	}
	if m.record.Kind == types.RoundCommittee {
		return m.enterCommittee(ctx, ic)
	}

	question, degraded, err := m.askWithRecovery(ctx, ic)
	if err != nil {
		return err
	}

	m.record.Exchanges = append(m.record.Exchanges, types.Exchange{Question: question})
	if degraded {
		m.record.Degraded = true
	}
	m.state = StateAwaitingAnswer
	m.opts.Emit(types.EventQuestion, types.QuestionPayload{
		RoundKind: m.record.Kind,
		RoundName: m.record.DisplayName,
		Question:  question,
		Degraded:  degraded,
	})
	return nil
}

// SubmitAnswer records the candidate's answer and evaluates it. It returns
// true when the round completed, false when a follow-up is now awaiting its
// answer.
func (m *Machine) SubmitAnswer(ctx context.Context, ic agent.Context, answer string) (bool, error) {
	if m.state != StateAwaitingAnswer {
		return false, fmt.Errorf("%w: submit_answer in %s", ErrInvalidState, m.state)
	}
	ex := m.record.CurrentExchange()
	if ex == nil {
		return false, fmt.Errorf("%w: no exchange awaiting an answer", ErrInvalidState)
	}

	ex.Answer = answer
	ex.Answered = true
	m.state = StateEvaluating
	m.opts.Emit(types.EventEvaluating, types.EvaluatingPayload{RoundKind: m.record.Kind})

	eval, degraded, err := m.evaluateWithRecovery(ctx, ic, ex.Question, answer)
	if err != nil {
		// Return the exchange to the candidate so they can resubmit or
		// end the session; the failed answer is discarded.
		ex.Answer = ""
		ex.Answered = false
		m.state = StateAwaitingAnswer
		return false, err
	}
	if degraded {
		eval.Degraded = true
		m.record.Degraded = true
	}

	if m.opts.FollowUpEnabled && !degraded {
		if d := m.opts.Policy.Decide(answer, eval, m.record.FollowUpCount()); d.Ask {
			m.askFollowUp(eval, d)
			return false, nil
		}
	}

	m.finalize(eval)
	return true, nil
}

// Skip force-completes the round with the minimum score and no capability
// call, so a non-answer never costs an evaluation call and the round still
// contributes a defined score. A round whose opening call failed can be
// skipped from awaiting_question; the committee round cannot be skipped.
func (m *Machine) Skip() error {
	if m.record.Kind == types.RoundCommittee {
		return fmt.Errorf("%w: skip in committee round", ErrInvalidState)
	}
	if m.state != StateAwaitingAnswer && m.state != StateAwaitingQuestion {
		return fmt.Errorf("%w: skip in %s", ErrInvalidState, m.state)
	}
	m.record.Skipped = true
	m.finalize(types.Evaluation{Score: 0, Feedback: "skipped"})
	return nil
}

// askFollowUp appends the follow-up exchange and returns the round to
// awaiting-answer. The pre-follow-up evaluation is kept only as the source
// of the probe; the final exchange's evaluation scores the round.
func (m *Machine) askFollowUp(eval types.Evaluation, d followup.Decision) {
	question := eval.FollowUpQuestion
	if question == "" {
		question = fmt.Sprintf("Could you expand on that? In particular: %s.", d.Reason)
	}

	m.record.Exchanges = append(m.record.Exchanges, types.Exchange{
		Question:       question,
		IsFollowUp:     true,
		FollowUpReason: d.Reason,
	})
	// FollowUpPending is transient: the round immediately awaits the
	// follow-up answer.
	m.state = StateAwaitingAnswer
	m.opts.Emit(types.EventFollowUp, types.FollowUpPayload{
		RoundKind:    m.record.Kind,
		Question:     question,
		Reason:       d.Reason,
		FollowUpNum:  m.record.FollowUpCount(),
		MaxFollowUps: m.opts.Policy.MaxFollowUps,
		Degraded:     eval.Degraded,
	})
}

func (m *Machine) finalize(eval types.Evaluation) {
	score := eval.Score
	m.record.Score = &score
	m.record.Feedback = eval.Feedback
	m.record.StrengthTags = eval.StrengthTags
	m.record.WeaknessTags = eval.WeaknessTags
	m.record.ImprovementHint = eval.ImprovementHint
	m.state = StateCompleted
	m.opts.Emit(types.EventEvaluation, types.EvaluationPayload{
		RoundKind:  m.record.Kind,
		Evaluation: eval,
		ScoreLevel: scoring.LevelFor(eval.Score).Name,
	})
}

func (m *Machine) enterCommittee(ctx context.Context, ic agent.Context) error {
	m.state = StateEvaluating

	final, degraded, err := m.aggregateWithRecovery(ctx, ic)
	if err != nil {
		m.state = StateAwaitingQuestion
		return err
	}
	if degraded {
		final.Degraded = true
		m.record.Degraded = true
	}

	score := final.FinalScore
	m.record.Score = &score
	m.record.Feedback = final.OverallFeedback
	m.record.StrengthTags = final.KeyStrengths
	m.record.WeaknessTags = final.KeyWeaknesses
	m.state = StateCompleted

	scores := make(map[types.RoundKind]float64)
	for _, r := range m.committeeInput {
		if r.Score != nil {
			scores[r.Kind] = *r.Score
		}
	}
	scores[types.RoundCommittee] = final.FinalScore

	m.opts.Emit(types.EventFinalEvaluation, types.FinalEvaluationPayload{
		Final:         final,
		WeightedScore: scoring.WeightedScore(scores),
		ScoreLevel:    scoring.LevelFor(final.FinalScore).Name,
	})
	m.finalEval = &final
	return nil
}

// Package session drives one interview session from start to verdict: it
// owns the round sequence, serializes commands, emits the event stream, and
// finalizes the session record.
package session

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/interview-simulator/internal/agent"
	"github.com/jonathan/interview-simulator/internal/config"
	"github.com/jonathan/interview-simulator/internal/followup"
	"github.com/jonathan/interview-simulator/internal/round"
	"github.com/jonathan/interview-simulator/internal/scoring"
	"github.com/jonathan/interview-simulator/internal/types"
)

// Store persists finished sessions. A nil store disables persistence.
type Store interface {
	SaveSession(ctx context.Context, s *types.Session) error
}

// EventSink receives every session event, in emission order. The sink is
// called synchronously from the command that caused the transition and must
// not block.
type EventSink func(types.Event)

// Options configures an orchestrator.
type Options struct {
	UserID   string
	Position string
	Mode     types.Mode
	// PracticeRound selects the single round in practice mode; ignored in
	// full mode.
	PracticeRound types.RoundKind

	Rounds     *config.Rounds
	Capability agent.Capability
	Fallback   agent.Capability
	Policy     followup.Policy
	// Timeout and RetryDelay bound individual agent calls; see the round
	// package.
	Timeout    time.Duration
	RetryDelay time.Duration
	// ExcludeSkipped drops skipped rounds from the weighted reference
	// score instead of counting them as zero.
	ExcludeSkipped bool
	ProfileHints   []string

	Store Store
	Sink  EventSink
}

// Orchestrator runs a single session. All commands are serialized: a
// command that arrives while another is executing fails fast with
// ErrInProgress rather than queueing. EndEarly is the one exception — it
// takes effect immediately, even while a command is blocked on an agent
// call.
type Orchestrator struct {
	opts Options
	plan []types.RoundKind

	// cmdMu serializes Start/SubmitAnswer/Skip. mu guards the session
	// record for snapshot reads; commands take it only for the brief
	// moments they publish state, never across agent calls.
	cmdMu sync.Mutex
	mu    sync.Mutex

	session *types.Session
	idx     int
	current *round.Machine
	// rec is the working copy the current round machine mutates; it is
	// published into session.Rounds after each command returns.
	rec *types.RoundRecord

	started bool
	ended   atomic.Bool
	runCtx  context.Context
	cancel  context.CancelFunc
}

// New creates an orchestrator for one session. The session is not started
// and emits no events until Start is called.
func New(opts Options) *Orchestrator {
	if opts.Rounds == nil {
		opts.Rounds = config.DefaultRounds()
	}
	if opts.Position == "" {
		opts.Position = opts.Rounds.Position
	}
	if opts.Fallback == nil {
		opts.Fallback = agent.NewStandin()
	}
	if opts.Sink == nil {
		opts.Sink = func(types.Event) {}
	}

	var plan []types.RoundKind
	if opts.Mode == types.ModePractice {
		plan = []types.RoundKind{opts.PracticeRound}
	} else {
		plan = types.FullSequence()
	}

	runCtx, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		opts:   opts,
		plan:   plan,
		runCtx: runCtx,
		cancel: cancel,
		session: &types.Session{
			ID:        uuid.New().String(),
			UserID:    opts.UserID,
			Position:  opts.Position,
			Mode:      opts.Mode,
			Status:    types.SessionActive,
			StartedAt: time.Now().UTC(),
		},
	}
	return o
}

// ID returns the session identifier.
func (o *Orchestrator) ID() string { return o.session.ID }

// Snapshot returns a copy of the session record as of the last completed
// transition. It never blocks on an in-flight agent call.
func (o *Orchestrator) Snapshot() types.Session {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := *o.session
	s.Rounds = make([]types.RoundRecord, len(o.session.Rounds))
	copy(s.Rounds, o.session.Rounds)
	return s
}

// Start begins the session: it emits session_started and enters the first
// round, which asks its opening question.
func (o *Orchestrator) Start(ctx context.Context) error {
	if !o.cmdMu.TryLock() {
		return ErrInProgress
	}
	defer o.cmdMu.Unlock()

	if err := o.commandable(); err != nil {
		return err
	}
	if o.started {
		if o.stuckOnEntry() {
			// The current round's opening call failed; a re-issued
			// start retries it instead of being rejected.
			return o.enter(ctx)
		}
		return ErrAlreadyStarted
	}
	o.started = true

	o.emit(types.EventSessionStarted, types.SessionStartedPayload{
		UserID:      o.opts.UserID,
		Position:    o.session.Position,
		Mode:        o.session.Mode,
		TotalRounds: len(o.plan),
	})
	return o.enterRound(ctx)
}

// SubmitAnswer records the candidate's answer for the current question and
// runs evaluation. Depending on the follow-up policy the session either
// asks a follow-up or completes the round and advances.
func (o *Orchestrator) SubmitAnswer(ctx context.Context, answer string) error {
	if !o.cmdMu.TryLock() {
		return ErrInProgress
	}
	defer o.cmdMu.Unlock()

	if err := o.commandable(); err != nil {
		return err
	}
	if !o.started || o.current == nil {
		return ErrNotStarted
	}

	if o.stuckOnEntry() {
		// Recover the round's failed opening call before taking the
		// answer. A recovered committee runs straight to its verdict,
		// leaving no question for this answer to apply to.
		if err := o.enter(ctx); err != nil {
			return err
		}
		if o.current.Completed() {
			return nil
		}
	}

	callCtx, release := o.callCtx(ctx)
	done, err := o.current.SubmitAnswer(callCtx, o.agentContext(), answer)
	release()
	if o.ended.Load() {
		// The session was ended while the evaluation was in flight; the
		// result is discarded and the already-published ended state
		// stands.
		return ErrEnded
	}
	if err != nil {
		o.publishRound()
		if agent.IsFatal(err) {
			o.emit(types.EventError, types.ErrorPayload{Message: err.Error()})
		}
		return err
	}

	o.publishRound()
	if done {
		return o.advance(ctx)
	}
	return nil
}

// Skip abandons the current round: it is finalized immediately with a zero
// score and no agent involvement, and the session advances.
func (o *Orchestrator) Skip(ctx context.Context) error {
	if !o.cmdMu.TryLock() {
		return ErrInProgress
	}
	defer o.cmdMu.Unlock()

	if err := o.commandable(); err != nil {
		return err
	}
	if !o.started || o.current == nil {
		return ErrNotStarted
	}

	if err := o.current.Skip(); err != nil {
		return err
	}
	o.publishRound()
	return o.advance(ctx)
}

// EndEarly terminates the session immediately. It is idempotent, never
// blocks behind a running command, and cancels any in-flight agent call;
// the call's eventual result is discarded. A completed session cannot be
// ended.
func (o *Orchestrator) EndEarly(reason string) error {
	o.mu.Lock()
	if o.session.Status == types.SessionCompleted {
		o.mu.Unlock()
		return ErrCompleted
	}
	if o.ended.Swap(true) {
		o.mu.Unlock()
		return nil
	}

	now := time.Now().UTC()
	o.session.Status = types.SessionEndedEarly
	o.session.EndedAt = &now
	snapshot := *o.session
	o.mu.Unlock()

	o.cancel()
	// Bypass emit: the ended flag is already set and emit suppresses
	// everything after it.
	o.opts.Sink(types.Event{
		Type:      types.EventSessionEnded,
		SessionID: o.session.ID,
		Payload:   types.SessionEndedPayload{Reason: reason},
	})
	o.persist(&snapshot)
	return nil
}

// stuckOnEntry reports whether the current round never got past its
// opening capability call.
func (o *Orchestrator) stuckOnEntry() bool {
	return o.current != nil && o.current.State() == round.StateAwaitingQuestion
}

// commandable rejects commands against terminated sessions.
func (o *Orchestrator) commandable() error {
	if o.ended.Load() {
		return ErrEnded
	}
	o.mu.Lock()
	status := o.session.Status
	o.mu.Unlock()
	if status == types.SessionCompleted {
		return ErrCompleted
	}
	return nil
}

// enterRound creates and enters the machine for o.idx. Committee rounds run
// to completion inside Enter, which finalizes the session.
func (o *Orchestrator) enterRound(ctx context.Context) error {
	kind := o.plan[o.idx]
	rec := &types.RoundRecord{
		Kind:        kind,
		DisplayName: o.opts.Rounds.DisplayName(kind),
	}
	o.rec = rec

	o.mu.Lock()
	o.session.Rounds = append(o.session.Rounds, *rec)
	o.mu.Unlock()

	opts := round.Options{
		Capability:      o.opts.Capability,
		Fallback:        o.opts.Fallback,
		Policy:          o.opts.Policy,
		FollowUpEnabled: o.opts.Rounds.FollowUpEnabled(kind),
		Timeout:         o.opts.Timeout,
		RetryDelay:      o.opts.RetryDelay,
		Emit:            o.emit,
	}

	if kind == types.RoundCommittee {
		snapshot := o.Snapshot()
		completed := snapshot.CompletedInterviewerRounds()
		o.emit(types.EventCommitteeStart, types.CommitteeStartPayload{
			RoundsReviewed: len(completed),
		})
		o.current = round.NewCommittee(rec, completed, opts)
	} else {
		o.emit(types.EventRoundStart, types.RoundStartPayload{
			RoundKind:   kind,
			RoundIndex:  o.idx,
			TotalRounds: len(o.plan),
			RoundName:   rec.DisplayName,
			Weight:      scoring.Weight(kind),
		})
		o.current = round.New(rec, opts)
	}

	return o.enter(ctx)
}

// enter runs the current machine's opening call. When it fails the machine
// stays in its initial state and the next Start, SubmitAnswer, or Skip will
// try again, so a fatal failure here never strands the session.
func (o *Orchestrator) enter(ctx context.Context) error {
	callCtx, release := o.callCtx(ctx)
	err := o.current.Enter(callCtx, o.agentContext())
	release()
	if o.ended.Load() {
		return ErrEnded
	}
	o.publishRound()
	if err != nil {
		if agent.IsFatal(err) {
			o.emit(types.EventError, types.ErrorPayload{Message: err.Error()})
		}
		return err
	}
	if o.current.Completed() {
		return o.advance(ctx)
	}
	return nil
}

// advance moves past a completed round: into the next round, or into
// session finalization when the plan is exhausted.
func (o *Orchestrator) advance(ctx context.Context) error {
	if o.idx+1 < len(o.plan) {
		o.idx++
		return o.enterRound(ctx)
	}
	o.finalize()
	return nil
}

// finalize marks the session completed and fixes the verdict. In full mode
// the committee's verdict is authoritative and the weighted score is
// attached as a reference; in practice mode the single round's score
// stands in for both.
func (o *Orchestrator) finalize() {
	o.mu.Lock()
	// EndEarly can land between a command's ended check and this lock;
	// the ended state must stand, never be overwritten with completed.
	if o.ended.Load() || o.session.Status != types.SessionActive {
		o.mu.Unlock()
		return
	}

	now := time.Now().UTC()
	o.session.Status = types.SessionCompleted
	o.session.EndedAt = &now

	if final := o.current.FinalEvaluation(); final != nil {
		o.session.FinalScore = &final.FinalScore
		o.session.FinalDecision = final.Decision
		o.session.OverallFeedback = final.OverallFeedback
		o.session.DimensionScores = final.DimensionScores
	} else if o.rec != nil && o.rec.Score != nil {
		score := *o.rec.Score
		o.session.FinalScore = &score
		o.session.FinalDecision = scoring.DecisionFor(score)
		o.session.OverallFeedback = o.rec.Feedback
	}

	weighted := scoring.SessionScore(o.session, o.opts.ExcludeSkipped)
	o.session.WeightedScore = &weighted

	snapshot := *o.session
	o.mu.Unlock()

	o.emit(types.EventSessionComplete, types.SessionCompletePayload{
		SessionID:  o.session.ID,
		FinalScore: snapshot.FinalScore,
		Decision:   snapshot.FinalDecision,
	})
	o.persist(&snapshot)
}

// publishRound copies the working round record into the session under mu so
// snapshots observe it.
func (o *Orchestrator) publishRound() {
	if o.rec == nil {
		return
	}
	o.mu.Lock()
	o.session.Rounds[o.idx] = *o.rec
	o.mu.Unlock()
}

// emit forwards one event to the sink with the session ID attached. Events
// are suppressed once the session has been ended early.
func (o *Orchestrator) emit(eventType types.EventType, payload any) {
	if o.ended.Load() {
		return
	}
	o.opts.Sink(types.Event{
		Type:      eventType,
		SessionID: o.session.ID,
		Payload:   payload,
	})
}

// callCtx derives the context for agent calls so EndEarly cancels them even
// when the caller's context stays live. The returned cancel must be called
// when the command finishes.
func (o *Orchestrator) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	merged, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(o.runCtx, cancel)
	return merged, func() {
		stop()
		cancel()
	}
}

// agentContext assembles the conversational context passed to the agent:
// the position, any profile hints, and every answered exchange so far.
func (o *Orchestrator) agentContext() agent.Context {
	snapshot := o.Snapshot()

	var history []agent.QA
	for _, r := range snapshot.Rounds {
		for _, ex := range r.Exchanges {
			if ex.Answered {
				history = append(history, agent.QA{
					Round:    r.Kind,
					Question: ex.Question,
					Answer:   ex.Answer,
				})
			}
		}
	}
	return agent.Context{
		Position:       snapshot.Position,
		ProfileHints:   o.opts.ProfileHints,
		PriorExchanges: history,
	}
}

func (o *Orchestrator) persist(s *types.Session) {
	if o.opts.Store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := o.opts.Store.SaveSession(ctx, s); err != nil {
		log.Printf("session %s: failed to persist: %v", s.ID, err)
	}
}

package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-simulator/internal/agent"
	"github.com/jonathan/interview-simulator/internal/followup"
	"github.com/jonathan/interview-simulator/internal/scoring"
	"github.com/jonathan/interview-simulator/internal/types"
)

type memStore struct {
	mu    sync.Mutex
	saved []types.Session
}

func (s *memStore) SaveSession(_ context.Context, sess *types.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, *sess)
	return nil
}

type sink struct {
	mu     sync.Mutex
	events []types.Event
}

func (s *sink) record(e types.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *sink) kinds() []types.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.EventType, len(s.events))
	for i, e := range s.events {
		out[i] = e.Type
	}
	return out
}

func newFullOrchestrator(mock *agent.Mock, store Store, s *sink) *Orchestrator {
	return New(Options{
		UserID:     "u-1",
		Mode:       types.ModeFull,
		Capability: mock,
		Policy:     followup.DefaultPolicy(),
		Store:      store,
		Sink:       s.record,
	})
}

func runToCompletion(t *testing.T, o *Orchestrator) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, o.Start(ctx))
	for i := 0; i < len(types.InterviewerKinds()); i++ {
		require.NoError(t, o.SubmitAnswer(ctx, "a considered answer"))
	}
}

func TestFullSessionEventSequence(t *testing.T) {
	mock := agent.NewMock()
	store := &memStore{}
	events := &sink{}
	o := newFullOrchestrator(mock, store, events)

	runToCompletion(t, o)

	want := []types.EventType{types.EventSessionStarted}
	for range types.InterviewerKinds() {
		want = append(want,
			types.EventRoundStart,
			types.EventQuestion,
			types.EventEvaluating,
			types.EventEvaluation,
		)
	}
	want = append(want,
		types.EventCommitteeStart,
		types.EventFinalEvaluation,
		types.EventSessionComplete,
	)
	assert.Equal(t, want, events.kinds())

	for _, e := range events.events {
		assert.Equal(t, o.ID(), e.SessionID)
	}

	snap := o.Snapshot()
	assert.Equal(t, types.SessionCompleted, snap.Status)
	require.NotNil(t, snap.FinalScore)
	assert.Equal(t, 7.0, *snap.FinalScore)
	assert.Equal(t, "Hire", snap.FinalDecision)
	require.NotNil(t, snap.WeightedScore)
	require.NotNil(t, snap.EndedAt)
	assert.Len(t, snap.Rounds, 5)

	require.Len(t, store.saved, 1)
	assert.Equal(t, types.SessionCompleted, store.saved[0].Status)
}

func TestRoundsRunInFixedOrder(t *testing.T) {
	mock := agent.NewMock()
	var asked []types.RoundKind
	mock.QuestionFn = func(role types.RoundKind, _ agent.Context) (string, error) {
		asked = append(asked, role)
		return "Question?", nil
	}
	o := newFullOrchestrator(mock, nil, &sink{})

	runToCompletion(t, o)
	assert.Equal(t, types.InterviewerKinds(), asked)
}

func TestAnswerHistoryChainsAcrossRounds(t *testing.T) {
	mock := agent.NewMock()
	var historyLens []int
	mock.QuestionFn = func(_ types.RoundKind, ic agent.Context) (string, error) {
		historyLens = append(historyLens, len(ic.PriorExchanges))
		return "Question?", nil
	}
	o := newFullOrchestrator(mock, nil, &sink{})

	runToCompletion(t, o)
	assert.Equal(t, []int{0, 1, 2, 3}, historyLens, "each round sees all prior answered exchanges")
}

func TestPracticeModeSingleRound(t *testing.T) {
	mock := agent.NewMock()
	mock.Evaluation = types.Evaluation{Score: 8.2, Feedback: "Solid.", Depth: types.DepthAdequate}
	events := &sink{}
	o := New(Options{
		UserID:        "u-1",
		Mode:          types.ModePractice,
		PracticeRound: types.RoundTechnical,
		Capability:    mock,
		Policy:        followup.DefaultPolicy(),
		Sink:          events.record,
	})
	ctx := context.Background()

	require.NoError(t, o.Start(ctx))
	require.NoError(t, o.SubmitAnswer(ctx, "an answer"))

	snap := o.Snapshot()
	assert.Equal(t, types.SessionCompleted, snap.Status)
	assert.Len(t, snap.Rounds, 1)
	require.NotNil(t, snap.FinalScore)
	assert.Equal(t, 8.2, *snap.FinalScore)
	assert.Equal(t, "Hire", snap.FinalDecision)
	assert.Zero(t, mock.AggregateCalls, "practice mode has no committee")
	assert.NotContains(t, events.kinds(), types.EventCommitteeStart)
}

func TestSkipAdvancesWithZeroScore(t *testing.T) {
	mock := agent.NewMock()
	o := newFullOrchestrator(mock, nil, &sink{})
	ctx := context.Background()

	require.NoError(t, o.Start(ctx))
	require.NoError(t, o.Skip(ctx))

	snap := o.Snapshot()
	require.GreaterOrEqual(t, len(snap.Rounds), 2, "skip must advance to the next round")
	first := snap.Rounds[0]
	assert.True(t, first.Skipped)
	require.NotNil(t, first.Score)
	assert.Equal(t, 0.0, *first.Score)

	for i := 0; i < len(types.InterviewerKinds())-1; i++ {
		require.NoError(t, o.SubmitAnswer(ctx, "answer"))
	}
	snap = o.Snapshot()
	assert.Equal(t, types.SessionCompleted, snap.Status)
	require.NotNil(t, snap.WeightedScore)
	assert.Less(t, *snap.WeightedScore, 7.0, "the zero-scored skip drags the weighted reference down")
}

func TestEndEarlyIsIdempotent(t *testing.T) {
	mock := agent.NewMock()
	store := &memStore{}
	events := &sink{}
	o := newFullOrchestrator(mock, store, events)
	require.NoError(t, o.Start(context.Background()))

	require.NoError(t, o.EndEarly("changed my mind"))
	require.NoError(t, o.EndEarly("again"))

	endedEvents := 0
	for _, k := range events.kinds() {
		if k == types.EventSessionEnded {
			endedEvents++
		}
	}
	assert.Equal(t, 1, endedEvents, "session_ended fires exactly once")

	snap := o.Snapshot()
	assert.Equal(t, types.SessionEndedEarly, snap.Status)
	require.NotNil(t, snap.EndedAt)
	assert.Nil(t, snap.FinalScore, "ended sessions carry no verdict")
	require.Len(t, store.saved, 1)

	assert.ErrorIs(t, o.SubmitAnswer(context.Background(), "late"), ErrEnded)
	assert.ErrorIs(t, o.Skip(context.Background()), ErrEnded)
}

func TestEndEarlyAfterCompletionRejected(t *testing.T) {
	mock := agent.NewMock()
	o := newFullOrchestrator(mock, nil, &sink{})
	runToCompletion(t, o)

	assert.ErrorIs(t, o.EndEarly("too late"), ErrCompleted)
	assert.ErrorIs(t, o.SubmitAnswer(context.Background(), "x"), ErrCompleted)
}

func TestConcurrentCommandFailsFast(t *testing.T) {
	evaluating := make(chan struct{})
	release := make(chan struct{})
	mock := agent.NewMock()
	mock.EvaluateFn = func(types.RoundKind, agent.Context, string, string) (types.Evaluation, error) {
		close(evaluating)
		<-release
		return types.Evaluation{Score: 6, Feedback: "ok", Depth: types.DepthAdequate}, nil
	}
	events := &sink{}
	o := newFullOrchestrator(mock, nil, events)
	require.NoError(t, o.Start(context.Background()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- o.SubmitAnswer(context.Background(), "slow answer")
	}()
	<-evaluating

	assert.ErrorIs(t, o.SubmitAnswer(context.Background(), "second"), ErrInProgress)
	assert.ErrorIs(t, o.Skip(context.Background()), ErrInProgress)

	// Snapshot must not block behind the running command.
	snap := o.Snapshot()
	assert.Equal(t, types.SessionActive, snap.Status)

	close(release)
	require.NoError(t, <-errCh)
}

func TestEndEarlyDiscardsInFlightResult(t *testing.T) {
	evaluating := make(chan struct{})
	release := make(chan struct{})
	mock := agent.NewMock()
	mock.EvaluateFn = func(types.RoundKind, agent.Context, string, string) (types.Evaluation, error) {
		close(evaluating)
		<-release
		return types.Evaluation{Score: 9, Feedback: "great", Depth: types.DepthDeep}, nil
	}
	events := &sink{}
	o := newFullOrchestrator(mock, nil, events)
	require.NoError(t, o.Start(context.Background()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- o.SubmitAnswer(context.Background(), "answer")
	}()
	<-evaluating

	require.NoError(t, o.EndEarly("user left"))
	close(release)
	assert.ErrorIs(t, <-errCh, ErrEnded)

	snap := o.Snapshot()
	assert.Equal(t, types.SessionEndedEarly, snap.Status)
	assert.Nil(t, snap.Rounds[0].Score, "in-flight evaluation is discarded")

	last := events.kinds()[len(events.kinds())-1]
	assert.Equal(t, types.EventSessionEnded, last, "no events after session_ended")
}

func TestDegradedAgentStillCompletesSession(t *testing.T) {
	mock := agent.NewMock()
	fail := errors.New("backend unavailable")
	mock.QuestionFn = func(types.RoundKind, agent.Context) (string, error) {
		return "", &agent.TransientError{Op: "ask_question", Err: fail}
	}
	mock.EvaluateFn = func(types.RoundKind, agent.Context, string, string) (types.Evaluation, error) {
		return types.Evaluation{}, &agent.TransientError{Op: "evaluate", Err: fail}
	}
	mock.AggregateFn = func(agent.Context, []types.RoundRecord) (types.FinalEvaluation, error) {
		return types.FinalEvaluation{}, &agent.TransientError{Op: "aggregate", Err: fail}
	}
	o := newFullOrchestrator(mock, nil, &sink{})

	runToCompletion(t, o)

	snap := o.Snapshot()
	assert.Equal(t, types.SessionCompleted, snap.Status)
	require.NotNil(t, snap.FinalScore)
	for _, r := range snap.Rounds {
		assert.True(t, r.Degraded, "round %s should be flagged degraded", r.Kind)
	}
}

func TestStartTwiceRejected(t *testing.T) {
	mock := agent.NewMock()
	o := newFullOrchestrator(mock, nil, &sink{})
	require.NoError(t, o.Start(context.Background()))
	assert.ErrorIs(t, o.Start(context.Background()), ErrAlreadyStarted)
}

func TestSubmitBeforeStartRejected(t *testing.T) {
	mock := agent.NewMock()
	o := newFullOrchestrator(mock, nil, &sink{})
	assert.ErrorIs(t, o.SubmitAnswer(context.Background(), "eager"), ErrNotStarted)
}

func TestFatalEvaluationEmitsErrorAndStaysActive(t *testing.T) {
	mock := agent.NewMock()
	fail := true
	mock.EvaluateFn = func(role types.RoundKind, ic agent.Context, question, answer string) (types.Evaluation, error) {
		if fail {
			return types.Evaluation{}, &agent.FatalError{Op: "evaluate", Err: errors.New("api key rejected")}
		}
		return types.Evaluation{Score: 7, Feedback: "fine", Depth: types.DepthAdequate}, nil
	}
	events := &sink{}
	o := newFullOrchestrator(mock, nil, events)

	ctx := context.Background()
	require.NoError(t, o.Start(ctx))

	err := o.SubmitAnswer(ctx, "an answer")
	require.Error(t, err)
	assert.True(t, agent.IsFatal(err))

	kinds := events.kinds()
	assert.Equal(t, types.EventError, kinds[len(kinds)-1])

	// The session survives the failure and accepts a resubmission.
	snap := o.Snapshot()
	assert.Equal(t, types.SessionActive, snap.Status)

	fail = false
	require.NoError(t, o.SubmitAnswer(ctx, "a second try"))
	snap = o.Snapshot()
	require.NotNil(t, snap.Rounds[0].Score)
	assert.Equal(t, 7.0, *snap.Rounds[0].Score)
}

func TestFatalOpeningCallIsRecoverable(t *testing.T) {
	mock := agent.NewMock()
	fail := true
	mock.QuestionFn = func(types.RoundKind, agent.Context) (string, error) {
		if fail {
			return "", &agent.FatalError{Op: "ask_question", Err: errors.New("api key rejected")}
		}
		return "Tell me about yourself.", nil
	}
	events := &sink{}
	o := newFullOrchestrator(mock, nil, events)
	ctx := context.Background()

	err := o.Start(ctx)
	require.Error(t, err)
	assert.True(t, agent.IsFatal(err))

	snap := o.Snapshot()
	assert.Equal(t, types.SessionActive, snap.Status, "a fatal opening call must not end the session")
	kinds := events.kinds()
	assert.Equal(t, types.EventError, kinds[len(kinds)-1])

	// A re-issued start retries the opening call instead of rejecting
	// with already-started.
	fail = false
	require.NoError(t, o.Start(ctx))
	snap = o.Snapshot()
	require.Len(t, snap.Rounds, 1)
	require.NotEmpty(t, snap.Rounds[0].Exchanges)

	require.NoError(t, o.SubmitAnswer(ctx, "I lead the data platform team."))
	snap = o.Snapshot()
	require.NotNil(t, snap.Rounds[0].Score)
}

func TestAnswerCommandRecoversStuckRound(t *testing.T) {
	mock := agent.NewMock()
	fail := true
	mock.QuestionFn = func(types.RoundKind, agent.Context) (string, error) {
		if fail {
			return "", &agent.FatalError{Op: "ask_question", Err: errors.New("api key rejected")}
		}
		return "Tell me about yourself.", nil
	}
	o := newFullOrchestrator(mock, nil, &sink{})
	ctx := context.Background()

	require.Error(t, o.Start(ctx))

	// The answer command first recovers the failed opening call, then
	// applies the answer to the fresh question.
	fail = false
	require.NoError(t, o.SubmitAnswer(ctx, "I lead the data platform team."))
	snap := o.Snapshot()
	require.NotNil(t, snap.Rounds[0].Score)
}

func TestSkipAbandonsStuckRound(t *testing.T) {
	mock := agent.NewMock()
	calls := 0
	mock.QuestionFn = func(types.RoundKind, agent.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", &agent.FatalError{Op: "ask_question", Err: errors.New("api key rejected")}
		}
		return "Tell me about yourself.", nil
	}
	o := newFullOrchestrator(mock, nil, &sink{})
	ctx := context.Background()

	require.Error(t, o.Start(ctx))
	require.NoError(t, o.Skip(ctx))

	snap := o.Snapshot()
	require.NotNil(t, snap.Rounds[0].Score)
	assert.Equal(t, 0.0, *snap.Rounds[0].Score)
	assert.True(t, snap.Rounds[0].Skipped)
	require.Len(t, snap.Rounds, 2, "the session advances past the skipped round")
}

func TestStuckCommitteeRecoversOnNextCommand(t *testing.T) {
	mock := agent.NewMock()
	fail := true
	mock.AggregateFn = func(agent.Context, []types.RoundRecord) (types.FinalEvaluation, error) {
		if fail {
			return types.FinalEvaluation{}, &agent.FatalError{Op: "aggregate", Err: errors.New("api key rejected")}
		}
		return types.FinalEvaluation{FinalScore: 7.5, Decision: "Hire", OverallFeedback: "Consistent."}, nil
	}
	events := &sink{}
	o := newFullOrchestrator(mock, nil, events)
	ctx := context.Background()

	require.NoError(t, o.Start(ctx))
	for i := 0; i < 3; i++ {
		require.NoError(t, o.SubmitAnswer(ctx, "a considered answer"))
	}

	err := o.SubmitAnswer(ctx, "a considered answer")
	require.Error(t, err, "the committee's aggregation failure surfaces")
	assert.Equal(t, types.SessionActive, o.Snapshot().Status)
	kinds := events.kinds()
	assert.Equal(t, types.EventError, kinds[len(kinds)-1])

	fail = false
	require.NoError(t, o.SubmitAnswer(ctx, ""))
	snap := o.Snapshot()
	assert.Equal(t, types.SessionCompleted, snap.Status)
	require.NotNil(t, snap.FinalScore)
	assert.Equal(t, 7.5, *snap.FinalScore)
}

func TestEndEarlyWinsOverConcurrentFinalize(t *testing.T) {
	mock := agent.NewMock()
	store := &memStore{}
	events := &sink{}
	o := New(Options{
		UserID:        "u-1",
		Mode:          types.ModePractice,
		PracticeRound: types.RoundTechnical,
		Capability:    mock,
		Store:         store,
		Sink:          events.record,
	})
	ctx := context.Background()
	require.NoError(t, o.Start(ctx))
	require.NoError(t, o.EndEarly("user closed the tab"))

	// Model the window where a finishing command passed its ended check
	// just before EndEarly landed: finalize must leave the ended state
	// untouched instead of overwriting it with completed.
	o.finalize()

	snap := o.Snapshot()
	assert.Equal(t, types.SessionEndedEarly, snap.Status)
	assert.Nil(t, snap.FinalScore)
	assert.NotContains(t, events.kinds(), types.EventSessionComplete)
	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Len(t, store.saved, 1, "only the ended session is persisted")
}

func TestRoundStartCarriesWeight(t *testing.T) {
	mock := agent.NewMock()
	events := &sink{}
	o := newFullOrchestrator(mock, nil, events)
	require.NoError(t, o.Start(context.Background()))

	require.GreaterOrEqual(t, len(events.events), 2)
	payload, ok := events.events[1].Payload.(types.RoundStartPayload)
	require.True(t, ok)
	assert.Equal(t, types.RoundHR, payload.RoundKind)
	assert.InDelta(t, scoring.Weight(types.RoundHR), payload.Weight, 1e-9)
	assert.Greater(t, payload.Weight, 0.0)
}

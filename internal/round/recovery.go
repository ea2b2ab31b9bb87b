package round

import (
	"context"
	"time"

	"github.com/jonathan/interview-simulator/internal/agent"
	"github.com/jonathan/interview-simulator/internal/types"
)

// Capability failures are handled in three steps: one attempt, one retry
// after a short backoff, then the deterministic fallback. Fatal errors and
// context cancellation skip the remaining steps, and fallback use is
// reported so the emitted event can carry the degraded flag.

func (m *Machine) askWithRecovery(ctx context.Context, ic agent.Context) (question string, degraded bool, err error) {
	err = m.withRetry(ctx, func(callCtx context.Context) error {
		var callErr error
		question, callErr = m.opts.Capability.AskQuestion(callCtx, m.record.Kind, ic)
		return callErr
	})
	if err == nil {
		return question, false, nil
	}
	if !fallbackWorthy(ctx, err) {
		return "", false, err
	}

	question, ferr := m.opts.Fallback.AskQuestion(ctx, m.record.Kind, ic)
	if ferr != nil {
		return "", false, err
	}
	return question, true, nil
}

func (m *Machine) evaluateWithRecovery(ctx context.Context, ic agent.Context, question, answer string) (eval types.Evaluation, degraded bool, err error) {
	err = m.withRetry(ctx, func(callCtx context.Context) error {
		var callErr error
		eval, callErr = m.opts.Capability.Evaluate(callCtx, m.record.Kind, ic, question, answer)
		return callErr
	})
	if err == nil {
		return eval, false, nil
	}
	if !fallbackWorthy(ctx, err) {
		return types.Evaluation{}, false, err
	}

	eval, ferr := m.opts.Fallback.Evaluate(ctx, m.record.Kind, ic, question, answer)
	if ferr != nil {
		return types.Evaluation{}, false, err
	}
	return eval, true, nil
}

func (m *Machine) aggregateWithRecovery(ctx context.Context, ic agent.Context) (final types.FinalEvaluation, degraded bool, err error) {
	err = m.withRetry(ctx, func(callCtx context.Context) error {
		var callErr error
		final, callErr = m.opts.Capability.Aggregate(callCtx, ic, m.committeeInput)
		return callErr
	})
	if err == nil {
		return final, false, nil
	}
	if !fallbackWorthy(ctx, err) {
		return types.FinalEvaluation{}, false, err
	}

	final, ferr := m.opts.Fallback.Aggregate(ctx, ic, m.committeeInput)
	if ferr != nil {
		return types.FinalEvaluation{}, false, err
	}
	return final, true, nil
}

// withRetry runs call with the configured per-call deadline, retrying once
// after RetryDelay when the failure is transient.
func (m *Machine) withRetry(ctx context.Context, call func(context.Context) error) error {
	err := m.timedCall(ctx, call)
	if err == nil || !agent.IsTransient(err) || ctx.Err() != nil {
		return err
	}

	if m.opts.RetryDelay > 0 {
		select {
		case <-time.After(m.opts.RetryDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return m.timedCall(ctx, call)
}

func (m *Machine) timedCall(ctx context.Context, call func(context.Context) error) error {
	if m.opts.Timeout <= 0 {
		return call(ctx)
	}
	callCtx, cancel := context.WithTimeout(ctx, m.opts.Timeout)
	defer cancel()

	err := call(callCtx)
	// A call that outlived its own deadline is a transient failure, not a
	// caller cancellation.
	if err != nil && callCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		return &agent.TransientError{Op: "call", Err: err}
	}
	return err
}

// fallbackWorthy reports whether the deterministic stand-in should answer
// instead: only for transient failures while the session is still live.
func fallbackWorthy(ctx context.Context, err error) bool {
	return ctx.Err() == nil && agent.IsTransient(err) && err != nil
}

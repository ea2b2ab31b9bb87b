package followup

import (
	"testing"

	"github.com/jonathan/interview-simulator/internal/types"
)

func TestDecide(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name   string
		answer string
		eval   types.Evaluation
		used   int
		ask    bool
	}{
		{
			name: "shallow depth triggers",
			eval: types.Evaluation{Score: 7, Depth: types.DepthShallow},
			ask:  true,
		},
		{
			name: "deep answer passes",
			eval: types.Evaluation{Score: 7, Depth: types.DepthDeep},
			ask:  false,
		},
		{
			name: "low score without depth signal triggers",
			eval: types.Evaluation{Score: 4},
			ask:  true,
		},
		{
			name: "threshold is strict",
			eval: types.Evaluation{Score: 5},
			ask:  false,
		},
		{
			name:   "hedging language triggers",
			answer: "I'm not sure, but maybe indexing would help.",
			eval:   types.Evaluation{Score: 8, Depth: types.DepthAdequate},
			ask:    true,
		},
		{
			name: "cap suppresses recommendation",
			eval: types.Evaluation{Score: 2, Depth: types.DepthShallow},
			used: 1,
			ask:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := policy.Decide(tt.answer, tt.eval, tt.used)
			if d.Ask != tt.ask {
				t.Errorf("Decide() ask = %v, want %v", d.Ask, tt.ask)
			}
			if d.Ask && d.Reason == "" {
				t.Error("Decide() returned empty reason for a follow-up")
			}
		})
	}
}

func TestDecidePrefersAgentHint(t *testing.T) {
	policy := DefaultPolicy()
	eval := types.Evaluation{
		Score:        3,
		Depth:        types.DepthShallow,
		FollowUpHint: "ask for a concrete production example",
	}

	d := policy.Decide("", eval, 0)
	if !d.Ask {
		t.Fatal("expected a follow-up")
	}
	if d.Reason != eval.FollowUpHint {
		t.Errorf("Reason = %q, want agent hint %q", d.Reason, eval.FollowUpHint)
	}
}

func TestZeroPolicyNeverAsks(t *testing.T) {
	var policy Policy
	d := policy.Decide("not sure", types.Evaluation{Score: 0, Depth: types.DepthShallow}, 0)
	if d.Ask {
		t.Error("zero policy must not ask follow-ups")
	}
}

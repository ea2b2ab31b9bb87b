// Package scoring computes the weighted reference score across interview
// rounds and maps scores to decision labels.
//
// The weighted score is a transparency value: for full-mode sessions the
// committee's own final score is authoritative and may deviate from it. For
// practice sessions, where no committee runs, the weighted score stands in
// as the final score.
package scoring

import (
	"math"

	"github.com/jonathan/interview-simulator/internal/types"
)

// Weights are the fixed per-round contributions to the reference score.
// They sum to 1.0.
var Weights = map[types.RoundKind]float64{
	types.RoundHR:            0.15,
	types.RoundHiringManager: 0.25,
	types.RoundTechnical:     0.35,
	types.RoundCultureFit:    0.15,
	types.RoundCommittee:     0.10,
}

// Weight returns the configured weight for a round kind, or 0 for unknown
// kinds.
func Weight(kind types.RoundKind) float64 {
	return Weights[kind]
}

// WeightedScore computes the weighted average of the given round scores.
// Absent rounds are excluded and their weight is redistributed
// proportionally among the rounds that are present; a single present round
// therefore scores as itself. An empty input scores 0.
func WeightedScore(scores map[types.RoundKind]float64) float64 {
	var sum, totalWeight float64
	for kind, score := range scores {
		w := Weights[kind]
		if w == 0 {
			continue
		}
		sum += score * w
		totalWeight += w
	}
	if totalWeight == 0 {
		return 0
	}
	return round2(sum / totalWeight)
}

// SessionScore computes the weighted reference score for a session. When
// excludeSkipped is set, rounds the candidate skipped drop out of the
// aggregate and their weight redistributes; otherwise skipped rounds count
// with their assigned 0.
func SessionScore(s *types.Session, excludeSkipped bool) float64 {
	scores := make(map[types.RoundKind]float64)
	for _, r := range s.Rounds {
		if r.Score == nil {
			continue
		}
		if excludeSkipped && r.Skipped {
			continue
		}
		scores[r.Kind] = *r.Score
	}
	return WeightedScore(scores)
}

// DimensionScores extracts per-role scores for the interviewer rounds.
func DimensionScores(s *types.Session) map[types.RoundKind]float64 {
	dims := make(map[types.RoundKind]float64)
	for _, r := range s.Rounds {
		if r.Kind.Interviewer() && r.Score != nil {
			dims[r.Kind] = *r.Score
		}
	}
	return dims
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

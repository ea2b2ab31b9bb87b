package types

import (
	"math"
	"sort"
	"time"
)

// UserProfile holds the cumulative statistics for one user across sessions.
// The orchestrator reads it at session start for question context and mode
// defaults, and appends to it at session completion. It never mutates a
// profile mid-round.
type UserProfile struct {
	UserID            string                `json:"user_id"`
	Position          string                `json:"position,omitempty"`
	SessionCount      int                   `json:"session_count"`
	ScoredSessions    int                   `json:"scored_sessions"`
	AverageScore      float64               `json:"average_score"`
	BestScore         float64               `json:"best_score"`
	DimensionSamples  map[RoundKind]int     `json:"dimension_samples,omitempty"`
	StrengthTagCounts map[string]int        `json:"strength_tag_counts,omitempty"`
	WeaknessTagCounts map[string]int        `json:"weakness_tag_counts,omitempty"`
	DimensionAverages map[RoundKind]float64 `json:"dimension_averages,omitempty"`
	LastInterviewAt   *time.Time            `json:"last_interview_at,omitempty"`
}

// Absorb folds one finished session into the cumulative statistics. Only
// completed sessions carry a verdict; ended-early sessions are counted but
// do not move the score averages.
func (p *UserProfile) Absorb(s *Session) {
	p.SessionCount++
	if s.Position != "" {
		p.Position = s.Position
	}
	if s.EndedAt != nil {
		at := *s.EndedAt
		p.LastInterviewAt = &at
	}

	if s.FinalScore != nil {
		score := *s.FinalScore
		n := float64(p.ScoredSessions)
		p.AverageScore = roundAvg(p.AverageScore*n+score, n+1)
		p.ScoredSessions++
		if score > p.BestScore {
			p.BestScore = score
		}
	}

	for _, r := range s.Rounds {
		for _, tag := range r.StrengthTags {
			if p.StrengthTagCounts == nil {
				p.StrengthTagCounts = make(map[string]int)
			}
			p.StrengthTagCounts[tag]++
		}
		for _, tag := range r.WeaknessTags {
			if p.WeaknessTagCounts == nil {
				p.WeaknessTagCounts = make(map[string]int)
			}
			p.WeaknessTagCounts[tag]++
		}
		if r.Kind.Interviewer() && r.Score != nil && !r.Skipped {
			if p.DimensionAverages == nil {
				p.DimensionAverages = make(map[RoundKind]float64)
			}
			if p.DimensionSamples == nil {
				p.DimensionSamples = make(map[RoundKind]int)
			}
			seen := float64(p.DimensionSamples[r.Kind])
			prev := p.DimensionAverages[r.Kind]
			p.DimensionAverages[r.Kind] = roundAvg(prev*seen+*r.Score, seen+1)
			p.DimensionSamples[r.Kind]++
		}
	}
}

func roundAvg(sum, n float64) float64 {
	return math.Round(sum/n*100) / 100
}

// TopWeaknesses returns the n most frequent weakness tags, most frequent
// first. Ties break alphabetically so the ordering is stable.
func (p *UserProfile) TopWeaknesses(n int) []string {
	return topTags(p.WeaknessTagCounts, n)
}

// TopStrengths returns the n most frequent strength tags.
func (p *UserProfile) TopStrengths(n int) []string {
	return topTags(p.StrengthTagCounts, n)
}

// RecommendedPracticeRound returns the interviewer round with the lowest
// dimension average, or false when there is no history to base it on.
func (p *UserProfile) RecommendedPracticeRound() (RoundKind, bool) {
	var weakest RoundKind
	lowest := 0.0
	found := false
	for _, kind := range InterviewerKinds() {
		avg, ok := p.DimensionAverages[kind]
		if !ok {
			continue
		}
		if !found || avg < lowest {
			weakest = kind
			lowest = avg
			found = true
		}
	}
	return weakest, found
}

func topTags(counts map[string]int, n int) []string {
	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})
	if n < len(tags) {
		tags = tags[:n]
	}
	return tags
}

package scoring

// Level describes the qualitative band a score falls into.
type Level struct {
	Name     string
	Decision string
}

// levels are ordered from the highest band down. Bounds are inclusive.
var levels = []struct {
	low, high float64
	level     Level
}{
	{9, 10, Level{Name: "Excellent", Decision: "Strong Hire"}},
	{7, 9, Level{Name: "Good", Decision: "Hire"}},
	{5, 7, Level{Name: "Average", Decision: "Hold"}},
	{3, 5, Level{Name: "Below Bar", Decision: "Lean Reject"}},
	{0, 3, Level{Name: "Insufficient", Decision: "Reject"}},
}

// LevelFor maps a 0-10 score to its qualitative band. Out-of-range scores
// clamp to the nearest band.
func LevelFor(score float64) Level {
	if score >= 9 {
		return levels[0].level
	}
	for _, b := range levels {
		if score >= b.low && score < b.high {
			return b.level
		}
	}
	return levels[len(levels)-1].level
}

// DecisionFor returns the hiring decision label for a score.
func DecisionFor(score float64) string {
	return LevelFor(score).Decision
}

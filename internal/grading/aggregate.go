package grading

import "sort"

// Entry is one scored assignment contributing to an aggregate.
type Entry struct {
	AssignmentID uint
	Score        float64
	MaximumScore float64
}

// Result is the overall grade for one student in one class.
type Result struct {
	Percentage  float64 `json:"percentage"`
	Letter      string  `json:"letter_grade"`
	Points      float64 `json:"points"`
	Possible    float64 `json:"possible"`
	GradedCount int     `json:"graded_count"`
}

// Compute aggregates scored assignments into a percentage and letter.
//
// Only assignments that have a score contribute, to both the numerator and the
// denominator. The boolean is false when there is nothing to aggregate, which
// callers must treat as "no grade yet" rather than 0%.
//
// Entries are summed in ascending assignment order so the same set of scores
// always produces the same float result regardless of the order it was read in.
func Compute(entries []Entry, scale Scale) (Result, bool) {
	if len(entries) == 0 {
		return Result{}, false
	}

	ordered := make([]Entry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].AssignmentID < ordered[j].AssignmentID
	})

	var points, possible float64
	for _, entry := range ordered {
		points += entry.Score
		possible += entry.MaximumScore
	}

	if possible <= 0 {
		return Result{}, false
	}

	percentage := 100 * points / possible

	return Result{
		Percentage:  percentage,
		Letter:      scale.Letter(percentage),
		Points:      points,
		Possible:    possible,
		GradedCount: len(ordered),
	}, true
}

// Package grading holds the arithmetic that turns recorded scores into an
// overall percentage and letter grade. It has no storage dependencies.
package grading

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// boundaryTolerance absorbs float noise so 89.99999999999999 still earns an A.
const boundaryTolerance = 1e-9

// Threshold maps the lowest percentage that earns a letter.
type Threshold struct {
	Letter  string  `json:"letter"`
	Minimum float64 `json:"minimum"`
}

// Scale is an ordered, total letter-grade table. The zero value is not usable;
// build one with NewScale, ParseScale or DefaultScale.
type Scale struct {
	thresholds []Threshold
}

// ErrInvalidScale is returned when a threshold table is not total or overlaps.
var ErrInvalidScale = errors.New("invalid grading scale")

// DefaultScale is the A/B/C/D/F table used unless configuration overrides it.
func DefaultScale() Scale {
	scale, _ := NewScale(
		Threshold{Letter: "A", Minimum: 90},
		Threshold{Letter: "B", Minimum: 80},
		Threshold{Letter: "C", Minimum: 70},
		Threshold{Letter: "D", Minimum: 60},
		Threshold{Letter: "F", Minimum: 0},
	)
	return scale
}

// NewScale validates and sorts thresholds. Minimums must be distinct, lie in
// [0,100] and one of them must be 0 so every percentage maps to a letter.
func NewScale(thresholds ...Threshold) (Scale, error) {
	if len(thresholds) == 0 {
		return Scale{}, fmt.Errorf("%w: no thresholds", ErrInvalidScale)
	}

	sorted := make([]Threshold, len(thresholds))
	copy(sorted, thresholds)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Minimum > sorted[j].Minimum
	})

	letters := make(map[string]struct{}, len(sorted))
	for i, threshold := range sorted {
		letter := strings.TrimSpace(threshold.Letter)
		if letter == "" {
			return Scale{}, fmt.Errorf("%w: empty letter", ErrInvalidScale)
		}
		if _, seen := letters[letter]; seen {
			return Scale{}, fmt.Errorf("%w: duplicate letter %q", ErrInvalidScale, letter)
		}
		letters[letter] = struct{}{}

		if threshold.Minimum < 0 || threshold.Minimum > 100 {
			return Scale{}, fmt.Errorf("%w: minimum %.2f for %q outside [0,100]", ErrInvalidScale, threshold.Minimum, letter)
		}
		if i > 0 && sorted[i-1].Minimum == threshold.Minimum {
			return Scale{}, fmt.Errorf("%w: letters %q and %q share minimum %.2f", ErrInvalidScale, sorted[i-1].Letter, letter, threshold.Minimum)
		}
		sorted[i].Letter = letter
	}

	if sorted[len(sorted)-1].Minimum != 0 {
		return Scale{}, fmt.Errorf("%w: lowest threshold must be 0", ErrInvalidScale)
	}

	return Scale{thresholds: sorted}, nil
}

// ParseScale reads a table written as "A:90,B:80,C:70,D:60,F:0".
func ParseScale(input string) (Scale, error) {
	parts := strings.Split(input, ",")
	thresholds := make([]Threshold, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		letter, minimum, ok := strings.Cut(part, ":")
		if !ok {
			return Scale{}, fmt.Errorf("%w: entry %q is not letter:minimum", ErrInvalidScale, part)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(minimum), 64)
		if err != nil {
			return Scale{}, fmt.Errorf("%w: entry %q: %v", ErrInvalidScale, part, err)
		}
		thresholds = append(thresholds, Threshold{Letter: letter, Minimum: value})
	}

	return NewScale(thresholds...)
}

// Letter returns the letter earned by a percentage. Values below zero get the
// lowest letter and values above 100 the highest.
func (s Scale) Letter(percentage float64) string {
	for _, threshold := range s.thresholds {
		if percentage+boundaryTolerance >= threshold.Minimum {
			return threshold.Letter
		}
	}
	if len(s.thresholds) == 0 {
		return ""
	}
	return s.thresholds[len(s.thresholds)-1].Letter
}

// Thresholds returns a copy of the table, highest minimum first.
func (s Scale) Thresholds() []Threshold {
	out := make([]Threshold, len(s.thresholds))
	copy(out, s.thresholds)
	return out
}

// String renders the scale in the format ParseScale accepts.
func (s Scale) String() string {
	parts := make([]string, 0, len(s.thresholds))
	for _, threshold := range s.thresholds {
		parts = append(parts, threshold.Letter+":"+strconv.FormatFloat(threshold.Minimum, 'f', -1, 64))
	}
	return strings.Join(parts, ",")
}

// IsZero reports whether the scale was never initialised.
func (s Scale) IsZero() bool {
	return len(s.thresholds) == 0
}

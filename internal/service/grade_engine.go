package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-gradebook/internal/grading"
	"github.com/noah-isme/gema-gradebook/internal/models"
	"github.com/noah-isme/gema-gradebook/internal/observability"
	"github.com/noah-isme/gema-gradebook/internal/repository"
)

// Pair identifies one student's standing in one class.
type Pair struct {
	StudentID uint `json:"student_id"`
	ClassID   uint `json:"class_id"`
}

// PairSet collects the pairs a mutation affected.
type PairSet struct {
	pairs map[Pair]struct{}
}

// NewPairSet returns an empty set.
func NewPairSet() *PairSet {
	return &PairSet{pairs: make(map[Pair]struct{})}
}

// Add marks a pair for recomputation.
func (s *PairSet) Add(studentID, classID uint) {
	s.pairs[Pair{StudentID: studentID, ClassID: classID}] = struct{}{}
}

// Len reports how many distinct pairs were added.
func (s *PairSet) Len() int {
	return len(s.pairs)
}

// Sorted returns the pairs ordered by student then class.
func (s *PairSet) Sorted() []Pair {
	out := make([]Pair, 0, len(s.pairs))
	for pair := range s.pairs {
		out = append(out, pair)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StudentID != out[j].StudentID {
			return out[i].StudentID < out[j].StudentID
		}
		return out[i].ClassID < out[j].ClassID
	})
	return out
}

// GradeChange describes how one stored overall grade moved. A nil side means
// the pair had no grade.
type GradeChange struct {
	StudentID uint            `json:"student_id"`
	ClassID   uint            `json:"class_id"`
	Trigger   string          `json:"trigger"`
	Previous  *grading.Result `json:"previous"`
	Current   *grading.Result `json:"current"`
}

// Changed reports whether the stored grade differs before and after.
func (c GradeChange) Changed() bool {
	switch {
	case c.Previous == nil && c.Current == nil:
		return false
	case c.Previous == nil || c.Current == nil:
		return true
	default:
		return *c.Previous != *c.Current
	}
}

func (c GradeChange) outcome() string {
	switch {
	case !c.Changed():
		return "unchanged"
	case c.Current == nil:
		return "cleared"
	default:
		return "updated"
	}
}

func (c GradeChange) payload() datatypes.JSONMap {
	payload := datatypes.JSONMap{
		"previous_percentage": nil,
		"previous_letter":     nil,
		"percentage":          nil,
		"letter_grade":        nil,
		"graded_count":        0,
	}
	if c.Previous != nil {
		payload["previous_percentage"] = c.Previous.Percentage
		payload["previous_letter"] = c.Previous.Letter
	}
	if c.Current != nil {
		payload["percentage"] = c.Current.Percentage
		payload["letter_grade"] = c.Current.Letter
		payload["graded_count"] = c.Current.GradedCount
	}
	return payload
}

// Engine keeps the materialized overall grades in step with recorded scores.
// It is the only writer of the overall_grades table.
type Engine struct {
	scale  grading.Scale
	logger zerolog.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// NewEngine builds an engine that grades with scale, or the default scale
// when scale is the zero value.
func NewEngine(scale grading.Scale, logger zerolog.Logger) *Engine {
	if scale.IsZero() {
		scale = grading.DefaultScale()
	}
	return &Engine{
		scale:  scale,
		logger: logger.With().Str("component", "grade_engine").Logger(),
		tracer: otel.Tracer("github.com/noah-isme/gema-gradebook/internal/service"),
		now:    time.Now,
	}
}

// Scale returns the letter table in use.
func (e *Engine) Scale() grading.Scale {
	return e.scale
}

// Compute derives the aggregate for a pair from the scores currently visible
// through repos. It fails with NotFound when the student is not enrolled and
// returns false when the student has no scores in the class.
func (e *Engine) Compute(ctx context.Context, repos repository.Repositories, studentID, classID uint) (grading.Result, bool, error) {
	enrolled, err := repos.Enrollments.Exists(ctx, studentID, classID)
	if err != nil {
		return grading.Result{}, false, translateStoreError(err, "enrollment %d/%d", studentID, classID)
	}
	if !enrolled {
		return grading.Result{}, false, notFound("student %d is not enrolled in class %d", studentID, classID)
	}

	rows, err := repos.Scores.ListScoredAssignments(ctx, studentID, classID)
	if err != nil {
		return grading.Result{}, false, translateStoreError(err, "scores for %d/%d", studentID, classID)
	}

	entries := make([]grading.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, grading.Entry{
			AssignmentID: row.AssignmentID,
			Score:        row.Score,
			MaximumScore: row.MaximumScore,
		})
	}

	result, ok := grading.Compute(entries, e.scale)
	return result, ok, nil
}

// Recompute rewrites the stored aggregate for pair and logs the change. Pairs
// that are no longer enrolled or have no scores lose their row.
func (e *Engine) Recompute(ctx context.Context, repos repository.Repositories, pair Pair, trigger string) (GradeChange, error) {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "grades.recompute")
	span.SetAttributes(
		attribute.Int64("grades.student_id", int64(pair.StudentID)),
		attribute.Int64("grades.class_id", int64(pair.ClassID)),
		attribute.String("grades.trigger", trigger),
	)
	defer span.End()

	change := GradeChange{StudentID: pair.StudentID, ClassID: pair.ClassID, Trigger: trigger}
	fail := func(err error, status string) (GradeChange, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
		observability.Recomputations().WithLabelValues(trigger, "error").Inc()
		return change, err
	}

	stored, err := repos.OverallGrades.Get(ctx, pair.StudentID, pair.ClassID)
	switch {
	case err == nil:
		previous := resultFromModel(stored)
		change.Previous = &previous
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return fail(translateStoreError(err, "overall grade %d/%d", pair.StudentID, pair.ClassID), "overall_grade_lookup_failed")
	}

	result, defined, err := e.Compute(ctx, repos, pair.StudentID, pair.ClassID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fail(err, "compute_failed")
	}
	if defined {
		change.Current = &result
	}

	if change.Changed() {
		if change.Current != nil {
			grade := models.OverallGrade{
				StudentID:   pair.StudentID,
				ClassID:     pair.ClassID,
				Percentage:  result.Percentage,
				LetterGrade: result.Letter,
				Points:      result.Points,
				Possible:    result.Possible,
				GradedCount: result.GradedCount,
				UpdatedAt:   e.now(),
			}
			if err := repos.OverallGrades.Upsert(ctx, &grade); err != nil {
				return fail(translateStoreError(err, "overall grade %d/%d", pair.StudentID, pair.ClassID), "overall_grade_upsert_failed")
			}
		} else {
			if err := repos.OverallGrades.Delete(ctx, pair.StudentID, pair.ClassID); err != nil {
				return fail(translateStoreError(err, "overall grade %d/%d", pair.StudentID, pair.ClassID), "overall_grade_delete_failed")
			}
		}

		event := models.GradeEvent{
			StudentID: pair.StudentID,
			ClassID:   pair.ClassID,
			Trigger:   trigger,
			Payload:   change.payload(),
		}
		if err := repos.GradeEvents.Create(ctx, &event); err != nil {
			return fail(translateStoreError(err, "grade event %d/%d", pair.StudentID, pair.ClassID), "grade_event_failed")
		}
	}

	outcome := change.outcome()
	span.SetAttributes(attribute.String("grades.outcome", outcome))
	if change.Current != nil {
		span.SetAttributes(attribute.Float64("grades.percentage", change.Current.Percentage))
	}
	observability.Recomputations().WithLabelValues(trigger, outcome).Inc()
	observability.RecomputeLatency().Observe(time.Since(start).Seconds())

	e.logger.Debug().
		Uint("student_id", pair.StudentID).
		Uint("class_id", pair.ClassID).
		Str("trigger", trigger).
		Str("outcome", outcome).
		Msg("overall grade recomputed")

	return change, nil
}

// RecomputePairs recomputes every pair in order and returns only the changes
// that altered stored state.
func (e *Engine) RecomputePairs(ctx context.Context, repos repository.Repositories, pairs []Pair, trigger string) ([]GradeChange, error) {
	changes := make([]GradeChange, 0, len(pairs))
	for _, pair := range pairs {
		change, err := e.Recompute(ctx, repos, pair, trigger)
		if err != nil {
			return nil, err
		}
		if change.Changed() {
			changes = append(changes, change)
		}
	}
	return changes, nil
}

func resultFromModel(grade models.OverallGrade) grading.Result {
	return grading.Result{
		Percentage:  grade.Percentage,
		Letter:      grade.LetterGrade,
		Points:      grade.Points,
		Possible:    grade.Possible,
		GradedCount: grade.GradedCount,
	}
}

package service

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-gradebook/internal/dto"
)

func TestScoreServiceDuplicateCreateIsNotUniqueButUpdateSucceeds(t *testing.T) {
	h := newHarness(t, nil)
	s := newScenario(t, h)
	ctx := context.Background()

	h.score(t, s.x, s.a, 50)

	_, err := h.scores.Create(ctx, dto.ScoreCreateRequest{StudentID: s.x, AssignmentID: s.a, Score: floatPtr(70)})
	require.ErrorIs(t, err, ErrNotUnique)
	require.Equal(t, KindNotUnique, KindOf(err))

	updated, err := h.scores.Update(ctx, s.x, s.a, dto.ScoreUpdateRequest{Score: floatPtr(70)})
	require.NoError(t, err)
	require.Equal(t, 70.0, updated.Score)
	require.InDelta(t, 70.0, *h.grade(t, s.x, s.c).Percentage, 1e-9)
}

func TestScoreServiceRequiresEnrollment(t *testing.T) {
	h := newHarness(t, nil)
	s := newScenario(t, h)
	outsider := h.student(t, "Oscar")

	_, err := h.scores.Create(context.Background(), dto.ScoreCreateRequest{StudentID: outsider, AssignmentID: s.a, Score: floatPtr(10)})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestScoreServiceRejectsOutOfRangeValues(t *testing.T) {
	h := newHarness(t, nil)
	s := newScenario(t, h)
	ctx := context.Background()

	cases := map[string]*float64{
		"missing":  nil,
		"negative": floatPtr(-1),
		"too high": floatPtr(50.5),
		"infinite": floatPtr(math.Inf(1)),
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := h.scores.Create(ctx, dto.ScoreCreateRequest{StudentID: s.x, AssignmentID: s.b, Score: value})
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	h.score(t, s.x, s.b, 50)
	require.InDelta(t, 100.0, *h.grade(t, s.x, s.c).Percentage, 1e-9)
}

func TestScoreServiceUnknownKeysAreNotFound(t *testing.T) {
	h := newHarness(t, nil)
	s := newScenario(t, h)
	ctx := context.Background()

	_, err := h.scores.Get(ctx, s.x, s.a)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = h.scores.Update(ctx, s.x, s.a, dto.ScoreUpdateRequest{Score: floatPtr(1)})
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, h.scores.Delete(ctx, s.x, s.a), ErrNotFound)
	require.ErrorIs(t, h.scores.Delete(ctx, s.x, 999), ErrNotFound)
}

func TestScoreServiceListFilters(t *testing.T) {
	h := newHarness(t, nil)
	s := newScenario(t, h)
	ctx := context.Background()

	h.score(t, s.y, s.a, 45)
	h.score(t, s.x, s.b, 40)
	h.score(t, s.x, s.a, 90)

	all, err := h.scores.List(ctx, dto.ScoreFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, s.x, all[0].StudentID)
	require.Equal(t, s.a, all[0].AssignmentID)

	onlyY, err := h.scores.List(ctx, dto.ScoreFilter{StudentID: &s.y})
	require.NoError(t, err)
	require.Len(t, onlyY, 1)

	byClass, err := h.scores.List(ctx, dto.ScoreFilter{ClassID: &s.c})
	require.NoError(t, err)
	require.Len(t, byClass, 3)
}

func TestScoreServiceImportRecomputesEachPairOnce(t *testing.T) {
	h := newHarness(t, nil)
	s := newScenario(t, h)
	ctx := context.Background()
	h.score(t, s.x, s.a, 10)

	result, err := h.scores.Import(ctx, dto.ScoreImportRequest{Scores: []dto.ScoreCreateRequest{
		{StudentID: s.x, AssignmentID: s.a, Score: floatPtr(90)},
		{StudentID: s.x, AssignmentID: s.b, Score: floatPtr(40)},
		{StudentID: s.y, AssignmentID: s.a, Score: floatPtr(45)},
	}})
	require.NoError(t, err)
	require.Equal(t, 3, result.Imported)
	require.Len(t, result.OverallGrades, 2)
	require.InDelta(t, 86.67, *result.OverallGrades[0].Percentage, 0.005)
	require.Equal(t, "F", *result.OverallGrades[1].LetterGrade)

	events, err := h.grades.Events(ctx, dto.GradeEventFilter{StudentID: &s.x})
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "score.imported", events[0].Trigger)
}

func TestScoreServiceImportIsAllOrNothing(t *testing.T) {
	h := newHarness(t, nil)
	s := newScenario(t, h)
	ctx := context.Background()
	outsider := h.student(t, "Oscar")

	_, err := h.scores.Import(ctx, dto.ScoreImportRequest{Scores: []dto.ScoreCreateRequest{
		{StudentID: s.x, AssignmentID: s.a, Score: floatPtr(90)},
		{StudentID: outsider, AssignmentID: s.a, Score: floatPtr(45)},
	}})
	require.ErrorIs(t, err, ErrNotFound)
	require.Contains(t, err.Error(), "scores[1]")

	scores, err := h.scores.List(ctx, dto.ScoreFilter{})
	require.NoError(t, err)
	require.Empty(t, scores)
	require.False(t, h.grade(t, s.x, s.c).Graded)
}

func TestScoreServiceImportRejectsRepeatedKeys(t *testing.T) {
	h := newHarness(t, nil)
	s := newScenario(t, h)

	_, err := h.scores.Import(context.Background(), dto.ScoreImportRequest{Scores: []dto.ScoreCreateRequest{
		{StudentID: s.x, AssignmentID: s.a, Score: floatPtr(90)},
		{StudentID: s.x, AssignmentID: s.a, Score: floatPtr(80)},
	}})
	require.ErrorIs(t, err, ErrInvalidInput)
}

package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-gradebook/internal/dto"
	"github.com/noah-isme/gema-gradebook/internal/grading"
	"github.com/noah-isme/gema-gradebook/internal/models"
)

func newCachedHarness(t *testing.T) (*harness, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return newHarness(t, NewRedisGradeCache(client, time.Minute, zerolog.Nop())), mr
}

func TestOverallGradeListIsCachedUntilAGradeChanges(t *testing.T) {
	h, mr := newCachedHarness(t)
	s := newScenario(t, h)
	ctx := context.Background()
	h.score(t, s.x, s.a, 90)

	first, err := h.grades.List(ctx, dto.OverallGradeFilter{})
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Len(t, mr.Keys(), 1)

	cacheKey := mr.Keys()[0]
	require.True(t, mr.Exists(cacheKey))

	require.NoError(t, h.db.Model(&models.OverallGrade{}).Where("student_id = ?", s.x).Update("percentage", 1).Error)
	cached, err := h.grades.List(ctx, dto.OverallGradeFilter{})
	require.NoError(t, err)
	require.Len(t, cached, 1)
	require.InDelta(t, 90.0, *cached[0].Percentage, 1e-9)

	h.score(t, s.y, s.a, 45)
	require.False(t, mr.Exists(cacheKey))

	second, err := h.grades.List(ctx, dto.OverallGradeFilter{})
	require.NoError(t, err)
	require.Len(t, second, 2)
}

func TestOverallGradeListSurvivesCacheOutage(t *testing.T) {
	h, mr := newCachedHarness(t)
	s := newScenario(t, h)
	ctx := context.Background()
	h.score(t, s.x, s.a, 90)

	_, err := h.grades.List(ctx, dto.OverallGradeFilter{})
	require.NoError(t, err)

	mr.Close()
	h.score(t, s.y, s.a, 45)

	grades, err := h.grades.List(ctx, dto.OverallGradeFilter{ClassID: &s.c})
	require.NoError(t, err)
	require.Len(t, grades, 2)
}

func TestOverallGradeListFiltersByPair(t *testing.T) {
	h := newHarness(t, nil)
	s := newScenario(t, h)
	ctx := context.Background()
	h.score(t, s.x, s.a, 90)
	h.score(t, s.y, s.a, 45)

	grades, err := h.grades.List(ctx, dto.OverallGradeFilter{StudentID: &s.y})
	require.NoError(t, err)
	require.Len(t, grades, 1)
	require.Equal(t, s.y, grades[0].StudentID)
	require.True(t, grades[0].Graded)
}

func TestOverallGradeRecomputeAllReportsChanges(t *testing.T) {
	h := newHarness(t, nil)
	s := newScenario(t, h)
	h.score(t, s.x, s.a, 90)

	changed, err := h.grades.RecomputeAll(context.Background())
	require.NoError(t, err)
	require.Zero(t, changed)
}

func TestOverallGradeEventsValidateLimit(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.grades.Events(context.Background(), dto.GradeEventFilter{Limit: 5000})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestEngineUsesConfiguredScale(t *testing.T) {
	engine := NewEngine(mustScale(t, "P:50,F:0"), zerolog.Nop())
	require.Equal(t, "P", engine.Scale().Letter(50))
	require.Equal(t, "F", engine.Scale().Letter(49.99))
}

func mustScale(t *testing.T, input string) grading.Scale {
	t.Helper()
	scale, err := grading.ParseScale(input)
	require.NoError(t, err)
	return scale
}

package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-gradebook/internal/repository"
)

// Gradebook serializes every write to the record store. A mutation and the
// recomputation it triggers commit in one transaction under the write lock.
// Reads hold the read lock so they never observe a write without its
// recomputed aggregates.
type Gradebook struct {
	mu        sync.RWMutex
	store     repository.Store
	engine    *Engine
	cache     *RedisGradeCache
	publisher *NATSPublisher
	logger    zerolog.Logger
}

// NewGradebook wires the coordinator. cache and publisher may be nil.
func NewGradebook(store repository.Store, engine *Engine, cache *RedisGradeCache, publisher *NATSPublisher, logger zerolog.Logger) *Gradebook {
	return &Gradebook{
		store:     store,
		engine:    engine,
		cache:     cache,
		publisher: publisher,
		logger:    logger.With().Str("component", "gradebook").Logger(),
	}
}

// Engine exposes the aggregation engine.
func (g *Gradebook) Engine() *Engine {
	return g.engine
}

// Read runs fn against the committed state.
func (g *Gradebook) Read(ctx context.Context, fn func(repos repository.Repositories) error) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(g.store.Repositories())
}

// Mutate runs fn inside a transaction, then recomputes every pair fn added
// to affected before committing. It returns the grade changes that were
// committed. fn must only use the repositories it is handed.
func (g *Gradebook) Mutate(ctx context.Context, trigger string, fn func(repos repository.Repositories, affected *PairSet) error) ([]GradeChange, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var changes []GradeChange
	err := g.store.Transaction(ctx, func(repos repository.Repositories) error {
		affected := NewPairSet()
		if err := fn(repos, affected); err != nil {
			return err
		}
		recomputed, err := g.engine.RecomputePairs(ctx, repos, affected.Sorted(), trigger)
		if err != nil {
			return err
		}
		changes = recomputed
		return nil
	})
	if err != nil {
		g.logger.Debug().Err(err).Str("trigger", trigger).Msg("gradebook mutation rolled back")
		return nil, err
	}

	if len(changes) > 0 {
		g.cache.invalidate(ctx)
		g.publisher.publish(changes)
		g.logger.Info().Str("trigger", trigger).Int("changes", len(changes)).Msg("overall grades updated")
	}
	return changes, nil
}

// RecomputeAll rebuilds the aggregate of every enrolled pair and clears rows
// left for pairs that no longer qualify. Running it twice changes nothing.
func (g *Gradebook) RecomputeAll(ctx context.Context) ([]GradeChange, error) {
	return g.Mutate(ctx, "recompute.all", func(repos repository.Repositories, affected *PairSet) error {
		enrollments, err := repos.Enrollments.List(ctx)
		if err != nil {
			return translateStoreError(err, "list enrollments")
		}
		for _, enrollment := range enrollments {
			affected.Add(enrollment.StudentID, enrollment.ClassID)
		}

		pairs, err := repos.OverallGrades.ListPairs(ctx)
		if err != nil {
			return translateStoreError(err, "list overall grades")
		}
		for _, pair := range pairs {
			affected.Add(pair.StudentID, pair.ClassID)
		}
		return nil
	})
}

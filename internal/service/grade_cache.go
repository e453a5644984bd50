package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-gradebook/internal/dto"
	"github.com/noah-isme/gema-gradebook/internal/observability"
)

const gradeCachePrefix = "gradebook:overall_grades"

// RedisGradeCache stores overall-grade listings in one Redis hash per
// generation. Every committed grade change moves to a fresh generation, so a
// failed delete can never serve a stale listing.
type RedisGradeCache struct {
	client     *redis.Client
	ttl        time.Duration
	instance   string
	generation atomic.Uint64
	logger     zerolog.Logger
}

// NewRedisGradeCache returns nil when client is nil so callers can pass the
// result straight to the gradebook.
func NewRedisGradeCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *RedisGradeCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisGradeCache{
		client:   client,
		ttl:      ttl,
		instance: uuid.NewString(),
		logger:   logger.With().Str("component", "grade_cache").Logger(),
	}
}

func (c *RedisGradeCache) key() string {
	return fmt.Sprintf("%s:%s:%d", gradeCachePrefix, c.instance, c.generation.Load())
}

func (c *RedisGradeCache) fetch(ctx context.Context, field string) ([]dto.OverallGradeResponse, bool) {
	if c == nil {
		return nil, false
	}
	payload, err := c.client.HGet(ctx, c.key(), field).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Msg("failed to read overall grade cache")
		}
		observability.GradeCacheLookups().WithLabelValues("miss").Inc()
		return nil, false
	}

	var grades []dto.OverallGradeResponse
	if err := json.Unmarshal([]byte(payload), &grades); err != nil {
		c.logger.Warn().Err(err).Msg("failed to decode overall grade cache")
		observability.GradeCacheLookups().WithLabelValues("miss").Inc()
		return nil, false
	}
	observability.GradeCacheLookups().WithLabelValues("hit").Inc()
	return grades, true
}

func (c *RedisGradeCache) store(ctx context.Context, field string, grades []dto.OverallGradeResponse) {
	if c == nil {
		return
	}
	payload, err := json.Marshal(grades)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to encode overall grade cache")
		return
	}

	key := c.key()
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, field, payload)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("failed to store overall grade cache")
	}
}

// invalidate advances the generation and drops the previous listing hash.
func (c *RedisGradeCache) invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	previous := c.key()
	c.generation.Add(1)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.client.Del(ctx, previous).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", previous).Msg("failed to drop overall grade cache")
	}
}

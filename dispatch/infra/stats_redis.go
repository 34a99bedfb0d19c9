package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"scheduler-sim/dispatch/domain"

	"github.com/redis/go-redis/v9"
)

// RedisStatsStore exporta contadores por resultado e por modo para um Redis
// externo. O processo nunca relê esses valores: após um restart os contadores
// locais começam do zero.
type RedisStatsStore struct {
	rdb *redis.Client

	prefix string
	// ttl aplica apenas em chaves de série temporal.
	// total e por modo são cumulativos e não expiram.
	ttl time.Duration

	bucket string // "minute" (padrão) ou "none"
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.bucket = strings.ToLower(strings.TrimSpace(bucket)) }
}

func NewRedisStatsStore(rdb *redis.Client, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "scheduler:stats",
		ttl:    24 * time.Hour,
		bucket: "minute",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Keys devolve as chaves Redis tocadas por um Record em `at`.
func (s *RedisStatsStore) Keys(rec domain.Record, at time.Time) (total, mode, bucket string) {
	total = s.prefix + ":total"
	mode = s.prefix + ":mode:" + rec.Mode.String()
	if s.bucket == "minute" {
		bucket = fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
	}
	return total, mode, bucket
}

func (s *RedisStatsStore) Record(ctx context.Context, rec domain.Record) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := rec.At
	if at.IsZero() {
		at = time.Now()
	}
	field := string(rec.Outcome)
	totalKey, modeKey, bucketKey := s.Keys(rec, at)

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, totalKey, field, 1)

	pipe.HIncrBy(ctx, modeKey, field, 1)
	pipe.HIncrBy(ctx, modeKey, "queue_wait_ms", rec.QueueWait.Milliseconds())
	if rec.Succeeded() {
		pipe.HIncrBy(ctx, modeKey, "processing_ms", rec.Processing.Milliseconds())
	}

	if bucketKey != "" {
		pipe.HIncrBy(ctx, bucketKey, field, 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, bucketKey, s.ttl)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis stats: %w", err)
	}
	return nil
}

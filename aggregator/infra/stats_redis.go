package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"posts-gateway/aggregator/domain"

	"github.com/redis/go-redis/v9"
)

// RedisStatsStore agrega desfechos de chamadas upstream em hashes do Redis:
//
//	<prefix>:total                 status -> contagem
//	<prefix>:service:<svc>         status -> contagem, latency_ms -> soma
//	<prefix>:minute:<yyyymmddhhmm> <svc>:<status> -> contagem (com TTL)
type RedisStatsStore struct {
	rdb redis.Cmdable

	prefix string
	// ttl aplica apenas nos buckets por minuto.
	ttl time.Duration
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		if p := strings.Trim(prefix, ": "); p != "" {
			s.prefix = p
		}
	}
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func NewRedisStatsStore(rdb redis.Cmdable, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "posts-gateway:upstream",
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.CallEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	status := ev.Status.String()
	service := strings.TrimSpace(ev.Service)
	if service == "" {
		service = "unknown"
	}

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", status, 1)

	serviceKey := s.prefix + ":service:" + service
	pipe.HIncrBy(ctx, serviceKey, status, 1)
	pipe.HIncrBy(ctx, serviceKey, "latency_ms", ev.Latency.Milliseconds())

	bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
	pipe.HIncrBy(ctx, bucketKey, service+":"+status, 1)
	if s.ttl > 0 {
		pipe.Expire(ctx, bucketKey, s.ttl)
	}

	_, err := pipe.Exec(ctx)
	return err
}

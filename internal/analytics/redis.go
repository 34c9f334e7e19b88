package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/starford/cookhub/internal/models"
)

// DefaultStream is the stream key used when none is configured.
const DefaultStream = "cookhub:access"

// RedisStream appends access events to a Redis stream, trimmed to
// approximately maxLen entries.
type RedisStream struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewRedisStream creates a stream sink. maxLen <= 0 disables trimming.
func NewRedisStream(client *redis.Client, stream string, maxLen int64) *RedisStream {
	if stream == "" {
		stream = DefaultStream
	}
	if maxLen < 0 {
		maxLen = 0
	}
	return &RedisStream{client: client, stream: stream, maxLen: maxLen}
}

// Record implements Sink.
func (s *RedisStream) Record(ctx context.Context, ev models.AccessEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: s.maxLen > 0,
		Values: map[string]interface{}{
			"id":         ev.ID,
			"kind":       string(ev.Kind),
			"slug":       ev.Slug,
			"branch":     ev.Branch,
			"user_agent": ev.UserAgent,
			"client_ip":  ev.ClientIP,
			"request_id": ev.RequestID,
			"timestamp":  ev.Timestamp.UTC().Format(time.RFC3339Nano),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("analytics: xadd %s: %w", s.stream, err)
	}
	return nil
}

package livechat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	transcriptKeyPrefix  = "chat_transcript:"
	defaultMaxMessages   = 200
	defaultTranscriptTTL = 24 * time.Hour
)

var errSessionRequired = errors.New("livechat: session id required")

// TranscriptStore keeps per-session chat history.
type TranscriptStore interface {
	Append(ctx context.Context, sessionID string, msg Message) error
	List(ctx context.Context, sessionID string, limit int64) ([]Message, error)
}

// RedisTranscriptStore keeps a bounded list per session with a sliding TTL.
type RedisTranscriptStore struct {
	redis       *redis.Client
	tracer      trace.Tracer
	ttl         time.Duration
	maxMessages int64
}

func NewRedisTranscriptStore(client *redis.Client, ttl time.Duration) *RedisTranscriptStore {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultTranscriptTTL
	}
	return &RedisTranscriptStore{
		redis:       client,
		tracer:      otel.Tracer("telepsych.internal.livechat.transcript"),
		ttl:         ttl,
		maxMessages: defaultMaxMessages,
	}
}

func (s *RedisTranscriptStore) Append(ctx context.Context, sessionID string, msg Message) error {
	if sessionID == "" {
		return errSessionRequired
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("livechat: marshal transcript message: %w", err)
	}

	ctx, span := s.tracer.Start(ctx, "livechat.transcript.append")
	defer span.End()

	key := transcriptKey(sessionID)
	pipe := s.redis.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, s.ttl)
	pipe.LTrim(ctx, key, -s.maxMessages, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("livechat: append transcript: %w", err)
	}
	return nil
}

func (s *RedisTranscriptStore) List(ctx context.Context, sessionID string, limit int64) ([]Message, error) {
	if sessionID == "" {
		return nil, errSessionRequired
	}
	ctx, span := s.tracer.Start(ctx, "livechat.transcript.list")
	defer span.End()

	start := int64(0)
	if limit > 0 {
		start = -limit
	}
	raw, err := s.redis.LRange(ctx, transcriptKey(sessionID), start, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []Message{}, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("livechat: list transcript: %w", err)
	}

	out := make([]Message, 0, len(raw))
	for _, item := range raw {
		var msg Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			span.RecordError(err)
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

func transcriptKey(sessionID string) string {
	return transcriptKeyPrefix + sessionID
}

// MemoryTranscriptStore is used when Redis is not configured.
type MemoryTranscriptStore struct {
	mu          sync.Mutex
	sessions    map[string][]Message
	maxMessages int
}

func NewMemoryTranscriptStore() *MemoryTranscriptStore {
	return &MemoryTranscriptStore{sessions: make(map[string][]Message), maxMessages: defaultMaxMessages}
}

func (s *MemoryTranscriptStore) Append(_ context.Context, sessionID string, msg Message) error {
	if sessionID == "" {
		return errSessionRequired
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := append(s.sessions[sessionID], msg)
	if len(msgs) > s.maxMessages {
		msgs = msgs[len(msgs)-s.maxMessages:]
	}
	s.sessions[sessionID] = msgs
	return nil
}

func (s *MemoryTranscriptStore) List(_ context.Context, sessionID string, limit int64) ([]Message, error) {
	if sessionID == "" {
		return nil, errSessionRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.sessions[sessionID]
	if limit > 0 && int64(len(msgs)) > limit {
		msgs = msgs[int64(len(msgs))-limit:]
	}
	return append([]Message{}, msgs...), nil
}

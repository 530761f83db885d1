package citypages

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const keyPrefix = "city_page:"

// ErrNotFound means no custom page is stored for the city.
var ErrNotFound = errors.New("citypages: not found")

// Store holds custom city page content.
type Store interface {
	Get(ctx context.Context, slug, state string) (*CityData, error)
	Put(ctx context.Context, slug string, data CityData) error
}

// RedisStore keeps one JSON document per city.
type RedisStore struct {
	redis  *redis.Client
	tracer trace.Tracer
}

func NewRedisStore(client *redis.Client) *RedisStore {
	if client == nil {
		return nil
	}
	return &RedisStore{
		redis:  client,
		tracer: otel.Tracer("telepsych.internal.citypages"),
	}
}

// Get returns the stored page. A page stored for another state is treated as missing.
func (s *RedisStore) Get(ctx context.Context, slug, state string) (*CityData, error) {
	ctx, span := s.tracer.Start(ctx, "citypages.get")
	defer span.End()

	raw, err := s.redis.Get(ctx, cityKey(slug)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("citypages: get %s: %w", slug, err)
	}
	var data CityData
	if err := json.Unmarshal(raw, &data); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("citypages: decode %s: %w", slug, err)
	}
	if state != "" && !strings.EqualFold(data.StateCode, state) {
		return nil, ErrNotFound
	}
	return &data, nil
}

// Put stores custom content for the city. It does not expire.
func (s *RedisStore) Put(ctx context.Context, slug string, data CityData) error {
	ctx, span := s.tracer.Start(ctx, "citypages.put")
	defer span.End()

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("citypages: encode %s: %w", slug, err)
	}
	if err := s.redis.Set(ctx, cityKey(slug), raw, 0).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("citypages: put %s: %w", slug, err)
	}
	return nil
}

func cityKey(slug string) string {
	return keyPrefix + slug
}

// MemoryStore is used when Redis is not configured.
type MemoryStore struct {
	mu    sync.RWMutex
	pages map[string]CityData
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pages: make(map[string]CityData)}
}

func (s *MemoryStore) Get(_ context.Context, slug, state string) (*CityData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.pages[slug]
	if !ok || (state != "" && !strings.EqualFold(data.StateCode, state)) {
		return nil, ErrNotFound
	}
	return &data, nil
}

func (s *MemoryStore) Put(_ context.Context, slug string, data CityData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[slug] = data
	return nil
}

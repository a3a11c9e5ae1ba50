package audio

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL = 30 * time.Minute
	keyPrefix  = "newsmentor:audio:"
)

var ErrNotFound = errors.New("audio clip not found")

// Store holds synthesized clips for a limited time. Put returns the clip id.
type Store interface {
	Put(ctx context.Context, clip []byte) (string, error)
	Get(ctx context.Context, id string) ([]byte, error)
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Put(ctx context.Context, clip []byte) (string, error) {
	id := uuid.NewString()
	if err := s.client.Set(ctx, keyPrefix+id, clip, s.ttl).Err(); err != nil {
		return "", err
	}
	return id, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) ([]byte, error) {
	clip, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return clip, nil
}

type memoryClip struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore is used when no Redis is configured. Expired clips are
// dropped lazily on Put.
type MemoryStore struct {
	mu    sync.Mutex
	clips map[string]memoryClip
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		clips: make(map[string]memoryClip),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *MemoryStore) Put(_ context.Context, clip []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, c := range s.clips {
		if now.After(c.expiresAt) {
			delete(s.clips, id)
		}
	}

	id := uuid.NewString()
	data := make([]byte, len(clip))
	copy(data, clip)
	s.clips[id] = memoryClip{data: data, expiresAt: now.Add(s.ttl)}
	return id, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clips[id]
	if !ok || s.now().After(c.expiresAt) {
		return nil, ErrNotFound
	}
	return c.data, nil
}

package services

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DraftStore persists serialized application drafts between form steps,
// keyed by the opaque session token carried in the applicant's cookie.
type DraftStore interface {
	Load(ctx context.Context, token string) ([]byte, error)
	Save(ctx context.Context, token string, data []byte) error
	Delete(ctx context.Context, token string) error
}

const draftKeyPrefix = "draft:"

// RedisDraftStore keeps drafts in redis with a TTL, so abandoned sessions
// expire on their own.
type RedisDraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDraftStore(client *redis.Client, ttl time.Duration) *RedisDraftStore {
	return &RedisDraftStore{client: client, ttl: ttl}
}

func (s *RedisDraftStore) Load(ctx context.Context, token string) ([]byte, error) {
	data, err := s.client.Get(ctx, draftKeyPrefix+token).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

func (s *RedisDraftStore) Save(ctx context.Context, token string, data []byte) error {
	return s.client.Set(ctx, draftKeyPrefix+token, data, s.ttl).Err()
}

func (s *RedisDraftStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, draftKeyPrefix+token).Err()
}

// MemoryDraftStore is the fallback when redis is not configured, and the
// store tests run against. Drafts survive only as long as the process.
type MemoryDraftStore struct {
	mu     sync.Mutex
	drafts map[string][]byte
}

func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{drafts: make(map[string][]byte)}
}

func (s *MemoryDraftStore) Load(_ context.Context, token string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drafts[token], nil
}

func (s *MemoryDraftStore) Save(_ context.Context, token string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]byte, len(data))
	copy(copied, data)
	s.drafts[token] = copied
	return nil
}

func (s *MemoryDraftStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, token)
	return nil
}

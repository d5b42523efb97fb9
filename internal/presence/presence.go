// Package presence tracks ephemeral per-chat online state. Entries are
// TTL-bound: a user who stops refreshing silently goes offline when the
// entry expires, so nothing here is ever persisted durably.
package presence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL is how long an online signal stays valid without a refresh.
const TTL = 5 * time.Minute

// Store is the keyed ephemeral store behind the online indicator.
type Store interface {
	// Set marks the user online in the chat until the TTL lapses.
	Set(ctx context.Context, chatID, userID int64) error
	// Get returns the "online since" timestamp, or nil when offline.
	Get(ctx context.Context, chatID, userID int64) (*time.Time, error)
	// Clear removes the signal (explicit offline).
	Clear(ctx context.Context, chatID, userID int64) error
}

func key(chatID, userID int64) string {
	return fmt.Sprintf("chat_online_%d_%d", chatID, userID)
}

// RedisStore keeps presence in redis so signals survive process
// restarts and are shared between instances.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(addr string) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: 0})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisStore{rdb: rdb}, nil
}

func (s *RedisStore) Set(ctx context.Context, chatID, userID int64) error {
	return s.rdb.Set(ctx, key(chatID, userID), time.Now().Format(time.RFC3339), TTL).Err()
}

func (s *RedisStore) Get(ctx context.Context, chatID, userID int64) (*time.Time, error) {
	val, err := s.rdb.Get(ctx, key(chatID, userID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ts, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

func (s *RedisStore) Clear(ctx context.Context, chatID, userID int64) error {
	return s.rdb.Del(ctx, key(chatID, userID)).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// MemoryStore is the in-process fallback used when no redis address is
// configured, and in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	since     time.Time
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Set(ctx context.Context, chatID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.entries[key(chatID, userID)] = memoryEntry{since: now, expiresAt: now.Add(TTL)}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, chatID, userID int64) (*time.Time, error) {
	s.mu.RLock()
	entry, ok := s.entries[key(chatID, userID)]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if s.now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key(chatID, userID))
		s.mu.Unlock()
		return nil, nil
	}
	since := entry.since
	return &since, nil
}

func (s *MemoryStore) Clear(ctx context.Context, chatID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key(chatID, userID))
	return nil
}

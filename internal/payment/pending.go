package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// PendingStore keeps pending transactions across the redirect round trip
type PendingStore interface {
	Save(ctx context.Context, tx *PendingTransaction, ttl time.Duration) error

	// Consume returns the record and removes it in one step
	Consume(ctx context.Context, token string) (*PendingTransaction, error)

	Delete(ctx context.Context, token string) error
}

const pendingKeyPrefix = "pending_tx:"

func pendingKey(token string) string {
	return pendingKeyPrefix + token
}

// RedisPendingStore keeps pending transactions as JSON values with a TTL
type RedisPendingStore struct {
	rdb *redis.Client
}

// NewRedisPendingStore creates a Redis-backed store
func NewRedisPendingStore(rdb *redis.Client) *RedisPendingStore {
	return &RedisPendingStore{rdb: rdb}
}

// Save implements PendingStore
func (s *RedisPendingStore) Save(ctx context.Context, tx *PendingTransaction, ttl time.Duration) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to encode pending transaction: %w", err)
	}
	if err := s.rdb.Set(ctx, pendingKey(tx.Token), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save pending transaction: %w", err)
	}
	return nil
}

// Consume implements PendingStore using GETDEL
func (s *RedisPendingStore) Consume(ctx context.Context, token string) (*PendingTransaction, error) {
	val, err := s.rdb.GetDel(ctx, pendingKey(token)).Bytes()
	if err == redis.Nil {
		return nil, ErrPendingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read pending transaction: %w", err)
	}

	var tx PendingTransaction
	if err := json.Unmarshal(val, &tx); err != nil {
		return nil, fmt.Errorf("failed to decode pending transaction: %w", err)
	}
	return &tx, nil
}

// Delete implements PendingStore
func (s *RedisPendingStore) Delete(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, pendingKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete pending transaction: %w", err)
	}
	return nil
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryPendingStore is a process-local store for development and tests.
// Records are kept serialized so readers never share state with writers.
type MemoryPendingStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryPendingStore creates an empty in-process store
func NewMemoryPendingStore() *MemoryPendingStore {
	return &MemoryPendingStore{entries: make(map[string]memoryEntry), now: time.Now}
}

// Save implements PendingStore
func (s *MemoryPendingStore) Save(_ context.Context, tx *PendingTransaction, ttl time.Duration) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to encode pending transaction: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[tx.Token] = memoryEntry{data: data, expiresAt: s.now().Add(ttl)}
	return nil
}

// Consume implements PendingStore
func (s *MemoryPendingStore) Consume(_ context.Context, token string) (*PendingTransaction, error) {
	s.mu.Lock()
	entry, ok := s.entries[token]
	delete(s.entries, token)
	s.mu.Unlock()

	if !ok || !s.now().Before(entry.expiresAt) {
		return nil, ErrPendingNotFound
	}

	var tx PendingTransaction
	if err := json.Unmarshal(entry.data, &tx); err != nil {
		return nil, fmt.Errorf("failed to decode pending transaction: %w", err)
	}
	return &tx, nil
}

// Delete implements PendingStore
func (s *MemoryPendingStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.entries, token)
	s.mu.Unlock()
	return nil
}

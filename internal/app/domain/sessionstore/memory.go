package sessionstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps entries in process. Entries do not survive a restart and
// are not shared between replicas.
type MemoryStore struct {
	cache  *cache.Cache
	logger *zap.Logger
}

func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryStore{
		cache:  cache.New(time.Hour, 10*time.Minute),
		logger: logger,
	}
}

func (m *MemoryStore) Put(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode session entry %s: %w", key, err)
	}
	m.cache.Set(key, data, ttlOrNever(ttl))
	m.logger.Debug("Session set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (m *MemoryStore) PutIfAbsent(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("failed to encode session entry %s: %w", key, err)
	}
	// Add is atomic and fails when a live entry already exists.
	if err := m.cache.Add(key, data, ttlOrNever(ttl)); err != nil {
		m.logger.Debug("Session entry already present", zap.String("key", key))
		return false, nil
	}
	return true, nil
}

func (m *MemoryStore) Get(_ context.Context, key string, dst any) error {
	v, found := m.cache.Get(key)
	if !found {
		m.logger.Debug("Session miss", zap.String("key", key))
		return ErrNotFound
	}
	data, ok := v.([]byte)
	if !ok {
		return fmt.Errorf("session entry %s has unexpected type %T", key, v)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode session entry %s: %w", key, err)
	}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.cache.Delete(key)
	m.logger.Debug("Session delete", zap.String("key", key))
	return nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func ttlOrNever(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return cache.NoExpiration
	}
	return ttl
}

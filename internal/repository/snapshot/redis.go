package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/ragdex/internal/db"
	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/domain/corpus"
)

// DefaultRedisKey is where the snapshot lives when no key is configured.
const DefaultRedisKey = "ragdex:vector_store"

// kv is the consumer interface for the redis snapshot driver (ISP).
type kv interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// RedisRepository persists the vector snapshot under a single key in
// Redis/Valkey. Same bytes as the file driver; for deployments where the
// ingest job and the server do not share a filesystem.
type RedisRepository struct {
	store kv
	key   string
}

// NewRedisRepository creates a redis-backed snapshot repository.
// An empty key falls back to DefaultRedisKey.
func NewRedisRepository(store kv, key string) *RedisRepository {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisRepository{store: store, key: key}
}

// Load reads and validates the snapshot value.
func (r *RedisRepository) Load(ctx context.Context) (corpus.Snapshot, error) {
	data, err := r.store.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return corpus.Snapshot{}, fmt.Errorf("%s: %w", r.key, domain.ErrSnapshotNotFound)
		}
		return corpus.Snapshot{}, fmt.Errorf("read snapshot %s: %w", r.key, err)
	}
	return decodeSnapshot(data)
}

// Save writes entries as a full replacement of any prior value.
func (r *RedisRepository) Save(ctx context.Context, entries []corpus.Entry) error {
	data, err := encodeEntries(entries)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, r.key, data); err != nil {
		return fmt.Errorf("write snapshot %s: %w", r.key, err)
	}
	return nil
}

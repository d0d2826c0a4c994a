package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/casimir-one/casimir-go/pkg/journal"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Key prefixes for namespacing in Redis
const (
	keyPrefixRecord      = "casimir:journal:record:"
	keyPrefixEntity      = "casimir:journal:entity:"
	keySchemaVersion     = "casimir:journal:metadata:schema_version"
	currentSchemaVersion = "v1"
)

// RedisJournal is a journal shared between processes through Redis.
// Each entity has a sorted set of record ids scored by creation time.
type RedisJournal struct {
	client    *redis.Client
	logger    *zap.Logger
	keyPrefix string
	mu        sync.RWMutex
	closed    bool
}

var _ journal.IJournal = (*RedisJournal)(nil)

// RedisConfig holds the configuration for connecting to Redis
type RedisConfig struct {
	// Address is the Redis server address (host:port)
	Address string
	// Password is the optional Redis password
	Password string
	// DB is the Redis database number (0-15)
	DB int
	// KeyPrefix is prepended to every key, e.g. "tenant1:".
	KeyPrefix string
}

func NewRedisJournal(cfg *RedisConfig, logger *zap.Logger) (*RedisJournal, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	rj := &RedisJournal{
		client:    client,
		logger:    logger,
		keyPrefix: cfg.KeyPrefix,
	}

	if err := rj.initSchema(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Sugar().Infow("Redis journal initialized", "address", cfg.Address, "db", cfg.DB, "key_prefix", cfg.KeyPrefix)
	return rj, nil
}

func (r *RedisJournal) prefixKey(key string) string {
	return r.keyPrefix + key
}

func (r *RedisJournal) recordKey(id string) string {
	return r.prefixKey(keyPrefixRecord + id)
}

func (r *RedisJournal) entityKey(entityID string) string {
	return r.prefixKey(keyPrefixEntity + entityID)
}

func (r *RedisJournal) initSchema(ctx context.Context) error {
	schemaKey := r.prefixKey(keySchemaVersion)

	existingVersion, err := r.client.Get(ctx, schemaKey).Result()
	if err == redis.Nil {
		return r.client.Set(ctx, schemaKey, currentSchemaVersion, 0).Err()
	}
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if existingVersion != currentSchemaVersion {
		return fmt.Errorf("unsupported schema version: %s (expected: %s)", existingVersion, currentSchemaVersion)
	}
	return nil
}

func (r *RedisJournal) Save(record *journal.Record) error {
	if err := journal.ValidateRecord(record); err != nil {
		return err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return fmt.Errorf("journal is closed")
	}

	ctx := context.Background()

	data, err := journal.MarshalRecord(record)
	if err != nil {
		return err
	}

	id := record.ID.String()
	existing, err := r.load(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	if existing != nil && existing.EntityID != record.EntityID {
		pipe.ZRem(ctx, r.entityKey(existing.EntityID), id)
	}
	pipe.Set(ctx, r.recordKey(id), data, 0)
	pipe.ZAdd(ctx, r.entityKey(record.EntityID), redis.Z{
		Score:  float64(record.CreatedAt.UnixMilli()),
		Member: id,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

func (r *RedisJournal) load(ctx context.Context, id string) (*journal.Record, error) {
	data, err := r.client.Get(ctx, r.recordKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record: %w", err)
	}
	return journal.UnmarshalRecord(data)
}

func (r *RedisJournal) Load(id uuid.UUID) (*journal.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, fmt.Errorf("journal is closed")
	}
	return r.load(context.Background(), id.String())
}

func (r *RedisJournal) ListByEntity(entityID string) ([]*journal.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, fmt.Errorf("journal is closed")
	}

	ctx := context.Background()
	indexKey := r.entityKey(entityID)

	ids, err := r.client.ZRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list record ids: %w", err)
	}
	records := make([]*journal.Record, 0, len(ids))
	if len(ids) == 0 {
		return records, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.recordKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch records: %w", err)
	}

	for i, val := range values {
		if val == nil {
			// Key was in index but doesn't exist - clean up index
			r.client.ZRem(ctx, indexKey, ids[i])
			continue
		}
		data, ok := val.(string)
		if !ok {
			r.logger.Sugar().Warnw("Unexpected value type for Record", "key", keys[i])
			continue
		}
		record, err := journal.UnmarshalRecord([]byte(data))
		if err != nil {
			r.logger.Sugar().Warnw("Failed to unmarshal Record, skipping", "key", keys[i], "error", err)
			continue
		}
		records = append(records, record)
	}

	journal.SortByCreatedAt(records)
	return records, nil
}

func (r *RedisJournal) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	if err := r.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis client: %w", err)
	}

	r.logger.Sugar().Info("Redis journal closed")
	return nil
}

func (r *RedisJournal) HealthCheck() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return fmt.Errorf("journal is closed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}

	_, err := r.client.Get(ctx, r.prefixKey(keySchemaVersion)).Result()
	if err == redis.Nil {
		return fmt.Errorf("schema version not found - database may not be properly initialized")
	}
	if err != nil {
		return fmt.Errorf("failed to verify schema version: %w", err)
	}
	return nil
}

package badger

import (
	"context"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/casimir-one/casimir-go/pkg/journal"
	badgerdb "github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Key prefixes for namespacing
const (
	keyPrefixRecord      = "record:"
	keyPrefixEntity      = "entity:"
	keySchemaVersion     = "metadata:schema_version"
	currentSchemaVersion = "v1"
)

// BadgerJournal is a durable, disk-based journal.
type BadgerJournal struct {
	db       *badgerdb.DB
	logger   *zap.Logger
	gcCancel context.CancelFunc
	gcWg     sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
}

var _ journal.IJournal = (*BadgerJournal)(nil)

// NewBadgerJournal opens a journal at dataPath with SyncWrites enabled and
// starts a background value log GC.
func NewBadgerJournal(dataPath string, logger *zap.Logger) (*BadgerJournal, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	absPath, err := filepath.Abs(dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	opts := badgerdb.DefaultOptions(absPath)
	opts.Logger = &badgerLoggerAdapter{logger: logger}
	opts.SyncWrites = true
	opts.CompactL0OnClose = true
	opts.NumVersionsToKeep = 1

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database at %s: %w", absPath, err)
	}

	bj := &BadgerJournal{
		db:     db,
		logger: logger,
	}

	if err := bj.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	bj.gcCancel = cancel
	bj.gcWg.Add(1)
	go bj.runGC(ctx)

	logger.Sugar().Infow("Badger journal initialized", "path", absPath)
	return bj, nil
}

func (b *BadgerJournal) initSchema() error {
	return b.db.Update(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(keySchemaVersion))
		if err == badgerdb.ErrKeyNotFound {
			return txn.Set([]byte(keySchemaVersion), []byte(currentSchemaVersion))
		}
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}

		var existingVersion string
		err = item.Value(func(val []byte) error {
			existingVersion = string(val)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to read schema version value: %w", err)
		}
		if existingVersion != currentSchemaVersion {
			return fmt.Errorf("unsupported schema version: %s (expected: %s)", existingVersion, currentSchemaVersion)
		}
		return nil
	})
}

func (b *BadgerJournal) runGC(ctx context.Context) {
	defer b.gcWg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			err := b.db.RunValueLogGC(0.5)
			if err != nil && err != badgerdb.ErrNoRewrite {
				b.logger.Sugar().Warnw("Badger GC error", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func recordKey(id uuid.UUID) []byte {
	return []byte(keyPrefixRecord + id.String())
}

// entityPrefix hex-encodes the entity id so ids containing the separator
// cannot share a prefix.
func entityPrefix(entityID string) []byte {
	return []byte(keyPrefixEntity + hex.EncodeToString([]byte(entityID)) + ":")
}

// entityIndexKey sorts lexically by creation time within an entity.
func entityIndexKey(r *journal.Record) []byte {
	return append(entityPrefix(r.EntityID), []byte(fmt.Sprintf("%020d:%s", r.CreatedAt.UnixNano(), r.ID))...)
}

func readValue(item *badgerdb.Item) ([]byte, error) {
	var data []byte
	err := item.Value(func(val []byte) error {
		data = append([]byte{}, val...)
		return nil
	})
	return data, err
}

func (b *BadgerJournal) Save(record *journal.Record) error {
	if err := journal.ValidateRecord(record); err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return fmt.Errorf("journal is closed")
	}

	data, err := journal.MarshalRecord(record)
	if err != nil {
		return err
	}

	return b.db.Update(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(recordKey(record.ID))
		switch {
		case err == badgerdb.ErrKeyNotFound:
		case err != nil:
			return fmt.Errorf("failed to read existing record: %w", err)
		default:
			existingData, err := readValue(item)
			if err != nil {
				return fmt.Errorf("failed to read existing record: %w", err)
			}
			existing, err := journal.UnmarshalRecord(existingData)
			if err != nil {
				return err
			}
			if err := txn.Delete(entityIndexKey(existing)); err != nil {
				return fmt.Errorf("failed to delete stale index entry: %w", err)
			}
		}

		if err := txn.Set(recordKey(record.ID), data); err != nil {
			return fmt.Errorf("failed to save record: %w", err)
		}
		return txn.Set(entityIndexKey(record), []byte(record.ID.String()))
	})
}

func (b *BadgerJournal) Load(id uuid.UUID) (*journal.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("journal is closed")
	}

	var data []byte
	err := b.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(recordKey(id))
		if err == badgerdb.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		data, err = readValue(item)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load record: %w", err)
	}
	if data == nil {
		return nil, nil
	}
	return journal.UnmarshalRecord(data)
}

func (b *BadgerJournal) ListByEntity(entityID string) ([]*journal.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("journal is closed")
	}

	records := make([]*journal.Record, 0)
	err := b.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = entityPrefix(entityID)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			idBytes, err := readValue(it.Item())
			if err != nil {
				return fmt.Errorf("failed to read index value: %w", err)
			}
			id, err := uuid.ParseBytes(idBytes)
			if err != nil {
				b.logger.Sugar().Warnw("Invalid journal index entry, skipping",
					"key", string(it.Item().Key()), "error", err)
				continue
			}

			item, err := txn.Get(recordKey(id))
			if err == badgerdb.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			data, err := readValue(item)
			if err != nil {
				return err
			}
			record, err := journal.UnmarshalRecord(data)
			if err != nil {
				b.logger.Sugar().Warnw("Failed to unmarshal Record, skipping",
					"id", id.String(), "error", err)
				continue
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	journal.SortByCreatedAt(records)
	return records, nil
}

func (b *BadgerJournal) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	if b.gcCancel != nil {
		b.gcCancel()
	}
	b.gcWg.Wait()

	if err := b.db.Close(); err != nil {
		return fmt.Errorf("failed to close badger database: %w", err)
	}

	b.logger.Sugar().Info("Badger journal closed")
	return nil
}

func (b *BadgerJournal) HealthCheck() error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return fmt.Errorf("journal is closed")
	}

	return b.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get([]byte(keySchemaVersion))
		if err == badgerdb.ErrKeyNotFound {
			return fmt.Errorf("schema version not found - database may be corrupted")
		}
		return err
	})
}

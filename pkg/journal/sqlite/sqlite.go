// Package sqlite provides a SQLite-backed transaction journal.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/casimir-one/casimir-go/pkg/journal"
	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS journal_records (
	id         TEXT PRIMARY KEY,
	entity_id  TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	data       BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS journal_records_entity ON journal_records (entity_id, created_at, id);
`

// SqliteJournal stores records in a single SQLite table indexed by entity.
type SqliteJournal struct {
	db     *sql.DB
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
}

var _ journal.IJournal = (*SqliteJournal)(nil)

// NewSqliteJournal opens (or creates) the database file at path.
func NewSqliteJournal(path string, logger *zap.Logger) (*SqliteJournal, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("journal path is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// a single connection serializes writers
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	sj := &SqliteJournal{db: db, logger: logger}
	if err := sj.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Sugar().Infow("SQLite journal initialized", "path", path)
	return sj, nil
}

func (s *SqliteJournal) initSchema() error {
	var version int
	if err := s.db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("unsupported schema version %d (expected <= %d)", version, schemaVersion)
	}
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	if version < schemaVersion {
		if _, err := s.db.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, schemaVersion)); err != nil {
			return fmt.Errorf("failed to write schema version: %w", err)
		}
	}
	return nil
}

func (s *SqliteJournal) Save(record *journal.Record) error {
	if err := journal.ValidateRecord(record); err != nil {
		return err
	}
	data, err := journal.MarshalRecord(record)
	if err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("journal is closed")
	}

	_, err = s.db.Exec(
		`INSERT INTO journal_records (id, entity_id, created_at, data) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   entity_id = excluded.entity_id,
		   created_at = excluded.created_at,
		   data = excluded.data`,
		record.ID.String(),
		record.EntityID,
		record.CreatedAt.UTC().UnixNano(),
		data,
	)
	if err != nil {
		return fmt.Errorf("failed to save record %s: %w", record.ID, err)
	}
	return nil
}

func (s *SqliteJournal) Load(id uuid.UUID) (*journal.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("journal is closed")
	}

	var data []byte
	err := s.db.QueryRow(`SELECT data FROM journal_records WHERE id = ?`, id.String()).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record %s: %w", id, err)
	}
	return journal.UnmarshalRecord(data)
}

func (s *SqliteJournal) ListByEntity(entityID string) ([]*journal.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("journal is closed")
	}

	rows, err := s.db.Query(
		`SELECT data FROM journal_records WHERE entity_id = ? ORDER BY created_at, id`,
		entityID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list records for %s: %w", entityID, err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]*journal.Record, 0)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		r, err := journal.UnmarshalRecord(data)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	journal.SortByCreatedAt(out)
	return out, nil
}

func (s *SqliteJournal) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close sqlite db: %w", err)
	}
	s.logger.Sugar().Infow("SQLite journal closed")
	return nil
}

func (s *SqliteJournal) HealthCheck() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("journal is closed")
	}
	if err := s.db.Ping(); err != nil {
		return fmt.Errorf("sqlite health check failed: %w", err)
	}
	return nil
}

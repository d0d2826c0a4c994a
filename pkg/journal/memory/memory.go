package memory

import (
	"fmt"
	"sync"

	"github.com/casimir-one/casimir-go/pkg/journal"
	"github.com/google/uuid"
)

// MemoryJournal is an in-memory implementation of IJournal.
//
// All data is lost when the process exits. Records are copied on the way in
// and out to prevent external mutation.
type MemoryJournal struct {
	mu sync.RWMutex

	records  map[uuid.UUID]*journal.Record
	byEntity map[string][]uuid.UUID

	closed bool
}

var _ journal.IJournal = (*MemoryJournal)(nil)

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{
		records:  make(map[uuid.UUID]*journal.Record),
		byEntity: make(map[string][]uuid.UUID),
	}
}

func (m *MemoryJournal) Save(record *journal.Record) error {
	if err := journal.ValidateRecord(record); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("journal is closed")
	}

	existing, ok := m.records[record.ID]
	if ok && existing.EntityID != record.EntityID {
		m.removeFromEntity(existing.EntityID, record.ID)
	}
	if !ok || existing.EntityID != record.EntityID {
		m.byEntity[record.EntityID] = append(m.byEntity[record.EntityID], record.ID)
	}
	cp := *record
	m.records[record.ID] = &cp
	return nil
}

func (m *MemoryJournal) removeFromEntity(entityID string, id uuid.UUID) {
	ids := m.byEntity[entityID]
	for i, existing := range ids {
		if existing == id {
			m.byEntity[entityID] = append(ids[:i], ids[i+1:]...)
			return
		}
	}
}

func (m *MemoryJournal) Load(id uuid.UUID) (*journal.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("journal is closed")
	}

	record, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	cp := *record
	return &cp, nil
}

func (m *MemoryJournal) ListByEntity(entityID string) ([]*journal.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("journal is closed")
	}

	out := make([]*journal.Record, 0, len(m.byEntity[entityID]))
	for _, id := range m.byEntity[entityID] {
		cp := *m.records[id]
		out = append(out, &cp)
	}
	journal.SortByCreatedAt(out)
	return out, nil
}

func (m *MemoryJournal) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}

func (m *MemoryJournal) HealthCheck() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return fmt.Errorf("journal is closed")
	}
	return nil
}

// Package journaltest holds the behaviour every IJournal backend must share.
package journaltest

import (
	"fmt"
	"testing"
	"time"

	"github.com/casimir-one/casimir-go/pkg/chainTx"
	"github.com/casimir-one/casimir-go/pkg/journal"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// Factory returns a fresh, empty journal. The suite closes it.
type Factory func(t *testing.T) journal.IJournal

// NewTestRecord returns a record for entityID created at the given offset from a fixed base time.
func NewTestRecord(entityID string, offset time.Duration) *journal.Record {
	return &journal.Record{
		ID:        uuid.New(),
		EntityID:  entityID,
		Operation: "updateUser",
		Strategy:  chainTx.SigningStrategy_LocalKey,
		TxHash:    "0xabc",
		Status:    journal.Status_Dispatched,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(offset),
	}
}

// Run exercises a journal backend.
func Run(t *testing.T, newJournal Factory) {
	t.Run("save and load", func(t *testing.T) {
		j := newJournal(t)
		defer func() { _ = j.Close() }()

		r := NewTestRecord("u1", 0)
		require.NoError(t, j.Save(r))

		loaded, err := j.Load(r.ID)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, r.ID, loaded.ID)
		assert.Equal(t, r.EntityID, loaded.EntityID)
		assert.Equal(t, r.Status, loaded.Status)
		assert.Equal(t, r.Strategy, loaded.Strategy)
		assert.True(t, r.CreatedAt.Equal(loaded.CreatedAt))
	})

	t.Run("load not found", func(t *testing.T) {
		j := newJournal(t)
		defer func() { _ = j.Close() }()

		loaded, err := j.Load(uuid.New())
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("save invalid", func(t *testing.T) {
		j := newJournal(t)
		defer func() { _ = j.Close() }()

		require.Error(t, j.Save(nil))
		require.Error(t, j.Save(&journal.Record{ID: uuid.New()}))
	})

	t.Run("overwrite", func(t *testing.T) {
		j := newJournal(t)
		defer func() { _ = j.Close() }()

		r := NewTestRecord("u1", 0)
		require.NoError(t, j.Save(r))
		r.Status = journal.Status_Failed
		require.NoError(t, j.Save(r))

		loaded, err := j.Load(r.ID)
		require.NoError(t, err)
		assert.Equal(t, journal.Status_Failed, loaded.Status)

		list, err := j.ListByEntity("u1")
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("list by entity", func(t *testing.T) {
		j := newJournal(t)
		defer func() { _ = j.Close() }()

		entity := "entity-" + uuid.NewString()
		third := NewTestRecord(entity, 3*time.Second)
		first := NewTestRecord(entity, time.Second)
		second := NewTestRecord(entity, 2*time.Second)
		for _, r := range []*journal.Record{third, first, second} {
			require.NoError(t, j.Save(r))
		}
		require.NoError(t, j.Save(NewTestRecord(entity+":other", 0)))

		list, err := j.ListByEntity(entity)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, first.ID, list[0].ID)
		assert.Equal(t, second.ID, list[1].ID)
		assert.Equal(t, third.ID, list[2].ID)

		empty, err := j.ListByEntity("missing-" + uuid.NewString())
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("health check and close", func(t *testing.T) {
		j := newJournal(t)
		require.NoError(t, j.HealthCheck())
		require.NoError(t, j.Close())
		require.NoError(t, j.Close())

		require.Error(t, j.HealthCheck())
		require.Error(t, j.Save(NewTestRecord("u1", 0)))
		_, err := j.Load(uuid.New())
		require.Error(t, err)
		_, err = j.ListByEntity("u1")
		require.Error(t, err)
	})

	t.Run("concurrent saves", func(t *testing.T) {
		j := newJournal(t)
		defer func() { _ = j.Close() }()

		entity := "entity-" + uuid.NewString()
		var g errgroup.Group
		for i := 0; i < 20; i++ {
			offset := time.Duration(i) * time.Millisecond
			g.Go(func() error {
				return j.Save(NewTestRecord(entity, offset))
			})
		}
		require.NoError(t, g.Wait())

		list, err := j.ListByEntity(entity)
		require.NoError(t, err)
		assert.Len(t, list, 20, fmt.Sprintf("entity %s", entity))
	})
}

// Package journal records every signed transaction the services produce.
package journal

import (
	"time"

	"github.com/casimir-one/casimir-go/pkg/chainTx"
	"github.com/google/uuid"
)

// Status is the outcome of a journaled transaction.
type Status string

const (
	// Status_Returned means the envelope was handed back to the caller unsent.
	Status_Returned Status = "returned"
	// Status_Dispatched means the portal accepted the envelope.
	Status_Dispatched Status = "dispatched"
	// Status_Failed means the transport reported an error.
	Status_Failed Status = "failed"
)

// Record describes one signed transaction.
type Record struct {
	ID        uuid.UUID               `json:"id"`
	EntityID  string                  `json:"entityId"`
	Operation string                  `json:"operation"`
	Strategy  chainTx.SigningStrategy `json:"strategy"`
	TxHash    string                  `json:"txHash"`
	Status    Status                  `json:"status"`
	Error     string                  `json:"error,omitempty"`
	CreatedAt time.Time               `json:"createdAt"`
}

// NewRecord returns a record for signed with a fresh id.
func NewRecord(operation string, signed *chainTx.SignedTransaction, status Status) *Record {
	return &Record{
		ID:        uuid.New(),
		EntityID:  signed.Packed().EntityID(),
		Operation: operation,
		Strategy:  signed.Strategy(),
		TxHash:    signed.Packed().Hash().Hex(),
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
}

// IJournal persists transaction records.
// All implementations must be thread-safe.
type IJournal interface {
	// Save persists a record. Saving an existing id overwrites it.
	Save(record *Record) error

	// Load retrieves a record by id.
	// Returns nil if the record doesn't exist, error only on storage failure.
	Load(id uuid.UUID) (*Record, error)

	// ListByEntity returns the records of an entity sorted by CreatedAt (ascending).
	// Returns empty slice if none exist, error only on storage failure.
	ListByEntity(entityID string) ([]*Record, error)

	// Close cleanly shuts down the journal. Idempotent.
	Close() error

	// HealthCheck verifies the journal is operational.
	HealthCheck() error
}

package journal

import (
	"encoding/json"
	"fmt"
	"sort"
)

// MarshalRecord serializes a Record to JSON bytes.
func MarshalRecord(r *Record) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("cannot marshal nil Record")
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal Record to JSON: %w", err)
	}
	return data, nil
}

// UnmarshalRecord deserializes a Record from JSON bytes.
func UnmarshalRecord(data []byte) (*Record, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot unmarshal empty data")
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON to Record: %w", err)
	}
	return &r, nil
}

// SortByCreatedAt orders records oldest first, breaking ties by id.
func SortByCreatedAt(records []*Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID.String() < records[j].ID.String()
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
}

// ValidateRecord checks the fields every backend indexes on.
func ValidateRecord(r *Record) error {
	if r == nil {
		return fmt.Errorf("cannot save nil Record")
	}
	if r.EntityID == "" {
		return fmt.Errorf("record entity id is required")
	}
	return nil
}

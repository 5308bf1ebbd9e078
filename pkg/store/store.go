// Package store persists computed layouts for asynchronous consumers.
//
// The collaboration graph itself is never persisted here — only engine
// output: final positions plus the parameters they were computed under.
// UI collaborators that render layouts out-of-band (or want a history of
// runs for a focal artist) fetch records by ID.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kcirtapfromspace/chordmap/pkg/graph"
)

// Record is one archived layout run.
type Record struct {
	ID           string       `bson:"_id" json:"id"`
	SnapshotHash string       `bson:"snapshot_hash" json:"snapshot_hash"`
	Layout       graph.Layout `bson:"layout" json:"layout"`
	CreatedAt    time.Time    `bson:"created_at" json:"created_at"`
}

// NewRecord builds a record with a fresh UUID and timestamp.
func NewRecord(snapshotHash string, l graph.Layout) Record {
	return Record{
		ID:           uuid.NewString(),
		SnapshotHash: snapshotHash,
		Layout:       l,
		CreatedAt:    time.Now().UTC(),
	}
}

// Store is the interface for layout archive backends.
type Store interface {
	// Save persists a record. Saving an existing ID overwrites it.
	Save(ctx context.Context, rec Record) error

	// Load retrieves a record by ID.
	// Returns an error with code LAYOUT_NOT_FOUND if it does not exist.
	Load(ctx context.Context, id string) (Record, error)

	// Recent returns up to limit records for a snapshot hash, newest first.
	Recent(ctx context.Context, snapshotHash string, limit int) ([]Record, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

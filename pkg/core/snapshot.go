package core

import (
	"context"
	"errors"
	"time"
)

// ErrNoSnapshot is returned by a SnapshotStore that holds no catalog.
var ErrNoSnapshot = errors.New("no catalog snapshot")

// Snapshot is a persisted catalog together with the time it was extracted.
type Snapshot struct {
	ID        string
	FetchedAt time.Time
	Catalog   *Catalog
}

// SnapshotStore persists the most recent catalog between processes.
type SnapshotStore interface {
	// Load returns the latest snapshot or ErrNoSnapshot.
	Load(ctx context.Context) (*Snapshot, error)
	// Save replaces any stored snapshot with c.
	Save(ctx context.Context, c *Catalog) (*Snapshot, error)
	// Delete removes every stored snapshot.
	Delete(ctx context.Context) error
	Close() error
}

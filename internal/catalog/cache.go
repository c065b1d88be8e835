// Package catalog keeps the catalog snapshot reported by the extraction tool.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/leapstack-labs/catalognav/internal/extractor"
	"github.com/leapstack-labs/catalognav/pkg/core"
)

// ErrNotFound is returned when an index or name does not resolve in the snapshot.
var ErrNotFound = errors.New("not found")

// Cache is a lazily populated catalog snapshot. Every read that finds the
// cache empty, or is asked to refresh, runs the extraction tool once and
// swaps the whole snapshot.
type Cache struct {
	runner extractor.Runner
	store  core.SnapshotStore
	logger *slog.Logger

	mu      sync.Mutex
	catalog *core.Catalog
	// skipStore is set by Clear so that the next read goes to the tool
	// instead of reloading the persisted snapshot.
	skipStore bool
}

// Option configures a Cache.
type Option func(*Cache)

// WithStore persists snapshots in store and reuses them across processes.
func WithStore(store core.SnapshotStore) Option {
	return func(c *Cache) {
		c.store = store
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates an empty cache backed by runner.
func New(runner extractor.Runner, opts ...Option) *Cache {
	c := &Cache{
		runner: runner,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Databases returns the databases of the snapshot, populating it first when
// the cache is empty or forceRefresh is set.
func (c *Cache) Databases(ctx context.Context, forceRefresh bool) ([]core.Database, error) {
	cat, err := c.snapshot(ctx, forceRefresh)
	if err != nil {
		return nil, err
	}
	return cat.Databases, nil
}

// Tables returns the tables of database dbID.
func (c *Cache) Tables(ctx context.Context, dbID int, forceRefresh bool) ([]core.Table, error) {
	cat, err := c.snapshot(ctx, forceRefresh)
	if err != nil {
		return nil, err
	}
	db, ok := cat.Database(dbID)
	if !ok {
		return nil, fmt.Errorf("database %d: %w", dbID, ErrNotFound)
	}
	return db.Tables, nil
}

// Fields returns the fields of table tableID in database dbID.
func (c *Cache) Fields(ctx context.Context, dbID, tableID int, forceRefresh bool) ([]core.Field, error) {
	cat, err := c.snapshot(ctx, forceRefresh)
	if err != nil {
		return nil, err
	}
	table, ok := cat.Table(dbID, tableID)
	if !ok {
		return nil, fmt.Errorf("table %d of database %d: %w", tableID, dbID, ErrNotFound)
	}
	return table.Fields, nil
}

// Snapshot returns the whole catalog, populating it if needed.
func (c *Cache) Snapshot(ctx context.Context) (*core.Catalog, error) {
	return c.snapshot(ctx, false)
}

// FindTable resolves a table by database and table name. The first match wins.
func (c *Cache) FindTable(ctx context.Context, dbName, tableName string) (*core.Table, error) {
	cat, err := c.snapshot(ctx, false)
	if err != nil {
		return nil, err
	}
	table, ok := cat.FindTable(dbName, tableName)
	if !ok {
		return nil, fmt.Errorf("table %s.%s: %w", dbName, tableName, ErrNotFound)
	}
	return table, nil
}

// FindRelatedTable resolves the table that linkName of table points to.
// Both tables live in database dbName of the same snapshot.
func (c *Cache) FindRelatedTable(ctx context.Context, dbName string, table *core.Table, linkName string) (*core.Table, error) {
	rel, ok := table.Relationship(linkName)
	if !ok {
		return nil, fmt.Errorf("link %s on %s: %w", linkName, table.Name, ErrNotFound)
	}
	return c.FindTable(ctx, dbName, rel.TableName)
}

// Clear discards the snapshot. The next read runs the extraction tool again.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.catalog = nil
	c.skipStore = true
	c.mu.Unlock()
	c.logger.Debug("catalog cleared")
}

// Refresh clears the cache and repopulates it immediately.
func (c *Cache) Refresh(ctx context.Context) (*core.Catalog, error) {
	c.Clear()
	if c.store != nil {
		if err := c.store.Delete(ctx); err != nil {
			c.logger.Warn("failed to delete persisted catalog", "error", err)
		}
	}
	return c.snapshot(ctx, true)
}

// Cached reports whether a snapshot is currently held in memory.
func (c *Cache) Cached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.catalog != nil
}

func (c *Cache) snapshot(ctx context.Context, forceRefresh bool) (*core.Catalog, error) {
	c.mu.Lock()
	cat, skipStore := c.catalog, c.skipStore
	c.mu.Unlock()

	if cat != nil && !forceRefresh {
		return cat, nil
	}

	if !forceRefresh && !skipStore && c.store != nil {
		if snap, err := c.store.Load(ctx); err == nil {
			c.logger.Debug("loaded persisted catalog", "id", snap.ID, "fetched_at", snap.FetchedAt)
			c.swap(snap.Catalog)
			return snap.Catalog, nil
		} else if !errors.Is(err, core.ErrNoSnapshot) {
			c.logger.Warn("failed to load persisted catalog", "error", err)
		}
	}

	cat, err := c.extract(ctx)
	if err != nil {
		return nil, err
	}
	c.swap(cat)

	if c.store != nil {
		if _, err := c.store.Save(ctx, cat); err != nil {
			c.logger.Warn("failed to persist catalog", "error", err)
		}
	}
	return cat, nil
}

func (c *Cache) swap(cat *core.Catalog) {
	c.mu.Lock()
	c.catalog = cat
	c.skipStore = false
	c.mu.Unlock()
}

func (c *Cache) extract(ctx context.Context) (*core.Catalog, error) {
	args := extractor.CatalogArgs()
	res, err := c.runner.Run(ctx, args...)
	if err != nil {
		return nil, err
	}
	if err := res.Check(args); err != nil {
		return nil, err
	}

	var cat core.Catalog
	if err := json.Unmarshal(res.Stdout, &cat); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	c.logger.Debug("catalog extracted", "databases", len(cat.Databases))
	return &cat, nil
}

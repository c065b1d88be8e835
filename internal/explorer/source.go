// Package explorer is the terminal catalog and record browser.
//
// The left side of the workflow is a tree of databases, tables, fields and
// links; opening a table shows its records in a grid whose link columns can
// be followed to related records.
package explorer

import (
	"context"

	"github.com/leapstack-labs/catalognav/internal/catalog"
	"github.com/leapstack-labs/catalognav/internal/tabledata"
	"github.com/leapstack-labs/catalognav/pkg/core"
)

// Source provides the catalog and record data shown by the explorer.
type Source interface {
	Snapshot(ctx context.Context) (*core.Catalog, error)
	Refresh(ctx context.Context) (*core.Catalog, error)
	GetTableData(ctx context.Context, link core.Link) (*core.TableView, error)
}

type cacheSource struct {
	*catalog.Cache
	fetcher *tabledata.Fetcher
}

// NewSource combines a catalog cache and a fetcher into a Source.
func NewSource(cache *catalog.Cache, fetcher *tabledata.Fetcher) Source {
	return &cacheSource{Cache: cache, fetcher: fetcher}
}

func (s *cacheSource) GetTableData(ctx context.Context, link core.Link) (*core.TableView, error) {
	return s.fetcher.GetTableData(ctx, link)
}

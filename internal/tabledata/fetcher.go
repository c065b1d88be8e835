// Package tabledata turns row dumps of the extraction tool into table views.
//
// Row data is never cached: every GetTableData call runs the tool. Column
// metadata comes from the catalog cache.
package tabledata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/catalognav/internal/catalog"
	"github.com/leapstack-labs/catalognav/internal/extractor"
	"github.com/leapstack-labs/catalognav/pkg/core"
)

var (
	// ErrTableNotFound is returned when the requested table is not in the catalog.
	ErrTableNotFound = errors.New("table not found")
	// ErrLinkNotFound is returned when a link does not name a relationship
	// of the table, or its target table is not in the catalog.
	ErrLinkNotFound = errors.New("link not found")
	// ErrNoColumns is returned for tables that declare no fields.
	ErrNoColumns = errors.New("table has no columns")
)

// Fetcher builds table views.
type Fetcher struct {
	cache  *catalog.Cache
	runner extractor.Runner
	logger *slog.Logger
}

// NewFetcher creates a Fetcher that resolves metadata through cache and
// reads rows through runner.
func NewFetcher(cache *catalog.Cache, runner extractor.Runner, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Fetcher{cache: cache, runner: runner, logger: logger}
}

// GetTableData returns the rows selected by link. When the link follows a
// relationship the view describes the related table.
func (f *Fetcher) GetTableData(ctx context.Context, link core.Link) (*core.TableView, error) {
	table, err := f.cache.FindTable(ctx, link.Database, link.Table)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrTableNotFound, link.Table)
		}
		return nil, err
	}

	if link.IsRelated() {
		table, err = f.cache.FindRelatedTable(ctx, link.Database, table, link.LinkName)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return nil, fmt.Errorf("%w: could not find table for link '%s'", ErrLinkNotFound, link.LinkName)
			}
			return nil, err
		}
	}

	args := extractor.TableArgs(link)
	res, err := f.runner.Run(ctx, args...)
	if err != nil {
		return nil, err
	}
	if err := res.Check(args); err != nil {
		return nil, err
	}

	// TODO(catalog): decide whether field-less tables that still have
	// relationships should be viewable; kept as an error for now.
	if len(table.Fields) == 0 {
		return nil, fmt.Errorf("%w: '%s'", ErrNoColumns, table.Name)
	}

	rows, err := decodeRows(res.Stdout)
	if err != nil {
		return nil, err
	}

	view := &core.TableView{
		Database: link.Database,
		Table:    table.Name,
		Columns:  Columns(table),
		Rows:     rows,
	}
	f.logger.Debug("table data fetched",
		"table", link.Title(),
		"link", link.LinkName,
		"rows", len(view.Rows),
	)
	return view, nil
}

// Columns returns the display columns of table: one generated link column
// per relationship followed by one column per field.
func Columns(table *core.Table) []core.Column {
	cols := make([]core.Column, 0, len(table.Relationships)+len(table.Fields))
	for _, rel := range table.Relationships {
		cols = append(cols, core.Column{
			Key:    rel.LinkName,
			Name:   core.LinkColumnName(rel.LinkName),
			IsLink: true,
		})
	}
	for _, field := range table.Fields {
		cols = append(cols, core.Column{
			Key:     field.Name,
			Name:    field.Name,
			IsArray: field.IsArray(),
		})
	}
	return cols
}

type rowDump struct {
	Rows []core.Row `json:"rows"`
}

func decodeRows(data []byte) ([]core.Row, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var dump rowDump
	if err := dec.Decode(&dump); err != nil {
		return nil, fmt.Errorf("failed to decode rows: %w", err)
	}
	if dump.Rows == nil {
		return []core.Row{}, nil
	}
	return dump.Rows, nil
}

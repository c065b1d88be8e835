// Package catalog serves the catalog browser page and the catalog and
// record JSON API of the UI.
package catalog

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	catalogcache "github.com/leapstack-labs/catalognav/internal/catalog"
	"github.com/leapstack-labs/catalognav/internal/tabledata"
	"github.com/leapstack-labs/catalognav/internal/ui/features/common"
	"github.com/leapstack-labs/catalognav/internal/ui/notifier"
	"github.com/leapstack-labs/catalognav/pkg/core"
)

// Handlers provides HTTP handlers for the catalog API.
type Handlers struct {
	cache   *catalogcache.Cache
	fetcher *tabledata.Fetcher
	notify  *notifier.Notifier
	logger  *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(cache *catalogcache.Cache, fetcher *tabledata.Fetcher, notify *notifier.Notifier, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{cache: cache, fetcher: fetcher, notify: notify, logger: logger}
}

// DatabaseItem is one entry of the database listing.
type DatabaseItem struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Tables int    `json:"tables"`
}

// TableItem is one entry of a table listing.
type TableItem struct {
	ID            int                 `json:"id"`
	Name          string              `json:"name"`
	Type          string              `json:"type,omitempty"`
	Relationships []core.Relationship `json:"relationships"`
}

// RefreshResult is returned by the refresh endpoint.
type RefreshResult struct {
	Databases int `json:"databases"`
}

func forceRefresh(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	return v
}

func pathInt(r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	return n, err == nil
}

// Databases lists the catalog's databases.
func (h *Handlers) Databases(w http.ResponseWriter, r *http.Request) {
	dbs, err := h.cache.Databases(r.Context(), forceRefresh(r))
	if err != nil {
		common.WriteError(w, err)
		return
	}

	items := make([]DatabaseItem, 0, len(dbs))
	for i, db := range dbs {
		items = append(items, DatabaseItem{ID: i, Name: db.Name, Tables: len(db.Tables)})
	}
	common.WriteJSON(w, http.StatusOK, items)
}

// Tables lists the tables of one database.
func (h *Handlers) Tables(w http.ResponseWriter, r *http.Request) {
	dbID, ok := pathInt(r, "db")
	if !ok {
		common.WriteJSON(w, http.StatusBadRequest, common.ErrorBody{Error: "database id must be a number"})
		return
	}

	tables, err := h.cache.Tables(r.Context(), dbID, forceRefresh(r))
	if err != nil {
		common.WriteError(w, err)
		return
	}

	items := make([]TableItem, 0, len(tables))
	for i, t := range tables {
		rels := t.Relationships
		if rels == nil {
			rels = []core.Relationship{}
		}
		items = append(items, TableItem{ID: i, Name: t.Name, Type: t.Type, Relationships: rels})
	}
	common.WriteJSON(w, http.StatusOK, items)
}

// Fields lists the fields of one table.
func (h *Handlers) Fields(w http.ResponseWriter, r *http.Request) {
	dbID, okDB := pathInt(r, "db")
	tableID, okTable := pathInt(r, "table")
	if !okDB || !okTable {
		common.WriteJSON(w, http.StatusBadRequest, common.ErrorBody{Error: "database and table ids must be numbers"})
		return
	}

	fields, err := h.cache.Fields(r.Context(), dbID, tableID, forceRefresh(r))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if fields == nil {
		fields = []core.Field{}
	}
	common.WriteJSON(w, http.StatusOK, fields)
}

// Records returns the table view of a table, or of the rows related to one
// of its rows when link_name and link_row are given.
func (h *Handlers) Records(w http.ResponseWriter, r *http.Request) {
	link := linkFromRequest(r)
	view, err := h.fetcher.GetTableData(r.Context(), link)
	if err != nil {
		h.logger.Debug("records request failed", "link", link.Title(), "error", err)
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, view)
}

// Refresh discards the catalog, extracts it again and tells every client.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	cat, err := h.cache.Refresh(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	h.notify.Broadcast(notifier.CatalogRefreshed)
	common.WriteJSON(w, http.StatusOK, RefreshResult{Databases: len(cat.Databases)})
}

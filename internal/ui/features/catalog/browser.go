package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/catalognav/internal/tabledata"
	"github.com/leapstack-labs/catalognav/internal/ui/features/catalog/pages"
	"github.com/leapstack-labs/catalognav/internal/ui/notifier"
)

const pageTitle = "catalognav"

// Page renders the browser with the catalog tree already in place.
func (h *Handlers) Page(w http.ResponseWriter, r *http.Request) {
	tree, status := h.catalogState(r.Context(), false)
	if err := pages.BrowserPage(pageTitle, tree, status).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// TreeSSE patches the catalog tree.
func (h *Handlers) TreeSSE(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	h.sendCatalog(r.Context(), sse, false)
}

// RecordsSSE patches the grid with the rows of a table, or with the rows
// related to one of its rows when link_name and link_row are given.
func (h *Handlers) RecordsSSE(w http.ResponseWriter, r *http.Request) {
	link := linkFromRequest(r)
	sse := datastar.NewSSE(w, r)

	view, err := h.fetcher.GetTableData(r.Context(), link)
	switch {
	case errors.Is(err, tabledata.ErrNoColumns):
		patch(sse,
			pages.TableGrid(pages.GridData{}),
			pages.StatusLine(pages.StatusData{Kind: pages.StatusNotice, Message: err.Error()}),
		)
	case err != nil:
		h.logger.Debug("records request failed", "link", link.Title(), "error", err)
		patch(sse, pages.StatusLine(errorStatus(err)))
	default:
		patch(sse,
			pages.TableGrid(buildGrid(link, view)),
			pages.StatusLine(pages.StatusData{Message: fmt.Sprintf("%s.%s: %d rows", view.Database, view.Table, len(view.Rows))}),
		)
	}
}

// RefreshSSE re-extracts the catalog, patches the tree and tells every
// other open page through the notifier.
func (h *Handlers) RefreshSSE(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	if _, err := h.cache.Refresh(r.Context()); err != nil {
		patch(sse, pages.StatusLine(errorStatus(err)))
		return
	}
	h.notify.Broadcast(notifier.CatalogRefreshed)
	h.sendCatalog(r.Context(), sse, true)
}

// UpdatesSSE is the long-lived stream of an open page. It re-sends the
// tree whenever the catalog is refreshed or the extractor changes.
func (h *Handlers) UpdatesSSE(w http.ResponseWriter, r *http.Request) {
	events := h.notify.Subscribe()
	defer h.notify.Unsubscribe(events)

	sse := datastar.NewSSE(w, r)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			h.sendCatalog(ctx, sse, true)
		}
	}
}

func (h *Handlers) sendCatalog(ctx context.Context, sse *datastar.ServerSentEventGenerator, refreshed bool) {
	tree, status := h.catalogState(ctx, refreshed)
	patch(sse, pages.CatalogTree(tree), pages.StatusLine(status))
}

func (h *Handlers) catalogState(ctx context.Context, refreshed bool) (pages.TreeData, pages.StatusData) {
	cat, err := h.cache.Snapshot(ctx)
	if err != nil {
		return pages.TreeData{}, errorStatus(err)
	}
	msg := fmt.Sprintf("%d databases", len(cat.Databases))
	if refreshed {
		msg = "Catalog refreshed: " + msg
	}
	return buildTree(cat), pages.StatusData{Message: msg}
}

func errorStatus(err error) pages.StatusData {
	return pages.StatusData{Kind: pages.StatusError, Message: "Error: " + err.Error()}
}

// patch sends components in order and stops at the first failure.
func patch(sse *datastar.ServerSentEventGenerator, components ...templ.Component) {
	for _, c := range components {
		if err := sse.PatchElementTempl(c); err != nil {
			_ = sse.ConsoleError(err)
			return
		}
	}
}

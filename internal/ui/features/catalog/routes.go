package catalog

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	catalogcache "github.com/leapstack-labs/catalognav/internal/catalog"
	"github.com/leapstack-labs/catalognav/internal/tabledata"
	"github.com/leapstack-labs/catalognav/internal/ui/notifier"
)

// SetupRoutes registers the browser page, its SSE endpoints and the JSON API.
func SetupRoutes(
	router chi.Router,
	cache *catalogcache.Cache,
	fetcher *tabledata.Fetcher,
	notify *notifier.Notifier,
	logger *slog.Logger,
) {
	handlers := NewHandlers(cache, fetcher, notify, logger)

	// Browser page, patched over datastar SSE
	router.Get("/", handlers.Page)
	router.Route("/ui", func(r chi.Router) {
		r.Get("/tree", handlers.TreeSSE)
		r.Get("/records/{db}/{table}", handlers.RecordsSSE)
		r.Post("/refresh", handlers.RefreshSSE)
		r.Get("/updates", handlers.UpdatesSSE) // Long-lived
	})

	// JSON API
	router.Route("/api", func(r chi.Router) {
		r.Get("/databases", handlers.Databases)
		r.Get("/databases/{db}/tables", handlers.Tables)
		r.Get("/databases/{db}/tables/{table}/fields", handlers.Fields)
		r.Get("/records/{db}/{table}", handlers.Records)
		r.Post("/refresh", handlers.Refresh)
	})
}

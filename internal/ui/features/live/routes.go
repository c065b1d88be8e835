package live

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/catalognav/internal/catalog"
	"github.com/leapstack-labs/catalognav/internal/tabledata"
	"github.com/leapstack-labs/catalognav/internal/ui/notifier"
)

// SetupRoutes registers the websocket route on the router.
func SetupRoutes(
	router chi.Router,
	cache *catalog.Cache,
	fetcher *tabledata.Fetcher,
	notify *notifier.Notifier,
	logger *slog.Logger,
) {
	handlers := NewHandlers(cache, fetcher, notify, logger)
	router.Get("/ws", handlers.ServeWS)
}

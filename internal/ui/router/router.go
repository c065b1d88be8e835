// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/catalognav/internal/catalog"
	"github.com/leapstack-labs/catalognav/internal/tabledata"
	catalogFeature "github.com/leapstack-labs/catalognav/internal/ui/features/catalog"
	liveFeature "github.com/leapstack-labs/catalognav/internal/ui/features/live"
	"github.com/leapstack-labs/catalognav/internal/ui/notifier"
	"github.com/leapstack-labs/catalognav/internal/ui/resources"
)

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(
	router chi.Router,
	cache *catalog.Cache,
	fetcher *tabledata.Fetcher,
	notify *notifier.Notifier,
	logger *slog.Logger,
) {
	// Static assets
	router.Handle("/static/*", resources.Handler())

	// Feature routes
	catalogFeature.SetupRoutes(router, cache, fetcher, notify, logger)
	liveFeature.SetupRoutes(router, cache, fetcher, notify, logger)
}

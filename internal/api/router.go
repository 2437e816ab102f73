package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/madame-president/normaDB/internal/api/handlers"
	custommiddleware "github.com/madame-president/normaDB/internal/api/middleware"
	"github.com/madame-president/normaDB/internal/config"
	"github.com/madame-president/normaDB/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	fundService *service.FundService,
	syncService *service.SyncService,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/fund", func(r chi.Router) {
			fundHandler := handlers.NewFundHandler(fundService, syncService)
			r.Get("/summary", fundHandler.Summary)
			r.Get("/ledger", fundHandler.Ledger)
			r.Get("/year-one", fundHandler.YearOne)
			r.Get("/closing-price", fundHandler.ClosingPrices)

			// Mutating endpoints require the internal API key and time token
			r.Group(func(r chi.Router) {
				r.Use(custommiddleware.APIKeyMiddleware)
				r.Post("/sync", fundHandler.Sync)
				r.Post("/closing-price", fundHandler.RecordClosingPrice)
			})
		})
	})

	return r
}

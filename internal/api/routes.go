package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"foodbank-finder/internal/catalog"
	"foodbank-finder/internal/db"
	"foodbank-finder/internal/position"
)

// NewRouter creates and configures the Chi router
func NewRouter(cat *catalog.Catalog, store *db.DB, provider position.Provider, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))

	// Create handlers
	h := NewHandlers(cat, store, provider, log)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/locations", h.ListLocations)
		r.Get("/locations/{id}", h.GetLocation)
		r.Post("/locations/more", h.LoadMore)

		r.Get("/filters/options", h.FilterOptions)
		r.Post("/filters", h.SetFilters)
		r.Post("/filters/clear", h.ClearFilters)

		r.Post("/regions/{id}", h.SwitchRegion)
		r.Post("/position", h.RequestPosition)

		r.Post("/attendance", h.LogAttendance)
		r.Get("/attendance", h.ListAttendance)
		r.Get("/attendance/stats", h.AttendanceStats)
	})

	return r
}

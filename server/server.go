// Package server is the thin HTTP adapter over the aggregation pipeline: it
// parses the query parameters into a typed request, runs the pipeline, and
// serializes the filtered records. It holds no state of its own.
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"autofinder/models"
	"autofinder/services"
	"autofinder/utils"
)

// Searcher runs one aggregation round.
type Searcher interface {
	Search(ctx context.Context, q models.Query) []*models.Listing
}

// Server wires the query endpoint to the aggregator and filter engine.
type Server struct {
	searcher Searcher
	filter   *services.Filter
	logger   *utils.Logger
	origins  []string
}

// New creates a Server.
func New(searcher Searcher, filter *services.Filter, logger *utils.Logger, origins []string) *Server {
	return &Server{searcher: searcher, filter: filter, logger: logger, origins: origins}
}

// Routes returns the API router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/autos", s.handleSearch)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSearch serves GET /api/autos. Source outages never fail the request;
// the response just carries fewer records.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := queryFromRequest(r)

	s.logger.Info("[http] /api/autos marca=%q modelo=%q fuentes=%s", q.Brand, q.Model, q.Sources)

	merged := s.searcher.Search(r.Context(), q)
	filtered := s.filter.Apply(q, merged)

	writeJSON(w, http.StatusOK, models.Result{Autos: filtered})
}

func queryFromRequest(r *http.Request) models.Query {
	params := r.URL.Query()
	return models.Query{
		Brand:     params.Get("marca"),
		Model:     params.Get("modelo"),
		Sources:   models.ParseSource(params.Get("fuentes")),
		YearMin:   params.Get("anio"),
		PriceMin:  params.Get("precio_min"),
		PriceMax:  params.Get("precio_max"),
		KmMax:     params.Get("km_max"),
		Estado:    params.Get("estado"),
		Provincia: params.Get("provincia"),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

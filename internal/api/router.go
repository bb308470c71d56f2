package api

import (
	"ambulance-route-service/internal/api/handlers"
	"ambulance-route-service/internal/platform/metrics"
	"ambulance-route-service/internal/ports"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the ports the HTTP surface needs.
type Deps struct {
	Problems ports.ProblemRepository
	Store    ports.SolutionStore
	Planner  handlers.Planner
	Version  string
	SpeedKph float64
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	problemHandler := &handlers.ProblemHandler{Repo: d.Problems}
	planHandler := &handlers.PlanHandler{
		Problems: d.Problems,
		Store:    d.Store,
		Planner:  d.Planner,
		SpeedKph: d.SpeedKph,
	}

	mux.HandleFunc("/health", handlers.Health(d.Version))
	mux.HandleFunc("/problems", problemHandler.List)
	mux.HandleFunc("/plans", planHandler.Create)
	mux.HandleFunc("/plans/{id}", planHandler.Get)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	return requestIDMiddleware(loggingMiddleware(mux))
}

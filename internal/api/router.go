package api

import (
	"context"
	"database/sql"
	"delivery-insertion-planner/internal/api/handlers"
	"delivery-insertion-planner/internal/platform/metrics"
	"delivery-insertion-planner/internal/ports"
	"delivery-insertion-planner/internal/services"
	"net/http"
)

type RouterConfig struct {
	Planner *services.Planner
	Feed    ports.ProgressFeed
	// Background jobs run under JobContext so they survive the request.
	JobContext context.Context
	DB         *sql.DB
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	stopHandler := &handlers.StopHandler{Planner: cfg.Planner}
	insertionHandler := &handlers.InsertionHandler{Planner: cfg.Planner}
	optimizationHandler := &handlers.OptimizationHandler{Planner: cfg.Planner, JobContext: cfg.JobContext}
	healthHandler := &handlers.HealthHandler{DB: cfg.DB}

	mux.HandleFunc("/health", healthHandler.Health)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/stops", stopHandler.Stops)
	mux.HandleFunc("/insertion", insertionHandler.Directive)
	mux.HandleFunc("/insertion/anchors", insertionHandler.Anchors)
	mux.HandleFunc("/optimizations", optimizationHandler.Start)
	mux.HandleFunc("/optimizations/current", optimizationHandler.Current)
	mux.HandleFunc("/paths", optimizationHandler.Paths)

	if cfg.Feed != nil {
		eventHandler := &handlers.EventHandler{Feed: cfg.Feed, Planner: cfg.Planner}
		mux.HandleFunc("/optimizations/events", eventHandler.Stream)
	}

	return requestIDMiddleware(loggingMiddleware(mux))
}

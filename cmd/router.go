package main

import (
	"log/slog"
	"net/http"

	"github.com/angeloszaimis/statusboard/internal/handler"
	"github.com/angeloszaimis/statusboard/internal/metrics"
)

func setupRouter(pageHandler *handler.StatusPageHandler, metricsCollector *metrics.Collector, log *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", pageHandler.ServePage)
	mux.HandleFunc("GET /api/board", pageHandler.ServeBoard)
	mux.HandleFunc("POST /refresh", pageHandler.ServeRefresh)
	mux.HandleFunc("GET /health", pageHandler.ServeHealth)
	mux.Handle("GET /metrics", metricsCollector.PrometheusHandler())
	mux.HandleFunc("GET /metrics/json", metricsCollector.Handler())

	return handler.LogRequests(log, handler.SecurityHeaders(mux))
}

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"github.com/vcarciu/vesti-bune/internal/app"
	"github.com/vcarciu/vesti-bune/internal/logger"
	"github.com/vcarciu/vesti-bune/internal/metrics"
)

func main() {
	logger.Init()

	// Optional HTTP server so schedulers can probe run health.
	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		go startMonitoringServer()
	}

	if err := app.Run(context.Background()); err != nil {
		metrics.Global.SetError(err.Error())
		logger.Error("refresh failed", "error", err)
		os.Exit(1)
	}
}

func startMonitoringServer() {
	port := os.Getenv("MONITORING_PORT")
	if port == "" {
		port = "8080"
	}

	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/metrics", metricsHandler)

	logger.Info("monitoring server listening", "port", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		logger.Error("monitoring server stopped", "error", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	w.Header().Set("Content-Type", "application/json")

	status := "ok"
	if !stats["is_healthy"].(bool) {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	response := map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	}

	json.NewEncoder(w).Encode(response)
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(metrics.Global.GetStats())
}

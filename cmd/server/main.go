package main

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"orderbot-go/internal/api"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := api.Load()
	if err != nil {
		logger.Fatal("config invalid", zap.Error(err))
	}

	mux := http.NewServeMux()
	mux.Handle("/api/decision", api.NewHandler(cfg, logger))
	mux.Handle("/metrics", promhttp.Handler())

	// Health endpoint for deployment checks.
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       2 * time.Second,
		WriteTimeout:      2 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	logger.Info("OrderBot listening",
		zap.String("port", cfg.Port),
		zap.String("algo", cfg.AlgorithmName),
		zap.String("version", cfg.Version),
	)
	logger.Fatal("server stopped", zap.Error(srv.ListenAndServe()))
}

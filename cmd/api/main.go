package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apphttp "hf_cortex_backend/internal/http"
	"hf_cortex_backend/internal/http/router"
	"hf_cortex_backend/internal/leadsales"
	"hf_cortex_backend/internal/leadsales/advisory"
	"hf_cortex_backend/platform/ai/gemini"
	"hf_cortex_backend/platform/config"
	"hf_cortex_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The advisory model is optional: without an API key every turn takes
	// the deterministic fallback path.
	var model advisory.ModelClient
	if cfg.GetGeminiAPIKey() != "" {
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:  cfg.GetGeminiAPIKey(),
			Model:   cfg.GetAdvisoryModel(),
			Timeout: cfg.GetAdvisoryTimeout(),
		})
		if err != nil {
			log.Error("failed to initialize advisory model client", "error", err)
			panic("failed to initialize advisory model client: " + err.Error())
		}
		model = client
		log.Info("advisory model enabled", "model", cfg.GetAdvisoryModel())
	} else {
		log.Warn("GEMINI_API_KEY not configured; advisory model disabled")
	}

	leadSalesModule := leadsales.NewModule(model, log)

	engine := router.New(cfg, log, []apphttp.Module{leadSalesModule}...)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

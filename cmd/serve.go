package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Vovarama1992/carelog-ai-bridge/internal/assistant"
	"github.com/Vovarama1992/carelog-ai-bridge/internal/metrics"
	"github.com/Vovarama1992/carelog-ai-bridge/internal/middleware"
)

const (
	serviceName    = "carelog-ai-bridge"
	serviceVersion = "1.0.0"
)

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.log.Sync() }()

	messageLimit := middleware.NewRateLimiter(a.cfg.MessageRateLimit, 5*time.Minute, a.log)
	defer messageLimit.Stop()
	authLimit := middleware.NewRateLimiter(a.cfg.AuthRateLimit, 5*time.Minute, a.log)
	defer authLimit.Stop()

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(a.log))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader, middleware.WebhookSecretHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	}))

	// --- Assistant module wiring ---
	handler := assistant.NewHandler(a.assistant, a.users, messageLimit, a.log)
	assistant.RegisterRoutes(r, handler,
		middleware.WebhookSecret(a.cfg.WebhookSecret, a.log),
		authLimit.Middleware(middleware.ClientIP),
	)

	// --- health ---
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":        "healthy",
			"service":       serviceName,
			"version":       serviceVersion,
			"cached_values": a.cache.Len(),
		})
	})
	r.Handle("/metrics", metrics.Handler(a.registry))

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.cache.RunSweeper(gctx, a.cfg.CacheSweepInterval)
	})
	g.Go(func() error {
		a.log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func runHealthcheck(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("healthcheck: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthcheck: status %d", resp.StatusCode)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "ok")
	return nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"cityhall/internal/ai"
	"cityhall/internal/assistant"
	"cityhall/internal/cache"
	"cityhall/internal/config"
	"cityhall/internal/content"
	"cityhall/internal/feed"
	"cityhall/internal/handlers"
	"cityhall/internal/knowledge"
	"cityhall/internal/middleware"
	"cityhall/internal/router"
	"cityhall/internal/search"
	"cityhall/internal/store"
	"cityhall/internal/translate"
)

var (
	chatRateLimit  int
	chatRateWindow time.Duration
	shutdownGrace  time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&chatRateLimit, "chat-rate-limit", 20, "chat and translate requests allowed per client per window")
	serveCmd.Flags().DurationVar(&chatRateWindow, "chat-rate-window", time.Minute, "rate limit window")
	serveCmd.Flags().DurationVar(&shutdownGrace, "shutdown-grace", 30*time.Second, "time allowed for in-flight requests on shutdown")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, site, err := loadConfig()
	if err != nil {
		return err
	}
	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr(), "cms_source", cfg.CMSSource, "site", site.Name)

	checks := map[string]handlers.Check{}

	// Postgres backs the mirror source and the invalidation log. Only the
	// mirror source cannot run without it.
	var db *sql.DB
	db, err = openDatabase(cfg)
	switch {
	case err == nil:
		defer db.Close()
		checks["postgres"] = func(ctx context.Context) error { return db.PingContext(ctx) }
		if cfg.IsDev() && cfg.CMSSource == config.SourcePostgres {
			if err := seedDatabase(db); err != nil {
				return err
			}
		}
	case cfg.CMSSource == config.SourcePostgres:
		return err
	default:
		slog.Warn("database unavailable, invalidation log disabled", "error", err)
		db = nil
	}

	valkey, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		return fmt.Errorf("connect valkey: %w", err)
	}
	defer valkey.Close()
	checks["valkey"] = func(ctx context.Context) error { return valkey.Ping(ctx).Err() }

	src, err := contentSource(cfg, db)
	if err != nil {
		return err
	}
	entries := cache.NewEntryCache(src, valkey, cache.DefaultEntryTTL)
	fetcher := content.NewFetcher(entries)

	registry := ai.NewRegistry(cfg.AIProvider, map[string]ai.ProviderConfig{
		"openai":  {APIKey: cfg.OpenAIKey, Model: cfg.OpenAIModel, BaseURL: cfg.OpenAIBaseURL},
		"gemini":  {APIKey: cfg.GeminiKey, Model: cfg.GeminiModel, BaseURL: cfg.GeminiBaseURL},
		"claude":  {APIKey: cfg.ClaudeKey, Model: cfg.ClaudeModel, BaseURL: cfg.ClaudeBaseURL},
		"mistral": {APIKey: cfg.MistralKey, Model: cfg.MistralModel, BaseURL: cfg.MistralBaseURL},
	})
	slog.Info("ai providers initialized", "active", registry.ActiveName(), "available", registry.Available())
	if !registry.HasProvider(cfg.AIProvider) {
		slog.Warn("active ai provider has no API key, chat will answer with the fallback", "provider", cfg.AIProvider)
	}
	if !cfg.AIModeration {
		registry.SetModerator(nil)
		slog.Info("prompt moderation disabled")
	}

	var backend translate.Backend = translate.NewLLM(registry)
	if cfg.GoogleTranslateKey != "" {
		g, err := translate.NewGoogle(ctx, cfg.GoogleTranslateKey)
		if err != nil {
			return fmt.Errorf("google translate: %w", err)
		}
		backend = g
		slog.Info("translation via google cloud translation")
	} else {
		slog.Info("translation via ai provider", "provider", registry.ActiveName())
	}

	feeds := feed.NewService(fetcher, feed.NewAssembler(site, time.Now))
	helper := assistant.NewService(registry, knowledge.NewBuilder(fetcher), site)

	// An untyped nil keeps the handler's nil check meaningful.
	var invalidations handlers.InvalidationLogger
	if db != nil {
		invalidations = store.NewInvalidationLog(db)
	}

	limiter := middleware.NewRateLimiter(chatRateLimit, chatRateWindow)
	defer limiter.Stop()

	r := router.New(router.Deps{
		Feeds:       handlers.NewFeeds(feeds),
		API:         handlers.NewAPI(search.NewFederator(entries), helper, translate.NewService(backend, valkey), fetcher),
		Revalidate:  handlers.NewRevalidate(cfg.RevalidateSecret, entries, invalidations),
		Health:      handlers.Health(checks),
		CORSOrigin:  site.URL,
		ChatLimiter: limiter,
	})
	if cfg.RevalidateSecret == "" {
		slog.Warn("REVALIDATE_SECRET not set, revalidation webhook disabled")
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

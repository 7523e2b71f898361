// Command cityhall serves the municipal content API and RSS feeds, and
// carries the operational subcommands around it: migrations, seeding,
// mirroring the CMS into Postgres, and publishing static feeds.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"cityhall/internal/config"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:           "cityhall",
	Short:         "Municipal content aggregation service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var level slog.Level
		if err := level.UnmarshalText([]byte(logLevel)); err != nil {
			return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", envOr("LOG_LEVEL", "info"), "log level (debug, info, warn, error)")
}

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment configuration and the site profile.
func loadConfig() (*config.Config, config.Site, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, config.Site{}, fmt.Errorf("load configuration: %w", err)
	}
	site, err := config.LoadSite(cfg.SiteFile)
	if err != nil {
		return nil, config.Site{}, fmt.Errorf("load site profile: %w", err)
	}
	return cfg, site, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

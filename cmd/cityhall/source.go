package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"cityhall/internal/cms"
	"cityhall/internal/config"
	"cityhall/internal/database"
	"cityhall/internal/store"
)

// openDatabase connects to Postgres and applies pending migrations.
func openDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

// delivery returns the hosted CMS client.
func delivery(cfg *config.Config) *cms.Delivery {
	return cms.NewDelivery(cms.DeliveryConfig{
		BaseURL:     cfg.CMSBaseURL,
		SpaceID:     cfg.CMSSpaceID,
		Environment: cfg.CMSEnvironment,
		AccessToken: cfg.CMSAccessToken,
	})
}

// contentSource picks the CMS backend named by cfg.CMSSource. db may be
// nil for the delivery source.
func contentSource(cfg *config.Config, db *sql.DB) (cms.Client, error) {
	switch cfg.CMSSource {
	case config.SourcePostgres:
		if db == nil {
			return nil, fmt.Errorf("cms source %q needs a database", cfg.CMSSource)
		}
		slog.Info("reading content from postgres mirror")
		return store.NewEntryStore(db), nil
	default:
		slog.Info("reading content from delivery api", "space", cfg.CMSSpaceID, "environment", cfg.CMSEnvironment)
		return delivery(cfg), nil
	}
}

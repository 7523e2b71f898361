// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"cityhall/internal/cms"
	"cityhall/internal/models"
	"cityhall/internal/store"
)

var syncPrune bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror every entry from the delivery API into Postgres",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.CMSSpaceID == "" || cfg.CMSAccessToken == "" {
			return fmt.Errorf("sync needs CMS_SPACE_ID and CMS_ACCESS_TOKEN")
		}
		db, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := mirror(ctx, delivery(cfg), store.NewEntryStore(db), syncPrune)
		if err != nil {
			return err
		}
		slog.Info("sync complete", "stored", stats.Stored, "pruned", stats.Pruned)
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncPrune, "prune", true, "delete mirrored entries no longer published upstream")
	rootCmd.AddCommand(syncCmd)
}

// mirroredTypes lists every content type the mirror holds.
var mirroredTypes = []models.ContentType{
	models.ContentTypeDepartment,
	models.ContentTypePage,
	models.ContentTypeNews,
	models.ContentTypeEvent,
	models.ContentTypeAlert,
}

// mirrorStore is the writable side of the Postgres mirror.
type mirrorStore interface {
	cms.Client
	Put(ctx context.Context, e models.Entry) (string, error)
	Delete(ctx context.Context, id string) error
}

type mirrorStats struct {
	Stored int
	Pruned int
}

// mirror copies every published entry from src into dst, keeping ids.
// With prune set, entries dst holds that src no longer lists are removed.
func mirror(ctx context.Context, src cms.Client, dst mirrorStore, prune bool) (mirrorStats, error) {
	var stats mirrorStats
	for _, ct := range mirroredTypes {
		upstream, err := src.GetEntries(ctx, cms.Query{ContentType: ct})
		if err != nil {
			return stats, fmt.Errorf("fetch %s entries: %w", ct, err)
		}
		seen := make(map[string]bool, len(upstream))
		for _, e := range upstream {
			if _, err := dst.Put(ctx, e); err != nil {
				return stats, fmt.Errorf("store %s %s: %w", ct, e.ID, err)
			}
			seen[e.ID] = true
			stats.Stored++
		}
		slog.Debug("mirrored content type", "type", ct, "entries", len(upstream))

		if !prune {
			continue
		}
		local, err := dst.GetEntries(ctx, cms.Query{ContentType: ct})
		if err != nil {
			return stats, fmt.Errorf("list mirrored %s entries: %w", ct, err)
		}
		for _, e := range local {
			if seen[e.ID] {
				continue
			}
			if err := dst.Delete(ctx, e.ID); err != nil {
				return stats, fmt.Errorf("prune %s %s: %w", ct, e.ID, err)
			}
			stats.Pruned++
		}
	}
	return stats, nil
}

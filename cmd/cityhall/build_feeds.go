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
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"cityhall/internal/config"
	"cityhall/internal/content"
	"cityhall/internal/feed"
	"cityhall/internal/handlers"
	"cityhall/internal/models"
	"cityhall/internal/slug"
	"cityhall/internal/storage"
)

// uploadConcurrency bounds parallel object uploads.
const uploadConcurrency = 4

var (
	feedsOut    string
	feedsPrefix string
	feedsUpload bool
)

var buildFeedsCmd = &cobra.Command{
	Use:   "build-feeds",
	Short: "Render every RSS feed to disk and optionally publish to object storage",
	RunE:  runBuildFeeds,
}

func init() {
	buildFeedsCmd.Flags().StringVar(&feedsOut, "out", "public", "output directory")
	buildFeedsCmd.Flags().StringVar(&feedsPrefix, "prefix", "", "object key prefix for uploads")
	buildFeedsCmd.Flags().BoolVar(&feedsUpload, "upload", false, "upload feeds to S3 after writing them")
	rootCmd.AddCommand(buildFeedsCmd)
}

// feedRenderer is the feed.Service surface the build uses.
type feedRenderer interface {
	All(ctx context.Context) ([]byte, error)
	News(ctx context.Context) ([]byte, error)
	Events(ctx context.Context) ([]byte, error)
	Department(ctx context.Context, slug string) ([]byte, error)
}

type departmentLister interface {
	GetDepartments(ctx context.Context) ([]models.Department, error)
}

type uploader interface {
	Upload(ctx context.Context, key, contentType, cacheControl string, body []byte) error
}

func runBuildFeeds(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, site, err := loadConfig()
	if err != nil {
		return err
	}

	var db *sql.DB
	if cfg.CMSSource == config.SourcePostgres {
		if db, err = openDatabase(cfg); err != nil {
			return err
		}
		defer db.Close()
	}
	src, err := contentSource(cfg, db)
	if err != nil {
		return err
	}

	fetcher := content.NewFetcher(src)
	files, err := renderFeeds(ctx, feed.NewService(fetcher, feed.NewAssembler(site, time.Now)), fetcher)
	if err != nil {
		return err
	}
	if err := writeFeeds(feedsOut, files); err != nil {
		return err
	}
	slog.Info("feeds written", "dir", feedsOut, "count", len(files))

	if !feedsUpload {
		return nil
	}
	client, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3BucketPublic, cfg.S3PublicURL)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	if client == nil {
		return errors.New("--upload needs S3_ENDPOINT, S3_ACCESS_KEY and S3_SECRET_KEY")
	}
	if err := publishFeeds(ctx, client, feedsPrefix, files); err != nil {
		return err
	}
	slog.Info("feeds published", "bucket", client.Bucket(), "url", client.FileURL(path.Join(feedsPrefix, "feed.xml")))
	return nil
}

// renderFeeds renders the site feeds keyed by their slash-separated
// output path. Any failure aborts the build.
func renderFeeds(ctx context.Context, feeds feedRenderer, depts departmentLister) (map[string][]byte, error) {
	files := make(map[string][]byte)
	for name, render := range map[string]func(context.Context) ([]byte, error){
		"feed.xml":        feeds.All,
		"feed/news.xml":   feeds.News,
		"feed/events.xml": feeds.Events,
	} {
		body, err := render(ctx)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", name, err)
		}
		files[name] = body
	}

	list, err := depts.GetDepartments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	for _, d := range list {
		if !slug.Valid(d.Slug) {
			slog.Warn("skipping department with invalid slug", "name", d.Name, "slug", d.Slug)
			continue
		}
		body, err := feeds.Department(ctx, d.Slug)
		if err != nil {
			return nil, fmt.Errorf("render department %s: %w", d.Slug, err)
		}
		files["feed/departments/"+d.Slug+".xml"] = body
	}
	return files, nil
}

// writeFeeds writes files under dir, creating directories as needed.
func writeFeeds(dir string, files map[string][]byte) error {
	for _, name := range sortedKeys(files) {
		dst := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Dir(dst), err)
		}
		if err := os.WriteFile(dst, files[name], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", dst, err)
		}
	}
	return nil
}

// publishFeeds uploads files under prefix with the feed cache policy.
func publishFeeds(ctx context.Context, up uploader, prefix string, files map[string][]byte) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)
	for _, name := range sortedKeys(files) {
		key := path.Join(prefix, name)
		body := files[name]
		g.Go(func() error {
			if err := up.Upload(gCtx, key, feed.ContentType, handlers.FeedCacheControl, body); err != nil {
				return fmt.Errorf("upload %s: %w", key, err)
			}
			slog.Debug("feed uploaded", "key", key, "bytes", len(body))
			return nil
		})
	}
	return g.Wait()
}

func sortedKeys(files map[string][]byte) []string {
	keys := make([]string, 0, len(files))
	for k := range files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

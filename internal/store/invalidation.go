// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// invalidation.go records cache invalidation events in the database for
// audit and debugging purposes. Each row captures which CMS entry
// triggered the flush, the webhook action, and how many keys were dropped.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// InvalidationLog handles cache invalidation log operations.
type InvalidationLog struct {
	db *sql.DB
}

// NewInvalidationLog creates a new InvalidationLog.
func NewInvalidationLog(db *sql.DB) *InvalidationLog {
	return &InvalidationLog{db: db}
}

// Log records a cache invalidation event. Failures are logged and
// otherwise ignored.
func (s *InvalidationLog) Log(ctx context.Context, ev Invalidation) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cache_invalidation_log (content_type, entry_id, action, keys_deleted)
		VALUES ($1, $2, $3, $4)
	`, ev.ContentType, ev.EntryID, ev.Action, ev.KeysDeleted)
	if err != nil {
		slog.Warn("failed to log cache invalidation",
			"content_type", ev.ContentType,
			"entry_id", ev.EntryID,
			"action", ev.Action,
			"error", err,
		)
		return
	}
	slog.Debug("cache invalidation logged",
		"content_type", ev.ContentType,
		"entry_id", ev.EntryID,
		"action", ev.Action,
		"keys_deleted", ev.KeysDeleted,
	)
}

// Recent returns the most recent invalidation events, newest first.
func (s *InvalidationLog) Recent(ctx context.Context, limit int) ([]Invalidation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content_type, entry_id, action, keys_deleted, invalidated_at
		FROM cache_invalidation_log
		ORDER BY invalidated_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query invalidation log: %w", err)
	}
	defer rows.Close()

	entries := []Invalidation{}
	for rows.Next() {
		var e Invalidation
		if err := rows.Scan(&e.ID, &e.ContentType, &e.EntryID, &e.Action, &e.KeysDeleted, &e.InvalidatedAt); err != nil {
			return nil, fmt.Errorf("scan invalidation log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Invalidation is a single cache invalidation event.
type Invalidation struct {
	ID            int64     `json:"id"`
	ContentType   string    `json:"contentType"`
	EntryID       string    `json:"entryId"`
	Action        string    `json:"action"`
	KeysDeleted   int       `json:"keysDeleted"`
	InvalidatedAt time.Time `json:"invalidatedAt"`
}

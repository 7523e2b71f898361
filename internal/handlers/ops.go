// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"cityhall/internal/store"
)

// Check reports whether one dependency is reachable.
type Check func(ctx context.Context) error

// Health reports liveness plus the state of each registered dependency.
// Any failing check turns the response into a 503.
func Health(checks map[string]Check) http.HandlerFunc {
	names := slices.Sorted(maps.Keys(checks))
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status, code := "ok", http.StatusOK
		results := make(map[string]string, len(names))
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				slog.Warn("health check failed", "check", name, "error", err)
				results[name] = "unavailable"
				status, code = "degraded", http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		body := map[string]any{"status": status}
		if len(results) > 0 {
			body["checks"] = results
		}
		writeJSON(w, code, body)
	}
}

// Invalidator drops cached CMS responses.
type Invalidator interface {
	Invalidate(ctx context.Context) (int, error)
}

// InvalidationLogger records and lists invalidation events.
type InvalidationLogger interface {
	Log(ctx context.Context, ev store.Invalidation)
	Recent(ctx context.Context, limit int) ([]store.Invalidation, error)
}

// Revalidate handles CMS publish webhooks by flushing the entry cache.
type Revalidate struct {
	secret string
	cache  Invalidator
	log    InvalidationLogger // nil without a database
}

// NewRevalidate creates the webhook handler group. An empty secret
// disables both endpoints.
func NewRevalidate(secret string, cache Invalidator, log InvalidationLogger) *Revalidate {
	return &Revalidate{secret: secret, cache: cache, log: log}
}

// webhookPayload is the part of a CMS entry webhook the log records.
type webhookPayload struct {
	Sys struct {
		ID          string `json:"id"`
		ContentType struct {
			Sys struct {
				ID string `json:"id"`
			} `json:"sys"`
		} `json:"contentType"`
	} `json:"sys"`
}

// authorized compares the shared secret from the header or query string.
func (h *Revalidate) authorized(r *http.Request) bool {
	if h.secret == "" {
		return false
	}
	got := r.Header.Get("X-Revalidate-Secret")
	if got == "" {
		got = r.URL.Query().Get("secret")
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) == 1
}

// Webhook handles POST /api/revalidate.
func (h *Revalidate) Webhook(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid secret"})
		return
	}

	// The payload only feeds the audit log; a missing body still flushes.
	var payload webhookPayload
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		slog.Debug("revalidate payload unreadable", "error", err)
		raw = nil
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			slog.Debug("revalidate payload ignored", "error", err)
		}
	}

	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		slog.Error("cache invalidation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Invalidation failed"})
		return
	}

	ev := store.Invalidation{
		ContentType: payload.Sys.ContentType.Sys.ID,
		EntryID:     payload.Sys.ID,
		Action:      topicAction(r.Header.Get("X-CMS-Topic")),
		KeysDeleted: deleted,
	}
	slog.Info("cache invalidated",
		"content_type", ev.ContentType,
		"entry_id", ev.EntryID,
		"action", ev.Action,
		"keys_deleted", deleted,
	)
	if h.log != nil {
		h.log.Log(r.Context(), ev)
	}

	writeJSON(w, http.StatusOK, map[string]any{"revalidated": true, "keysDeleted": deleted})
}

// Log handles GET /api/revalidate/log?limit=N.
func (h *Revalidate) Log(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid secret"})
		return
	}
	if h.log == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Invalidation log unavailable"})
		return
	}

	limit := 20
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		limit = min(n, 200)
	}

	entries, err := h.log.Recent(r.Context(), limit)
	if err != nil {
		slog.Error("list invalidation log failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Invalidation log unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// topicAction reduces "ContentManagement.Entry.publish" to "publish".
func topicAction(topic string) string {
	if topic == "" {
		return "manual"
	}
	return topic[strings.LastIndex(topic, ".")+1:]
}

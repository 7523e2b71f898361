// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/blake2b"

	"cityhall/internal/feed"
	"cityhall/internal/slug"
)

// FeedCacheControl lets browsers and shared caches keep a feed for an hour.
const FeedCacheControl = "public, max-age=3600, s-maxage=3600"

// FeedRenderer produces complete RSS documents.
type FeedRenderer interface {
	All(ctx context.Context) ([]byte, error)
	News(ctx context.Context) ([]byte, error)
	Events(ctx context.Context) ([]byte, error)
	Department(ctx context.Context, slug string) ([]byte, error)
}

// Feeds groups the RSS endpoints.
type Feeds struct {
	feeds FeedRenderer
}

// NewFeeds creates a new Feeds handler group.
func NewFeeds(feeds FeedRenderer) *Feeds {
	return &Feeds{feeds: feeds}
}

// All serves /feed.xml, the combined feed of every content type.
func (f *Feeds) All(w http.ResponseWriter, r *http.Request) {
	body, err := f.feeds.All(r.Context())
	f.respond(w, r, "all", body, err)
}

// News serves /feed/news.
func (f *Feeds) News(w http.ResponseWriter, r *http.Request) {
	body, err := f.feeds.News(r.Context())
	f.respond(w, r, "news", body, err)
}

// Events serves /feed/events.
func (f *Feeds) Events(w http.ResponseWriter, r *http.Request) {
	body, err := f.feeds.Events(r.Context())
	f.respond(w, r, "events", body, err)
}

// Department serves /feed/departments/{slug}. Malformed slugs are
// rejected before any CMS call.
func (f *Feeds) Department(w http.ResponseWriter, r *http.Request) {
	s := chi.URLParam(r, "slug")
	if !slug.Valid(s) {
		departmentNotFound(w)
		return
	}
	body, err := f.feeds.Department(r.Context(), s)
	if errors.Is(err, feed.ErrNotFound) {
		departmentNotFound(w)
		return
	}
	f.respond(w, r, "department", body, err)
}

func departmentNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte("Department not found"))
}

// respond writes a rendered feed with caching headers, answering 304
// when the client already holds the same body.
func (f *Feeds) respond(w http.ResponseWriter, r *http.Request, name string, body []byte, err error) {
	if err != nil {
		slog.Error("feed generation failed", "feed", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	tag := ETag(body)
	h := w.Header()
	h.Set("Cache-Control", FeedCacheControl)
	h.Set("ETag", tag)

	if etagMatches(r.Header.Get("If-None-Match"), tag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	h.Set("Content-Type", feed.ContentType)
	w.Write(body)
}

// ETag returns a strong entity tag for body.
func ETag(body []byte) string {
	sum := blake2b.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

// etagMatches implements the weak comparison If-None-Match calls for.
func etagMatches(header, tag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == tag {
			return true
		}
	}
	return false
}

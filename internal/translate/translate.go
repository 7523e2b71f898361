// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package translate translates user-facing text for the site's language
// switcher. Translation never fails from the caller's point of view: any
// error yields the original text.
package translate

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"
)

const (
	// SourceLanguage is the language content is authored in.
	SourceLanguage = "en"

	keyPrefix = "translate:"
	// DefaultTTL is how long a translation stays cached.
	DefaultTTL = 30 * 24 * time.Hour
)

// Backend performs one translation.
type Backend interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// Service fronts a Backend with a Valkey cache.
type Service struct {
	backend Backend
	cache   *redis.Client // nil disables caching
	ttl     time.Duration
}

// NewService creates a Service. client may be nil.
func NewService(backend Backend, client *redis.Client) *Service {
	return &Service{backend: backend, cache: client, ttl: DefaultTTL}
}

// Translate returns text in the target language, or text itself when the
// target is the source language, the input is blank, or translation fails.
func (s *Service) Translate(ctx context.Context, text, target string) string {
	target = strings.TrimSpace(target)
	if strings.TrimSpace(text) == "" || target == "" || isSource(target) || s.backend == nil {
		return text
	}

	key := cacheKey(text, target)
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key).Result()
		switch {
		case err == nil:
			slog.Debug("translation cache hit", "target", target)
			return cached
		case !errors.Is(err, redis.Nil):
			slog.Warn("translation cache get error", "error", err)
		}
	}

	out, err := s.backend.Translate(ctx, text, target)
	if err != nil || strings.TrimSpace(out) == "" {
		slog.Warn("translation failed, returning original", "target", target, "error", err)
		return text
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, out, s.ttl).Err(); err != nil {
			slog.Warn("translation cache set error", "error", err)
		}
	}
	return out
}

func isSource(target string) bool {
	base, _, _ := strings.Cut(strings.ToLower(target), "-")
	return base == SourceLanguage
}

// cacheKey is translate:{lang}:{blake2b-256 of text}.
func cacheKey(text, target string) string {
	sum := blake2b.Sum256([]byte(text))
	return keyPrefix + strings.ToLower(target) + ":" + hex.EncodeToString(sum[:])
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package cms defines the read boundary to the headless CMS. Adapters
// (the HTTP delivery client, the PostgreSQL mirror, the Valkey memoizer)
// all satisfy Client and hand back entries whose fields are already
// resolved to the en-US locale.
package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cityhall/internal/models"
)

// Locale is the only locale whose field values are consumed.
const Locale = "en-US"

// Query selects entries of one content type.
type Query struct {
	ContentType models.ContentType
	Text        string // full-text match across all fields
	Slug        string // exact fields.slug match
	Limit       int    // 0 means no limit
	Order       string // e.g. "-fields.publishDate" or "sys.createdAt"
}

// Key returns a stable string identifying the query, used as a cache key.
func (q Query) Key() string {
	return fmt.Sprintf("type=%s|q=%s|slug=%s|limit=%d|order=%s",
		q.ContentType, q.Text, q.Slug, q.Limit, q.Order)
}

// Client reads entries from the CMS.
type Client interface {
	// GetEntries returns every entry matching q, following pagination.
	GetEntries(ctx context.Context, q Query) ([]models.Entry, error)

	// GetEntry returns a single entry by id, or nil if it does not exist.
	GetEntry(ctx context.Context, id string) (*models.Entry, error)
}

// ResolveLocale flattens locale-keyed fields ({"title": {"en-US": "..."}})
// to one value per field. Fields without an en-US value are dropped.
func ResolveLocale(fields map[string]map[string]json.RawMessage) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(fields))
	for name, byLocale := range fields {
		if v, ok := byLocale[Locale]; ok {
			out[name] = v
		}
	}
	return out
}

// Order is a parsed order expression.
type Order struct {
	Name       string // field or system attribute name
	System     bool   // true for sys.* attributes such as createdAt
	Descending bool
}

// ParseOrder parses "-fields.publishDate" or "sys.createdAt" style order
// expressions. It reports false for anything else.
func ParseOrder(expr string) (Order, bool) {
	expr = strings.TrimSpace(expr)
	var o Order
	if strings.HasPrefix(expr, "-") {
		o.Descending = true
		expr = expr[1:]
	}
	switch {
	case strings.HasPrefix(expr, "fields."):
		o.Name = strings.TrimPrefix(expr, "fields.")
	case strings.HasPrefix(expr, "sys."):
		o.Name = strings.TrimPrefix(expr, "sys.")
		o.System = true
	default:
		return Order{}, false
	}
	if o.Name == "" {
		return Order{}, false
	}
	return o, true
}

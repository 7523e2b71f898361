// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package cmstest provides an in-memory cms.Client for tests.
package cmstest

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"cityhall/internal/cms"
	"cityhall/internal/models"
)

// Fake is an in-memory cms.Client. Entries are returned in insertion
// order; Order is recorded but not applied, matching the rule that
// callers must not rely on CMS-side sorting. Safe for concurrent use.
type Fake struct {
	mu      sync.Mutex
	entries []models.Entry
	errs    map[models.ContentType]error
	queries []cms.Query
}

// New creates an empty fake.
func New(entries ...models.Entry) *Fake {
	return &Fake{entries: entries, errs: make(map[models.ContentType]error)}
}

// Add appends entries.
func (f *Fake) Add(entries ...models.Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entries...)
}

// FailType makes every query for ct return err.
func (f *Fake) FailType(ct models.ContentType, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[ct] = err
}

// Calls returns how many GetEntries calls were made.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

// Queries returns a copy of every query received.
func (f *Fake) Queries() []cms.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]cms.Query(nil), f.queries...)
}

// GetEntries implements cms.Client.
func (f *Fake) GetEntries(_ context.Context, q cms.Query) ([]models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)

	if err := f.errs[q.ContentType]; err != nil {
		return nil, err
	}

	var out []models.Entry
	for _, e := range f.entries {
		if e.ContentType != q.ContentType {
			continue
		}
		if q.Slug != "" && e.Text("slug") != q.Slug {
			continue
		}
		if q.Text != "" && !matches(e, q.Text) {
			continue
		}
		out = append(out, e)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

// GetEntry implements cms.Client.
func (f *Fake) GetEntry(_ context.Context, id string) (*models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, nil
}

func matches(e models.Entry, text string) bool {
	needle := strings.ToLower(text)
	for _, raw := range e.Fields {
		if strings.Contains(strings.ToLower(string(raw)), needle) {
			return true
		}
	}
	return false
}

// Entry builds an entry from plain field values, JSON-encoding each one.
func Entry(id string, ct models.ContentType, updated time.Time, fields map[string]any) models.Entry {
	e := models.Entry{
		ID:          id,
		ContentType: ct,
		CreatedAt:   updated,
		UpdatedAt:   updated,
		Fields:      make(map[string]json.RawMessage, len(fields)),
	}
	for k, v := range fields {
		if raw, ok := v.(json.RawMessage); ok {
			e.Fields[k] = raw
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			panic("cmstest: marshal field " + k + ": " + err.Error())
		}
		e.Fields[k] = b
	}
	return e
}

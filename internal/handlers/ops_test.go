// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/iotest"

	"cityhall/internal/store"
)

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]Check
		want   int
		body   string
	}{
		{"no checks", nil, http.StatusOK, `{"status":"ok"}`},
		{
			"all passing",
			map[string]Check{"valkey": func(context.Context) error { return nil }},
			http.StatusOK,
			`{"checks":{"valkey":"ok"},"status":"ok"}`,
		},
		{
			"one failing",
			map[string]Check{
				"postgres": func(context.Context) error { return errors.New("refused") },
				"valkey":   func(context.Context) error { return nil },
			},
			http.StatusServiceUnavailable,
			`{"checks":{"postgres":"unavailable","valkey":"ok"},"status":"degraded"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			Health(tt.checks)(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
			if rr.Code != tt.want {
				t.Errorf("status: got %d, want %d", rr.Code, tt.want)
			}
			if got := strings.TrimSpace(rr.Body.String()); got != tt.body {
				t.Errorf("body: got %s, want %s", got, tt.body)
			}
		})
	}
}

type stubInvalidator struct {
	deleted int
	err     error
	calls   int
}

func (s *stubInvalidator) Invalidate(context.Context) (int, error) {
	s.calls++
	return s.deleted, s.err
}

type memoryLog struct {
	events []store.Invalidation
	err    error
}

func (m *memoryLog) Log(_ context.Context, ev store.Invalidation) { m.events = append(m.events, ev) }

func (m *memoryLog) Recent(_ context.Context, limit int) ([]store.Invalidation, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.events[:min(limit, len(m.events))], nil
}

const webhookBody = `{"sys":{"id":"entry-42","type":"Entry","contentType":{"sys":{"type":"Link","id":"news"}}}}`

func TestRevalidateWebhook(t *testing.T) {
	inv := &stubInvalidator{deleted: 7}
	log := &memoryLog{}
	h := NewRevalidate("s3cret", inv, log)

	req := httptest.NewRequest(http.MethodPost, "/api/revalidate", strings.NewReader(webhookBody))
	req.Header.Set("X-Revalidate-Secret", "s3cret")
	req.Header.Set("X-CMS-Topic", "ContentManagement.Entry.publish")
	rr := httptest.NewRecorder()
	h.Webhook(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rr.Code, rr.Body.String())
	}
	if inv.calls != 1 {
		t.Errorf("invalidate calls: got %d, want 1", inv.calls)
	}
	want := store.Invalidation{ContentType: "news", EntryID: "entry-42", Action: "publish", KeysDeleted: 7}
	if len(log.events) != 1 || log.events[0] != want {
		t.Errorf("logged %+v, want %+v", log.events, want)
	}
}

func TestRevalidateWebhookQuerySecretWithoutBody(t *testing.T) {
	inv := &stubInvalidator{}
	h := NewRevalidate("s3cret", inv, nil)

	rr := httptest.NewRecorder()
	h.Webhook(rr, httptest.NewRequest(http.MethodPost, "/api/revalidate?secret=s3cret", nil))

	if rr.Code != http.StatusOK || inv.calls != 1 {
		t.Errorf("got %d with %d invalidations", rr.Code, inv.calls)
	}
}

func TestRevalidateWebhookUnreadableBody(t *testing.T) {
	tests := []struct {
		name string
		body io.Reader
	}{
		{"oversized", strings.NewReader(`{"sys":{"id":"entry-42"}}` + strings.Repeat(" ", maxBodyBytes))},
		{"read error", iotest.ErrReader(errors.New("connection reset"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &stubInvalidator{deleted: 2}
			log := &memoryLog{}
			h := NewRevalidate("s3cret", inv, log)

			rr := httptest.NewRecorder()
			h.Webhook(rr, httptest.NewRequest(http.MethodPost, "/api/revalidate?secret=s3cret", tt.body))

			if rr.Code != http.StatusOK || inv.calls != 1 {
				t.Fatalf("got %d with %d invalidations", rr.Code, inv.calls)
			}
			want := store.Invalidation{Action: "manual", KeysDeleted: 2}
			if len(log.events) != 1 || log.events[0] != want {
				t.Errorf("logged %+v, want %+v", log.events, want)
			}
		})
	}
}

func TestRevalidateUnauthorized(t *testing.T) {
	tests := []struct {
		name, configured, sent string
	}{
		{"wrong secret", "s3cret", "guess"},
		{"missing secret", "s3cret", ""},
		{"disabled", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &stubInvalidator{}
			h := NewRevalidate(tt.configured, inv, &memoryLog{})

			req := httptest.NewRequest(http.MethodPost, "/api/revalidate", strings.NewReader(webhookBody))
			req.Header.Set("X-Revalidate-Secret", tt.sent)
			rr := httptest.NewRecorder()
			h.Webhook(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("status: got %d, want 401", rr.Code)
			}
			if inv.calls != 0 {
				t.Error("cache must not be flushed without the secret")
			}
		})
	}
}

func TestRevalidateInvalidateError(t *testing.T) {
	log := &memoryLog{}
	h := NewRevalidate("s3cret", &stubInvalidator{err: errors.New("valkey down")}, log)

	rr := httptest.NewRecorder()
	h.Webhook(rr, httptest.NewRequest(http.MethodPost, "/api/revalidate?secret=s3cret", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rr.Code)
	}
	if len(log.events) != 0 {
		t.Error("failed invalidations must not be logged as done")
	}
}

func TestRevalidateLog(t *testing.T) {
	log := &memoryLog{events: []store.Invalidation{{ID: 2, Action: "publish"}, {ID: 1, Action: "delete"}}}
	h := NewRevalidate("s3cret", &stubInvalidator{}, log)

	rr := httptest.NewRecorder()
	h.Log(rr, httptest.NewRequest(http.MethodGet, "/api/revalidate/log?secret=s3cret&limit=1", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	entries, _ := decode(t, rr)["entries"].([]any)
	if len(entries) != 1 {
		t.Errorf("entries: got %d, want 1", len(entries))
	}

	rr = httptest.NewRecorder()
	NewRevalidate("s3cret", &stubInvalidator{}, nil).Log(rr, httptest.NewRequest(http.MethodGet, "/api/revalidate/log?secret=s3cret", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("without a database: got %d, want 404", rr.Code)
	}
}

func TestTopicAction(t *testing.T) {
	for topic, want := range map[string]string{
		"ContentManagement.Entry.publish":   "publish",
		"ContentManagement.Entry.unpublish": "unpublish",
		"delete":                            "delete",
		"":                                  "manual",
	} {
		if got := topicAction(topic); got != want {
			t.Errorf("topicAction(%q) = %q, want %q", topic, got, want)
		}
	}
}

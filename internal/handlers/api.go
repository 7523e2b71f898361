// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"cityhall/internal/ai"
	"cityhall/internal/assistant"
	"cityhall/internal/models"
)

// Searcher runs a federated site search.
type Searcher interface {
	Search(ctx context.Context, query string) ([]models.SearchHit, error)
}

// Assistant answers resident questions.
type Assistant interface {
	Reply(ctx context.Context, messages []ai.Message) (string, error)
	Fallback() string
}

// Translator translates text, returning the input on any failure.
type Translator interface {
	Translate(ctx context.Context, text, target string) string
}

// AlertSource lists alerts active at a given instant.
type AlertSource interface {
	GetActiveAlerts(ctx context.Context, now time.Time) ([]models.Alert, error)
}

// API groups the JSON endpoints used by the public site.
type API struct {
	search     Searcher
	assistant  Assistant
	translator Translator
	alerts     AlertSource
	now        func() time.Time
}

// NewAPI creates a new API handler group.
func NewAPI(search Searcher, assistant Assistant, translator Translator, alerts AlertSource) *API {
	return &API{
		search:     search,
		assistant:  assistant,
		translator: translator,
		alerts:     alerts,
		now:        time.Now,
	}
}

type searchResponse struct {
	Results []models.SearchHit `json:"results"`
	Error   string             `json:"error,omitempty"`
}

// Search handles GET /api/search?q=. Failures still answer with an empty
// result list.
func (a *API) Search(w http.ResponseWriter, r *http.Request) {
	hits, err := a.search.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		slog.Error("search failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, searchResponse{
			Results: []models.SearchHit{},
			Error:   "Search failed",
		})
		return
	}
	if hits == nil {
		hits = []models.SearchHit{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: hits})
}

// Chat handles POST /api/chat. Upstream failures return the assistant's
// fallback text so residents always get a way to reach City Hall.
func (a *API) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		slog.Debug("chat request rejected", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Messages array is required"})
		return
	}

	messages := make([]ai.Message, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = ai.Message{Role: m.Role, Content: m.Content}
	}

	reply, err := a.assistant.Reply(r.Context(), messages)
	if errors.Is(err, assistant.ErrInvalidConversation) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Messages array is required"})
		return
	}
	if err != nil {
		slog.Error("chat failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Failed to process chat message",
			"message": a.assistant.Fallback(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": reply})
}

// Translate handles POST /api/translate.
func (a *API) Translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Text and a valid target language are required"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"text": a.translator.Translate(r.Context(), req.Text, req.Target),
	})
}

// Alerts handles GET /api/alerts, listing the alerts active right now.
func (a *API) Alerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := a.alerts.GetActiveAlerts(r.Context(), a.now())
	if err != nil {
		slog.Error("list alerts failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"alerts": []models.Alert{},
			"error":  "Alerts unavailable",
		})
		return
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

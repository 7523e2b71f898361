// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

// ModerationResult contains the outcome of a prompt safety check.
type ModerationResult struct {
	Safe       bool     // true if the prompt passes moderation
	Categories []string // flagged category names, sorted (empty when safe)
}

// Moderator checks user prompts for policy violations before they reach a
// generation endpoint.
type Moderator interface {
	CheckSafety(ctx context.Context, text string) (*ModerationResult, error)
}

// statusError is a non-200 reply from a moderation endpoint.
type statusError struct {
	api    string
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.api, e.status, e.body)
}

// moderationEndpoint is an OpenAI-style POST {model, input} endpoint.
type moderationEndpoint struct {
	api    string
	url    string
	model  string
	apiKey string
	client *http.Client
}

func (m *moderationEndpoint) post(ctx context.Context, text string, out any) error {
	payload, err := json.Marshal(moderationRequest{Model: m.model, Input: text})
	if err != nil {
		return fmt.Errorf("%s marshal: %w", m.api, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s request: %w", m.api, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s http: %w", m.api, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s read body: %w", m.api, err)
	}
	if resp.StatusCode != http.StatusOK {
		return &statusError{api: m.api, status: resp.StatusCode, body: string(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s unmarshal: %w", m.api, err)
	}
	return nil
}

// --- OpenAI Moderation (free endpoint) ---

type openAIModerator struct {
	endpoint moderationEndpoint
}

func newOpenAIModerator(apiKey, baseURL string) *openAIModerator {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &openAIModerator{endpoint: moderationEndpoint{
		api:    "moderation",
		url:    baseURL + "/moderations",
		model:  "omni-moderation-latest",
		apiKey: apiKey,
		client: &http.Client{Timeout: 15 * time.Second},
	}}
}

func (m *openAIModerator) CheckSafety(ctx context.Context, text string) (*ModerationResult, error) {
	var resp openAIModResponse
	if err := m.endpoint.post(ctx, text, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 || !resp.Results[0].Flagged {
		return &ModerationResult{Safe: true}, nil
	}
	// "hate/threatening" reads as "hate (threatening)".
	return flagged(resp.Results[0].Categories, func(cat string) string {
		if before, after, ok := strings.Cut(cat, "/"); ok {
			cat = before + " (" + after + ")"
		}
		return strings.ReplaceAll(cat, "_", " ")
	}), nil
}

// --- Mistral Moderation (paid, fallback) ---

type mistralModerator struct {
	endpoint moderationEndpoint
}

func newMistralModerator(apiKey, baseURL string) *mistralModerator {
	if baseURL == "" {
		baseURL = "https://api.mistral.ai"
	}
	return &mistralModerator{endpoint: moderationEndpoint{
		api:    "mistral moderation",
		url:    strings.TrimSuffix(baseURL, "/v1") + "/v1/moderations",
		model:  "mistral-moderation-latest",
		apiKey: apiKey,
		client: &http.Client{Timeout: 15 * time.Second},
	}}
}

// CheckSafety flags the prompt when any category is set; Mistral has no
// top-level flag.
func (m *mistralModerator) CheckSafety(ctx context.Context, text string) (*ModerationResult, error) {
	var resp mistralModResponse
	if err := m.endpoint.post(ctx, text, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return &ModerationResult{Safe: true}, nil
	}
	return flagged(resp.Results[0].Categories, func(cat string) string {
		return strings.ReplaceAll(cat, "_", " ")
	}), nil
}

func flagged(categories map[string]bool, display func(string) string) *ModerationResult {
	var names []string
	for cat, on := range categories {
		if on {
			names = append(names, display(cat))
		}
	}
	sort.Strings(names)
	return &ModerationResult{Safe: len(names) == 0, Categories: names}
}

// fallbackModerator switches to the secondary moderator when the primary
// rejects its credentials (project-scoped OpenAI keys cannot moderate).
type fallbackModerator struct {
	primary   Moderator
	secondary Moderator
}

func (f *fallbackModerator) CheckSafety(ctx context.Context, text string) (*ModerationResult, error) {
	res, err := f.primary.CheckSafety(ctx, text)
	var se *statusError
	if errors.As(err, &se) && (se.status == http.StatusUnauthorized || se.status == http.StatusForbidden) {
		return f.secondary.CheckSafety(ctx, text)
	}
	return res, err
}

// --- Request/Response types ---

type moderationRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type openAIModResponse struct {
	Results []struct {
		Flagged    bool            `json:"flagged"`
		Categories map[string]bool `json:"categories"`
	} `json:"results"`
}

type mistralModResponse struct {
	Results []struct {
		Categories map[string]bool `json:"categories"`
	} `json:"results"`
}

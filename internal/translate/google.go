// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package translate

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	translatev2 "google.golang.org/api/translate/v2"
)

// Google translates with the Cloud Translation v2 API.
type Google struct {
	svc *translatev2.Service
}

// NewGoogle creates a Google backend. Extra options (endpoint, HTTP
// client) are passed through to the API client.
func NewGoogle(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Google, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := translatev2.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create translate service: %w", err)
	}
	return &Google{svc: svc}, nil
}

// Translate implements Backend.
func (g *Google) Translate(ctx context.Context, text, target string) (string, error) {
	resp, err := g.svc.Translations.List([]string{text}, target).
		Source(SourceLanguage).
		Format("text").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("google translate: %w", err)
	}
	if len(resp.Translations) == 0 {
		return "", fmt.Errorf("google translate: empty response")
	}
	return resp.Translations[0].TranslatedText, nil
}

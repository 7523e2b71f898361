// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package translate

import (
	"context"
	"fmt"
	"strings"

	"cityhall/internal/ai"
)

// Generator is the subset of the AI registry the LLM backend uses.
type Generator interface {
	Generate(ctx context.Context, systemPrompt string, messages []ai.Message) (string, error)
}

// LLM translates with the active AI provider. Used when no Cloud
// Translation key is configured.
type LLM struct {
	gen Generator
}

// NewLLM creates an LLM backend.
func NewLLM(gen Generator) *LLM {
	return &LLM{gen: gen}
}

// Translate implements Backend.
func (l *LLM) Translate(ctx context.Context, text, target string) (string, error) {
	system := fmt.Sprintf("Translate the user's text from English to the language with code %q. "+
		"Reply with the translation only. Keep names, phone numbers, addresses and URLs unchanged.", target)
	out, err := l.gen.Generate(ctx, system, ai.Prompt(text))
	if err != nil {
		return "", fmt.Errorf("llm translate: %w", err)
	}
	return strings.TrimSpace(out), nil
}

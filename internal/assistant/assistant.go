// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package assistant answers residents' questions with the active AI
// provider, grounded in the site's current content.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"cityhall/internal/ai"
	"cityhall/internal/config"
)

// MaxMessages bounds the conversation history sent upstream.
const MaxMessages = 20

// ErrInvalidConversation is returned for histories that cannot be sent to
// a provider.
var ErrInvalidConversation = errors.New("assistant: invalid conversation")

// Model generates replies and moderates prompts. *ai.Registry satisfies it.
type Model interface {
	Generate(ctx context.Context, systemPrompt string, messages []ai.Message) (string, error)
	CheckPrompt(ctx context.Context, prompt string) (*ai.ModerationResult, error)
}

// Knowledge supplies the content block appended to the system prompt.
type Knowledge interface {
	Build(ctx context.Context) string
}

// Service runs one assistant turn per call.
type Service struct {
	model     Model
	knowledge Knowledge
	site      config.Site
}

// NewService creates an assistant Service.
func NewService(model Model, knowledge Knowledge, site config.Site) *Service {
	return &Service{model: model, knowledge: knowledge, site: site}
}

// Reply answers the last user message of the conversation. Flagged
// prompts get a refusal without a model call. Upstream failures are
// returned to the caller.
func (s *Service) Reply(ctx context.Context, messages []ai.Message) (string, error) {
	if err := validate(messages); err != nil {
		return "", err
	}
	if len(messages) > MaxMessages {
		messages = messages[len(messages)-MaxMessages:]
		// Providers require the history to open with a user turn.
		for len(messages) > 0 && messages[0].Role != ai.RoleUser {
			messages = messages[1:]
		}
	}

	last := messages[len(messages)-1].Content
	mod, err := s.model.CheckPrompt(ctx, last)
	if err != nil {
		// Moderation is best-effort; providers filter too.
		slog.Warn("assistant moderation failed", "error", err)
	} else if !mod.Safe {
		slog.Info("assistant prompt flagged", "categories", mod.Categories)
		return s.Refusal(), nil
	}

	reply, err := s.model.Generate(ctx, s.SystemPrompt(ctx), messages)
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

// SystemPrompt is the site's assistant prompt followed by the knowledge
// block. An empty knowledge block leaves the bare prompt.
func (s *Service) SystemPrompt(ctx context.Context) string {
	var b strings.Builder
	b.WriteString(s.site.AssistantPrompt)
	fmt.Fprintf(&b, "\n\nThe city's phone number is %s and City Hall is at %s.", s.site.Phone, s.site.Address)
	if kb := s.knowledge.Build(ctx); kb != "" {
		b.WriteString("\n\n# City information\n\n")
		b.WriteString(kb)
	}
	return b.String()
}

// Fallback is the message shown when the assistant is unavailable.
func (s *Service) Fallback() string {
	return fmt.Sprintf("I'm sorry, I can't answer right now. Please call %s or visit us at %s.",
		s.site.Phone, s.site.Address)
}

// Refusal is the reply to a prompt that failed moderation.
func (s *Service) Refusal() string {
	return fmt.Sprintf("I can only help with questions about %s services. For anything else, please call %s.",
		s.site.Name, s.site.Phone)
}

func validate(messages []ai.Message) error {
	if len(messages) == 0 {
		return fmt.Errorf("%w: no messages", ErrInvalidConversation)
	}
	for i, m := range messages {
		if m.Role != ai.RoleUser && m.Role != ai.RoleAssistant {
			return fmt.Errorf("%w: message %d has role %q", ErrInvalidConversation, i, m.Role)
		}
		if strings.TrimSpace(m.Content) == "" {
			return fmt.Errorf("%w: message %d is empty", ErrInvalidConversation, i)
		}
	}
	if messages[len(messages)-1].Role != ai.RoleUser {
		return fmt.Errorf("%w: last message must come from the user", ErrInvalidConversation)
	}
	return nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package knowledge flattens the site's content into the text block the
// assistant receives as context.
package knowledge

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"cityhall/internal/content"
	"cityhall/internal/models"
	"cityhall/internal/richtext"
)

// Section headers, in output order.
const (
	SectionDepartments = "City Departments"
	SectionPages       = "Information Pages"
	SectionNews        = "Recent News"
	SectionEvents      = "Upcoming Events"
)

// Source supplies the content bundle.
type Source interface {
	GetAllContentForChatbot(ctx context.Context) (*content.Bundle, error)
}

// Builder assembles the knowledge block. It is rebuilt on every call.
type Builder struct {
	src Source
	now func() time.Time
}

// NewBuilder creates a Builder.
func NewBuilder(src Source) *Builder {
	return &Builder{src: src, now: time.Now}
}

// Build fetches all content and formats it. A fetch failure is logged and
// yields "" so the assistant can still answer from its system prompt.
func (b *Builder) Build(ctx context.Context) string {
	bundle, err := b.src.GetAllContentForChatbot(ctx)
	if err != nil {
		slog.Warn("knowledge base fetch failed", "error", err)
		return ""
	}
	filtered := *bundle
	filtered.Events = upcoming(bundle.Events, b.now())
	return Format(&filtered)
}

// upcoming drops events dated before the calendar day of now. Events
// with an unreadable date are kept.
func upcoming(events []models.Event, now time.Time) []models.Event {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	out := make([]models.Event, 0, len(events))
	for _, e := range events {
		if d, ok := models.ParseDate(e.Date); ok && d.Before(today) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// byDate orders events soonest first; unreadable dates go last. The CMS
// order is not trusted.
func byDate(events []models.Event) []models.Event {
	sorted := append([]models.Event(nil), events...)
	sort.SliceStable(sorted, func(i, j int) bool {
		di, okI := models.ParseDate(sorted[i].Date)
		dj, okJ := models.ParseDate(sorted[j].Date)
		if okI != okJ {
			return okI
		}
		return okI && di.Before(dj)
	})
	return sorted
}

// Format renders a bundle. Every section header is written even when the
// section has no entries.
func Format(bundle *content.Bundle) string {
	var w writer

	w.header(SectionDepartments)
	for _, d := range bundle.Departments {
		w.entry(d.Name)
		w.field("Description", richtext.ToPlainText(d.Description))
		w.field("Phone", d.Phone)
		w.field("Email", d.Email)
		w.field("Address", d.Address)
		w.field("Details", richtext.ToPlainText(d.Content))
	}

	w.header(SectionPages)
	for _, p := range bundle.Pages {
		w.entry(p.Title + " (/" + p.Slug + ")")
		w.body(richtext.ToPlainText(p.Content))
	}

	w.header(SectionNews)
	for _, n := range bundle.News {
		title := n.Title
		if n.PublishDate != "" {
			title += " (" + models.FormatDate(n.PublishDate) + ")"
		}
		w.entry(title)
		w.body(n.Excerpt)
	}

	w.header(SectionEvents)
	for _, e := range byDate(bundle.Events) {
		w.entry(eventLine(e))
		w.body(richtext.ToPlainText(e.Description))
	}

	return strings.TrimSpace(w.String())
}

func eventLine(e models.Event) string {
	line := e.Title + " - " + models.FormatDate(e.Date)
	if e.Time != "" {
		line += ", " + e.Time
	}
	if e.Location != "" {
		line += " at " + e.Location
	}
	return line
}

type writer struct {
	strings.Builder
}

func (w *writer) header(name string) {
	if w.Len() > 0 {
		w.WriteString("\n")
	}
	w.WriteString("## " + name + "\n")
}

func (w *writer) entry(title string) {
	w.WriteString("\n### " + title + "\n")
}

// field writes a labeled line, skipping empty values.
func (w *writer) field(label, value string) {
	if value = strings.TrimSpace(value); value != "" {
		w.WriteString(label + ": " + value + "\n")
	}
}

func (w *writer) body(text string) {
	if text = strings.TrimSpace(text); text != "" {
		w.WriteString(text + "\n")
	}
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package knowledge

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"cityhall/internal/cms/cmstest"
	"cityhall/internal/content"
	"cityhall/internal/models"
	"cityhall/internal/richtext"
)

type stubSource struct {
	bundle *content.Bundle
	err    error
}

func (s stubSource) GetAllContentForChatbot(context.Context) (*content.Bundle, error) {
	return s.bundle, s.err
}

func TestFormatSingleNewsItem(t *testing.T) {
	got := Format(&content.Bundle{
		News: []models.News{{Title: "Road Closure", PublishDate: "2026-02-01", Excerpt: "Main St closed"}},
	})

	want := strings.Join([]string{
		"## City Departments",
		"",
		"## Information Pages",
		"",
		"## Recent News",
		"",
		"### Road Closure (February 1, 2026)",
		"Main St closed",
		"",
		"## Upcoming Events",
	}, "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Format mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatSectionOrder(t *testing.T) {
	got := Format(&content.Bundle{})
	last := -1
	for _, h := range []string{SectionDepartments, SectionPages, SectionNews, SectionEvents} {
		i := strings.Index(got, "## "+h)
		if i < 0 {
			t.Fatalf("missing header %q in:\n%s", h, got)
		}
		if i < last {
			t.Errorf("header %q out of order", h)
		}
		last = i
	}
	if strings.Contains(got, "###") {
		t.Errorf("empty bundle should list no entries:\n%s", got)
	}
}

func TestFormatDepartmentSkipsEmptyFields(t *testing.T) {
	got := Format(&content.Bundle{
		Departments: []models.Department{{
			Name:        "City Clerk",
			Description: richtext.NewLegacyHTML("<p>Records &amp; licenses.</p>"),
			Phone:       "(555) 010-1000",
		}},
	})

	for _, want := range []string{"### City Clerk\n", "Description: Records & licenses.\n", "Phone: (555) 010-1000\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
	for _, absent := range []string{"Email:", "Address:", "Details:"} {
		if strings.Contains(got, absent) {
			t.Errorf("empty field %q emitted:\n%s", absent, got)
		}
	}
}

func TestFormatPagesAndEvents(t *testing.T) {
	got := Format(&content.Bundle{
		Pages: []models.Page{{Title: "Trash Pickup", Slug: "trash-pickup", Content: richtext.NewLegacyHTML("<p>Mondays.</p>")}},
		Events: []models.Event{
			{Title: "Council Meeting", Date: "2026-02-10", Time: "7:00 PM", Location: "City Hall"},
			{Title: "Cleanup", Date: "2026-02-11"},
		},
	})

	for _, want := range []string{
		"### Trash Pickup (/trash-pickup)\nMondays.\n",
		"### Council Meeting - February 10, 2026, 7:00 PM at City Hall\n",
		"### Cleanup - February 11, 2026",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestBuildDegradesToEmpty(t *testing.T) {
	b := NewBuilder(stubSource{err: errors.New("cms down")})
	if got := b.Build(context.Background()); got != "" {
		t.Errorf("Build on failure = %q, want empty", got)
	}
}

func TestBuildFromFetcher(t *testing.T) {
	day := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	fake := cmstest.New(
		cmstest.Entry("n1", models.ContentTypeNews, day, map[string]any{
			"title": "Road Closure", "slug": "road-closure", "publishDate": "2026-02-01", "excerpt": "Main St closed",
		}),
	)

	got := NewBuilder(content.NewFetcher(fake)).Build(context.Background())
	if !strings.Contains(got, "### Road Closure (February 1, 2026)\nMain St closed") {
		t.Errorf("unexpected knowledge block:\n%s", got)
	}
	if fake.Calls() != 4 {
		t.Errorf("calls: got %d, want 4", fake.Calls())
	}
}

func TestFormatSortsEvents(t *testing.T) {
	got := Format(&content.Bundle{
		Events: []models.Event{
			{Title: "Tree Lighting", Date: "2026-12-05"},
			{Title: "Someday", Date: "soon"},
			{Title: "Budget Hearing", Date: "2026-03-02"},
			{Title: "Spring Cleanup", Date: "2026-04-18"},
		},
	})

	var titles []string
	for _, line := range strings.Split(got, "\n") {
		if title, ok := strings.CutPrefix(line, "### "); ok {
			title, _, _ = strings.Cut(title, " - ")
			titles = append(titles, title)
		}
	}
	want := []string{"Budget Hearing", "Spring Cleanup", "Tree Lighting", "Someday"}
	if diff := cmp.Diff(want, titles); diff != "" {
		t.Errorf("event order (-want +got):\n%s", diff)
	}
}

func TestBuildDropsPastEvents(t *testing.T) {
	bundle := &content.Bundle{
		Events: []models.Event{
			{Title: "Last Week", Date: "2026-03-03"},
			{Title: "Today", Date: "2026-03-10"},
			{Title: "Next Week", Date: "2026-03-17"},
			{Title: "Undated", Date: ""},
		},
	}
	b := &Builder{
		src: stubSource{bundle: bundle},
		now: func() time.Time { return time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC) },
	}

	got := b.Build(context.Background())
	for _, want := range []string{"### Today", "### Next Week", "### Undated"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Last Week") {
		t.Errorf("past event listed:\n%s", got)
	}
	if len(bundle.Events) != 4 {
		t.Error("Build must not modify the fetched bundle")
	}
}

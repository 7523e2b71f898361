package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"cityhall/internal/cms"
	"cityhall/internal/models"
	"cityhall/internal/richtext"
	"cityhall/internal/slug"
)

// seedEntry is one sample entry with plain (un-localized) field values.
type seedEntry struct {
	contentType models.ContentType
	fields      map[string]any
}

// paragraphs builds a native rich-text document with one paragraph per
// argument.
func paragraphs(texts ...string) richtext.Node {
	root := richtext.Node{NodeType: "document", Data: map[string]any{}}
	for _, t := range texts {
		root.Content = append(root.Content, richtext.Node{
			NodeType: "paragraph",
			Content:  []richtext.Node{{NodeType: "text", Value: t}},
		})
	}
	return root
}

func legacyHTML(html string) richtext.Node {
	return richtext.NewLegacyHTML(html).Root
}

// sampleEntries returns a small municipal site: departments, pages, news,
// events and one alert. Dates are relative to now so the feeds and the
// alert window stay current.
func sampleEntries(now time.Time) []seedEntry {
	day := func(offset int) string { return now.AddDate(0, 0, offset).Format("2006-01-02") }

	entries := []seedEntry{
		{models.ContentTypeDepartment, map[string]any{
			"name":        "City Clerk",
			"description": paragraphs("Maintains official city records, elections, and public notices."),
			"phone":       "(555) 010-2000",
			"email":       "clerk@cityhall.example",
			"address":     "100 Main Street, Room 101",
			"content":     legacyHTML("<p>Office hours are <strong>8am&ndash;5pm</strong>, Monday to Friday.</p>"),
		}},
		{models.ContentTypeDepartment, map[string]any{
			"name":    "Public Works",
			"phone":   "(555) 010-3000",
			"address": "20 Depot Road",
			"content": paragraphs("Streets, water, and trash collection.", "Report potholes online or by phone."),
		}},
		{models.ContentTypePage, map[string]any{
			"title":   "Trash and Recycling",
			"content": paragraphs("Trash is collected every Monday. Recycling is collected every other Wednesday."),
		}},
		{models.ContentTypePage, map[string]any{
			"title":   "Parking Permits",
			"content": legacyHTML("<h2>Residential permits</h2><p>Apply at the City Clerk&#39;s office with proof of residence.</p>"),
		}},
		{models.ContentTypeNews, map[string]any{
			"title":       "Main Street Repaving Begins",
			"excerpt":     "Expect lane closures on Main Street for two weeks.",
			"publishDate": day(-2),
			"category":    "Public Works",
		}},
		{models.ContentTypeNews, map[string]any{
			"title":       "Council Adopts Annual Budget",
			"excerpt":     "The council approved the budget in a 5-2 vote.",
			"publishDate": day(-9),
			"category":    "Government",
		}},
		{models.ContentTypeEvent, map[string]any{
			"title":       "City Council Meeting",
			"date":        day(5),
			"time":        "7:00 PM",
			"location":    "Council Chambers",
			"description": paragraphs("Regular monthly meeting. Public comment opens at 7:15 PM."),
		}},
		{models.ContentTypeEvent, map[string]any{
			"title":       "Farmers Market",
			"date":        day(12),
			"time":        "8:00 AM",
			"location":    "Town Square",
			"description": legacyHTML("<p>Local produce &amp; crafts.</p>"),
		}},
		{models.ContentTypeAlert, map[string]any{
			"title":       "Water Main Repair",
			"message":     "Water service on Elm Street will be off from 9am to 1pm.",
			"severity":    "warning",
			"dismissible": true,
			"startsAt":    now.Add(-time.Hour).Format(time.RFC3339),
			"expiresAt":   now.Add(72 * time.Hour).Format(time.RFC3339),
			"priority":    10,
		}},
	}

	for _, e := range entries {
		switch e.contentType {
		case models.ContentTypeDepartment:
			e.fields["slug"] = slug.Generate(e.fields["name"].(string))
		case models.ContentTypePage, models.ContentTypeNews:
			e.fields["slug"] = slug.Generate(e.fields["title"].(string))
		}
	}
	return entries
}

// localize wraps every field value under the en-US locale, the shape the
// entries table stores.
func localize(fields map[string]any) ([]byte, error) {
	out := make(map[string]map[string]any, len(fields))
	for k, v := range fields {
		out[k] = map[string]any{cms.Locale: v}
	}
	return json.Marshal(out)
}

// Seed populates the entries table with sample municipal content.
// It does nothing when any entry already exists.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&count); err != nil {
		return fmt.Errorf("seed check entries: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	now := time.Now().UTC()
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	entries := sampleEntries(now)
	for _, e := range entries {
		fields, err := localize(e.fields)
		if err != nil {
			return fmt.Errorf("seed marshal %s: %w", e.contentType, err)
		}
		_, err = tx.Exec(`
			INSERT INTO entries (id, content_type, fields, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $4)
		`, uuid.NewString(), string(e.contentType), fields, now)
		if err != nil {
			return fmt.Errorf("seed insert %s: %w", e.contentType, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with sample content", "entries", len(entries))
	return nil
}

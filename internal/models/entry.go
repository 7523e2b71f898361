// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the content shapes read from the CMS and the
// request-scoped projections built from them (feed items, search hits).
package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"cityhall/internal/richtext"
)

// ContentType is the CMS content-type id of an entry.
type ContentType string

const (
	ContentTypeDepartment ContentType = "department"
	ContentTypePage       ContentType = "page"
	ContentTypeNews       ContentType = "news"
	ContentTypeEvent      ContentType = "event"
	ContentTypeAlert      ContentType = "alert"
)

// Entry is a single CMS record after locale resolution: Fields holds one
// value per field name, already taken from the en-US locale.
type Entry struct {
	ID          string                     `json:"id"`
	ContentType ContentType                `json:"content_type"`
	CreatedAt   time.Time                  `json:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
	Fields      map[string]json.RawMessage `json:"fields"`
}

// Text returns a string field, or "" when absent or not a string.
func (e *Entry) Text(name string) string {
	var s string
	if raw, ok := e.Fields[name]; ok {
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
	}
	return s
}

// Bool returns a boolean field, or false when absent or not a boolean.
func (e *Entry) Bool(name string) bool {
	var b bool
	if raw, ok := e.Fields[name]; ok {
		if err := json.Unmarshal(raw, &b); err != nil {
			return false
		}
	}
	return b
}

// Int returns a numeric field truncated to int. Numeric strings are
// accepted since editors sometimes store priorities as text.
func (e *Entry) Int(name string) int {
	raw, ok := e.Fields[name]
	if !ok {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(f)
	}
	if n, err := strconv.Atoi(strings.TrimSpace(e.Text(name))); err == nil {
		return n
	}
	return 0
}

// RichText decodes a rich-text field. Returns nil when absent or malformed.
func (e *Entry) RichText(name string) *richtext.Document {
	return richtext.Decode(e.Fields[name])
}

// LinkID returns the target id of a link field such as an asset reference
// ({"sys": {"type": "Link", "id": "..."}}), or "" when absent.
func (e *Entry) LinkID(name string) string {
	raw, ok := e.Fields[name]
	if !ok {
		return ""
	}
	var link struct {
		Sys struct {
			ID string `json:"id"`
		} `json:"sys"`
	}
	if err := json.Unmarshal(raw, &link); err != nil {
		return ""
	}
	return link.Sys.ID
}

// dateLayouts are the date formats editors produce, most specific first.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate parses a CMS date or datetime field value.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders a CMS date for people ("February 1, 2026"), falling
// back to the raw value when it does not parse.
func FormatDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return s
	}
	return t.Format("January 2, 2006")
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug generates and validates the URL path segments that name
// departments, pages and news articles.
package slug

import (
	"regexp"
	"strings"
)

// MaxLength bounds slugs accepted from request paths.
const MaxLength = 128

var (
	// unsafe matches anything that isn't a lowercase letter, digit, or hyphen.
	unsafe = regexp.MustCompile(`[^a-z0-9-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	// valid is the canonical slug shape: hyphen-separated lowercase words.
	valid = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Parks & Recreation 2026" → "parks-recreation-2026"
func Generate(s string) string {
	result := strings.Join(strings.Fields(strings.ToLower(s)), "-")
	result = unsafe.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// Valid reports whether s is a well-formed slug, the form Generate emits.
func Valid(s string) bool {
	return len(s) <= MaxLength && valid.MatchString(s)
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package richtext decodes CMS rich-text fields and projects them to plain
// text. A field arrives in one of two encodings: the CMS's native structured
// document, or a legacy wrapper that carries raw HTML inside the same
// document shape. The encoding is decided once in Decode; every consumer
// that needs text goes through ToPlainText so the decision lives here only.
package richtext

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Kind tags which encoding a Document uses.
type Kind int

const (
	// KindNative is the CMS structured document (block and inline nodes).
	KindNative Kind = iota
	// KindLegacyHTML wraps one raw HTML string at content[0].content[0].value.
	KindLegacyHTML
)

// legacyFlag is the document data key that marks the legacy HTML wrapper.
const legacyFlag = "legacyHtml"

// Node is one node of a structured document. Text leaves carry Value;
// everything else carries Content.
type Node struct {
	NodeType string         `json:"nodeType"`
	Value    string         `json:"value,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	Content  []Node         `json:"content,omitempty"`
}

// Document is a decoded rich-text field with its encoding resolved.
type Document struct {
	Kind Kind
	Root Node
}

// Decode parses a raw field value. It returns nil for absent, null, or
// unparseable input so callers treat all of those as an empty body. A
// JSON string is a Markdown long-text field and decodes as legacy HTML.
func Decode(raw json.RawMessage) *Document {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '"' {
		var source string
		if err := json.Unmarshal(raw, &source); err != nil {
			return nil
		}
		return NewMarkdown(source)
	}
	var root Node
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil
	}
	doc := &Document{Kind: KindNative, Root: root}
	if flag, ok := root.Data[legacyFlag].(bool); ok && flag {
		doc.Kind = KindLegacyHTML
	}
	return doc
}

// NewLegacyHTML builds a legacy wrapper document around an HTML string.
// Used by seed data and tests.
func NewLegacyHTML(html string) *Document {
	return &Document{
		Kind: KindLegacyHTML,
		Root: Node{
			NodeType: "document",
			Data:     map[string]any{legacyFlag: true},
			Content: []Node{{
				NodeType: "paragraph",
				Content:  []Node{{NodeType: "text", Value: html}},
			}},
		},
	}
}

// MarshalJSON encodes the document back to the CMS wire shape.
func (d Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Root)
}

// UnmarshalJSON decodes through Decode, so malformed input yields an empty
// native document instead of an error.
func (d *Document) UnmarshalJSON(b []byte) error {
	if doc := Decode(b); doc != nil {
		*d = *doc
		return nil
	}
	*d = Document{}
	return nil
}

// legacyHTML returns the raw HTML string of a legacy wrapper, or "" when
// the fixed position is missing.
func (d *Document) legacyHTML() string {
	if len(d.Root.Content) == 0 || len(d.Root.Content[0].Content) == 0 {
		return ""
	}
	return d.Root.Content[0].Content[0].Value
}

// ToPlainText projects a rich-text field to plain text. It never fails:
// unexpected shapes produce "".
func ToPlainText(doc *Document) string {
	if doc == nil {
		return ""
	}
	if doc.Kind == KindLegacyHTML {
		return HTMLToText(doc.legacyHTML())
	}
	var b strings.Builder
	writeNode(&b, doc.Root)
	return strings.TrimSpace(b.String())
}

// blockTypes are node types that start on a new line in plain text.
var blockTypes = map[string]bool{
	"paragraph":         true,
	"heading-1":         true,
	"heading-2":         true,
	"heading-3":         true,
	"heading-4":         true,
	"heading-5":         true,
	"heading-6":         true,
	"ordered-list":      true,
	"unordered-list":    true,
	"list-item":         true,
	"blockquote":        true,
	"hr":                true,
	"table":             true,
	"table-row":         true,
	"table-cell":        true,
	"table-header-cell": true,
}

func writeNode(b *strings.Builder, n Node) {
	if n.NodeType == "text" {
		b.WriteString(n.Value)
		return
	}
	for i, child := range n.Content {
		if i > 0 && blockTypes[child.NodeType] {
			b.WriteByte('\n')
		}
		writeNode(b, child)
	}
}

var (
	breakTag      = regexp.MustCompile(`(?i)<br\s*/?>`)
	blockCloseTag = regexp.MustCompile(`(?i)</(p|div|h[1-6])\s*>`)
	itemCloseTag  = regexp.MustCompile(`(?i)</li\s*>`)
	anyTag        = regexp.MustCompile(`<[^>]*>`)
	extraNewlines = regexp.MustCompile(`\n{3,}`)

	entities = strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
	)
)

// HTMLToText strips markup from an HTML fragment. Line breaks and list
// items become newlines; paragraph, div and heading closes become a blank
// line so paragraph separation survives flattening.
func HTMLToText(html string) string {
	if html == "" {
		return ""
	}
	s := strings.ReplaceAll(html, "\r\n", "\n")
	s = breakTag.ReplaceAllString(s, "\n")
	s = blockCloseTag.ReplaceAllString(s, "\n\n")
	s = itemCloseTag.ReplaceAllString(s, "\n")
	s = anyTag.ReplaceAllString(s, "")
	s = decodeEntities(s)
	// Escaped markup surfaces only after decoding.
	s = anyTag.ReplaceAllString(s, "")
	s = extraNewlines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// decodeEntities repeats the replacement until nothing changes, so
// double-encoded text such as "&amp;lt;" ends fully decoded.
func decodeEntities(s string) string {
	for {
		next := entities.Replace(s)
		if next == s {
			return s
		}
		s = next
	}
}

// Excerpt collapses whitespace in text and cuts it to at most max runes,
// backing off to the last word boundary and appending an ellipsis.
func Excerpt(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:max])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}

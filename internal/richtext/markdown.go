// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package richtext

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// md renders long-text fields. Raw HTML inside the Markdown passes
// through so the HTML projection sees it.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// NewMarkdown builds a legacy HTML document from a Markdown long-text
// field. It returns nil for blank or unrenderable input.
func NewMarkdown(source string) *Document {
	if len(bytes.TrimSpace([]byte(source))) == 0 {
		return nil
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return nil
	}
	return NewLegacyHTML(buf.String())
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package richtext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FirstRun returns the first text run of the first paragraph, trimmed.
// For legacy HTML it is the text of the first <p>, or the first line of the
// plain-text projection when the fragment has no paragraphs.
func FirstRun(doc *Document) string {
	if doc == nil {
		return ""
	}
	if doc.Kind == KindLegacyHTML {
		return firstHTMLParagraph(doc.legacyHTML())
	}
	para, ok := findFirst(doc.Root, "paragraph")
	if !ok {
		return ""
	}
	return firstText(para)
}

func findFirst(n Node, nodeType string) (Node, bool) {
	if n.NodeType == nodeType {
		return n, true
	}
	for _, child := range n.Content {
		if found, ok := findFirst(child, nodeType); ok {
			return found, true
		}
	}
	return Node{}, false
}

func firstText(n Node) string {
	if n.NodeType == "text" {
		return strings.TrimSpace(n.Value)
	}
	for _, child := range n.Content {
		if t := firstText(child); t != "" {
			return t
		}
	}
	return ""
}

func firstHTMLParagraph(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err == nil {
		var text string
		doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text = strings.Join(strings.Fields(s.Text()), " ")
			return text == ""
		})
		if text != "" {
			return text
		}
	}
	plain := HTMLToText(html)
	if i := strings.IndexByte(plain, '\n'); i >= 0 {
		plain = plain[:i]
	}
	return strings.TrimSpace(plain)
}

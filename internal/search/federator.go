// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package search federates a site search across the searchable content
// types of the CMS.
package search

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"cityhall/internal/cms"
	"cityhall/internal/models"
	"cityhall/internal/richtext"
)

const (
	// MinQueryLength is the shortest trimmed query that reaches the CMS.
	MinQueryLength = 2
	// PerTypeLimit caps the hits of each content type.
	PerTypeLimit = 5
	// snippetLength bounds descriptions derived from rich text.
	snippetLength = 160
)

// source is one searchable content type and its mapping to a hit.
type source struct {
	ct    models.ContentType
	toHit func(models.Entry) models.SearchHit
}

// sources lists the searched types in result order.
var sources = []source{
	{models.ContentTypeDepartment, departmentHit},
	{models.ContentTypePage, pageHit},
	{models.ContentTypeNews, newsHit},
	{models.ContentTypeEvent, eventHit},
}

// Federator runs one full-text query per content type.
type Federator struct {
	cms cms.Client
}

// NewFederator creates a Federator over the given CMS client.
func NewFederator(client cms.Client) *Federator {
	return &Federator{cms: client}
}

// Search returns hits for departments, pages, news and events, in that
// order. Queries shorter than MinQueryLength return no hits without
// touching the CMS. A failing sub-query fails the whole search.
func (f *Federator) Search(ctx context.Context, query string) ([]models.SearchHit, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryLength {
		return []models.SearchHit{}, nil
	}

	slots := make([][]models.SearchHit, len(sources))
	g, gCtx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			entries, err := f.cms.GetEntries(gCtx, cms.Query{
				ContentType: src.ct,
				Text:        query,
				Limit:       PerTypeLimit,
			})
			if err != nil {
				return fmt.Errorf("search %s: %w", src.ct, err)
			}
			hits := make([]models.SearchHit, 0, len(entries))
			for _, e := range entries {
				hits = append(hits, src.toHit(e))
			}
			slots[i] = hits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := []models.SearchHit{}
	for _, hits := range slots {
		results = append(results, hits...)
	}
	return results, nil
}

func departmentHit(e models.Entry) models.SearchHit {
	d := models.DepartmentFromEntry(e)
	return models.SearchHit{
		ID:          d.ID,
		Type:        models.SearchHitDepartment,
		Title:       d.Name,
		Description: snippet(d.Description),
		URL:         "/departments/" + d.Slug,
	}
}

func pageHit(e models.Entry) models.SearchHit {
	p := models.PageFromEntry(e)
	return models.SearchHit{
		ID:          p.ID,
		Type:        models.SearchHitPage,
		Title:       p.Title,
		Description: snippet(p.Content),
		URL:         "/" + p.Slug,
	}
}

func newsHit(e models.Entry) models.SearchHit {
	n := models.NewsFromEntry(e)
	return models.SearchHit{
		ID:          n.ID,
		Type:        models.SearchHitNews,
		Title:       n.Title,
		Description: n.Excerpt,
		URL:         "/news/" + n.Slug,
	}
}

func eventHit(e models.Entry) models.SearchHit {
	ev := models.EventFromEntry(e)
	return models.SearchHit{
		ID:          ev.ID,
		Type:        models.SearchHitEvent,
		Title:       ev.Title,
		Description: snippet(ev.Description),
		URL:         "/events",
	}
}

// snippet is used for types without a dedicated excerpt field.
func snippet(doc *richtext.Document) string {
	return richtext.Excerpt(richtext.ToPlainText(doc), snippetLength)
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package content provides per-type accessors over the CMS client. Each
// accessor applies its content-type filter and type-specific parameters
// and decodes the entries into typed values. CMS errors are returned
// unchanged in meaning; nothing here recovers from them.
package content

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"cityhall/internal/cms"
	"cityhall/internal/models"
)

// ChatbotNewsLimit bounds how many news items the assistant bundle carries.
const ChatbotNewsLimit = 10

// newsOrder sorts news newest first by publish date.
const newsOrder = "-fields.publishDate"

// Fetcher reads typed content from the CMS.
type Fetcher struct {
	cms cms.Client
}

// NewFetcher creates a Fetcher over the given CMS client.
func NewFetcher(client cms.Client) *Fetcher {
	return &Fetcher{cms: client}
}

// GetPages returns every page.
func (f *Fetcher) GetPages(ctx context.Context) ([]models.Page, error) {
	entries, err := f.cms.GetEntries(ctx, cms.Query{ContentType: models.ContentTypePage})
	if err != nil {
		return nil, fmt.Errorf("get pages: %w", err)
	}
	pages := make([]models.Page, 0, len(entries))
	for _, e := range entries {
		pages = append(pages, models.PageFromEntry(e))
	}
	return pages, nil
}

// GetPageBySlug returns the page with the given slug, or nil if none exists.
func (f *Fetcher) GetPageBySlug(ctx context.Context, slug string) (*models.Page, error) {
	e, err := f.bySlug(ctx, models.ContentTypePage, slug)
	if err != nil || e == nil {
		return nil, err
	}
	p := models.PageFromEntry(*e)
	return &p, nil
}

// GetNews returns news newest first by publish date. limit <= 0 returns
// every item.
func (f *Fetcher) GetNews(ctx context.Context, limit int) ([]models.News, error) {
	entries, err := f.cms.GetEntries(ctx, cms.Query{
		ContentType: models.ContentTypeNews,
		Limit:       max(limit, 0),
		Order:       newsOrder,
	})
	if err != nil {
		return nil, fmt.Errorf("get news: %w", err)
	}
	news := make([]models.News, 0, len(entries))
	for _, e := range entries {
		news = append(news, models.NewsFromEntry(e))
	}
	return news, nil
}

// GetEvents returns every event in whatever order the CMS produced.
// Callers that need chronological order sort the result themselves.
func (f *Fetcher) GetEvents(ctx context.Context) ([]models.Event, error) {
	entries, err := f.cms.GetEntries(ctx, cms.Query{ContentType: models.ContentTypeEvent})
	if err != nil {
		return nil, fmt.Errorf("get events: %w", err)
	}
	events := make([]models.Event, 0, len(entries))
	for _, e := range entries {
		events = append(events, models.EventFromEntry(e))
	}
	return events, nil
}

// GetDepartments returns every department, unordered.
func (f *Fetcher) GetDepartments(ctx context.Context) ([]models.Department, error) {
	entries, err := f.cms.GetEntries(ctx, cms.Query{ContentType: models.ContentTypeDepartment})
	if err != nil {
		return nil, fmt.Errorf("get departments: %w", err)
	}
	depts := make([]models.Department, 0, len(entries))
	for _, e := range entries {
		depts = append(depts, models.DepartmentFromEntry(e))
	}
	return depts, nil
}

// GetDepartmentBySlug returns the department with the given slug, or nil.
func (f *Fetcher) GetDepartmentBySlug(ctx context.Context, slug string) (*models.Department, error) {
	e, err := f.bySlug(ctx, models.ContentTypeDepartment, slug)
	if err != nil || e == nil {
		return nil, err
	}
	d := models.DepartmentFromEntry(*e)
	return &d, nil
}

// GetActiveAlerts returns alerts whose display window contains now,
// highest priority first.
func (f *Fetcher) GetActiveAlerts(ctx context.Context, now time.Time) ([]models.Alert, error) {
	entries, err := f.cms.GetEntries(ctx, cms.Query{ContentType: models.ContentTypeAlert})
	if err != nil {
		return nil, fmt.Errorf("get alerts: %w", err)
	}
	alerts := make([]models.Alert, 0, len(entries))
	for _, e := range entries {
		a := models.AlertFromEntry(e)
		if a.ActiveAt(now) {
			alerts = append(alerts, a)
		}
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Priority > alerts[j].Priority
	})
	return alerts, nil
}

// Bundle is every content type the assistant knowledge base draws from.
type Bundle struct {
	Departments []models.Department
	Pages       []models.Page
	News        []models.News
	Events      []models.Event
}

// GetAllContentForChatbot fetches departments, pages, news and events
// concurrently. The first failure cancels the rest and is returned.
func (f *Fetcher) GetAllContentForChatbot(ctx context.Context) (*Bundle, error) {
	var b Bundle
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		b.Departments, err = f.GetDepartments(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		b.Pages, err = f.GetPages(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		b.News, err = f.GetNews(gCtx, ChatbotNewsLimit)
		return err
	})
	g.Go(func() error {
		var err error
		b.Events, err = f.GetEvents(gCtx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("get chatbot content: %w", err)
	}
	return &b, nil
}

// bySlug runs an exact slug lookup limited to one entry.
func (f *Fetcher) bySlug(ctx context.Context, ct models.ContentType, slug string) (*models.Entry, error) {
	entries, err := f.cms.GetEntries(ctx, cms.Query{ContentType: ct, Slug: slug, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("get %s by slug: %w", ct, err)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package feed

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"cityhall/internal/models"
)

// ErrNotFound is returned when a department feed is requested for a slug
// that matches no department.
var ErrNotFound = errors.New("feed: not found")

// Source is the subset of the entry fetchers feeds read from.
type Source interface {
	GetNews(ctx context.Context, limit int) ([]models.News, error)
	GetEvents(ctx context.Context) ([]models.Event, error)
	GetDepartments(ctx context.Context) ([]models.Department, error)
	GetDepartmentBySlug(ctx context.Context, slug string) (*models.Department, error)
}

// Service fetches content and renders the site's feeds. Any fetch error
// fails the whole feed; there are no partial feeds.
type Service struct {
	src Source
	asm *Assembler
}

// NewService creates a feed Service.
func NewService(src Source, asm *Assembler) *Service {
	return &Service{src: src, asm: asm}
}

// All renders the merged feed of news, events and department updates.
func (s *Service) All(ctx context.Context) ([]byte, error) {
	var (
		news   []models.News
		events []models.Event
		depts  []models.Department
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		news, err = s.src.GetNews(gCtx, SingleKindLimit)
		return err
	})
	g.Go(func() error {
		var err error
		events, err = s.src.GetEvents(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		depts, err = s.src.GetDepartments(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("all-content feed: %w", err)
	}

	items := Merge(AllContentLimit,
		s.asm.NewsItems(news),
		s.asm.EventItems(events),
		s.asm.DepartmentItems(depts),
	)
	site := s.asm.site
	return s.asm.Render(Channel{
		Title:       site.Name,
		Path:        "/feed.xml",
		Description: site.FeedDescription,
	}, items)
}

// News renders the news feed.
func (s *Service) News(ctx context.Context) ([]byte, error) {
	news, err := s.src.GetNews(ctx, SingleKindLimit)
	if err != nil {
		return nil, fmt.Errorf("news feed: %w", err)
	}
	site := s.asm.site
	return s.asm.Render(Channel{
		Title:       site.Name + " News",
		Path:        "/feed/news",
		Description: "Latest news and announcements from " + site.Name + ".",
	}, Merge(SingleKindLimit, s.asm.NewsItems(news)))
}

// Events renders the events feed. The CMS does not order events, so they
// are sorted here before truncation.
func (s *Service) Events(ctx context.Context) ([]byte, error) {
	events, err := s.src.GetEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("events feed: %w", err)
	}
	site := s.asm.site
	return s.asm.Render(Channel{
		Title:       site.Name + " Events",
		Path:        "/feed/events",
		Description: "Upcoming events and meetings in " + site.Name + ".",
	}, Merge(SingleKindLimit, s.asm.EventItems(events)))
}

// Department renders the update feed of one department. Returns
// ErrNotFound when no department has the slug.
func (s *Service) Department(ctx context.Context, slug string) ([]byte, error) {
	dept, err := s.src.GetDepartmentBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("department feed: %w", err)
	}
	if dept == nil {
		return nil, ErrNotFound
	}
	site := s.asm.site
	return s.asm.Render(Channel{
		Title:       dept.Name + " | " + site.Name,
		Path:        "/feed/departments/" + dept.Slug,
		Description: "Updates from the " + dept.Name + " department.",
	}, s.asm.DepartmentItems([]models.Department{*dept}))
}

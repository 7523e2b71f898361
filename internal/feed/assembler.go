// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package feed turns news, events and department entries into RSS 2.0
// documents. Items from different content types are dated by per-type
// rules, merged into one newest-first sequence and truncated.
package feed

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"cityhall/internal/config"
	"cityhall/internal/models"
	"cityhall/internal/richtext"
)

const (
	// AllContentLimit caps the merged all-content feed.
	AllContentLimit = 50
	// SingleKindLimit caps the news and events feeds.
	SingleKindLimit = 20
)

// Assembler builds feed items and documents for one site.
type Assembler struct {
	site config.Site
	now  func() time.Time
}

// NewAssembler creates an Assembler. now supplies lastBuildDate; nil uses
// time.Now.
func NewAssembler(site config.Site, now func() time.Time) *Assembler {
	if now == nil {
		now = time.Now
	}
	return &Assembler{site: site, now: now}
}

// NewsItems maps news entries to permalink items dated by publishDate,
// falling back to the entry's creation time.
func (a *Assembler) NewsItems(news []models.News) []models.FeedItem {
	items := make([]models.FeedItem, 0, len(news))
	for _, n := range news {
		date, ok := models.ParseDate(n.PublishDate)
		if !ok {
			date = n.CreatedAt
		}
		link := a.site.URLFor("/news/" + n.Slug)
		items = append(items, models.FeedItem{
			Date:        date,
			Title:       n.Title,
			Link:        link,
			GUID:        link,
			IsPermaLink: true,
			Category:    n.Category,
			Description: n.Excerpt,
		})
	}
	return items
}

// EventItems maps events to items dated by the event date, falling back
// to creation time. Events share the /events page, so their guid is the
// entry id.
func (a *Assembler) EventItems(events []models.Event) []models.FeedItem {
	items := make([]models.FeedItem, 0, len(events))
	link := a.site.URLFor("/events")
	for _, e := range events {
		date, ok := models.ParseDate(e.Date)
		if !ok {
			date = e.CreatedAt
		}
		items = append(items, models.FeedItem{
			Date:        date,
			Title:       e.Title,
			Link:        link,
			GUID:        e.ID,
			Category:    "Events",
			Description: eventDescription(e),
		})
	}
	return items
}

// DepartmentItems maps departments to update items dated by their last
// edit. The guid carries the update time so readers refresh on every edit.
func (a *Assembler) DepartmentItems(depts []models.Department) []models.FeedItem {
	items := make([]models.FeedItem, 0, len(depts))
	for _, d := range depts {
		items = append(items, models.FeedItem{
			Date:        d.UpdatedAt,
			Title:       d.Name + " Department Update",
			Link:        a.site.URLFor("/departments/" + d.Slug),
			GUID:        d.ID + "-" + strconv.FormatInt(d.UpdatedAt.Unix(), 10),
			Category:    "Departments",
			Description: departmentDescription(d),
		})
	}
	return items
}

func eventDescription(e models.Event) string {
	date := models.FormatDate(e.Date)
	if e.Location != "" {
		return date + " at " + e.Location
	}
	return date
}

func departmentDescription(d models.Department) string {
	if text := richtext.FirstRun(d.Description); text != "" {
		return text
	}
	return fmt.Sprintf("Information and services from the %s department.", d.Name)
}

// Merge combines item lists, sorts them newest first and keeps at most
// limit items. Items with equal dates keep their input order. limit <= 0
// keeps everything.
func Merge(limit int, lists ...[]models.FeedItem) []models.FeedItem {
	var merged []models.FeedItem
	for _, l := range lists {
		merged = append(merged, l...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date.After(merged[j].Date)
	})
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// Channel describes the feed-level metadata of one document.
type Channel struct {
	Title       string
	Path        string // site-relative feed path, used for the atom self link
	Description string
}

// Render serializes items into an RSS 2.0 document for the channel.
func (a *Assembler) Render(ch Channel, items []models.FeedItem) ([]byte, error) {
	doc := rssDocument{
		Version: "2.0",
		AtomNS:  "http://www.w3.org/2005/Atom",
		Channel: rssChannel{
			Title:         ch.Title,
			Link:          a.site.URLFor("/"),
			Description:   ch.Description,
			Language:      strings.ToLower(a.site.Language),
			LastBuildDate: a.now().UTC().Format(time.RFC1123Z),
			AtomLink: atomLink{
				Href: a.site.URLFor(ch.Path),
				Rel:  "self",
				Type: "application/rss+xml",
			},
		},
	}
	for _, it := range items {
		doc.Channel.Items = append(doc.Channel.Items, rssItem{
			Title:       it.Title,
			Link:        it.Link,
			GUID:        rssGUID{Value: it.GUID, IsPermaLink: it.IsPermaLink},
			PubDate:     it.Date.UTC().Format(time.RFC1123Z),
			Category:    it.Category,
			Description: it.Description,
		})
	}
	return marshal(doc)
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// FeedItem is one syndication item built from an entry for a single
// request and discarded after serialization.
type FeedItem struct {
	Date        time.Time
	Title       string
	Link        string
	GUID        string
	IsPermaLink bool
	Category    string
	Description string
}

// SearchHitType names the content type a search hit came from.
type SearchHitType string

const (
	SearchHitDepartment SearchHitType = "department"
	SearchHitPage       SearchHitType = "page"
	SearchHitNews       SearchHitType = "news"
	SearchHitEvent      SearchHitType = "event"
)

// SearchHit is the uniform shape of one site search result.
type SearchHit struct {
	ID          string        `json:"id"`
	Type        SearchHitType `json:"type"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	URL         string        `json:"url"`
}

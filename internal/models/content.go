// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"cityhall/internal/richtext"
)

// Page is a standalone information page served at /{slug}.
type Page struct {
	ID        string
	Title     string
	Slug      string
	Content   *richtext.Document
	CreatedAt time.Time
	UpdatedAt time.Time
}

// News is a dated announcement served at /news/{slug}.
type News struct {
	ID          string
	Title       string
	Slug        string
	Excerpt     string
	PublishDate string
	Category    string
	ImageID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Event is a calendar entry. Events have no page of their own; they are
// all listed at /events.
type Event struct {
	ID          string
	Title       string
	Date        string
	Time        string
	Location    string
	Description *richtext.Document
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Department is a city department served at /departments/{slug}.
type Department struct {
	ID          string
	Name        string
	Slug        string
	Description *richtext.Document
	Phone       string
	Email       string
	Address     string
	Content     *richtext.Document
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Alert is a site-wide banner shown between StartsAt and ExpiresAt.
type Alert struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Severity    string    `json:"severity"`
	Dismissible bool      `json:"dismissible"`
	Link        string    `json:"link,omitempty"`
	LinkText    string    `json:"linkText,omitempty"`
	StartsAt    string    `json:"startsAt,omitempty"`
	ExpiresAt   string    `json:"expiresAt,omitempty"`
	Priority    int       `json:"priority"`
	UpdatedAt   time.Time `json:"-"`
}

// ActiveAt reports whether the alert's window contains t. Missing bounds
// are open; unparseable bounds are treated as missing.
func (a *Alert) ActiveAt(t time.Time) bool {
	if start, ok := ParseDate(a.StartsAt); ok && t.Before(start) {
		return false
	}
	if end, ok := ParseDate(a.ExpiresAt); ok && !t.Before(end) {
		return false
	}
	return true
}

// PageFromEntry decodes a page entry.
func PageFromEntry(e Entry) Page {
	return Page{
		ID:        e.ID,
		Title:     e.Text("title"),
		Slug:      e.Text("slug"),
		Content:   e.RichText("content"),
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// NewsFromEntry decodes a news entry.
func NewsFromEntry(e Entry) News {
	return News{
		ID:          e.ID,
		Title:       e.Text("title"),
		Slug:        e.Text("slug"),
		Excerpt:     e.Text("excerpt"),
		PublishDate: e.Text("publishDate"),
		Category:    e.Text("category"),
		ImageID:     e.LinkID("image"),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// EventFromEntry decodes an event entry.
func EventFromEntry(e Entry) Event {
	return Event{
		ID:          e.ID,
		Title:       e.Text("title"),
		Date:        e.Text("date"),
		Time:        e.Text("time"),
		Location:    e.Text("location"),
		Description: e.RichText("description"),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// DepartmentFromEntry decodes a department entry.
func DepartmentFromEntry(e Entry) Department {
	return Department{
		ID:          e.ID,
		Name:        e.Text("name"),
		Slug:        e.Text("slug"),
		Description: e.RichText("description"),
		Phone:       e.Text("phone"),
		Email:       e.Text("email"),
		Address:     e.Text("address"),
		Content:     e.RichText("content"),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// AlertFromEntry decodes an alert entry.
func AlertFromEntry(e Entry) Alert {
	return Alert{
		ID:          e.ID,
		Title:       e.Text("title"),
		Message:     e.Text("message"),
		Severity:    e.Text("severity"),
		Dismissible: e.Bool("dismissible"),
		Link:        e.Text("link"),
		LinkText:    e.Text("linkText"),
		StartsAt:    e.Text("startsAt"),
		ExpiresAt:   e.Text("expiresAt"),
		Priority:    e.Int("priority"),
		UpdatedAt:   e.UpdatedAt,
	}
}

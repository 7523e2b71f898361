// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cityhall/internal/models"
)

// pageSize is the number of entries requested per delivery API call.
const pageSize = 100

// errNotFound marks a 404 from the delivery API.
var errNotFound = errors.New("cms: not found")

// DeliveryConfig holds the credentials for the content delivery API.
type DeliveryConfig struct {
	BaseURL     string
	SpaceID     string
	Environment string
	AccessToken string
}

// Delivery reads published entries from a Contentful-compatible content
// delivery API. All requests ask for every locale (locale=*) and resolve
// the en-US value locally.
type Delivery struct {
	config DeliveryConfig
	client *http.Client
}

// NewDelivery creates a delivery API client.
func NewDelivery(cfg DeliveryConfig) *Delivery {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://cdn.contentful.com"
	}
	if cfg.Environment == "" {
		cfg.Environment = "master"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Delivery{
		config: cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// GetEntries fetches all entries matching q, paging until q.Limit entries
// are collected or the API reports no more.
func (d *Delivery) GetEntries(ctx context.Context, q Query) ([]models.Entry, error) {
	var out []models.Entry
	skip := 0
	for {
		limit := pageSize
		if q.Limit > 0 && q.Limit-len(out) < limit {
			limit = q.Limit - len(out)
		}

		params := url.Values{}
		params.Set("content_type", string(q.ContentType))
		params.Set("locale", "*")
		params.Set("limit", strconv.Itoa(limit))
		params.Set("skip", strconv.Itoa(skip))
		if q.Text != "" {
			params.Set("query", q.Text)
		}
		if q.Slug != "" {
			params.Set("fields.slug", q.Slug)
		}
		if q.Order != "" {
			params.Set("order", q.Order)
		}

		var page deliveryCollection
		if err := d.get(ctx, "/entries", params, &page); err != nil {
			return nil, fmt.Errorf("get %s entries: %w", q.ContentType, err)
		}
		for _, item := range page.Items {
			out = append(out, item.toEntry())
		}

		skip += len(page.Items)
		if len(page.Items) == 0 || skip >= page.Total || (q.Limit > 0 && len(out) >= q.Limit) {
			return out, nil
		}
	}
}

// GetEntry fetches one entry by id. Returns nil if the API reports 404.
func (d *Delivery) GetEntry(ctx context.Context, id string) (*models.Entry, error) {
	params := url.Values{}
	params.Set("locale", "*")

	var item deliveryEntry
	err := d.get(ctx, "/entries/"+url.PathEscape(id), params, &item)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry %s: %w", id, err)
	}
	e := item.toEntry()
	return &e, nil
}

// get performs an authenticated GET against the environment root and
// decodes the JSON response into dst.
func (d *Delivery) get(ctx context.Context, path string, params url.Values, dst any) error {
	endpoint := fmt.Sprintf("%s/spaces/%s/environments/%s%s?%s",
		d.config.BaseURL,
		url.PathEscape(d.config.SpaceID),
		url.PathEscape(d.config.Environment),
		path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("cms request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+d.config.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("cms http: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("cms read body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cms API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("cms unmarshal: %w", err)
	}
	return nil
}

// --- Delivery API types ---

type deliveryLink struct {
	Sys struct {
		ID string `json:"id"`
	} `json:"sys"`
}

type deliverySys struct {
	ID          string       `json:"id"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	ContentType deliveryLink `json:"contentType"`
}

type deliveryEntry struct {
	Sys    deliverySys                           `json:"sys"`
	Fields map[string]map[string]json.RawMessage `json:"fields"`
}

type deliveryCollection struct {
	Total int             `json:"total"`
	Skip  int             `json:"skip"`
	Limit int             `json:"limit"`
	Items []deliveryEntry `json:"items"`
}

func (e deliveryEntry) toEntry() models.Entry {
	return models.Entry{
		ID:          e.Sys.ID,
		ContentType: models.ContentType(e.Sys.ContentType.Sys.ID),
		CreatedAt:   e.Sys.CreatedAt,
		UpdatedAt:   e.Sys.UpdatedAt,
		Fields:      ResolveLocale(e.Fields),
	}
}

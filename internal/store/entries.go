// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"cityhall/internal/cms"
	"cityhall/internal/models"
)

// EntryStore serves CMS entries from the local entries table. It
// implements cms.Client so the rest of the application cannot tell it
// apart from the delivery API.
type EntryStore struct {
	db *sql.DB
}

// NewEntryStore creates a new EntryStore with the given database connection.
func NewEntryStore(db *sql.DB) *EntryStore {
	return &EntryStore{db: db}
}

// systemColumns maps sys.* order attributes to columns.
var systemColumns = map[string]string{
	"id":        "id",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// likeEscaper escapes ILIKE wildcards in user text.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// GetEntries returns the entries matching q. Without an order the newest
// update comes first.
func (s *EntryStore) GetEntries(ctx context.Context, q cms.Query) ([]models.Entry, error) {
	var (
		where = []string{"content_type = $1"}
		args  = []any{string(q.ContentType)}
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.Slug != "" {
		where = append(where, fmt.Sprintf("fields->'slug'->>'%s' = %s", cms.Locale, arg(q.Slug)))
	}
	if q.Text != "" {
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM jsonb_each(fields) f WHERE f.value->>'%s' ILIKE %s)",
			cms.Locale, arg("%"+likeEscaper.Replace(q.Text)+"%"),
		))
	}

	order := "updated_at DESC"
	if o, ok := cms.ParseOrder(q.Order); ok {
		dir := "ASC"
		if o.Descending {
			dir = "DESC"
		}
		if o.System {
			if col, ok := systemColumns[o.Name]; ok {
				order = col + " " + dir
			}
		} else {
			order = fmt.Sprintf("fields->(%s::text)->>'%s' %s NULLS LAST", arg(o.Name), cms.Locale, dir)
		}
	}

	query := `SELECT id, content_type, fields, created_at, updated_at
		FROM entries
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY ` + order + `, id`
	if q.Limit > 0 {
		query += " LIMIT " + arg(q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// GetEntry retrieves an entry by id. Returns nil if not found.
func (s *EntryStore) GetEntry(ctx context.Context, id string) (*models.Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, content_type, fields, created_at, updated_at
		FROM entries WHERE id = $1
	`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

// Put inserts or replaces an entry. Field values are stored under the
// en-US locale. An empty ID gets a fresh UUID; the stored ID is returned.
// Zero timestamps default to now, and an existing row keeps its
// created_at.
func (s *EntryStore) Put(ctx context.Context, e models.Entry) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	localized := make(map[string]map[string]json.RawMessage, len(e.Fields))
	for name, v := range e.Fields {
		localized[name] = map[string]json.RawMessage{cms.Locale: v}
	}
	fields, err := json.Marshal(localized)
	if err != nil {
		return "", fmt.Errorf("marshal entry fields: %w", err)
	}

	var created, updated any
	if !e.CreatedAt.IsZero() {
		created = e.CreatedAt
	}
	if !e.UpdatedAt.IsZero() {
		updated = e.UpdatedAt
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO entries (id, content_type, fields, created_at, updated_at)
		VALUES ($1, $2, $3, COALESCE($4::timestamptz, now()), COALESCE($5::timestamptz, now()))
		ON CONFLICT (id) DO UPDATE SET
			content_type = EXCLUDED.content_type,
			fields = EXCLUDED.fields,
			updated_at = EXCLUDED.updated_at
	`, e.ID, string(e.ContentType), fields, created, updated)
	if err != nil {
		return "", fmt.Errorf("put entry: %w", err)
	}
	return e.ID, nil
}

// Delete removes an entry. Deleting a missing entry is not an error.
func (s *EntryStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM entries WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.Entry, error) {
	var (
		e      models.Entry
		ct     string
		fields []byte
	)
	if err := row.Scan(&e.ID, &ct, &fields, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan entry: %w", err)
	}
	var localized map[string]map[string]json.RawMessage
	if err := json.Unmarshal(fields, &localized); err != nil {
		return nil, fmt.Errorf("decode entry %s fields: %w", e.ID, err)
	}
	e.ContentType = models.ContentType(ct)
	e.Fields = cms.ResolveLocale(localized)
	return &e, nil
}

package store

import (
	"context"
	"slices"
	"testing"
	"time"

	"cityhall/internal/cms"
	"cityhall/internal/cms/cmstest"
	"cityhall/internal/models"
)

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// putAll stores entries and fails the test on the first error.
func putAll(t *testing.T, s *EntryStore, entries ...models.Entry) {
	t.Helper()
	for _, e := range entries {
		if _, err := s.Put(context.Background(), e); err != nil {
			t.Fatalf("Put %s: %v", e.ID, err)
		}
	}
}

func ids(entries []models.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestEntryStorePutAndGet(t *testing.T) {
	db := testDB(t)
	s := NewEntryStore(db)
	ct := testContentType(t, db)
	ctx := context.Background()

	e := cmstest.Entry("", ct, base, map[string]any{"title": "Road Closure", "priority": 3})
	id, err := s.Put(ctx, e)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}

	got, err := s.GetEntry(ctx, id)
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if got == nil {
		t.Fatal("expected entry, got nil")
	}
	if got.ContentType != ct || got.Text("title") != "Road Closure" || got.Int("priority") != 3 {
		t.Errorf("unexpected entry: %+v", got)
	}
	if !got.CreatedAt.Equal(base) {
		t.Errorf("created_at: got %v, want %v", got.CreatedAt, base)
	}

	// Replacing keeps created_at and swaps the fields.
	e.ID = id
	e.CreatedAt = time.Time{}
	e.UpdatedAt = base.Add(time.Hour)
	e.Fields = cmstest.Entry("", ct, base, map[string]any{"title": "Road Reopened"}).Fields
	putAll(t, s, e)

	got, err = s.GetEntry(ctx, id)
	if err != nil || got == nil {
		t.Fatalf("GetEntry after update: %+v, %v", got, err)
	}
	if got.Text("title") != "Road Reopened" || got.Int("priority") != 0 {
		t.Errorf("fields not replaced: %+v", got.Fields)
	}
	if !got.CreatedAt.Equal(base) || !got.UpdatedAt.Equal(base.Add(time.Hour)) {
		t.Errorf("timestamps: created %v updated %v", got.CreatedAt, got.UpdatedAt)
	}
}

func TestEntryStoreGetEntryNotFound(t *testing.T) {
	db := testDB(t)
	got, err := NewEntryStore(db).GetEntry(context.Background(), "does-not-exist")
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestEntryStoreGetEntriesFilters(t *testing.T) {
	db := testDB(t)
	s := NewEntryStore(db)
	ct := testContentType(t, db)
	other := testContentType(t, db)
	ctx := context.Background()

	prefix := string(ct) + "-"
	putAll(t, s,
		cmstest.Entry(prefix+"a", ct, base, map[string]any{"title": "Trash Pickup", "slug": "trash"}),
		cmstest.Entry(prefix+"b", ct, base.Add(time.Hour), map[string]any{"title": "Parking 100% free", "slug": "parking"}),
		cmstest.Entry(prefix+"c", other, base, map[string]any{"title": "Trash elsewhere", "slug": "trash"}),
	)

	tests := []struct {
		name string
		q    cms.Query
		want []string
	}{
		{"type only, newest update first", cms.Query{ContentType: ct}, []string{prefix + "b", prefix + "a"}},
		{"slug", cms.Query{ContentType: ct, Slug: "trash"}, []string{prefix + "a"}},
		{"text is case-insensitive", cms.Query{ContentType: ct, Text: "trash"}, []string{prefix + "a"}},
		{"text wildcards are literal", cms.Query{ContentType: ct, Text: "100%"}, []string{prefix + "b"}},
		{"underscore is literal", cms.Query{ContentType: ct, Text: "_"}, nil},
		{"limit", cms.Query{ContentType: ct, Limit: 1}, []string{prefix + "b"}},
		{"system order", cms.Query{ContentType: ct, Order: "sys.updatedAt"}, []string{prefix + "a", prefix + "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.GetEntries(ctx, tt.q)
			if err != nil {
				t.Fatalf("GetEntries: %v", err)
			}
			if !slices.Equal(ids(got), tt.want) {
				t.Errorf("got %v, want %v", ids(got), tt.want)
			}
		})
	}
}

func TestEntryStoreFieldOrder(t *testing.T) {
	db := testDB(t)
	s := NewEntryStore(db)
	ct := testContentType(t, db)
	prefix := string(ct) + "-"

	putAll(t, s,
		cmstest.Entry(prefix+"old", ct, base, map[string]any{"publishDate": "2026-01-05"}),
		cmstest.Entry(prefix+"new", ct, base, map[string]any{"publishDate": "2026-02-20"}),
		cmstest.Entry(prefix+"none", ct, base, map[string]any{"title": "undated"}),
		cmstest.Entry(prefix+"mid", ct, base, map[string]any{"publishDate": "2026-02-01"}),
	)

	got, err := s.GetEntries(context.Background(), cms.Query{ContentType: ct, Order: "-fields.publishDate"})
	if err != nil {
		t.Fatalf("GetEntries: %v", err)
	}
	want := []string{prefix + "new", prefix + "mid", prefix + "old", prefix + "none"}
	if !slices.Equal(ids(got), want) {
		t.Errorf("got %v, want %v", ids(got), want)
	}
}

func TestEntryStoreDelete(t *testing.T) {
	db := testDB(t)
	s := NewEntryStore(db)
	ct := testContentType(t, db)
	ctx := context.Background()

	id, err := s.Put(ctx, cmstest.Entry("", ct, base, map[string]any{"title": "Gone"}))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := s.GetEntry(ctx, id); got != nil {
		t.Errorf("entry still present: %+v", got)
	}
	if err := s.Delete(ctx, id); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/openpreview/preprint.review/internal/services/preprint/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "preprint.db"))
	if err != nil {
		t.Fatalf("open preprint store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close preprint store: %v", err)
		}
	})
	return store
}

func testPreprint(id string, handle string, at time.Time) storage.PreprintRecord {
	return storage.PreprintRecord{
		ID:        id,
		Handle:    handle,
		Title:     "Title of " + id,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func TestStore_PutGetPreprintRoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	now := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)
	publishedOn := time.Date(2026, 3, 30, 0, 0, 0, 0, time.UTC)

	record := testPreprint("pp-1", "10.1101/pp-1", now)
	record.URL = "https://biorxiv.org/content/10.1101/pp-1"
	record.Authors = "Doe, J.; Roe, R."
	record.Server = "biorxiv"
	record.License = "CC-BY-4.0"
	record.PublishedOn = &publishedOn
	if err := store.PutPreprint(context.Background(), record); err != nil {
		t.Fatalf("put preprint: %v", err)
	}

	got, err := store.GetPreprint(context.Background(), "pp-1")
	if err != nil {
		t.Fatalf("get preprint: %v", err)
	}
	if got.Handle != "10.1101/pp-1" || got.Server != "biorxiv" {
		t.Fatalf("unexpected preprint: %+v", got)
	}
	if got.PublishedOn == nil || !got.PublishedOn.Equal(publishedOn) {
		t.Fatalf("published_on = %v, want %v", got.PublishedOn, publishedOn)
	}

	byHandle, err := store.GetPreprintByHandle(context.Background(), "10.1101/pp-1")
	if err != nil {
		t.Fatalf("get preprint by handle: %v", err)
	}
	if byHandle.ID != "pp-1" {
		t.Fatalf("handle lookup id = %q, want pp-1", byHandle.ID)
	}

	if _, err := store.GetPreprint(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_PutPreprintRejectsDuplicateHandle(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	now := time.Date(2026, 4, 2, 8, 10, 0, 0, time.UTC)

	if err := store.PutPreprint(context.Background(), testPreprint("pp-1", "10.1101/dup", now)); err != nil {
		t.Fatalf("put first preprint: %v", err)
	}
	err := store.PutPreprint(context.Background(), testPreprint("pp-2", "10.1101/dup", now))
	if !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate handle, got %v", err)
	}

	// Upserting the same row again is not a conflict.
	if err := store.PutPreprint(context.Background(), testPreprint("pp-1", "10.1101/dup", now.Add(time.Minute))); err != nil {
		t.Fatalf("re-put same preprint: %v", err)
	}
}

func TestStore_RequestsListedOldestFirstWithDuplicates(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	base := time.Date(2026, 4, 2, 8, 20, 0, 0, time.UTC)

	if err := store.PutPreprint(context.Background(), testPreprint("pp-1", "10.1101/reqs", base)); err != nil {
		t.Fatalf("put preprint: %v", err)
	}
	for i, id := range []string{"req-1", "req-2", "req-3"} {
		record := storage.RequestRecord{
			ID:              id,
			PreprintID:      "pp-1",
			AuthorPersonaID: "persona-1",
			CreatedAt:       base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.PutRequest(context.Background(), record); err != nil {
			t.Fatalf("put request %s: %v", id, err)
		}
	}

	byPreprint, err := store.ListRequestsByPreprint(context.Background(), "pp-1")
	if err != nil {
		t.Fatalf("list requests by preprint: %v", err)
	}
	if len(byPreprint) != 3 || byPreprint[0].ID != "req-1" {
		t.Fatalf("unexpected requests: %+v", byPreprint)
	}

	byPersona, err := store.ListRequestsByPersona(context.Background(), "persona-1")
	if err != nil {
		t.Fatalf("list requests by persona: %v", err)
	}
	if len(byPersona) != 3 {
		t.Fatalf("requests by persona = %d, want 3", len(byPersona))
	}

	bad := storage.RequestRecord{
		ID:              "req-bad",
		PreprintID:      "pp-missing",
		AuthorPersonaID: "persona-1",
		CreatedAt:       base,
	}
	if err := store.PutRequest(context.Background(), bad); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected ErrConflict for missing preprint, got %v", err)
	}
}

func TestStore_RapidReviewAnswersRoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	now := time.Date(2026, 4, 2, 8, 30, 0, 0, time.UTC)

	if err := store.PutPreprint(context.Background(), testPreprint("pp-1", "10.1101/rapid", now)); err != nil {
		t.Fatalf("put preprint: %v", err)
	}

	record := storage.RapidReviewRecord{
		ID:              "rr-1",
		PreprintID:      "pp-1",
		AuthorPersonaID: "persona-1",
		Answers: map[string]string{
			"novel":     "yes",
			"methods":   "unsure",
			"ethics":    "na",
			"recommend": "no",
		},
		IsPublished: true,
		CreatedAt:   now,
	}
	if err := store.PutRapidReview(context.Background(), record); err != nil {
		t.Fatalf("put rapid review: %v", err)
	}

	got, err := store.GetRapidReview(context.Background(), "pp-1", "rr-1")
	if err != nil {
		t.Fatalf("get rapid review: %v", err)
	}
	if len(got.Answers) != 4 || got.Answers["methods"] != "unsure" {
		t.Fatalf("unexpected answers: %+v", got.Answers)
	}
	if !got.IsPublished || got.IsFlagged {
		t.Fatalf("unexpected flags: %+v", got)
	}

	// Flag toggle keeps answers and creation time intact.
	got.IsFlagged = true
	if err := store.PutRapidReview(context.Background(), got); err != nil {
		t.Fatalf("re-put rapid review: %v", err)
	}
	flagged, err := store.GetRapidReview(context.Background(), "pp-1", "rr-1")
	if err != nil {
		t.Fatalf("get flagged rapid review: %v", err)
	}
	if !flagged.IsFlagged || len(flagged.Answers) != 4 || !flagged.CreatedAt.Equal(now) {
		t.Fatalf("unexpected flagged record: %+v", flagged)
	}

	if _, err := store.GetRapidReview(context.Background(), "pp-1", "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListRapidReviewsOldestFirst(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	base := time.Date(2026, 4, 2, 8, 40, 0, 0, time.UTC)

	if err := store.PutPreprint(context.Background(), testPreprint("pp-1", "10.1101/rapid-list", base)); err != nil {
		t.Fatalf("put preprint: %v", err)
	}
	for i, id := range []string{"rr-b", "rr-a"} {
		record := storage.RapidReviewRecord{
			ID:              id,
			PreprintID:      "pp-1",
			AuthorPersonaID: "persona-1",
			Answers:         map[string]string{"novel": "yes"},
			IsPublished:     true,
			CreatedAt:       base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.PutRapidReview(context.Background(), record); err != nil {
			t.Fatalf("put rapid review %s: %v", id, err)
		}
	}

	records, err := store.ListRapidReviewsByPreprint(context.Background(), "pp-1")
	if err != nil {
		t.Fatalf("list rapid reviews: %v", err)
	}
	if len(records) != 2 || records[0].ID != "rr-b" || records[1].ID != "rr-a" {
		t.Fatalf("unexpected order: %+v", records)
	}
	if records[0].Answers["novel"] != "yes" {
		t.Fatalf("answers missing from listed record: %+v", records[0])
	}
}

func TestStore_TagsUpsertAndOrder(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	now := time.Date(2026, 4, 2, 8, 50, 0, 0, time.UTC)

	if err := store.PutPreprint(context.Background(), testPreprint("pp-1", "10.1101/tags", now)); err != nil {
		t.Fatalf("put preprint: %v", err)
	}
	for _, name := range []string{"neuroscience", "open-data", "neuroscience"} {
		record := storage.TagRecord{PreprintID: "pp-1", Name: name, CreatedAt: now}
		if err := store.PutTag(context.Background(), record); err != nil {
			t.Fatalf("put tag %q: %v", name, err)
		}
	}

	tags, err := store.ListTagsByPreprint(context.Background(), "pp-1")
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	if len(tags) != 2 || tags[0].Name != "neuroscience" || tags[1].Name != "open-data" {
		t.Fatalf("unexpected tags: %+v", tags)
	}
}

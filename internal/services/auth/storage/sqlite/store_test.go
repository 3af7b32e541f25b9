package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/openpreview/preprint.review/internal/services/auth/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func TestStore_SessionRoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	at := time.Date(2026, time.May, 11, 8, 0, 0, 0, time.UTC)

	record := storage.SessionRecord{
		ID:        "sess-1",
		ORCID:     "0000-0002-1825-0097",
		CreatedAt: at,
		ExpiresAt: at.Add(24 * time.Hour),
	}
	if err := store.PutSession(context.Background(), record); err != nil {
		t.Fatalf("PutSession: %v", err)
	}

	got, err := store.GetSession(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got != record {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, record)
	}

	if _, err := store.GetSession(context.Background(), "sess-missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing session error = %v, want ErrNotFound", err)
	}
}

func TestStore_RevokeSession(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	at := time.Date(2026, time.May, 11, 8, 0, 0, 0, time.UTC)

	record := storage.SessionRecord{
		ID:        "sess-1",
		ORCID:     "0000-0002-1825-0097",
		CreatedAt: at,
		ExpiresAt: at.Add(24 * time.Hour),
	}
	if err := store.PutSession(context.Background(), record); err != nil {
		t.Fatalf("PutSession: %v", err)
	}

	revokedAt := at.Add(time.Hour)
	if err := store.RevokeSession(context.Background(), "sess-1", revokedAt); err != nil {
		t.Fatalf("RevokeSession: %v", err)
	}

	got, err := store.GetSession(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("GetSession after revoke: %v", err)
	}
	if got.RevokedAt == nil || !got.RevokedAt.Equal(revokedAt) {
		t.Fatalf("got.RevokedAt = %v, want %v", got.RevokedAt, revokedAt)
	}

	// Re-revoking keeps the original timestamp.
	if err := store.RevokeSession(context.Background(), "sess-1", revokedAt.Add(time.Hour)); err != nil {
		t.Fatalf("re-revoke session: %v", err)
	}
	again, err := store.GetSession(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("GetSession after re-revoke: %v", err)
	}
	if !again.RevokedAt.Equal(revokedAt) {
		t.Fatalf("again.RevokedAt = %v, want original %v", again.RevokedAt, revokedAt)
	}

	if err := store.RevokeSession(context.Background(), "sess-missing", revokedAt); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing session revoke error = %v, want ErrNotFound", err)
	}
}

func TestStore_MigrationsAreIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "auth.db")
	first, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close first: %v", err)
	}

	second, err := Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	if err := second.Close(); err != nil {
		t.Fatalf("close second: %v", err)
	}
}

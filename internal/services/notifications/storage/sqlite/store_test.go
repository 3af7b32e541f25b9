package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/openpreview/preprint.review/internal/services/notifications/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "notifications.db"))
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

func seedNotification(t *testing.T, store *Store, id string, recipientPersonaID string, createdAt time.Time) storage.NotificationRecord {
	t.Helper()
	record := storage.NotificationRecord{
		ID:                 id,
		RecipientPersonaID: recipientPersonaID,
		MessageType:        "review.published",
		PayloadJSON:        fmt.Sprintf(`{"review_id":"rev-%s"}`, id),
		Source:             "review",
		CreatedAt:          createdAt,
		UpdatedAt:          createdAt,
	}
	deliveredAt := createdAt
	deliveries := []storage.DeliveryRecord{{
		NotificationID: id,
		Channel:        storage.DeliveryChannelInApp,
		Status:         storage.DeliveryStatusDelivered,
		AttemptCount:   1,
		NextAttemptAt:  createdAt,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
		DeliveredAt:    &deliveredAt,
	}}
	if err := store.PutNotificationWithDeliveries(context.Background(), record, deliveries); err != nil {
		t.Fatalf("seed notification %s: %v", id, err)
	}
	return record
}

func TestStore_NotificationRoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	at := time.Date(2026, time.April, 2, 11, 0, 0, 0, time.UTC)

	record := storage.NotificationRecord{
		ID:                 "notif-1",
		RecipientPersonaID: "persona-1",
		MessageType:        "review.invite.created",
		PayloadJSON:        `{"review_id":"rev-1","role":"reviewer"}`,
		DedupeKey:          "invite:rev-1:persona-1",
		Source:             "review",
		CreatedAt:          at,
		UpdatedAt:          at,
	}
	if err := store.PutNotification(context.Background(), record); err != nil {
		t.Fatalf("PutNotification: %v", err)
	}

	got, err := store.GetNotificationByRecipientAndDedupeKey(context.Background(), "persona-1", "invite:rev-1:persona-1")
	if err != nil {
		t.Fatalf("GetNotificationByRecipientAndDedupeKey: %v", err)
	}
	if got != record {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, record)
	}

	if _, err := store.GetNotificationByRecipientAndDedupeKey(context.Background(), "persona-1", "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing dedupe key error = %v, want ErrNotFound", err)
	}
	if _, err := store.GetNotificationByRecipientAndDedupeKey(context.Background(), "persona-other", "invite:rev-1:persona-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("foreign recipient error = %v, want ErrNotFound", err)
	}
}

func TestStore_DedupeKeyUniquePerRecipient(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	at := time.Date(2026, time.April, 2, 11, 0, 0, 0, time.UTC)

	first := storage.NotificationRecord{
		ID:                 "notif-1",
		RecipientPersonaID: "persona-1",
		MessageType:        "review.invite.created",
		DedupeKey:          "invite:rev-1:persona-1",
		CreatedAt:          at,
		UpdatedAt:          at,
	}
	if err := store.PutNotification(context.Background(), first); err != nil {
		t.Fatalf("put first: %v", err)
	}

	duplicate := first
	duplicate.ID = "notif-2"
	if err := store.PutNotification(context.Background(), duplicate); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("duplicate dedupe key error = %v, want ErrConflict", err)
	}

	// Same key for another recipient is a distinct row.
	other := first
	other.ID = "notif-3"
	other.RecipientPersonaID = "persona-2"
	if err := store.PutNotification(context.Background(), other); err != nil {
		t.Fatalf("put other recipient: %v", err)
	}

	// Re-putting the same row is an upsert, not a conflict.
	if err := store.PutNotification(context.Background(), first); err != nil {
		t.Fatalf("re-put first: %v", err)
	}
}

func TestStore_PutNotificationWithDeliveriesRollsBackOnFailure(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	at := time.Date(2026, time.April, 2, 11, 0, 0, 0, time.UTC)

	record := storage.NotificationRecord{
		ID:                 "notif-1",
		RecipientPersonaID: "persona-1",
		MessageType:        "review.published",
		DedupeKey:          "published:rev-1",
		CreatedAt:          at,
		UpdatedAt:          at,
	}
	deliveries := []storage.DeliveryRecord{{
		// Wrong notification id violates the deliveries foreign key.
		NotificationID: "notif-other",
		Channel:        storage.DeliveryChannelInApp,
		Status:         storage.DeliveryStatusPending,
		NextAttemptAt:  at,
		CreatedAt:      at,
		UpdatedAt:      at,
	}}
	if err := store.PutNotificationWithDeliveries(context.Background(), record, deliveries); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("bootstrap with bad delivery error = %v, want ErrConflict", err)
	}

	if _, err := store.GetNotificationByRecipientAndDedupeKey(context.Background(), "persona-1", "published:rev-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("notification survived rollback: err = %v, want ErrNotFound", err)
	}
}

func TestStore_ListNotificationsByRecipientPaginates(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	base := time.Date(2026, time.April, 2, 11, 0, 0, 0, time.UTC)

	for i := 1; i <= 5; i++ {
		seedNotification(t, store, fmt.Sprintf("notif-%d", i), "persona-1", base.Add(time.Duration(i)*time.Minute))
	}
	// Pending in-app delivery keeps a notification out of the inbox.
	pending := storage.NotificationRecord{
		ID:                 "notif-pending",
		RecipientPersonaID: "persona-1",
		MessageType:        "review.comment.posted",
		CreatedAt:          base.Add(time.Hour),
		UpdatedAt:          base.Add(time.Hour),
	}
	if err := store.PutNotificationWithDeliveries(context.Background(), pending, []storage.DeliveryRecord{{
		NotificationID: "notif-pending",
		Channel:        storage.DeliveryChannelInApp,
		Status:         storage.DeliveryStatusPending,
		NextAttemptAt:  base.Add(time.Hour),
		CreatedAt:      base.Add(time.Hour),
		UpdatedAt:      base.Add(time.Hour),
	}}); err != nil {
		t.Fatalf("seed pending notification: %v", err)
	}

	page, err := store.ListNotificationsByRecipient(context.Background(), "persona-1", 3, "")
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(page.Notifications) != 3 {
		t.Fatalf("first page size = %d, want 3", len(page.Notifications))
	}
	if page.Notifications[0].ID != "notif-5" || page.Notifications[2].ID != "notif-3" {
		t.Fatalf("first page order = %s..%s, want notif-5..notif-3", page.Notifications[0].ID, page.Notifications[2].ID)
	}
	if page.NextPageToken != "notif-3" {
		t.Fatalf("first page token = %q, want notif-3", page.NextPageToken)
	}

	second, err := store.ListNotificationsByRecipient(context.Background(), "persona-1", 3, page.NextPageToken)
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second.Notifications) != 2 {
		t.Fatalf("second page size = %d, want 2", len(second.Notifications))
	}
	if second.Notifications[0].ID != "notif-2" || second.Notifications[1].ID != "notif-1" {
		t.Fatalf("second page order = %s,%s, want notif-2,notif-1", second.Notifications[0].ID, second.Notifications[1].ID)
	}
	if second.NextPageToken != "" {
		t.Fatalf("second page token = %q, want empty", second.NextPageToken)
	}

	// Unknown cursor yields an empty page rather than an error.
	empty, err := store.ListNotificationsByRecipient(context.Background(), "persona-1", 3, "notif-unknown")
	if err != nil {
		t.Fatalf("unknown cursor: %v", err)
	}
	if len(empty.Notifications) != 0 || empty.NextPageToken != "" {
		t.Fatalf("unknown cursor page = %+v, want empty", empty)
	}
}

func TestStore_UnreadCountAndMarkRead(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	base := time.Date(2026, time.April, 2, 11, 0, 0, 0, time.UTC)
	seedNotification(t, store, "notif-1", "persona-1", base)
	seedNotification(t, store, "notif-2", "persona-1", base.Add(time.Minute))

	unread, err := store.CountUnreadNotificationsByRecipient(context.Background(), "persona-1")
	if err != nil {
		t.Fatalf("CountUnreadNotificationsByRecipient: %v", err)
	}
	if unread != 2 {
		t.Fatalf("unread = %d, want 2", unread)
	}

	readAt := base.Add(2 * time.Minute)
	record, err := store.MarkNotificationRead(context.Background(), "persona-1", "notif-1", readAt)
	if err != nil {
		t.Fatalf("MarkNotificationRead: %v", err)
	}
	if record.ReadAt == nil || !record.ReadAt.Equal(readAt) {
		t.Fatalf("record.ReadAt = %v, want %v", record.ReadAt, readAt)
	}
	if !record.UpdatedAt.Equal(readAt) {
		t.Fatalf("record.UpdatedAt = %v, want %v", record.UpdatedAt, readAt)
	}

	unread, err = store.CountUnreadNotificationsByRecipient(context.Background(), "persona-1")
	if err != nil {
		t.Fatalf("recount unread: %v", err)
	}
	if unread != 1 {
		t.Fatalf("unread after read = %d, want 1", unread)
	}

	if _, err := store.MarkNotificationRead(context.Background(), "persona-other", "notif-2", readAt); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("foreign recipient mark read error = %v, want ErrNotFound", err)
	}
}

func TestStore_DeliveryLifecycle(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	base := time.Date(2026, time.April, 2, 11, 0, 0, 0, time.UTC)

	record := storage.NotificationRecord{
		ID:                 "notif-1",
		RecipientPersonaID: "persona-1",
		MessageType:        "review.invite.created",
		CreatedAt:          base,
		UpdatedAt:          base,
	}
	if err := store.PutNotificationWithDeliveries(context.Background(), record, []storage.DeliveryRecord{{
		NotificationID: "notif-1",
		Channel:        storage.DeliveryChannelEmail,
		Status:         storage.DeliveryStatusPending,
		NextAttemptAt:  base,
		Title:          "You were invited to a review",
		Body:           "You were invited to join a review as mentor. Open your inbox to respond.",
		EmailSubject:   "Review invitation on preprint.review",
		CreatedAt:      base,
		UpdatedAt:      base,
	}}); err != nil {
		t.Fatalf("seed email delivery: %v", err)
	}

	due, err := store.ListPendingDeliveries(context.Background(), storage.DeliveryChannelEmail, 10, base.Add(time.Second))
	if err != nil {
		t.Fatalf("ListPendingDeliveries: %v", err)
	}
	if len(due) != 1 || due[0].Status != storage.DeliveryStatusPending {
		t.Fatalf("due deliveries = %+v, want one pending", due)
	}
	if due[0].Title != "You were invited to a review" || due[0].EmailSubject != "Review invitation on preprint.review" {
		t.Fatalf("rendered copy not round-tripped: %+v", due[0])
	}

	retryAt := base.Add(5 * time.Minute)
	if err := store.MarkDeliveryRetry(context.Background(), "notif-1", storage.DeliveryChannelEmail, 1, retryAt, "smtp timeout"); err != nil {
		t.Fatalf("MarkDeliveryRetry: %v", err)
	}

	due, err = store.ListPendingDeliveries(context.Background(), storage.DeliveryChannelEmail, 10, base.Add(time.Second))
	if err != nil {
		t.Fatalf("list after retry: %v", err)
	}
	if len(due) != 0 {
		t.Fatalf("deliveries due before retry window = %d, want 0", len(due))
	}

	due, err = store.ListPendingDeliveries(context.Background(), storage.DeliveryChannelEmail, 10, retryAt.Add(time.Second))
	if err != nil {
		t.Fatalf("list at retry window: %v", err)
	}
	if len(due) != 1 || due[0].Status != storage.DeliveryStatusFailed || due[0].AttemptCount != 1 || due[0].LastError != "smtp timeout" {
		t.Fatalf("retried delivery = %+v, want failed attempt 1 with smtp timeout", due)
	}

	deliveredAt := retryAt.Add(time.Minute)
	if err := store.MarkDeliverySucceeded(context.Background(), "notif-1", storage.DeliveryChannelEmail, deliveredAt); err != nil {
		t.Fatalf("MarkDeliverySucceeded: %v", err)
	}
	due, err = store.ListPendingDeliveries(context.Background(), storage.DeliveryChannelEmail, 10, deliveredAt.Add(time.Hour))
	if err != nil {
		t.Fatalf("list after success: %v", err)
	}
	if len(due) != 0 {
		t.Fatalf("deliveries due after success = %d, want 0", len(due))
	}

	if err := store.MarkDeliverySucceeded(context.Background(), "notif-missing", storage.DeliveryChannelEmail, deliveredAt); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing delivery success error = %v, want ErrNotFound", err)
	}
}

func TestStore_MigrationsAreIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "notifications.db")
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

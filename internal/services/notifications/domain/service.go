package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/openpreview/preprint.review/internal/platform/id"
)

var (
	// ErrNotFound indicates a notification record was not found.
	ErrNotFound = errors.New("notification not found")
	// ErrConflict indicates a write conflicted with existing uniqueness constraints.
	ErrConflict = errors.New("notification conflict")
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("notification store is not configured")
	// ErrRecipientPersonaIDRequired indicates recipient identity is required.
	ErrRecipientPersonaIDRequired = errors.New("recipient persona id is required")
	// ErrMessageTypeRequired indicates a message type is required.
	ErrMessageTypeRequired = errors.New("notification message type is required")
	// ErrNotificationIDRequired indicates notification ID is required.
	ErrNotificationIDRequired = errors.New("notification id is required")
	// ErrIDGeneratorNotConfigured indicates an ID generator is required.
	ErrIDGeneratorNotConfigured = errors.New("notification id generator is not configured")
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Notification captures one persona-targeted inbox item.
type Notification struct {
	ID                 string
	RecipientPersonaID string
	MessageType        string
	PayloadJSON        string
	DedupeKey          string
	Source             string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	ReadAt             *time.Time
}

// NotificationPage is a paged recipient inbox view.
type NotificationPage struct {
	Notifications []Notification
	NextPageToken string
}

// CreateIntentInput describes one producer notification request.
type CreateIntentInput struct {
	RecipientPersonaID string
	MessageType        string
	PayloadJSON        string
	DedupeKey          string
	Source             string
}

// ListInboxInput configures recipient inbox listing.
type ListInboxInput struct {
	RecipientPersonaID string
	PageSize           int
	PageToken          string
}

// MarkReadInput identifies one recipient notification to acknowledge.
type MarkReadInput struct {
	RecipientPersonaID string
	NotificationID     string
}

// Store is the domain persistence boundary for notification lifecycle behavior.
type Store interface {
	GetNotificationByRecipientAndDedupeKey(ctx context.Context, recipientPersonaID string, dedupeKey string) (Notification, error)
	PutNotification(ctx context.Context, notification Notification) error
	ListNotificationsByRecipient(ctx context.Context, recipientPersonaID string, pageSize int, pageToken string) (NotificationPage, error)
	CountUnreadNotificationsByRecipient(ctx context.Context, recipientPersonaID string) (int, error)
	MarkNotificationRead(ctx context.Context, recipientPersonaID string, notificationID string, readAt time.Time) (Notification, error)
}

// Service orchestrates recipient inbox lifecycle behavior.
type Service struct {
	store Store
	clock func() time.Time
	newID func() (string, error)
}

// NewService constructs notification domain use-cases.
func NewService(store Store, clock func() time.Time, newID func() (string, error)) *Service {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &Service{
		store: store,
		clock: clock,
		newID: newID,
	}
}

// CreateIntent stores one notification item and de-duplicates by recipient+dedupe key.
func (s *Service) CreateIntent(ctx context.Context, input CreateIntentInput) (Notification, error) {
	if s == nil || s.store == nil {
		return Notification{}, ErrStoreNotConfigured
	}
	if s.newID == nil {
		return Notification{}, ErrIDGeneratorNotConfigured
	}
	recipientPersonaID := strings.TrimSpace(input.RecipientPersonaID)
	if recipientPersonaID == "" {
		return Notification{}, ErrRecipientPersonaIDRequired
	}
	messageType := NormalizeMessageType(input.MessageType)
	if messageType == "" {
		return Notification{}, ErrMessageTypeRequired
	}
	dedupeKey := strings.TrimSpace(input.DedupeKey)
	if dedupeKey != "" {
		existing, err := s.store.GetNotificationByRecipientAndDedupeKey(ctx, recipientPersonaID, dedupeKey)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Notification{}, err
		}
	}

	notificationID, err := s.newID()
	if err != nil {
		return Notification{}, err
	}
	now := s.nowUTC()
	notification := Notification{
		ID:                 notificationID,
		RecipientPersonaID: recipientPersonaID,
		MessageType:        messageType,
		PayloadJSON:        strings.TrimSpace(input.PayloadJSON),
		DedupeKey:          dedupeKey,
		Source:             strings.TrimSpace(input.Source),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.store.PutNotification(ctx, notification); err != nil {
		if dedupeKey != "" && errors.Is(err, ErrConflict) {
			// A concurrent producer won the dedupe race. Return its row.
			existing, lookupErr := s.store.GetNotificationByRecipientAndDedupeKey(ctx, recipientPersonaID, dedupeKey)
			if lookupErr == nil {
				return existing, nil
			}
			if errors.Is(lookupErr, ErrNotFound) {
				return Notification{}, err
			}
			return Notification{}, lookupErr
		}
		return Notification{}, err
	}
	return notification, nil
}

// ListInbox lists recipient inbox notifications newest first.
func (s *Service) ListInbox(ctx context.Context, input ListInboxInput) (NotificationPage, error) {
	if s == nil || s.store == nil {
		return NotificationPage{}, ErrStoreNotConfigured
	}
	recipientPersonaID := strings.TrimSpace(input.RecipientPersonaID)
	if recipientPersonaID == "" {
		return NotificationPage{}, ErrRecipientPersonaIDRequired
	}
	pageSize := input.PageSize
	switch {
	case pageSize <= 0:
		pageSize = defaultPageSize
	case pageSize > maxPageSize:
		pageSize = maxPageSize
	}
	return s.store.ListNotificationsByRecipient(ctx, recipientPersonaID, pageSize, strings.TrimSpace(input.PageToken))
}

// CountUnread returns the recipient unread inbox count.
func (s *Service) CountUnread(ctx context.Context, recipientPersonaID string) (int, error) {
	if s == nil || s.store == nil {
		return 0, ErrStoreNotConfigured
	}
	recipientPersonaID = strings.TrimSpace(recipientPersonaID)
	if recipientPersonaID == "" {
		return 0, ErrRecipientPersonaIDRequired
	}
	return s.store.CountUnreadNotificationsByRecipient(ctx, recipientPersonaID)
}

// MarkRead marks one recipient notification as read.
func (s *Service) MarkRead(ctx context.Context, input MarkReadInput) (Notification, error) {
	if s == nil || s.store == nil {
		return Notification{}, ErrStoreNotConfigured
	}
	recipientPersonaID := strings.TrimSpace(input.RecipientPersonaID)
	if recipientPersonaID == "" {
		return Notification{}, ErrRecipientPersonaIDRequired
	}
	notificationID := strings.TrimSpace(input.NotificationID)
	if notificationID == "" {
		return Notification{}, ErrNotificationIDRequired
	}
	return s.store.MarkNotificationRead(ctx, recipientPersonaID, notificationID, s.nowUTC())
}

func (s *Service) nowUTC() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}

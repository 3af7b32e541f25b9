package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openpreview/preprint.review/internal/services/notifications/domain"
	reviewdomain "github.com/openpreview/preprint.review/internal/services/review/domain"
)

// RecipientsFunc resolves the persona IDs that should receive one review event.
type RecipientsFunc func(ctx context.Context, event reviewdomain.Event) ([]string, error)

// EventSink turns review lifecycle events into inbox notification intents.
// It satisfies the review domain's event sink contract.
type EventSink struct {
	notifications *domain.Service
	recipients    RecipientsFunc
}

// NewEventSink wires review events into the notifications domain. When
// recipients is nil, each event targets the persona it names.
func NewEventSink(notifications *domain.Service, recipients RecipientsFunc) *EventSink {
	if recipients == nil {
		recipients = eventPersonaRecipient
	}
	return &EventSink{
		notifications: notifications,
		recipients:    recipients,
	}
}

// Publish fans one review event out to its recipients as notification intents.
func (s *EventSink) Publish(ctx context.Context, event reviewdomain.Event) error {
	if s == nil || s.notifications == nil {
		return domain.ErrStoreNotConfigured
	}
	messageType := messageTypeForEvent(event.Type)
	if messageType == "" {
		// Unknown event types are ignored so new review events never break delivery.
		return nil
	}
	payload, err := encodeEventPayload(event)
	if err != nil {
		return err
	}

	recipientIDs, err := s.recipients(ctx, event)
	if err != nil {
		return fmt.Errorf("resolve event recipients: %w", err)
	}

	var failures []error
	for _, recipientID := range recipientIDs {
		_, err := s.notifications.CreateIntent(ctx, domain.CreateIntentInput{
			RecipientPersonaID: recipientID,
			MessageType:        messageType,
			PayloadJSON:        payload,
			DedupeKey:          eventDedupeKey(event, recipientID),
			Source:             "review",
		})
		if err != nil {
			failures = append(failures, fmt.Errorf("notify %s: %w", recipientID, err))
		}
	}
	return errors.Join(failures...)
}

func eventPersonaRecipient(_ context.Context, event reviewdomain.Event) ([]string, error) {
	if event.PersonaID == "" {
		return nil, nil
	}
	return []string{event.PersonaID}, nil
}

func messageTypeForEvent(eventType reviewdomain.EventType) string {
	switch eventType {
	case reviewdomain.EventReviewPublished:
		return domain.MessageTypeReviewPublished
	case reviewdomain.EventInviteCreated:
		return domain.MessageTypeInviteCreated
	case reviewdomain.EventInviteAccepted:
		return domain.MessageTypeInviteAccepted
	case reviewdomain.EventInviteDeclined:
		return domain.MessageTypeInviteDeclined
	case reviewdomain.EventCommentPosted:
		return domain.MessageTypeCommentPosted
	default:
		return ""
	}
}

type eventPayload struct {
	ReviewID   string `json:"review_id"`
	PreprintID string `json:"preprint_id,omitempty"`
	PersonaID  string `json:"persona_id,omitempty"`
	Role       string `json:"role,omitempty"`
	CommentID  string `json:"comment_id,omitempty"`
	Grant      string `json:"grant,omitempty"`
}

func encodeEventPayload(event reviewdomain.Event) (string, error) {
	raw, err := json.Marshal(eventPayload{
		ReviewID:   event.ReviewID,
		PreprintID: event.PreprintID,
		PersonaID:  event.PersonaID,
		Role:       string(event.Role),
		CommentID:  event.CommentID,
		Grant:      event.Grant,
	})
	if err != nil {
		return "", fmt.Errorf("encode event payload: %w", err)
	}
	return string(raw), nil
}

// eventDedupeKey keeps event redelivery idempotent per recipient. Comments
// carry their own ID so repeated comments on one review stay distinct.
func eventDedupeKey(event reviewdomain.Event, recipientID string) string {
	if event.CommentID != "" {
		return fmt.Sprintf("%s:%s:%s:%s", event.Type, event.ReviewID, event.CommentID, recipientID)
	}
	return fmt.Sprintf("%s:%s:%s", event.Type, event.ReviewID, recipientID)
}

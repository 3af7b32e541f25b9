package domain

import "strings"

const (
	// MessageTypeReviewPublished notifies invited participants that a review went public.
	MessageTypeReviewPublished = "review.published"
	// MessageTypeInviteCreated notifies a persona it was invited to a review.
	MessageTypeInviteCreated = "review.invite.created"
	// MessageTypeInviteAccepted notifies the review owner that an invite was accepted.
	MessageTypeInviteAccepted = "review.invite.accepted"
	// MessageTypeInviteDeclined notifies the review owner that an invite was declined.
	MessageTypeInviteDeclined = "review.invite.declined"
	// MessageTypeCommentPosted notifies review participants about a new comment.
	MessageTypeCommentPosted = "review.comment.posted"
)

// DeliveryPolicy defines the service-owned effective channels for one message type.
type DeliveryPolicy struct {
	InApp bool
	Email bool
}

// NormalizeMessageType normalizes a producer-provided message type token.
func NormalizeMessageType(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// ResolveDeliveryPolicy returns the effective channel policy for one message type.
//
// TODO(notifications-preferences): add persona-specific channel overrides once
// preferences storage exists.
func ResolveDeliveryPolicy(messageType string) DeliveryPolicy {
	switch NormalizeMessageType(messageType) {
	case MessageTypeInviteCreated:
		// Invites reach personas that may not be active on the site yet.
		return DeliveryPolicy{InApp: true, Email: true}
	default:
		return DeliveryPolicy{InApp: true, Email: false}
	}
}

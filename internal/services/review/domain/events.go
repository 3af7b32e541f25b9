package domain

import (
	"context"
	"time"
)

// EventType identifies one review lifecycle event.
type EventType string

const (
	// EventReviewPublished is emitted exactly once per review publication.
	EventReviewPublished EventType = "review.published"
	// EventInviteCreated is emitted when a persona is invited into a role.
	EventInviteCreated EventType = "review.invite.created"
	// EventInviteAccepted is emitted when a pending invite is accepted.
	EventInviteAccepted EventType = "review.invite.accepted"
	// EventInviteDeclined is emitted when a pending invite is declined.
	EventInviteDeclined EventType = "review.invite.declined"
	// EventCommentPosted is emitted when a comment lands on a published review.
	EventCommentPosted EventType = "review.comment.posted"
)

// Event is one review lifecycle event delivered to interested consumers.
type Event struct {
	Type       EventType
	ReviewID   string
	PreprintID string
	PersonaID  string
	Role       Role
	CommentID  string
	// Grant carries a signed invite grant on invite-created events so the
	// notification can link an out-of-band accept. Empty when grants are
	// not configured.
	Grant      string
	OccurredAt time.Time
}

// Sink receives review lifecycle events. Delivery is best effort: sink
// failures are logged by the service and never fail the domain operation.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

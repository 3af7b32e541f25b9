// Package domain implements the review lifecycle: drafts, publication,
// DOI assignment, the author/mentor roster, and comment threads.
package domain

import "time"

// Review is one long-form review of a preprint.
type Review struct {
	ID          string
	PreprintID  string
	IsPublished bool
	IsFlagged   bool
	DOI         string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	PublishedAt *time.Time
}

// Draft is one immutable content snapshot of a review.
type Draft struct {
	ID        string
	ReviewID  string
	Contents  string
	CreatedAt time.Time
}

// Comment is one append-only comment on a published review.
type Comment struct {
	ID              string
	ReviewID        string
	AuthorPersonaID string
	Contents        string
	IsPublished     bool
	IsFlagged       bool
	CreatedAt       time.Time
}

// Capability carries caller-resolved permissions into moderation operations.
// Resolution (for example moderator membership in a community) happens at the
// composition layer, never inside this package.
type Capability struct {
	PersonaID  string
	Moderation bool
}

// CreateReviewInput starts a review shell for one preprint.
type CreateReviewInput struct {
	PreprintID string
}

// CreateDraftInput appends one draft snapshot to a review.
type CreateDraftInput struct {
	ReviewID        string
	AuthorPersonaID string
	Contents        string
}

// PublishInput publishes a review on behalf of a confirmed author.
type PublishInput struct {
	ReviewID        string
	ActingPersonaID string
}

// AssignDOIInput assigns a persistent identifier to a published review.
type AssignDOIInput struct {
	ReviewID string
	DOI      string
}

// SetReviewFlagInput toggles the moderation flag on a review.
type SetReviewFlagInput struct {
	ReviewID   string
	Flagged    bool
	Capability Capability
}

// InviteInput invites a persona into a review role.
type InviteInput struct {
	ReviewID  string
	PersonaID string
	Role      Role
}

// RespondInviteInput accepts or declines a pending role invite.
type RespondInviteInput struct {
	ReviewID  string
	PersonaID string
	Role      Role
}

// AcceptInviteByGrantInput accepts a pending invite via a signed grant.
type AcceptInviteByGrantInput struct {
	ReviewID  string
	PersonaID string
	Role      Role
	Grant     string
}

// PostCommentInput appends one comment to a published review.
type PostCommentInput struct {
	ReviewID        string
	AuthorPersonaID string
	Contents        string
}

// SetCommentFlagInput toggles the moderation flag on a comment.
type SetCommentFlagInput struct {
	ReviewID   string
	CommentID  string
	Flagged    bool
	Capability Capability
}

// Package storage defines persistence records and boundaries for review state.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested review record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a requested write conflicts with uniqueness constraints.
	ErrConflict = errors.New("record conflict")
)

// RosterStatus identifies one roster membership state.
type RosterStatus string

const (
	// RosterStatusInvited marks a pending role invite.
	RosterStatusInvited RosterStatus = "invited"
	// RosterStatusConfirmed marks an accepted role membership.
	RosterStatusConfirmed RosterStatus = "confirmed"
)

// ReviewRecord stores one review row.
type ReviewRecord struct {
	ID          string
	PreprintID  string
	IsPublished bool
	IsFlagged   bool
	DOI         string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	PublishedAt *time.Time
}

// DraftRecord stores one immutable draft snapshot row.
type DraftRecord struct {
	ID        string
	ReviewID  string
	Contents  string
	CreatedAt time.Time
}

// RosterRecord stores one persona-role membership row. The primary key
// (review_id, persona_id, role) keeps invited and confirmed disjoint.
type RosterRecord struct {
	ReviewID  string
	PersonaID string
	Role      string
	Status    RosterStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CommentRecord stores one append-only comment row.
type CommentRecord struct {
	ID              string
	ReviewID        string
	AuthorPersonaID string
	Contents        string
	IsPublished     bool
	IsFlagged       bool
	CreatedAt       time.Time
}

// ReviewStore persists review rows.
type ReviewStore interface {
	PutReview(ctx context.Context, record ReviewRecord) error
	GetReview(ctx context.Context, reviewID string) (ReviewRecord, error)
	ListReviewsByPreprint(ctx context.Context, preprintID string) ([]ReviewRecord, error)
	SetReviewDOI(ctx context.Context, reviewID string, doi string, updatedAt time.Time) error
}

// DraftStore persists immutable draft snapshots.
type DraftStore interface {
	PutDraft(ctx context.Context, record DraftRecord) error
	PutDraftWithRoster(ctx context.Context, draft DraftRecord, roster RosterRecord) error
	LatestDraft(ctx context.Context, reviewID string) (DraftRecord, error)
	CountDrafts(ctx context.Context, reviewID string) (int, error)
}

// RosterStore persists role membership rows.
type RosterStore interface {
	PutRosterEntry(ctx context.Context, record RosterRecord) error
	ConfirmRosterEntry(ctx context.Context, reviewID string, personaID string, role string, confirmedAt time.Time) error
	DeleteRosterEntry(ctx context.Context, reviewID string, personaID string, role string) error
	ListRosterByReview(ctx context.Context, reviewID string) ([]RosterRecord, error)
	ListPendingInvitesByPersona(ctx context.Context, personaID string) ([]RosterRecord, error)
}

// CommentStore persists comment rows.
type CommentStore interface {
	PutComment(ctx context.Context, record CommentRecord) error
	GetComment(ctx context.Context, reviewID string, commentID string) (CommentRecord, error)
	ListCommentsByReview(ctx context.Context, reviewID string) ([]CommentRecord, error)
}

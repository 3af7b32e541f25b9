// Package storage defines persistence records and boundaries for community state.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested community record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a requested write conflicts with uniqueness constraints.
	ErrConflict = errors.New("record conflict")
)

// CommunityRecord stores one community row. Slug is unique across rows.
type CommunityRecord struct {
	ID          string
	Slug        string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MemberRecord stores one membership row keyed by (community_id, persona_id).
type MemberRecord struct {
	CommunityID string
	PersonaID   string
	Role        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PreprintLinkRecord stores one community-preprint association row.
type PreprintLinkRecord struct {
	CommunityID string
	PreprintID  string
	CreatedAt   time.Time
}

// CommunityStore persists community rows.
type CommunityStore interface {
	PutCommunity(ctx context.Context, record CommunityRecord) error
	PutCommunityWithOwner(ctx context.Context, community CommunityRecord, owner MemberRecord) error
	GetCommunity(ctx context.Context, communityID string) (CommunityRecord, error)
	GetCommunityBySlug(ctx context.Context, slug string) (CommunityRecord, error)
}

// MemberStore persists membership rows.
type MemberStore interface {
	PutMember(ctx context.Context, record MemberRecord) error
	GetMember(ctx context.Context, communityID string, personaID string) (MemberRecord, error)
	DeleteMember(ctx context.Context, communityID string, personaID string) error
	ListMembersByCommunity(ctx context.Context, communityID string) ([]MemberRecord, error)
}

// PreprintLinkStore persists community-preprint associations.
type PreprintLinkStore interface {
	PutPreprintLink(ctx context.Context, record PreprintLinkRecord) error
	ListCommunitiesForPreprint(ctx context.Context, preprintID string) ([]CommunityRecord, error)
}

package domain

import (
	"strings"
	"time"
)

// Community groups personas and preprints under a shared banner.
type Community struct {
	ID          string
	Slug        string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Role names a membership level within a community.
type Role string

const (
	// RoleMember is the baseline membership level.
	RoleMember Role = "member"
	// RoleModerator backs the moderation capability predicate.
	RoleModerator Role = "moderator"
	// RoleOwner administers the community itself.
	RoleOwner Role = "owner"
)

// ParseRole validates a raw role value.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.TrimSpace(strings.ToLower(raw))) {
	case RoleMember:
		return RoleMember, nil
	case RoleModerator:
		return RoleModerator, nil
	case RoleOwner:
		return RoleOwner, nil
	default:
		return "", ErrInvalidRole
	}
}

// Member links one persona to a community with a role.
type Member struct {
	CommunityID string
	PersonaID   string
	Role        Role
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateCommunityInput carries community creation parameters. The creator
// persona becomes the first owner.
type CreateCommunityInput struct {
	Slug             string
	Name             string
	Description      string
	CreatorPersonaID string
}

// NormalizeSlug lowercases and trims a community slug.
func NormalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

package domain

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/openpreview/preprint.review/internal/platform/errors"
	"github.com/openpreview/preprint.review/internal/platform/id"
)

// ErrAlreadyMember indicates the persona already belongs to the community.
var ErrAlreadyMember = apperrors.New(apperrors.CodeConflict, "persona is already a member of this community")

// Store persists communities, memberships, and preprint associations.
type Store interface {
	PutCommunity(ctx context.Context, community Community) error
	PutCommunityWithOwner(ctx context.Context, community Community, owner Member) error
	GetCommunity(ctx context.Context, communityID string) (Community, error)
	GetCommunityBySlug(ctx context.Context, slug string) (Community, error)

	PutMember(ctx context.Context, member Member) error
	GetMember(ctx context.Context, communityID string, personaID string) (Member, error)
	DeleteMember(ctx context.Context, communityID string, personaID string) error
	ListMembersByCommunity(ctx context.Context, communityID string) ([]Member, error)

	AttachPreprint(ctx context.Context, communityID string, preprintID string, at time.Time) error
	ListCommunitiesForPreprint(ctx context.Context, preprintID string) ([]Community, error)
}

// Service implements community membership use-cases.
type Service struct {
	store Store
	clock func() time.Time
	newID func() (string, error)
}

// NewService creates a community service with optional clock and ID overrides.
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

// CreateCommunity creates a community and makes the creator its first owner
// in one write.
func (s *Service) CreateCommunity(ctx context.Context, input CreateCommunityInput) (Community, error) {
	if s == nil || s.store == nil {
		return Community{}, ErrStoreNotConfigured
	}
	slug := NormalizeSlug(input.Slug)
	if slug == "" {
		return Community{}, ErrEmptySlug
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Community{}, ErrEmptyName
	}
	creatorID := strings.TrimSpace(input.CreatorPersonaID)
	if creatorID == "" {
		return Community{}, ErrEmptyPersonaID
	}

	communityID, err := s.newID()
	if err != nil {
		return Community{}, err
	}
	now := s.nowUTC()
	community := Community{
		ID:          communityID,
		Slug:        slug,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	owner := Member{
		CommunityID: communityID,
		PersonaID:   creatorID,
		Role:        RoleOwner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.PutCommunityWithOwner(ctx, community, owner); err != nil {
		return Community{}, err
	}
	return community, nil
}

// GetCommunity loads one community by ID.
func (s *Service) GetCommunity(ctx context.Context, communityID string) (Community, error) {
	if s == nil || s.store == nil {
		return Community{}, ErrStoreNotConfigured
	}
	communityID = strings.TrimSpace(communityID)
	if communityID == "" {
		return Community{}, ErrNotFound
	}
	return s.store.GetCommunity(ctx, communityID)
}

// GetCommunityBySlug loads one community by its normalized slug.
func (s *Service) GetCommunityBySlug(ctx context.Context, slug string) (Community, error) {
	if s == nil || s.store == nil {
		return Community{}, ErrStoreNotConfigured
	}
	slug = NormalizeSlug(slug)
	if slug == "" {
		return Community{}, ErrEmptySlug
	}
	return s.store.GetCommunityBySlug(ctx, slug)
}

// AddMember adds a persona to a community with the provided role.
func (s *Service) AddMember(ctx context.Context, communityID string, personaID string, rawRole string) (Member, error) {
	if s == nil || s.store == nil {
		return Member{}, ErrStoreNotConfigured
	}
	communityID = strings.TrimSpace(communityID)
	if communityID == "" {
		return Member{}, ErrNotFound
	}
	personaID = strings.TrimSpace(personaID)
	if personaID == "" {
		return Member{}, ErrEmptyPersonaID
	}
	role, err := ParseRole(rawRole)
	if err != nil {
		return Member{}, err
	}
	if _, err := s.store.GetCommunity(ctx, communityID); err != nil {
		return Member{}, err
	}
	if _, err := s.store.GetMember(ctx, communityID, personaID); err == nil {
		return Member{}, ErrAlreadyMember
	} else if !isNotFound(err) {
		return Member{}, err
	}

	now := s.nowUTC()
	member := Member{
		CommunityID: communityID,
		PersonaID:   personaID,
		Role:        role,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.PutMember(ctx, member); err != nil {
		return Member{}, err
	}
	return member, nil
}

// RemoveMember removes a persona from a community. The last owner cannot
// leave.
func (s *Service) RemoveMember(ctx context.Context, communityID string, personaID string) error {
	if s == nil || s.store == nil {
		return ErrStoreNotConfigured
	}
	communityID = strings.TrimSpace(communityID)
	personaID = strings.TrimSpace(personaID)
	if communityID == "" || personaID == "" {
		return ErrNotFound
	}
	member, err := s.store.GetMember(ctx, communityID, personaID)
	if err != nil {
		return err
	}
	if member.Role == RoleOwner {
		if err := s.requireAnotherOwner(ctx, communityID, personaID); err != nil {
			return err
		}
	}
	return s.store.DeleteMember(ctx, communityID, personaID)
}

// SetMemberRole changes an existing member's role. Demoting the last owner
// is rejected.
func (s *Service) SetMemberRole(ctx context.Context, communityID string, personaID string, rawRole string) (Member, error) {
	if s == nil || s.store == nil {
		return Member{}, ErrStoreNotConfigured
	}
	role, err := ParseRole(rawRole)
	if err != nil {
		return Member{}, err
	}
	communityID = strings.TrimSpace(communityID)
	personaID = strings.TrimSpace(personaID)
	if communityID == "" || personaID == "" {
		return Member{}, ErrNotFound
	}
	member, err := s.store.GetMember(ctx, communityID, personaID)
	if err != nil {
		return Member{}, err
	}
	if member.Role == role {
		return member, nil
	}
	if member.Role == RoleOwner {
		if err := s.requireAnotherOwner(ctx, communityID, personaID); err != nil {
			return Member{}, err
		}
	}

	member.Role = role
	member.UpdatedAt = s.nowUTC()
	if err := s.store.PutMember(ctx, member); err != nil {
		return Member{}, err
	}
	return member, nil
}

// ListMembers lists a community's members.
func (s *Service) ListMembers(ctx context.Context, communityID string) ([]Member, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	communityID = strings.TrimSpace(communityID)
	if communityID == "" {
		return nil, ErrNotFound
	}
	return s.store.ListMembersByCommunity(ctx, communityID)
}

// AttachPreprint associates a preprint with a community. Re-attaching an
// already associated preprint is a no-op.
func (s *Service) AttachPreprint(ctx context.Context, communityID string, preprintID string) error {
	if s == nil || s.store == nil {
		return ErrStoreNotConfigured
	}
	communityID = strings.TrimSpace(communityID)
	if communityID == "" {
		return ErrNotFound
	}
	preprintID = strings.TrimSpace(preprintID)
	if preprintID == "" {
		return ErrEmptyPreprintID
	}
	if _, err := s.store.GetCommunity(ctx, communityID); err != nil {
		return err
	}
	return s.store.AttachPreprint(ctx, communityID, preprintID, s.nowUTC())
}

// ListCommunitiesForPreprint lists communities a preprint is attached to.
func (s *Service) ListCommunitiesForPreprint(ctx context.Context, preprintID string) ([]Community, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	preprintID = strings.TrimSpace(preprintID)
	if preprintID == "" {
		return nil, ErrEmptyPreprintID
	}
	return s.store.ListCommunitiesForPreprint(ctx, preprintID)
}

// HasModeration reports whether the persona holds the moderation capability
// in the community. Owners moderate implicitly.
func (s *Service) HasModeration(ctx context.Context, communityID string, personaID string) (bool, error) {
	if s == nil || s.store == nil {
		return false, ErrStoreNotConfigured
	}
	communityID = strings.TrimSpace(communityID)
	personaID = strings.TrimSpace(personaID)
	if communityID == "" || personaID == "" {
		return false, nil
	}
	member, err := s.store.GetMember(ctx, communityID, personaID)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return member.Role == RoleModerator || member.Role == RoleOwner, nil
}

func (s *Service) requireAnotherOwner(ctx context.Context, communityID string, personaID string) error {
	members, err := s.store.ListMembersByCommunity(ctx, communityID)
	if err != nil {
		return err
	}
	for _, other := range members {
		if other.Role == RoleOwner && other.PersonaID != personaID {
			return nil
		}
	}
	return ErrLastOwner
}

func (s *Service) nowUTC() time.Time {
	return s.clock().UTC()
}

func isNotFound(err error) bool {
	return apperrors.IsCode(err, apperrors.CodeNotFound)
}

package domain

import (
	"context"
	"strings"
)

// Invite records a pending role invite for a persona. Author and mentor
// invites are tracked independently; repeating an invite for the same role
// is rejected rather than silently absorbed.
func (s *Service) Invite(ctx context.Context, input InviteInput) (RosterEntry, error) {
	if s == nil || s.store == nil {
		return RosterEntry{}, ErrStoreNotConfigured
	}
	reviewID := strings.TrimSpace(input.ReviewID)
	if reviewID == "" {
		return RosterEntry{}, ErrEmptyReviewID
	}
	personaID := strings.TrimSpace(input.PersonaID)
	if personaID == "" {
		return RosterEntry{}, ErrEmptyPersonaID
	}
	role, err := ParseRole(string(input.Role))
	if err != nil {
		return RosterEntry{}, err
	}

	unlock := s.locks.lock(reviewID)
	defer unlock()

	review, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return RosterEntry{}, err
	}
	roster, err := s.loadRoster(ctx, reviewID)
	if err != nil {
		return RosterEntry{}, err
	}
	entry, err := roster.Invite(personaID, role, s.nowUTC())
	if err != nil {
		return RosterEntry{}, err
	}
	grant, err := s.mintGrant(reviewID, personaID, role)
	if err != nil {
		return RosterEntry{}, err
	}
	if err := s.store.PutRosterEntry(ctx, entry); err != nil {
		return RosterEntry{}, err
	}

	s.emit(ctx, Event{
		Type:       EventInviteCreated,
		ReviewID:   reviewID,
		PreprintID: review.PreprintID,
		PersonaID:  personaID,
		Role:       role,
		Grant:      grant,
		OccurredAt: entry.CreatedAt,
	})
	return entry, nil
}

// mintGrant signs an invite grant when the service holds a signing key.
// Verify-only deployments carry a public key and skip minting.
func (s *Service) mintGrant(reviewID, personaID string, role Role) (string, error) {
	if s.grants == nil || len(s.grants.PrivateKey) == 0 {
		return "", nil
	}
	expected := InviteGrantExpectation{
		ReviewID:  reviewID,
		PersonaID: personaID,
		Role:      role,
	}
	return MintInviteGrant(expected, *s.grants)
}

// AcceptInvite moves one pending invite to confirmed in a single store
// transition, so the persona is never in both states.
func (s *Service) AcceptInvite(ctx context.Context, input RespondInviteInput) (RosterEntry, error) {
	if s == nil || s.store == nil {
		return RosterEntry{}, ErrStoreNotConfigured
	}
	reviewID := strings.TrimSpace(input.ReviewID)
	if reviewID == "" {
		return RosterEntry{}, ErrEmptyReviewID
	}
	personaID := strings.TrimSpace(input.PersonaID)
	if personaID == "" {
		return RosterEntry{}, ErrEmptyPersonaID
	}
	role, err := ParseRole(string(input.Role))
	if err != nil {
		return RosterEntry{}, err
	}

	unlock := s.locks.lock(reviewID)
	defer unlock()

	review, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return RosterEntry{}, err
	}
	roster, err := s.loadRoster(ctx, reviewID)
	if err != nil {
		return RosterEntry{}, err
	}
	entry, err := roster.Accept(personaID, role, s.nowUTC())
	if err != nil {
		return RosterEntry{}, err
	}
	if err := s.store.ConfirmRosterEntry(ctx, reviewID, personaID, role, entry.UpdatedAt); err != nil {
		return RosterEntry{}, err
	}

	s.emit(ctx, Event{
		Type:       EventInviteAccepted,
		ReviewID:   reviewID,
		PreprintID: review.PreprintID,
		PersonaID:  personaID,
		Role:       role,
		OccurredAt: entry.UpdatedAt,
	})
	return entry, nil
}

// AcceptInviteByGrant verifies a signed invite grant and then accepts the
// pending invite it names. The grant binds review, persona, and role, so a
// leaked link cannot confirm a different identity.
func (s *Service) AcceptInviteByGrant(ctx context.Context, input AcceptInviteByGrantInput) (RosterEntry, error) {
	if s == nil || s.store == nil {
		return RosterEntry{}, ErrStoreNotConfigured
	}
	if s.grants == nil {
		return RosterEntry{}, ErrGrantsNotConfigured
	}
	reviewID := strings.TrimSpace(input.ReviewID)
	if reviewID == "" {
		return RosterEntry{}, ErrEmptyReviewID
	}
	personaID := strings.TrimSpace(input.PersonaID)
	if personaID == "" {
		return RosterEntry{}, ErrEmptyPersonaID
	}
	role, err := ParseRole(string(input.Role))
	if err != nil {
		return RosterEntry{}, err
	}
	expected := InviteGrantExpectation{
		ReviewID:  reviewID,
		PersonaID: personaID,
		Role:      role,
	}
	if _, err := ValidateInviteGrant(input.Grant, expected, *s.grants); err != nil {
		return RosterEntry{}, err
	}
	return s.AcceptInvite(ctx, RespondInviteInput{
		ReviewID:  reviewID,
		PersonaID: personaID,
		Role:      role,
	})
}

// DeclineInvite removes one pending invite. The invite is deleted outright;
// a later re-invite starts from a clean slate.
func (s *Service) DeclineInvite(ctx context.Context, input RespondInviteInput) error {
	if s == nil || s.store == nil {
		return ErrStoreNotConfigured
	}
	reviewID := strings.TrimSpace(input.ReviewID)
	if reviewID == "" {
		return ErrEmptyReviewID
	}
	personaID := strings.TrimSpace(input.PersonaID)
	if personaID == "" {
		return ErrEmptyPersonaID
	}
	role, err := ParseRole(string(input.Role))
	if err != nil {
		return err
	}

	unlock := s.locks.lock(reviewID)
	defer unlock()

	review, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return err
	}
	roster, err := s.loadRoster(ctx, reviewID)
	if err != nil {
		return err
	}
	if _, err := roster.Decline(personaID, role); err != nil {
		return err
	}
	if err := s.store.DeleteRosterEntry(ctx, reviewID, personaID, role); err != nil {
		return err
	}

	s.emit(ctx, Event{
		Type:       EventInviteDeclined,
		ReviewID:   reviewID,
		PreprintID: review.PreprintID,
		PersonaID:  personaID,
		Role:       role,
		OccurredAt: s.nowUTC(),
	})
	return nil
}

// ListPendingInvitesForPersona lists all pending invites addressed to one
// persona across reviews.
func (s *Service) ListPendingInvitesForPersona(ctx context.Context, personaID string) ([]RosterEntry, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	personaID = strings.TrimSpace(personaID)
	if personaID == "" {
		return nil, ErrEmptyPersonaID
	}
	return s.store.ListPendingInvitesByPersona(ctx, personaID)
}

// GetRoster loads the membership roster of one review.
func (s *Service) GetRoster(ctx context.Context, reviewID string) (Roster, error) {
	if s == nil || s.store == nil {
		return Roster{}, ErrStoreNotConfigured
	}
	reviewID = strings.TrimSpace(reviewID)
	if reviewID == "" {
		return Roster{}, ErrEmptyReviewID
	}
	if _, err := s.store.GetReview(ctx, reviewID); err != nil {
		return Roster{}, err
	}
	return s.loadRoster(ctx, reviewID)
}

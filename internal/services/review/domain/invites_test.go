package domain

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestInvite_LifecycleAcceptConfirmsRole(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC)
	store := newFakeStore()
	sink := &recordingSink{}
	svc := NewService(store, sink, fixedClock(now), sequentialIDGenerator("rev-1", "draft-1"))

	review, err := svc.CreateReview(context.Background(), CreateReviewInput{PreprintID: "preprint-1"})
	if err != nil {
		t.Fatalf("create review: %v", err)
	}

	invite, err := svc.Invite(context.Background(), InviteInput{
		ReviewID:  review.ID,
		PersonaID: "persona-2",
		Role:      RoleMentor,
	})
	if err != nil {
		t.Fatalf("invite mentor: %v", err)
	}
	if invite.Status != RosterInvited {
		t.Fatalf("invite status = %q, want %q", invite.Status, RosterInvited)
	}

	pending, err := svc.ListPendingInvitesForPersona(context.Background(), "persona-2")
	if err != nil {
		t.Fatalf("list pending invites: %v", err)
	}
	if len(pending) != 1 || pending[0].ReviewID != review.ID || pending[0].Role != RoleMentor {
		t.Fatalf("unexpected pending invites: %+v", pending)
	}

	accepted, err := svc.AcceptInvite(context.Background(), RespondInviteInput{
		ReviewID:  review.ID,
		PersonaID: "persona-2",
		Role:      RoleMentor,
	})
	if err != nil {
		t.Fatalf("accept invite: %v", err)
	}
	if accepted.Status != RosterConfirmed {
		t.Fatalf("accepted status = %q, want %q", accepted.Status, RosterConfirmed)
	}

	_, err = svc.AcceptInvite(context.Background(), RespondInviteInput{
		ReviewID:  review.ID,
		PersonaID: "persona-2",
		Role:      RoleMentor,
	})
	if !errors.Is(err, ErrNotInvited) {
		t.Fatalf("expected ErrNotInvited accepting twice, got %v", err)
	}

	roster, err := svc.GetRoster(context.Background(), review.ID)
	if err != nil {
		t.Fatalf("get roster: %v", err)
	}
	if !roster.IsConfirmed("persona-2", RoleMentor) {
		t.Fatal("expected persona-2 confirmed as mentor")
	}
	if got := roster.Invited(RoleMentor); len(got) != 0 {
		t.Fatalf("expected no pending mentor invites after accept, got %v", got)
	}

	if events := sink.byType(EventInviteCreated); len(events) != 1 {
		t.Fatalf("InviteCreated events = %d, want 1", len(events))
	}
	if events := sink.byType(EventInviteAccepted); len(events) != 1 {
		t.Fatalf("InviteAccepted events = %d, want 1", len(events))
	}
}

func TestInvite_RejectsDuplicateAndConfirmed(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 11, 8, 10, 0, 0, time.UTC)
	store := newFakeStore()
	svc := NewService(store, nil, fixedClock(now), sequentialIDGenerator("rev-1", "draft-1"))

	review, err := svc.CreateReview(context.Background(), CreateReviewInput{PreprintID: "preprint-1"})
	if err != nil {
		t.Fatalf("create review: %v", err)
	}
	if _, err := svc.Invite(context.Background(), InviteInput{
		ReviewID:  review.ID,
		PersonaID: "persona-2",
		Role:      RoleAuthor,
	}); err != nil {
		t.Fatalf("invite author: %v", err)
	}

	_, err = svc.Invite(context.Background(), InviteInput{
		ReviewID:  review.ID,
		PersonaID: "persona-2",
		Role:      RoleAuthor,
	})
	if !errors.Is(err, ErrAlreadyInvited) {
		t.Fatalf("expected ErrAlreadyInvited on double invite, got %v", err)
	}

	if _, err := svc.AcceptInvite(context.Background(), RespondInviteInput{
		ReviewID:  review.ID,
		PersonaID: "persona-2",
		Role:      RoleAuthor,
	}); err != nil {
		t.Fatalf("accept invite: %v", err)
	}

	_, err = svc.Invite(context.Background(), InviteInput{
		ReviewID:  review.ID,
		PersonaID: "persona-2",
		Role:      RoleAuthor,
	})
	if !errors.Is(err, ErrAlreadyConfirmed) {
		t.Fatalf("expected ErrAlreadyConfirmed inviting confirmed persona, got %v", err)
	}

	// The mentor role is tracked independently of authorship.
	if _, err := svc.Invite(context.Background(), InviteInput{
		ReviewID:  review.ID,
		PersonaID: "persona-2",
		Role:      RoleMentor,
	}); err != nil {
		t.Fatalf("invite confirmed author as mentor: %v", err)
	}
}

func TestDeclineInvite_IsDestructiveAndRepeatable(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 11, 8, 20, 0, 0, time.UTC)
	store := newFakeStore()
	sink := &recordingSink{}
	svc := NewService(store, sink, fixedClock(now), sequentialIDGenerator("rev-1"))

	review, err := svc.CreateReview(context.Background(), CreateReviewInput{PreprintID: "preprint-1"})
	if err != nil {
		t.Fatalf("create review: %v", err)
	}
	if _, err := svc.Invite(context.Background(), InviteInput{
		ReviewID:  review.ID,
		PersonaID: "persona-2",
		Role:      RoleMentor,
	}); err != nil {
		t.Fatalf("invite mentor: %v", err)
	}

	if err := svc.DeclineInvite(context.Background(), RespondInviteInput{
		ReviewID:  review.ID,
		PersonaID: "persona-2",
		Role:      RoleMentor,
	}); err != nil {
		t.Fatalf("decline invite: %v", err)
	}

	err = svc.DeclineInvite(context.Background(), RespondInviteInput{
		ReviewID:  review.ID,
		PersonaID: "persona-2",
		Role:      RoleMentor,
	})
	if !errors.Is(err, ErrNotInvited) {
		t.Fatalf("expected ErrNotInvited declining twice, got %v", err)
	}

	_, err = svc.AcceptInvite(context.Background(), RespondInviteInput{
		ReviewID:  review.ID,
		PersonaID: "persona-2",
		Role:      RoleMentor,
	})
	if !errors.Is(err, ErrNotInvited) {
		t.Fatalf("expected ErrNotInvited accepting declined invite, got %v", err)
	}

	// A declined persona can be invited again from a clean slate.
	if _, err := svc.Invite(context.Background(), InviteInput{
		ReviewID:  review.ID,
		PersonaID: "persona-2",
		Role:      RoleMentor,
	}); err != nil {
		t.Fatalf("re-invite after decline: %v", err)
	}

	if events := sink.byType(EventInviteDeclined); len(events) != 1 {
		t.Fatalf("InviteDeclined events = %d, want 1", len(events))
	}
}

func TestInvite_ValidatesRole(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := NewService(store, nil, fixedClock(time.Date(2026, 3, 11, 8, 30, 0, 0, time.UTC)), sequentialIDGenerator("rev-1"))

	review, err := svc.CreateReview(context.Background(), CreateReviewInput{PreprintID: "preprint-1"})
	if err != nil {
		t.Fatalf("create review: %v", err)
	}

	_, err = svc.Invite(context.Background(), InviteInput{
		ReviewID:  review.ID,
		PersonaID: "persona-2",
		Role:      Role("editor"),
	})
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}

	if _, err := ParseRole(" Author "); err != nil {
		t.Fatalf("expected normalized role parse to succeed, got %v", err)
	}
}

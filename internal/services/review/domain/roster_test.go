package domain

import (
	"errors"
	"testing"
	"time"
)

func TestRoster_InvitedAndConfirmedStayDisjoint(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 13, 7, 0, 0, 0, time.UTC)
	roster := NewRoster("rev-1", nil)

	if _, err := roster.Invite("persona-1", RoleAuthor, now); err != nil {
		t.Fatalf("invite: %v", err)
	}
	if got := roster.Invited(RoleAuthor); len(got) != 1 || got[0] != "persona-1" {
		t.Fatalf("invited = %v, want [persona-1]", got)
	}
	if roster.IsConfirmed("persona-1", RoleAuthor) {
		t.Fatal("invited persona must not be confirmed")
	}

	if _, err := roster.Accept("persona-1", RoleAuthor, now.Add(time.Minute)); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if got := roster.Invited(RoleAuthor); len(got) != 0 {
		t.Fatalf("invited after accept = %v, want empty", got)
	}
	if got := roster.Confirmed(RoleAuthor); len(got) != 1 || got[0] != "persona-1" {
		t.Fatalf("confirmed = %v, want [persona-1]", got)
	}

	if _, err := roster.Accept("persona-1", RoleAuthor, now.Add(2*time.Minute)); !errors.Is(err, ErrNotInvited) {
		t.Fatalf("expected ErrNotInvited on repeat accept, got %v", err)
	}
}

func TestRoster_AcceptWithoutInviteFails(t *testing.T) {
	t.Parallel()

	roster := NewRoster("rev-1", nil)
	if _, err := roster.Accept("persona-1", RoleAuthor, time.Now()); !errors.Is(err, ErrNotInvited) {
		t.Fatalf("expected ErrNotInvited, got %v", err)
	}
	if _, err := roster.Decline("persona-1", RoleAuthor); !errors.Is(err, ErrNotInvited) {
		t.Fatalf("expected ErrNotInvited, got %v", err)
	}
}

func TestRoster_RolesAreIndependent(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 13, 7, 10, 0, 0, time.UTC)
	entries := []RosterEntry{
		{ReviewID: "rev-1", PersonaID: "persona-1", Role: RoleAuthor, Status: RosterConfirmed, CreatedAt: now, UpdatedAt: now},
	}
	roster := NewRoster("rev-1", entries)

	if _, err := roster.Invite("persona-1", RoleMentor, now); err != nil {
		t.Fatalf("invite author as mentor: %v", err)
	}
	if !roster.IsConfirmed("persona-1", RoleAuthor) {
		t.Fatal("author confirmation must survive mentor invite")
	}
	if roster.IsConfirmed("persona-1", RoleMentor) {
		t.Fatal("mentor invite must not confirm")
	}
}

func TestRoster_BootstrapConfirmsWithoutInvite(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 13, 7, 20, 0, 0, time.UTC)
	roster := NewRoster("rev-1", nil)

	entry, err := roster.Bootstrap("persona-1", RoleAuthor, now)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if entry.Status != RosterConfirmed {
		t.Fatalf("bootstrap status = %q, want %q", entry.Status, RosterConfirmed)
	}
	if _, err := roster.Bootstrap("persona-1", RoleAuthor, now); !errors.Is(err, ErrAlreadyConfirmed) {
		t.Fatalf("expected ErrAlreadyConfirmed on repeat bootstrap, got %v", err)
	}
	if !roster.HasConfirmed(RoleAuthor) {
		t.Fatal("expected roster to report a confirmed author")
	}
}

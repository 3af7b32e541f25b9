package domain

import (
	"sort"
	"strings"
	"time"
)

// Role identifies one review participation role.
type Role string

const (
	// RoleAuthor marks review authorship.
	RoleAuthor Role = "author"
	// RoleMentor marks review mentorship.
	RoleMentor Role = "mentor"
)

// ParseRole normalizes and validates a role value.
func ParseRole(value string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleAuthor:
		return RoleAuthor, nil
	case RoleMentor:
		return RoleMentor, nil
	default:
		return "", ErrInvalidRole
	}
}

// RosterStatus is the membership state of one roster entry.
type RosterStatus string

const (
	// RosterInvited marks a pending invite.
	RosterInvited RosterStatus = "invited"
	// RosterConfirmed marks an accepted membership.
	RosterConfirmed RosterStatus = "confirmed"
)

// RosterEntry is one persona-role membership of a review.
type RosterEntry struct {
	ReviewID  string
	PersonaID string
	Role      Role
	Status    RosterStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

type rosterKey struct {
	personaID string
	role      Role
}

// Roster holds the invited and confirmed membership of one review. A persona
// is either invited or confirmed for a role, never both; every transition
// goes through the methods below so the two states cannot drift apart.
type Roster struct {
	reviewID string
	entries  map[rosterKey]RosterEntry
}

// NewRoster builds a roster from stored entries.
func NewRoster(reviewID string, entries []RosterEntry) Roster {
	roster := Roster{
		reviewID: reviewID,
		entries:  make(map[rosterKey]RosterEntry, len(entries)),
	}
	for _, entry := range entries {
		roster.entries[rosterKey{personaID: entry.PersonaID, role: entry.Role}] = entry
	}
	return roster
}

// Invite records a pending invite for a persona and role.
func (r *Roster) Invite(personaID string, role Role, now time.Time) (RosterEntry, error) {
	existing, ok := r.entries[rosterKey{personaID: personaID, role: role}]
	if ok {
		if existing.Status == RosterConfirmed {
			return RosterEntry{}, ErrAlreadyConfirmed
		}
		return RosterEntry{}, ErrAlreadyInvited
	}
	entry := RosterEntry{
		ReviewID:  r.reviewID,
		PersonaID: personaID,
		Role:      role,
		Status:    RosterInvited,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.entries[rosterKey{personaID: personaID, role: role}] = entry
	return entry, nil
}

// Accept moves one pending invite to confirmed. Accepting requires a
// pending invite: a repeated accept finds no invite and fails the same way
// as accepting without one.
func (r *Roster) Accept(personaID string, role Role, now time.Time) (RosterEntry, error) {
	key := rosterKey{personaID: personaID, role: role}
	existing, ok := r.entries[key]
	if !ok || existing.Status != RosterInvited {
		return RosterEntry{}, ErrNotInvited
	}
	existing.Status = RosterConfirmed
	existing.UpdatedAt = now
	r.entries[key] = existing
	return existing, nil
}

// Decline removes one pending invite. Declining is destructive: the entry is
// gone and the persona can be invited again later.
func (r *Roster) Decline(personaID string, role Role) (RosterEntry, error) {
	key := rosterKey{personaID: personaID, role: role}
	existing, ok := r.entries[key]
	if !ok || existing.Status != RosterInvited {
		return RosterEntry{}, ErrNotInvited
	}
	delete(r.entries, key)
	return existing, nil
}

// Bootstrap confirms a persona for a role without a prior invite. Used only
// for the implicit first-author rule on first draft creation.
func (r *Roster) Bootstrap(personaID string, role Role, now time.Time) (RosterEntry, error) {
	key := rosterKey{personaID: personaID, role: role}
	if existing, ok := r.entries[key]; ok {
		if existing.Status == RosterConfirmed {
			return RosterEntry{}, ErrAlreadyConfirmed
		}
		return RosterEntry{}, ErrAlreadyInvited
	}
	entry := RosterEntry{
		ReviewID:  r.reviewID,
		PersonaID: personaID,
		Role:      role,
		Status:    RosterConfirmed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.entries[key] = entry
	return entry, nil
}

// IsConfirmed reports whether the persona holds the role.
func (r Roster) IsConfirmed(personaID string, role Role) bool {
	entry, ok := r.entries[rosterKey{personaID: personaID, role: role}]
	return ok && entry.Status == RosterConfirmed
}

// HasConfirmed reports whether any persona holds the role.
func (r Roster) HasConfirmed(role Role) bool {
	for key, entry := range r.entries {
		if key.role == role && entry.Status == RosterConfirmed {
			return true
		}
	}
	return false
}

// Confirmed lists persona IDs confirmed for a role, sorted for stable output.
func (r Roster) Confirmed(role Role) []string {
	return r.collect(role, RosterConfirmed)
}

// Invited lists persona IDs with pending invites for a role, sorted.
func (r Roster) Invited(role Role) []string {
	return r.collect(role, RosterInvited)
}

func (r Roster) collect(role Role, status RosterStatus) []string {
	var personaIDs []string
	for key, entry := range r.entries {
		if key.role == role && entry.Status == status {
			personaIDs = append(personaIDs, key.personaID)
		}
	}
	sort.Strings(personaIDs)
	return personaIDs
}

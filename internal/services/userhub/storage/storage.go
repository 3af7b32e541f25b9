// Package storage defines persistence records and boundaries for identity state.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested identity record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a requested write conflicts with uniqueness constraints.
	ErrConflict = errors.New("record conflict")
)

// IdentityRecord stores one identity row. ORCID is unique across rows.
type IdentityRecord struct {
	ID               string
	ORCID            string
	IsPrivate        bool
	DefaultPersonaID string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PersonaRecord stores one persona row. DisplayName is unique across rows.
type PersonaRecord struct {
	ID          string
	IdentityID  string
	DisplayName string
	IsAnonymous bool
	IsLocked    bool
	IsFlagged   bool
	AvatarURL   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IdentityStore persists identity rows.
type IdentityStore interface {
	PutIdentity(ctx context.Context, record IdentityRecord) error
	PutIdentityWithPersonas(ctx context.Context, identity IdentityRecord, personas []PersonaRecord) error
	GetIdentity(ctx context.Context, identityID string) (IdentityRecord, error)
	GetIdentityByORCID(ctx context.Context, orcid string) (IdentityRecord, error)
}

// PersonaStore persists persona rows.
type PersonaStore interface {
	PutPersona(ctx context.Context, record PersonaRecord) error
	GetPersona(ctx context.Context, personaID string) (PersonaRecord, error)
	ListPersonasByIdentity(ctx context.Context, identityID string) ([]PersonaRecord, error)
}

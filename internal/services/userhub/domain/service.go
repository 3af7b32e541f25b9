package domain

import (
	"context"
	"strings"
	"time"

	"github.com/openpreview/preprint.review/internal/platform/id"
)

// Store is the domain persistence boundary for identities and personas.
type Store interface {
	PutIdentity(ctx context.Context, identity Identity) error
	PutIdentityWithPersonas(ctx context.Context, identity Identity, personas []Persona) error
	GetIdentity(ctx context.Context, identityID string) (Identity, error)
	GetIdentityByORCID(ctx context.Context, orcid string) (Identity, error)

	PutPersona(ctx context.Context, persona Persona) error
	GetPersona(ctx context.Context, personaID string) (Persona, error)
	ListPersonasByIdentity(ctx context.Context, identityID string) ([]Persona, error)
}

// Service orchestrates identity registration and persona management.
type Service struct {
	store Store
	clock func() time.Time
	newID func() (string, error)
}

// NewService constructs userhub domain use-cases.
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

// RegisterIdentity registers an ORCID iD and creates its default persona in
// one write. When a pseudonym name is supplied an anonymous persona is
// created alongside it.
func (s *Service) RegisterIdentity(ctx context.Context, input RegisterIdentityInput) (Identity, []Persona, error) {
	if s == nil || s.store == nil {
		return Identity{}, nil, ErrStoreNotConfigured
	}
	orcid := NormalizeORCID(input.ORCID)
	if err := ValidateORCID(orcid); err != nil {
		return Identity{}, nil, err
	}
	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		return Identity{}, nil, ErrEmptyDisplayName
	}

	identityID, err := s.newID()
	if err != nil {
		return Identity{}, nil, err
	}
	now := s.nowUTC()

	personas := make([]Persona, 0, 2)
	defaultPersonaID, err := s.newID()
	if err != nil {
		return Identity{}, nil, err
	}
	personas = append(personas, Persona{
		ID:          defaultPersonaID,
		IdentityID:  identityID,
		DisplayName: displayName,
		AvatarURL:   strings.TrimSpace(input.AvatarURL),
		CreatedAt:   now,
		UpdatedAt:   now,
	})

	if pseudonym := strings.TrimSpace(input.PseudonymName); pseudonym != "" {
		pseudonymID, err := s.newID()
		if err != nil {
			return Identity{}, nil, err
		}
		personas = append(personas, Persona{
			ID:          pseudonymID,
			IdentityID:  identityID,
			DisplayName: pseudonym,
			IsAnonymous: true,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	identity := Identity{
		ID:               identityID,
		ORCID:            orcid,
		IsPrivate:        input.IsPrivate,
		DefaultPersonaID: defaultPersonaID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.store.PutIdentityWithPersonas(ctx, identity, personas); err != nil {
		return Identity{}, nil, err
	}
	return identity, personas, nil
}

// GetIdentity loads one identity by ID.
func (s *Service) GetIdentity(ctx context.Context, identityID string) (Identity, error) {
	if s == nil || s.store == nil {
		return Identity{}, ErrStoreNotConfigured
	}
	identityID = strings.TrimSpace(identityID)
	if identityID == "" {
		return Identity{}, ErrNotFound
	}
	return s.store.GetIdentity(ctx, identityID)
}

// GetIdentityByORCID loads one identity by its normalized ORCID iD.
func (s *Service) GetIdentityByORCID(ctx context.Context, orcid string) (Identity, error) {
	if s == nil || s.store == nil {
		return Identity{}, ErrStoreNotConfigured
	}
	orcid = NormalizeORCID(orcid)
	if err := ValidateORCID(orcid); err != nil {
		return Identity{}, err
	}
	return s.store.GetIdentityByORCID(ctx, orcid)
}

// CreatePersona adds a byline to an existing identity. Display names are
// unique across all personas.
func (s *Service) CreatePersona(ctx context.Context, input CreatePersonaInput) (Persona, error) {
	if s == nil || s.store == nil {
		return Persona{}, ErrStoreNotConfigured
	}
	identityID := strings.TrimSpace(input.IdentityID)
	if identityID == "" {
		return Persona{}, ErrNotFound
	}
	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		return Persona{}, ErrEmptyDisplayName
	}
	if _, err := s.store.GetIdentity(ctx, identityID); err != nil {
		return Persona{}, err
	}

	personaID, err := s.newID()
	if err != nil {
		return Persona{}, err
	}
	now := s.nowUTC()
	persona := Persona{
		ID:          personaID,
		IdentityID:  identityID,
		DisplayName: displayName,
		IsAnonymous: input.IsAnonymous,
		AvatarURL:   strings.TrimSpace(input.AvatarURL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.PutPersona(ctx, persona); err != nil {
		return Persona{}, err
	}
	return persona, nil
}

// GetPersona loads one persona by ID.
func (s *Service) GetPersona(ctx context.Context, personaID string) (Persona, error) {
	if s == nil || s.store == nil {
		return Persona{}, ErrStoreNotConfigured
	}
	personaID = strings.TrimSpace(personaID)
	if personaID == "" {
		return Persona{}, ErrNotFound
	}
	return s.store.GetPersona(ctx, personaID)
}

// ListPersonas lists the personas of one identity.
func (s *Service) ListPersonas(ctx context.Context, identityID string) ([]Persona, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	identityID = strings.TrimSpace(identityID)
	if identityID == "" {
		return nil, ErrNotFound
	}
	return s.store.ListPersonasByIdentity(ctx, identityID)
}

// SetDefaultPersona points an identity at one of its own personas.
func (s *Service) SetDefaultPersona(ctx context.Context, identityID string, personaID string) (Identity, error) {
	if s == nil || s.store == nil {
		return Identity{}, ErrStoreNotConfigured
	}
	identity, err := s.GetIdentity(ctx, identityID)
	if err != nil {
		return Identity{}, err
	}
	persona, err := s.GetPersona(ctx, personaID)
	if err != nil {
		return Identity{}, err
	}
	if persona.IdentityID != identity.ID {
		return Identity{}, ErrNotFound
	}
	if !persona.IsActive() {
		return Identity{}, ErrPersonaLocked
	}

	identity.DefaultPersonaID = persona.ID
	identity.UpdatedAt = s.nowUTC()
	if err := s.store.PutIdentity(ctx, identity); err != nil {
		return Identity{}, err
	}
	return identity, nil
}

// SetPersonaLock toggles whether a persona may act.
func (s *Service) SetPersonaLock(ctx context.Context, personaID string, locked bool) (Persona, error) {
	if s == nil || s.store == nil {
		return Persona{}, ErrStoreNotConfigured
	}
	persona, err := s.GetPersona(ctx, personaID)
	if err != nil {
		return Persona{}, err
	}
	if persona.IsLocked == locked {
		return persona, nil
	}
	persona.IsLocked = locked
	persona.UpdatedAt = s.nowUTC()
	if err := s.store.PutPersona(ctx, persona); err != nil {
		return Persona{}, err
	}
	return persona, nil
}

// SetPersonaFlag toggles the moderation flag on a persona.
func (s *Service) SetPersonaFlag(ctx context.Context, input SetPersonaFlagInput) (Persona, error) {
	if s == nil || s.store == nil {
		return Persona{}, ErrStoreNotConfigured
	}
	if !input.Capability.Moderation {
		return Persona{}, ErrModerationNotAllowed
	}
	persona, err := s.GetPersona(ctx, input.PersonaID)
	if err != nil {
		return Persona{}, err
	}
	if persona.IsFlagged == input.Flagged {
		return persona, nil
	}
	persona.IsFlagged = input.Flagged
	persona.UpdatedAt = s.nowUTC()
	if err := s.store.PutPersona(ctx, persona); err != nil {
		return Persona{}, err
	}
	return persona, nil
}

func (s *Service) nowUTC() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}

package server

import (
	"context"
	"errors"

	"github.com/openpreview/preprint.review/internal/services/userhub/domain"
	"github.com/openpreview/preprint.review/internal/services/userhub/storage"
)

// domainStoreAdapter maps persistence records and errors to the identity
// domain's vocabulary.
type domainStoreAdapter struct {
	identityStore storage.IdentityStore
	personaStore  storage.PersonaStore
}

func newDomainStoreAdapter(identityStore storage.IdentityStore, personaStore storage.PersonaStore) *domainStoreAdapter {
	return &domainStoreAdapter{
		identityStore: identityStore,
		personaStore:  personaStore,
	}
}

func (a *domainStoreAdapter) PutIdentity(ctx context.Context, identity domain.Identity) error {
	err := a.identityStore.PutIdentity(ctx, toStorageIdentity(identity))
	if errors.Is(err, storage.ErrConflict) {
		return domain.ErrOrcidConflict
	}
	return mapStorageError(err)
}

func (a *domainStoreAdapter) PutIdentityWithPersonas(ctx context.Context, identity domain.Identity, personas []domain.Persona) error {
	records := make([]storage.PersonaRecord, 0, len(personas))
	for _, persona := range personas {
		records = append(records, toStoragePersona(persona))
	}
	err := a.identityStore.PutIdentityWithPersonas(ctx, toStorageIdentity(identity), records)
	if errors.Is(err, storage.ErrConflict) {
		// Both unique indexes collapse to one storage error. Whether the
		// ORCID row exists tells the two collisions apart.
		if _, lookupErr := a.identityStore.GetIdentityByORCID(ctx, identity.ORCID); lookupErr == nil {
			return domain.ErrOrcidConflict
		}
		return domain.ErrNameConflict
	}
	return mapStorageError(err)
}

func (a *domainStoreAdapter) GetIdentity(ctx context.Context, identityID string) (domain.Identity, error) {
	record, err := a.identityStore.GetIdentity(ctx, identityID)
	if err != nil {
		return domain.Identity{}, mapStorageError(err)
	}
	return toDomainIdentity(record), nil
}

func (a *domainStoreAdapter) GetIdentityByORCID(ctx context.Context, orcid string) (domain.Identity, error) {
	record, err := a.identityStore.GetIdentityByORCID(ctx, orcid)
	if err != nil {
		return domain.Identity{}, mapStorageError(err)
	}
	return toDomainIdentity(record), nil
}

func (a *domainStoreAdapter) PutPersona(ctx context.Context, persona domain.Persona) error {
	err := a.personaStore.PutPersona(ctx, toStoragePersona(persona))
	if errors.Is(err, storage.ErrConflict) {
		return domain.ErrNameConflict
	}
	return mapStorageError(err)
}

func (a *domainStoreAdapter) GetPersona(ctx context.Context, personaID string) (domain.Persona, error) {
	record, err := a.personaStore.GetPersona(ctx, personaID)
	if err != nil {
		return domain.Persona{}, mapStorageError(err)
	}
	return toDomainPersona(record), nil
}

func (a *domainStoreAdapter) ListPersonasByIdentity(ctx context.Context, identityID string) ([]domain.Persona, error) {
	records, err := a.personaStore.ListPersonasByIdentity(ctx, identityID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	personas := make([]domain.Persona, 0, len(records))
	for _, record := range records {
		personas = append(personas, toDomainPersona(record))
	}
	return personas, nil
}

func mapStorageError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return domain.ErrNotFound
	}
	return err
}

func toStorageIdentity(identity domain.Identity) storage.IdentityRecord {
	return storage.IdentityRecord{
		ID:               identity.ID,
		ORCID:            identity.ORCID,
		IsPrivate:        identity.IsPrivate,
		DefaultPersonaID: identity.DefaultPersonaID,
		CreatedAt:        identity.CreatedAt,
		UpdatedAt:        identity.UpdatedAt,
	}
}

func toDomainIdentity(record storage.IdentityRecord) domain.Identity {
	return domain.Identity{
		ID:               record.ID,
		ORCID:            record.ORCID,
		IsPrivate:        record.IsPrivate,
		DefaultPersonaID: record.DefaultPersonaID,
		CreatedAt:        record.CreatedAt,
		UpdatedAt:        record.UpdatedAt,
	}
}

func toStoragePersona(persona domain.Persona) storage.PersonaRecord {
	return storage.PersonaRecord{
		ID:          persona.ID,
		IdentityID:  persona.IdentityID,
		DisplayName: persona.DisplayName,
		IsAnonymous: persona.IsAnonymous,
		IsLocked:    persona.IsLocked,
		IsFlagged:   persona.IsFlagged,
		AvatarURL:   persona.AvatarURL,
		CreatedAt:   persona.CreatedAt,
		UpdatedAt:   persona.UpdatedAt,
	}
}

func toDomainPersona(record storage.PersonaRecord) domain.Persona {
	return domain.Persona{
		ID:          record.ID,
		IdentityID:  record.IdentityID,
		DisplayName: record.DisplayName,
		IsAnonymous: record.IsAnonymous,
		IsLocked:    record.IsLocked,
		IsFlagged:   record.IsFlagged,
		AvatarURL:   record.AvatarURL,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}

package server

import (
	"context"
	"errors"
	"time"

	"github.com/openpreview/preprint.review/internal/services/auth/domain"
	"github.com/openpreview/preprint.review/internal/services/auth/storage"
)

type domainStoreAdapter struct {
	sessionStore storage.SessionStore
}

func newDomainStoreAdapter(sessionStore storage.SessionStore) *domainStoreAdapter {
	return &domainStoreAdapter{sessionStore: sessionStore}
}

func (a *domainStoreAdapter) PutSession(ctx context.Context, session domain.SessionRecord) error {
	if a == nil || a.sessionStore == nil {
		return domain.ErrStoreNotConfigured
	}
	return mapStorageError(a.sessionStore.PutSession(ctx, storage.SessionRecord{
		ID:        session.ID,
		ORCID:     session.ORCID,
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
		RevokedAt: session.RevokedAt,
	}))
}

func (a *domainStoreAdapter) GetSession(ctx context.Context, sessionID string) (domain.SessionRecord, error) {
	if a == nil || a.sessionStore == nil {
		return domain.SessionRecord{}, domain.ErrStoreNotConfigured
	}
	record, err := a.sessionStore.GetSession(ctx, sessionID)
	if err != nil {
		return domain.SessionRecord{}, mapStorageError(err)
	}
	return domain.SessionRecord{
		ID:        record.ID,
		ORCID:     record.ORCID,
		CreatedAt: record.CreatedAt,
		ExpiresAt: record.ExpiresAt,
		RevokedAt: record.RevokedAt,
	}, nil
}

func (a *domainStoreAdapter) RevokeSession(ctx context.Context, sessionID string, revokedAt time.Time) error {
	if a == nil || a.sessionStore == nil {
		return domain.ErrStoreNotConfigured
	}
	return mapStorageError(a.sessionStore.RevokeSession(ctx, sessionID, revokedAt))
}

func mapStorageError(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return domain.ErrNotFound
	}
	return err
}

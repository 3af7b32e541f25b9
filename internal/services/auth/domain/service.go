package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/openpreview/preprint.review/internal/platform/id"
)

// ErrNotFound indicates a session record was not found.
var ErrNotFound = errors.New("session not found")

// Session is one minted login session.
type Session struct {
	ID        string
	Token     string
	Identity  AuthenticatedIdentity
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store is the domain persistence boundary for session revocation state.
type Store interface {
	PutSession(ctx context.Context, session SessionRecord) error
	GetSession(ctx context.Context, sessionID string) (SessionRecord, error)
	RevokeSession(ctx context.Context, sessionID string, revokedAt time.Time) error
}

// SessionRecord is the stored view of one minted session.
type SessionRecord struct {
	ID        string
	ORCID     string
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// Service orchestrates strategy login flows and session lifecycle.
type Service struct {
	store    Store
	strategy Strategy
	sessions SessionConfig
	clock    func() time.Time
	newID    func() (string, error)
}

// NewService constructs auth domain use-cases.
func NewService(store Store, strategy Strategy, sessions SessionConfig, clock func() time.Time, newID func() (string, error)) *Service {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &Service{
		store:    store,
		strategy: strategy,
		sessions: sessions,
		clock:    clock,
		newID:    newID,
	}
}

// Strategy returns the configured login strategy.
func (s *Service) Strategy() Strategy {
	if s == nil {
		return nil
	}
	return s.strategy
}

// BeginLogin starts the configured strategy's login flow.
func (s *Service) BeginLogin(ctx context.Context, input BeginLoginInput) (LoginChallenge, error) {
	if s == nil || s.strategy == nil {
		return LoginChallenge{}, ErrUnknownStrategy
	}
	return s.strategy.BeginLogin(ctx, input)
}

// CompleteLogin finishes the strategy flow and mints a revocable session.
func (s *Service) CompleteLogin(ctx context.Context, input CompleteLoginInput) (Session, error) {
	if s == nil || s.strategy == nil {
		return Session{}, ErrUnknownStrategy
	}
	if s.store == nil {
		return Session{}, ErrStoreNotConfigured
	}

	identity, err := s.strategy.CompleteLogin(ctx, input)
	if err != nil {
		return Session{}, err
	}

	sessionID, err := s.newID()
	if err != nil {
		return Session{}, err
	}
	now := s.nowUTC()
	token, expiresAt, err := mintSessionToken(identity.ORCID, sessionID, now, s.sessions)
	if err != nil {
		return Session{}, err
	}
	record := SessionRecord{
		ID:        sessionID,
		ORCID:     identity.ORCID,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
	if err := s.store.PutSession(ctx, record); err != nil {
		return Session{}, err
	}
	return Session{
		ID:        sessionID,
		Token:     token,
		Identity:  identity,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateSession verifies a session token and checks revocation state.
func (s *Service) ValidateSession(ctx context.Context, token string) (SessionClaims, error) {
	if s == nil || s.store == nil {
		return SessionClaims{}, ErrStoreNotConfigured
	}
	claims, err := verifySessionToken(token, s.nowUTC(), s.sessions)
	if err != nil {
		return SessionClaims{}, err
	}
	record, err := s.store.GetSession(ctx, claims.JWTID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return SessionClaims{}, ErrTokenInvalid
		}
		return SessionClaims{}, err
	}
	if record.RevokedAt != nil {
		return SessionClaims{}, ErrTokenInvalid
	}
	if record.ORCID != claims.ORCID {
		return SessionClaims{}, ErrTokenInvalid
	}
	return claims, nil
}

// RevokeSession invalidates one session ahead of its expiry. Revoking an
// unknown session is a no-op.
func (s *Service) RevokeSession(ctx context.Context, sessionID string) error {
	if s == nil || s.store == nil {
		return ErrStoreNotConfigured
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return ErrTokenInvalid
	}
	if err := s.store.RevokeSession(ctx, sessionID, s.nowUTC()); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	return nil
}

func (s *Service) nowUTC() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}

package domain

import (
	"context"

	"github.com/openpreview/preprint.review/internal/platform/id"
)

// MockStrategy trusts the caller-supplied ORCID iD. It exists for local
// development and tests and must never be configured in production.
type MockStrategy struct {
	newID func() (string, error)
}

// NewMockStrategy constructs the development login strategy.
func NewMockStrategy() *MockStrategy {
	return &MockStrategy{newID: id.NewID}
}

// Name identifies the strategy in configuration and challenges.
func (s *MockStrategy) Name() string {
	return StrategyMock
}

// BeginLogin issues an opaque state with no external authorize hop.
func (s *MockStrategy) BeginLogin(_ context.Context, _ BeginLoginInput) (LoginChallenge, error) {
	state, err := s.newID()
	if err != nil {
		return LoginChallenge{}, err
	}
	return LoginChallenge{
		Strategy: StrategyMock,
		State:    state,
	}, nil
}

// CompleteLogin accepts the supplied ORCID iD as authenticated.
func (s *MockStrategy) CompleteLogin(_ context.Context, input CompleteLoginInput) (AuthenticatedIdentity, error) {
	orcid := normalizeORCID(input.ORCID)
	if orcid == "" {
		return AuthenticatedIdentity{}, ErrEmptyOrcid
	}
	return AuthenticatedIdentity{ORCID: orcid}, nil
}

package domain

import (
	"context"
	"strings"
)

// Strategy names form a closed set selected by explicit configuration.
const (
	// StrategyMock authenticates a caller-supplied ORCID iD without an external round trip.
	StrategyMock = "mock"
	// StrategyORCID authenticates through the ORCID OAuth authorization flow.
	StrategyORCID = "orcid"
)

// AuthenticatedIdentity is the outcome of a completed login.
type AuthenticatedIdentity struct {
	ORCID       string
	DisplayName string
}

// LoginChallenge directs the caller through one strategy's login flow.
type LoginChallenge struct {
	Strategy     string
	State        string
	AuthorizeURL string
}

// BeginLoginInput configures one login challenge.
type BeginLoginInput struct {
	RedirectURI string
}

// CompleteLoginInput carries strategy-specific login completion proof.
type CompleteLoginInput struct {
	State string
	Code  string
	ORCID string
}

// Strategy is one authentication mechanism. Implementations are selected by
// name at startup; there is no implicit environment detection.
type Strategy interface {
	Name() string
	BeginLogin(ctx context.Context, input BeginLoginInput) (LoginChallenge, error)
	CompleteLogin(ctx context.Context, input CompleteLoginInput) (AuthenticatedIdentity, error)
}

// SelectStrategy resolves one strategy from the closed set by name.
func SelectStrategy(name string, orcid ORCIDConfig) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case StrategyMock:
		return NewMockStrategy(), nil
	case StrategyORCID:
		return NewORCIDStrategy(orcid), nil
	default:
		return nil, ErrUnknownStrategy
	}
}

// normalizeORCID strips the canonical URL prefix and uppercases the checksum digit.
func normalizeORCID(raw string) string {
	value := strings.TrimSpace(raw)
	for _, prefix := range []string{"https://orcid.org/", "http://orcid.org/", "orcid.org/"} {
		if strings.HasPrefix(strings.ToLower(value), prefix) {
			value = value[len(prefix):]
			break
		}
	}
	return strings.ToUpper(strings.TrimSpace(value))
}

package domain

import (
	"errors"

	apperrors "github.com/openpreview/preprint.review/internal/platform/errors"
)

var (
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("auth session store is not configured")

	// ErrUnknownStrategy indicates the configured strategy name is not in the closed set.
	ErrUnknownStrategy = apperrors.New(apperrors.CodeAuthUnknownStrategy, "authentication strategy is unknown")
	// ErrTokenInvalid indicates a session token failed verification.
	ErrTokenInvalid = apperrors.New(apperrors.CodeAuthTokenInvalid, "session token is invalid")
	// ErrTokenExpired indicates a session token is past its expiry.
	ErrTokenExpired = apperrors.New(apperrors.CodeAuthTokenExpired, "session token is expired")

	// ErrEmptyOrcid indicates an ORCID iD is required.
	ErrEmptyOrcid = apperrors.New(apperrors.CodeIdentityEmptyOrcid, "orcid id is required")
	// ErrEmptyState indicates a login state value is required.
	ErrEmptyState = apperrors.New(apperrors.CodeAuthTokenInvalid, "login state is required")
	// ErrEmptyCode indicates an authorization code is required.
	ErrEmptyCode = apperrors.New(apperrors.CodeAuthTokenInvalid, "authorization code is required")
)

package domain

import (
	"errors"

	apperrors "github.com/openpreview/preprint.review/internal/platform/errors"
)

var (
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("userhub store is not configured")
	// ErrNotFound indicates a requested identity or persona is missing.
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

	// ErrEmptyOrcid indicates a missing ORCID iD.
	ErrEmptyOrcid = apperrors.New(apperrors.CodeIdentityEmptyOrcid, "orcid is required")
	// ErrInvalidOrcid indicates an ORCID iD that fails format or checksum validation.
	ErrInvalidOrcid = apperrors.New(apperrors.CodeIdentityInvalidOrcid, "orcid is not valid")
	// ErrOrcidConflict indicates the ORCID iD already belongs to another identity.
	ErrOrcidConflict = apperrors.New(apperrors.CodeIdentityOrcidConflict, "orcid is already registered")

	// ErrEmptyDisplayName indicates a missing persona display name.
	ErrEmptyDisplayName = apperrors.New(apperrors.CodePersonaEmptyName, "display name is required")
	// ErrNameConflict indicates the display name already belongs to another persona.
	ErrNameConflict = apperrors.New(apperrors.CodePersonaNameConflict, "display name is already taken")
	// ErrPersonaLocked indicates an operation on a locked persona.
	ErrPersonaLocked = apperrors.New(apperrors.CodePersonaLocked, "persona is locked")

	// ErrModerationNotAllowed indicates the caller lacks the moderation capability.
	ErrModerationNotAllowed = apperrors.New(apperrors.CodeModerationNotAllowed, "moderation capability is required")
)

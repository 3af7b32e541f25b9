package domain

import (
	"errors"

	apperrors "github.com/openpreview/preprint.review/internal/platform/errors"
)

var (
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("community store is not configured")
	// ErrNotFound indicates a requested community or membership is missing.
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

	// ErrEmptySlug indicates a missing community slug.
	ErrEmptySlug = apperrors.New(apperrors.CodeCommunityEmptySlug, "community slug is required")
	// ErrEmptyName indicates a missing community name.
	ErrEmptyName = apperrors.New(apperrors.CodeCommunityEmptyName, "community name is required")
	// ErrSlugConflict indicates the slug is already taken.
	ErrSlugConflict = apperrors.New(apperrors.CodeCommunitySlugConflict, "community slug already exists")
	// ErrInvalidRole indicates an unknown member role.
	ErrInvalidRole = apperrors.New(apperrors.CodeCommunityInvalidRole, "role must be member, moderator, or owner")
	// ErrLastOwner indicates removing or demoting the only owner.
	ErrLastOwner = apperrors.New(apperrors.CodeCommunityLastOwner, "community must keep at least one owner")
	// ErrEmptyPersonaID indicates a missing member persona reference.
	ErrEmptyPersonaID = apperrors.New(apperrors.CodeReviewEmptyPersonaID, "persona id is required")
	// ErrEmptyPreprintID indicates a missing preprint reference.
	ErrEmptyPreprintID = apperrors.New(apperrors.CodeReviewEmptyPreprintID, "preprint id is required")
)

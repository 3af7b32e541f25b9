package domain

import (
	"errors"

	apperrors "github.com/openpreview/preprint.review/internal/platform/errors"
)

var (
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("preprint store is not configured")
	// ErrNotFound indicates a requested preprint, request, or rapid review is missing.
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

	// ErrEmptyHandle indicates a missing preprint handle.
	ErrEmptyHandle = apperrors.New(apperrors.CodePreprintEmptyHandle, "preprint handle is required")
	// ErrEmptyTitle indicates a missing preprint title.
	ErrEmptyTitle = apperrors.New(apperrors.CodePreprintEmptyTitle, "preprint title is required")
	// ErrHandleConflict indicates the handle already identifies another preprint.
	ErrHandleConflict = apperrors.New(apperrors.CodePreprintHandleConflict, "preprint handle is already registered")
	// ErrEmptyPreprintID indicates a missing preprint reference.
	ErrEmptyPreprintID = apperrors.New(apperrors.CodeRequestEmptyPreprintID, "preprint id is required")
	// ErrEmptyPersonaID indicates a missing acting persona.
	ErrEmptyPersonaID = apperrors.New(apperrors.CodeRequestEmptyPersonaID, "persona id is required")

	// ErrInvalidAnswer indicates a rapid review answer outside the closed set.
	ErrInvalidAnswer = apperrors.New(apperrors.CodeRapidReviewInvalidAnswer, "answer must be yes, no, na, or unsure")
	// ErrUnknownQuestion indicates an answer for a question outside the closed set.
	ErrUnknownQuestion = apperrors.New(apperrors.CodeRapidReviewUnknownQuestion, "unknown rapid review question")
	// ErrMissingAnswer indicates a rapid review without an answer for every question.
	ErrMissingAnswer = apperrors.New(apperrors.CodeRapidReviewMissingAnswer, "every rapid review question requires an answer")

	// ErrEmptyTag indicates a missing tag name.
	ErrEmptyTag = apperrors.New(apperrors.CodePreprintEmptyTag, "tag name is required")

	// ErrModerationNotAllowed indicates the caller lacks the moderation capability.
	ErrModerationNotAllowed = apperrors.New(apperrors.CodeModerationNotAllowed, "moderation capability is required")
)

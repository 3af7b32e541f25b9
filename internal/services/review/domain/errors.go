package domain

import (
	"errors"

	apperrors "github.com/openpreview/preprint.review/internal/platform/errors"
)

var (
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("review store is not configured")
	// ErrGrantsNotConfigured indicates a grant operation on a service without
	// invite grant keys.
	ErrGrantsNotConfigured = errors.New("invite grants are not configured")
	// ErrNotFound indicates a requested review, draft, or comment is missing.
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

	// ErrEmptyReviewID indicates a missing review reference.
	ErrEmptyReviewID = apperrors.New(apperrors.CodeReviewEmptyReviewID, "review id is required")
	// ErrEmptyPreprintID indicates a missing preprint reference.
	ErrEmptyPreprintID = apperrors.New(apperrors.CodeReviewEmptyPreprintID, "preprint id is required")
	// ErrEmptyPersonaID indicates a missing acting persona.
	ErrEmptyPersonaID = apperrors.New(apperrors.CodeReviewEmptyPersonaID, "persona id is required")
	// ErrEmptyContents indicates empty draft contents.
	ErrEmptyContents = apperrors.New(apperrors.CodeReviewEmptyContents, "draft contents are required")
	// ErrNotAuthor indicates the acting persona is not a confirmed author.
	ErrNotAuthor = apperrors.New(apperrors.CodeReviewNotAuthor, "persona is not a confirmed author of this review")
	// ErrNoDrafts indicates the review has no draft content yet.
	ErrNoDrafts = apperrors.New(apperrors.CodeReviewNoDrafts, "review has no drafts")
	// ErrAlreadyPublished indicates a repeated publish of the same review.
	ErrAlreadyPublished = apperrors.New(apperrors.CodeReviewAlreadyPublished, "review is already published")
	// ErrNotPublished indicates an operation that requires a published review.
	ErrNotPublished = apperrors.New(apperrors.CodeReviewNotPublished, "review is not published")
	// ErrEmptyDOI indicates a missing DOI value.
	ErrEmptyDOI = apperrors.New(apperrors.CodeReviewEmptyDOI, "doi is required")
	// ErrDOIConflict indicates the DOI is already assigned elsewhere.
	ErrDOIConflict = apperrors.New(apperrors.CodeReviewDOIConflict, "doi is already assigned")

	// ErrInvalidRole indicates an unknown roster role.
	ErrInvalidRole = apperrors.New(apperrors.CodeInviteInvalidRole, "role must be author or mentor")
	// ErrAlreadyInvited indicates a pending invite already exists for the persona and role.
	ErrAlreadyInvited = apperrors.New(apperrors.CodeInviteAlreadyInvited, "persona already has a pending invite for this role")
	// ErrAlreadyConfirmed indicates the persona already holds the role.
	ErrAlreadyConfirmed = apperrors.New(apperrors.CodeInviteAlreadyConfirmed, "persona is already confirmed for this role")
	// ErrNotInvited indicates no pending invite exists for the persona and role.
	ErrNotInvited = apperrors.New(apperrors.CodeInviteNotInvited, "persona has no pending invite for this role")

	// ErrCommentEmptyContents indicates empty comment contents.
	ErrCommentEmptyContents = apperrors.New(apperrors.CodeCommentEmptyContents, "comment contents are required")
	// ErrCommentNotPublished indicates commenting on an unpublished review.
	ErrCommentNotPublished = apperrors.New(apperrors.CodeCommentNotPublished, "review must be published before commenting")

	// ErrModerationNotAllowed indicates the caller lacks the moderation capability.
	ErrModerationNotAllowed = apperrors.New(apperrors.CodeModerationNotAllowed, "moderation capability is required")
)

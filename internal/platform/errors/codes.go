package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Review errors
	CodeReviewEmptyReviewID    Code = "REVIEW_EMPTY_REVIEW_ID"
	CodeReviewEmptyPreprintID  Code = "REVIEW_EMPTY_PREPRINT_ID"
	CodeReviewEmptyPersonaID   Code = "REVIEW_EMPTY_PERSONA_ID"
	CodeReviewEmptyContents    Code = "REVIEW_EMPTY_CONTENTS"
	CodeReviewNotAuthor        Code = "REVIEW_NOT_AUTHOR"
	CodeReviewNoDrafts         Code = "REVIEW_NO_DRAFTS"
	CodeReviewAlreadyPublished Code = "REVIEW_ALREADY_PUBLISHED"
	CodeReviewNotPublished     Code = "REVIEW_NOT_PUBLISHED"
	CodeReviewEmptyDOI         Code = "REVIEW_EMPTY_DOI"
	CodeReviewDOIConflict      Code = "REVIEW_DOI_CONFLICT"

	// Invite errors
	CodeInviteInvalidRole      Code = "INVITE_INVALID_ROLE"
	CodeInviteAlreadyInvited   Code = "INVITE_ALREADY_INVITED"
	CodeInviteAlreadyConfirmed Code = "INVITE_ALREADY_CONFIRMED"
	CodeInviteNotInvited       Code = "INVITE_NOT_INVITED"
	CodeInviteGrantInvalid     Code = "INVITE_GRANT_INVALID"
	CodeInviteGrantExpired     Code = "INVITE_GRANT_EXPIRED"
	CodeInviteGrantMismatch    Code = "INVITE_GRANT_MISMATCH"

	// Comment errors
	CodeCommentEmptyContents Code = "COMMENT_EMPTY_CONTENTS"
	CodeCommentNotPublished  Code = "COMMENT_PARENT_NOT_PUBLISHED"

	// Moderation errors
	CodeModerationNotAllowed Code = "MODERATION_NOT_ALLOWED"

	// Preprint errors
	CodePreprintEmptyHandle    Code = "PREPRINT_EMPTY_HANDLE"
	CodePreprintEmptyTitle     Code = "PREPRINT_EMPTY_TITLE"
	CodePreprintHandleConflict Code = "PREPRINT_HANDLE_CONFLICT"
	CodePreprintEmptyTag       Code = "PREPRINT_EMPTY_TAG"

	// Rapid review errors
	CodeRapidReviewInvalidAnswer   Code = "RAPID_REVIEW_INVALID_ANSWER"
	CodeRapidReviewUnknownQuestion Code = "RAPID_REVIEW_UNKNOWN_QUESTION"
	CodeRapidReviewMissingAnswer   Code = "RAPID_REVIEW_MISSING_ANSWER"

	// Request errors
	CodeRequestEmptyPreprintID Code = "REQUEST_EMPTY_PREPRINT_ID"
	CodeRequestEmptyPersonaID  Code = "REQUEST_EMPTY_PERSONA_ID"

	// Identity/persona errors
	CodeIdentityEmptyOrcid    Code = "IDENTITY_EMPTY_ORCID"
	CodeIdentityInvalidOrcid  Code = "IDENTITY_INVALID_ORCID"
	CodeIdentityOrcidConflict Code = "IDENTITY_ORCID_CONFLICT"
	CodePersonaEmptyName      Code = "PERSONA_EMPTY_DISPLAY_NAME"
	CodePersonaNameConflict   Code = "PERSONA_NAME_CONFLICT"
	CodePersonaLocked         Code = "PERSONA_LOCKED"

	// Community errors
	CodeCommunityEmptySlug    Code = "COMMUNITY_EMPTY_SLUG"
	CodeCommunityEmptyName    Code = "COMMUNITY_EMPTY_NAME"
	CodeCommunitySlugConflict Code = "COMMUNITY_SLUG_CONFLICT"
	CodeCommunityInvalidRole  Code = "COMMUNITY_INVALID_ROLE"
	CodeCommunityLastOwner    Code = "COMMUNITY_LAST_OWNER"

	// Auth errors
	CodeAuthUnknownStrategy Code = "AUTH_UNKNOWN_STRATEGY"
	CodeAuthTokenInvalid    Code = "AUTH_TOKEN_INVALID"
	CodeAuthTokenExpired    Code = "AUTH_TOKEN_EXPIRED"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
	CodeConflict Code = "CONFLICT"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeReviewEmptyReviewID,
		CodeReviewEmptyPreprintID,
		CodeReviewEmptyPersonaID,
		CodeReviewEmptyContents,
		CodeReviewEmptyDOI,
		CodeInviteInvalidRole,
		CodeCommentEmptyContents,
		CodePreprintEmptyHandle,
		CodePreprintEmptyTitle,
		CodeRapidReviewInvalidAnswer,
		CodeRapidReviewUnknownQuestion,
		CodeRapidReviewMissingAnswer,
		CodePreprintEmptyTag,
		CodeRequestEmptyPreprintID,
		CodeRequestEmptyPersonaID,
		CodeIdentityEmptyOrcid,
		CodeIdentityInvalidOrcid,
		CodePersonaEmptyName,
		CodeCommunityEmptySlug,
		CodeCommunityEmptyName,
		CodeCommunityInvalidRole,
		CodeAuthUnknownStrategy:
		return codes.InvalidArgument

	// FailedPrecondition - lifecycle state doesn't allow the operation
	case CodeReviewNoDrafts,
		CodeReviewAlreadyPublished,
		CodeReviewNotPublished,
		CodeCommentNotPublished,
		CodeInviteAlreadyInvited,
		CodeInviteAlreadyConfirmed,
		CodeInviteNotInvited,
		CodeCommunityLastOwner:
		return codes.FailedPrecondition

	// PermissionDenied - actor lacks the required role or capability
	case CodeReviewNotAuthor,
		CodeModerationNotAllowed,
		CodePersonaLocked:
		return codes.PermissionDenied

	// AlreadyExists - uniqueness violations
	case CodeReviewDOIConflict,
		CodePreprintHandleConflict,
		CodeIdentityOrcidConflict,
		CodePersonaNameConflict,
		CodeCommunitySlugConflict,
		CodeConflict:
		return codes.AlreadyExists

	// Unauthenticated - credential and grant failures
	case CodeAuthTokenInvalid,
		CodeAuthTokenExpired,
		CodeInviteGrantInvalid,
		CodeInviteGrantExpired,
		CodeInviteGrantMismatch:
		return codes.Unauthenticated

	// NotFound - resource doesn't exist
	case CodeNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}

package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeReviewEmptyReviewID    = "REVIEW_EMPTY_REVIEW_ID"
	CodeReviewEmptyPreprintID  = "REVIEW_EMPTY_PREPRINT_ID"
	CodeReviewEmptyPersonaID   = "REVIEW_EMPTY_PERSONA_ID"
	CodeReviewEmptyContents    = "REVIEW_EMPTY_CONTENTS"
	CodeReviewNotAuthor        = "REVIEW_NOT_AUTHOR"
	CodeReviewNoDrafts         = "REVIEW_NO_DRAFTS"
	CodeReviewAlreadyPublished = "REVIEW_ALREADY_PUBLISHED"
	CodeReviewNotPublished     = "REVIEW_NOT_PUBLISHED"
	CodeReviewEmptyDOI         = "REVIEW_EMPTY_DOI"
	CodeReviewDOIConflict      = "REVIEW_DOI_CONFLICT"

	CodeInviteInvalidRole      = "INVITE_INVALID_ROLE"
	CodeInviteAlreadyInvited   = "INVITE_ALREADY_INVITED"
	CodeInviteAlreadyConfirmed = "INVITE_ALREADY_CONFIRMED"
	CodeInviteNotInvited       = "INVITE_NOT_INVITED"
	CodeInviteGrantInvalid     = "INVITE_GRANT_INVALID"
	CodeInviteGrantExpired     = "INVITE_GRANT_EXPIRED"
	CodeInviteGrantMismatch    = "INVITE_GRANT_MISMATCH"

	CodeCommentEmptyContents = "COMMENT_EMPTY_CONTENTS"
	CodeCommentNotPublished  = "COMMENT_PARENT_NOT_PUBLISHED"

	CodeModerationNotAllowed = "MODERATION_NOT_ALLOWED"

	CodePreprintEmptyHandle    = "PREPRINT_EMPTY_HANDLE"
	CodePreprintEmptyTitle     = "PREPRINT_EMPTY_TITLE"
	CodePreprintHandleConflict = "PREPRINT_HANDLE_CONFLICT"
	CodePreprintEmptyTag       = "PREPRINT_EMPTY_TAG"

	CodeRapidReviewInvalidAnswer   = "RAPID_REVIEW_INVALID_ANSWER"
	CodeRapidReviewUnknownQuestion = "RAPID_REVIEW_UNKNOWN_QUESTION"
	CodeRapidReviewMissingAnswer   = "RAPID_REVIEW_MISSING_ANSWER"

	CodeRequestEmptyPreprintID = "REQUEST_EMPTY_PREPRINT_ID"
	CodeRequestEmptyPersonaID  = "REQUEST_EMPTY_PERSONA_ID"

	CodeIdentityEmptyOrcid    = "IDENTITY_EMPTY_ORCID"
	CodeIdentityInvalidOrcid  = "IDENTITY_INVALID_ORCID"
	CodeIdentityOrcidConflict = "IDENTITY_ORCID_CONFLICT"
	CodePersonaEmptyName      = "PERSONA_EMPTY_DISPLAY_NAME"
	CodePersonaNameConflict   = "PERSONA_NAME_CONFLICT"
	CodePersonaLocked         = "PERSONA_LOCKED"

	CodeCommunityEmptySlug    = "COMMUNITY_EMPTY_SLUG"
	CodeCommunityEmptyName    = "COMMUNITY_EMPTY_NAME"
	CodeCommunitySlugConflict = "COMMUNITY_SLUG_CONFLICT"
	CodeCommunityInvalidRole  = "COMMUNITY_INVALID_ROLE"
	CodeCommunityLastOwner    = "COMMUNITY_LAST_OWNER"

	CodeAuthUnknownStrategy = "AUTH_UNKNOWN_STRATEGY"
	CodeAuthTokenInvalid    = "AUTH_TOKEN_INVALID"
	CodeAuthTokenExpired    = "AUTH_TOKEN_EXPIRED"

	CodeNotFound = "NOT_FOUND"
	CodeConflict = "CONFLICT"
)

var enUSCatalog = NewCatalog("en-US", map[Code]string{
	// Review errors
	CodeReviewEmptyReviewID:    "Review ID is required",
	CodeReviewEmptyPreprintID:  "Preprint ID is required for a review",
	CodeReviewEmptyPersonaID:   "Persona ID is required",
	CodeReviewEmptyContents:    "Draft contents cannot be empty",
	CodeReviewNotAuthor:        "Only a confirmed author may perform this action",
	CodeReviewNoDrafts:         "A review needs at least one draft before publication",
	CodeReviewAlreadyPublished: "This review is already published",
	CodeReviewNotPublished:     "This review is not published yet",
	CodeReviewEmptyDOI:         "DOI cannot be empty",
	CodeReviewDOIConflict:      "DOI {{.DOI}} is already assigned to another review",

	// Invite errors
	CodeInviteInvalidRole:      "Invalid invite role specified",
	CodeInviteAlreadyInvited:   "This persona already has a pending {{.Role}} invite",
	CodeInviteAlreadyConfirmed: "This persona is already a confirmed {{.Role}}",
	CodeInviteNotInvited:       "This persona has no pending {{.Role}} invite",
	CodeInviteGrantInvalid:     "The invite link is invalid",
	CodeInviteGrantExpired:     "The invite link has expired",
	CodeInviteGrantMismatch:    "The invite link does not match this invitation",

	// Comment errors
	CodeCommentEmptyContents: "Comment contents cannot be empty",
	CodeCommentNotPublished:  "Comments can only be posted on published reviews",

	// Moderation errors
	CodeModerationNotAllowed: "Moderation capability is required for this action",

	// Preprint errors
	CodePreprintEmptyHandle:    "Preprint handle (DOI or arXiv ID) is required",
	CodePreprintEmptyTitle:     "Preprint title is required",
	CodePreprintHandleConflict: "Preprint {{.Handle}} already exists",
	CodePreprintEmptyTag:       "Tag name is required",

	// Rapid review errors
	CodeRapidReviewInvalidAnswer:   "Answer must be one of yes, no, N/A or unsure",
	CodeRapidReviewUnknownQuestion: "Unknown rapid review question: {{.Question}}",
	CodeRapidReviewMissingAnswer:   "Every rapid review question requires an answer",

	// Request errors
	CodeRequestEmptyPreprintID: "Preprint ID is required for a review request",
	CodeRequestEmptyPersonaID:  "Persona ID is required for a review request",

	// Identity/persona errors
	CodeIdentityEmptyOrcid:    "ORCID is required",
	CodeIdentityInvalidOrcid:  "ORCID iD is not valid",
	CodeIdentityOrcidConflict: "An identity with this ORCID already exists",
	CodePersonaEmptyName:      "Persona display name cannot be empty",
	CodePersonaNameConflict:   "Persona name {{.Name}} is already taken",
	CodePersonaLocked:         "This persona is locked and cannot act",

	// Community errors
	CodeCommunityEmptySlug:    "Community slug is required",
	CodeCommunityEmptyName:    "Community name is required",
	CodeCommunitySlugConflict: "Community {{.Slug}} already exists",
	CodeCommunityInvalidRole:  "Invalid community member role specified",
	CodeCommunityLastOwner:    "A community must keep at least one owner",

	// Auth errors
	CodeAuthUnknownStrategy: "Unknown authentication strategy: {{.Strategy}}",
	CodeAuthTokenInvalid:    "The session token is invalid",
	CodeAuthTokenExpired:    "The session token has expired",

	// Storage errors
	CodeNotFound: "The requested resource was not found",
	CodeConflict: "The request conflicts with existing data",
})

package render

import (
	"encoding/json"
	"strings"

	"golang.org/x/text/message"
)

const (
	// TopicReviewPublished is the template id for review publication notices.
	TopicReviewPublished = "review.published"
	// TopicInviteCreated is the template id for review invitation notices.
	TopicInviteCreated = "review.invite.created"
	// TopicInviteAccepted is the template id for accepted-invite notices.
	TopicInviteAccepted = "review.invite.accepted"
	// TopicInviteDeclined is the template id for declined-invite notices.
	TopicInviteDeclined = "review.invite.declined"
	// TopicCommentPosted is the template id for new-comment notices.
	TopicCommentPosted = "review.comment.posted"

	defaultGenericTitle        = "Notification"
	defaultGenericBody         = "You have a new notification."
	defaultGenericEmailSubject = "preprint.review notification"
	defaultUnknownRole         = "participant"
)

// Channel identifies where one notification artifact is rendered.
type Channel string

const (
	// ChannelInApp renders copy for the web inbox/detail view.
	ChannelInApp Channel = "in_app"
	// ChannelEmail renders copy for email delivery.
	ChannelEmail Channel = "email"
)

// Input is one channel render request for a stored notification artifact.
type Input struct {
	Topic       string
	PayloadJSON string
	Channel     Channel
}

// Output is localized, channel-aware copy derived from one notification artifact.
type Output struct {
	Title        string
	BodyText     string
	EmailSubject string
}

// Localizer is the minimal message-printer contract required by the renderer.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

type reviewPayload struct {
	ReviewID  string `json:"review_id"`
	Role      string `json:"role"`
	CommentID string `json:"comment_id"`
}

// Render returns localized copy for one notification artifact.
func Render(loc Localizer, input Input) Output {
	switch normalizeToken(input.Topic) {
	case TopicInviteCreated:
		return renderInviteCreated(loc, input)
	case TopicInviteAccepted:
		return renderSimpleTopic(loc, "notification.invite_accepted")
	case TopicInviteDeclined:
		return renderSimpleTopic(loc, "notification.invite_declined")
	case TopicReviewPublished:
		return renderSimpleTopic(loc, "notification.review_published")
	case TopicCommentPosted:
		return renderSimpleTopic(loc, "notification.comment_posted")
	default:
		return genericOutput(loc)
	}
}

func renderInviteCreated(loc Localizer, input Input) Output {
	payload := reviewPayload{}
	if raw := strings.TrimSpace(input.PayloadJSON); raw != "" {
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return genericOutput(loc)
		}
	}

	role := localizedRole(loc, payload.Role)
	title := localize(loc, "notification.invite_created.title")
	subject := localize(loc, "notification.invite_created.email_subject")
	if subject == "notification.invite_created.email_subject" {
		subject = title
	}

	bodyKey := "notification.invite_created.body"
	if input.Channel == ChannelEmail {
		bodyKey = "notification.invite_created.email_body"
	}
	body := localize(loc, bodyKey, role)

	if title == "notification.invite_created.title" || body == bodyKey {
		return genericOutput(loc)
	}

	return Output{
		Title:        title,
		BodyText:     body,
		EmailSubject: subject,
	}
}

func renderSimpleTopic(loc Localizer, prefix string) Output {
	title := localize(loc, prefix+".title")
	body := localize(loc, prefix+".body")
	if title == prefix+".title" || body == prefix+".body" {
		return genericOutput(loc)
	}
	subject := localize(loc, prefix+".email_subject")
	if subject == prefix+".email_subject" {
		subject = title
	}
	return Output{
		Title:        title,
		BodyText:     body,
		EmailSubject: subject,
	}
}

func genericOutput(loc Localizer) Output {
	title := localizeWithFallback(loc, "notification.generic.title", defaultGenericTitle)
	body := localizeWithFallback(loc, "notification.generic.body", defaultGenericBody)
	subject := localizeWithFallback(loc, "notification.generic.email_subject", defaultGenericEmailSubject)
	if subject == "notification.generic.email_subject" {
		subject = title
	}

	return Output{
		Title:        title,
		BodyText:     body,
		EmailSubject: subject,
	}
}

func localizedRole(loc Localizer, raw string) string {
	key := "notification.role.unknown"
	fallback := defaultUnknownRole
	switch normalizeToken(raw) {
	case "author":
		key = "notification.role.author"
		fallback = "author"
	case "mentor":
		key = "notification.role.mentor"
		fallback = "mentor"
	}

	return localizeWithFallback(loc, key, fallback)
}

func localize(loc Localizer, key message.Reference, args ...any) string {
	if loc == nil {
		if asString, ok := key.(string); ok {
			return asString
		}
		return ""
	}
	return loc.Sprintf(key, args...)
}

func localizeWithFallback(loc Localizer, key string, fallback string) string {
	value := strings.TrimSpace(localize(loc, key))
	if value == "" || value == key {
		return fallback
	}
	return value
}

func normalizeToken(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, "notification.generic.title", defaultGenericTitle)
	message.SetString(lang, "notification.generic.body", defaultGenericBody)
	message.SetString(lang, "notification.generic.email_subject", defaultGenericEmailSubject)
	message.SetString(lang, "notification.role.author", "author")
	message.SetString(lang, "notification.role.mentor", "mentor")
	message.SetString(lang, "notification.role.unknown", defaultUnknownRole)
	message.SetString(lang, "notification.invite_created.title", "You were invited to a review")
	message.SetString(lang, "notification.invite_created.body", "You were invited to join a review as %s.")
	message.SetString(lang, "notification.invite_created.email_subject", "Review invitation on preprint.review")
	message.SetString(lang, "notification.invite_created.email_body", "You were invited to join a review as %s. Open your inbox to respond.")
	message.SetString(lang, "notification.invite_accepted.title", "Invitation accepted")
	message.SetString(lang, "notification.invite_accepted.body", "A persona accepted your review invitation.")
	message.SetString(lang, "notification.invite_declined.title", "Invitation declined")
	message.SetString(lang, "notification.invite_declined.body", "A persona declined your review invitation.")
	message.SetString(lang, "notification.review_published.title", "Review published")
	message.SetString(lang, "notification.review_published.body", "A review you participated in is now public.")
	message.SetString(lang, "notification.comment_posted.title", "New comment")
	message.SetString(lang, "notification.comment_posted.body", "A new comment was posted on a review you follow.")
}

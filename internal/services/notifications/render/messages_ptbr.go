package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.MustParse("pt-BR")

	message.SetString(lang, "notification.generic.title", "Notificação")
	message.SetString(lang, "notification.generic.body", "Você tem uma nova notificação.")
	message.SetString(lang, "notification.generic.email_subject", "Notificação do preprint.review")
	message.SetString(lang, "notification.role.author", "autor")
	message.SetString(lang, "notification.role.mentor", "mentor")
	message.SetString(lang, "notification.role.unknown", "participante")
	message.SetString(lang, "notification.invite_created.title", "Você foi convidado para uma revisão")
	message.SetString(lang, "notification.invite_created.body", "Você foi convidado para participar de uma revisão como %s.")
	message.SetString(lang, "notification.invite_created.email_subject", "Convite de revisão no preprint.review")
	message.SetString(lang, "notification.invite_created.email_body", "Você foi convidado para participar de uma revisão como %s. Abra sua caixa de entrada para responder.")
	message.SetString(lang, "notification.invite_accepted.title", "Convite aceito")
	message.SetString(lang, "notification.invite_accepted.body", "Uma persona aceitou seu convite de revisão.")
	message.SetString(lang, "notification.invite_declined.title", "Convite recusado")
	message.SetString(lang, "notification.invite_declined.body", "Uma persona recusou seu convite de revisão.")
	message.SetString(lang, "notification.review_published.title", "Revisão publicada")
	message.SetString(lang, "notification.review_published.body", "Uma revisão da qual você participou agora é pública.")
	message.SetString(lang, "notification.comment_posted.title", "Novo comentário")
	message.SetString(lang, "notification.comment_posted.body", "Um novo comentário foi publicado em uma revisão que você acompanha.")
}

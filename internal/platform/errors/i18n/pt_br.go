package i18n

var ptBRCatalog = NewCatalog("pt-BR", map[Code]string{
	CodeReviewEmptyReviewID:    "O ID da revisão é obrigatório",
	CodeReviewEmptyPreprintID:  "O ID do preprint é obrigatório para uma revisão",
	CodeReviewEmptyPersonaID:   "O ID da persona é obrigatório",
	CodeReviewEmptyContents:    "O conteúdo do rascunho não pode ser vazio",
	CodeReviewNotAuthor:        "Apenas um autor confirmado pode executar esta ação",
	CodeReviewNoDrafts:         "Uma revisão precisa de ao menos um rascunho antes da publicação",
	CodeReviewAlreadyPublished: "Esta revisão já foi publicada",
	CodeReviewNotPublished:     "Esta revisão ainda não foi publicada",
	CodeReviewEmptyDOI:         "O DOI não pode ser vazio",
	CodeReviewDOIConflict:      "O DOI {{.DOI}} já está atribuído a outra revisão",

	CodeInviteInvalidRole:      "Papel de convite inválido",
	CodeInviteAlreadyInvited:   "Esta persona já possui um convite pendente de {{.Role}}",
	CodeInviteAlreadyConfirmed: "Esta persona já é {{.Role}} confirmado",
	CodeInviteNotInvited:       "Esta persona não possui convite pendente de {{.Role}}",
	CodeInviteGrantInvalid:     "O link de convite é inválido",
	CodeInviteGrantExpired:     "O link de convite expirou",
	CodeInviteGrantMismatch:    "O link de convite não corresponde a este convite",

	CodeCommentEmptyContents: "O conteúdo do comentário não pode ser vazio",
	CodeCommentNotPublished:  "Comentários só podem ser feitos em revisões publicadas",

	CodeModerationNotAllowed: "Capacidade de moderação é necessária para esta ação",

	CodePreprintEmptyHandle:    "O identificador do preprint (DOI ou arXiv) é obrigatório",
	CodePreprintEmptyTitle:     "O título do preprint é obrigatório",
	CodePreprintHandleConflict: "O preprint {{.Handle}} já existe",
	CodePreprintEmptyTag:       "O nome da tag é obrigatório",

	CodeRapidReviewInvalidAnswer:   "A resposta deve ser sim, não, N/A ou incerto",
	CodeRapidReviewUnknownQuestion: "Pergunta de revisão rápida desconhecida: {{.Question}}",
	CodeRapidReviewMissingAnswer:   "Todas as perguntas da revisão rápida exigem resposta",

	CodeRequestEmptyPreprintID: "O ID do preprint é obrigatório para solicitar revisão",
	CodeRequestEmptyPersonaID:  "O ID da persona é obrigatório para solicitar revisão",

	CodeIdentityEmptyOrcid:    "O ORCID é obrigatório",
	CodeIdentityInvalidOrcid:  "O ORCID iD não é válido",
	CodeIdentityOrcidConflict: "Já existe uma identidade com este ORCID",
	CodePersonaEmptyName:      "O nome de exibição da persona não pode ser vazio",
	CodePersonaNameConflict:   "O nome de persona {{.Name}} já está em uso",
	CodePersonaLocked:         "Esta persona está bloqueada e não pode agir",

	CodeCommunityEmptySlug:    "O slug da comunidade é obrigatório",
	CodeCommunityEmptyName:    "O nome da comunidade é obrigatório",
	CodeCommunitySlugConflict: "A comunidade {{.Slug}} já existe",
	CodeCommunityInvalidRole:  "Papel de membro de comunidade inválido",
	CodeCommunityLastOwner:    "Uma comunidade precisa manter pelo menos um proprietário",

	CodeAuthUnknownStrategy: "Estratégia de autenticação desconhecida: {{.Strategy}}",
	CodeAuthTokenInvalid:    "O token de sessão é inválido",
	CodeAuthTokenExpired:    "O token de sessão expirou",

	CodeNotFound: "O recurso solicitado não foi encontrado",
	CodeConflict: "A solicitação conflita com dados existentes",
})

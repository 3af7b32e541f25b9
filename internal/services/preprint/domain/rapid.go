package domain

import (
	"strings"
	"time"
)

// Answer is one response value from the closed rapid review answer set.
type Answer string

const (
	AnswerYes    Answer = "yes"
	AnswerNo     Answer = "no"
	AnswerNA     Answer = "na"
	AnswerUnsure Answer = "unsure"
)

// ParseAnswer normalizes and validates an answer value.
func ParseAnswer(value string) (Answer, error) {
	switch Answer(strings.ToLower(strings.TrimSpace(value))) {
	case AnswerYes:
		return AnswerYes, nil
	case AnswerNo:
		return AnswerNo, nil
	case AnswerNA:
		return AnswerNA, nil
	case AnswerUnsure:
		return AnswerUnsure, nil
	default:
		return "", ErrInvalidAnswer
	}
}

// Question is one prompt from the closed rapid review question set.
type Question string

const (
	QuestionNovel         Question = "novel"
	QuestionFutureWork    Question = "future_work"
	QuestionReproducible  Question = "reproducible"
	QuestionMethods       Question = "methods"
	QuestionCoherent      Question = "coherent"
	QuestionLimitations   Question = "limitations"
	QuestionEthics        Question = "ethics"
	QuestionNewData       Question = "new_data"
	QuestionAvailableData Question = "available_data"
	QuestionAvailableCode Question = "available_code"
	QuestionRecommend     Question = "recommend"
	QuestionPeerReview    Question = "peer_review"
)

// Questions lists the closed question set in presentation order.
func Questions() []Question {
	return []Question{
		QuestionNovel,
		QuestionFutureWork,
		QuestionReproducible,
		QuestionMethods,
		QuestionCoherent,
		QuestionLimitations,
		QuestionEthics,
		QuestionNewData,
		QuestionAvailableData,
		QuestionAvailableCode,
		QuestionRecommend,
		QuestionPeerReview,
	}
}

// RapidReview is a structured snap judgment of a preprint. Rapid reviews are
// published at creation and immutable afterwards except for the moderation
// flag; a correction is a new rapid review plus a flag on the old one.
type RapidReview struct {
	ID              string
	PreprintID      string
	AuthorPersonaID string
	Answers         map[Question]Answer
	IsPublished     bool
	IsFlagged       bool
	CreatedAt       time.Time
}

// CreateRapidReviewInput carries raw answers keyed by question value.
type CreateRapidReviewInput struct {
	PreprintID      string
	AuthorPersonaID string
	Answers         map[string]string
}

// SetRapidReviewFlagInput toggles the moderation flag on a rapid review.
type SetRapidReviewFlagInput struct {
	PreprintID    string
	RapidReviewID string
	Flagged       bool
	Capability    Capability
}

// parseAnswers validates the raw answer map against the closed question and
// answer sets. Every question must be answered exactly once.
func parseAnswers(raw map[string]string) (map[Question]Answer, error) {
	known := make(map[Question]bool, len(Questions()))
	for _, question := range Questions() {
		known[question] = true
	}
	answers := make(map[Question]Answer, len(raw))
	for key, value := range raw {
		question := Question(strings.ToLower(strings.TrimSpace(key)))
		if !known[question] {
			return nil, ErrUnknownQuestion
		}
		answer, err := ParseAnswer(value)
		if err != nil {
			return nil, err
		}
		answers[question] = answer
	}
	for _, question := range Questions() {
		if _, ok := answers[question]; !ok {
			return nil, ErrMissingAnswer
		}
	}
	return answers, nil
}

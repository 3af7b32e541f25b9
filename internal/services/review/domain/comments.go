package domain

import (
	"context"
	"strings"
)

// PostComment appends one comment to a published review. Any persona may
// comment; the only precondition is that the review is published.
func (s *Service) PostComment(ctx context.Context, input PostCommentInput) (Comment, error) {
	if s == nil || s.store == nil {
		return Comment{}, ErrStoreNotConfigured
	}
	reviewID := strings.TrimSpace(input.ReviewID)
	if reviewID == "" {
		return Comment{}, ErrEmptyReviewID
	}
	personaID := strings.TrimSpace(input.AuthorPersonaID)
	if personaID == "" {
		return Comment{}, ErrEmptyPersonaID
	}
	contents := input.Contents
	if strings.TrimSpace(contents) == "" {
		return Comment{}, ErrCommentEmptyContents
	}

	unlock := s.locks.lock(reviewID)
	defer unlock()

	review, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return Comment{}, err
	}
	if !review.IsPublished {
		return Comment{}, ErrCommentNotPublished
	}

	commentID, err := s.newID()
	if err != nil {
		return Comment{}, err
	}
	now := s.nowUTC()
	comment := Comment{
		ID:              commentID,
		ReviewID:        reviewID,
		AuthorPersonaID: personaID,
		Contents:        contents,
		IsPublished:     true,
		CreatedAt:       now,
	}
	if err := s.store.PutComment(ctx, comment); err != nil {
		return Comment{}, err
	}

	s.emit(ctx, Event{
		Type:       EventCommentPosted,
		ReviewID:   reviewID,
		PreprintID: review.PreprintID,
		PersonaID:  personaID,
		CommentID:  commentID,
		OccurredAt: now,
	})
	return comment, nil
}

// ListComments lists the comment thread of one review in creation order.
func (s *Service) ListComments(ctx context.Context, reviewID string) ([]Comment, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	reviewID = strings.TrimSpace(reviewID)
	if reviewID == "" {
		return nil, ErrEmptyReviewID
	}
	if _, err := s.store.GetReview(ctx, reviewID); err != nil {
		return nil, err
	}
	return s.store.ListComments(ctx, reviewID)
}

// SetCommentFlag toggles the moderation flag on a comment. Requires the
// moderation capability and works regardless of review publication state.
func (s *Service) SetCommentFlag(ctx context.Context, input SetCommentFlagInput) (Comment, error) {
	if s == nil || s.store == nil {
		return Comment{}, ErrStoreNotConfigured
	}
	reviewID := strings.TrimSpace(input.ReviewID)
	if reviewID == "" {
		return Comment{}, ErrEmptyReviewID
	}
	commentID := strings.TrimSpace(input.CommentID)
	if commentID == "" {
		return Comment{}, ErrNotFound
	}
	if !input.Capability.Moderation {
		return Comment{}, ErrModerationNotAllowed
	}

	unlock := s.locks.lock(reviewID)
	defer unlock()

	comment, err := s.store.GetComment(ctx, reviewID, commentID)
	if err != nil {
		return Comment{}, err
	}
	if comment.IsFlagged == input.Flagged {
		return comment, nil
	}
	comment.IsFlagged = input.Flagged
	if err := s.store.PutComment(ctx, comment); err != nil {
		return Comment{}, err
	}
	return comment, nil
}

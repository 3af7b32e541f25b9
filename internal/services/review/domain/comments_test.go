package domain

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPostComment_RequiresPublishedReview(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 12, 11, 0, 0, 0, time.UTC)
	store := newFakeStore()
	svc := NewService(store, nil, fixedClock(now), sequentialIDGenerator("rev-1", "draft-1", "comment-1"))

	review, err := svc.CreateReview(context.Background(), CreateReviewInput{PreprintID: "preprint-1"})
	if err != nil {
		t.Fatalf("create review: %v", err)
	}

	_, err = svc.PostComment(context.Background(), PostCommentInput{
		ReviewID:        review.ID,
		AuthorPersonaID: "persona-3",
		Contents:        "too early",
	})
	if !errors.Is(err, ErrCommentNotPublished) {
		t.Fatalf("expected ErrCommentNotPublished before publish, got %v", err)
	}
}

func TestPostComment_OpenToAnyPersonaAfterPublish(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 12, 11, 10, 0, 0, time.UTC)
	store := newFakeStore()
	sink := &recordingSink{}
	svc := NewService(store, sink, fixedClock(now), sequentialIDGenerator("rev-1", "draft-1", "comment-1", "comment-2"))

	review := newPublishedReview(t, svc, "preprint-1", "persona-1")

	svc.clock = fixedClock(now.Add(1 * time.Minute))
	first, err := svc.PostComment(context.Background(), PostCommentInput{
		ReviewID:        review.ID,
		AuthorPersonaID: "persona-3",
		Contents:        "great methods section",
	})
	if err != nil {
		t.Fatalf("post first comment: %v", err)
	}
	if !first.IsPublished {
		t.Fatal("expected comment to be published at creation")
	}

	svc.clock = fixedClock(now.Add(2 * time.Minute))
	if _, err := svc.PostComment(context.Background(), PostCommentInput{
		ReviewID:        review.ID,
		AuthorPersonaID: "persona-4",
		Contents:        "figure 2 seems off",
	}); err != nil {
		t.Fatalf("post second comment: %v", err)
	}

	comments, err := svc.ListComments(context.Background(), review.ID)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("comments = %d, want 2", len(comments))
	}
	if comments[0].ID != first.ID {
		t.Fatalf("expected creation-time ordering, got %+v", comments)
	}
	if events := sink.byType(EventCommentPosted); len(events) != 2 {
		t.Fatalf("CommentPosted events = %d, want 2", len(events))
	}
}

func TestPostComment_ValidatesContents(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 12, 11, 20, 0, 0, time.UTC)
	store := newFakeStore()
	svc := NewService(store, nil, fixedClock(now), sequentialIDGenerator("rev-1", "draft-1"))

	review := newPublishedReview(t, svc, "preprint-1", "persona-1")

	if _, err := svc.PostComment(context.Background(), PostCommentInput{
		ReviewID:        review.ID,
		AuthorPersonaID: "persona-3",
		Contents:        "   ",
	}); !errors.Is(err, ErrCommentEmptyContents) {
		t.Fatalf("expected ErrCommentEmptyContents, got %v", err)
	}
	if _, err := svc.PostComment(context.Background(), PostCommentInput{
		ReviewID:        review.ID,
		Contents:        "anonymous?",
	}); !errors.Is(err, ErrEmptyPersonaID) {
		t.Fatalf("expected ErrEmptyPersonaID, got %v", err)
	}
}

func TestSetCommentFlag_RequiresModerationCapability(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 12, 11, 30, 0, 0, time.UTC)
	store := newFakeStore()
	svc := NewService(store, nil, fixedClock(now), sequentialIDGenerator("rev-1", "draft-1", "comment-1"))

	review := newPublishedReview(t, svc, "preprint-1", "persona-1")
	comment, err := svc.PostComment(context.Background(), PostCommentInput{
		ReviewID:        review.ID,
		AuthorPersonaID: "persona-3",
		Contents:        "spam link",
	})
	if err != nil {
		t.Fatalf("post comment: %v", err)
	}

	_, err = svc.SetCommentFlag(context.Background(), SetCommentFlagInput{
		ReviewID:   review.ID,
		CommentID:  comment.ID,
		Flagged:    true,
		Capability: Capability{PersonaID: "persona-9"},
	})
	if !errors.Is(err, ErrModerationNotAllowed) {
		t.Fatalf("expected ErrModerationNotAllowed, got %v", err)
	}

	flagged, err := svc.SetCommentFlag(context.Background(), SetCommentFlagInput{
		ReviewID:   review.ID,
		CommentID:  comment.ID,
		Flagged:    true,
		Capability: Capability{PersonaID: "persona-9", Moderation: true},
	})
	if err != nil {
		t.Fatalf("set comment flag: %v", err)
	}
	if !flagged.IsFlagged {
		t.Fatal("expected comment to be flagged")
	}

	cleared, err := svc.SetCommentFlag(context.Background(), SetCommentFlagInput{
		ReviewID:   review.ID,
		CommentID:  comment.ID,
		Flagged:    false,
		Capability: Capability{PersonaID: "persona-9", Moderation: true},
	})
	if err != nil {
		t.Fatalf("clear comment flag: %v", err)
	}
	if cleared.IsFlagged {
		t.Fatal("expected comment flag to be cleared")
	}
}

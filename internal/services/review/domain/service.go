package domain

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/openpreview/preprint.review/internal/platform/id"
)

// Store is the domain persistence boundary for review lifecycle behavior.
type Store interface {
	PutReview(ctx context.Context, review Review) error
	GetReview(ctx context.Context, reviewID string) (Review, error)
	ListReviewsByPreprint(ctx context.Context, preprintID string) ([]Review, error)
	SetReviewDOI(ctx context.Context, reviewID string, doi string, updatedAt time.Time) error

	PutDraft(ctx context.Context, draft Draft) error
	PutDraftWithAuthor(ctx context.Context, draft Draft, author RosterEntry) error
	LatestDraft(ctx context.Context, reviewID string) (Draft, error)
	CountDrafts(ctx context.Context, reviewID string) (int, error)

	ListRoster(ctx context.Context, reviewID string) ([]RosterEntry, error)
	PutRosterEntry(ctx context.Context, entry RosterEntry) error
	ConfirmRosterEntry(ctx context.Context, reviewID string, personaID string, role Role, confirmedAt time.Time) error
	DeleteRosterEntry(ctx context.Context, reviewID string, personaID string, role Role) error
	ListPendingInvitesByPersona(ctx context.Context, personaID string) ([]RosterEntry, error)

	PutComment(ctx context.Context, comment Comment) error
	GetComment(ctx context.Context, reviewID string, commentID string) (Comment, error)
	ListComments(ctx context.Context, reviewID string) ([]Comment, error)
}

// Service orchestrates review lifecycle behavior. All mutations of one review
// are serialized through a per-review lock so publish, DOI assignment, and
// roster moves observe a consistent snapshot.
type Service struct {
	store  Store
	sink   Sink
	clock  func() time.Time
	newID  func() (string, error)
	grants *InviteGrantConfig
	locks  *keyedMutex
}

// NewService constructs review domain use-cases.
func NewService(store Store, sink Sink, clock func() time.Time, newID func() (string, error)) *Service {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &Service{
		store: store,
		sink:  sink,
		clock: clock,
		newID: newID,
		locks: newKeyedMutex(),
	}
}

// WithInviteGrants enables signed invite grants. Invites mint a grant into
// their event payload and AcceptInviteByGrant verifies against the same
// configuration.
func (s *Service) WithInviteGrants(cfg InviteGrantConfig) *Service {
	if cfg.Now == nil {
		cfg.Now = s.clock
	}
	s.grants = &cfg
	return s
}

// CreateReview starts an unpublished review shell for a preprint.
func (s *Service) CreateReview(ctx context.Context, input CreateReviewInput) (Review, error) {
	if s == nil || s.store == nil {
		return Review{}, ErrStoreNotConfigured
	}
	preprintID := strings.TrimSpace(input.PreprintID)
	if preprintID == "" {
		return Review{}, ErrEmptyPreprintID
	}
	reviewID, err := s.newID()
	if err != nil {
		return Review{}, err
	}
	now := s.nowUTC()
	review := Review{
		ID:         reviewID,
		PreprintID: preprintID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.PutReview(ctx, review); err != nil {
		return Review{}, err
	}
	return review, nil
}

// GetReview loads one review by ID.
func (s *Service) GetReview(ctx context.Context, reviewID string) (Review, error) {
	if s == nil || s.store == nil {
		return Review{}, ErrStoreNotConfigured
	}
	reviewID = strings.TrimSpace(reviewID)
	if reviewID == "" {
		return Review{}, ErrEmptyReviewID
	}
	return s.store.GetReview(ctx, reviewID)
}

// ListReviewsByPreprint lists all reviews of one preprint, oldest first.
func (s *Service) ListReviewsByPreprint(ctx context.Context, preprintID string) ([]Review, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	preprintID = strings.TrimSpace(preprintID)
	if preprintID == "" {
		return nil, ErrEmptyPreprintID
	}
	return s.store.ListReviewsByPreprint(ctx, preprintID)
}

// CreateDraft appends one immutable draft snapshot. The first draft of a
// review confirms its creator as the first author; afterwards only confirmed
// authors may add drafts.
func (s *Service) CreateDraft(ctx context.Context, input CreateDraftInput) (Draft, error) {
	if s == nil || s.store == nil {
		return Draft{}, ErrStoreNotConfigured
	}
	reviewID := strings.TrimSpace(input.ReviewID)
	if reviewID == "" {
		return Draft{}, ErrEmptyReviewID
	}
	personaID := strings.TrimSpace(input.AuthorPersonaID)
	if personaID == "" {
		return Draft{}, ErrEmptyPersonaID
	}
	contents := input.Contents
	if strings.TrimSpace(contents) == "" {
		return Draft{}, ErrEmptyContents
	}

	unlock := s.locks.lock(reviewID)
	defer unlock()

	if _, err := s.store.GetReview(ctx, reviewID); err != nil {
		return Draft{}, err
	}
	roster, err := s.loadRoster(ctx, reviewID)
	if err != nil {
		return Draft{}, err
	}

	draftID, err := s.newID()
	if err != nil {
		return Draft{}, err
	}
	now := s.nowUTC()
	draft := Draft{
		ID:        draftID,
		ReviewID:  reviewID,
		Contents:  contents,
		CreatedAt: now,
	}

	if !roster.HasConfirmed(RoleAuthor) {
		author, bootstrapErr := roster.Bootstrap(personaID, RoleAuthor, now)
		if bootstrapErr != nil {
			// A pending author invite for the creator is promoted by the
			// bootstrap write below instead of blocking the first draft.
			if !errors.Is(bootstrapErr, ErrAlreadyInvited) {
				return Draft{}, bootstrapErr
			}
			author = RosterEntry{
				ReviewID:  reviewID,
				PersonaID: personaID,
				Role:      RoleAuthor,
				Status:    RosterConfirmed,
				CreatedAt: now,
				UpdatedAt: now,
			}
		}
		if err := s.store.PutDraftWithAuthor(ctx, draft, author); err != nil {
			return Draft{}, err
		}
		return draft, nil
	}

	if !roster.IsConfirmed(personaID, RoleAuthor) {
		return Draft{}, ErrNotAuthor
	}
	if err := s.store.PutDraft(ctx, draft); err != nil {
		return Draft{}, err
	}
	return draft, nil
}

// CurrentContent returns the latest draft of a review.
func (s *Service) CurrentContent(ctx context.Context, reviewID string) (Draft, error) {
	if s == nil || s.store == nil {
		return Draft{}, ErrStoreNotConfigured
	}
	reviewID = strings.TrimSpace(reviewID)
	if reviewID == "" {
		return Draft{}, ErrEmptyReviewID
	}
	if _, err := s.store.GetReview(ctx, reviewID); err != nil {
		return Draft{}, err
	}
	draft, err := s.store.LatestDraft(ctx, reviewID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Draft{}, ErrNoDrafts
		}
		return Draft{}, err
	}
	return draft, nil
}

// Publish transitions a review to its published state. Publication is
// monotonic: a second publish returns ErrAlreadyPublished and emits no
// further event, so callers can treat the repeat as a no-op.
func (s *Service) Publish(ctx context.Context, input PublishInput) (Review, error) {
	if s == nil || s.store == nil {
		return Review{}, ErrStoreNotConfigured
	}
	reviewID := strings.TrimSpace(input.ReviewID)
	if reviewID == "" {
		return Review{}, ErrEmptyReviewID
	}
	personaID := strings.TrimSpace(input.ActingPersonaID)
	if personaID == "" {
		return Review{}, ErrEmptyPersonaID
	}

	unlock := s.locks.lock(reviewID)
	defer unlock()

	review, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return Review{}, err
	}
	if review.IsPublished {
		log.Printf("review %s publish repeated by persona %s", reviewID, personaID)
		return review, ErrAlreadyPublished
	}

	roster, err := s.loadRoster(ctx, reviewID)
	if err != nil {
		return Review{}, err
	}
	if !roster.IsConfirmed(personaID, RoleAuthor) {
		return Review{}, ErrNotAuthor
	}
	draftCount, err := s.store.CountDrafts(ctx, reviewID)
	if err != nil {
		return Review{}, err
	}
	if draftCount == 0 {
		return Review{}, ErrNoDrafts
	}

	now := s.nowUTC()
	review.IsPublished = true
	review.PublishedAt = &now
	review.UpdatedAt = now
	if err := s.store.PutReview(ctx, review); err != nil {
		return Review{}, err
	}

	s.emit(ctx, Event{
		Type:       EventReviewPublished,
		ReviewID:   review.ID,
		PreprintID: review.PreprintID,
		PersonaID:  personaID,
		OccurredAt: now,
	})
	return review, nil
}

// AssignDOI assigns a persistent identifier to a published review. DOIs are
// unique across reviews; assigning the same DOI again is a no-op, assigning
// a different one to an already-identified review is a conflict.
func (s *Service) AssignDOI(ctx context.Context, input AssignDOIInput) (Review, error) {
	if s == nil || s.store == nil {
		return Review{}, ErrStoreNotConfigured
	}
	reviewID := strings.TrimSpace(input.ReviewID)
	if reviewID == "" {
		return Review{}, ErrEmptyReviewID
	}
	doi := strings.TrimSpace(input.DOI)
	if doi == "" {
		return Review{}, ErrEmptyDOI
	}

	unlock := s.locks.lock(reviewID)
	defer unlock()

	review, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return Review{}, err
	}
	if !review.IsPublished {
		return Review{}, ErrNotPublished
	}
	if review.DOI == doi {
		return review, nil
	}
	if review.DOI != "" {
		return Review{}, ErrDOIConflict
	}

	now := s.nowUTC()
	if err := s.store.SetReviewDOI(ctx, reviewID, doi, now); err != nil {
		return Review{}, err
	}
	review.DOI = doi
	review.UpdatedAt = now
	return review, nil
}

// SetReviewFlag toggles the moderation flag on a review. Flagging is
// orthogonal to publication state and requires the moderation capability.
func (s *Service) SetReviewFlag(ctx context.Context, input SetReviewFlagInput) (Review, error) {
	if s == nil || s.store == nil {
		return Review{}, ErrStoreNotConfigured
	}
	reviewID := strings.TrimSpace(input.ReviewID)
	if reviewID == "" {
		return Review{}, ErrEmptyReviewID
	}
	if !input.Capability.Moderation {
		return Review{}, ErrModerationNotAllowed
	}

	unlock := s.locks.lock(reviewID)
	defer unlock()

	review, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return Review{}, err
	}
	if review.IsFlagged == input.Flagged {
		return review, nil
	}
	review.IsFlagged = input.Flagged
	review.UpdatedAt = s.nowUTC()
	if err := s.store.PutReview(ctx, review); err != nil {
		return Review{}, err
	}
	return review, nil
}

func (s *Service) loadRoster(ctx context.Context, reviewID string) (Roster, error) {
	entries, err := s.store.ListRoster(ctx, reviewID)
	if err != nil {
		return Roster{}, err
	}
	return NewRoster(reviewID, entries), nil
}

func (s *Service) emit(ctx context.Context, event Event) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Publish(ctx, event); err != nil {
		log.Printf("publish review event %s for review %s: %v", event.Type, event.ReviewID, err)
	}
}

func (s *Service) nowUTC() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}

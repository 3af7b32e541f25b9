package domain

import (
	"context"
	"strings"
	"time"

	"github.com/openpreview/preprint.review/internal/platform/id"
)

// Store is the domain persistence boundary for preprint records.
type Store interface {
	PutPreprint(ctx context.Context, preprint Preprint) error
	GetPreprint(ctx context.Context, preprintID string) (Preprint, error)
	GetPreprintByHandle(ctx context.Context, handle string) (Preprint, error)

	PutRequest(ctx context.Context, request Request) error
	ListRequestsByPreprint(ctx context.Context, preprintID string) ([]Request, error)
	ListRequestsByPersona(ctx context.Context, personaID string) ([]Request, error)

	PutRapidReview(ctx context.Context, rapid RapidReview) error
	GetRapidReview(ctx context.Context, preprintID string, rapidReviewID string) (RapidReview, error)
	ListRapidReviewsByPreprint(ctx context.Context, preprintID string) ([]RapidReview, error)

	PutTag(ctx context.Context, tag Tag) error
	ListTagsByPreprint(ctx context.Context, preprintID string) ([]Tag, error)
}

// Service orchestrates preprint registration, review requests, rapid
// reviews, and tags.
type Service struct {
	store Store
	clock func() time.Time
	newID func() (string, error)
}

// NewService constructs preprint domain use-cases.
func NewService(store Store, clock func() time.Time, newID func() (string, error)) *Service {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &Service{
		store: store,
		clock: clock,
		newID: newID,
	}
}

// CreatePreprint registers a preprint under its handle. Handles are
// normalized to lowercase and unique across the platform.
func (s *Service) CreatePreprint(ctx context.Context, input CreatePreprintInput) (Preprint, error) {
	if s == nil || s.store == nil {
		return Preprint{}, ErrStoreNotConfigured
	}
	handle := NormalizeHandle(input.Handle)
	if handle == "" {
		return Preprint{}, ErrEmptyHandle
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return Preprint{}, ErrEmptyTitle
	}

	preprintID, err := s.newID()
	if err != nil {
		return Preprint{}, err
	}
	now := s.nowUTC()
	preprint := Preprint{
		ID:          preprintID,
		Handle:      handle,
		Title:       title,
		URL:         strings.TrimSpace(input.URL),
		Authors:     strings.TrimSpace(input.Authors),
		Server:      strings.TrimSpace(input.Server),
		License:     strings.TrimSpace(input.License),
		PublishedOn: input.PublishedOn,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.PutPreprint(ctx, preprint); err != nil {
		return Preprint{}, err
	}
	return preprint, nil
}

// GetPreprint loads one preprint by ID.
func (s *Service) GetPreprint(ctx context.Context, preprintID string) (Preprint, error) {
	if s == nil || s.store == nil {
		return Preprint{}, ErrStoreNotConfigured
	}
	preprintID = strings.TrimSpace(preprintID)
	if preprintID == "" {
		return Preprint{}, ErrEmptyPreprintID
	}
	return s.store.GetPreprint(ctx, preprintID)
}

// GetPreprintByHandle loads one preprint by its normalized handle.
func (s *Service) GetPreprintByHandle(ctx context.Context, handle string) (Preprint, error) {
	if s == nil || s.store == nil {
		return Preprint{}, ErrStoreNotConfigured
	}
	handle = NormalizeHandle(handle)
	if handle == "" {
		return Preprint{}, ErrEmptyHandle
	}
	return s.store.GetPreprintByHandle(ctx, handle)
}

// CreateRequest records a standing ask for reviews of a preprint. Repeat
// requests by the same persona are allowed and recorded separately.
func (s *Service) CreateRequest(ctx context.Context, input CreateRequestInput) (Request, error) {
	if s == nil || s.store == nil {
		return Request{}, ErrStoreNotConfigured
	}
	preprintID := strings.TrimSpace(input.PreprintID)
	if preprintID == "" {
		return Request{}, ErrEmptyPreprintID
	}
	personaID := strings.TrimSpace(input.AuthorPersonaID)
	if personaID == "" {
		return Request{}, ErrEmptyPersonaID
	}
	if _, err := s.store.GetPreprint(ctx, preprintID); err != nil {
		return Request{}, err
	}

	requestID, err := s.newID()
	if err != nil {
		return Request{}, err
	}
	request := Request{
		ID:              requestID,
		PreprintID:      preprintID,
		AuthorPersonaID: personaID,
		CreatedAt:       s.nowUTC(),
	}
	if err := s.store.PutRequest(ctx, request); err != nil {
		return Request{}, err
	}
	return request, nil
}

// ListRequestsByPreprint lists review requests for one preprint, oldest first.
func (s *Service) ListRequestsByPreprint(ctx context.Context, preprintID string) ([]Request, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	preprintID = strings.TrimSpace(preprintID)
	if preprintID == "" {
		return nil, ErrEmptyPreprintID
	}
	return s.store.ListRequestsByPreprint(ctx, preprintID)
}

// ListRequestsByPersona lists review requests made by one persona.
func (s *Service) ListRequestsByPersona(ctx context.Context, personaID string) ([]Request, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	personaID = strings.TrimSpace(personaID)
	if personaID == "" {
		return nil, ErrEmptyPersonaID
	}
	return s.store.ListRequestsByPersona(ctx, personaID)
}

// CreateRapidReview records a structured snap judgment. The rapid review is
// published at creation; its answers never change afterwards.
func (s *Service) CreateRapidReview(ctx context.Context, input CreateRapidReviewInput) (RapidReview, error) {
	if s == nil || s.store == nil {
		return RapidReview{}, ErrStoreNotConfigured
	}
	preprintID := strings.TrimSpace(input.PreprintID)
	if preprintID == "" {
		return RapidReview{}, ErrEmptyPreprintID
	}
	personaID := strings.TrimSpace(input.AuthorPersonaID)
	if personaID == "" {
		return RapidReview{}, ErrEmptyPersonaID
	}
	answers, err := parseAnswers(input.Answers)
	if err != nil {
		return RapidReview{}, err
	}
	if _, err := s.store.GetPreprint(ctx, preprintID); err != nil {
		return RapidReview{}, err
	}

	rapidID, err := s.newID()
	if err != nil {
		return RapidReview{}, err
	}
	rapid := RapidReview{
		ID:              rapidID,
		PreprintID:      preprintID,
		AuthorPersonaID: personaID,
		Answers:         answers,
		IsPublished:     true,
		CreatedAt:       s.nowUTC(),
	}
	if err := s.store.PutRapidReview(ctx, rapid); err != nil {
		return RapidReview{}, err
	}
	return rapid, nil
}

// ListRapidReviews lists rapid reviews of one preprint, oldest first.
func (s *Service) ListRapidReviews(ctx context.Context, preprintID string) ([]RapidReview, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	preprintID = strings.TrimSpace(preprintID)
	if preprintID == "" {
		return nil, ErrEmptyPreprintID
	}
	return s.store.ListRapidReviewsByPreprint(ctx, preprintID)
}

// SetRapidReviewFlag toggles the moderation flag on a rapid review. The flag
// is the only mutable field of a rapid review.
func (s *Service) SetRapidReviewFlag(ctx context.Context, input SetRapidReviewFlagInput) (RapidReview, error) {
	if s == nil || s.store == nil {
		return RapidReview{}, ErrStoreNotConfigured
	}
	preprintID := strings.TrimSpace(input.PreprintID)
	if preprintID == "" {
		return RapidReview{}, ErrEmptyPreprintID
	}
	rapidID := strings.TrimSpace(input.RapidReviewID)
	if rapidID == "" {
		return RapidReview{}, ErrNotFound
	}
	if !input.Capability.Moderation {
		return RapidReview{}, ErrModerationNotAllowed
	}

	rapid, err := s.store.GetRapidReview(ctx, preprintID, rapidID)
	if err != nil {
		return RapidReview{}, err
	}
	if rapid.IsFlagged == input.Flagged {
		return rapid, nil
	}
	rapid.IsFlagged = input.Flagged
	if err := s.store.PutRapidReview(ctx, rapid); err != nil {
		return RapidReview{}, err
	}
	return rapid, nil
}

// AddTag attaches a named tag to a preprint. Re-adding an existing tag is a
// no-op upsert.
func (s *Service) AddTag(ctx context.Context, input AddTagInput) (Tag, error) {
	if s == nil || s.store == nil {
		return Tag{}, ErrStoreNotConfigured
	}
	preprintID := strings.TrimSpace(input.PreprintID)
	if preprintID == "" {
		return Tag{}, ErrEmptyPreprintID
	}
	name := strings.ToLower(strings.TrimSpace(input.Name))
	if name == "" {
		return Tag{}, ErrEmptyTag
	}
	if _, err := s.store.GetPreprint(ctx, preprintID); err != nil {
		return Tag{}, err
	}
	tag := Tag{
		PreprintID: preprintID,
		Name:       name,
		CreatedAt:  s.nowUTC(),
	}
	if err := s.store.PutTag(ctx, tag); err != nil {
		return Tag{}, err
	}
	return tag, nil
}

// ListTags lists the tags of one preprint in name order.
func (s *Service) ListTags(ctx context.Context, preprintID string) ([]Tag, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	preprintID = strings.TrimSpace(preprintID)
	if preprintID == "" {
		return nil, ErrEmptyPreprintID
	}
	return s.store.ListTagsByPreprint(ctx, preprintID)
}

// NormalizeHandle lowercases and trims a DOI or arXiv handle.
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimSpace(handle))
}

func (s *Service) nowUTC() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}

package server

import (
	"context"
	"errors"
	"time"

	"github.com/openpreview/preprint.review/internal/services/review/domain"
	"github.com/openpreview/preprint.review/internal/services/review/storage"
)

// domainStoreAdapter bridges the domain persistence boundary onto the
// storage record interfaces.
type domainStoreAdapter struct {
	reviewStore  storage.ReviewStore
	draftStore   storage.DraftStore
	rosterStore  storage.RosterStore
	commentStore storage.CommentStore
}

func newDomainStoreAdapter(reviewStore storage.ReviewStore, draftStore storage.DraftStore, rosterStore storage.RosterStore, commentStore storage.CommentStore) *domainStoreAdapter {
	return &domainStoreAdapter{
		reviewStore:  reviewStore,
		draftStore:   draftStore,
		rosterStore:  rosterStore,
		commentStore: commentStore,
	}
}

func (a *domainStoreAdapter) PutReview(ctx context.Context, review domain.Review) error {
	if a == nil || a.reviewStore == nil {
		return domain.ErrStoreNotConfigured
	}
	return mapStorageError(a.reviewStore.PutReview(ctx, toStorageReview(review)))
}

func (a *domainStoreAdapter) GetReview(ctx context.Context, reviewID string) (domain.Review, error) {
	if a == nil || a.reviewStore == nil {
		return domain.Review{}, domain.ErrStoreNotConfigured
	}
	record, err := a.reviewStore.GetReview(ctx, reviewID)
	if err != nil {
		return domain.Review{}, mapStorageError(err)
	}
	return toDomainReview(record), nil
}

func (a *domainStoreAdapter) ListReviewsByPreprint(ctx context.Context, preprintID string) ([]domain.Review, error) {
	if a == nil || a.reviewStore == nil {
		return nil, domain.ErrStoreNotConfigured
	}
	records, err := a.reviewStore.ListReviewsByPreprint(ctx, preprintID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	reviews := make([]domain.Review, 0, len(records))
	for _, record := range records {
		reviews = append(reviews, toDomainReview(record))
	}
	return reviews, nil
}

func (a *domainStoreAdapter) SetReviewDOI(ctx context.Context, reviewID string, doi string, updatedAt time.Time) error {
	if a == nil || a.reviewStore == nil {
		return domain.ErrStoreNotConfigured
	}
	err := a.reviewStore.SetReviewDOI(ctx, reviewID, doi, updatedAt)
	// A unique index violation means another review already carries the DOI.
	if errors.Is(err, storage.ErrConflict) {
		return domain.ErrDOIConflict
	}
	return mapStorageError(err)
}

func (a *domainStoreAdapter) PutDraft(ctx context.Context, draft domain.Draft) error {
	if a == nil || a.draftStore == nil {
		return domain.ErrStoreNotConfigured
	}
	err := a.draftStore.PutDraft(ctx, toStorageDraft(draft))
	if errors.Is(err, storage.ErrConflict) {
		return domain.ErrNotFound
	}
	return mapStorageError(err)
}

func (a *domainStoreAdapter) PutDraftWithAuthor(ctx context.Context, draft domain.Draft, author domain.RosterEntry) error {
	if a == nil || a.draftStore == nil {
		return domain.ErrStoreNotConfigured
	}
	err := a.draftStore.PutDraftWithRoster(ctx, toStorageDraft(draft), toStorageRosterEntry(author))
	if errors.Is(err, storage.ErrConflict) {
		return domain.ErrNotFound
	}
	return mapStorageError(err)
}

func (a *domainStoreAdapter) LatestDraft(ctx context.Context, reviewID string) (domain.Draft, error) {
	if a == nil || a.draftStore == nil {
		return domain.Draft{}, domain.ErrStoreNotConfigured
	}
	record, err := a.draftStore.LatestDraft(ctx, reviewID)
	if err != nil {
		return domain.Draft{}, mapStorageError(err)
	}
	return toDomainDraft(record), nil
}

func (a *domainStoreAdapter) CountDrafts(ctx context.Context, reviewID string) (int, error) {
	if a == nil || a.draftStore == nil {
		return 0, domain.ErrStoreNotConfigured
	}
	count, err := a.draftStore.CountDrafts(ctx, reviewID)
	if err != nil {
		return 0, mapStorageError(err)
	}
	return count, nil
}

func (a *domainStoreAdapter) ListRoster(ctx context.Context, reviewID string) ([]domain.RosterEntry, error) {
	if a == nil || a.rosterStore == nil {
		return nil, domain.ErrStoreNotConfigured
	}
	records, err := a.rosterStore.ListRosterByReview(ctx, reviewID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	return toDomainRosterEntries(records)
}

func (a *domainStoreAdapter) PutRosterEntry(ctx context.Context, entry domain.RosterEntry) error {
	if a == nil || a.rosterStore == nil {
		return domain.ErrStoreNotConfigured
	}
	err := a.rosterStore.PutRosterEntry(ctx, toStorageRosterEntry(entry))
	if errors.Is(err, storage.ErrConflict) {
		return domain.ErrNotFound
	}
	return mapStorageError(err)
}

func (a *domainStoreAdapter) ConfirmRosterEntry(ctx context.Context, reviewID string, personaID string, role domain.Role, confirmedAt time.Time) error {
	if a == nil || a.rosterStore == nil {
		return domain.ErrStoreNotConfigured
	}
	return mapStorageError(a.rosterStore.ConfirmRosterEntry(ctx, reviewID, personaID, string(role), confirmedAt))
}

func (a *domainStoreAdapter) DeleteRosterEntry(ctx context.Context, reviewID string, personaID string, role domain.Role) error {
	if a == nil || a.rosterStore == nil {
		return domain.ErrStoreNotConfigured
	}
	return mapStorageError(a.rosterStore.DeleteRosterEntry(ctx, reviewID, personaID, string(role)))
}

func (a *domainStoreAdapter) ListPendingInvitesByPersona(ctx context.Context, personaID string) ([]domain.RosterEntry, error) {
	if a == nil || a.rosterStore == nil {
		return nil, domain.ErrStoreNotConfigured
	}
	records, err := a.rosterStore.ListPendingInvitesByPersona(ctx, personaID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	return toDomainRosterEntries(records)
}

func (a *domainStoreAdapter) PutComment(ctx context.Context, comment domain.Comment) error {
	if a == nil || a.commentStore == nil {
		return domain.ErrStoreNotConfigured
	}
	err := a.commentStore.PutComment(ctx, toStorageComment(comment))
	if errors.Is(err, storage.ErrConflict) {
		return domain.ErrNotFound
	}
	return mapStorageError(err)
}

func (a *domainStoreAdapter) GetComment(ctx context.Context, reviewID string, commentID string) (domain.Comment, error) {
	if a == nil || a.commentStore == nil {
		return domain.Comment{}, domain.ErrStoreNotConfigured
	}
	record, err := a.commentStore.GetComment(ctx, reviewID, commentID)
	if err != nil {
		return domain.Comment{}, mapStorageError(err)
	}
	return toDomainComment(record), nil
}

func (a *domainStoreAdapter) ListComments(ctx context.Context, reviewID string) ([]domain.Comment, error) {
	if a == nil || a.commentStore == nil {
		return nil, domain.ErrStoreNotConfigured
	}
	records, err := a.commentStore.ListCommentsByReview(ctx, reviewID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	comments := make([]domain.Comment, 0, len(records))
	for _, record := range records {
		comments = append(comments, toDomainComment(record))
	}
	return comments, nil
}

func toStorageReview(review domain.Review) storage.ReviewRecord {
	return storage.ReviewRecord{
		ID:          review.ID,
		PreprintID:  review.PreprintID,
		IsPublished: review.IsPublished,
		IsFlagged:   review.IsFlagged,
		DOI:         review.DOI,
		CreatedAt:   review.CreatedAt,
		UpdatedAt:   review.UpdatedAt,
		PublishedAt: review.PublishedAt,
	}
}

func toDomainReview(record storage.ReviewRecord) domain.Review {
	return domain.Review{
		ID:          record.ID,
		PreprintID:  record.PreprintID,
		IsPublished: record.IsPublished,
		IsFlagged:   record.IsFlagged,
		DOI:         record.DOI,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
		PublishedAt: record.PublishedAt,
	}
}

func toStorageDraft(draft domain.Draft) storage.DraftRecord {
	return storage.DraftRecord{
		ID:        draft.ID,
		ReviewID:  draft.ReviewID,
		Contents:  draft.Contents,
		CreatedAt: draft.CreatedAt,
	}
}

func toDomainDraft(record storage.DraftRecord) domain.Draft {
	return domain.Draft{
		ID:        record.ID,
		ReviewID:  record.ReviewID,
		Contents:  record.Contents,
		CreatedAt: record.CreatedAt,
	}
}

func toStorageRosterEntry(entry domain.RosterEntry) storage.RosterRecord {
	status := storage.RosterStatusInvited
	if entry.Status == domain.RosterConfirmed {
		status = storage.RosterStatusConfirmed
	}
	return storage.RosterRecord{
		ReviewID:  entry.ReviewID,
		PersonaID: entry.PersonaID,
		Role:      string(entry.Role),
		Status:    status,
		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.UpdatedAt,
	}
}

func toDomainRosterEntries(records []storage.RosterRecord) ([]domain.RosterEntry, error) {
	entries := make([]domain.RosterEntry, 0, len(records))
	for _, record := range records {
		entry, err := toDomainRosterEntry(record)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func toDomainRosterEntry(record storage.RosterRecord) (domain.RosterEntry, error) {
	role, err := domain.ParseRole(record.Role)
	if err != nil {
		return domain.RosterEntry{}, err
	}
	status := domain.RosterInvited
	if record.Status == storage.RosterStatusConfirmed {
		status = domain.RosterConfirmed
	}
	return domain.RosterEntry{
		ReviewID:  record.ReviewID,
		PersonaID: record.PersonaID,
		Role:      role,
		Status:    status,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}, nil
}

func toStorageComment(comment domain.Comment) storage.CommentRecord {
	return storage.CommentRecord{
		ID:              comment.ID,
		ReviewID:        comment.ReviewID,
		AuthorPersonaID: comment.AuthorPersonaID,
		Contents:        comment.Contents,
		IsPublished:     comment.IsPublished,
		IsFlagged:       comment.IsFlagged,
		CreatedAt:       comment.CreatedAt,
	}
}

func toDomainComment(record storage.CommentRecord) domain.Comment {
	return domain.Comment{
		ID:              record.ID,
		ReviewID:        record.ReviewID,
		AuthorPersonaID: record.AuthorPersonaID,
		Contents:        record.Contents,
		IsPublished:     record.IsPublished,
		IsFlagged:       record.IsFlagged,
		CreatedAt:       record.CreatedAt,
	}
}

func mapStorageError(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return domain.ErrNotFound
	}
	return err
}

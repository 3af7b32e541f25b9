package server

import (
	"context"
	"errors"

	"github.com/openpreview/preprint.review/internal/services/preprint/domain"
	"github.com/openpreview/preprint.review/internal/services/preprint/storage"
)

// domainStoreAdapter bridges the domain persistence boundary onto the
// storage record interfaces.
type domainStoreAdapter struct {
	preprintStore storage.PreprintStore
	requestStore  storage.RequestStore
	rapidStore    storage.RapidReviewStore
	tagStore      storage.TagStore
}

func newDomainStoreAdapter(preprintStore storage.PreprintStore, requestStore storage.RequestStore, rapidStore storage.RapidReviewStore, tagStore storage.TagStore) *domainStoreAdapter {
	return &domainStoreAdapter{
		preprintStore: preprintStore,
		requestStore:  requestStore,
		rapidStore:    rapidStore,
		tagStore:      tagStore,
	}
}

func (a *domainStoreAdapter) PutPreprint(ctx context.Context, preprint domain.Preprint) error {
	if a == nil || a.preprintStore == nil {
		return domain.ErrStoreNotConfigured
	}
	err := a.preprintStore.PutPreprint(ctx, toStoragePreprint(preprint))
	// The unique handle index is the only uniqueness constraint on the table.
	if errors.Is(err, storage.ErrConflict) {
		return domain.ErrHandleConflict
	}
	return mapStorageError(err)
}

func (a *domainStoreAdapter) GetPreprint(ctx context.Context, preprintID string) (domain.Preprint, error) {
	if a == nil || a.preprintStore == nil {
		return domain.Preprint{}, domain.ErrStoreNotConfigured
	}
	record, err := a.preprintStore.GetPreprint(ctx, preprintID)
	if err != nil {
		return domain.Preprint{}, mapStorageError(err)
	}
	return toDomainPreprint(record), nil
}

func (a *domainStoreAdapter) GetPreprintByHandle(ctx context.Context, handle string) (domain.Preprint, error) {
	if a == nil || a.preprintStore == nil {
		return domain.Preprint{}, domain.ErrStoreNotConfigured
	}
	record, err := a.preprintStore.GetPreprintByHandle(ctx, handle)
	if err != nil {
		return domain.Preprint{}, mapStorageError(err)
	}
	return toDomainPreprint(record), nil
}

func (a *domainStoreAdapter) PutRequest(ctx context.Context, request domain.Request) error {
	if a == nil || a.requestStore == nil {
		return domain.ErrStoreNotConfigured
	}
	err := a.requestStore.PutRequest(ctx, storage.RequestRecord{
		ID:              request.ID,
		PreprintID:      request.PreprintID,
		AuthorPersonaID: request.AuthorPersonaID,
		CreatedAt:       request.CreatedAt,
	})
	if errors.Is(err, storage.ErrConflict) {
		return domain.ErrNotFound
	}
	return mapStorageError(err)
}

func (a *domainStoreAdapter) ListRequestsByPreprint(ctx context.Context, preprintID string) ([]domain.Request, error) {
	if a == nil || a.requestStore == nil {
		return nil, domain.ErrStoreNotConfigured
	}
	records, err := a.requestStore.ListRequestsByPreprint(ctx, preprintID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	return toDomainRequests(records), nil
}

func (a *domainStoreAdapter) ListRequestsByPersona(ctx context.Context, personaID string) ([]domain.Request, error) {
	if a == nil || a.requestStore == nil {
		return nil, domain.ErrStoreNotConfigured
	}
	records, err := a.requestStore.ListRequestsByPersona(ctx, personaID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	return toDomainRequests(records), nil
}

func (a *domainStoreAdapter) PutRapidReview(ctx context.Context, rapid domain.RapidReview) error {
	if a == nil || a.rapidStore == nil {
		return domain.ErrStoreNotConfigured
	}
	err := a.rapidStore.PutRapidReview(ctx, toStorageRapidReview(rapid))
	if errors.Is(err, storage.ErrConflict) {
		return domain.ErrNotFound
	}
	return mapStorageError(err)
}

func (a *domainStoreAdapter) GetRapidReview(ctx context.Context, preprintID string, rapidReviewID string) (domain.RapidReview, error) {
	if a == nil || a.rapidStore == nil {
		return domain.RapidReview{}, domain.ErrStoreNotConfigured
	}
	record, err := a.rapidStore.GetRapidReview(ctx, preprintID, rapidReviewID)
	if err != nil {
		return domain.RapidReview{}, mapStorageError(err)
	}
	return toDomainRapidReview(record)
}

func (a *domainStoreAdapter) ListRapidReviewsByPreprint(ctx context.Context, preprintID string) ([]domain.RapidReview, error) {
	if a == nil || a.rapidStore == nil {
		return nil, domain.ErrStoreNotConfigured
	}
	records, err := a.rapidStore.ListRapidReviewsByPreprint(ctx, preprintID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	rapids := make([]domain.RapidReview, 0, len(records))
	for _, record := range records {
		rapid, convErr := toDomainRapidReview(record)
		if convErr != nil {
			return nil, convErr
		}
		rapids = append(rapids, rapid)
	}
	return rapids, nil
}

func (a *domainStoreAdapter) PutTag(ctx context.Context, tag domain.Tag) error {
	if a == nil || a.tagStore == nil {
		return domain.ErrStoreNotConfigured
	}
	err := a.tagStore.PutTag(ctx, storage.TagRecord{
		PreprintID: tag.PreprintID,
		Name:       tag.Name,
		CreatedAt:  tag.CreatedAt,
	})
	if errors.Is(err, storage.ErrConflict) {
		return domain.ErrNotFound
	}
	return mapStorageError(err)
}

func (a *domainStoreAdapter) ListTagsByPreprint(ctx context.Context, preprintID string) ([]domain.Tag, error) {
	if a == nil || a.tagStore == nil {
		return nil, domain.ErrStoreNotConfigured
	}
	records, err := a.tagStore.ListTagsByPreprint(ctx, preprintID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	tags := make([]domain.Tag, 0, len(records))
	for _, record := range records {
		tags = append(tags, domain.Tag{
			PreprintID: record.PreprintID,
			Name:       record.Name,
			CreatedAt:  record.CreatedAt,
		})
	}
	return tags, nil
}

func toStoragePreprint(preprint domain.Preprint) storage.PreprintRecord {
	return storage.PreprintRecord{
		ID:          preprint.ID,
		Handle:      preprint.Handle,
		Title:       preprint.Title,
		URL:         preprint.URL,
		Authors:     preprint.Authors,
		Server:      preprint.Server,
		License:     preprint.License,
		PublishedOn: preprint.PublishedOn,
		CreatedAt:   preprint.CreatedAt,
		UpdatedAt:   preprint.UpdatedAt,
	}
}

func toDomainPreprint(record storage.PreprintRecord) domain.Preprint {
	return domain.Preprint{
		ID:          record.ID,
		Handle:      record.Handle,
		Title:       record.Title,
		URL:         record.URL,
		Authors:     record.Authors,
		Server:      record.Server,
		License:     record.License,
		PublishedOn: record.PublishedOn,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}

func toDomainRequests(records []storage.RequestRecord) []domain.Request {
	requests := make([]domain.Request, 0, len(records))
	for _, record := range records {
		requests = append(requests, domain.Request{
			ID:              record.ID,
			PreprintID:      record.PreprintID,
			AuthorPersonaID: record.AuthorPersonaID,
			CreatedAt:       record.CreatedAt,
		})
	}
	return requests
}

func toStorageRapidReview(rapid domain.RapidReview) storage.RapidReviewRecord {
	answers := make(map[string]string, len(rapid.Answers))
	for question, answer := range rapid.Answers {
		answers[string(question)] = string(answer)
	}
	return storage.RapidReviewRecord{
		ID:              rapid.ID,
		PreprintID:      rapid.PreprintID,
		AuthorPersonaID: rapid.AuthorPersonaID,
		Answers:         answers,
		IsPublished:     rapid.IsPublished,
		IsFlagged:       rapid.IsFlagged,
		CreatedAt:       rapid.CreatedAt,
	}
}

func toDomainRapidReview(record storage.RapidReviewRecord) (domain.RapidReview, error) {
	answers := make(map[domain.Question]domain.Answer, len(record.Answers))
	for question, raw := range record.Answers {
		answer, err := domain.ParseAnswer(raw)
		if err != nil {
			return domain.RapidReview{}, err
		}
		answers[domain.Question(question)] = answer
	}
	return domain.RapidReview{
		ID:              record.ID,
		PreprintID:      record.PreprintID,
		AuthorPersonaID: record.AuthorPersonaID,
		Answers:         answers,
		IsPublished:     record.IsPublished,
		IsFlagged:       record.IsFlagged,
		CreatedAt:       record.CreatedAt,
	}, nil
}

func mapStorageError(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return domain.ErrNotFound
	}
	return err
}

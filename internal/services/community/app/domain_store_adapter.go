package server

import (
	"context"
	"errors"
	"time"

	"github.com/openpreview/preprint.review/internal/services/community/domain"
	"github.com/openpreview/preprint.review/internal/services/community/storage"
)

// domainStoreAdapter maps persistence records and errors to the community
// domain's vocabulary.
type domainStoreAdapter struct {
	communityStore storage.CommunityStore
	memberStore    storage.MemberStore
	linkStore      storage.PreprintLinkStore
}

func newDomainStoreAdapter(communityStore storage.CommunityStore, memberStore storage.MemberStore, linkStore storage.PreprintLinkStore) *domainStoreAdapter {
	return &domainStoreAdapter{
		communityStore: communityStore,
		memberStore:    memberStore,
		linkStore:      linkStore,
	}
}

func (a *domainStoreAdapter) PutCommunity(ctx context.Context, community domain.Community) error {
	err := a.communityStore.PutCommunity(ctx, toStorageCommunity(community))
	if errors.Is(err, storage.ErrConflict) {
		return domain.ErrSlugConflict
	}
	return mapStorageError(err)
}

func (a *domainStoreAdapter) PutCommunityWithOwner(ctx context.Context, community domain.Community, owner domain.Member) error {
	err := a.communityStore.PutCommunityWithOwner(ctx, toStorageCommunity(community), toStorageMember(owner))
	if errors.Is(err, storage.ErrConflict) {
		return domain.ErrSlugConflict
	}
	return mapStorageError(err)
}

func (a *domainStoreAdapter) GetCommunity(ctx context.Context, communityID string) (domain.Community, error) {
	record, err := a.communityStore.GetCommunity(ctx, communityID)
	if err != nil {
		return domain.Community{}, mapStorageError(err)
	}
	return toDomainCommunity(record), nil
}

func (a *domainStoreAdapter) GetCommunityBySlug(ctx context.Context, slug string) (domain.Community, error) {
	record, err := a.communityStore.GetCommunityBySlug(ctx, slug)
	if err != nil {
		return domain.Community{}, mapStorageError(err)
	}
	return toDomainCommunity(record), nil
}

func (a *domainStoreAdapter) PutMember(ctx context.Context, member domain.Member) error {
	err := a.memberStore.PutMember(ctx, toStorageMember(member))
	if errors.Is(err, storage.ErrConflict) {
		// The member upsert only conflicts on the community foreign key.
		return domain.ErrNotFound
	}
	return mapStorageError(err)
}

func (a *domainStoreAdapter) GetMember(ctx context.Context, communityID string, personaID string) (domain.Member, error) {
	record, err := a.memberStore.GetMember(ctx, communityID, personaID)
	if err != nil {
		return domain.Member{}, mapStorageError(err)
	}
	return toDomainMember(record)
}

func (a *domainStoreAdapter) DeleteMember(ctx context.Context, communityID string, personaID string) error {
	return mapStorageError(a.memberStore.DeleteMember(ctx, communityID, personaID))
}

func (a *domainStoreAdapter) ListMembersByCommunity(ctx context.Context, communityID string) ([]domain.Member, error) {
	records, err := a.memberStore.ListMembersByCommunity(ctx, communityID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	members := make([]domain.Member, 0, len(records))
	for _, record := range records {
		member, convertErr := toDomainMember(record)
		if convertErr != nil {
			return nil, convertErr
		}
		members = append(members, member)
	}
	return members, nil
}

func (a *domainStoreAdapter) AttachPreprint(ctx context.Context, communityID string, preprintID string, at time.Time) error {
	err := a.linkStore.PutPreprintLink(ctx, storage.PreprintLinkRecord{
		CommunityID: communityID,
		PreprintID:  preprintID,
		CreatedAt:   at,
	})
	if errors.Is(err, storage.ErrConflict) {
		return domain.ErrNotFound
	}
	return mapStorageError(err)
}

func (a *domainStoreAdapter) ListCommunitiesForPreprint(ctx context.Context, preprintID string) ([]domain.Community, error) {
	records, err := a.linkStore.ListCommunitiesForPreprint(ctx, preprintID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	communities := make([]domain.Community, 0, len(records))
	for _, record := range records {
		communities = append(communities, toDomainCommunity(record))
	}
	return communities, nil
}

func mapStorageError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return domain.ErrNotFound
	}
	return err
}

func toStorageCommunity(community domain.Community) storage.CommunityRecord {
	return storage.CommunityRecord{
		ID:          community.ID,
		Slug:        community.Slug,
		Name:        community.Name,
		Description: community.Description,
		CreatedAt:   community.CreatedAt,
		UpdatedAt:   community.UpdatedAt,
	}
}

func toDomainCommunity(record storage.CommunityRecord) domain.Community {
	return domain.Community{
		ID:          record.ID,
		Slug:        record.Slug,
		Name:        record.Name,
		Description: record.Description,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}

func toStorageMember(member domain.Member) storage.MemberRecord {
	return storage.MemberRecord{
		CommunityID: member.CommunityID,
		PersonaID:   member.PersonaID,
		Role:        string(member.Role),
		CreatedAt:   member.CreatedAt,
		UpdatedAt:   member.UpdatedAt,
	}
}

func toDomainMember(record storage.MemberRecord) (domain.Member, error) {
	role, err := domain.ParseRole(record.Role)
	if err != nil {
		return domain.Member{}, err
	}
	return domain.Member{
		CommunityID: record.CommunityID,
		PersonaID:   record.PersonaID,
		Role:        role,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}, nil
}

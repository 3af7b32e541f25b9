package domain

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"
)

type memberKey struct {
	communityID string
	personaID   string
}

type fakeStore struct {
	mu          sync.Mutex
	communities map[string]Community
	members     map[memberKey]Member
	preprints   map[string][]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		communities: make(map[string]Community),
		members:     make(map[memberKey]Member),
		preprints:   make(map[string][]string),
	}
}

func (f *fakeStore) putCommunityLocked(community Community) error {
	for _, existing := range f.communities {
		if existing.Slug == community.Slug && existing.ID != community.ID {
			return ErrSlugConflict
		}
	}
	f.communities[community.ID] = community
	return nil
}

func (f *fakeStore) PutCommunity(_ context.Context, community Community) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.putCommunityLocked(community)
}

func (f *fakeStore) PutCommunityWithOwner(_ context.Context, community Community, owner Member) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.putCommunityLocked(community); err != nil {
		return err
	}
	f.members[memberKey{owner.CommunityID, owner.PersonaID}] = owner
	return nil
}

func (f *fakeStore) GetCommunity(_ context.Context, communityID string) (Community, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	community, ok := f.communities[communityID]
	if !ok {
		return Community{}, ErrNotFound
	}
	return community, nil
}

func (f *fakeStore) GetCommunityBySlug(_ context.Context, slug string) (Community, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, community := range f.communities {
		if community.Slug == slug {
			return community, nil
		}
	}
	return Community{}, ErrNotFound
}

func (f *fakeStore) PutMember(_ context.Context, member Member) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members[memberKey{member.CommunityID, member.PersonaID}] = member
	return nil
}

func (f *fakeStore) GetMember(_ context.Context, communityID string, personaID string) (Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	member, ok := f.members[memberKey{communityID, personaID}]
	if !ok {
		return Member{}, ErrNotFound
	}
	return member, nil
}

func (f *fakeStore) DeleteMember(_ context.Context, communityID string, personaID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := memberKey{communityID, personaID}
	if _, ok := f.members[key]; !ok {
		return ErrNotFound
	}
	delete(f.members, key)
	return nil
}

func (f *fakeStore) ListMembersByCommunity(_ context.Context, communityID string) ([]Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var members []Member
	for _, member := range f.members {
		if member.CommunityID == communityID {
			members = append(members, member)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].PersonaID < members[j].PersonaID })
	return members, nil
}

func (f *fakeStore) AttachPreprint(_ context.Context, communityID string, preprintID string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.preprints[preprintID] {
		if existing == communityID {
			return nil
		}
	}
	f.preprints[preprintID] = append(f.preprints[preprintID], communityID)
	return nil
}

func (f *fakeStore) ListCommunitiesForPreprint(_ context.Context, preprintID string) ([]Community, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var communities []Community
	for _, communityID := range f.preprints[preprintID] {
		communities = append(communities, f.communities[communityID])
	}
	return communities, nil
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func sequentialIDGenerator(prefix string) func() (string, error) {
	var mu sync.Mutex
	next := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		next++
		return fmt.Sprintf("%s-%d", prefix, next), nil
	}
}

func newTestService() (*Service, *fakeStore) {
	store := newFakeStore()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	return NewService(store, fixedClock(now), sequentialIDGenerator("community")), store
}

func TestCreateCommunity_CreatorBecomesOwner(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()
	ctx := context.Background()

	community, err := svc.CreateCommunity(ctx, CreateCommunityInput{
		Slug:             " Open-Biology ",
		Name:             "Open Biology",
		Description:      "Preprint club for biology",
		CreatorPersonaID: "persona-1",
	})
	if err != nil {
		t.Fatalf("create community: %v", err)
	}
	if community.Slug != "open-biology" {
		t.Fatalf("slug = %q, want open-biology", community.Slug)
	}

	members, err := svc.ListMembers(ctx, community.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("members = %d, want 1", len(members))
	}
	if members[0].PersonaID != "persona-1" || members[0].Role != RoleOwner {
		t.Fatalf("creator membership = %+v, want persona-1 owner", members[0])
	}

	bySlug, err := svc.GetCommunityBySlug(ctx, "OPEN-BIOLOGY")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if bySlug.ID != community.ID {
		t.Fatalf("slug lookup id = %q, want %q", bySlug.ID, community.ID)
	}
}

func TestCreateCommunity_RejectsDuplicateSlug(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.CreateCommunity(ctx, CreateCommunityInput{
		Slug: "open-biology", Name: "Open Biology", CreatorPersonaID: "persona-1",
	}); err != nil {
		t.Fatalf("create first community: %v", err)
	}
	_, err := svc.CreateCommunity(ctx, CreateCommunityInput{
		Slug: "OPEN-biology", Name: "Another Club", CreatorPersonaID: "persona-2",
	})
	if !errors.Is(err, ErrSlugConflict) {
		t.Fatalf("expected ErrSlugConflict, got %v", err)
	}
}

func TestAddMember_RejectsDoubleJoinAndBadRole(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()
	ctx := context.Background()

	community, err := svc.CreateCommunity(ctx, CreateCommunityInput{
		Slug: "open-biology", Name: "Open Biology", CreatorPersonaID: "persona-1",
	})
	if err != nil {
		t.Fatalf("create community: %v", err)
	}

	member, err := svc.AddMember(ctx, community.ID, "persona-2", "member")
	if err != nil {
		t.Fatalf("add member: %v", err)
	}
	if member.Role != RoleMember {
		t.Fatalf("role = %q, want member", member.Role)
	}

	if _, err := svc.AddMember(ctx, community.ID, "persona-2", "moderator"); !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("expected ErrAlreadyMember, got %v", err)
	}
	if _, err := svc.AddMember(ctx, community.ID, "persona-3", "janitor"); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if _, err := svc.AddMember(ctx, "missing", "persona-3", "member"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing community, got %v", err)
	}
}

func TestRemoveMember_ProtectsLastOwner(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()
	ctx := context.Background()

	community, err := svc.CreateCommunity(ctx, CreateCommunityInput{
		Slug: "open-biology", Name: "Open Biology", CreatorPersonaID: "persona-1",
	})
	if err != nil {
		t.Fatalf("create community: %v", err)
	}
	if err := svc.RemoveMember(ctx, community.ID, "persona-1"); !errors.Is(err, ErrLastOwner) {
		t.Fatalf("expected ErrLastOwner, got %v", err)
	}

	if _, err := svc.AddMember(ctx, community.ID, "persona-2", "owner"); err != nil {
		t.Fatalf("add second owner: %v", err)
	}
	if err := svc.RemoveMember(ctx, community.ID, "persona-1"); err != nil {
		t.Fatalf("remove first owner: %v", err)
	}
	if err := svc.RemoveMember(ctx, community.ID, "persona-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on repeat removal, got %v", err)
	}
}

func TestSetMemberRole_ProtectsLastOwner(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()
	ctx := context.Background()

	community, err := svc.CreateCommunity(ctx, CreateCommunityInput{
		Slug: "open-biology", Name: "Open Biology", CreatorPersonaID: "persona-1",
	})
	if err != nil {
		t.Fatalf("create community: %v", err)
	}
	if _, err := svc.SetMemberRole(ctx, community.ID, "persona-1", "member"); !errors.Is(err, ErrLastOwner) {
		t.Fatalf("expected ErrLastOwner, got %v", err)
	}

	// Same role is a no-op, not an ownership check.
	member, err := svc.SetMemberRole(ctx, community.ID, "persona-1", "owner")
	if err != nil {
		t.Fatalf("set same role: %v", err)
	}
	if member.Role != RoleOwner {
		t.Fatalf("role = %q, want owner", member.Role)
	}

	if _, err := svc.AddMember(ctx, community.ID, "persona-2", "owner"); err != nil {
		t.Fatalf("add second owner: %v", err)
	}
	demoted, err := svc.SetMemberRole(ctx, community.ID, "persona-1", "moderator")
	if err != nil {
		t.Fatalf("demote first owner: %v", err)
	}
	if demoted.Role != RoleModerator {
		t.Fatalf("role = %q, want moderator", demoted.Role)
	}
}

func TestAttachPreprint_IsIdempotent(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.CreateCommunity(ctx, CreateCommunityInput{
		Slug: "open-biology", Name: "Open Biology", CreatorPersonaID: "persona-1",
	})
	if err != nil {
		t.Fatalf("create first community: %v", err)
	}
	second, err := svc.CreateCommunity(ctx, CreateCommunityInput{
		Slug: "preprint-club", Name: "Preprint Club", CreatorPersonaID: "persona-2",
	})
	if err != nil {
		t.Fatalf("create second community: %v", err)
	}

	for _, communityID := range []string{first.ID, first.ID, second.ID} {
		if err := svc.AttachPreprint(ctx, communityID, "preprint-1"); err != nil {
			t.Fatalf("attach preprint to %s: %v", communityID, err)
		}
	}

	communities, err := svc.ListCommunitiesForPreprint(ctx, "preprint-1")
	if err != nil {
		t.Fatalf("list communities for preprint: %v", err)
	}
	if len(communities) != 2 {
		t.Fatalf("communities = %d, want 2", len(communities))
	}
}

func TestHasModeration(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()
	ctx := context.Background()

	community, err := svc.CreateCommunity(ctx, CreateCommunityInput{
		Slug: "open-biology", Name: "Open Biology", CreatorPersonaID: "persona-1",
	})
	if err != nil {
		t.Fatalf("create community: %v", err)
	}
	if _, err := svc.AddMember(ctx, community.ID, "persona-2", "moderator"); err != nil {
		t.Fatalf("add moderator: %v", err)
	}
	if _, err := svc.AddMember(ctx, community.ID, "persona-3", "member"); err != nil {
		t.Fatalf("add member: %v", err)
	}

	cases := map[string]bool{
		"persona-1": true,
		"persona-2": true,
		"persona-3": false,
		"persona-4": false,
	}
	for personaID, want := range cases {
		got, err := svc.HasModeration(ctx, community.ID, personaID)
		if err != nil {
			t.Fatalf("has moderation %s: %v", personaID, err)
		}
		if got != want {
			t.Fatalf("has moderation %s = %v, want %v", personaID, got, want)
		}
	}
}

package groups

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/snapgroups/backend/internal/cache"
	"github.com/snapgroups/backend/internal/models"
	"github.com/snapgroups/backend/internal/repositories"
)

type fakeGroupStore struct {
	groups     map[string]models.Group
	members    map[string]map[string]models.GroupMember
	membersErr error
}

func newFakeGroupStore() *fakeGroupStore {
	return &fakeGroupStore{
		groups:  make(map[string]models.Group),
		members: make(map[string]map[string]models.GroupMember),
	}
}

func (s *fakeGroupStore) Create(_ context.Context, group models.Group) error {
	if _, ok := s.groups[group.ID]; ok {
		return repositories.ErrConflict
	}
	s.groups[group.ID] = group
	return nil
}

func (s *fakeGroupStore) Get(_ context.Context, groupID string) (models.Group, error) {
	group, ok := s.groups[groupID]
	if !ok {
		return models.Group{}, repositories.ErrNotFound
	}
	return group, nil
}

func (s *fakeGroupStore) Delete(_ context.Context, groupID string) error {
	if _, ok := s.groups[groupID]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.groups, groupID)
	delete(s.members, groupID)
	return nil
}

func (s *fakeGroupStore) AddMember(_ context.Context, member models.GroupMember) error {
	if _, ok := s.groups[member.GroupID]; !ok {
		return repositories.ErrNotFound
	}
	roster := s.members[member.GroupID]
	if roster == nil {
		roster = make(map[string]models.GroupMember)
		s.members[member.GroupID] = roster
	}
	if _, ok := roster[member.UserID]; ok {
		return repositories.ErrConflict
	}
	roster[member.UserID] = member
	return nil
}

func (s *fakeGroupStore) RemoveMember(_ context.Context, groupID, userID string) error {
	roster := s.members[groupID]
	if _, ok := roster[userID]; !ok {
		return repositories.ErrNotFound
	}
	delete(roster, userID)
	if len(roster) == 0 {
		delete(s.groups, groupID)
		delete(s.members, groupID)
	}
	return nil
}

func (s *fakeGroupStore) Members(_ context.Context, groupID string) ([]models.GroupMember, error) {
	if s.membersErr != nil {
		return nil, s.membersErr
	}
	var out []models.GroupMember
	for _, member := range s.members[groupID] {
		out = append(out, member)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *fakeGroupStore) MembershipsForUser(_ context.Context, userID string) ([]models.GroupMember, error) {
	var out []models.GroupMember
	for _, roster := range s.members {
		if member, ok := roster[userID]; ok {
			out = append(out, member)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GroupID < out[j].GroupID })
	return out, nil
}

func newTestService(store Store) (*Service, *cache.MemoryStore) {
	memory := cache.NewMemoryStore()
	svc := NewService(store, memory, cache.NewInvalidator(memory), nil)
	svc.NowFunc = func() time.Time { return time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC) }
	return svc, memory
}

func TestCreateAddsCreatorMembership(t *testing.T) {
	ctx := context.Background()
	store := newFakeGroupStore()
	svc, _ := newTestService(store)

	group, err := svc.Create(ctx, "ski trip", "u1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if group.Name != "ski trip" || group.CreatedBy != "u1" {
		t.Fatalf("unexpected group: %+v", group)
	}

	members, err := svc.Members(ctx, group.ID)
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	if len(members) != 1 || members[0].UserID != "u1" {
		t.Fatalf("expected creator as sole member, got %+v", members)
	}
}

func TestJoin(t *testing.T) {
	ctx := context.Background()
	store := newFakeGroupStore()
	svc, _ := newTestService(store)

	group, err := svc.Create(ctx, "g", "u1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Join(ctx, group.ID, "u2"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := svc.Join(ctx, group.ID, "u2"); !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("expected ErrAlreadyMember got %v", err)
	}
	if err := svc.Join(ctx, "missing", "u2"); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound got %v", err)
	}
}

func TestLeaveKeepsGroupWhileMembersRemain(t *testing.T) {
	ctx := context.Background()
	store := newFakeGroupStore()
	svc, _ := newTestService(store)

	group, err := svc.Create(ctx, "g", "u1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Join(ctx, group.ID, "u2"); err != nil {
		t.Fatalf("join: %v", err)
	}

	if err := svc.Leave(ctx, group.ID, "u2"); err != nil {
		t.Fatalf("leave: %v", err)
	}

	if _, err := svc.Get(ctx, group.ID, ""); err != nil {
		t.Fatalf("expected group to survive, got %v", err)
	}
}

func TestLeaveRemovesEmptyGroup(t *testing.T) {
	ctx := context.Background()
	store := newFakeGroupStore()
	svc, _ := newTestService(store)

	group, err := svc.Create(ctx, "g", "u1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Leave(ctx, group.ID, "u1"); err != nil {
		t.Fatalf("leave: %v", err)
	}

	if _, err := svc.Get(ctx, group.ID, ""); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound for emptied group, got %v", err)
	}
}

func TestLeaveRemovesEmptyGroupWithoutRosterRead(t *testing.T) {
	ctx := context.Background()
	store := newFakeGroupStore()
	svc, _ := newTestService(store)

	group, err := svc.Create(ctx, "g", "u1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// The prune rides on the member removal itself, so a broken roster
	// read cannot strand a zero-member group.
	store.membersErr = errors.New("db down")

	if err := svc.Leave(ctx, group.ID, "u1"); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if _, ok := store.groups[group.ID]; ok {
		t.Fatal("expected emptied group to be removed")
	}
}

func TestLeaveNotMember(t *testing.T) {
	ctx := context.Background()
	store := newFakeGroupStore()
	svc, _ := newTestService(store)

	group, err := svc.Create(ctx, "g", "u1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Leave(ctx, group.ID, "u2"); !errors.Is(err, ErrNotMember) {
		t.Fatalf("expected ErrNotMember got %v", err)
	}
}

func TestDeleteRequiresSoleMembership(t *testing.T) {
	ctx := context.Background()
	store := newFakeGroupStore()
	svc, _ := newTestService(store)

	group, err := svc.Create(ctx, "g", "u1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Join(ctx, group.ID, "u2"); err != nil {
		t.Fatalf("join: %v", err)
	}

	if err := svc.Delete(ctx, group.ID, "u3"); !errors.Is(err, ErrNotMember) {
		t.Fatalf("expected ErrNotMember got %v", err)
	}
	if err := svc.Delete(ctx, group.ID, "u1"); !errors.Is(err, ErrGroupNotEmpty) {
		t.Fatalf("expected ErrGroupNotEmpty got %v", err)
	}

	// Once the other member leaves, delete succeeds.
	if err := svc.Leave(ctx, group.ID, "u2"); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if err := svc.Delete(ctx, group.ID, "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, group.ID, ""); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound after delete, got %v", err)
	}
}

func TestMembersCachedUntilMembershipChanges(t *testing.T) {
	ctx := context.Background()
	store := newFakeGroupStore()
	svc, _ := newTestService(store)

	group, err := svc.Create(ctx, "g", "u1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	first, err := svc.Members(ctx, group.ID)
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 member got %d", len(first))
	}

	// Mutate the store directly: a cached roster must hide it.
	store.members[group.ID]["ghost"] = models.GroupMember{GroupID: group.ID, UserID: "ghost"}

	cached, err := svc.Members(ctx, group.ID)
	if err != nil {
		t.Fatalf("cached members: %v", err)
	}
	if len(cached) != 1 {
		t.Fatalf("expected cached roster of 1, got %d", len(cached))
	}

	if err := svc.Join(ctx, group.ID, "u2"); err != nil {
		t.Fatalf("join: %v", err)
	}

	fresh, err := svc.Members(ctx, group.ID)
	if err != nil {
		t.Fatalf("fresh members: %v", err)
	}
	if len(fresh) != 3 {
		t.Fatalf("expected refetched roster of 3, got %d", len(fresh))
	}
}

func TestMemberIDs(t *testing.T) {
	ctx := context.Background()
	store := newFakeGroupStore()
	svc, _ := newTestService(store)

	group, err := svc.Create(ctx, "g", "u1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Join(ctx, group.ID, "u2"); err != nil {
		t.Fatalf("join: %v", err)
	}

	ids, err := svc.MemberIDs(ctx, group.ID)
	if err != nil {
		t.Fatalf("member ids: %v", err)
	}
	if len(ids) != 2 || ids[0] != "u1" || ids[1] != "u2" {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestUserGroupsSkipsVanishedGroups(t *testing.T) {
	ctx := context.Background()
	store := newFakeGroupStore()
	svc, _ := newTestService(store)

	g1, err := svc.Create(ctx, "g1", "u1")
	if err != nil {
		t.Fatalf("create g1: %v", err)
	}
	g2, err := svc.Create(ctx, "g2", "u1")
	if err != nil {
		t.Fatalf("create g2: %v", err)
	}

	// Simulate a group row vanishing while the membership row lingers.
	delete(store.groups, g2.ID)

	groups, err := svc.UserGroups(ctx, "u1")
	if err != nil {
		t.Fatalf("user groups: %v", err)
	}
	if len(groups) != 1 || groups[0].ID != g1.ID {
		t.Fatalf("expected only surviving group, got %+v", groups)
	}
}

func TestGetServesFromCachedUserGroups(t *testing.T) {
	ctx := context.Background()
	store := newFakeGroupStore()
	svc, memory := newTestService(store)

	group, err := svc.Create(ctx, "g", "u1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.UserGroups(ctx, "u1"); err != nil {
		t.Fatalf("user groups: %v", err)
	}

	// Rename in the store without invalidating: Get must serve the
	// cached copy from the user's group list.
	renamed := store.groups[group.ID]
	renamed.Name = "renamed"
	store.groups[group.ID] = renamed

	got, err := svc.Get(ctx, group.ID, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "g" {
		t.Fatalf("expected cached name %q, got %q", "g", got.Name)
	}

	// Once the cached list is gone the store copy wins.
	memory.Flush(ctx)
	got, err = svc.Get(ctx, group.ID, "u1")
	if err != nil {
		t.Fatalf("get after flush: %v", err)
	}
	if got.Name != "renamed" {
		t.Fatalf("expected fresh name after flush, got %q", got.Name)
	}
}

// Package groups manages group rosters. A group always has at least one
// member: the creator joins on creation, leaving as the last member
// removes the group itself.
package groups

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/snapgroups/backend/internal/cache"
	"github.com/snapgroups/backend/internal/models"
	"github.com/snapgroups/backend/internal/repositories"
)

var (
	// ErrGroupNotFound indicates no group exists with the given id.
	ErrGroupNotFound = errors.New("group not found")
	// ErrNotMember indicates the user does not belong to the group.
	ErrNotMember = errors.New("user is not a group member")
	// ErrAlreadyMember indicates the user already belongs to the group.
	ErrAlreadyMember = errors.New("user is already a group member")
	// ErrGroupNotEmpty indicates a delete was attempted while other
	// members remain; they should leave instead.
	ErrGroupNotEmpty = errors.New("group still has other members")
)

// Store captures the persistence operations required by the group service.
type Store interface {
	Create(ctx context.Context, group models.Group) error
	Get(ctx context.Context, groupID string) (models.Group, error)
	Delete(ctx context.Context, groupID string) error
	AddMember(ctx context.Context, member models.GroupMember) error
	// RemoveMember also drops the group when it removes the last
	// membership, atomically with the removal.
	RemoveMember(ctx context.Context, groupID, userID string) error
	Members(ctx context.Context, groupID string) ([]models.GroupMember, error)
	MembershipsForUser(ctx context.Context, userID string) ([]models.GroupMember, error)
}

// Service manages groups and their membership, keeping the dependent
// cached views coherent on every mutation.
type Service struct {
	store      Store
	cache      cache.Store
	invalidate *cache.Invalidator
	logger     *slog.Logger
	NowFunc    func() time.Time
}

// NewService wires a group service from its collaborators.
func NewService(store Store, cacheStore cache.Store, invalidate *cache.Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, cache: cacheStore, invalidate: invalidate, logger: logger}
}

// Create inserts a new group with the creator as its first member.
func (s *Service) Create(ctx context.Context, name, createdBy string) (models.Group, error) {
	now := s.now()
	group := models.Group{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		CreatedBy: createdBy,
	}

	if err := s.store.Create(ctx, group); err != nil {
		return models.Group{}, fmt.Errorf("create group: %w", err)
	}

	member := models.GroupMember{GroupID: group.ID, UserID: createdBy, JoinedAt: now}
	if err := s.store.AddMember(ctx, member); err != nil {
		return models.Group{}, fmt.Errorf("add creator membership: %w", err)
	}

	s.invalidate.MembershipChanged(ctx, group.ID, createdBy)
	return group, nil
}

// Get fetches a single group, serving from the user's cached group list
// when it already contains the group.
func (s *Service) Get(ctx context.Context, groupID, userID string) (models.Group, error) {
	if userID != "" {
		if cached, ok := cache.GetJSON[[]models.Group](ctx, s.cache, cache.UserGroupsKey(userID)); ok {
			for _, group := range cached {
				if group.ID == groupID {
					return group, nil
				}
			}
		}
	}

	group, err := s.store.Get(ctx, groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Group{}, ErrGroupNotFound
		}
		return models.Group{}, fmt.Errorf("fetch group: %w", err)
	}

	return group, nil
}

// Join adds a user to the group's roster.
func (s *Service) Join(ctx context.Context, groupID, userID string) error {
	member := models.GroupMember{GroupID: groupID, UserID: userID, JoinedAt: s.now()}

	if err := s.store.AddMember(ctx, member); err != nil {
		switch {
		case errors.Is(err, repositories.ErrConflict):
			return ErrAlreadyMember
		case errors.Is(err, repositories.ErrNotFound):
			return ErrGroupNotFound
		}
		return fmt.Errorf("add group member: %w", err)
	}

	s.invalidate.MembershipChanged(ctx, groupID, userID)
	return nil
}

// Leave removes the user's membership. The store drops the group row in
// the same transaction when the last member leaves; a group never
// survives with zero members.
func (s *Service) Leave(ctx context.Context, groupID, userID string) error {
	if err := s.store.RemoveMember(ctx, groupID, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotMember
		}
		return fmt.Errorf("remove group member: %w", err)
	}

	s.invalidate.MembershipChanged(ctx, groupID, userID)
	s.invalidate.SnapsChanged(ctx, groupID)
	return nil
}

// Delete removes the group entirely. It is only valid while the caller
// is the sole remaining member; with others present the caller should
// leave instead.
func (s *Service) Delete(ctx context.Context, groupID, userID string) error {
	members, err := s.store.Members(ctx, groupID)
	if err != nil {
		return fmt.Errorf("fetch group members: %w", err)
	}

	isMember := false
	for _, member := range members {
		if member.UserID == userID {
			isMember = true
			break
		}
	}
	if !isMember {
		return ErrNotMember
	}
	if len(members) > 1 {
		return ErrGroupNotEmpty
	}

	if err := s.store.Delete(ctx, groupID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrGroupNotFound
		}
		return fmt.Errorf("delete group: %w", err)
	}

	s.invalidate.MembershipChanged(ctx, groupID, userID)
	s.invalidate.SnapsChanged(ctx, groupID)
	return nil
}

// Members returns the group's roster, cached per group.
func (s *Service) Members(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	key := cache.GroupMembersKey(groupID)
	if members, ok := cache.GetJSON[[]models.GroupMember](ctx, s.cache, key); ok {
		return members, nil
	}

	members, err := s.store.Members(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("fetch group members: %w", err)
	}

	cache.SetJSON(ctx, s.cache, key, members)
	return members, nil
}

// MemberIDs resolves just the user ids on the roster. Implements the
// notification fan-out's member source.
func (s *Service) MemberIDs(ctx context.Context, groupID string) ([]string, error) {
	members, err := s.Members(ctx, groupID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(members))
	for _, member := range members {
		ids = append(ids, member.UserID)
	}
	return ids, nil
}

// UserGroups resolves every group the user belongs to, cached per user.
func (s *Service) UserGroups(ctx context.Context, userID string) ([]models.Group, error) {
	key := cache.UserGroupsKey(userID)
	if groups, ok := cache.GetJSON[[]models.Group](ctx, s.cache, key); ok {
		return groups, nil
	}

	memberships, err := s.store.MembershipsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch user memberships: %w", err)
	}

	groups := make([]models.Group, 0, len(memberships))
	for _, membership := range memberships {
		group, err := s.store.Get(ctx, membership.GroupID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("fetch group %s: %w", membership.GroupID, err)
		}
		groups = append(groups, group)
	}

	cache.SetJSON(ctx, s.cache, key, groups)
	return groups, nil
}

func (s *Service) now() time.Time {
	if s.NowFunc != nil {
		return s.NowFunc()
	}
	return time.Now().UTC()
}

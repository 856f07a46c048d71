package cache

import (
	"context"

	"github.com/snapgroups/backend/internal/models"
)

// Invalidator centralizes cache invalidation behind named mutation
// events. Services report what changed; the invalidator knows every
// cached view derived from that data and clears them all, so a new
// cached view only needs to be registered here once.
type Invalidator struct {
	store Store
}

// NewInvalidator returns an Invalidator clearing entries from store.
func NewInvalidator(store Store) *Invalidator {
	return &Invalidator{store: store}
}

// FriendshipChanged clears both parties' friend lists for every status
// qualifier after a request is sent, accepted, or rejected.
func (i *Invalidator) FriendshipChanged(ctx context.Context, userID1, userID2 string) {
	for _, userID := range []string{userID1, userID2} {
		for _, status := range append(models.FriendStatuses, models.FriendStatusAll) {
			i.store.Delete(ctx, FriendsKey(userID, status))
		}
	}
}

// MembershipChanged clears the group's roster and each affected user's
// group list after a member joins or leaves, or the group is created
// or deleted.
func (i *Invalidator) MembershipChanged(ctx context.Context, groupID string, userIDs ...string) {
	i.store.Delete(ctx, GroupMembersKey(groupID))
	for _, userID := range userIDs {
		i.store.Delete(ctx, UserGroupsKey(userID))
	}
}

// SnapsChanged clears the group's snap list after an upload or delete.
func (i *Invalidator) SnapsChanged(ctx context.Context, groupID string) {
	i.store.Delete(ctx, GroupSnapsKey(groupID))
}

// ProfileChanged clears a user's cached profile after a username or
// avatar update. Copies embedded in other users' friend lists are left
// to their own FriendshipChanged events; that staleness is accepted.
func (i *Invalidator) ProfileChanged(ctx context.Context, userID string) {
	i.store.Delete(ctx, ProfileKey(userID))
}

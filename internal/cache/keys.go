package cache

import "fmt"

// Semantic cache keys. Each key identifies one cached view of the
// remote store; the invalidator maps mutations onto the keys they
// make stale.

// ProfileKey caches a single profile row.
func ProfileKey(userID string) string {
	return fmt.Sprintf("profile_%s", userID)
}

// FriendsKey caches the resolved friend list for a user, qualified by
// status ("pending", "accepted", "blocked", or "all").
func FriendsKey(userID, status string) string {
	return fmt.Sprintf("friends_%s_%s", userID, status)
}

// GroupMembersKey caches a group's membership roster.
func GroupMembersKey(groupID string) string {
	return fmt.Sprintf("group_members_%s", groupID)
}

// UserGroupsKey caches the resolved list of groups a user belongs to.
func UserGroupsKey(userID string) string {
	return fmt.Sprintf("user_groups_%s", userID)
}

// GroupSnapsKey caches the full snap list for a group.
func GroupSnapsKey(groupID string) string {
	return fmt.Sprintf("group_snaps_%s", groupID)
}

// SnapURLKey caches the resolved viewable URL for a stored object.
// Objects are immutable, so these entries are never invalidated.
func SnapURLKey(storagePath string) string {
	return fmt.Sprintf("snap_url_%s", storagePath)
}

package cache

import (
	"context"
	"testing"
)

func seedStore(ctx context.Context, store *MemoryStore, keys ...string) {
	for _, key := range keys {
		store.Set(ctx, key, []byte("cached"))
	}
}

func assertMissing(t *testing.T, store *MemoryStore, keys ...string) {
	t.Helper()
	for _, key := range keys {
		if _, ok := store.Get(context.Background(), key); ok {
			t.Fatalf("expected key %q to be invalidated", key)
		}
	}
}

func assertPresent(t *testing.T, store *MemoryStore, keys ...string) {
	t.Helper()
	for _, key := range keys {
		if _, ok := store.Get(context.Background(), key); !ok {
			t.Fatalf("expected key %q to survive", key)
		}
	}
}

func TestFriendshipChangedClearsBothParties(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	seedStore(ctx, store,
		FriendsKey("u1", "pending"),
		FriendsKey("u1", "accepted"),
		FriendsKey("u1", "blocked"),
		FriendsKey("u1", "all"),
		FriendsKey("u2", "accepted"),
		FriendsKey("u3", "accepted"),
		ProfileKey("u1"),
	)

	NewInvalidator(store).FriendshipChanged(ctx, "u1", "u2")

	assertMissing(t, store,
		FriendsKey("u1", "pending"),
		FriendsKey("u1", "accepted"),
		FriendsKey("u1", "blocked"),
		FriendsKey("u1", "all"),
		FriendsKey("u2", "accepted"),
	)
	assertPresent(t, store, FriendsKey("u3", "accepted"), ProfileKey("u1"))
}

func TestMembershipChangedClearsRosterAndUserLists(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	seedStore(ctx, store,
		GroupMembersKey("g1"),
		GroupMembersKey("g2"),
		UserGroupsKey("u1"),
		UserGroupsKey("u2"),
		GroupSnapsKey("g1"),
	)

	NewInvalidator(store).MembershipChanged(ctx, "g1", "u1")

	assertMissing(t, store, GroupMembersKey("g1"), UserGroupsKey("u1"))
	assertPresent(t, store, GroupMembersKey("g2"), UserGroupsKey("u2"), GroupSnapsKey("g1"))
}

func TestSnapsChangedClearsSnapList(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	seedStore(ctx, store, GroupSnapsKey("g1"), GroupSnapsKey("g2"), SnapURLKey("g1/a.jpg"))

	NewInvalidator(store).SnapsChanged(ctx, "g1")

	assertMissing(t, store, GroupSnapsKey("g1"))
	// Resolved object URLs are immutable and must survive snap churn.
	assertPresent(t, store, GroupSnapsKey("g2"), SnapURLKey("g1/a.jpg"))
}

func TestProfileChangedClearsOnlyProfile(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	seedStore(ctx, store, ProfileKey("u1"), ProfileKey("u2"), FriendsKey("u1", "accepted"))

	NewInvalidator(store).ProfileChanged(ctx, "u1")

	assertMissing(t, store, ProfileKey("u1"))
	assertPresent(t, store, ProfileKey("u2"), FriendsKey("u1", "accepted"))
}

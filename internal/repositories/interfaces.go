package repositories

import (
	"context"
	"time"

	"github.com/snapgroups/backend/internal/models"
)

// AccountRepository defines data access for login accounts.
type AccountRepository interface {
	Create(ctx context.Context, account models.Account) error
	FindByEmail(ctx context.Context, email string) (models.Account, error)
}

// ProfileRepository defines data access for user profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile models.Profile) error
	Get(ctx context.Context, userID string) (models.Profile, error)
	Search(ctx context.Context, usernameFragment string) ([]models.Profile, error)
	UpdateUsername(ctx context.Context, userID, username string) error
	UpdateAvatarURL(ctx context.Context, userID, avatarURL string) error
}

// FriendRepository defines data access for friendship rows. Rows are
// keyed by the ordered requester/recipient pair; FindPair looks the
// unordered pair up in either direction.
type FriendRepository interface {
	Upsert(ctx context.Context, friendship models.Friendship) error
	FindPair(ctx context.Context, userIDA, userIDB string) (models.Friendship, error)
	Accept(ctx context.Context, requesterID, recipientID string, at time.Time) error
	Delete(ctx context.Context, requesterID, recipientID string) error
	ListForUser(ctx context.Context, userID, status string) ([]models.Friendship, error)
}

// GroupRepository defines data access for groups and their membership rows.
type GroupRepository interface {
	Create(ctx context.Context, group models.Group) error
	Get(ctx context.Context, groupID string) (models.Group, error)
	Delete(ctx context.Context, groupID string) error
	AddMember(ctx context.Context, member models.GroupMember) error
	// RemoveMember drops the group row along with the last membership,
	// in one transaction.
	RemoveMember(ctx context.Context, groupID, userID string) error
	Members(ctx context.Context, groupID string) ([]models.GroupMember, error)
	MembershipsForUser(ctx context.Context, userID string) ([]models.GroupMember, error)
}

// SnapRepository defines data access for snap metadata rows.
type SnapRepository interface {
	Create(ctx context.Context, snap models.Snap) error
	Get(ctx context.Context, snapID string) (models.Snap, error)
	ListForGroup(ctx context.Context, groupID string) ([]models.Snap, error)
	Delete(ctx context.Context, snapID, uploaderUserID string) error
}

// SubscriptionRepository defines data access for push subscriptions.
type SubscriptionRepository interface {
	Upsert(ctx context.Context, sub models.Subscription) error
	Delete(ctx context.Context, subscriptionID string) error
	ListForUsers(ctx context.Context, userIDs []string) ([]models.Subscription, error)
}

package handlers

import (
	"context"

	"github.com/snapgroups/backend/internal/models"
	"github.com/snapgroups/backend/internal/push"
)

// AccountStore captures the persistence operations required by the auth handlers.
type AccountStore interface {
	Create(ctx context.Context, account models.Account) error
	FindByEmail(ctx context.Context, email string) (models.Account, error)
}

// ProfileCreator creates the profile row that accompanies a new account.
type ProfileCreator interface {
	Create(ctx context.Context, profile models.Profile) error
}

// SessionManager issues, refreshes, and revokes authentication tokens.
type SessionManager interface {
	Issue(ctx context.Context, userID string) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Revoke(ctx context.Context, refreshToken string)
}

// CacheFlusher drops the entire local cache. Used on logout.
type CacheFlusher interface {
	Flush(ctx context.Context)
}

// ProfileService captures operations required by the profile handlers.
type ProfileService interface {
	Get(ctx context.Context, userID string) (models.Profile, error)
	Search(ctx context.Context, usernameFragment string) ([]models.Profile, error)
	UpdateUsername(ctx context.Context, userID, username string) (models.Profile, error)
	UpdateAvatarURL(ctx context.Context, userID, avatarURL string) (models.Profile, error)
}

// FriendService captures operations required by the friend handlers.
type FriendService interface {
	Send(ctx context.Context, senderID, recipientID string) error
	Accept(ctx context.Context, friendID, userID string) error
	Reject(ctx context.Context, friendID, userID string) error
	List(ctx context.Context, userID, status string) ([]models.FriendEntry, error)
}

// GroupService captures operations required by the group handlers.
type GroupService interface {
	Create(ctx context.Context, name, createdBy string) (models.Group, error)
	Get(ctx context.Context, groupID, userID string) (models.Group, error)
	Join(ctx context.Context, groupID, userID string) error
	Leave(ctx context.Context, groupID, userID string) error
	Delete(ctx context.Context, groupID, userID string) error
	Members(ctx context.Context, groupID string) ([]models.GroupMember, error)
	UserGroups(ctx context.Context, userID string) ([]models.Group, error)
}

// SnapService captures operations required by the snap handlers.
type SnapService interface {
	Upload(ctx context.Context, groupID, userID, imageDataURL, message string, messageYLevel float64) (models.Snap, error)
	List(ctx context.Context, groupID string, count int) ([]models.Snap, error)
	Get(ctx context.Context, snapID string) (models.Snap, error)
	URL(ctx context.Context, storagePath string) (string, error)
	Delete(ctx context.Context, snapID, userID string) error
}

// SubscriptionStore captures persistence for push subscription handlers.
type SubscriptionStore interface {
	Upsert(ctx context.Context, sub models.Subscription) error
	Delete(ctx context.Context, subscriptionID string) error
}

// PushSender exposes single-endpoint delivery and the public VAPID key.
type PushSender interface {
	Send(ctx context.Context, sub models.Subscription, payload push.Payload) error
	VAPIDPublicKey() string
}

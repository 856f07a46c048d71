package models

import "time"

// Friendship status values. "all" is a query qualifier, not a stored status.
const (
	FriendStatusPending  = "pending"
	FriendStatusAccepted = "accepted"
	FriendStatusBlocked  = "blocked"
	FriendStatusAll      = "all"
)

// FriendStatuses lists every stored friendship status.
var FriendStatuses = []string{FriendStatusPending, FriendStatusAccepted, FriendStatusBlocked}

// Account represents an authenticated login within the Snapgroups platform.
type Account struct {
	ID        string
	Email     string
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile holds the public-facing identity for an account. One profile
// exists per account, created when the account signs up.
type Profile struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	FullName  string     `json:"fullName"`
	AvatarURL string     `json:"avatarUrl"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Friendship is a relationship row keyed by the ordered pair
// (UserID1, UserID2) where UserID1 is the original requester. At most
// one row exists per unordered pair of users.
type Friendship struct {
	UserID1     string     `json:"userId1"`
	UserID2     string     `json:"userId2"`
	Status      string     `json:"status"`
	RequestedAt time.Time  `json:"requestedAt"`
	AcceptedAt  *time.Time `json:"acceptedAt,omitempty"`
}

// Other returns the party opposite to userID.
func (f Friendship) Other(userID string) string {
	if f.UserID1 == userID {
		return f.UserID2
	}
	return f.UserID1
}

// FriendEntry pairs a friendship row with the other party's profile as
// seen from a particular user's perspective.
type FriendEntry struct {
	Friendship  Friendship `json:"friendship"`
	Profile     Profile    `json:"profile"`
	IsRequester bool       `json:"isRequester"`
}

// Group is a named collection of users sharing a snap feed.
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
}

// GroupMember records a user's membership in a group.
type GroupMember struct {
	GroupID  string    `json:"groupId"`
	UserID   string    `json:"userId"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Snap is an uploaded image record scoped to one group. The stored
// object at StorageObjectPath is immutable once written.
type Snap struct {
	ID                string    `json:"id"`
	GroupID           string    `json:"groupId"`
	UploaderUserID    string    `json:"uploaderUserId"`
	StorageObjectPath string    `json:"storageObjectPath"`
	CreatedAt         time.Time `json:"createdAt"`
	Message           string    `json:"message,omitempty"`
	MessageYLevel     float64   `json:"messageYLevel,omitempty"`
}

// SubscriptionKeys carries the client keys required to encrypt a push
// message for a subscription.
type SubscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// Subscription is a per-device push registration. The ID is generated
// by the device and re-used on re-subscribe, so subscribing twice from
// the same device replaces the previous row.
type Subscription struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Endpoint  string           `json:"endpoint"`
	Keys      SubscriptionKeys `json:"keys"`
	CreatedAt time.Time        `json:"createdAt"`
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

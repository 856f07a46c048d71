// Package friends implements the friendship lifecycle: requests move
// from pending to accepted, or are deleted on rejection. At most one
// row exists per unordered pair of users.
package friends

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/snapgroups/backend/internal/cache"
	"github.com/snapgroups/backend/internal/models"
	"github.com/snapgroups/backend/internal/repositories"
)

var (
	// ErrSelfRequest indicates a user tried to befriend themselves.
	ErrSelfRequest = errors.New("cannot send a friend request to yourself")
	// ErrAlreadyFriends indicates the pair already has an accepted friendship.
	ErrAlreadyFriends = errors.New("already friends")
	// ErrRequestPending indicates the other party already has a request
	// pending toward the sender.
	ErrRequestPending = errors.New("friend request already pending from the other user")
	// ErrBlocked indicates the pair has a blocked relationship; no new
	// request may replace it.
	ErrBlocked = errors.New("relationship is blocked")
	// ErrRequestNotFound indicates no matching request row exists.
	ErrRequestNotFound = errors.New("friend request not found")
)

// Store captures the persistence operations required by the friend service.
type Store interface {
	Upsert(ctx context.Context, friendship models.Friendship) error
	FindPair(ctx context.Context, userIDA, userIDB string) (models.Friendship, error)
	Accept(ctx context.Context, requesterID, recipientID string, at time.Time) error
	Delete(ctx context.Context, requesterID, recipientID string) error
	ListForUser(ctx context.Context, userID, status string) ([]models.Friendship, error)
}

// ProfileResolver resolves the other party's profile for friend listings.
type ProfileResolver interface {
	Get(ctx context.Context, userID string) (models.Profile, error)
}

// Service drives the friendship state machine and keeps both parties'
// cached friend lists coherent.
type Service struct {
	store      Store
	profiles   ProfileResolver
	cache      cache.Store
	invalidate *cache.Invalidator
	logger     *slog.Logger
	NowFunc    func() time.Time
}

// NewService wires a friend service from its collaborators.
func NewService(store Store, profiles ProfileResolver, cacheStore cache.Store, invalidate *cache.Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:      store,
		profiles:   profiles,
		cache:      cacheStore,
		invalidate: invalidate,
		logger:     logger,
	}
}

// Send creates a pending request from senderID to recipientID. Sending
// again while the same-direction request is still pending refreshes the
// single existing row; a reverse-direction pending request, an accepted
// friendship, or a blocked relationship refuse the send.
func (s *Service) Send(ctx context.Context, senderID, recipientID string) error {
	if senderID == recipientID {
		return ErrSelfRequest
	}

	existing, err := s.store.FindPair(ctx, senderID, recipientID)
	switch {
	case err == nil:
		switch existing.Status {
		case models.FriendStatusAccepted:
			return ErrAlreadyFriends
		case models.FriendStatusBlocked:
			return ErrBlocked
		case models.FriendStatusPending:
			if existing.UserID1 != senderID {
				return ErrRequestPending
			}
			// Same-direction re-send falls through to the upsert below.
		}
	case errors.Is(err, repositories.ErrNotFound):
		// No relationship yet.
	default:
		return fmt.Errorf("check existing relationship: %w", err)
	}

	friendship := models.Friendship{
		UserID1:     senderID,
		UserID2:     recipientID,
		Status:      models.FriendStatusPending,
		RequestedAt: s.now(),
	}

	if err := s.store.Upsert(ctx, friendship); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			// A reverse-direction request landed between the pair check
			// and the insert.
			return ErrRequestPending
		}
		return fmt.Errorf("send friend request: %w", err)
	}

	s.invalidate.FriendshipChanged(ctx, senderID, recipientID)
	return nil
}

// Accept transitions the pending request sent by friendID to userID
// into an accepted friendship. Only the recipient may accept.
func (s *Service) Accept(ctx context.Context, friendID, userID string) error {
	if err := s.store.Accept(ctx, friendID, userID, s.now()); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("accept friend request: %w", err)
	}

	s.invalidate.FriendshipChanged(ctx, friendID, userID)
	return nil
}

// Reject deletes the request sent by friendID to userID. Removal also
// covers cancelling an accepted friendship from the recipient's side.
func (s *Service) Reject(ctx context.Context, friendID, userID string) error {
	if err := s.store.Delete(ctx, friendID, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("reject friend request: %w", err)
	}

	s.invalidate.FriendshipChanged(ctx, friendID, userID)
	return nil
}

// List returns the user's friendships filtered by status ("all" for
// every row), each paired with the other party's profile. Results are
// cached per (user, status).
func (s *Service) List(ctx context.Context, userID, status string) ([]models.FriendEntry, error) {
	if status == "" {
		status = models.FriendStatusAccepted
	}

	key := cache.FriendsKey(userID, status)
	if entries, ok := cache.GetJSON[[]models.FriendEntry](ctx, s.cache, key); ok {
		return entries, nil
	}

	friendships, err := s.store.ListForUser(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("list friendships: %w", err)
	}

	entries := make([]models.FriendEntry, 0, len(friendships))
	for _, friendship := range friendships {
		profile, err := s.profiles.Get(ctx, friendship.Other(userID))
		if err != nil {
			return nil, fmt.Errorf("resolve friend profile: %w", err)
		}

		entries = append(entries, models.FriendEntry{
			Friendship:  friendship,
			Profile:     profile,
			IsRequester: friendship.UserID1 == userID,
		})
	}

	cache.SetJSON(ctx, s.cache, key, entries)
	return entries, nil
}

// Count reports how many friendships the user has in the given status.
func (s *Service) Count(ctx context.Context, userID, status string) (int, error) {
	entries, err := s.List(ctx, userID, status)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

func (s *Service) now() time.Time {
	if s.NowFunc != nil {
		return s.NowFunc()
	}
	return time.Now().UTC()
}

// Package profiles serves user profiles through the local cache.
package profiles

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/snapgroups/backend/internal/cache"
	"github.com/snapgroups/backend/internal/models"
)

// Store captures the persistence operations required by the profile service.
type Store interface {
	Get(ctx context.Context, userID string) (models.Profile, error)
	Search(ctx context.Context, usernameFragment string) ([]models.Profile, error)
	UpdateUsername(ctx context.Context, userID, username string) error
	UpdateAvatarURL(ctx context.Context, userID, avatarURL string) error
}

// Service resolves and mutates profiles, keeping the cache coherent.
type Service struct {
	store      Store
	cache      cache.Store
	invalidate *cache.Invalidator
	logger     *slog.Logger
}

// NewService wires a profile service from its collaborators.
func NewService(store Store, cacheStore cache.Store, invalidate *cache.Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, cache: cacheStore, invalidate: invalidate, logger: logger}
}

// Get returns a user's profile, serving from the cache when present.
func (s *Service) Get(ctx context.Context, userID string) (models.Profile, error) {
	key := cache.ProfileKey(userID)
	if profile, ok := cache.GetJSON[models.Profile](ctx, s.cache, key); ok {
		return profile, nil
	}

	profile, err := s.store.Get(ctx, userID)
	if err != nil {
		return models.Profile{}, fmt.Errorf("fetch profile: %w", err)
	}

	cache.SetJSON(ctx, s.cache, key, profile)
	return profile, nil
}

// Search finds profiles by partial username match. Results always come
// from the store: the match set shifts with every signup and rename, and
// no invalidation event covers it.
func (s *Service) Search(ctx context.Context, usernameFragment string) ([]models.Profile, error) {
	profiles, err := s.store.Search(ctx, usernameFragment)
	if err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}
	return profiles, nil
}

// UpdateUsername changes the user's display name and returns the fresh profile.
func (s *Service) UpdateUsername(ctx context.Context, userID, username string) (models.Profile, error) {
	if err := s.store.UpdateUsername(ctx, userID, username); err != nil {
		return models.Profile{}, fmt.Errorf("update username: %w", err)
	}

	s.invalidate.ProfileChanged(ctx, userID)
	return s.Get(ctx, userID)
}

// UpdateAvatarURL changes the user's avatar and returns the fresh profile.
func (s *Service) UpdateAvatarURL(ctx context.Context, userID, avatarURL string) (models.Profile, error) {
	if err := s.store.UpdateAvatarURL(ctx, userID, avatarURL); err != nil {
		return models.Profile{}, fmt.Errorf("update avatar: %w", err)
	}

	s.invalidate.ProfileChanged(ctx, userID)
	return s.Get(ctx, userID)
}

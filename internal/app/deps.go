package app

import (
	"log/slog"
	"time"

	"github.com/snapgroups/backend/internal/auth"
	"github.com/snapgroups/backend/internal/cache"
	"github.com/snapgroups/backend/internal/config"
	"github.com/snapgroups/backend/internal/db"
	"github.com/snapgroups/backend/internal/friends"
	"github.com/snapgroups/backend/internal/groups"
	"github.com/snapgroups/backend/internal/handlers"
	"github.com/snapgroups/backend/internal/middleware"
	"github.com/snapgroups/backend/internal/profiles"
	"github.com/snapgroups/backend/internal/push"
	"github.com/snapgroups/backend/internal/repositories"
	"github.com/snapgroups/backend/internal/snaps"
	"github.com/snapgroups/backend/internal/storage"
)

// cacheStore opens the durable on-disk cache, falling back to an
// in-memory store when no cache directory is configured.
func cacheStore(cfg config.Config, logger *slog.Logger) (cache.Store, error) {
	if cfg.CacheDir == "" {
		return cache.NewMemoryStore(), nil
	}
	return cache.OpenBadger(cfg.CacheDir, logger)
}

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(pool db.Pool, store cache.Store, objects *storage.S3Storage, cfg config.Config, logger *slog.Logger) handlers.Dependencies {
	invalidator := cache.NewInvalidator(store)

	accountRepo := repositories.NewPostgresAccountRepository(pool)
	profileRepo := repositories.NewPostgresProfileRepository(pool)
	friendRepo := repositories.NewPostgresFriendRepository(pool)
	groupRepo := repositories.NewPostgresGroupRepository(pool)
	snapRepo := repositories.NewPostgresSnapRepository(pool)
	subscriptionRepo := repositories.NewPostgresSubscriptionRepository(pool)
	sessionStore := repositories.NewPostgresSessionStore(pool)

	profileService := profiles.NewService(profileRepo, store, invalidator, logger)
	friendService := friends.NewService(friendRepo, profileService, store, invalidator, logger)
	groupService := groups.NewService(groupRepo, store, invalidator, logger)

	sender := push.NewWebPushSender(cfg.Push)
	notifier := push.NewNotifier(groupService, subscriptionRepo, sender, logger)

	snapService := snaps.NewService(snapRepo, objects, profileService, notifier, store, invalidator, cfg.SnapURLMode, cfg.SignedURLTTL, logger)

	return handlers.Dependencies{
		Accounts:       accountRepo,
		ProfileCreator: profileRepo,
		Sessions:       auth.NewManager(15*time.Minute, 24*time.Hour, sessionStore),
		Cache:          store,
		AuthLimiter:    middleware.NewIPRateLimiter(10, time.Minute, 5, 10*time.Minute),
		Profiles:       profileService,
		Friends:        friendService,
		Groups:         groupService,
		Snaps:          snapService,
		Subscriptions:  subscriptionRepo,
		Push:           sender,
	}
}

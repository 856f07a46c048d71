// Package snaps implements the upload and retrieval pipeline for group
// snaps: captured images land in object storage, metadata rows in the
// database, and viewable URLs come back out through the local cache.
package snaps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/snapgroups/backend/internal/cache"
	"github.com/snapgroups/backend/internal/config"
	"github.com/snapgroups/backend/internal/logging"
	"github.com/snapgroups/backend/internal/models"
	"github.com/snapgroups/backend/internal/push"
	"github.com/snapgroups/backend/internal/repositories"
)

// ErrSnapNotFound indicates no snap exists with the given id, or the
// caller is not its uploader.
var ErrSnapNotFound = errors.New("snap not found")

// fallbackUsername labels uploads whose profile could not be resolved.
const fallbackUsername = "Unknown"

// Store captures the persistence operations required by the snap service.
type Store interface {
	Create(ctx context.Context, snap models.Snap) error
	Get(ctx context.Context, snapID string) (models.Snap, error)
	ListForGroup(ctx context.Context, groupID string) ([]models.Snap, error)
	Delete(ctx context.Context, snapID, uploaderUserID string) error
}

// ObjectStorage stores and serves the binary snap images.
type ObjectStorage interface {
	Save(ctx context.Context, key string, contentType string, r io.Reader) (string, error)
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// ProfileResolver resolves the uploader's display name.
type ProfileResolver interface {
	Get(ctx context.Context, userID string) (models.Profile, error)
}

// Notifier fans the new-snap event out to the group's other members.
type Notifier interface {
	SnapPosted(ctx context.Context, uploaderID, uploaderUsername, groupID, message string) ([]push.Delivery, error)
}

// Service drives the snap pipeline.
type Service struct {
	store      Store
	storage    ObjectStorage
	profiles   ProfileResolver
	notifier   Notifier
	cache      cache.Store
	invalidate *cache.Invalidator
	logger     *slog.Logger

	urlMode      string
	signedURLTTL time.Duration

	NowFunc func() time.Time
}

// NewService wires a snap service from its collaborators.
func NewService(store Store, storage ObjectStorage, profiles ProfileResolver, notifier Notifier, cacheStore cache.Store, invalidate *cache.Invalidator, urlMode string, signedURLTTL time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if urlMode == "" {
		urlMode = config.SnapURLModeSigned
	}
	if signedURLTTL <= 0 {
		signedURLTTL = time.Hour
	}
	return &Service{
		store:        store,
		storage:      storage,
		profiles:     profiles,
		notifier:     notifier,
		cache:        cacheStore,
		invalidate:   invalidate,
		logger:       logger,
		urlMode:      urlMode,
		signedURLTTL: signedURLTTL,
	}
}

// Upload stores a captured image, records its metadata, and notifies
// the group's other members. Notification failures are logged but never
// fail the upload: the snap is already persisted by then, and delivery
// is best-effort per recipient.
func (s *Service) Upload(ctx context.Context, groupID, userID, imageDataURL, message string, messageYLevel float64) (models.Snap, error) {
	ctx, span := logging.StartSpan(ctx, "snaps.upload")
	defer span.End()

	username := fallbackUsername
	if profile, err := s.profiles.Get(ctx, userID); err == nil && profile.Username != "" {
		username = profile.Username
	}

	data, contentType, err := decodeDataURL(imageDataURL)
	if err != nil {
		return models.Snap{}, err
	}

	now := s.now()
	path := fmt.Sprintf("%s/%s_%d.jpg", groupID, uuid.NewString(), now.UnixMilli())

	storedPath, err := s.storage.Save(ctx, path, contentType, bytes.NewReader(data))
	if err != nil {
		return models.Snap{}, fmt.Errorf("store snap image: %w", err)
	}

	snap := models.Snap{
		ID:                uuid.NewString(),
		GroupID:           groupID,
		UploaderUserID:    userID,
		StorageObjectPath: storedPath,
		CreatedAt:         now,
		Message:           message,
		MessageYLevel:     messageYLevel,
	}

	if err := s.store.Create(ctx, snap); err != nil {
		return models.Snap{}, fmt.Errorf("create snap record: %w", err)
	}

	if s.notifier != nil {
		if _, err := s.notifier.SnapPosted(ctx, userID, username, groupID, message); err != nil {
			s.logger.Warn("snap notification fan-out failed", "groupId", groupID, "snapId", snap.ID, "error", err)
		}
	}

	s.invalidate.SnapsChanged(ctx, groupID)
	return snap, nil
}

// List returns a group's snaps, newest first. The cache stores the full
// fetched list: asking for fewer snaps than cached truncates, asking
// for more than cached (or for everything) refetches from the store.
func (s *Service) List(ctx context.Context, groupID string, count int) ([]models.Snap, error) {
	key := cache.GroupSnapsKey(groupID)
	if cached, ok := cache.GetJSON[[]models.Snap](ctx, s.cache, key); ok {
		if count > 0 && count <= len(cached) {
			return cached[:count], nil
		}
	}

	snaps, err := s.store.ListForGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("fetch group snaps: %w", err)
	}

	cache.SetJSON(ctx, s.cache, key, snaps)

	if count > 0 && count < len(snaps) {
		return snaps[:count], nil
	}
	return snaps, nil
}

// Get fetches a single snap by id.
func (s *Service) Get(ctx context.Context, snapID string) (models.Snap, error) {
	snap, err := s.store.Get(ctx, snapID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Snap{}, ErrSnapNotFound
		}
		return models.Snap{}, fmt.Errorf("fetch snap: %w", err)
	}
	return snap, nil
}

// URL resolves a storage path to a viewable URL: a time-limited signed
// link, or the downloaded object as an inline data URL depending on the
// configured mode. Objects are immutable so results are cached by path
// and never invalidated.
func (s *Service) URL(ctx context.Context, storagePath string) (string, error) {
	key := cache.SnapURLKey(storagePath)
	if url, ok := cache.GetJSON[string](ctx, s.cache, key); ok {
		return url, nil
	}

	var (
		url string
		err error
	)
	switch s.urlMode {
	case config.SnapURLModeData:
		var data []byte
		data, err = s.storage.Download(ctx, storagePath)
		if err == nil {
			url = encodeDataURL("image/jpeg", data)
		}
	default:
		url, err = s.storage.SignedURL(ctx, storagePath, s.signedURLTTL)
	}
	if err != nil {
		return "", fmt.Errorf("resolve snap url: %w", err)
	}

	cache.SetJSON(ctx, s.cache, key, url)
	return url, nil
}

// Delete removes a snap's metadata row and, best effort, its stored
// object. Ownership is enforced at the data layer: the delete only
// matches when userID is the uploader.
func (s *Service) Delete(ctx context.Context, snapID, userID string) error {
	snap, err := s.store.Get(ctx, snapID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrSnapNotFound
		}
		return fmt.Errorf("fetch snap: %w", err)
	}

	if err := s.store.Delete(ctx, snapID, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrSnapNotFound
		}
		return fmt.Errorf("delete snap: %w", err)
	}

	// An orphaned object is harmless; the metadata row is gone.
	if err := s.storage.Delete(ctx, snap.StorageObjectPath); err != nil {
		s.logger.Warn("delete snap object failed", "snapId", snapID, "path", snap.StorageObjectPath, "error", err)
	}

	s.invalidate.SnapsChanged(ctx, snap.GroupID)
	return nil
}

func (s *Service) now() time.Time {
	if s.NowFunc != nil {
		return s.NowFunc()
	}
	return time.Now().UTC()
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/snapgroups/backend/internal/logging"
	"github.com/snapgroups/backend/internal/models"
	"github.com/snapgroups/backend/internal/repositories"
)

// ProfileHandler provides profile lookup and update endpoints.
type ProfileHandler struct {
	Profiles ProfileService
}

type updateProfileRequest struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl"`
}

type profileResponse struct {
	Profile models.Profile `json:"profile"`
}

type profileSearchResponse struct {
	Profiles []models.Profile `json:"profiles"`
}

// Get handles GET /api/v1/profiles?userId=...
func (h ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		respondError(ctx, w, http.StatusBadRequest, "userId is required")
		return
	}

	profile, err := h.Profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "profile not found")
			return
		}
		logger.Error("fetch profile", "error", err, "userId", userID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	respondJSON(ctx, w, http.StatusOK, profileResponse{Profile: profile})
}

// Search handles GET /api/v1/profiles/search?username=...
// It backs the people picker: partial, case-insensitive username match.
func (h ProfileHandler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if username == "" {
		respondError(ctx, w, http.StatusBadRequest, "username is required")
		return
	}

	profiles, err := h.Profiles.Search(ctx, username)
	if err != nil {
		logger.Error("search profiles", "error", err, "username", username)
		respondError(ctx, w, http.StatusInternalServerError, "failed to search profiles")
		return
	}

	if profiles == nil {
		profiles = []models.Profile{}
	}
	respondJSON(ctx, w, http.StatusOK, profileSearchResponse{Profiles: profiles})
}

// UpdateUsername handles POST /api/v1/profiles/username.
func (h ProfileHandler) UpdateUsername(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, func(req updateProfileRequest) (string, string) {
		return req.Username, "username is required"
	}, h.Profiles.UpdateUsername)
}

// UpdateAvatar handles POST /api/v1/profiles/avatar.
func (h ProfileHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, func(req updateProfileRequest) (string, string) {
		return req.AvatarURL, "avatarUrl is required"
	}, h.Profiles.UpdateAvatarURL)
}

func (h ProfileHandler) update(w http.ResponseWriter, r *http.Request, field func(updateProfileRequest) (string, string), op func(ctx context.Context, userID, value string) (models.Profile, error)) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		respondError(ctx, w, http.StatusBadRequest, "userId is required")
		return
	}

	value, missing := field(req)
	value = strings.TrimSpace(value)
	if value == "" {
		respondError(ctx, w, http.StatusBadRequest, missing)
		return
	}

	profile, err := op(ctx, req.UserID, value)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			respondError(ctx, w, http.StatusNotFound, "profile not found")
		case errors.Is(err, repositories.ErrConflict):
			respondError(ctx, w, http.StatusConflict, "username already taken")
		default:
			logger.Error("update profile", "error", err, "userId", req.UserID)
			respondError(ctx, w, http.StatusInternalServerError, "failed to update profile")
		}
		return
	}

	respondJSON(ctx, w, http.StatusOK, profileResponse{Profile: profile})
}

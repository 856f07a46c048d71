package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/snapgroups/backend/internal/logging"
	"github.com/snapgroups/backend/internal/models"
	"github.com/snapgroups/backend/internal/snaps"
)

// SnapHandler provides snap upload and retrieval endpoints.
type SnapHandler struct {
	Snaps SnapService
}

type uploadSnapRequest struct {
	GroupID       string  `json:"groupId"`
	UserID        string  `json:"userId"`
	Image         string  `json:"image"`
	Message       string  `json:"message"`
	MessageYLevel float64 `json:"messageYLevel"`
}

type deleteSnapRequest struct {
	SnapID string `json:"snapId"`
	UserID string `json:"userId"`
}

type snapResponse struct {
	Snap models.Snap `json:"snap"`
}

type snapListResponse struct {
	Snaps []models.Snap `json:"snaps"`
}

// Upload handles POST /api/v1/snaps.
func (h SnapHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req uploadSnapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.GroupID = strings.TrimSpace(req.GroupID)
	req.UserID = strings.TrimSpace(req.UserID)
	if req.GroupID == "" || req.UserID == "" || req.Image == "" {
		respondError(ctx, w, http.StatusBadRequest, "groupId, userId, and image are required")
		return
	}

	snap, err := h.Snaps.Upload(ctx, req.GroupID, req.UserID, req.Image, req.Message, req.MessageYLevel)
	if err != nil {
		if errors.Is(err, snaps.ErrInvalidImage) {
			respondError(ctx, w, http.StatusBadRequest, "image must be a base64 data url")
			return
		}
		logger.Error("upload snap", "error", err, "groupId", req.GroupID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to upload snap")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, snapResponse{Snap: snap})
}

// List handles GET /api/v1/snaps?groupId=...&count=...
func (h SnapHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	groupID := strings.TrimSpace(r.URL.Query().Get("groupId"))
	if groupID == "" {
		respondError(ctx, w, http.StatusBadRequest, "groupId is required")
		return
	}

	count := 0
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(ctx, w, http.StatusBadRequest, "count must be a non-negative integer")
			return
		}
		count = parsed
	}

	list, err := h.Snaps.List(ctx, groupID, count)
	if err != nil {
		logger.Error("list snaps", "error", err, "groupId", groupID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to list snaps")
		return
	}
	if list == nil {
		list = []models.Snap{}
	}

	respondJSON(ctx, w, http.StatusOK, snapListResponse{Snaps: list})
}

// Get handles GET /api/v1/snaps/get?snapId=...
func (h SnapHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	snapID := strings.TrimSpace(r.URL.Query().Get("snapId"))
	if snapID == "" {
		respondError(ctx, w, http.StatusBadRequest, "snapId is required")
		return
	}

	snap, err := h.Snaps.Get(ctx, snapID)
	if err != nil {
		if errors.Is(err, snaps.ErrSnapNotFound) {
			respondError(ctx, w, http.StatusNotFound, "snap not found")
			return
		}
		logger.Error("fetch snap", "error", err, "snapId", snapID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch snap")
		return
	}

	respondJSON(ctx, w, http.StatusOK, snapResponse{Snap: snap})
}

// URL handles GET /api/v1/snaps/url?path=...
func (h SnapHandler) URL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	path := strings.TrimSpace(r.URL.Query().Get("path"))
	if path == "" {
		respondError(ctx, w, http.StatusBadRequest, "path is required")
		return
	}

	url, err := h.Snaps.URL(ctx, path)
	if err != nil {
		logger.Error("resolve snap url", "error", err, "path", path)
		respondError(ctx, w, http.StatusInternalServerError, "failed to resolve snap url")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"url": url})
}

// Delete handles POST /api/v1/snaps/delete.
func (h SnapHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req deleteSnapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.SnapID = strings.TrimSpace(req.SnapID)
	req.UserID = strings.TrimSpace(req.UserID)
	if req.SnapID == "" || req.UserID == "" {
		respondError(ctx, w, http.StatusBadRequest, "snapId and userId are required")
		return
	}

	if err := h.Snaps.Delete(ctx, req.SnapID, req.UserID); err != nil {
		if errors.Is(err, snaps.ErrSnapNotFound) {
			respondError(ctx, w, http.StatusNotFound, "snap not found")
			return
		}
		logger.Error("delete snap", "error", err, "snapId", req.SnapID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to delete snap")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

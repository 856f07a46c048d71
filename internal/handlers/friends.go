package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/snapgroups/backend/internal/friends"
	"github.com/snapgroups/backend/internal/logging"
	"github.com/snapgroups/backend/internal/models"
)

// FriendHandler provides friend request and listing endpoints.
type FriendHandler struct {
	Friends FriendService
}

type sendFriendRequest struct {
	SenderID    string `json:"senderId"`
	RecipientID string `json:"recipientId"`
}

type respondFriendRequest struct {
	FriendID string `json:"friendId"`
	UserID   string `json:"userId"`
}

type friendListResponse struct {
	Friends []models.FriendEntry `json:"friends"`
	Count   int                  `json:"count"`
}

// Send handles POST /api/v1/friends/request.
func (h FriendHandler) Send(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req sendFriendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.SenderID = strings.TrimSpace(req.SenderID)
	req.RecipientID = strings.TrimSpace(req.RecipientID)
	if req.SenderID == "" || req.RecipientID == "" {
		respondError(ctx, w, http.StatusBadRequest, "senderId and recipientId are required")
		return
	}

	if err := h.Friends.Send(ctx, req.SenderID, req.RecipientID); err != nil {
		switch {
		case errors.Is(err, friends.ErrSelfRequest):
			respondError(ctx, w, http.StatusBadRequest, err.Error())
		case errors.Is(err, friends.ErrAlreadyFriends),
			errors.Is(err, friends.ErrRequestPending),
			errors.Is(err, friends.ErrBlocked):
			respondError(ctx, w, http.StatusConflict, err.Error())
		default:
			logger.Error("send friend request", "error", err)
			respondError(ctx, w, http.StatusInternalServerError, "failed to send friend request")
		}
		return
	}

	respondJSON(ctx, w, http.StatusCreated, map[string]string{"status": models.FriendStatusPending})
}

// Accept handles POST /api/v1/friends/accept.
func (h FriendHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.Friends.Accept, models.FriendStatusAccepted)
}

// Reject handles POST /api/v1/friends/reject.
func (h FriendHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.Friends.Reject, "rejected")
}

// List handles GET /api/v1/friends?userId=...&status=...
func (h FriendHandler) List(w http.ResponseWriter, r *http.Request) {
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

	status := strings.TrimSpace(r.URL.Query().Get("status"))

	entries, err := h.Friends.List(ctx, userID, status)
	if err != nil {
		logger.Error("list friends", "error", err, "userId", userID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to list friends")
		return
	}
	if entries == nil {
		entries = []models.FriendEntry{}
	}

	respondJSON(ctx, w, http.StatusOK, friendListResponse{Friends: entries, Count: len(entries)})
}

func (h FriendHandler) respond(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, friendID, userID string) error, status string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req respondFriendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.FriendID = strings.TrimSpace(req.FriendID)
	req.UserID = strings.TrimSpace(req.UserID)
	if req.FriendID == "" || req.UserID == "" {
		respondError(ctx, w, http.StatusBadRequest, "friendId and userId are required")
		return
	}

	if err := op(ctx, req.FriendID, req.UserID); err != nil {
		if errors.Is(err, friends.ErrRequestNotFound) {
			respondError(ctx, w, http.StatusNotFound, "friend request not found")
			return
		}
		logger.Error("respond to friend request", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to update friend request")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": status})
}

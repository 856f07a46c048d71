package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/snapgroups/backend/internal/logging"
	"github.com/snapgroups/backend/internal/models"
	"github.com/snapgroups/backend/internal/push"
	"github.com/snapgroups/backend/internal/repositories"
)

// SubscriptionHandler manages push subscriptions and test deliveries.
type SubscriptionHandler struct {
	Subscriptions SubscriptionStore
	Sender        PushSender
	NowFunc       func() time.Time
}

type subscribeRequest struct {
	ID       string                  `json:"id"`
	UserID   string                  `json:"userId"`
	Endpoint string                  `json:"endpoint"`
	Keys     models.SubscriptionKeys `json:"keys"`
}

type unsubscribeRequest struct {
	ID string `json:"id"`
}

type testNotificationRequest struct {
	Endpoint string                  `json:"endpoint"`
	Keys     models.SubscriptionKeys `json:"keys"`
	Message  string                  `json:"message"`
}

// Subscribe handles POST /api/v1/push/subscribe. The id is the device's
// own generated subscription id, so re-subscribing replaces the row.
func (h SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.ID = strings.TrimSpace(req.ID)
	req.UserID = strings.TrimSpace(req.UserID)
	if req.ID == "" || req.UserID == "" || req.Endpoint == "" || req.Keys.P256dh == "" || req.Keys.Auth == "" {
		respondError(ctx, w, http.StatusBadRequest, "id, userId, endpoint, and keys are required")
		return
	}

	sub := models.Subscription{
		ID:        req.ID,
		UserID:    req.UserID,
		Endpoint:  req.Endpoint,
		Keys:      req.Keys,
		CreatedAt: h.now(),
	}

	if err := h.Subscriptions.Upsert(ctx, sub); err != nil {
		logger.Error("save push subscription", "error", err, "userId", req.UserID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to save subscription")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, sub)
}

// Unsubscribe handles POST /api/v1/push/unsubscribe.
func (h SubscriptionHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req unsubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" {
		respondError(ctx, w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.Subscriptions.Delete(ctx, req.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "subscription not found")
			return
		}
		logger.Error("delete push subscription", "error", err, "id", req.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to delete subscription")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// VAPIDKey handles GET /api/v1/push/vapid-key.
func (h SubscriptionHandler) VAPIDKey(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	respondJSON(r.Context(), w, http.StatusOK, map[string]string{"publicKey": h.Sender.VAPIDPublicKey()})
}

// Test handles POST /api/v1/push/test, delivering a test notification
// to a single endpoint.
func (h SubscriptionHandler) Test(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req testNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Endpoint == "" || req.Keys.P256dh == "" || req.Keys.Auth == "" {
		respondError(ctx, w, http.StatusBadRequest, "endpoint and keys are required")
		return
	}

	sub := models.Subscription{Endpoint: req.Endpoint, Keys: req.Keys}
	payload := push.Payload{Title: "Test Notification", Body: req.Message}

	if err := h.Sender.Send(ctx, sub, payload); err != nil {
		logger.Warn("test notification failed", "error", err)
		respondError(ctx, w, http.StatusBadGateway, "failed to deliver test notification")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]bool{"success": true})
}

func (h SubscriptionHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

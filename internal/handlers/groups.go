package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/snapgroups/backend/internal/groups"
	"github.com/snapgroups/backend/internal/logging"
	"github.com/snapgroups/backend/internal/models"
)

// GroupHandler provides group management endpoints.
type GroupHandler struct {
	Groups GroupService
}

type createGroupRequest struct {
	Name      string `json:"name"`
	CreatedBy string `json:"createdBy"`
}

type groupMembershipRequest struct {
	GroupID string `json:"groupId"`
	UserID  string `json:"userId"`
}

type groupResponse struct {
	Group models.Group `json:"group"`
}

type groupListResponse struct {
	Groups []models.Group `json:"groups"`
}

type memberListResponse struct {
	Members []models.GroupMember `json:"members"`
}

// Create handles POST /api/v1/groups.
func (h GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.CreatedBy = strings.TrimSpace(req.CreatedBy)
	if req.Name == "" || req.CreatedBy == "" {
		respondError(ctx, w, http.StatusBadRequest, "name and createdBy are required")
		return
	}

	group, err := h.Groups.Create(ctx, req.Name, req.CreatedBy)
	if err != nil {
		logger.Error("create group", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create group")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, groupResponse{Group: group})
}

// Get handles GET /api/v1/groups/get?groupId=...&userId=...
func (h GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	group, err := h.Groups.Get(ctx, groupID, strings.TrimSpace(r.URL.Query().Get("userId")))
	if err != nil {
		if errors.Is(err, groups.ErrGroupNotFound) {
			respondError(ctx, w, http.StatusNotFound, "group not found")
			return
		}
		logger.Error("fetch group", "error", err, "groupId", groupID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to fetch group")
		return
	}

	respondJSON(ctx, w, http.StatusOK, groupResponse{Group: group})
}

// Join handles POST /api/v1/groups/join.
func (h GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	h.membership(w, r, h.Groups.Join, "joined")
}

// Leave handles POST /api/v1/groups/leave.
func (h GroupHandler) Leave(w http.ResponseWriter, r *http.Request) {
	h.membership(w, r, h.Groups.Leave, "left")
}

// Delete handles POST /api/v1/groups/delete.
func (h GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.membership(w, r, h.Groups.Delete, "deleted")
}

// Members handles GET /api/v1/groups/members?groupId=...
func (h GroupHandler) Members(w http.ResponseWriter, r *http.Request) {
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

	members, err := h.Groups.Members(ctx, groupID)
	if err != nil {
		logger.Error("list group members", "error", err, "groupId", groupID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to list group members")
		return
	}
	if members == nil {
		members = []models.GroupMember{}
	}

	respondJSON(ctx, w, http.StatusOK, memberListResponse{Members: members})
}

// List handles GET /api/v1/groups?userId=...
func (h GroupHandler) List(w http.ResponseWriter, r *http.Request) {
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

	userGroups, err := h.Groups.UserGroups(ctx, userID)
	if err != nil {
		logger.Error("list user groups", "error", err, "userId", userID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to list groups")
		return
	}
	if userGroups == nil {
		userGroups = []models.Group{}
	}

	respondJSON(ctx, w, http.StatusOK, groupListResponse{Groups: userGroups})
}

func (h GroupHandler) membership(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, groupID, userID string) error, status string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req groupMembershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.GroupID = strings.TrimSpace(req.GroupID)
	req.UserID = strings.TrimSpace(req.UserID)
	if req.GroupID == "" || req.UserID == "" {
		respondError(ctx, w, http.StatusBadRequest, "groupId and userId are required")
		return
	}

	if err := op(ctx, req.GroupID, req.UserID); err != nil {
		switch {
		case errors.Is(err, groups.ErrGroupNotFound):
			respondError(ctx, w, http.StatusNotFound, "group not found")
		case errors.Is(err, groups.ErrNotMember):
			respondError(ctx, w, http.StatusNotFound, "membership not found")
		case errors.Is(err, groups.ErrAlreadyMember):
			respondError(ctx, w, http.StatusConflict, "already a member")
		case errors.Is(err, groups.ErrGroupNotEmpty):
			respondError(ctx, w, http.StatusConflict, "group still has other members")
		default:
			logger.Error("group membership change", "error", err, "groupId", req.GroupID)
			respondError(ctx, w, http.StatusInternalServerError, "failed to update group")
		}
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": status})
}

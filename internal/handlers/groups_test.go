package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/snapgroups/backend/internal/groups"
	"github.com/snapgroups/backend/internal/models"
)

type stubGroupService struct {
	createErr  error
	getErr     error
	joinErr    error
	leaveErr   error
	deleteErr  error
	membersErr error
	listErr    error
	lastAction string
	group      models.Group
	members    []models.GroupMember
	userGroups []models.Group
}

func (s *stubGroupService) Create(_ context.Context, name, createdBy string) (models.Group, error) {
	if s.createErr != nil {
		return models.Group{}, s.createErr
	}
	s.lastAction = "create:" + name + ":" + createdBy
	return models.Group{ID: "g1", Name: name, CreatedBy: createdBy}, nil
}

func (s *stubGroupService) Get(_ context.Context, groupID, userID string) (models.Group, error) {
	if s.getErr != nil {
		return models.Group{}, s.getErr
	}
	return s.group, nil
}

func (s *stubGroupService) Join(_ context.Context, groupID, userID string) error {
	s.lastAction = "join:" + groupID + ":" + userID
	return s.joinErr
}

func (s *stubGroupService) Leave(_ context.Context, groupID, userID string) error {
	s.lastAction = "leave:" + groupID + ":" + userID
	return s.leaveErr
}

func (s *stubGroupService) Delete(_ context.Context, groupID, userID string) error {
	s.lastAction = "delete:" + groupID + ":" + userID
	return s.deleteErr
}

func (s *stubGroupService) Members(_ context.Context, groupID string) ([]models.GroupMember, error) {
	if s.membersErr != nil {
		return nil, s.membersErr
	}
	return s.members, nil
}

func (s *stubGroupService) UserGroups(_ context.Context, userID string) ([]models.Group, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.userGroups, nil
}

func TestGroupHandlerCreate(t *testing.T) {
	service := &stubGroupService{}
	handler := GroupHandler{Groups: service}

	body := []byte(`{"name":"ski trip","createdBy":"u1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/groups/create", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201 got %d", rec.Code)
	}

	var resp groupResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Group.Name != "ski trip" || resp.Group.CreatedBy != "u1" {
		t.Fatalf("unexpected group: %+v", resp.Group)
	}
}

func TestGroupHandlerCreateFailures(t *testing.T) {
	body := []byte(`{"name":"g","createdBy":"u1"}`)

	cases := []struct {
		name       string
		service    *stubGroupService
		method     string
		body       []byte
		wantStatus int
	}{
		{"wrongMethod", &stubGroupService{}, http.MethodGet, body, http.StatusMethodNotAllowed},
		{"badJSON", &stubGroupService{}, http.MethodPost, []byte("{"), http.StatusBadRequest},
		{"missingFields", &stubGroupService{}, http.MethodPost, []byte(`{"name":"","createdBy":""}`), http.StatusBadRequest},
		{"internal", &stubGroupService{createErr: errors.New("boom")}, http.MethodPost, body, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := GroupHandler{Groups: tc.service}

			req := httptest.NewRequest(tc.method, "/api/v1/groups/create", bytes.NewReader(tc.body))
			rec := httptest.NewRecorder()

			handler.Create(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d got %d", tc.wantStatus, rec.Code)
			}
		})
	}
}

func TestGroupHandlerGet(t *testing.T) {
	service := &stubGroupService{group: models.Group{ID: "g1", Name: "ski trip"}}
	handler := GroupHandler{Groups: service}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/groups/get?groupId=g1&userId=u1", nil)
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}

	var resp groupResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Group.ID != "g1" {
		t.Fatalf("unexpected group: %+v", resp.Group)
	}
}

func TestGroupHandlerGetNotFound(t *testing.T) {
	handler := GroupHandler{Groups: &stubGroupService{getErr: groups.ErrGroupNotFound}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/groups/get?groupId=missing", nil)
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 got %d", rec.Code)
	}
}

func TestGroupHandlerMembershipActions(t *testing.T) {
	body := []byte(`{"groupId":"g1","userId":"u1"}`)

	cases := []struct {
		name       string
		service    *stubGroupService
		invoke     func(GroupHandler, http.ResponseWriter, *http.Request)
		wantStatus int
		wantAction string
	}{
		{"join", &stubGroupService{}, GroupHandler.Join, http.StatusOK, "join:g1:u1"},
		{"leave", &stubGroupService{}, GroupHandler.Leave, http.StatusOK, "leave:g1:u1"},
		{"delete", &stubGroupService{}, GroupHandler.Delete, http.StatusOK, "delete:g1:u1"},
		{"joinConflict", &stubGroupService{joinErr: groups.ErrAlreadyMember}, GroupHandler.Join, http.StatusConflict, ""},
		{"joinUnknownGroup", &stubGroupService{joinErr: groups.ErrGroupNotFound}, GroupHandler.Join, http.StatusNotFound, ""},
		{"leaveNotMember", &stubGroupService{leaveErr: groups.ErrNotMember}, GroupHandler.Leave, http.StatusNotFound, ""},
		{"deleteNotEmpty", &stubGroupService{deleteErr: groups.ErrGroupNotEmpty}, GroupHandler.Delete, http.StatusConflict, ""},
		{"deleteInternal", &stubGroupService{deleteErr: errors.New("boom")}, GroupHandler.Delete, http.StatusInternalServerError, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := GroupHandler{Groups: tc.service}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/groups/x", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			tc.invoke(handler, rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d got %d", tc.wantStatus, rec.Code)
			}
			if tc.wantAction != "" && tc.service.lastAction != tc.wantAction {
				t.Fatalf("expected action %q got %q", tc.wantAction, tc.service.lastAction)
			}
		})
	}
}

func TestGroupHandlerMembers(t *testing.T) {
	service := &stubGroupService{members: []models.GroupMember{{GroupID: "g1", UserID: "u1"}}}
	handler := GroupHandler{Groups: service}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/groups/members?groupId=g1", nil)
	rec := httptest.NewRecorder()

	handler.Members(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}

	var resp memberListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Members) != 1 || resp.Members[0].UserID != "u1" {
		t.Fatalf("unexpected members: %+v", resp.Members)
	}
}

func TestGroupHandlerList(t *testing.T) {
	service := &stubGroupService{userGroups: []models.Group{{ID: "g1"}, {ID: "g2"}}}
	handler := GroupHandler{Groups: service}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/groups?userId=u1", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}

	var resp groupListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Groups) != 2 {
		t.Fatalf("expected 2 groups got %d", len(resp.Groups))
	}
}

func TestGroupHandlerListMissingUser(t *testing.T) {
	handler := GroupHandler{Groups: &stubGroupService{}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/groups", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", rec.Code)
	}
}

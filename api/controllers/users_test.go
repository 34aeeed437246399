package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/warrantyvault/backend/internal/users"
)

type stubUsersService struct {
	getResp    *users.UserDTO
	getErr     error
	updateResp *users.UserDTO
	updateErr  error

	lastUserID uuid.UUID
	lastReq    users.UpdateProfileRequest
}

func (s *stubUsersService) Get(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	s.lastUserID = userID
	return s.getResp, s.getErr
}

func (s *stubUsersService) UpdateProfile(ctx context.Context, userID uuid.UUID, req users.UpdateProfileRequest) (*users.UserDTO, error) {
	s.lastUserID = userID
	s.lastReq = req
	return s.updateResp, s.updateErr
}

func TestGetMeReturnsProfile(t *testing.T) {
	userID := uuid.New()
	svc := &stubUsersService{getResp: &users.UserDTO{ID: userID, Email: "priya@example.com"}}
	handler := GetMe(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(req, userID))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.lastUserID != userID {
		t.Fatalf("expected user %s, got %s", userID, svc.lastUserID)
	}
	var envelope struct {
		Data users.UserDTO `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Email != "priya@example.com" {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestGetMeRequiresAuthContext(t *testing.T) {
	handler := GetMe(&stubUsersService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestUpdateMePassesFields(t *testing.T) {
	userID := uuid.New()
	svc := &stubUsersService{updateResp: &users.UserDTO{ID: userID, Name: "Priya S"}}
	handler := UpdateMe(svc, nil)

	body := `{"name":"Priya S","notification_email":"alerts@example.com"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/me", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(req, userID))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.lastReq.Name == nil || *svc.lastReq.Name != "Priya S" {
		t.Fatalf("expected name to reach the service, got %+v", svc.lastReq)
	}
	if svc.lastReq.NotificationEmail == nil || *svc.lastReq.NotificationEmail != "alerts@example.com" {
		t.Fatalf("expected notification email to reach the service, got %+v", svc.lastReq)
	}
}

func TestUpdateMeRejectsBadEmail(t *testing.T) {
	handler := UpdateMe(&stubUsersService{}, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/me", bytes.NewBufferString(`{"notification_email":"not-an-email"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(req, uuid.New()))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

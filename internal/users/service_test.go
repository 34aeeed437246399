package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/warrantyvault/backend/pkg/db/models"
	pkgerrors "github.com/warrantyvault/backend/pkg/errors"
)

type stubProfileRepo struct {
	user      *models.User
	findErr   error
	updateErr error

	lastDTO UpdateProfileDTO
}

func (s *stubProfileRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.user, nil
}

func (s *stubProfileRepo) UpdateProfile(ctx context.Context, id uuid.UUID, dto UpdateProfileDTO) (*models.User, error) {
	s.lastDTO = dto
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return s.user, nil
}

func TestProfileServiceGet(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "priya@example.com", Name: "Priya"}
	svc, err := NewService(&stubProfileRepo{user: user})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	dto, err := svc.Get(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if dto.Email != user.Email {
		t.Fatalf("unexpected dto %+v", dto)
	}
}

func TestProfileServiceGetNotFound(t *testing.T) {
	svc, err := NewService(&stubProfileRepo{findErr: gorm.ErrRecordNotFound})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Get(context.Background(), uuid.New())
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", code)
	}
}

func TestProfileServiceUpdateNormalizesFields(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "priya@example.com", Name: "Priya S"}
	repo := &stubProfileRepo{user: user}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	name := "  Priya S  "
	email := " Alerts@Example.com "
	_, err = svc.UpdateProfile(context.Background(), user.ID, UpdateProfileRequest{
		Name:              &name,
		NotificationEmail: &email,
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if repo.lastDTO.Name == nil || *repo.lastDTO.Name != "Priya S" {
		t.Fatalf("expected trimmed name, got %+v", repo.lastDTO.Name)
	}
	if repo.lastDTO.NotificationEmail == nil || *repo.lastDTO.NotificationEmail != "alerts@example.com" {
		t.Fatalf("expected normalized email, got %+v", repo.lastDTO.NotificationEmail)
	}
}

func TestProfileServiceUpdateRejectsBlankName(t *testing.T) {
	svc, err := NewService(&stubProfileRepo{user: &models.User{ID: uuid.New()}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	blank := "   "
	_, err = svc.UpdateProfile(context.Background(), uuid.New(), UpdateProfileRequest{Name: &blank})
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", code)
	}
}

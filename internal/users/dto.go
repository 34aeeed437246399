package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/warrantyvault/backend/pkg/db/models"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID                uuid.UUID  `json:"id"`
	Email             string     `json:"email"`
	Name              string     `json:"name"`
	NotificationEmail string     `json:"notification_email"`
	IsActive          bool       `json:"is_active"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email             string
	PasswordHash      string
	Name              string
	NotificationEmail string
	IsActive          *bool
}

// UpdateProfileDTO carries the fields a user may change about themselves.
type UpdateProfileDTO struct {
	Name              *string
	NotificationEmail *string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:                u.ID,
		Email:             u.Email,
		Name:              u.Name,
		NotificationEmail: u.NotificationEmail,
		IsActive:          u.IsActive,
		LastLoginAt:       u.LastLoginAt,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	isActive := true
	if c.IsActive != nil {
		isActive = *c.IsActive
	}

	notificationEmail := c.NotificationEmail
	if notificationEmail == "" {
		notificationEmail = c.Email
	}

	return &models.User{
		Email:             c.Email,
		PasswordHash:      c.PasswordHash,
		Name:              c.Name,
		NotificationEmail: notificationEmail,
		IsActive:          isActive,
	}
}

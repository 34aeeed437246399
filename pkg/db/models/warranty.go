package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/warrantyvault/backend/pkg/enums"
)

// Warranty records a purchased product's coverage window for one user.
// PurchaseDate and ExpiryDate are calendar dates normalized to midnight UTC.
type Warranty struct {
	ID                 uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID             uuid.UUID                `gorm:"type:uuid;not null;index"`
	ProductName        string                   `gorm:"type:text;not null"`
	Brand              *string                  `gorm:"type:text"`
	Category           *string                  `gorm:"type:text"`
	Retailer           *string                  `gorm:"type:text"`
	SerialNumber       *string                  `gorm:"column:serial_number;type:text"`
	Notes              *string                  `gorm:"type:text"`
	ImageURL           *string                  `gorm:"column:image_url;type:text"`
	PurchaseDate       time.Time                `gorm:"column:purchase_date;not null"`
	ExpiryDate         time.Time                `gorm:"column:expiry_date;not null;index"`
	ReminderPreference enums.ReminderPreference `gorm:"column:reminder_preference;type:reminder_preference;not null;default:'7d'"`
	LastNotifiedAt     *time.Time               `gorm:"column:last_notified_at"`
	CreatedAt          time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

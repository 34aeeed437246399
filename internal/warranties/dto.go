package warranties

import (
	"time"

	"github.com/google/uuid"

	"github.com/warrantyvault/backend/pkg/db/models"
	"github.com/warrantyvault/backend/pkg/enums"
)

// DateLayout is the wire format for purchase and expiry dates.
const DateLayout = "2006-01-02"

// WarrantyDTO is the transport shape returned by the API.
type WarrantyDTO struct {
	ID                 uuid.UUID                `json:"id"`
	ProductName        string                   `json:"product_name"`
	Brand              *string                  `json:"brand,omitempty"`
	Category           *string                  `json:"category,omitempty"`
	Retailer           *string                  `json:"retailer,omitempty"`
	SerialNumber       *string                  `json:"serial_number,omitempty"`
	Notes              *string                  `json:"notes,omitempty"`
	ImageURL           *string                  `json:"image_url,omitempty"`
	PurchaseDate       string                   `json:"purchase_date"`
	ExpiryDate         string                   `json:"expiry_date"`
	ReminderPreference enums.ReminderPreference `json:"reminder_preference"`
	LastNotifiedAt     *time.Time               `json:"last_notified_at,omitempty"`
	CreatedAt          time.Time                `json:"created_at"`
	UpdatedAt          time.Time                `json:"updated_at"`
}

// CreateWarrantyRequest is the payload accepted when registering a warranty.
type CreateWarrantyRequest struct {
	ProductName        string  `json:"product_name" validate:"required"`
	Brand              *string `json:"brand,omitempty"`
	Category           *string `json:"category,omitempty"`
	Retailer           *string `json:"retailer,omitempty"`
	SerialNumber       *string `json:"serial_number,omitempty"`
	Notes              *string `json:"notes,omitempty"`
	ImageURL           *string `json:"image_url,omitempty"`
	PurchaseDate       string  `json:"purchase_date" validate:"required"`
	ExpiryDate         string  `json:"expiry_date" validate:"required"`
	ReminderPreference *string `json:"reminder_preference,omitempty"`
}

// UpdateWarrantyRequest carries the mutable warranty fields. Absent fields
// are left untouched; ownership never changes.
type UpdateWarrantyRequest struct {
	ProductName        *string `json:"product_name,omitempty"`
	Brand              *string `json:"brand,omitempty"`
	Category           *string `json:"category,omitempty"`
	Retailer           *string `json:"retailer,omitempty"`
	SerialNumber       *string `json:"serial_number,omitempty"`
	Notes              *string `json:"notes,omitempty"`
	ImageURL           *string `json:"image_url,omitempty"`
	PurchaseDate       *string `json:"purchase_date,omitempty"`
	ExpiryDate         *string `json:"expiry_date,omitempty"`
	ReminderPreference *string `json:"reminder_preference,omitempty"`
}

func FromModel(w *models.Warranty) *WarrantyDTO {
	if w == nil {
		return nil
	}

	return &WarrantyDTO{
		ID:                 w.ID,
		ProductName:        w.ProductName,
		Brand:              w.Brand,
		Category:           w.Category,
		Retailer:           w.Retailer,
		SerialNumber:       w.SerialNumber,
		Notes:              w.Notes,
		ImageURL:           w.ImageURL,
		PurchaseDate:       w.PurchaseDate.UTC().Format(DateLayout),
		ExpiryDate:         w.ExpiryDate.UTC().Format(DateLayout),
		ReminderPreference: w.ReminderPreference,
		LastNotifiedAt:     w.LastNotifiedAt,
		CreatedAt:          w.CreatedAt,
		UpdatedAt:          w.UpdatedAt,
	}
}

func FromModels(rows []models.Warranty) []WarrantyDTO {
	out := make([]WarrantyDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}

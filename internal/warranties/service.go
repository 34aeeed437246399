package warranties

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/warrantyvault/backend/pkg/db/models"
	"github.com/warrantyvault/backend/pkg/enums"
	pkgerrors "github.com/warrantyvault/backend/pkg/errors"
	"github.com/warrantyvault/backend/pkg/pagination"
)

// Service defines owner-scoped warranty operations.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, req CreateWarrantyRequest) (*WarrantyDTO, error)
	Get(ctx context.Context, userID, warrantyID uuid.UUID) (*WarrantyDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Update(ctx context.Context, userID, warrantyID uuid.UUID, req UpdateWarrantyRequest) (*WarrantyDTO, error)
	Delete(ctx context.Context, userID, warrantyID uuid.UUID) error
}

type service struct {
	repo Repository
}

// ListParams configures pagination for the warranty list.
type ListParams struct {
	UserID uuid.UUID
	Limit  int
	Cursor string
}

// ListResult wraps returned warranties and the cursor for the next page.
type ListResult struct {
	Items  []WarrantyDTO `json:"items"`
	Cursor string        `json:"cursor"`
}

// NewService wires warranty dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "warranties repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, req CreateWarrantyRequest) (*WarrantyDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	productName := strings.TrimSpace(req.ProductName)
	if productName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_name is required")
	}

	purchaseDate, err := ParseDate(req.PurchaseDate)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid purchase_date")
	}
	expiryDate, err := ParseDate(req.ExpiryDate)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid expiry_date")
	}

	preference := enums.ReminderPreferenceOneWeek
	if req.ReminderPreference != nil {
		preference, err = enums.ParseReminderPreference(*req.ReminderPreference)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reminder_preference")
		}
	}

	warranty := &models.Warranty{
		UserID:             userID,
		ProductName:        productName,
		Brand:              req.Brand,
		Category:           req.Category,
		Retailer:           req.Retailer,
		SerialNumber:       req.SerialNumber,
		Notes:              req.Notes,
		ImageURL:           req.ImageURL,
		PurchaseDate:       purchaseDate,
		ExpiryDate:         expiryDate,
		ReminderPreference: preference,
	}

	if err := s.repo.Create(ctx, warranty); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create warranty")
	}
	return FromModel(warranty), nil
}

func (s *service) Get(ctx context.Context, userID, warrantyID uuid.UUID) (*WarrantyDTO, error) {
	if userID == uuid.Nil || warrantyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and warranty id required")
	}

	warranty, err := s.repo.FindByID(ctx, userID, warrantyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "warranty not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find warranty")
	}
	return FromModel(warranty), nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	query := listWarrantiesParams{
		UserID: params.UserID,
		Limit:  params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list warranties")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}

	return &ListResult{
		Items:  FromModels(rows),
		Cursor: cursor,
	}, nil
}

func (s *service) Update(ctx context.Context, userID, warrantyID uuid.UUID, req UpdateWarrantyRequest) (*WarrantyDTO, error) {
	if userID == uuid.Nil || warrantyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and warranty id required")
	}

	updates := map[string]any{}
	if req.ProductName != nil {
		name := strings.TrimSpace(*req.ProductName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_name must not be empty")
		}
		updates["product_name"] = name
	}
	if req.Brand != nil {
		updates["brand"] = *req.Brand
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Retailer != nil {
		updates["retailer"] = *req.Retailer
	}
	if req.SerialNumber != nil {
		updates["serial_number"] = *req.SerialNumber
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.PurchaseDate != nil {
		purchaseDate, err := ParseDate(*req.PurchaseDate)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid purchase_date")
		}
		updates["purchase_date"] = purchaseDate
	}
	if req.ExpiryDate != nil {
		expiryDate, err := ParseDate(*req.ExpiryDate)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid expiry_date")
		}
		updates["expiry_date"] = expiryDate
	}
	if req.ReminderPreference != nil {
		preference, err := enums.ParseReminderPreference(*req.ReminderPreference)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reminder_preference")
		}
		updates["reminder_preference"] = preference
	}

	warranty, err := s.repo.Update(ctx, userID, warrantyID, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "warranty not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update warranty")
	}
	return FromModel(warranty), nil
}

func (s *service) Delete(ctx context.Context, userID, warrantyID uuid.UUID) error {
	if userID == uuid.Nil || warrantyID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id and warranty id required")
	}

	rows, err := s.repo.Delete(ctx, userID, warrantyID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete warranty")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "warranty not found")
	}
	return nil
}

// ParseDate reads a YYYY-MM-DD value and normalizes it to midnight UTC.
func ParseDate(value string) (time.Time, error) {
	parsed, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, err
	}
	return parsed.UTC(), nil
}

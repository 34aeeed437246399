package warranties

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/warrantyvault/backend/pkg/db/models"
	"github.com/warrantyvault/backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository exposes persistence helpers for warranties.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, warranty *models.Warranty) error
	FindByID(ctx context.Context, userID, warrantyID uuid.UUID) (*models.Warranty, error)
	List(ctx context.Context, params listWarrantiesParams) ([]models.Warranty, *pagination.Cursor, error)
	Update(ctx context.Context, userID, warrantyID uuid.UUID, updates map[string]any) (*models.Warranty, error)
	Delete(ctx context.Context, userID, warrantyID uuid.UUID) (int64, error)
	FindDue(ctx context.Context, targetDates []time.Time, notBefore time.Time) ([]models.Warranty, error)
	SetLastNotified(ctx context.Context, warrantyID uuid.UUID, at time.Time) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a warranties repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listWarrantiesParams struct {
	UserID uuid.UUID
	Limit  int
	Cursor *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, warranty *models.Warranty) error {
	return r.db.WithContext(ctx).Create(warranty).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, userID, warrantyID uuid.UUID) (*models.Warranty, error) {
	var warranty models.Warranty
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", warrantyID, userID).
		First(&warranty).Error; err != nil {
		return nil, err
	}
	return &warranty, nil
}

// List returns the user's warranties ordered by soonest expiry. The cursor
// carries the first row of the next page, so the follow-up query matches it
// inclusively.
func (r *repositoryImpl) List(ctx context.Context, params listWarrantiesParams) ([]models.Warranty, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Warranty{}).Where("user_id = ?", params.UserID)
	if params.Cursor != nil {
		query = query.Where("(expiry_date, id) >= (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var warranties []models.Warranty
	if err := query.Order("expiry_date ASC, id ASC").Limit(limit).Find(&warranties).Error; err != nil {
		return nil, nil, err
	}

	if len(warranties) > normalized {
		next := warranties[normalized]
		warranties = warranties[:normalized]
		return warranties, &pagination.Cursor{CreatedAt: next.ExpiryDate, ID: next.ID}, nil
	}
	return warranties, nil, nil
}

func (r *repositoryImpl) Update(ctx context.Context, userID, warrantyID uuid.UUID, updates map[string]any) (*models.Warranty, error) {
	if len(updates) > 0 {
		result := r.db.WithContext(ctx).
			Model(&models.Warranty{}).
			Where("id = ? AND user_id = ?", warrantyID, userID).
			Updates(updates)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return r.FindByID(ctx, userID, warrantyID)
}

func (r *repositoryImpl) Delete(ctx context.Context, userID, warrantyID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", warrantyID, userID).
		Delete(&models.Warranty{})
	return result.RowsAffected, result.Error
}

// FindDue selects warranties whose expiry date lands on one of the target
// calendar days and whose last notification is absent or older than
// notBefore. Target dates are midnight-UTC day starts; each matches the
// 24h window starting there.
func (r *repositoryImpl) FindDue(ctx context.Context, targetDates []time.Time, notBefore time.Time) ([]models.Warranty, error) {
	if len(targetDates) == 0 {
		return nil, nil
	}

	conds := make([]string, 0, len(targetDates))
	args := make([]any, 0, len(targetDates)*2)
	for _, target := range targetDates {
		conds = append(conds, "(expiry_date >= ? AND expiry_date < ?)")
		args = append(args, target, target.Add(24*time.Hour))
	}

	var warranties []models.Warranty
	err := r.db.WithContext(ctx).
		Model(&models.Warranty{}).
		Where("("+strings.Join(conds, " OR ")+")", args...).
		Where("(last_notified_at IS NULL OR last_notified_at < ?)", notBefore).
		Order("expiry_date ASC, id ASC").
		Find(&warranties).Error
	if err != nil {
		return nil, err
	}
	return warranties, nil
}

func (r *repositoryImpl) SetLastNotified(ctx context.Context, warrantyID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Warranty{}).
		Where("id = ?", warrantyID).
		UpdateColumn("last_notified_at", at).Error
}

package accounts

import (
	"context"

	"gorm.io/gorm"

	"github.com/farmlog-app/farmlog-backend/internal/repo"
	"github.com/farmlog-app/farmlog-backend/pkg/db/models"
)

// Repository exposes account persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs an accounts repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts a new account.
func (r *Repository) Create(ctx context.Context, account *models.Account) error {
	return r.DB(ctx).Create(account).Error
}

// FindByUserID retrieves the account matching the provided user_id.
func (r *Repository) FindByUserID(ctx context.Context, userID string) (*models.Account, error) {
	var account models.Account
	if err := r.DB(ctx).First(&account, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// CountByUserID reports how many accounts carry the given user_id.
func (r *Repository) CountByUserID(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.Account{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

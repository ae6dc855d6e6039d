package farms

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/farmlog-app/farmlog-backend/internal/repo"
	"github.com/farmlog-app/farmlog-backend/pkg/db/models"
)

// Repository exposes farm persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a farms repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts a new farm and returns the persisted model.
func (r *Repository) Create(ctx context.Context, farm *models.Farm) (*models.Farm, error) {
	if err := r.DB(ctx).Create(farm).Error; err != nil {
		return nil, err
	}
	return farm, nil
}

// FindByID loads a farm by its surrogate key.
func (r *Repository) FindByID(ctx context.Context, farmID int64) (*models.Farm, error) {
	var farm models.Farm
	if err := r.DB(ctx).First(&farm, "farm_id = ?", farmID).Error; err != nil {
		return nil, err
	}
	return &farm, nil
}

// ListByUser returns every farm owned by the given account, newest planting
// first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]models.Farm, error) {
	var rows []models.Farm
	err := r.DB(ctx).
		Where("user_id = ?", userID).
		Order("planting_date DESC").
		Find(&rows).Error
	return rows, err
}

// ListByPlantingRange returns the user's farms whose planting_date falls in
// [from, to).
func (r *Repository) ListByPlantingRange(ctx context.Context, userID string, from, to time.Time) ([]models.Farm, error) {
	var rows []models.Farm
	err := r.DB(ctx).
		Where("user_id = ? AND planting_date >= ? AND planting_date < ?", userID, from, to).
		Order("planting_date ASC").
		Find(&rows).Error
	return rows, err
}

// UpdateFields applies the supplied column map in a single UPDATE statement.
// Columns absent from the map keep their stored values, which is the whole
// partial-update contract. Returns the number of matched rows.
func (r *Repository) UpdateFields(ctx context.Context, farmID int64, fields map[string]any) (int64, error) {
	if len(fields) == 0 {
		var count int64
		err := r.DB(ctx).
			Model(&models.Farm{}).
			Where("farm_id = ?", farmID).
			Count(&count).Error
		return count, err
	}
	res := r.DB(ctx).
		Model(&models.Farm{}).
		Where("farm_id = ?", farmID).
		Updates(fields)
	return res.RowsAffected, res.Error
}

// Delete hard-deletes a farm row. Returns the number of matched rows.
func (r *Repository) Delete(ctx context.Context, farmID int64) (int64, error) {
	res := r.DB(ctx).Delete(&models.Farm{}, "farm_id = ?", farmID)
	return res.RowsAffected, res.Error
}

package croplogs

import (
	"context"

	"gorm.io/gorm"

	"github.com/farmlog-app/farmlog-backend/internal/repo"
	"github.com/farmlog-app/farmlog-backend/pkg/db/models"
)

// Repository exposes work-record persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a crop log repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts a new work record and returns the persisted model.
func (r *Repository) Create(ctx context.Context, log *models.CropLog) (*models.CropLog, error) {
	if err := r.DB(ctx).Create(log).Error; err != nil {
		return nil, err
	}
	return log, nil
}

// FindByID loads a work record by its surrogate key.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.CropLog, error) {
	var log models.CropLog
	if err := r.DB(ctx).First(&log, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &log, nil
}

// ListByFarm returns every work record for the given farm, newest work first.
func (r *Repository) ListByFarm(ctx context.Context, farmID int64) ([]models.CropLog, error) {
	var rows []models.CropLog
	err := r.DB(ctx).
		Where("farm_id = ?", farmID).
		Order("work_date DESC").
		Find(&rows).Error
	return rows, err
}

// UpdateFields applies the supplied column map in a single UPDATE statement.
// Returns the number of matched rows.
func (r *Repository) UpdateFields(ctx context.Context, id int64, fields map[string]any) (int64, error) {
	if len(fields) == 0 {
		var count int64
		err := r.DB(ctx).
			Model(&models.CropLog{}).
			Where("id = ?", id).
			Count(&count).Error
		return count, err
	}
	res := r.DB(ctx).
		Model(&models.CropLog{}).
		Where("id = ?", id).
		Updates(fields)
	return res.RowsAffected, res.Error
}

// Delete hard-deletes a work record. Returns the number of matched rows.
func (r *Repository) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.DB(ctx).Delete(&models.CropLog{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

package croplogs

import (
	"time"

	"github.com/farmlog-app/farmlog-backend/pkg/db/models"
)

// CropLogDTO is the transport shape for a work record.
type CropLogDTO struct {
	ID         int64     `json:"id"`
	FarmID     int64     `json:"farm_id"`
	WorkDate   time.Time `json:"work_date"`
	WorkRecord string    `json:"work_record"`
	Result     string    `json:"result"`
	Image      *string   `json:"image"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateCropLogInput holds the validated fields for a new work record.
type CreateCropLogInput struct {
	FarmID     int64
	WorkDate   time.Time
	WorkRecord string
	Result     string
	ImagePath  string
}

// UpdateCropLogInput carries the identifying key plus any subset of mutable
// fields. Nil means "keep the stored value".
type UpdateCropLogInput struct {
	ID         int64
	WorkDate   *time.Time
	WorkRecord *string
	Result     *string
	ImagePath  *string
}

func FromModel(c *models.CropLog) CropLogDTO {
	return CropLogDTO{
		ID:         c.ID,
		FarmID:     c.FarmID,
		WorkDate:   c.WorkDate,
		WorkRecord: c.WorkRecord,
		Result:     c.Result,
		Image:      c.Image,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func fromModels(rows []models.CropLog) []CropLogDTO {
	out := make([]CropLogDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}

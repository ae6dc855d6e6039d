package farms

import (
	"time"

	"github.com/farmlog-app/farmlog-backend/pkg/db/models"
)

// FarmDTO is the transport shape for a farm record.
type FarmDTO struct {
	FarmID       int64     `json:"farm_id"`
	UserID       string    `json:"user_id"`
	CropName     string    `json:"crop_name"`
	PlantingDate time.Time `json:"planting_date"`
	HarvestDate  time.Time `json:"harvest_date"`
	Image        *string   `json:"image"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateFarmInput holds the validated fields for a new farm row.
type CreateFarmInput struct {
	UserID       string
	CropName     string
	PlantingDate time.Time
	HarvestDate  time.Time
	ImagePath    string
}

// UpdateFarmInput carries the identifying key plus any subset of mutable
// fields. Nil means "keep the stored value".
type UpdateFarmInput struct {
	FarmID       int64
	CropName     *string
	PlantingDate *time.Time
	HarvestDate  *time.Time
	ImagePath    *string
}

func FromModel(f *models.Farm) FarmDTO {
	return FarmDTO{
		FarmID:       f.FarmID,
		UserID:       f.UserID,
		CropName:     f.CropName,
		PlantingDate: f.PlantingDate,
		HarvestDate:  f.HarvestDate,
		Image:        f.Image,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

func fromModels(rows []models.Farm) []FarmDTO {
	out := make([]FarmDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}

package models

import "time"

// Farm is a per-account crop record. Dates are genuine temporal columns so
// month filtering never depends on a stored text format.
type Farm struct {
	FarmID       int64     `gorm:"column:farm_id;primaryKey;autoIncrement"`
	UserID       string    `gorm:"column:user_id;type:text;not null;index"`
	CropName     string    `gorm:"column:crop_name;not null"`
	PlantingDate time.Time `gorm:"column:planting_date;not null"`
	HarvestDate  time.Time `gorm:"column:harvest_date;not null"`
	Image        *string   `gorm:"column:image"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Account Account `gorm:"foreignKey:UserID;references:UserID" json:"-"`
}

func (Farm) TableName() string {
	return "farms"
}

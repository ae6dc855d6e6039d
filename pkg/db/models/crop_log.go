package models

import "time"

// CropLog is a dated work record attached to a farm.
type CropLog struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	FarmID     int64     `gorm:"column:farm_id;not null;index"`
	WorkDate   time.Time `gorm:"column:work_date;not null"`
	WorkRecord string    `gorm:"column:work_record;not null"`
	Result     string    `gorm:"column:result;not null"`
	Image      *string   `gorm:"column:image"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Farm Farm `gorm:"foreignKey:FarmID;references:FarmID" json:"-"`
}

func (CropLog) TableName() string {
	return "crop_logs"
}

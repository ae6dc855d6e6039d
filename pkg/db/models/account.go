package models

import "time"

// Account is the registered user identity, keyed by its natural user_id.
type Account struct {
	UserID       string    `gorm:"column:user_id;type:text;primaryKey"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Name         string    `gorm:"column:name;not null"`
	Email        string    `gorm:"column:email;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Account) TableName() string {
	return "accounts"
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// StaffAccount is a shop staff login used by the local identity provider
type StaffAccount struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"` // stored lowercase
	Name         string         `gorm:"not null" json:"name"`
	PasswordHash string         `gorm:"not null" json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the StaffAccount model
func (StaffAccount) TableName() string {
	return "staff_accounts"
}

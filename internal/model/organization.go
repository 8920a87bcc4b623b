package model

import (
	"time"

	"gorm.io/gorm"
)

// Organization is the tenant boundary. Every other entity is partitioned by
// organization id and no query may cross it.
type Organization struct {
	ID        string         `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

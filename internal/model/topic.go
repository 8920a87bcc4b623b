package model

import (
	"time"
)

// Topic is a tenant-scoped label questions can be filed under.
type Topic struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Label          string    `json:"label" gorm:"type:varchar(100);not null"`
	OrganizationID string    `json:"organization_id" gorm:"type:varchar(36);index;not null"`
	TopicGroupID   *uint     `json:"topic_group_id" gorm:"index"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	TopicGroup *TopicGroup `json:"topic_group,omitempty" gorm:"foreignKey:TopicGroupID"`
}

// TopicGroup collects topics under a shared heading.
type TopicGroup struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Label          string    `json:"label" gorm:"type:varchar(100);not null"`
	OrganizationID string    `json:"organization_id" gorm:"type:varchar(36);index;not null"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

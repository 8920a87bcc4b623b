package model

import (
	"time"
)

// Profile is a tenant-scoped user identity, distinct from the external auth
// identity. The display fields live here; the role and the link back to the
// auth user live on the readonly record.
type Profile struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	FirstName string    `json:"first_name" gorm:"type:varchar(100)"`
	LastName  string    `json:"last_name" gorm:"type:varchar(100)"`
	Avatar    string    `json:"avatar" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileReadonly associates a profile with an (organization, auth user) pair
// and carries the role the end user cannot edit. One row per pair.
type ProfileReadonly struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ProfileID      string    `json:"profile_id" gorm:"type:varchar(36);index;not null"`
	UserID         string    `json:"user_id" gorm:"type:varchar(36);index:idx_profiles_readonly_user_org,unique;not null"`
	OrganizationID string    `json:"organization_id" gorm:"type:varchar(36);index:idx_profiles_readonly_user_org,unique;not null"`
	Role           string    `json:"role" gorm:"type:varchar(50);not null;default:'user'"` // 'user', 'moderator', 'admin'
	CreatedAt      time.Time `json:"created_at"`

	// Relations
	Profile Profile `json:"profile,omitempty" gorm:"foreignKey:ProfileID"`
}

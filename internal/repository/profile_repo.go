package repository

import (
	"context"
	"errors"

	"github.com/Growthfyi/squeak/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileWithRole is a tenant-scoped profile joined with its readonly role.
type ProfileWithRole struct {
	model.Profile
	Role string
}

// ProfileRepo resolves and creates tenant-scoped profiles.
type ProfileRepo struct {
	db *gorm.DB
}

// NewProfileRepo creates a profile repository on the given database handle
func NewProfileRepo(db *gorm.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// GetByUser resolves the profile for an (organization, auth user) pair.
// Lookups are tenant-scoped: the same external identity never resolves to
// another organization's profile. Absence is ErrProfileMissing.
func (r *ProfileRepo) GetByUser(ctx context.Context, organizationID, userID string) (*ProfileWithRole, error) {
	var readonly model.ProfileReadonly
	result := r.db.WithContext(ctx).
		Preload("Profile").
		Where("organization_id = ? AND user_id = ?", organizationID, userID).
		First(&readonly)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProfileMissing
		}
		return nil, result.Error
	}

	return &ProfileWithRole{
		Profile: readonly.Profile,
		Role:    readonly.Role,
	}, nil
}

// Create provisions a profile and its readonly record for an (organization,
// auth user) pair, in one transaction. New end users get the 'user' role.
func (r *ProfileRepo) Create(ctx context.Context, organizationID, userID, firstName, lastName, avatar string) (*model.Profile, error) {
	profile := &model.Profile{
		ID:        uuid.New().String(),
		FirstName: firstName,
		LastName:  lastName,
		Avatar:    avatar,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(profile).Error; err != nil {
			return err
		}
		readonly := &model.ProfileReadonly{
			ProfileID:      profile.ID,
			UserID:         userID,
			OrganizationID: organizationID,
			Role:           "user",
		}
		return tx.Create(readonly).Error
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

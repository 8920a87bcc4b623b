package repository

import (
	"context"
	"errors"

	"github.com/Growthfyi/squeak/internal/model"
	"gorm.io/gorm"
)

// ConfigRepo reads per-organization settings.
type ConfigRepo struct {
	db *gorm.DB
}

// NewConfigRepo creates a config repository on the given database handle
func NewConfigRepo(db *gorm.DB) *ConfigRepo {
	return &ConfigRepo{db: db}
}

// Get returns the settings row for an organization. Absence is
// ErrConfigMissing, a hard failure for callers that depend on tenant policy.
func (r *ConfigRepo) Get(ctx context.Context, organizationID string) (*model.SqueakConfig, error) {
	var config model.SqueakConfig
	result := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		First(&config)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrConfigMissing
		}
		return nil, result.Error
	}
	return &config, nil
}

package repository

import (
	"context"
	"errors"

	"github.com/Growthfyi/squeak/internal/model"
	"gorm.io/gorm"
)

// TopicRepo manages tenant-scoped topics and topic groups.
type TopicRepo struct {
	db *gorm.DB
}

// NewTopicRepo creates a topic repository on the given database handle
func NewTopicRepo(db *gorm.DB) *TopicRepo {
	return &TopicRepo{db: db}
}

// List returns an organization's topics with their groups preloaded
func (r *TopicRepo) List(ctx context.Context, organizationID string) ([]model.Topic, error) {
	var topics []model.Topic
	err := r.db.WithContext(ctx).
		Preload("TopicGroup").
		Where("organization_id = ?", organizationID).
		Order("label asc").
		Find(&topics).Error
	return topics, err
}

// ListGroups returns an organization's topic groups
func (r *TopicRepo) ListGroups(ctx context.Context, organizationID string) ([]model.TopicGroup, error) {
	var groups []model.TopicGroup
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("label asc").
		Find(&groups).Error
	return groups, err
}

// CreateGroup creates a topic group with the given label
func (r *TopicRepo) CreateGroup(ctx context.Context, organizationID, label string) (*model.TopicGroup, error) {
	group := &model.TopicGroup{
		Label:          label,
		OrganizationID: organizationID,
	}
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		return nil, err
	}
	return group, nil
}

// AssignGroup moves a topic into a topic group. Both rows must belong to the
// same organization.
func (r *TopicRepo) AssignGroup(ctx context.Context, organizationID string, topicID, groupID uint) (*model.Topic, error) {
	var group model.TopicGroup
	if err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var topic model.Topic
	if err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		First(&topic, topicID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	topic.TopicGroupID = &group.ID
	if err := r.db.WithContext(ctx).Save(&topic).Error; err != nil {
		return nil, err
	}
	topic.TopicGroup = &group
	return &topic, nil
}

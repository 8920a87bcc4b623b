package repository

import (
	"context"
	"errors"

	"github.com/Growthfyi/squeak/internal/model"
	"gorm.io/gorm"
)

// QuestionRepo persists questions and replies. Every query is scoped by
// organization id.
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo creates a question repository on the given database handle
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// CreateQuestionWithReply creates a question and its opening reply in a single
// transaction: a failure writing the reply leaves no orphan question. The
// question's published flag follows tenant policy; the opening reply is always
// published.
func (r *QuestionRepo) CreateQuestionWithReply(ctx context.Context, question *model.Question, body string) (*model.Reply, error) {
	reply := &model.Reply{
		Body:           body,
		ProfileID:      question.ProfileID,
		Published:      true,
		OrganizationID: question.OrganizationID,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(question).Error; err != nil {
			return err
		}
		reply.MessageID = question.ID
		return tx.Create(reply).Error
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

// CreateQuestion inserts a question row on its own. Used by the import flow,
// which attaches replies separately.
func (r *QuestionRepo) CreateQuestion(ctx context.Context, question *model.Question) error {
	return r.db.WithContext(ctx).Create(question).Error
}

// CreateReply inserts a reply row for an existing question
func (r *QuestionRepo) CreateReply(ctx context.Context, reply *model.Reply) error {
	return r.db.WithContext(ctx).Create(reply).Error
}

// GetByPermalink looks a question up by its tenant-unique permalink
func (r *QuestionRepo) GetByPermalink(ctx context.Context, organizationID, permalink string) (*model.Question, error) {
	var question model.Question
	result := r.db.WithContext(ctx).
		Where("organization_id = ? AND permalink = ?", organizationID, permalink).
		First(&question)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &question, nil
}

// GetByID looks a question up by its internal identifier
func (r *QuestionRepo) GetByID(ctx context.Context, organizationID string, id uint) (*model.Question, error) {
	var question model.Question
	result := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		First(&question, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &question, nil
}

// RepliesWithAuthorRole returns a question's replies in creation order, each
// joined with its author profile and that profile's readonly role. The role is
// a derived view field, never persisted on the reply.
func (r *QuestionRepo) RepliesWithAuthorRole(ctx context.Context, messageID uint) ([]model.ReplyView, error) {
	var replies []model.Reply
	if err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Order("created_at asc").
		Find(&replies).Error; err != nil {
		return nil, err
	}

	if len(replies) == 0 {
		return []model.ReplyView{}, nil
	}

	profileIDs := make([]string, 0, len(replies))
	for _, reply := range replies {
		if reply.ProfileID != "" {
			profileIDs = append(profileIDs, reply.ProfileID)
		}
	}

	profiles := map[string]model.Profile{}
	roles := map[string]string{}
	if len(profileIDs) > 0 {
		var profileRows []model.Profile
		if err := r.db.WithContext(ctx).
			Where("id IN ?", profileIDs).
			Find(&profileRows).Error; err != nil {
			return nil, err
		}
		for _, profile := range profileRows {
			profiles[profile.ID] = profile
		}

		var readonlyRows []model.ProfileReadonly
		if err := r.db.WithContext(ctx).
			Where("profile_id IN ?", profileIDs).
			Find(&readonlyRows).Error; err != nil {
			return nil, err
		}
		for _, readonly := range readonlyRows {
			roles[readonly.ProfileID] = readonly.Role
		}
	}

	views := make([]model.ReplyView, 0, len(replies))
	for _, reply := range replies {
		view := model.ReplyView{
			ID:        reply.ID,
			Body:      reply.Body,
			CreatedAt: reply.CreatedAt,
			Published: reply.Published,
			Metadata:  model.ReplyMetadata{Role: roles[reply.ProfileID]},
		}
		if profile, ok := profiles[reply.ProfileID]; ok {
			view.Profile = &model.ProfileSummary{
				ID:        profile.ID,
				FirstName: profile.FirstName,
				LastName:  profile.LastName,
				Avatar:    profile.Avatar,
			}
		}
		views = append(views, view)
	}
	return views, nil
}

package model

import (
	"time"
)

// SqueakConfig is the one-per-organization settings record. Reads are a hard
// dependency of the question pipeline: operations that need the auto-publish
// policy or the permalink base fail when the row is absent instead of
// defaulting.
type SqueakConfig struct {
	ID                    uint      `json:"id" gorm:"primaryKey"`
	OrganizationID        string    `json:"organization_id" gorm:"type:varchar(36);uniqueIndex;not null"`
	PermalinkBase         string    `json:"permalink_base" gorm:"type:varchar(100)"`
	QuestionAutoPublish   bool      `json:"question_auto_publish" gorm:"default:true"`
	SlackQuestionsChannel string    `json:"slack_questions_channel" gorm:"type:varchar(100)"`
	CompanyName           string    `json:"company_name" gorm:"type:varchar(100)"`
	CompanyDomain         string    `json:"company_domain" gorm:"type:varchar(255)"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

package model

import (
	"time"
)

// Question is a thread opened by an end user. The body is not stored here: the
// author's opening message is modeled as the first Reply, created atomically
// with the question.
type Question struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Subject         string    `json:"subject" gorm:"type:varchar(255)"`
	Slug            []string  `json:"slug" gorm:"serializer:json"`
	Permalink       *string   `json:"permalink" gorm:"type:varchar(255);index:idx_questions_org_permalink"`
	Published       bool      `json:"published"`
	Resolved        bool      `json:"resolved" gorm:"default:false"`
	ResolvedReplyID *uint     `json:"resolved_reply_id"`
	SlackTimestamp  *string   `json:"slack_timestamp" gorm:"type:varchar(50)"`
	OrganizationID  string    `json:"organization_id" gorm:"type:varchar(36);index;index:idx_questions_org_permalink;not null"`
	ProfileID       string    `json:"profile_id" gorm:"type:varchar(36);index"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

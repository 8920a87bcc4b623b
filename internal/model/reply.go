package model

import (
	"time"
)

// Reply is a message in a question thread. MessageID is the owning question.
// The body must already be sanitized when it reaches the repository.
type Reply struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	MessageID      uint      `json:"message_id" gorm:"index;not null"`
	Body           string    `json:"body" gorm:"type:text;check:body <> ''"`
	ProfileID      string    `json:"profile_id" gorm:"type:varchar(36);index"`
	Published      bool      `json:"published"`
	OrganizationID string    `json:"organization_id" gorm:"type:varchar(36);index;not null"`
	CreatedAt      time.Time `json:"created_at"`
}

// ReplyMetadata carries fields derived at read time, not persisted on Reply.
type ReplyMetadata struct {
	Role string `json:"role,omitempty"`
}

// ProfileSummary is the slice of the author profile exposed on the read path.
type ProfileSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar"`
}

// ReplyView is the read model returned by the question read path: the persisted
// reply joined with its author profile and that profile's readonly role.
type ReplyView struct {
	ID        uint            `json:"id"`
	Body      string          `json:"body"`
	CreatedAt time.Time       `json:"created_at"`
	Published bool            `json:"published"`
	Profile   *ProfileSummary `json:"profile"`
	Metadata  ReplyMetadata   `json:"metadata"`
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// BoardMessage is one post on the community message board. Author identity is
// captured by kind+id so both membership kinds can post.
type BoardMessage struct {
	gorm.Model
	AuthorKind string `json:"authorKind" gorm:"size:10;not null"` // full, simple
	AuthorID   uint   `json:"authorID" gorm:"index;not null"`
	AuthorName string `json:"authorName" gorm:"size:150"`
	Subject    string `json:"subject" gorm:"size:200"`
	Body       string `json:"body" gorm:"type:text;not null"`
}

// Notification is an admin-feed row (e.g. a new venue submission) consumed by
// the dashboard badge counts and the SSE stream.
type Notification struct {
	ID uint `json:"id" gorm:"primaryKey"`

	Type    string `json:"type" gorm:"size:32;index"` // venue.submitted, event.proposed
	Title   string `json:"title" gorm:"size:100"`
	Message string `json:"message" gorm:"size:500"`

	RefType string `json:"refType" gorm:"size:32"` // venue, event
	RefID   uint   `json:"refID"`

	IsRead    bool       `json:"isRead" gorm:"default:false"`
	CreatedAt time.Time  `json:"createdAt"`
	ReadAt    *time.Time `json:"readAt"`
}

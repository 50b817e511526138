package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" gorm:"uniqueIndex"`
	Password  string `json:"-"`
	AvatarURL string `json:"avatarURL"`
	Bio       string `json:"bio"`
	Role      string `json:"role" gorm:"type:varchar(20);default:user;index"` // user, admin, super_admin
}

// SimpleMember is the email-only membership kind: no password, no profile.
// Sessions for simple members are opaque tokens parked in Redis, never JWTs.
type SimpleMember struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Email       string    `json:"email" gorm:"uniqueIndex;not null"`
	DisplayName string    `json:"displayName" gorm:"size:100"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Venue is a directory listing submitted by a member and reviewed by an admin.
type Venue struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"not null"`
	Address     string `json:"address" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`
	MapsURL     string `json:"mapsURL" gorm:"size:512"`
	WebsiteURL  string `json:"websiteURL" gorm:"size:512"`
	FacebookURL string `json:"facebookURL" gorm:"size:512"`

	// Up to 3 image URLs, enforced at the handler boundary
	Images datatypes.JSON `json:"images" gorm:"type:json"`

	Status string `json:"status" gorm:"type:varchar(20);default:'pending';index"` // pending, approved, rejected

	SubmitterID uint `json:"submitterID" gorm:"index;not null"`
	Submitter   User `json:"submitter" gorm:"foreignKey:SubmitterID"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

package models

import (
	"time"
)

// EventProposal approval axis, set once by admin review.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// EventProposal operational axis. Empty until the event is reviewed;
// "active" is only reachable through approval, "cancelled" only from "active".
const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
	StatusRejected  = "rejected"
)

// EventProposal is a community event from member submission through its
// review and cancellation lifecycle.
type EventProposal struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:200;not null"`

	VenueID uint  `json:"venueID" gorm:"index;not null"`
	Venue   Venue `json:"venue" gorm:"foreignKey:VenueID"`

	// Creator may be a full account or a simple (email-only) member.
	CreatorKind  string `json:"creatorKind" gorm:"size:10;not null"` // full, simple
	CreatorID    uint   `json:"creatorID" gorm:"index;not null"`
	CreatorName  string `json:"creatorName" gorm:"size:150"`
	CreatorEmail string `json:"creatorEmail" gorm:"size:150;not null"`

	EventDate    time.Time `json:"eventDate" gorm:"not null"`
	RSVPDeadline time.Time `json:"rsvpDeadline" gorm:"not null"`
	Message      string    `json:"message" gorm:"type:text"`

	// InviteToken is the sole credential for the public RSVP form. It must be
	// cryptographically random and never derived from guessable fields
	// (utils.GenerateShortToken reads crypto/rand).
	InviteToken string `json:"-" gorm:"uniqueIndex;size:64;not null"`

	ApprovalStatus string `json:"approvalStatus" gorm:"type:varchar(20);default:'pending';index"`
	Status         string `json:"status" gorm:"type:varchar(20);default:'';index"`

	RSVPs []RSVPResponse `json:"-" gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RSVPResponse is one invitee answer, created by the public token-gated form.
// Never updated or deleted except by cascade when the event row goes away.
// There is intentionally no unique index on (event_id, email): a repeat
// submission records a new row, matching the product's observed behavior.
type RSVPResponse struct {
	ID      uint          `json:"id" gorm:"primaryKey"`
	EventID uint          `json:"eventID" gorm:"index;not null"`
	Event   EventProposal `json:"-" gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`

	Email    string `json:"email" gorm:"size:150;not null;index"`
	Response string `json:"response" gorm:"type:varchar(5);not null"` // yes, no

	// Nil whenever Response is "no"; 1-10 otherwise.
	GuestCount *int `json:"guestCount"`

	Message     string    `json:"message" gorm:"size:500"`
	RespondedAt time.Time `json:"respondedAt"`

	CreatedAt time.Time `json:"createdAt"`
}

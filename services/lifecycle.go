package services

import (
	"community-hub-server/models"
	"community-hub-server/storage"
	"errors"
	"log"
	"time"
)

var (
	ErrEventNotFound = errors.New("event not found")
	// ErrAlreadyReviewed means the conditional transition matched zero rows:
	// another admin got there first, or the event was never pending.
	ErrAlreadyReviewed = errors.New("event already reviewed")
	ErrNotActive       = errors.New("event is not active")
	ErrNotApproved     = errors.New("event is not approved")
	ErrBadDeadline     = errors.New("rsvp deadline must be before the event date")
)

// LifecycleService owns the EventProposal state machine and fans out the
// consequences of each transition. Persistence failures abort a transition;
// mail failures never do.
type LifecycleService struct{}

func NewLifecycleService() *LifecycleService {
	return &LifecycleService{}
}

// ProposeInput is what a member submits from the proposal form.
type ProposeInput struct {
	Name         string
	VenueID      uint
	EventDate    time.Time
	RSVPDeadline time.Time
	Message      string
	CreatorKind  string
	CreatorID    uint
	CreatorName  string
	CreatorEmail string
}

// Propose creates a pending event. No email goes out here: invitations are a
// consequence of approval, not of submission. The deadline must fall before
// the event itself.
func (ls *LifecycleService) Propose(input ProposeInput, token string) (*models.EventProposal, error) {
	if !input.RSVPDeadline.Before(input.EventDate) {
		return nil, ErrBadDeadline
	}

	event := models.EventProposal{
		Name:           input.Name,
		VenueID:        input.VenueID,
		CreatorKind:    input.CreatorKind,
		CreatorID:      input.CreatorID,
		CreatorName:    input.CreatorName,
		CreatorEmail:   input.CreatorEmail,
		EventDate:      input.EventDate,
		RSVPDeadline:   input.RSVPDeadline,
		Message:        input.Message,
		InviteToken:    token,
		ApprovalStatus: models.ApprovalPending,
	}
	if err := storage.DB.Create(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// Approve transitions pending -> approved/active and fans the invitation out
// to every member email on file. The update is conditional on
// approval_status so two concurrent approvals cannot both fire the batch
// send. Partial send failure degrades the report, never the approval.
func (ls *LifecycleService) Approve(eventID uint) (*models.EventProposal, BatchReport, error) {
	res := storage.DB.Model(&models.EventProposal{}).
		Where("id = ? AND approval_status = ?", eventID, models.ApprovalPending).
		Updates(map[string]interface{}{
			"approval_status": models.ApprovalApproved,
			"status":          models.StatusActive,
		})
	if res.Error != nil {
		return nil, BatchReport{}, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, BatchReport{}, ls.reviewConflict(eventID)
	}

	var event models.EventProposal
	if err := storage.DB.Preload("Venue").First(&event, eventID).Error; err != nil {
		return nil, BatchReport{}, err
	}

	recipients, err := ls.memberEmails()
	if err != nil {
		// Approval already stands; an unreadable member list just means an
		// empty batch report.
		log.Printf("member email lookup failed for event %d: %v", eventID, err)
		return &event, BatchReport{}, nil
	}

	report := MailerInstance.SendInvitationBatch(&event, recipients)
	return &event, report, nil
}

// Reject transitions pending -> rejected/rejected and notifies the creator
// only. A failed notice is logged; the rejection stands.
func (ls *LifecycleService) Reject(eventID uint) (*models.EventProposal, error) {
	res := storage.DB.Model(&models.EventProposal{}).
		Where("id = ? AND approval_status = ?", eventID, models.ApprovalPending).
		Updates(map[string]interface{}{
			"approval_status": models.ApprovalRejected,
			"status":          models.StatusRejected,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ls.reviewConflict(eventID)
	}

	var event models.EventProposal
	if err := storage.DB.Preload("Venue").First(&event, eventID).Error; err != nil {
		return nil, err
	}

	if err := MailerInstance.SendRejectionNotice(&event); err != nil {
		log.Printf("rejection notice for event %d failed: %v", eventID, err)
	}
	return &event, nil
}

// Cancel transitions active -> cancelled. Cancellation is deliberately
// silent: the admin handles attendee communication out of band.
func (ls *LifecycleService) Cancel(eventID uint) (*models.EventProposal, error) {
	res := storage.DB.Model(&models.EventProposal{}).
		Where("id = ? AND status = ?", eventID, models.StatusActive).
		Update("status", models.StatusCancelled)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		var event models.EventProposal
		if err := storage.DB.First(&event, eventID).Error; err != nil {
			return nil, ErrEventNotFound
		}
		return nil, ErrNotActive
	}

	var event models.EventProposal
	if err := storage.DB.First(&event, eventID).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// Delete hard-deletes the event and its RSVPs from any state. Irreversible;
// the interactive confirmation lives at the caller boundary.
func (ls *LifecycleService) Delete(eventID uint) error {
	var event models.EventProposal
	if err := storage.DB.First(&event, eventID).Error; err != nil {
		return ErrEventNotFound
	}
	if err := storage.DB.Where("event_id = ?", eventID).Delete(&models.RSVPResponse{}).Error; err != nil {
		return err
	}
	return storage.DB.Delete(&event).Error
}

// Resend re-sends the invitation to one address. Only approved events can be
// resent for.
func (ls *LifecycleService) Resend(eventID uint, email string) error {
	var event models.EventProposal
	if err := storage.DB.Preload("Venue").First(&event, eventID).Error; err != nil {
		return ErrEventNotFound
	}
	if event.ApprovalStatus != models.ApprovalApproved {
		return ErrNotApproved
	}
	return MailerInstance.SendInvitationTo(&event, email)
}

// reviewConflict distinguishes "no such event" from "someone reviewed it
// first" after a zero-row conditional update.
func (ls *LifecycleService) reviewConflict(eventID uint) error {
	var event models.EventProposal
	if err := storage.DB.First(&event, eventID).Error; err != nil {
		return ErrEventNotFound
	}
	return ErrAlreadyReviewed
}

// memberEmails is every registered address across both membership kinds,
// deduplicated.
func (ls *LifecycleService) memberEmails() ([]string, error) {
	var full []string
	if err := storage.DB.Model(&models.User{}).Where("email <> ''").Pluck("email", &full).Error; err != nil {
		return nil, err
	}
	var simple []string
	if err := storage.DB.Model(&models.SimpleMember{}).Pluck("email", &simple).Error; err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(full)+len(simple))
	out := make([]string, 0, len(full)+len(simple))
	for _, email := range append(full, simple...) {
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		out = append(out, email)
	}
	return out, nil
}

// Global lifecycle instance
var LifecycleInstance = NewLifecycleService()

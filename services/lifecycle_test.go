package services

import (
	"community-hub-server/models"
	"community-hub-server/storage"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB points storage.DB at a fresh in-memory database.
func setupTestDB(t *testing.T, name string) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	storage.PerformMigrations(db)
	storage.DB = db
}

// stubMail replaces the mail dispatcher for the duration of a test and
// records every send.
type mailRecord struct {
	To      string
	Subject string
}

func stubMail(t *testing.T, failFor map[string]bool) *[]mailRecord {
	t.Helper()
	var sent []mailRecord
	original := sendMail
	sendMail = func(to, subject, html string) (bool, error) {
		if failFor[to] {
			return false, errors.New("smtp unavailable")
		}
		sent = append(sent, mailRecord{To: to, Subject: subject})
		return true, nil
	}
	t.Cleanup(func() { sendMail = original })
	return &sent
}

func seedVenue(t *testing.T) models.Venue {
	t.Helper()
	venue := models.Venue{Name: "The Roastery", Address: "12 Main St", Status: "approved"}
	if err := storage.DB.Create(&venue).Error; err != nil {
		t.Fatalf("failed to seed venue: %v", err)
	}
	return venue
}

func seedPendingEvent(t *testing.T, venueID uint) *models.EventProposal {
	t.Helper()
	event, err := LifecycleInstance.Propose(ProposeInput{
		Name:         "Saturday Coffee Meetup",
		VenueID:      venueID,
		EventDate:    time.Now().Add(72 * time.Hour),
		RSVPDeadline: time.Now().Add(48 * time.Hour),
		Message:      "Bring a friend",
		CreatorKind:  "full",
		CreatorID:    1,
		CreatorName:  "Pat Organizer",
		CreatorEmail: "pat@example.com",
	}, "testtoken1234567890abcdef12345678")
	if err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	return event
}

func TestProposeRejectsDeadlineAfterEvent(t *testing.T) {
	setupTestDB(t, "lifecycle_deadline")

	_, err := LifecycleInstance.Propose(ProposeInput{
		Name:         "Dinner",
		VenueID:      1,
		EventDate:    time.Now().Add(24 * time.Hour),
		RSVPDeadline: time.Now().Add(48 * time.Hour),
	}, "tok")
	if !errors.Is(err, ErrBadDeadline) {
		t.Fatalf("expected ErrBadDeadline, got %v", err)
	}
}

func TestProposeCreatesPendingWithoutMail(t *testing.T) {
	setupTestDB(t, "lifecycle_propose")
	sent := stubMail(t, nil)
	venue := seedVenue(t)

	event := seedPendingEvent(t, venue.ID)

	if event.ApprovalStatus != models.ApprovalPending {
		t.Fatalf("expected pending approval, got %q", event.ApprovalStatus)
	}
	if len(*sent) != 0 {
		t.Fatalf("proposal must not send mail, sent %d", len(*sent))
	}
}

func TestApproveSendsInvitationsToAllMembers(t *testing.T) {
	setupTestDB(t, "lifecycle_approve")
	sent := stubMail(t, nil)
	venue := seedVenue(t)

	storage.DB.Create(&models.User{FirstName: "A", LastName: "B", Email: "full@example.com", Password: "x"})
	storage.DB.Create(&models.SimpleMember{Email: "simple@example.com"})
	// Same address in both tables must be mailed once.
	storage.DB.Create(&models.SimpleMember{Email: "full@example.com", DisplayName: "Dup"})

	event := seedPendingEvent(t, venue.ID)

	approved, report, err := LifecycleInstance.Approve(event.ID)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.ApprovalStatus != models.ApprovalApproved || approved.Status != models.StatusActive {
		t.Fatalf("expected approved/active, got %q/%q", approved.ApprovalStatus, approved.Status)
	}
	if report.Successful != 2 || report.Failed != 0 {
		t.Fatalf("expected 2 successful sends, got %+v", report)
	}
	if len(*sent) != 2 {
		t.Fatalf("expected 2 mails, got %d", len(*sent))
	}
	for _, m := range *sent {
		if m.Subject != "You're invited: Saturday Coffee Meetup at The Roastery" {
			t.Fatalf("unexpected subject %q", m.Subject)
		}
	}
}

func TestApprovePartialSendFailureDegradesReport(t *testing.T) {
	setupTestDB(t, "lifecycle_partial")
	stubMail(t, map[string]bool{"down@example.com": true})
	venue := seedVenue(t)

	storage.DB.Create(&models.SimpleMember{Email: "up@example.com"})
	storage.DB.Create(&models.SimpleMember{Email: "down@example.com"})

	event := seedPendingEvent(t, venue.ID)

	approved, report, err := LifecycleInstance.Approve(event.ID)
	if err != nil {
		t.Fatalf("approve must survive partial mail failure, got %v", err)
	}
	if approved.ApprovalStatus != models.ApprovalApproved {
		t.Fatalf("approval must stand despite mail failure")
	}
	if report.Successful != 1 || report.Failed != 1 {
		t.Fatalf("expected 1/1 report, got %+v", report)
	}
}

func TestApproveTwiceConflicts(t *testing.T) {
	setupTestDB(t, "lifecycle_twice")
	stubMail(t, nil)
	venue := seedVenue(t)
	event := seedPendingEvent(t, venue.ID)

	if _, _, err := LifecycleInstance.Approve(event.ID); err != nil {
		t.Fatalf("first approve failed: %v", err)
	}
	if _, _, err := LifecycleInstance.Approve(event.ID); !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed, got %v", err)
	}
	if _, err := LifecycleInstance.Reject(event.ID); !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("reject after approve: expected ErrAlreadyReviewed, got %v", err)
	}
}

func TestApproveMissingEvent(t *testing.T) {
	setupTestDB(t, "lifecycle_missing")
	stubMail(t, nil)

	if _, _, err := LifecycleInstance.Approve(9999); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func TestRejectNotifiesCreatorOnly(t *testing.T) {
	setupTestDB(t, "lifecycle_reject")
	sent := stubMail(t, nil)
	venue := seedVenue(t)

	storage.DB.Create(&models.SimpleMember{Email: "bystander@example.com"})
	event := seedPendingEvent(t, venue.ID)

	rejected, err := LifecycleInstance.Reject(event.ID)
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.ApprovalStatus != models.ApprovalRejected || rejected.Status != models.StatusRejected {
		t.Fatalf("expected rejected/rejected, got %q/%q", rejected.ApprovalStatus, rejected.Status)
	}
	if len(*sent) != 1 || (*sent)[0].To != "pat@example.com" {
		t.Fatalf("expected a single notice to the creator, got %+v", *sent)
	}
}

func TestRejectionNoticeFailureDoesNotAbort(t *testing.T) {
	setupTestDB(t, "lifecycle_reject_fail")
	stubMail(t, map[string]bool{"pat@example.com": true})
	venue := seedVenue(t)
	event := seedPendingEvent(t, venue.ID)

	rejected, err := LifecycleInstance.Reject(event.ID)
	if err != nil {
		t.Fatalf("reject must stand when the notice fails, got %v", err)
	}
	if rejected.ApprovalStatus != models.ApprovalRejected {
		t.Fatalf("expected rejected, got %q", rejected.ApprovalStatus)
	}
}

func TestCancelOnlyActiveEvents(t *testing.T) {
	setupTestDB(t, "lifecycle_cancel")
	stubMail(t, nil)
	venue := seedVenue(t)
	event := seedPendingEvent(t, venue.ID)

	// Pending events have no active status to cancel.
	if _, err := LifecycleInstance.Cancel(event.ID); !errors.Is(err, ErrNotActive) {
		t.Fatalf("expected ErrNotActive for pending event, got %v", err)
	}

	if _, _, err := LifecycleInstance.Approve(event.ID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	cancelled, err := LifecycleInstance.Cancel(event.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != models.StatusCancelled {
		t.Fatalf("expected cancelled, got %q", cancelled.Status)
	}

	if _, err := LifecycleInstance.Cancel(event.ID); !errors.Is(err, ErrNotActive) {
		t.Fatalf("second cancel: expected ErrNotActive, got %v", err)
	}
	if _, err := LifecycleInstance.Cancel(9999); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func TestDeleteRemovesEventAndRSVPs(t *testing.T) {
	setupTestDB(t, "lifecycle_delete")
	stubMail(t, nil)
	venue := seedVenue(t)
	event := seedPendingEvent(t, venue.ID)

	guest := 2
	storage.DB.Create(&models.RSVPResponse{
		EventID: event.ID, Email: "guest@example.com", Response: "yes",
		GuestCount: &guest, RespondedAt: time.Now(),
	})

	if err := LifecycleInstance.Delete(event.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	var events, rsvps int64
	storage.DB.Model(&models.EventProposal{}).Where("id = ?", event.ID).Count(&events)
	storage.DB.Model(&models.RSVPResponse{}).Where("event_id = ?", event.ID).Count(&rsvps)
	if events != 0 || rsvps != 0 {
		t.Fatalf("expected full removal, have %d events and %d rsvps", events, rsvps)
	}

	if err := LifecycleInstance.Delete(event.ID); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound on re-delete, got %v", err)
	}
}

func TestResendRequiresApproval(t *testing.T) {
	setupTestDB(t, "lifecycle_resend")
	sent := stubMail(t, nil)
	venue := seedVenue(t)
	event := seedPendingEvent(t, venue.ID)

	if err := LifecycleInstance.Resend(event.ID, "late@example.com"); !errors.Is(err, ErrNotApproved) {
		t.Fatalf("expected ErrNotApproved for pending event, got %v", err)
	}

	if _, _, err := LifecycleInstance.Approve(event.ID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	*sent = nil

	if err := LifecycleInstance.Resend(event.ID, "late@example.com"); err != nil {
		t.Fatalf("resend failed: %v", err)
	}
	if len(*sent) != 1 || (*sent)[0].To != "late@example.com" {
		t.Fatalf("expected one resend, got %+v", *sent)
	}
}

package routes

import (
	"bytes"
	"community-hub-server/models"
	"community-hub-server/storage"
	"community-hub-server/utils"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kataras/iris/v12"
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

func buildRSVPTestApp() *iris.Application {
	app := iris.New()
	app.Validator = utils.Validate

	rsvp := app.Party("/api/rsvp")
	{
		rsvp.Get("/{token}", ResolveInvitation)
		rsvp.Post("/{token}", SubmitRSVP)
	}
	app.Build()
	return app
}

func seedInvitedEvent(t *testing.T, approvalStatus, status string, deadline time.Time) *models.EventProposal {
	t.Helper()
	venue := models.Venue{Name: "The Hall", Address: "3 Oak Ave", Status: "approved"}
	if err := storage.DB.Create(&venue).Error; err != nil {
		t.Fatalf("failed to seed venue: %v", err)
	}
	event := models.EventProposal{
		Name:           "Community Lunch",
		VenueID:        venue.ID,
		CreatorKind:    "simple",
		CreatorID:      1,
		CreatorName:    "Riley",
		CreatorEmail:   "riley@example.com",
		EventDate:      deadline.Add(24 * time.Hour),
		RSVPDeadline:   deadline,
		InviteToken:    utils.GenerateShortToken(16),
		ApprovalStatus: approvalStatus,
		Status:         status,
	}
	if err := storage.DB.Create(&event).Error; err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}
	return &event
}

func postJSON(app *iris.Application, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	return resp
}

func TestResolveInvitationVisibility(t *testing.T) {
	setupTestDB(t, "rsvp_visibility")
	app := buildRSVPTestApp()
	future := time.Now().Add(48 * time.Hour)

	active := seedInvitedEvent(t, models.ApprovalApproved, models.StatusActive, future)
	pending := seedInvitedEvent(t, models.ApprovalPending, "", future)
	cancelled := seedInvitedEvent(t, models.ApprovalApproved, models.StatusCancelled, future)

	req := httptest.NewRequest(http.MethodGet, "/api/rsvp/"+active.InviteToken, nil)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("active event: expected 200, got %d", resp.Code)
	}
	var body struct {
		Event models.EventProposal `json:"event"`
		Venue models.Venue         `json:"venue"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if body.Event.Name != "Community Lunch" || body.Venue.Name != "The Hall" {
		t.Fatalf("expected event with venue joined, got %+v", body)
	}

	// Pending, cancelled, and unknown tokens all look identical: 404.
	for _, token := range []string{pending.InviteToken, cancelled.InviteToken, "nosuchtoken"} {
		req := httptest.NewRequest(http.MethodGet, "/api/rsvp/"+token, nil)
		resp := httptest.NewRecorder()
		app.ServeHTTP(resp, req)
		if resp.Code != http.StatusNotFound {
			t.Fatalf("token %q: expected 404, got %d", token, resp.Code)
		}
	}
}

func TestResolveInvitationDeadlinePassed(t *testing.T) {
	setupTestDB(t, "rsvp_deadline")
	app := buildRSVPTestApp()

	past := seedInvitedEvent(t, models.ApprovalApproved, models.StatusActive, time.Now().Add(-time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/api/rsvp/"+past.InviteToken, nil)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code != http.StatusGone {
		t.Fatalf("expected 410 after deadline, got %d", resp.Code)
	}

	guest := 2
	submit := postJSON(app, "/api/rsvp/"+past.InviteToken, iris.Map{
		"email": "late@example.com", "response": "yes", "guestCount": guest,
	})
	if submit.Code != http.StatusGone {
		t.Fatalf("expected 410 on submit after deadline, got %d", submit.Code)
	}
}

func TestSubmitRSVPGuestCountRules(t *testing.T) {
	setupTestDB(t, "rsvp_guests")
	app := buildRSVPTestApp()
	event := seedInvitedEvent(t, models.ApprovalApproved, models.StatusActive, time.Now().Add(48*time.Hour))
	path := "/api/rsvp/" + event.InviteToken

	// Attending without a guest count, or with one out of range, is rejected.
	for _, body := range []iris.Map{
		{"email": "a@example.com", "response": "yes"},
		{"email": "a@example.com", "response": "yes", "guestCount": 0},
		{"email": "a@example.com", "response": "yes", "guestCount": 11},
	} {
		if resp := postJSON(app, path, body); resp.Code != http.StatusUnprocessableEntity {
			t.Fatalf("body %v: expected 422, got %d", body, resp.Code)
		}
	}

	if resp := postJSON(app, path, iris.Map{
		"email": "a@example.com", "response": "yes", "guestCount": 3, "message": "See you there",
	}); resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for valid yes, got %d: %s", resp.Code, resp.Body.String())
	}

	// A "no" discards any guest count sent along.
	if resp := postJSON(app, path, iris.Map{
		"email": "b@example.com", "response": "no", "guestCount": 5,
	}); resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for no, got %d", resp.Code)
	}

	var rows []models.RSVPResponse
	storage.DB.Where("event_id = ?", event.ID).Order("id").Find(&rows)
	if len(rows) != 2 {
		t.Fatalf("expected 2 stored responses, got %d", len(rows))
	}
	if rows[0].GuestCount == nil || *rows[0].GuestCount != 3 {
		t.Fatalf("yes response must keep its guest count, got %+v", rows[0].GuestCount)
	}
	if rows[1].GuestCount != nil {
		t.Fatalf("no response must store a nil guest count, got %d", *rows[1].GuestCount)
	}
}

func TestSubmitRSVPAllowsRepeatSubmissions(t *testing.T) {
	setupTestDB(t, "rsvp_repeat")
	app := buildRSVPTestApp()
	event := seedInvitedEvent(t, models.ApprovalApproved, models.StatusActive, time.Now().Add(48*time.Hour))
	path := "/api/rsvp/" + event.InviteToken

	for i := 0; i < 2; i++ {
		if resp := postJSON(app, path, iris.Map{
			"email": "same@example.com", "response": "no",
		}); resp.Code != http.StatusCreated {
			t.Fatalf("submission %d: expected 201, got %d", i, resp.Code)
		}
	}

	var count int64
	storage.DB.Model(&models.RSVPResponse{}).
		Where("event_id = ? AND email = ?", event.ID, "same@example.com").Count(&count)
	if count != 2 {
		t.Fatalf("each submission is its own row, expected 2, got %d", count)
	}
}

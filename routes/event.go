package routes

import (
	"community-hub-server/models"
	"community-hub-server/services"
	"community-hub-server/storage"
	"community-hub-server/utils"
	"errors"
	"net/http"
	"time"

	"github.com/kataras/iris/v12"
)

type ProposeEventInput struct {
	Name         string `json:"name" validate:"required,max=200"`
	VenueID      uint   `json:"venueID" validate:"required"`
	EventDate    string `json:"eventDate" validate:"required"`
	RSVPDeadline string `json:"rsvpDeadline" validate:"required"`
	Message      string `json:"message" validate:"omitempty,max=5000"`
}

// ProposeEvent files a pending event proposal. Open to both membership
// kinds; nothing is emailed until an admin approves.
func ProposeEvent(ctx iris.Context) {
	session := utils.GetSession(ctx)
	if !session.IsMember() {
		utils.JSONError(ctx, http.StatusUnauthorized, "unauthorized", "membership required")
		return
	}

	var input ProposeEventInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	eventDate, err := parseEventTime(input.EventDate)
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_date", "eventDate is not a recognized date-time")
		return
	}
	deadline, err := parseEventTime(input.RSVPDeadline)
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_date", "rsvpDeadline is not a recognized date-time")
		return
	}

	var venue models.Venue
	if err := storage.DB.Where("status = ?", "approved").First(&venue, input.VenueID).Error; err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_venue", "venue not found or not approved")
		return
	}

	event, err := services.LifecycleInstance.Propose(services.ProposeInput{
		Name:         input.Name,
		VenueID:      venue.ID,
		EventDate:    eventDate,
		RSVPDeadline: deadline,
		Message:      input.Message,
		CreatorKind:  string(session.Kind),
		CreatorID:    session.ID,
		CreatorName:  session.Name,
		CreatorEmail: session.Email,
	}, utils.GenerateShortToken(16))
	if err != nil {
		if errors.Is(err, services.ErrBadDeadline) {
			utils.JSONError(ctx, http.StatusUnprocessableEntity, "invalid_deadline",
				"the RSVP deadline must fall before the event date")
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	notifyAdmins(ctx, "event.proposed", "New event proposal",
		event.Name+" is waiting for review", "event", event.ID)

	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(event)
}

// GetUpcomingEvents lists approved, non-cancelled events that have not
// happened yet, venue joined in one query.
func GetUpcomingEvents(ctx iris.Context) {
	var events []models.EventProposal
	err := storage.DB.Preload("Venue").
		Where("approval_status = ? AND status = ? AND event_date > ?",
			models.ApprovalApproved, models.StatusActive, time.Now()).
		Order("event_date ASC").
		Find(&events).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"events": events})
}

// GetMyEvents lists the caller's own proposals in every state.
func GetMyEvents(ctx iris.Context) {
	session := utils.GetSession(ctx)
	if !session.IsMember() {
		utils.JSONError(ctx, http.StatusUnauthorized, "unauthorized", "membership required")
		return
	}

	var events []models.EventProposal
	err := storage.DB.Preload("Venue").
		Where("creator_kind = ? AND creator_id = ?", string(session.Kind), session.ID).
		Order("created_at DESC").
		Find(&events).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"events": events})
}

// parseEventTime accepts RFC3339 or the bare "2006-01-02T15:04" the event
// forms post.
func parseEventTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04", value)
}

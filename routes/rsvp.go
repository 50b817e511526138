package routes

import (
	"community-hub-server/models"
	"community-hub-server/storage"
	"community-hub-server/utils"
	"net/http"
	"time"

	"github.com/kataras/iris/v12"
)

// lookupInvitation is the one query behind both RSVP endpoints: event by
// token, venue joined, only approved and still-active events are visible.
// Possessing the token is the whole authorization.
func lookupInvitation(token string) (*models.EventProposal, bool) {
	var event models.EventProposal
	err := storage.DB.Preload("Venue").
		Where("invite_token = ? AND approval_status = ? AND status = ?",
			token, models.ApprovalApproved, models.StatusActive).
		First(&event).Error
	if err != nil {
		return nil, false
	}
	return &event, true
}

// ResolveInvitation renders the RSVP form data for a token. A pending,
// rejected, cancelled, or unknown event is indistinguishable from a missing
// one; only a passed deadline gets its own message.
func ResolveInvitation(ctx iris.Context) {
	token := ctx.Params().Get("token")

	event, ok := lookupInvitation(token)
	if !ok {
		utils.CreateNotFound(ctx)
		return
	}

	if time.Now().After(event.RSVPDeadline) {
		utils.JSONError(ctx, http.StatusGone, "deadline_passed",
			"The RSVP deadline for this event has passed.")
		return
	}

	ctx.JSON(iris.Map{
		"event": event,
		"venue": event.Venue,
	})
}

type SubmitRSVPInput struct {
	Email      string `json:"email" validate:"required,email"`
	Response   string `json:"response" validate:"required,oneof=yes no"`
	GuestCount *int   `json:"guestCount"`
	Message    string `json:"message" validate:"omitempty,max=500"`
}

// SubmitRSVP records one invitee response. Guest count must be 1-10 when
// attending and is dropped entirely when not. Nothing stops the same email
// from answering twice; each submission is its own row.
func SubmitRSVP(ctx iris.Context) {
	token := ctx.Params().Get("token")

	event, ok := lookupInvitation(token)
	if !ok {
		utils.CreateNotFound(ctx)
		return
	}

	if time.Now().After(event.RSVPDeadline) {
		utils.JSONError(ctx, http.StatusGone, "deadline_passed",
			"The RSVP deadline for this event has passed.")
		return
	}

	var input SubmitRSVPInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var guestCount *int
	if input.Response == "yes" {
		if input.GuestCount == nil || *input.GuestCount < 1 || *input.GuestCount > 10 {
			utils.JSONError(ctx, http.StatusUnprocessableEntity, "invalid_guest_count",
				"guestCount must be between 1 and 10 when attending")
			return
		}
		guestCount = input.GuestCount
	}

	rsvp := models.RSVPResponse{
		EventID:     event.ID,
		Email:       input.Email,
		Response:    input.Response,
		GuestCount:  guestCount,
		Message:     input.Message,
		RespondedAt: time.Now(),
	}

	if err := storage.DB.Create(&rsvp).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(rsvp)
}

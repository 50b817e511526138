package routes

import (
	"community-hub-server/models"
	"community-hub-server/services"
	"community-hub-server/storage"
	"community-hub-server/utils"
	"errors"
	"net/http"

	"github.com/kataras/iris/v12"
)

// AdminListEvents: GET /api/admin/events?approval_status=pending&page=1
// One joined query per page; RSVP counts ride along via a subquery instead of
// a follow-up query per event.
func AdminListEvents(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	q := storage.DB.Model(&models.EventProposal{}).Preload("Venue")
	if status := ctx.URLParam("approval_status"); status != "" {
		q = q.Where("approval_status = ?", status)
	}

	var total int64
	q.Count(&total)

	var events []models.EventProposal
	if err := q.Offset((page - 1) * perPage).Limit(perPage).Order("created_at DESC").Find(&events).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	utils.JSONPage(ctx, events, page, perPage, total)
}

// AdminGetEvent returns one event with its venue and full RSVP list.
func AdminGetEvent(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var event models.EventProposal
	if err := storage.DB.Preload("Venue").Preload("RSVPs").First(&event, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var attending int64
	storage.DB.Model(&models.RSVPResponse{}).
		Where("event_id = ? AND response = ?", event.ID, "yes").Count(&attending)

	ctx.JSON(iris.Map{
		"event":      event,
		"rsvpYes":    attending,
		"rsvpTotal":  len(event.RSVPs),
		"inviteLink": services.MailerInstance.InvitationLink(&event),
	})
}

// ApproveEvent transitions one pending event and reports the invitation
// fan-out. The response carries only the changed row; a losing racer gets a
// 409 rather than a second batch send.
func ApproveEvent(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var before models.EventProposal
	storage.DB.First(&before, id)

	event, report, err := services.LifecycleInstance.Approve(id)
	if err != nil {
		handleLifecycleError(ctx, err)
		return
	}
	utils.Audit(ctx, "event.approve", "event", event.ID, before, event)

	body := iris.Map{
		"event":      event,
		"mailReport": report,
	}
	if report.Failed > 0 {
		body["warning"] = "some invitation emails failed to send"
	}
	ctx.JSON(body)
}

// RejectEvent transitions one pending event to rejected and notifies the
// proposer by email.
func RejectEvent(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var before models.EventProposal
	storage.DB.First(&before, id)

	event, err := services.LifecycleInstance.Reject(id)
	if err != nil {
		handleLifecycleError(ctx, err)
		return
	}
	utils.Audit(ctx, "event.reject", "event", event.ID, before, event)
	ctx.JSON(iris.Map{"event": event})
}

// CancelEvent marks an active event cancelled. The row stays for the record;
// its RSVP link stops resolving.
func CancelEvent(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var before models.EventProposal
	storage.DB.First(&before, id)

	event, err := services.LifecycleInstance.Cancel(id)
	if err != nil {
		handleLifecycleError(ctx, err)
		return
	}
	utils.Audit(ctx, "event.cancel", "event", event.ID, before, event)
	ctx.JSON(iris.Map{"event": event})
}

// DeleteEvent removes the event and its RSVPs permanently.
func DeleteEvent(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var before models.EventProposal
	storage.DB.First(&before, id)

	if err := services.LifecycleInstance.Delete(id); err != nil {
		handleLifecycleError(ctx, err)
		return
	}
	utils.Audit(ctx, "event.delete", "event", id, before, nil)
	ctx.JSON(iris.Map{"deleted": true})
}

type ResendInviteInput struct {
	Email string `json:"email" validate:"required,email"`
}

// ResendInvite re-sends one invitation email for an approved event.
func ResendInvite(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var input ResendInviteInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if err := services.LifecycleInstance.Resend(id, input.Email); err != nil {
		if errors.Is(err, services.ErrNotApproved) {
			utils.JSONError(ctx, http.StatusConflict, "not_approved",
				"only approved events have invitations to resend")
			return
		}
		handleLifecycleError(ctx, err)
		return
	}
	utils.Audit(ctx, "event.resend_invite", "event", id, nil, iris.Map{"email": input.Email})
	ctx.JSON(iris.Map{"sent": true})
}

// handleLifecycleError maps the service's sentinel errors onto HTTP statuses.
func handleLifecycleError(ctx iris.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEventNotFound):
		utils.CreateNotFound(ctx)
	case errors.Is(err, services.ErrAlreadyReviewed):
		utils.JSONError(ctx, http.StatusConflict, "already_reviewed",
			"this event has already been reviewed")
	case errors.Is(err, services.ErrNotActive):
		utils.JSONError(ctx, http.StatusConflict, "not_active",
			"only active events can be cancelled")
	default:
		utils.CreateInternalServerError(ctx)
	}
}

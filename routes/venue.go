package routes

import (
	"community-hub-server/models"
	"community-hub-server/storage"
	"community-hub-server/utils"
	"encoding/json"
	"net/http"

	"github.com/kataras/iris/v12"
	"gorm.io/datatypes"
)

// GetVenues lists the approved directory, newest first.
func GetVenues(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	q := storage.DB.Model(&models.Venue{}).Where("status = ?", "approved")

	var total int64
	q.Count(&total)

	var venues []models.Venue
	if err := q.Offset((page - 1) * perPage).Limit(perPage).Order("created_at DESC").Find(&venues).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	utils.JSONPage(ctx, venues, page, perPage, total)
}

func GetVenue(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var venue models.Venue
	if err := storage.DB.Where("status = ?", "approved").First(&venue, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	ctx.JSON(venue)
}

type SubmitVenueInput struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Address     string   `json:"address" validate:"required,max=500"`
	Description string   `json:"description" validate:"omitempty,max=5000"`
	MapsURL     string   `json:"mapsURL" validate:"omitempty,url,max=512"`
	WebsiteURL  string   `json:"websiteURL" validate:"omitempty,url,max=512"`
	FacebookURL string   `json:"facebookURL" validate:"omitempty,url,max=512"`
	Images      []string `json:"images" validate:"omitempty,max=3,dive,url"`
}

// SubmitVenue files a pending venue for admin review. Full accounts only:
// venue listings carry a submitter foreign key into users.
func SubmitVenue(ctx iris.Context) {
	session := utils.GetSession(ctx)
	if session.Kind != utils.SessionFull {
		utils.JSONError(ctx, http.StatusUnauthorized, "unauthorized", "a full account is required to submit venues")
		return
	}

	var input SubmitVenueInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	images, _ := json.Marshal(input.Images)

	venue := models.Venue{
		Name:        input.Name,
		Address:     input.Address,
		Description: input.Description,
		MapsURL:     input.MapsURL,
		WebsiteURL:  input.WebsiteURL,
		FacebookURL: input.FacebookURL,
		Images:      datatypes.JSON(images),
		Status:      "pending",
		SubmitterID: session.ID,
	}

	if err := storage.DB.Create(&venue).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	notifyAdmins(ctx, "venue.submitted", "New venue submitted",
		venue.Name+" is waiting for review", "venue", venue.ID)

	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(venue)
}

// notifyAdmins records a Notification row for badge catch-up and pushes the
// same payload onto the Redis channel feeding the admin SSE stream.
func notifyAdmins(ctx iris.Context, kind, title, message, refType string, refID uint) {
	notification := models.Notification{
		Type:    kind,
		Title:   title,
		Message: message,
		RefType: refType,
		RefID:   refID,
	}
	storage.DB.Create(&notification)

	if payload, err := json.Marshal(notification); err == nil {
		storage.PublishAdminEvent(ctx.Request().Context(), payload)
	}
}

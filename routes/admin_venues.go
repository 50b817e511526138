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

// AdminListVenues: GET /api/admin/venues?status=pending — every listing
// regardless of status unless a filter is given.
func AdminListVenues(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	q := storage.DB.Model(&models.Venue{})
	if status := ctx.URLParam("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	q.Count(&total)

	var venues []models.Venue
	if err := q.Offset((page - 1) * perPage).Limit(perPage).Order("created_at DESC").Find(&venues).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	utils.JSONPage(ctx, venues, page, perPage, total)
}

type UpdateVenueStatusInput struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}

// UpdateVenueStatus approves or rejects a venue listing.
func UpdateVenueStatus(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var input UpdateVenueStatusInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var venue models.Venue
	if err := storage.DB.First(&venue, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	before := venue

	venue.Status = input.Status
	if err := storage.DB.Model(&venue).Update("status", input.Status).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "venue.status", "venue", venue.ID, before, venue)
	ctx.JSON(venue)
}

type UpdateVenueInput struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Address     string   `json:"address" validate:"required,max=500"`
	Description string   `json:"description" validate:"omitempty,max=5000"`
	MapsURL     string   `json:"mapsURL" validate:"omitempty,url,max=512"`
	WebsiteURL  string   `json:"websiteURL" validate:"omitempty,url,max=512"`
	FacebookURL string   `json:"facebookURL" validate:"omitempty,url,max=512"`
	Images      []string `json:"images" validate:"omitempty,max=3,dive,url"`
}

// UpdateVenue replaces the editable fields of a listing.
func UpdateVenue(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var input UpdateVenueInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var venue models.Venue
	if err := storage.DB.First(&venue, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	before := venue

	images, _ := json.Marshal(input.Images)
	venue.Name = input.Name
	venue.Address = input.Address
	venue.Description = input.Description
	venue.MapsURL = input.MapsURL
	venue.WebsiteURL = input.WebsiteURL
	venue.FacebookURL = input.FacebookURL
	venue.Images = datatypes.JSON(images)

	if err := storage.DB.Save(&venue).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "venue.update", "venue", venue.ID, before, venue)
	ctx.JSON(venue)
}

// DeleteVenue soft-deletes a listing. Events already pointing at it keep
// their venue snapshot through the association.
func DeleteVenue(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var venue models.Venue
	if err := storage.DB.First(&venue, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if err := storage.DB.Delete(&venue).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "venue.delete", "venue", venue.ID, venue, nil)
	ctx.JSON(iris.Map{"deleted": true})
}

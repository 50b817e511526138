package routes

import (
	"community-hub-server/storage"
	"community-hub-server/utils"
	"fmt"
	"net/http"
	"time"

	"github.com/kataras/iris/v12"
)

type UploadImageInput struct {
	Image string `json:"image" validate:"required"`
}

// UploadImage accepts a base64 venue photo, parks it on Cloudinary, and
// returns the hosted URL for the submission form to reference.
func UploadImage(ctx iris.Context) {
	session := utils.GetSession(ctx)
	if session.Kind != utils.SessionFull {
		utils.JSONError(ctx, http.StatusUnauthorized, "unauthorized", "a full account is required to upload images")
		return
	}

	var input UploadImageInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	publicID := fmt.Sprintf("venue_%d_%d", session.ID, time.Now().UnixNano())
	result := storage.UploadBase64Image(input.Image, publicID)
	if result["url"] == "" {
		utils.JSONError(ctx, http.StatusBadGateway, "upload_failed", "image upload failed")
		return
	}

	ctx.JSON(iris.Map{"url": result["url"]})
}

type DeleteImageInput struct {
	URL string `json:"url" validate:"required,url"`
}

// DeleteUploadedImage removes a hosted image, used when a submitter swaps a
// photo before the venue is filed.
func DeleteUploadedImage(ctx iris.Context) {
	session := utils.GetSession(ctx)
	if session.Kind != utils.SessionFull {
		utils.JSONError(ctx, http.StatusUnauthorized, "unauthorized", "a full account is required")
		return
	}

	var input DeleteImageInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if !storage.DeleteImage(input.URL) {
		utils.JSONError(ctx, http.StatusBadGateway, "delete_failed", "image deletion failed")
		return
	}
	ctx.JSON(iris.Map{"deleted": true})
}

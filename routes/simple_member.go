package routes

import (
	"community-hub-server/models"
	"community-hub-server/storage"
	"community-hub-server/utils"
	"strings"

	"github.com/kataras/iris/v12"
)

type JoinSimpleInput struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"displayName" validate:"omitempty,max=100"`
}

// JoinSimpleMember creates (or re-activates) an email-only membership and
// hands back an opaque session token. No password is ever involved; holding
// the token is the whole credential, mirroring the RSVP token scheme.
func JoinSimpleMember(ctx iris.Context) {
	var input JoinSimpleInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	email := strings.ToLower(input.Email)

	// A full account with this email keeps precedence over a simple one.
	var existingUser models.User
	if err := storage.DB.Where("email = ?", email).Limit(1).Find(&existingUser).Error; err == nil && existingUser.ID != 0 {
		utils.CreateError(iris.StatusConflict, "Conflict",
			"This email belongs to a full account. Please log in instead.", ctx)
		return
	}

	member := models.SimpleMember{Email: email, DisplayName: input.DisplayName}
	if err := storage.DB.Where("email = ?", email).FirstOrCreate(&member).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if input.DisplayName != "" && member.DisplayName != input.DisplayName {
		storage.DB.Model(&member).Update("display_name", input.DisplayName)
		member.DisplayName = input.DisplayName
	}

	token, err := utils.CreateSimpleSession(member.ID)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"member":      member,
		"memberToken": token,
	})
}

// GetCurrentMember reports the resolved session so the client renders the
// right chrome without juggling two auth checks.
func GetCurrentMember(ctx iris.Context) {
	session := utils.GetSession(ctx)
	ctx.JSON(iris.Map{
		"kind":     session.Kind,
		"id":       session.ID,
		"email":    session.Email,
		"name":     session.Name,
		"isMember": session.IsMember(),
	})
}

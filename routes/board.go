package routes

import (
	"community-hub-server/models"
	"community-hub-server/storage"
	"community-hub-server/utils"
	"net/http"

	"github.com/kataras/iris/v12"
)

type CreateBoardMessageInput struct {
	Subject string `json:"subject" validate:"omitempty,max=200"`
	Body    string `json:"body" validate:"required,max=5000"`
}

// CreateBoardMessage posts to the community board. Both membership kinds can
// post; the resolved session supplies the author identity.
func CreateBoardMessage(ctx iris.Context) {
	session := utils.GetSession(ctx)
	if !session.IsMember() {
		utils.JSONError(ctx, http.StatusUnauthorized, "unauthorized", "membership required")
		return
	}

	var input CreateBoardMessageInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	name := session.Name
	if name == "" {
		name = session.Email
	}

	message := models.BoardMessage{
		AuthorKind: string(session.Kind),
		AuthorID:   session.ID,
		AuthorName: name,
		Subject:    input.Subject,
		Body:       input.Body,
	}

	if err := storage.DB.Create(&message).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(message)
}

// ListBoardMessages: GET /api/board?cursor=...&limit=...
// Cursor pagination, newest first in the response.
func ListBoardMessages(ctx iris.Context) {
	limit, _ := ctx.URLParamInt("limit")
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	cursor, _ := ctx.URLParamInt("cursor")

	q := storage.DB.Model(&models.BoardMessage{})
	if cursor > 0 {
		q = q.Where("id < ?", cursor)
	}
	var messages []models.BoardMessage
	if err := q.Order("id DESC").Limit(limit).Find(&messages).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	nextCursor := 0
	if len(messages) > 0 {
		nextCursor = int(messages[len(messages)-1].ID)
	}
	ctx.JSON(iris.Map{"messages": messages, "nextCursor": nextCursor})
}

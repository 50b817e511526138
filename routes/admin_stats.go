package routes

import (
	"community-hub-server/models"
	"community-hub-server/storage"
	"community-hub-server/utils"
	"net/http"
	"time"

	"github.com/kataras/iris/v12"
)

// AdminStats aggregates the dashboard counters in a handful of COUNT
// queries so the console never pulls full tables to count client-side.
func AdminStats(ctx iris.Context) {
	var pendingEvents, pendingVenues, upcomingEvents, totalMembers, unreadNotifications, recentRSVPs int64

	db := storage.DB

	db.Model(&models.EventProposal{}).
		Where("approval_status = ?", models.ApprovalPending).Count(&pendingEvents)
	db.Model(&models.Venue{}).
		Where("status = ?", "pending").Count(&pendingVenues)
	db.Model(&models.EventProposal{}).
		Where("approval_status = ? AND status = ? AND event_date > ?",
			models.ApprovalApproved, models.StatusActive, time.Now()).Count(&upcomingEvents)

	var fullAccounts, simpleMembers int64
	db.Model(&models.User{}).Count(&fullAccounts)
	db.Model(&models.SimpleMember{}).Count(&simpleMembers)
	totalMembers = fullAccounts + simpleMembers

	db.Model(&models.Notification{}).Where("is_read = ?", false).Count(&unreadNotifications)
	db.Model(&models.RSVPResponse{}).
		Where("responded_at > ?", time.Now().AddDate(0, 0, -7)).Count(&recentRSVPs)

	ctx.JSON(iris.Map{
		"pendingEvents":       pendingEvents,
		"pendingVenues":       pendingVenues,
		"upcomingEvents":      upcomingEvents,
		"totalMembers":        totalMembers,
		"unreadNotifications": unreadNotifications,
		"recentRSVPs":         recentRSVPs,
	})
}

// AdminListNotifications: newest first, unread on request.
func AdminListNotifications(ctx iris.Context) {
	limit := ctx.URLParamIntDefault("limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	q := storage.DB.Model(&models.Notification{})
	if ctx.URLParamBoolDefault("unread", false) {
		q = q.Where("is_read = ?", false)
	}

	var notifications []models.Notification
	if err := q.Order("id DESC").Limit(limit).Find(&notifications).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"notifications": notifications})
}

// MarkNotificationRead stamps one notification as read.
func MarkNotificationRead(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	now := time.Now()
	res := storage.DB.Model(&models.Notification{}).
		Where("id = ? AND is_read = ?", id, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now})
	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"read": true})
}

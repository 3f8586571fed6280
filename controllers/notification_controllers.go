package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/satouyama/pesto-sub001/models"
	"github.com/satouyama/pesto-sub001/utils"
	"gorm.io/gorm"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// visibleTo -> the user's own notifications, plus staff-wide ones for back office users
func (nc *NotificationController) visibleTo(c *gin.Context, userID uint, role string) *gorm.DB {
	db := nc.DB.WithContext(c.Request.Context())
	if isBackOffice(role) {
		return db.Where("user_id = ? OR user_id IS NULL", userID)
	}
	return db.Where("user_id = ?", userID)
}

// GetMyNotifications lists the newest notifications of the current user. ?unread=true filters.
func (nc *NotificationController) GetMyNotifications(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}

	query := nc.visibleTo(c, userID, role)
	if c.Query("unread") == "true" {
		query = query.Where("is_read = ?", false)
	}

	var notifs []models.Notification
	if err := query.Order("created_at DESC, id DESC").Limit(100).Find(&notifs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notifications", notifs)
}

func (nc *NotificationController) MarkAsRead(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}
	id, err := parseIDParam(c, "notif_id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var notif models.Notification
	if err := nc.visibleTo(c, userID, role).First(&notif, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondAppError(c, utils.NotFound("notification not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := nc.DB.WithContext(c.Request.Context()).Model(&notif).Update("is_read", true).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	notif.IsRead = true
	utils.RespondJSON(c, http.StatusOK, "Notification marked as read", notif)
}

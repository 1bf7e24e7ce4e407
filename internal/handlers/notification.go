package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskpilot-dev/taskpilot/internal/models"
	"github.com/taskpilot-dev/taskpilot/internal/services"
	"github.com/taskpilot-dev/taskpilot/internal/utils"
)

type NotificationResponse struct {
	ID        uint      `json:"id"`
	Message   string    `json:"message"`
	TaskID    *uint     `json:"task_id"`
	ProjectID *uint     `json:"project_id"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func newNotificationResponse(notification models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        notification.ID,
		Message:   notification.Message,
		TaskID:    notification.TaskID,
		ProjectID: notification.ProjectID,
		Read:      notification.Read,
		CreatedAt: notification.CreatedAt,
	}
}

type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) List(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	notifications, err := h.notifications.ListForUser(userID)

	if err != nil {
		respondError(ctx, err, "Failed to retrieve notifications")
		return
	}

	response := make([]NotificationResponse, 0, len(notifications))

	for _, notification := range notifications {
		response = append(response, newNotificationResponse(notification))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *NotificationHandler) MarkRead(ctx *gin.Context) {
	id, err := utils.ParseIDParam(ctx, "notification_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.notifications.MarkRead(id); err != nil {
		respondError(ctx, err, "Failed to mark notification as read")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := h.notifications.MarkAllRead(userID); err != nil {
		respondError(ctx, err, "Failed to mark notifications as read")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}

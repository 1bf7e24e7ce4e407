package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskpilot-dev/taskpilot/internal/models"
	"github.com/taskpilot-dev/taskpilot/internal/services"
	"github.com/taskpilot-dev/taskpilot/internal/types"
	"github.com/taskpilot-dev/taskpilot/internal/utils"
)

type CreateReportRequest struct {
	Message string `json:"message" binding:"required"`
}

type ReportResponse struct {
	ID        uint                `json:"id"`
	TaskID    uint                `json:"task_id"`
	Message   string              `json:"message"`
	Seen      bool                `json:"seen"`
	CreatedAt time.Time           `json:"created_at"`
	User      *types.UserResponse `json:"user,omitempty"`
}

func newReportResponse(report models.TaskReport) ReportResponse {
	response := ReportResponse{
		ID:        report.ID,
		TaskID:    report.TaskID,
		Message:   report.Message,
		Seen:      report.Seen,
		CreatedAt: report.CreatedAt,
	}

	if report.User.ID != 0 {
		response.User = &types.UserResponse{
			ID:    report.User.ID,
			Name:  report.User.Name,
			Email: report.User.Email,
			Role:  report.User.Role,
		}
	}

	return response
}

type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Submit files a report on a task on behalf of the authenticated user.
func (h *ReportHandler) Submit(ctx *gin.Context) {
	taskID, err := utils.ParseIDParam(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateReportRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.reports.Submit(taskID, userID, req.Message)

	if err != nil {
		respondError(ctx, err, "Failed to submit report")
		return
	}

	ctx.JSON(http.StatusCreated, newReportResponse(*report))
}

func (h *ReportHandler) ListByTask(ctx *gin.Context) {
	taskID, err := utils.ParseIDParam(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reports, err := h.reports.ListByTask(taskID)

	if err != nil {
		respondError(ctx, err, "Failed to retrieve reports")
		return
	}

	response := make([]ReportResponse, 0, len(reports))

	for _, report := range reports {
		response = append(response, newReportResponse(report))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *ReportHandler) MarkSeen(ctx *gin.Context) {
	id, err := utils.ParseIDParam(ctx, "report_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.reports.MarkSeen(id); err != nil {
		respondError(ctx, err, "Failed to mark report as seen")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Report marked as seen"})
}

// MarkAllSeen is the "admin opened the task detail" action: every unseen
// report on the task flips to seen in one batch.
func (h *ReportHandler) MarkAllSeen(ctx *gin.Context) {
	taskID, err := utils.ParseIDParam(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.reports.MarkAllSeen(taskID); err != nil {
		respondError(ctx, err, "Failed to mark reports as seen")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Reports marked as seen"})
}

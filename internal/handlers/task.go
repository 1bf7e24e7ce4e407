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

type CreateTaskRequest struct {
	Title       string            `json:"title" binding:"required"`
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status"`
	Deadline    string            `json:"deadline"`
	ProjectID   uint              `json:"project_id" binding:"required"`
	AssigneeID  *uint             `json:"assignee_id"`
}

type UpdateTaskRequest struct {
	Title       string             `json:"title"`
	Description *string            `json:"description"`
	Status      *models.TaskStatus `json:"status"`
	Deadline    string             `json:"deadline"`
	ProjectID   *uint              `json:"project_id"`
	AssigneeID  types.NullableUint `json:"assignee_id"`
}

type UpdateTaskStatusRequest struct {
	Status models.TaskStatus `json:"status" binding:"required"`
}

type ProjectSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type TaskResponse struct {
	ID          uint                `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Deadline    *time.Time          `json:"deadline"`
	ProjectID   uint                `json:"project_id"`
	Project     *ProjectSummary     `json:"project,omitempty"`
	Assignee    *types.UserResponse `json:"assignee"`
	CreatedAt   time.Time           `json:"created_at"`
}

type TaskDetailResponse struct {
	TaskResponse
	UnseenReports int64 `json:"unseen_reports"`
}

func newTaskResponse(task models.Task) TaskResponse {
	response := TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Deadline:    task.Deadline,
		ProjectID:   task.ProjectID,
		CreatedAt:   task.CreatedAt,
	}

	if task.Project.ID != 0 {
		response.Project = &ProjectSummary{ID: task.Project.ID, Name: task.Project.Name}
	}

	if task.Assignee != nil {
		response.Assignee = &types.UserResponse{
			ID:    task.Assignee.ID,
			Name:  task.Assignee.Name,
			Email: task.Assignee.Email,
			Role:  task.Assignee.Role,
		}
	}

	return response
}

type TaskHandler struct {
	tasks   *services.TaskService
	reports *services.ReportService
}

func NewTaskHandler(tasks *services.TaskService, reports *services.ReportService) *TaskHandler {
	return &TaskHandler{tasks: tasks, reports: reports}
}

func (h *TaskHandler) Create(ctx *gin.Context) {
	var req CreateTaskRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deadline, err := parseDate(req.Deadline)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deadline"})
		return
	}

	task, err := h.tasks.Create(req.ProjectID, services.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Deadline:    deadline,
		AssigneeID:  req.AssigneeID,
	})

	if err != nil {
		respondError(ctx, err, "Failed to create task")
		return
	}

	ctx.JSON(http.StatusCreated, newTaskResponse(*task))
}

func (h *TaskHandler) List(ctx *gin.Context) {
	tasks, err := h.tasks.List()

	if err != nil {
		respondError(ctx, err, "Failed to retrieve tasks")
		return
	}

	response := make([]TaskResponse, 0, len(tasks))

	for _, task := range tasks {
		response = append(response, newTaskResponse(task))
	}

	ctx.JSON(http.StatusOK, response)
}

// Get returns one task with its assignee, project summary and the unseen
// report count used for the urgency badge.
func (h *TaskHandler) Get(ctx *gin.Context) {
	id, err := utils.ParseIDParam(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.tasks.Get(id)

	if err != nil {
		respondError(ctx, err, "Failed to retrieve task")
		return
	}

	unseen, err := h.reports.UnseenCount(task.ID)

	if err != nil {
		respondError(ctx, err, "Failed to retrieve task")
		return
	}

	ctx.JSON(http.StatusOK, TaskDetailResponse{
		TaskResponse:  newTaskResponse(*task),
		UnseenReports: unseen,
	})
}

func (h *TaskHandler) Update(ctx *gin.Context) {
	id, err := utils.ParseIDParam(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req UpdateTaskRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deadline, err := parseDate(req.Deadline)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deadline"})
		return
	}

	patch := services.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Deadline:    deadline,
		ProjectID:   req.ProjectID,
	}

	if req.AssigneeID.Set {
		if req.AssigneeID.Value == nil {
			patch.ClearAssignee = true
		} else {
			patch.AssigneeID = req.AssigneeID.Value
		}
	}

	task, err := h.tasks.Update(id, patch)

	if err != nil {
		respondError(ctx, err, "Failed to update task")
		return
	}

	ctx.JSON(http.StatusOK, newTaskResponse(*task))
}

func (h *TaskHandler) UpdateStatus(ctx *gin.Context) {
	id, err := utils.ParseIDParam(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req UpdateTaskStatusRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.tasks.UpdateStatus(id, req.Status)

	if err != nil {
		respondError(ctx, err, "Failed to update task status")
		return
	}

	ctx.JSON(http.StatusOK, newTaskResponse(*task))
}

func (h *TaskHandler) Delete(ctx *gin.Context) {
	id, err := utils.ParseIDParam(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.tasks.Delete(id); err != nil {
		respondError(ctx, err, "Failed to delete task")
		return
	}

	ctx.Status(http.StatusNoContent)
}

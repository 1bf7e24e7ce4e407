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

type CreateProjectRequest struct {
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description"`
	Deadline    string           `json:"deadline"`
	Tasks       []NestedTaskSpec `json:"tasks"`
}

type NestedTaskSpec struct {
	Title       string            `json:"title" binding:"required"`
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status"`
	Deadline    string            `json:"deadline"`
	AssigneeID  *uint             `json:"assignee_id"`
}

type NestedTaskUpdate struct {
	ID          uint               `json:"id" binding:"required"`
	Title       string             `json:"title"`
	Description *string            `json:"description"`
	Status      *models.TaskStatus `json:"status"`
	Deadline    string             `json:"deadline"`
	AssigneeID  types.NullableUint `json:"assignee_id"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Deadline    string  `json:"deadline"`
	Tasks       struct {
		Delete []uint             `json:"delete"`
		Create []NestedTaskSpec   `json:"create"`
		Update []NestedTaskUpdate `json:"update"`
	} `json:"tasks"`
}

type ProjectResponse struct {
	ID          uint           `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Deadline    *time.Time     `json:"deadline"`
	Finished    bool           `json:"finished"`
	Completion  int            `json:"completion"`
	CreatedAt   time.Time      `json:"created_at"`
	MemberIDs   []uint         `json:"member_ids"`
	Tasks       []TaskResponse `json:"tasks"`
}

func newProjectResponse(project models.Project) ProjectResponse {
	tasks := make([]TaskResponse, 0, len(project.Tasks))

	for _, task := range project.Tasks {
		tasks = append(tasks, newTaskResponse(task))
	}

	return ProjectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Deadline:    project.Deadline,
		Finished:    project.Finished,
		Completion:  project.Completion(),
		CreatedAt:   project.CreatedAt,
		MemberIDs:   project.AssigneeIDs(),
		Tasks:       tasks,
	}
}

type ProjectHandler struct {
	projects *services.ProjectService
}

func NewProjectHandler(projects *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

func (h *ProjectHandler) Create(ctx *gin.Context) {
	var req CreateProjectRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input, err := projectInputFromRequest(req)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.projects.Create(input)

	if err != nil {
		respondError(ctx, err, "Failed to create project")
		return
	}

	ctx.JSON(http.StatusCreated, newProjectResponse(*project))
}

func (h *ProjectHandler) List(ctx *gin.Context) {
	projects, err := h.projects.List()

	if err != nil {
		respondError(ctx, err, "Failed to retrieve projects")
		return
	}

	response := make([]ProjectResponse, 0, len(projects))

	for _, project := range projects {
		response = append(response, newProjectResponse(project))
	}

	ctx.JSON(http.StatusOK, response)
}

// ListForUser returns the projects visible to the caller: every project
// for admins, assigned-task projects for members.
func (h *ProjectHandler) ListForUser(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projects, err := h.projects.ListForUser(currentUser.ID, currentUser.Role)

	if err != nil {
		respondError(ctx, err, "Failed to retrieve projects")
		return
	}

	response := make([]ProjectResponse, 0, len(projects))

	for _, project := range projects {
		response = append(response, newProjectResponse(project))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *ProjectHandler) Update(ctx *gin.Context) {
	id, err := utils.ParseIDParam(ctx, "project_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req UpdateProjectRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch, err := projectPatchFromRequest(req)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.projects.Update(id, patch)

	if err != nil {
		respondError(ctx, err, "Failed to update project")
		return
	}

	ctx.JSON(http.StatusOK, newProjectResponse(*project))
}

func (h *ProjectHandler) Delete(ctx *gin.Context) {
	id, err := utils.ParseIDParam(ctx, "project_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.projects.Delete(id); err != nil {
		respondError(ctx, err, "Failed to delete project")
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *ProjectHandler) Finish(ctx *gin.Context) {
	id, err := utils.ParseIDParam(ctx, "project_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.projects.Finish(id)

	if err != nil {
		respondError(ctx, err, "Failed to finish project")
		return
	}

	ctx.JSON(http.StatusOK, newProjectResponse(*project))
}

func projectInputFromRequest(req CreateProjectRequest) (services.ProjectInput, error) {
	deadline, err := parseDate(req.Deadline)

	if err != nil {
		return services.ProjectInput{}, err
	}

	input := services.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Deadline:    deadline,
	}

	for _, spec := range req.Tasks {
		task, err := taskInputFromSpec(spec)

		if err != nil {
			return services.ProjectInput{}, err
		}

		input.Tasks = append(input.Tasks, task)
	}

	return input, nil
}

func projectPatchFromRequest(req UpdateProjectRequest) (services.ProjectPatch, error) {
	deadline, err := parseDate(req.Deadline)

	if err != nil {
		return services.ProjectPatch{}, err
	}

	patch := services.ProjectPatch{
		Name:        req.Name,
		Description: req.Description,
		Deadline:    deadline,
	}

	patch.Tasks.Delete = req.Tasks.Delete

	for _, spec := range req.Tasks.Create {
		task, err := taskInputFromSpec(spec)

		if err != nil {
			return services.ProjectPatch{}, err
		}

		patch.Tasks.Create = append(patch.Tasks.Create, task)
	}

	for _, change := range req.Tasks.Update {
		taskPatch, err := taskPatchFromNested(change)

		if err != nil {
			return services.ProjectPatch{}, err
		}

		patch.Tasks.Update = append(patch.Tasks.Update, services.TaskDeltaUpdate{
			ID:        change.ID,
			TaskPatch: taskPatch,
		})
	}

	return patch, nil
}

func taskInputFromSpec(spec NestedTaskSpec) (services.TaskInput, error) {
	deadline, err := parseDate(spec.Deadline)

	if err != nil {
		return services.TaskInput{}, err
	}

	return services.TaskInput{
		Title:       spec.Title,
		Description: spec.Description,
		Status:      spec.Status,
		Deadline:    deadline,
		AssigneeID:  spec.AssigneeID,
	}, nil
}

func taskPatchFromNested(change NestedTaskUpdate) (services.TaskPatch, error) {
	deadline, err := parseDate(change.Deadline)

	if err != nil {
		return services.TaskPatch{}, err
	}

	patch := services.TaskPatch{
		Title:       change.Title,
		Description: change.Description,
		Status:      change.Status,
		Deadline:    deadline,
	}

	if change.AssigneeID.Set {
		if change.AssigneeID.Value == nil {
			patch.ClearAssignee = true
		} else {
			patch.AssigneeID = change.AssigneeID.Value
		}
	}

	return patch, nil
}

package services

import (
	"errors"
	"time"

	"github.com/taskpilot-dev/taskpilot/internal/apperrors"
	"github.com/taskpilot-dev/taskpilot/internal/events"
	"github.com/taskpilot-dev/taskpilot/internal/models"
	"gorm.io/gorm"
)

// TaskInput describes a task to create, standalone or nested in a project
// payload.
type TaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	Deadline    *time.Time
	AssigneeID  *uint
}

// TaskPatch describes a partial task update. Nil fields are left unchanged;
// ClearAssignee unassigns the task regardless of AssigneeID.
type TaskPatch struct {
	Title         string
	Description   *string
	Status        *models.TaskStatus
	Deadline      *time.Time
	ProjectID     *uint
	AssigneeID    *uint
	ClearAssignee bool
}

type TaskService struct {
	conn   *gorm.DB
	events events.Sink
}

func NewTaskService(conn *gorm.DB, sink events.Sink) *TaskService {
	return &TaskService{conn: conn, events: sink}
}

// Create stores a new task and, when it arrives with an assignee, notifies
// that user.
func (s *TaskService) Create(projectID uint, input TaskInput) (*models.Task, error) {
	task, err := buildTask(s.conn, projectID, input)

	if err != nil {
		return nil, err
	}

	if err := s.conn.Create(task).Error; err != nil {
		return nil, err
	}

	if task.AssigneeID != nil {
		publishEvent(s.events, events.TaskAssigned{
			TaskID:     task.ID,
			ProjectID:  task.ProjectID,
			TaskTitle:  task.Title,
			AssigneeID: *task.AssigneeID,
		})
	}

	return task, nil
}

// Update applies a partial edit. The prior assignee is read before the
// write; when the resolved assignee differs from it and is non-null, the
// new assignee is notified. Reassignment to the same user, or unassignment,
// notifies nobody.
func (s *TaskService) Update(id uint, patch TaskPatch) (*models.Task, error) {
	var task models.Task

	if err := s.conn.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("task", id)
		}
		return nil, err
	}

	prior := task.AssigneeID

	if err := applyPatch(s.conn, &task, patch); err != nil {
		return nil, err
	}

	if err := s.conn.Save(&task).Error; err != nil {
		return nil, err
	}

	if task.AssigneeID != nil && (prior == nil || *prior != *task.AssigneeID) {
		publishEvent(s.events, events.TaskAssigned{
			TaskID:     task.ID,
			ProjectID:  task.ProjectID,
			TaskTitle:  task.Title,
			AssigneeID: *task.AssigneeID,
		})
	}

	return &task, nil
}

// UpdateStatus validates and persists a status change, then tells every
// admin. The assignee is deliberately not notified: admins watch status,
// the board watches everything else.
func (s *TaskService) UpdateStatus(id uint, status models.TaskStatus) (*models.Task, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidation("invalid task status %q", string(status))
	}

	var task models.Task

	if err := s.conn.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("task", id)
		}
		return nil, err
	}

	if err := s.conn.Model(&task).Update("status", status).Error; err != nil {
		return nil, err
	}

	publishEvent(s.events, events.TaskStatusChanged{
		TaskID:    task.ID,
		ProjectID: task.ProjectID,
		TaskTitle: task.Title,
		Status:    string(status),
	})

	return s.Get(task.ID)
}

func (s *TaskService) Get(id uint) (*models.Task, error) {
	var task models.Task

	err := s.conn.Preload("Assignee").Preload("Project").First(&task, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("task", id)
		}
		return nil, err
	}

	return &task, nil
}

// List returns every task with assignee and project expanded. Filtering by
// project, user or status is the consumer's concern.
func (s *TaskService) List() ([]models.Task, error) {
	var tasks []models.Task

	if err := s.conn.Preload("Assignee").Preload("Project").Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

func (s *TaskService) Delete(id uint) error {
	var task models.Task

	if err := s.conn.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("task", id)
		}
		return err
	}

	return s.conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.TaskReport{}).Error; err != nil {
			return err
		}

		return tx.Delete(&task).Error
	})
}

// buildTask validates a TaskInput against the referenced project and
// returns the unsaved row. A dangling project id is a validation failure,
// not a lookup failure: the id arrived in the payload.
func buildTask(conn *gorm.DB, projectID uint, input TaskInput) (*models.Task, error) {
	status := input.Status

	if status == "" {
		status = models.TaskStatusPending
	}

	if !status.Valid() {
		return nil, apperrors.NewValidation("invalid task status %q", string(status))
	}

	var count int64

	if err := conn.Model(&models.Project{}).Where("id = ?", projectID).Count(&count).Error; err != nil {
		return nil, err
	}

	if count == 0 {
		return nil, apperrors.NewValidation("project %d does not exist", projectID)
	}

	return &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      status,
		Deadline:    input.Deadline,
		ProjectID:   projectID,
		AssigneeID:  input.AssigneeID,
	}, nil
}

func applyPatch(conn *gorm.DB, task *models.Task, patch TaskPatch) error {
	if patch.Title != "" {
		task.Title = patch.Title
	}

	if patch.Description != nil {
		task.Description = *patch.Description
	}

	if patch.Status != nil {
		if !patch.Status.Valid() {
			return apperrors.NewValidation("invalid task status %q", string(*patch.Status))
		}
		task.Status = *patch.Status
	}

	if patch.Deadline != nil {
		task.Deadline = patch.Deadline
	}

	if patch.ProjectID != nil {
		var count int64

		if err := conn.Model(&models.Project{}).Where("id = ?", *patch.ProjectID).Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			return apperrors.NewValidation("project %d does not exist", *patch.ProjectID)
		}

		task.ProjectID = *patch.ProjectID
	}

	if patch.ClearAssignee {
		task.AssigneeID = nil
	} else if patch.AssigneeID != nil {
		task.AssigneeID = patch.AssigneeID
	}

	return nil
}

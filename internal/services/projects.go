package services

import (
	"errors"
	"strings"
	"time"

	"github.com/taskpilot-dev/taskpilot/internal/apperrors"
	"github.com/taskpilot-dev/taskpilot/internal/events"
	"github.com/taskpilot-dev/taskpilot/internal/models"
	"gorm.io/gorm"
)

// ProjectInput describes a project to create, optionally with nested tasks
// created in the same transaction.
type ProjectInput struct {
	Name        string
	Description string
	Deadline    *time.Time
	Tasks       []TaskInput
}

// TaskDelta is the three-way bulk mutation applied to a project's tasks
// inside one update call. The sequences apply in a fixed order: deletes,
// then creates, then updates, all in one transaction.
type TaskDelta struct {
	Delete []uint
	Create []TaskInput
	Update []TaskDeltaUpdate
}

type TaskDeltaUpdate struct {
	ID uint
	TaskPatch
}

// ProjectPatch describes a partial project update plus the nested task
// delta. Nil fields are left unchanged.
type ProjectPatch struct {
	Name        *string
	Description *string
	Deadline    *time.Time
	Tasks       TaskDelta
}

type ProjectService struct {
	conn   *gorm.DB
	events events.Sink
}

func NewProjectService(conn *gorm.DB, sink events.Sink) *ProjectService {
	return &ProjectService{conn: conn, events: sink}
}

// Create stores a project and its nested tasks in one transaction, then
// notifies the assignee of every nested task that arrived assigned.
func (s *ProjectService) Create(input ProjectInput) (*models.Project, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidation("project name is required")
	}

	project := models.Project{
		Name:        input.Name,
		Description: input.Description,
		Deadline:    input.Deadline,
	}

	for _, spec := range input.Tasks {
		status := spec.Status

		if status == "" {
			status = models.TaskStatusPending
		}

		if !status.Valid() {
			return nil, apperrors.NewValidation("invalid task status %q", string(status))
		}

		project.Tasks = append(project.Tasks, models.Task{
			Title:       spec.Title,
			Description: spec.Description,
			Status:      status,
			Deadline:    spec.Deadline,
			AssigneeID:  spec.AssigneeID,
		})
	}

	if err := s.conn.Create(&project).Error; err != nil {
		return nil, err
	}

	for _, task := range project.Tasks {
		if task.AssigneeID != nil {
			publishEvent(s.events, events.TaskAssigned{
				TaskID:     task.ID,
				ProjectID:  project.ID,
				TaskTitle:  task.Title,
				AssigneeID: *task.AssigneeID,
			})
		}
	}

	return s.Get(project.ID)
}

func (s *ProjectService) Get(id uint) (*models.Project, error) {
	var project models.Project

	err := s.conn.Preload("Tasks.Assignee").First(&project, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("project", id)
		}
		return nil, err
	}

	return &project, nil
}

// List returns every project with tasks and assignees expanded, newest id
// first.
func (s *ProjectService) List() ([]models.Project, error) {
	var projects []models.Project

	if err := s.conn.Preload("Tasks.Assignee").Order("id DESC").Find(&projects).Error; err != nil {
		return nil, err
	}

	return projects, nil
}

// Update applies the field changes and the whole task delta atomically.
// Within the transaction the delta applies deletes first, then creates,
// then updates to surviving tasks. Assignment notifications go out only
// after the transaction commits.
func (s *ProjectService) Update(id uint, patch ProjectPatch) (*models.Project, error) {
	var assigned []events.TaskAssigned

	err := s.conn.Transaction(func(tx *gorm.DB) error {
		var project models.Project

		if err := tx.First(&project, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound("project", id)
			}
			return err
		}

		if patch.Name != nil {
			if strings.TrimSpace(*patch.Name) == "" {
				return apperrors.NewValidation("project name is required")
			}
			project.Name = *patch.Name
		}

		if patch.Description != nil {
			project.Description = *patch.Description
		}

		if patch.Deadline != nil {
			project.Deadline = patch.Deadline
		}

		if err := tx.Save(&project).Error; err != nil {
			return err
		}

		if len(patch.Tasks.Delete) > 0 {
			doomed := tx.Model(&models.Task{}).Select("id").
				Where("id IN ? AND project_id = ?", patch.Tasks.Delete, project.ID)

			if err := tx.Where("task_id IN (?)", doomed).Delete(&models.TaskReport{}).Error; err != nil {
				return err
			}

			if err := tx.Where("id IN ? AND project_id = ?", patch.Tasks.Delete, project.ID).Delete(&models.Task{}).Error; err != nil {
				return err
			}
		}

		for _, spec := range patch.Tasks.Create {
			task, err := buildTask(tx, project.ID, spec)

			if err != nil {
				return err
			}

			if err := tx.Create(task).Error; err != nil {
				return err
			}

			if task.AssigneeID != nil {
				assigned = append(assigned, events.TaskAssigned{
					TaskID:     task.ID,
					ProjectID:  project.ID,
					TaskTitle:  task.Title,
					AssigneeID: *task.AssigneeID,
				})
			}
		}

		for _, change := range patch.Tasks.Update {
			var task models.Task

			if err := tx.Where("id = ? AND project_id = ?", change.ID, project.ID).First(&task).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.NewNotFound("task", change.ID)
				}
				return err
			}

			prior := task.AssigneeID

			if err := applyPatch(tx, &task, change.TaskPatch); err != nil {
				return err
			}

			if err := tx.Save(&task).Error; err != nil {
				return err
			}

			if task.AssigneeID != nil && (prior == nil || *prior != *task.AssigneeID) {
				assigned = append(assigned, events.TaskAssigned{
					TaskID:     task.ID,
					ProjectID:  project.ID,
					TaskTitle:  task.Title,
					AssigneeID: *task.AssigneeID,
				})
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	for _, event := range assigned {
		publishEvent(s.events, event)
	}

	return s.Get(id)
}

// Delete removes the project, its tasks and their reports in one
// transaction.
func (s *ProjectService) Delete(id uint) error {
	var project models.Project

	if err := s.conn.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("project", id)
		}
		return err
	}

	return s.conn.Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&models.Task{}).Select("id").Where("project_id = ?", project.ID)

		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.TaskReport{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		return tx.Delete(&project).Error
	})
}

// Finish flips the one-way finished flag. Re-finishing an already-finished
// project returns the current state without a second fan-out; on the
// false-to-true transition every distinct task assignee is notified once
// the flag is committed.
func (s *ProjectService) Finish(id uint) (*models.Project, error) {
	project, err := s.Get(id)

	if err != nil {
		return nil, err
	}

	if project.Finished {
		return project, nil
	}

	if err := s.conn.Model(project).Update("finished", true).Error; err != nil {
		return nil, err
	}

	publishEvent(s.events, events.ProjectFinished{
		ProjectID:   project.ID,
		ProjectName: project.Name,
		AssigneeIDs: project.AssigneeIDs(),
	})

	return project, nil
}

// ListForUser applies role-based visibility: admins see every project,
// members only the projects holding at least one task assigned to them.
// Ordered by creation time, newest first.
func (s *ProjectService) ListForUser(userID uint, role models.UserRole) ([]models.Project, error) {
	var projects []models.Project

	query := s.conn.Preload("Tasks.Assignee").Order("created_at DESC")

	if role != models.RoleAdmin {
		assigned := s.conn.Model(&models.Task{}).Select("project_id").Where("assignee_id = ?", userID)
		query = query.Where("id IN (?)", assigned)
	}

	if err := query.Find(&projects).Error; err != nil {
		return nil, err
	}

	return projects, nil
}

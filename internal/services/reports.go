package services

import (
	"errors"
	"strings"

	"github.com/taskpilot-dev/taskpilot/internal/apperrors"
	"github.com/taskpilot-dev/taskpilot/internal/events"
	"github.com/taskpilot-dev/taskpilot/internal/models"
	"gorm.io/gorm"
)

// ReportService handles member-submitted task reports and the unseen
// tracking consumed by the admin UI badge.
type ReportService struct {
	conn   *gorm.DB
	events events.Sink
}

func NewReportService(conn *gorm.DB, sink events.Sink) *ReportService {
	return &ReportService{conn: conn, events: sink}
}

// Submit files a report against a task and notifies every admin. No admins
// means no notifications, not an error.
func (s *ReportService) Submit(taskID, userID uint, message string) (*models.TaskReport, error) {
	if strings.TrimSpace(message) == "" {
		return nil, apperrors.NewValidation("report message is required")
	}

	var task models.Task

	if err := s.conn.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("task", taskID)
		}
		return nil, err
	}

	report := models.TaskReport{
		TaskID:  task.ID,
		UserID:  userID,
		Message: message,
	}

	if err := s.conn.Create(&report).Error; err != nil {
		return nil, err
	}

	publishEvent(s.events, events.ReportSubmitted{
		TaskID:    task.ID,
		ProjectID: task.ProjectID,
		TaskTitle: task.Title,
	})

	return &report, nil
}

// ListByTask returns a task's reports, newest first, with the author
// expanded.
func (s *ReportService) ListByTask(taskID uint) ([]models.TaskReport, error) {
	var reports []models.TaskReport

	err := s.conn.Preload("User").
		Where("task_id = ?", taskID).
		Order("created_at DESC").
		Find(&reports).Error

	if err != nil {
		return nil, err
	}

	return reports, nil
}

// MarkSeen flips one report to seen. Repeating the call is a no-op.
func (s *ReportService) MarkSeen(id uint) error {
	var report models.TaskReport

	if err := s.conn.First(&report, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("report", id)
		}
		return err
	}

	if report.Seen {
		return nil
	}

	return s.conn.Model(&report).Update("seen", true).Error
}

// MarkAllSeen flips every unseen report of a task, one independent
// idempotent update per row, so a partial failure is safe to retry: rows
// already flipped stay flipped, the rest flip on the next attempt.
func (s *ReportService) MarkAllSeen(taskID uint) error {
	var task models.Task

	if err := s.conn.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("task", taskID)
		}
		return err
	}

	var ids []uint

	if err := s.conn.Model(&models.TaskReport{}).
		Where("task_id = ? AND seen = ?", task.ID, false).
		Pluck("id", &ids).Error; err != nil {
		return err
	}

	for _, id := range ids {
		if err := s.conn.Model(&models.TaskReport{}).Where("id = ?", id).Update("seen", true).Error; err != nil {
			return err
		}
	}

	return nil
}

// UnseenCount returns the number of unseen reports on a task, used to
// render the urgency badge.
func (s *ReportService) UnseenCount(taskID uint) (int64, error) {
	var count int64

	err := s.conn.Model(&models.TaskReport{}).
		Where("task_id = ? AND seen = ?", taskID, false).
		Count(&count).Error

	if err != nil {
		return 0, err
	}

	return count, nil
}

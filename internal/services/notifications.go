package services

import (
	"fmt"

	"github.com/taskpilot-dev/taskpilot/internal/events"
	"github.com/taskpilot-dev/taskpilot/internal/logger"
	"github.com/taskpilot-dev/taskpilot/internal/models"
	"gorm.io/gorm"
)

// NotificationService creates and queries per-user notification records. It
// is also the production events.Sink: each domain event maps to one of the
// four fan-out triggers.
type NotificationService struct {
	conn *gorm.DB
}

func NewNotificationService(conn *gorm.DB) *NotificationService {
	return &NotificationService{conn: conn}
}

func (s *NotificationService) Notify(userID uint, message string, taskID, projectID *uint) error {
	notification := models.Notification{
		UserID:    userID,
		Message:   message,
		TaskID:    taskID,
		ProjectID: projectID,
	}

	return s.conn.Create(&notification).Error
}

// NotifyMany appends one notification per distinct user id. Duplicate and
// zero ids in the input collapse away; an empty result is not an error.
func (s *NotificationService) NotifyMany(userIDs []uint, message string, taskID, projectID *uint) error {
	seen := make(map[uint]bool, len(userIDs))
	rows := make([]models.Notification, 0, len(userIDs))

	for _, id := range userIDs {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true

		rows = append(rows, models.Notification{
			UserID:    id,
			Message:   message,
			TaskID:    taskID,
			ProjectID: projectID,
		})
	}

	if len(rows) == 0 {
		return nil
	}

	return s.conn.Create(&rows).Error
}

// ListForUser returns the user's notifications, newest first. A zero user
// id yields an empty list rather than an unscoped query over the whole
// table.
func (s *NotificationService) ListForUser(userID uint) ([]models.Notification, error) {
	if userID == 0 {
		return []models.Notification{}, nil
	}

	var notifications []models.Notification

	if err := s.conn.Where("user_id = ?", userID).Order("created_at DESC").Find(&notifications).Error; err != nil {
		return nil, err
	}

	return notifications, nil
}

// MarkRead flips a single notification to read. Repeating the call is a
// no-op.
func (s *NotificationService) MarkRead(id uint) error {
	return s.conn.Model(&models.Notification{}).Where("id = ?", id).Update("read", true).Error
}

// MarkAllRead flips every unread notification of one user. The caller is
// not told how many rows changed.
func (s *NotificationService) MarkAllRead(userID uint) error {
	if userID == 0 {
		return nil
	}

	return s.conn.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
}

// Publish implements events.Sink with the four canonical triggers: report
// submitted and status changed fan out to all admins, assignment targets
// the new assignee, project finished targets the distinct task assignees.
func (s *NotificationService) Publish(event events.Event) error {
	switch e := event.(type) {
	case events.TaskAssigned:
		return s.Notify(e.AssigneeID, fmt.Sprintf("You have been assigned task %q", e.TaskTitle), &e.TaskID, &e.ProjectID)

	case events.TaskStatusChanged:
		admins, err := s.adminIDs()
		if err != nil {
			return err
		}
		return s.NotifyMany(admins, fmt.Sprintf("Task %q status changed to %s", e.TaskTitle, e.Status), &e.TaskID, &e.ProjectID)

	case events.ReportSubmitted:
		admins, err := s.adminIDs()
		if err != nil {
			return err
		}
		return s.NotifyMany(admins, fmt.Sprintf("New report on task %q", e.TaskTitle), &e.TaskID, &e.ProjectID)

	case events.ProjectFinished:
		return s.NotifyMany(e.AssigneeIDs, fmt.Sprintf("Project %q has been marked as finished", e.ProjectName), nil, &e.ProjectID)
	}

	return nil
}

func (s *NotificationService) adminIDs() ([]uint, error) {
	var ids []uint

	if err := s.conn.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}

	return ids, nil
}

// publishEvent delivers a domain event after the primary write has
// committed. Delivery failures are logged and never surface to the caller:
// the state change stands even when its notifications are lost.
func publishEvent(sink events.Sink, event events.Event) {
	if sink == nil {
		return
	}

	if err := sink.Publish(event); err != nil {
		logger.Log.Errorw("failed to deliver notification event", "event", event.Name(), "error", err)
	}
}

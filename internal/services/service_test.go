package services

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/taskpilot-dev/taskpilot/db"
	"github.com/taskpilot-dev/taskpilot/internal/events"
	"github.com/taskpilot-dev/taskpilot/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")

	conn, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})

	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	return conn
}

// recordingSink captures published events without side effects.
type recordingSink struct {
	published []events.Event
}

func (r *recordingSink) Publish(event events.Event) error {
	r.published = append(r.published, event)
	return nil
}

func seedUser(t *testing.T, conn *gorm.DB, name string, role models.UserRole) models.User {
	t.Helper()

	user := models.User{
		Name:         name,
		Email:        fmt.Sprintf("%s@example.com", name),
		PasswordHash: "irrelevant",
		Role:         role,
	}

	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}

	return user
}

func seedProject(t *testing.T, conn *gorm.DB, name string) models.Project {
	t.Helper()

	project := models.Project{Name: name}

	if err := conn.Create(&project).Error; err != nil {
		t.Fatalf("seed project %s: %v", name, err)
	}

	return project
}

func seedTask(t *testing.T, conn *gorm.DB, projectID uint, title string, assigneeID *uint) models.Task {
	t.Helper()

	task := models.Task{
		Title:      title,
		Status:     models.TaskStatusPending,
		ProjectID:  projectID,
		AssigneeID: assigneeID,
	}

	if err := conn.Create(&task).Error; err != nil {
		t.Fatalf("seed task %s: %v", title, err)
	}

	return task
}

func notificationsFor(t *testing.T, conn *gorm.DB, userID uint) []models.Notification {
	t.Helper()

	var notifications []models.Notification

	if err := conn.Where("user_id = ?", userID).Find(&notifications).Error; err != nil {
		t.Fatalf("load notifications for user %d: %v", userID, err)
	}

	return notifications
}

func countNotifications(t *testing.T, conn *gorm.DB) int64 {
	t.Helper()

	var count int64

	if err := conn.Model(&models.Notification{}).Count(&count).Error; err != nil {
		t.Fatalf("count notifications: %v", err)
	}

	return count
}

func uintPtr(v uint) *uint {
	return &v
}

package services

import (
	"testing"
	"time"

	"github.com/taskpilot-dev/taskpilot/internal/events"
	"github.com/taskpilot-dev/taskpilot/internal/models"
)

func TestNotifyManyCollapsesDuplicates(t *testing.T) {
	conn := newTestDB(t)
	svc := NewNotificationService(conn)

	if err := svc.NotifyMany([]uint{7, 7, 0, 9, 7}, "hello", nil, nil); err != nil {
		t.Fatalf("NotifyMany: %v", err)
	}

	if got := countNotifications(t, conn); got != 2 {
		t.Fatalf("expected 2 notifications, got %d", got)
	}

	if got := len(notificationsFor(t, conn, 7)); got != 1 {
		t.Fatalf("expected 1 notification for user 7, got %d", got)
	}
}

func TestNotifyManyEmptyInput(t *testing.T) {
	conn := newTestDB(t)
	svc := NewNotificationService(conn)

	if err := svc.NotifyMany(nil, "hello", nil, nil); err != nil {
		t.Fatalf("NotifyMany with no recipients: %v", err)
	}

	if got := countNotifications(t, conn); got != 0 {
		t.Fatalf("expected 0 notifications, got %d", got)
	}
}

func TestListForUserFailsClosed(t *testing.T) {
	conn := newTestDB(t)
	svc := NewNotificationService(conn)

	if err := svc.Notify(3, "for somebody", nil, nil); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	list, err := svc.ListForUser(0)

	if err != nil {
		t.Fatalf("ListForUser(0): %v", err)
	}

	if len(list) != 0 {
		t.Fatalf("zero user id must never see other rows, got %d", len(list))
	}
}

func TestListForUserNewestFirst(t *testing.T) {
	conn := newTestDB(t)
	svc := NewNotificationService(conn)

	base := time.Now().Add(-time.Hour)

	for i, message := range []string{"oldest", "middle", "newest"} {
		notification := models.Notification{UserID: 5, Message: message}
		notification.CreatedAt = base.Add(time.Duration(i) * time.Minute)

		if err := conn.Create(&notification).Error; err != nil {
			t.Fatalf("create notification: %v", err)
		}
	}

	list, err := svc.ListForUser(5)

	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}

	if len(list) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(list))
	}

	if list[0].Message != "newest" || list[2].Message != "oldest" {
		t.Fatalf("expected newest first, got %q .. %q", list[0].Message, list[2].Message)
	}
}

func TestMarkAllReadIdempotent(t *testing.T) {
	conn := newTestDB(t)
	svc := NewNotificationService(conn)

	for i := 0; i < 3; i++ {
		if err := svc.Notify(4, "unread", nil, nil); err != nil {
			t.Fatalf("Notify: %v", err)
		}
	}

	if err := svc.MarkAllRead(4); err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}

	if err := svc.MarkAllRead(4); err != nil {
		t.Fatalf("second MarkAllRead: %v", err)
	}

	for _, notification := range notificationsFor(t, conn, 4) {
		if !notification.Read {
			t.Fatalf("notification %d still unread", notification.ID)
		}
	}
}

func TestMarkReadIdempotent(t *testing.T) {
	conn := newTestDB(t)
	svc := NewNotificationService(conn)

	if err := svc.Notify(2, "once", nil, nil); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	list, _ := svc.ListForUser(2)

	if err := svc.MarkRead(list[0].ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}

	if err := svc.MarkRead(list[0].ID); err != nil {
		t.Fatalf("repeated MarkRead: %v", err)
	}

	list, _ = svc.ListForUser(2)

	if !list[0].Read {
		t.Fatal("notification should be read")
	}
}

func TestPublishProjectFinishedTargetsAssignees(t *testing.T) {
	conn := newTestDB(t)
	svc := NewNotificationService(conn)

	err := svc.Publish(events.ProjectFinished{
		ProjectID:   10,
		ProjectName: "Launch",
		AssigneeIDs: []uint{7, 9},
	})

	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	for _, userID := range []uint{7, 9} {
		list := notificationsFor(t, conn, userID)

		if len(list) != 1 {
			t.Fatalf("expected 1 notification for user %d, got %d", userID, len(list))
		}

		if list[0].Message != `Project "Launch" has been marked as finished` {
			t.Fatalf("unexpected message %q", list[0].Message)
		}

		if list[0].ProjectID == nil || *list[0].ProjectID != 10 {
			t.Fatalf("expected project reference on notification")
		}
	}
}

func TestPublishStatusChangeTargetsAdminsOnly(t *testing.T) {
	conn := newTestDB(t)
	svc := NewNotificationService(conn)

	admin := seedUser(t, conn, "admin", models.RoleAdmin)
	member := seedUser(t, conn, "member", models.RoleMember)

	err := svc.Publish(events.TaskStatusChanged{
		TaskID:    1,
		ProjectID: 2,
		TaskTitle: "T1",
		Status:    string(models.TaskStatusDone),
	})

	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if got := len(notificationsFor(t, conn, admin.ID)); got != 1 {
		t.Fatalf("expected 1 admin notification, got %d", got)
	}

	if got := len(notificationsFor(t, conn, member.ID)); got != 0 {
		t.Fatalf("expected no member notification, got %d", got)
	}
}

package services

import (
	"testing"
	"time"

	"github.com/taskpilot-dev/taskpilot/internal/apperrors"
	"github.com/taskpilot-dev/taskpilot/internal/models"
)

func TestCreateProjectRequiresName(t *testing.T) {
	conn := newTestDB(t)
	svc := NewProjectService(conn, &recordingSink{})

	_, err := svc.Create(ProjectInput{Name: "   "})

	if !apperrors.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

// Scenario: project "Launch" with two nested tasks, T1 assigned to a user
// and T2 unassigned. The assignee gets exactly one notification, nobody
// else gets any, the project starts unfinished at 0% completion.
func TestCreateProjectWithNestedTasks(t *testing.T) {
	conn := newTestDB(t)
	notifications := NewNotificationService(conn)
	svc := NewProjectService(conn, notifications)

	worker := seedUser(t, conn, "worker", models.RoleMember)

	project, err := svc.Create(ProjectInput{
		Name: "Launch",
		Tasks: []TaskInput{
			{Title: "T1", AssigneeID: uintPtr(worker.ID)},
			{Title: "T2"},
		},
	})

	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if len(project.Tasks) != 2 {
		t.Fatalf("expected 2 nested tasks, got %d", len(project.Tasks))
	}

	if project.Finished {
		t.Fatal("new project must not be finished")
	}

	if got := project.Completion(); got != 0 {
		t.Fatalf("expected 0%% completion, got %d", got)
	}

	if got := len(notificationsFor(t, conn, worker.ID)); got != 1 {
		t.Fatalf("expected 1 notification for the assignee, got %d", got)
	}

	if got := countNotifications(t, conn); got != 1 {
		t.Fatalf("expected 1 notification in total, got %d", got)
	}
}

func TestUpdateUnknownProject(t *testing.T) {
	conn := newTestDB(t)
	svc := NewProjectService(conn, &recordingSink{})

	_, err := svc.Update(123, ProjectPatch{})

	if !apperrors.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestUpdateAppliesTaskDelta(t *testing.T) {
	conn := newTestDB(t)
	notifications := NewNotificationService(conn)
	svc := NewProjectService(conn, notifications)

	worker := seedUser(t, conn, "worker", models.RoleMember)
	project := seedProject(t, conn, "Launch")
	doomed := seedTask(t, conn, project.ID, "old", nil)
	kept := seedTask(t, conn, project.ID, "kept", nil)

	newName := "Launch v2"
	done := models.TaskStatusDone

	updated, err := svc.Update(project.ID, ProjectPatch{
		Name: &newName,
		Tasks: TaskDelta{
			Delete: []uint{doomed.ID},
			Create: []TaskInput{{Title: "fresh", AssigneeID: uintPtr(worker.ID)}},
			Update: []TaskDeltaUpdate{{
				ID:        kept.ID,
				TaskPatch: TaskPatch{Status: &done},
			}},
		},
	})

	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if updated.Name != newName {
		t.Fatalf("expected renamed project, got %q", updated.Name)
	}

	if len(updated.Tasks) != 2 {
		t.Fatalf("expected 2 tasks after delta, got %d", len(updated.Tasks))
	}

	titles := map[string]models.TaskStatus{}

	for _, task := range updated.Tasks {
		titles[task.Title] = task.Status
	}

	if _, exists := titles["old"]; exists {
		t.Fatal("deleted task still present")
	}

	if titles["kept"] != models.TaskStatusDone {
		t.Fatalf("expected kept task DONE, got %s", titles["kept"])
	}

	if _, exists := titles["fresh"]; !exists {
		t.Fatal("created task missing")
	}

	if got := len(notificationsFor(t, conn, worker.ID)); got != 1 {
		t.Fatalf("expected 1 assignment notification, got %d", got)
	}
}

func TestUpdateDeltaIsAtomic(t *testing.T) {
	conn := newTestDB(t)
	svc := NewProjectService(conn, &recordingSink{})

	project := seedProject(t, conn, "Launch")
	task := seedTask(t, conn, project.ID, "T1", nil)

	// The nested update references a task that does not exist, so the
	// whole delta, including the delete, must roll back.
	_, err := svc.Update(project.ID, ProjectPatch{
		Tasks: TaskDelta{
			Delete: []uint{task.ID},
			Update: []TaskDeltaUpdate{{ID: 9999}},
		},
	})

	if !apperrors.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}

	var count int64

	if err := conn.Model(&models.Task{}).Where("project_id = ?", project.ID).Count(&count).Error; err != nil {
		t.Fatalf("count tasks: %v", err)
	}

	if count != 1 {
		t.Fatalf("failed delta must leave tasks untouched, got %d", count)
	}
}

// Scenario: both tasks DONE brings completion to 100%; finishing the
// project notifies the single assignee only, and a second finish is a
// no-op with no extra fan-out.
func TestFinishIdempotentFanOut(t *testing.T) {
	conn := newTestDB(t)
	notifications := NewNotificationService(conn)
	projects := NewProjectService(conn, notifications)
	tasks := NewTaskService(conn, &recordingSink{})

	worker := seedUser(t, conn, "worker", models.RoleMember)
	project := seedProject(t, conn, "Launch")
	t1 := seedTask(t, conn, project.ID, "T1", uintPtr(worker.ID))
	t2 := seedTask(t, conn, project.ID, "T2", nil)

	for _, id := range []uint{t1.ID, t2.ID} {
		if _, err := tasks.UpdateStatus(id, models.TaskStatusDone); err != nil {
			t.Fatalf("UpdateStatus: %v", err)
		}
	}

	loaded, err := projects.Get(project.ID)

	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if got := loaded.Completion(); got != 100 {
		t.Fatalf("expected 100%% completion, got %d", got)
	}

	finished, err := projects.Finish(project.ID)

	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	if !finished.Finished {
		t.Fatal("expected finished project")
	}

	if got := len(notificationsFor(t, conn, worker.ID)); got != 1 {
		t.Fatalf("expected 1 fan-out notification, got %d", got)
	}

	again, err := projects.Finish(project.ID)

	if err != nil {
		t.Fatalf("second Finish: %v", err)
	}

	if !again.Finished {
		t.Fatal("expected project to stay finished")
	}

	if got := len(notificationsFor(t, conn, worker.ID)); got != 1 {
		t.Fatalf("re-finishing must not fan out again, got %d", got)
	}
}

func TestFinishUnknownProject(t *testing.T) {
	conn := newTestDB(t)
	svc := NewProjectService(conn, &recordingSink{})

	_, err := svc.Finish(55)

	if !apperrors.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestListForUserVisibility(t *testing.T) {
	conn := newTestDB(t)
	svc := NewProjectService(conn, &recordingSink{})

	admin := seedUser(t, conn, "admin", models.RoleAdmin)
	member := seedUser(t, conn, "member", models.RoleMember)

	mine := seedProject(t, conn, "mine")
	other := seedProject(t, conn, "other")
	seedTask(t, conn, mine.ID, "assigned", uintPtr(member.ID))
	seedTask(t, conn, other.ID, "unrelated", nil)

	adminView, err := svc.ListForUser(admin.ID, admin.Role)

	if err != nil {
		t.Fatalf("ListForUser admin: %v", err)
	}

	if len(adminView) != 2 {
		t.Fatalf("admin should see all projects, got %d", len(adminView))
	}

	memberView, err := svc.ListForUser(member.ID, member.Role)

	if err != nil {
		t.Fatalf("ListForUser member: %v", err)
	}

	if len(memberView) != 1 || memberView[0].Name != "mine" {
		t.Fatalf("member should see only assigned projects, got %d", len(memberView))
	}
}

func TestListNewestIDFirst(t *testing.T) {
	conn := newTestDB(t)
	svc := NewProjectService(conn, &recordingSink{})

	seedProject(t, conn, "first")
	seedProject(t, conn, "second")

	list, err := svc.List()

	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if len(list) != 2 || list[0].Name != "second" {
		t.Fatalf("expected newest project first, got %+v", list)
	}
}

func TestDeleteProjectCascades(t *testing.T) {
	conn := newTestDB(t)
	svc := NewProjectService(conn, &recordingSink{})

	author := seedUser(t, conn, "author", models.RoleMember)
	project := seedProject(t, conn, "doomed")
	task := seedTask(t, conn, project.ID, "T1", nil)

	report := models.TaskReport{TaskID: task.ID, UserID: author.ID, Message: "note"}

	if err := conn.Create(&report).Error; err != nil {
		t.Fatalf("create report: %v", err)
	}

	if err := svc.Delete(project.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if err := svc.Delete(project.ID); !apperrors.IsNotFound(err) {
		t.Fatalf("expected NotFoundError on second delete, got %v", err)
	}

	var taskCount, reportCount int64

	conn.Model(&models.Task{}).Where("project_id = ?", project.ID).Count(&taskCount)
	conn.Model(&models.TaskReport{}).Where("task_id = ?", task.ID).Count(&reportCount)

	if taskCount != 0 || reportCount != 0 {
		t.Fatalf("expected cascade delete, got %d tasks and %d reports", taskCount, reportCount)
	}
}

func TestProjectDeadlinePersisted(t *testing.T) {
	conn := newTestDB(t)
	svc := NewProjectService(conn, &recordingSink{})

	deadline := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	project, err := svc.Create(ProjectInput{Name: "dated", Deadline: &deadline})

	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if project.Deadline == nil || !project.Deadline.Equal(deadline) {
		t.Fatalf("expected deadline %v, got %v", deadline, project.Deadline)
	}
}

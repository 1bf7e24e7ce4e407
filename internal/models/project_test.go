package models

import "testing"

func TestProjectCompletion(t *testing.T) {
	cases := []struct {
		name     string
		statuses []TaskStatus
		want     int
	}{
		{"no tasks", nil, 0},
		{"none done", []TaskStatus{TaskStatusPending, TaskStatusInProgress}, 0},
		{"one of three", []TaskStatus{TaskStatusDone, TaskStatusPending, TaskStatusPending}, 33},
		{"two of three", []TaskStatus{TaskStatusDone, TaskStatusDone, TaskStatusPending}, 67},
		{"all done", []TaskStatus{TaskStatusDone, TaskStatusDone}, 100},
		{"half", []TaskStatus{TaskStatusDone, TaskStatusInProgress}, 50},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			project := Project{}

			for _, status := range tc.statuses {
				project.Tasks = append(project.Tasks, Task{Status: status})
			}

			if got := project.Completion(); got != tc.want {
				t.Fatalf("completion = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestProjectAssigneeIDsDistinct(t *testing.T) {
	seven := uint(7)
	nine := uint(9)

	project := Project{
		Tasks: []Task{
			{AssigneeID: &seven},
			{AssigneeID: nil},
			{AssigneeID: &seven},
			{AssigneeID: &nine},
		},
	}

	ids := project.AssigneeIDs()

	if len(ids) != 2 || ids[0] != 7 || ids[1] != 9 {
		t.Fatalf("expected distinct ids [7 9], got %v", ids)
	}
}

func TestTaskStatusValid(t *testing.T) {
	for _, status := range []TaskStatus{TaskStatusPending, TaskStatusInProgress, TaskStatusDone} {
		if !status.Valid() {
			t.Fatalf("%s should be valid", status)
		}
	}

	if TaskStatus("SHIPPED").Valid() {
		t.Fatal("unknown status should be invalid")
	}

	if UserRole("OWNER").Valid() {
		t.Fatal("unknown role should be invalid")
	}
}

// Package events carries the domain events the lifecycle services emit
// after their primary write has committed. Delivering an event is
// best-effort: a sink failure must never roll back or fail the state
// change the event describes.
package events

type Event interface {
	Name() string
}

// TaskAssigned fires when a task gains a new assignee, on creation or on
// reassignment. It targets the new assignee only.
type TaskAssigned struct {
	TaskID     uint
	ProjectID  uint
	TaskTitle  string
	AssigneeID uint
}

// TaskStatusChanged fires on every successful status update, regardless of
// the previous value. It targets all admins, not the assignee.
type TaskStatusChanged struct {
	TaskID    uint
	ProjectID uint
	TaskTitle string
	Status    string
}

// ReportSubmitted fires when a member files a report on a task. It targets
// all admins.
type ReportSubmitted struct {
	TaskID    uint
	ProjectID uint
	TaskTitle string
}

// ProjectFinished fires once per project, on the false-to-true transition
// of the finished flag. It targets the distinct assignees of the project's
// tasks.
type ProjectFinished struct {
	ProjectID   uint
	ProjectName string
	AssigneeIDs []uint
}

func (TaskAssigned) Name() string      { return "task.assigned" }
func (TaskStatusChanged) Name() string { return "task.status_changed" }
func (ReportSubmitted) Name() string   { return "report.submitted" }
func (ProjectFinished) Name() string   { return "project.finished" }

// Sink consumes domain events. The notification engine is the production
// sink; tests substitute a recorder.
type Sink interface {
	Publish(event Event) error
}

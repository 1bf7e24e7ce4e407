package models

import (
	"math"
	"time"

	"gorm.io/gorm"
)

type Project struct {
	gorm.Model

	Name        string `gorm:"not null"`
	Description string
	Deadline    *time.Time
	Finished    bool `gorm:"not null;default:false"`

	// Relationships
	Tasks []Task `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// Completion returns the percentage of DONE tasks, rounded to the nearest
// integer. A project with no tasks is 0% complete. The value is always
// derived from the loaded tasks, never stored.
func (p *Project) Completion() int {
	if len(p.Tasks) == 0 {
		return 0
	}

	done := 0

	for _, task := range p.Tasks {
		if task.Status == TaskStatusDone {
			done++
		}
	}

	return int(math.Round(100 * float64(done) / float64(len(p.Tasks))))
}

// AssigneeIDs returns the distinct ids of users assigned to any task of the
// project, in first-seen order.
func (p *Project) AssigneeIDs() []uint {
	seen := make(map[uint]bool)
	ids := make([]uint, 0, len(p.Tasks))

	for _, task := range p.Tasks {
		if task.AssigneeID == nil || seen[*task.AssigneeID] {
			continue
		}
		seen[*task.AssigneeID] = true
		ids = append(ids, *task.AssigneeID)
	}

	return ids
}

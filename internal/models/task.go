package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

// Valid reports whether the status is one of the three known values.
// Transitions between valid values are not order-enforced.
func (s TaskStatus) Valid() bool {
	return s == TaskStatusPending || s == TaskStatusInProgress || s == TaskStatusDone
}

type Task struct {
	gorm.Model

	Title       string `gorm:"not null"`
	Description string
	Status      TaskStatus `gorm:"type:varchar(16);not null;default:PENDING"`
	Deadline    *time.Time
	ProjectID   uint `gorm:"not null;index"`
	AssigneeID  *uint

	// Relationships
	Project  Project      `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Assignee *User        `gorm:"foreignKey:AssigneeID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Reports  []TaskReport `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

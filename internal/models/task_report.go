package models

import "gorm.io/gorm"

// TaskReport is a free-text progress report a member files against a task.
// Reports are immutable once created except for the Seen flag, which only
// ever flips false to true.
type TaskReport struct {
	gorm.Model

	TaskID  uint   `gorm:"not null;index"`
	UserID  uint   `gorm:"not null;index"`
	Message string `gorm:"not null"`
	Seen    bool   `gorm:"not null;default:false"`

	// Relationships
	Task Task `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

package models

import "gorm.io/gorm"

// Notification is an append-only fact addressed to one user. Besides the
// Read flag (false to true only) a notification is never edited.
type Notification struct {
	gorm.Model

	UserID    uint   `gorm:"not null;index"`
	Message   string `gorm:"not null"`
	TaskID    *uint
	ProjectID *uint
	Read      bool `gorm:"not null;default:false"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}

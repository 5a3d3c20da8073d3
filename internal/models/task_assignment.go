package models

import "gorm.io/gorm"

type TaskAssignment struct {
	gorm.Model

	TaskID uint `gorm:"not null;uniqueIndex:idx_task_user"`
	UserID uint `gorm:"not null;uniqueIndex:idx_task_user"`

	// Relationships
	Task Task `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

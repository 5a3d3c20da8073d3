package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model

	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`

	// Login lockout state. LastFailedAt stays nil until the first failure.
	FailedAttempts int  `gorm:"not null;default:0"`
	Locked         bool `gorm:"not null;default:false"`
	LastFailedAt   *time.Time

	// Relationships
	OwnedProjects      []Project            `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	ProjectMemberships []ProjectMembership  `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	TaskAssignments    []TaskAssignment     `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	ResetTokens        []PasswordResetToken `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// PasswordResetToken is a short single-use recovery code mailed to the user.
type PasswordResetToken struct {
	gorm.Model

	UserID    uint      `gorm:"not null;index"`
	Code      string    `gorm:"not null;index"`
	ExpiresAt time.Time `gorm:"not null"`
	Used      bool      `gorm:"not null;default:false"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

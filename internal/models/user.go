package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the portal profile. Chat timeouts, email verification and the
// leaderboard XP counter all live on this row.
type User struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email           string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password        string         `gorm:"not null" json:"-"`
	DisplayName     string         `gorm:"size:100" json:"display_name"`
	PhotoURL        *string        `gorm:"size:500" json:"photo_url,omitempty"`
	Role            string         `gorm:"size:20;default:'user'" json:"role"`
	EmailVerified   bool           `gorm:"default:false" json:"email_verified"`
	TimeoutUntil    *time.Time     `json:"timeout_until,omitempty"`
	LastViolationAt *time.Time     `json:"last_violation_at,omitempty"`
	XP              int            `gorm:"default:0;index" json:"xp"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// Name returns the display name, falling back to the local part of the email.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	for i := 0; i < len(u.Email); i++ {
		if u.Email[i] == '@' {
			return u.Email[:i]
		}
	}
	return u.Email
}

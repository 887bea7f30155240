package verification

import (
	"time"

	"github.com/google/uuid"
)

// OTPCode holds the single outstanding code for a user. A new request
// replaces the old one.
type OTPCode struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	Code      string    `gorm:"size:6;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	Attempts  int       `gorm:"default:0" json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
}

func (OTPCode) TableName() string { return "otp_codes" }

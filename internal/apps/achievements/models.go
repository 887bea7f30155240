package achievements

import (
	"time"

	"github.com/google/uuid"
)

// UserAchievement is one user's state for one catalog entry.
type UserAchievement struct {
	UserID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"user_id"`
	AchievementID string     `gorm:"size:50;primaryKey" json:"achievement_id"`
	Progress      int        `gorm:"not null;default:0" json:"progress"`
	Unlocked      bool       `gorm:"not null;default:false" json:"unlocked"`
	UnlockedAt    *time.Time `json:"unlocked_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}

type LeaderboardEntry struct {
	Rank        int       `json:"rank"`
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	PhotoURL    *string   `json:"photo_url,omitempty"`
	XP          int       `json:"xp"`
}

// Notification is published on the user topic when an achievement unlocks.
type Notification struct {
	AchievementID string    `json:"achievement_id"`
	TitleAR       string    `json:"title_ar"`
	TitleEN       string    `json:"title_en"`
	DescriptionAR string    `json:"description_ar"`
	DescriptionEN string    `json:"description_en"`
	Icon          string    `json:"icon"`
	XP            int       `json:"xp"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}

type ProgressResult struct {
	AchievementID string        `json:"achievement_id"`
	Progress      int           `json:"progress"`
	MaxProgress   int           `json:"max_progress"`
	Unlocked      bool          `json:"unlocked"`
	Notification  *Notification `json:"notification,omitempty"`
}

type Summary struct {
	Progress    map[string]int  `json:"progress"`
	Unlocked    map[string]bool `json:"unlocked"`
	TotalXP     int             `json:"total_xp"`
	Level       int             `json:"level"`
	NextLevelXP int             `json:"next_level_xp"`
	// BonusXP is the stored counter bumped by AddXP. It feeds the
	// leaderboard and is not reconciled with TotalXP.
	BonusXP int `json:"bonus_xp"`
}

// LocalProfile is the anonymous state a client kept before signing in.
type LocalProfile struct {
	Progress map[string]int  `json:"progress"`
	Unlocked map[string]bool `json:"unlocked"`
	XP       int             `json:"xp"`
}

type SyncResult struct {
	Imported bool    `json:"imported"`
	Summary  Summary `json:"summary"`
}

package chat

import (
	"time"

	"github.com/google/uuid"
)

// Message is a stored chat message. Author name and photo are copied at send
// time so history survives profile edits.
type Message struct {
	ID                uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Text              string    `gorm:"type:text;not null" json:"text"`
	AuthorID          uuid.UUID `gorm:"type:uuid;not null;index" json:"author_id"`
	AuthorDisplayName string    `gorm:"size:100" json:"author_display_name"`
	AuthorPhotoURL    *string   `gorm:"size:500" json:"author_photo_url,omitempty"`
	ChannelID         string    `gorm:"size:50;not null;index:idx_chat_channel_created,priority:1" json:"channel_id"`
	CreatedAt         time.Time `gorm:"index:idx_chat_channel_created,priority:2" json:"created_at"`
}

func (Message) TableName() string { return "chat_messages" }

// TimeoutStatus is the read-only view of a user's chat block.
type TimeoutStatus struct {
	IsTimedOut   bool       `json:"is_timed_out"`
	TimeoutUntil *time.Time `json:"timeout_until,omitempty"`
}

// ClearResult reports one batch of an admin message purge.
type ClearResult struct {
	Deleted   int64 `json:"deleted"`
	Remaining int64 `json:"remaining"`
	HasMore   bool  `json:"has_more"`
}

// Profile is the slice of the user row chat needs.
type Profile struct {
	ID           uuid.UUID
	DisplayName  string
	PhotoURL     *string
	TimeoutUntil *time.Time
}

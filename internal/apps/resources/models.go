package resources

import (
	"time"

	"github.com/google/uuid"
)

// Resource is the metadata of a study file. The file itself lives in external
// storage; only its URL is kept here.
type Resource struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Subject     string     `gorm:"size:50;index" json:"subject"`
	Unit        string     `gorm:"size:50;index" json:"unit"`
	Level       string     `gorm:"size:20" json:"level"`
	FileURL     string     `gorm:"size:1000;not null" json:"file_url"`
	FileType    string     `gorm:"size:20" json:"file_type"`
	SizeBytes   int64      `json:"size_bytes"`
	UploadedBy  *uuid.UUID `gorm:"type:uuid;index" json:"uploaded_by,omitempty"`
	Downloads   int64      `gorm:"default:0" json:"downloads"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
}

func (Resource) TableName() string { return "resources" }

// Filter narrows a resource listing. Zero values match everything.
type Filter struct {
	Subject string
	Unit    string
	Query   string
	Limit   int
	Offset  int
}

type Page struct {
	Resources []Resource `json:"resources"`
	Total     int64      `json:"total"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
}

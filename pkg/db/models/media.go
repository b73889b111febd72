package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/storelane/storelane-backend/pkg/enums"
)

// Media captures metadata for uploaded files. The row points at the stored
// file through FileName/URL; the bytes themselves live on disk. OriginalName
// preserves the name the client declared before sanitization.
type Media struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	FileName     string            `gorm:"column:file_name;not null;unique" json:"fileName"`
	OriginalName string            `gorm:"column:original_name;not null" json:"originalName"`
	URL          string            `gorm:"column:url;not null" json:"url"`
	MimeType     string            `gorm:"column:mime_type;not null" json:"mimeType"`
	SizeBytes    int64             `gorm:"column:size_bytes;not null" json:"sizeBytes"`
	Width        *int              `gorm:"column:width" json:"width,omitempty"`
	Height       *int              `gorm:"column:height" json:"height,omitempty"`
	Alt          *string           `gorm:"column:alt" json:"alt,omitempty"`
	Description  *string           `gorm:"column:description" json:"description,omitempty"`
	Tags         pq.StringArray    `gorm:"column:tags;type:text[]" json:"tags"`
	Folder       *string           `gorm:"column:folder" json:"folder,omitempty"`
	Status       enums.MediaStatus `gorm:"column:status;not null;default:ACTIVE" json:"status"`
	Featured     bool              `gorm:"column:featured;not null;default:false" json:"featured"`
	UploadedBy   uuid.UUID         `gorm:"column:uploaded_by;type:uuid;not null" json:"uploadedBy"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (m *Media) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

package media

import (
	"github.com/google/uuid"

	"github.com/storelane/storelane-backend/pkg/enums"
	"github.com/storelane/storelane-backend/pkg/pagination"
)

// UploadMeta carries optional descriptive fields supplied with an upload.
type UploadMeta struct {
	Alt         string
	Description string
	Tags        []string
	Folder      string
}

// UploadInput models one upload request. DeclaredSize is the byte count the
// client claims; it must match len(Bytes) exactly.
type UploadInput struct {
	Bytes        []byte
	DeclaredName string
	DeclaredSize int64
	MimeType     string
	UploadedBy   uuid.UUID
	Meta         UploadMeta
}

// MetadataPatch updates descriptive fields on an existing record. Nil fields
// are left untouched.
type MetadataPatch struct {
	Alt         *string
	Description *string
	Tags        []string
	Folder      *string
	Featured    *bool
}

// ListFilter narrows the library listing.
type ListFilter struct {
	Search     string
	Folder     string
	Status     enums.MediaStatus
	UploadedBy uuid.UUID
	Tag        string
	Page       pagination.Params
}

// Stats summarizes the library.
type Stats struct {
	TotalCount     int64            `json:"totalCount"`
	TotalSizeBytes int64            `json:"totalSizeBytes"`
	ByStatus       map[string]int64 `json:"byStatus"`
}

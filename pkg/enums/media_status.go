package enums

import "fmt"

// MediaStatus describes the lifecycle state of a media record. Deletion is a
// status transition; row removal is a separate, irreversible purge.
type MediaStatus string

const (
	MediaStatusActive   MediaStatus = "ACTIVE"
	MediaStatusArchived MediaStatus = "ARCHIVED"
	MediaStatusDeleted  MediaStatus = "DELETED"
)

var validMediaStatuses = []MediaStatus{
	MediaStatusActive,
	MediaStatusArchived,
	MediaStatusDeleted,
}

// String returns the literal string for the status.
func (m MediaStatus) String() string {
	return string(m)
}

// IsValid reports whether the status is known.
func (m MediaStatus) IsValid() bool {
	for _, candidate := range validMediaStatuses {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMediaStatus converts raw input into a MediaStatus.
func ParseMediaStatus(value string) (MediaStatus, error) {
	for _, candidate := range validMediaStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid media status %q", value)
}

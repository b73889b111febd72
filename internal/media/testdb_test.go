package media

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// mediaTableDDL mirrors the production schema in sqlite-compatible form; the
// tags array is stored through its driver string encoding.
const mediaTableDDL = `
CREATE TABLE media (
    id TEXT PRIMARY KEY,
    file_name TEXT NOT NULL UNIQUE,
    original_name TEXT NOT NULL DEFAULT '',
    url TEXT NOT NULL,
    mime_type TEXT NOT NULL,
    size_bytes INTEGER NOT NULL,
    width INTEGER,
    height INTEGER,
    alt TEXT,
    description TEXT,
    tags TEXT,
    folder TEXT,
    status TEXT NOT NULL DEFAULT 'ACTIVE',
    featured BOOLEAN NOT NULL DEFAULT 0,
    uploaded_by TEXT NOT NULL,
    created_at DATETIME,
    updated_at DATETIME
)`

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.Exec(mediaTableDDL).Error; err != nil {
		t.Fatalf("create media table: %v", err)
	}
	return conn
}

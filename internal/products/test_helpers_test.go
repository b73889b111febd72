package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/storelane/storelane-backend/pkg/db"
	"github.com/storelane/storelane-backend/pkg/db/models"
	"github.com/storelane/storelane-backend/internal/media"
)

// media carries an array column, so its table is created from explicit DDL
// that sqlite accepts; everything else auto-migrates.
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

type fixture struct {
	client    *db.Client
	svc       Service
	repo      *Repository
	mediaRepo *media.Repository
	user      *models.User
	category  *models.ProductCategory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}, &models.ProductCategory{}, &models.Product{}, &models.ProductMedia{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := conn.Migrator().DropTable("media"); err != nil {
		t.Fatalf("drop auto-migrated media table: %v", err)
	}
	if err := conn.Exec(mediaTableDDL).Error; err != nil {
		t.Fatalf("create media table: %v", err)
	}

	client := db.FromGorm(conn)
	repo := NewRepository(conn)
	mediaRepo := media.NewRepository(conn)

	svc, err := NewService(client, repo, mediaRepo, nil, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	ctx := context.Background()
	user := &models.User{ID: uuid.New(), Email: "admin@storelane.test", PasswordHash: "x", Name: "Admin", Role: "admin", IsActive: true}
	if err := conn.WithContext(ctx).Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	category := &models.ProductCategory{ID: uuid.New(), Name: "Lighting", Slug: "lighting"}
	if err := conn.WithContext(ctx).Create(category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}

	return &fixture{client: client, svc: svc, repo: repo, mediaRepo: mediaRepo, user: user, category: category}
}

func (f *fixture) seedMedia(t *testing.T, name string) *models.Media {
	t.Helper()
	row := &models.Media{
		ID:           uuid.New(),
		FileName:     name,
		OriginalName: name,
		URL:          "https://cdn.example/uploads/" + name,
		MimeType:     "image/png",
		SizeBytes:    10,
		UploadedBy:   f.user.ID,
	}
	row.Status = "ACTIVE"
	if _, err := f.mediaRepo.Create(context.Background(), row); err != nil {
		t.Fatalf("seed media %s: %v", name, err)
	}
	return row
}

func (f *fixture) validInput(t *testing.T, slug string, galleryCount int) CreateProductInput {
	t.Helper()
	cover := f.seedMedia(t, slug+"-cover-"+uuid.NewString()+".png")
	input := CreateProductInput{
		Name:       "Product " + slug,
		Slug:       slug,
		SKU:        "SKU-" + slug,
		Price:      mustDecimal(t, "19.99"),
		IsActive:   true,
		CategoryID: f.category.ID,
		CreatedBy:  f.user.ID,
		CoverImage: cover.ID,
	}
	for i := 0; i < galleryCount; i++ {
		m := f.seedMedia(t, slug+"-gallery-"+uuid.NewString()+".png")
		input.Gallery = append(input.Gallery, m.ID)
	}
	return input
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("decimal %q: %v", s, err)
	}
	return d
}

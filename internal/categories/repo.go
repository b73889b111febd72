package categories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storelane/storelane-backend/pkg/db/models"
)

// Repository persists the category tree.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a category repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns every category with its parent preloaded, name-ordered.
func (r *Repository) List(ctx context.Context) ([]models.ProductCategory, error) {
	var rows []models.ProductCategory
	err := r.db.WithContext(ctx).
		Preload("Parent").
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}

// FindByID loads one category with its parent.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ProductCategory, error) {
	var row models.ProductCategory
	if err := r.db.WithContext(ctx).Preload("Parent").First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindBySlug loads the bare row by slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.ProductCategory, error) {
	var row models.ProductCategory
	if err := r.db.WithContext(ctx).First(&row, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Create inserts a category row.
func (r *Repository) Create(ctx context.Context, row *models.ProductCategory) (*models.ProductCategory, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

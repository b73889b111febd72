package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storelane/storelane-backend/pkg/db/models"
)

// Repository persists products and their ordered media associations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a product repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a product row.
func (r *Repository) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// FindByID loads a product with its category and ordered media.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Media", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Media.Media").
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindBySlug loads the bare product row by slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// List applies the listing filters with pagination, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Product, int64, error) {
	page := filter.Page.Normalize()

	query := r.db.WithContext(ctx).Model(&models.Product{})
	if filter.Search != "" {
		like := "%" + lower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(slug) LIKE ?", like, like)
	}
	if filter.CategoryID != uuid.Nil {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Product
	err := query.
		Preload("Category").
		Preload("Media", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Media.Media").
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// UpdateScalars applies a column patch to one product.
func (r *Repository) UpdateScalars(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(updates)
	return res.RowsAffected, res.Error
}

// Delete removes a product; join rows cascade at the schema level. The
// sqlite test double lacks cascading deletes, so join rows go first.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	if err := r.db.WithContext(ctx).Where("product_id = ?", id).Delete(&models.ProductMedia{}).Error; err != nil {
		return 0, err
	}
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	return res.RowsAffected, res.Error
}

// InsertMediaRow inserts one gallery join row.
func (r *Repository) InsertMediaRow(ctx context.Context, row *models.ProductMedia) (*models.ProductMedia, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// SetCoverImage points the product at one of its join rows.
func (r *Repository) SetCoverImage(ctx context.Context, productID uuid.UUID, joinRowID *uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Update("cover_image_id", joinRowID).Error
}

// MediaRows returns the product's join rows ordered by position.
func (r *Repository) MediaRows(ctx context.Context, productID uuid.UUID) ([]models.ProductMedia, error) {
	var rows []models.ProductMedia
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("position ASC").
		Find(&rows).Error
	return rows, err
}

// MaxPosition returns the highest gallery position, -1 when the gallery is
// empty.
func (r *Repository) MaxPosition(ctx context.Context, productID uuid.UUID) (int, error) {
	var row struct {
		Max *int
	}
	err := r.db.WithContext(ctx).
		Model(&models.ProductMedia{}).
		Select("MAX(position) AS max").
		Where("product_id = ?", productID).
		Scan(&row).Error
	if err != nil {
		return 0, err
	}
	if row.Max == nil {
		return -1, nil
	}
	return *row.Max, nil
}

// FindMediaRow returns the join row linking a product and a media record.
func (r *Repository) FindMediaRow(ctx context.Context, productID, mediaID uuid.UUID) (*models.ProductMedia, error) {
	var row models.ProductMedia
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND media_id = ?", productID, mediaID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// DeleteMediaRow removes one join row by its id.
func (r *Repository) DeleteMediaRow(ctx context.Context, rowID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", rowID).Delete(&models.ProductMedia{})
	return res.RowsAffected, res.Error
}

// CategoryExists checks the referenced category.
func (r *Repository) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProductCategory{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

// UserExists checks the referenced author.
func (r *Repository) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

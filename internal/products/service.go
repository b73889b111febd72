package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storelane/storelane-backend/pkg/db"
	"github.com/storelane/storelane-backend/pkg/db/models"
	"github.com/storelane/storelane-backend/pkg/enums"
	pkgerrors "github.com/storelane/storelane-backend/pkg/errors"
	"github.com/storelane/storelane-backend/pkg/logger"
	"github.com/storelane/storelane-backend/pkg/metrics"
	"github.com/storelane/storelane-backend/pkg/slug"
	"github.com/storelane/storelane-backend/pkg/types"
)

type mediaFinder interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Media, error)
}

// Service exposes product administration: the association transaction,
// scalar updates and gallery maintenance.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, filter ListFilter) ([]models.Product, *types.PageMeta, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	AddProductMedia(ctx context.Context, productID uuid.UUID, mediaIDs []uuid.UUID) ([]models.ProductMedia, error)
	RemoveProductMedia(ctx context.Context, productID, mediaID uuid.UUID) error
}

type service struct {
	client  *db.Client
	repo    *Repository
	media   mediaFinder
	metrics *metrics.Metrics
	logg    *logger.Logger
}

// NewService constructs the product service.
func NewService(client *db.Client, repo *Repository, media mediaFinder, m *metrics.Metrics, logg *logger.Logger) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if media == nil {
		return nil, fmt.Errorf("media finder required")
	}
	return &service{client: client, repo: repo, media: media, metrics: m, logg: logg}, nil
}

// CreateProduct verifies every reference up front, then builds the product
// and its gallery in a single transaction: product first with no cover, the
// primary join row at position 0, the cover pointer, then the gallery rows.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	product, err := s.createProduct(ctx, input)
	s.metrics.IncTransaction("create_product", err)
	return product, err
}

func (s *service) createProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if input.Name == "" || input.Slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name and slug are required")
	}
	if input.CoverImage == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cover image is required")
	}

	if _, err := s.repo.FindBySlug(ctx, input.Slug); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDuplicate, "slug already in use").
			WithDetails(map[string]any{"slug": input.Slug})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking slug failed")
	}

	if err := s.checkReferences(ctx, input); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:         uuid.New(),
		Name:       input.Name,
		Slug:       input.Slug,
		SKU:        input.SKU,
		Price:      input.Price,
		Discount:   input.Discount,
		Stock:      input.Stock,
		IsActive:   input.IsActive,
		IsFeatured: input.IsFeatured,
		CategoryID: input.CategoryID,
		CreatedBy:  input.CreatedBy,
	}
	if input.Description != "" {
		desc := input.Description
		product.Description = &desc
	}

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.Create(ctx, product); err != nil {
			return fmt.Errorf("inserting product: %w", err)
		}

		primary, err := repo.InsertMediaRow(ctx, &models.ProductMedia{
			ID:        uuid.New(),
			ProductID: product.ID,
			MediaID:   input.CoverImage,
			IsPrimary: true,
			Position:  0,
		})
		if err != nil {
			return fmt.Errorf("inserting primary media row: %w", err)
		}

		if err := repo.SetCoverImage(ctx, product.ID, &primary.ID); err != nil {
			return fmt.Errorf("setting cover image: %w", err)
		}

		for i, mediaID := range input.Gallery {
			if _, err := repo.InsertMediaRow(ctx, &models.ProductMedia{
				ID:        uuid.New(),
				ProductID: product.ID,
				MediaID:   mediaID,
				Position:  i + 1,
			}); err != nil {
				return fmt.Errorf("inserting gallery row %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		if db.IsUniqueViolation(err, "idx_products_slug") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDuplicate, err, "slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "product transaction failed")
	}

	return s.Get(ctx, product.ID)
}

func (s *service) checkReferences(ctx context.Context, input CreateProductInput) error {
	ok, err := s.repo.CategoryExists(ctx, input.CategoryID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking category failed")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeReference, "category does not exist").
			WithDetails(map[string]any{"categoryId": input.CategoryID})
	}

	ok, err = s.repo.UserExists(ctx, input.CreatedBy)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking author failed")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeReference, "author does not exist").
			WithDetails(map[string]any{"createdBy": input.CreatedBy})
	}

	wanted := append([]uuid.UUID{input.CoverImage}, input.Gallery...)
	rows, err := s.media.FindByIDs(ctx, wanted)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking media references failed")
	}

	found := map[uuid.UUID]models.Media{}
	for _, row := range rows {
		found[row.ID] = row
	}

	cover, ok := found[input.CoverImage]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeReference, "cover image does not exist").
			WithDetails(map[string]any{"coverImageId": input.CoverImage})
	}
	if cover.Status == enums.MediaStatusDeleted {
		return pkgerrors.New(pkgerrors.CodeReference, "cover image has been deleted").
			WithDetails(map[string]any{"coverImageId": input.CoverImage})
	}

	for _, id := range input.Gallery {
		if _, ok := found[id]; !ok {
			return pkgerrors.New(pkgerrors.CodeReference, "gallery references missing media").
				WithDetails(map[string]any{"mediaId": id})
		}
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product failed")
	}
	return product, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]models.Product, *types.PageMeta, error) {
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing products failed")
	}
	return rows, filter.Page.Meta(total), nil
}

// UpdateProduct merges scalar fields only. The gallery is untouched here;
// attach and detach are separate operations.
func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	product, err := s.updateProduct(ctx, id, input)
	s.metrics.IncTransaction("update_product", err)
	return product, err
}

func (s *service) updateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if len(name) < minNameLen || len(name) > maxNameLen {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name length is invalid")
		}
		updates["name"] = name
	}
	if input.Slug != nil {
		next := strings.TrimSpace(*input.Slug)
		if !slug.IsValid(next) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is invalid")
		}
		if next != current.Slug {
			if _, err := s.repo.FindBySlug(ctx, next); err == nil {
				return nil, pkgerrors.New(pkgerrors.CodeDuplicate, "slug already in use")
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking slug failed")
			}
			updates["slug"] = next
		}
	}
	if input.SKU != nil {
		sku := strings.TrimSpace(*input.SKU)
		if sku == "" || len(sku) > maxSKULen {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku length is invalid")
		}
		updates["sku"] = sku
	}
	if input.Description != nil {
		desc := strings.TrimSpace(*input.Description)
		if len(desc) > maxDescriptionLen {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "description is too long")
		}
		updates["description"] = desc
	}
	if input.Price != nil {
		if !input.Price.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be greater than zero")
		}
		updates["price"] = *input.Price
	}
	if input.Discount != nil {
		if input.Discount.IsNegative() || input.Discount.GreaterThan(maxDiscount) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount must be between 0 and 100")
		}
		updates["discount"] = *input.Discount
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
		}
		updates["stock"] = *input.Stock
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.IsFeatured != nil {
		updates["is_featured"] = *input.IsFeatured
	}
	if input.CategoryID != nil {
		ok, err := s.repo.CategoryExists(ctx, *input.CategoryID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking category failed")
		}
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeReference, "category does not exist")
		}
		updates["category_id"] = *input.CategoryID
	}

	if len(updates) == 0 {
		return current, nil
	}

	if _, err := s.repo.UpdateScalars(ctx, id, updates); err != nil {
		if db.IsUniqueViolation(err, "idx_products_slug") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDuplicate, err, "slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating product failed")
	}
	return s.Get(ctx, id)
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting product failed")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

// AddProductMedia appends media to the gallery after the current maximum
// position; already-attached media are skipped.
func (s *service) AddProductMedia(ctx context.Context, productID uuid.UUID, mediaIDs []uuid.UUID) ([]models.ProductMedia, error) {
	rows, err := s.addProductMedia(ctx, productID, mediaIDs)
	s.metrics.IncTransaction("add_product_media", err)
	return rows, err
}

func (s *service) addProductMedia(ctx context.Context, productID uuid.UUID, mediaIDs []uuid.UUID) ([]models.ProductMedia, error) {
	if len(mediaIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one media id is required")
	}
	if _, err := s.Get(ctx, productID); err != nil {
		return nil, err
	}

	found, err := s.media.FindByIDs(ctx, mediaIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking media references failed")
	}
	existing := map[uuid.UUID]bool{}
	for _, row := range found {
		existing[row.ID] = true
	}
	for _, id := range mediaIDs {
		if !existing[id] {
			return nil, pkgerrors.New(pkgerrors.CodeReference, "media does not exist").
				WithDetails(map[string]any{"mediaId": id})
		}
	}

	attachedRows, err := s.repo.MediaRows(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading gallery failed")
	}
	attached := map[uuid.UUID]bool{}
	for _, row := range attachedRows {
		attached[row.MediaID] = true
	}

	maxPos, err := s.repo.MaxPosition(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading gallery positions failed")
	}

	var inserted []models.ProductMedia
	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		next := maxPos + 1
		for _, mediaID := range mediaIDs {
			if attached[mediaID] {
				continue
			}
			attached[mediaID] = true
			row, err := repo.InsertMediaRow(ctx, &models.ProductMedia{
				ID:        uuid.New(),
				ProductID: productID,
				MediaID:   mediaID,
				Position:  next,
			})
			if err != nil {
				return fmt.Errorf("inserting gallery row: %w", err)
			}
			next++
			inserted = append(inserted, *row)
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attaching media failed")
	}
	return inserted, nil
}

// RemoveProductMedia detaches one media record; removing the primary row
// also clears the product's cover pointer.
func (s *service) RemoveProductMedia(ctx context.Context, productID, mediaID uuid.UUID) error {
	err := s.removeProductMedia(ctx, productID, mediaID)
	s.metrics.IncTransaction("remove_product_media", err)
	return err
}

func (s *service) removeProductMedia(ctx context.Context, productID, mediaID uuid.UUID) error {
	row, err := s.repo.FindMediaRow(ctx, productID, mediaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "media is not attached to this product")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading gallery row failed")
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if row.IsPrimary {
			if err := repo.SetCoverImage(ctx, productID, nil); err != nil {
				return fmt.Errorf("clearing cover image: %w", err)
			}
		}
		if _, err := repo.DeleteMediaRow(ctx, row.ID); err != nil {
			return fmt.Errorf("deleting gallery row: %w", err)
		}
		return nil
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "detaching media failed")
	}
	return nil
}

func lower(s string) string {
	return strings.ToLower(s)
}

// Package seed populates a development database with a consistent demo
// dataset. Every seeder is idempotent: rows are looked up by their natural
// key and skipped when present, so repeated runs converge.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/storelane/storelane-backend/pkg/db/models"
	"github.com/storelane/storelane-backend/pkg/enums"
	"github.com/storelane/storelane-backend/pkg/logger"
	"github.com/storelane/storelane-backend/pkg/slug"
)

// placeholderHash marks seeded accounts; authentication is handled by an
// external identity service, so no real credential is ever stored here.
const placeholderHash = "$external$"

type Seeder struct {
	db   *gorm.DB
	logg *logger.Logger
}

func New(db *gorm.DB, logg *logger.Logger) (*Seeder, error) {
	if db == nil {
		return nil, fmt.Errorf("db connection required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Seeder{db: db, logg: logg}, nil
}

// Run executes every seeder in dependency order. Failures are collected so a
// broken seeder does not hide the others; the combined error is returned.
func (s *Seeder) Run(ctx context.Context) error {
	var combined error

	users, err := s.seedUsers(ctx)
	combined = multierr.Append(combined, err)

	categories, err := s.seedCategories(ctx)
	combined = multierr.Append(combined, err)

	if len(users) > 0 && len(categories) > 0 {
		combined = multierr.Append(combined, s.seedProducts(ctx, users, categories))
	}
	return combined
}

type userSpec struct {
	email string
	name  string
	role  string
}

func (s *Seeder) seedUsers(ctx context.Context) (map[string]*models.User, error) {
	specs := []userSpec{
		{email: "admin@storelane.dev", name: "Storelane Admin", role: "admin"},
		{email: "editor@storelane.dev", name: "Storelane Editor", role: "editor"},
	}

	out := map[string]*models.User{}
	var combined error
	for _, spec := range specs {
		user := &models.User{}
		err := s.db.WithContext(ctx).Where("email = ?", spec.email).First(user).Error
		switch {
		case err == nil:
			out[spec.role] = user
			continue
		case !errors.Is(err, gorm.ErrRecordNotFound):
			combined = multierr.Append(combined, fmt.Errorf("looking up user %s: %w", spec.email, err))
			continue
		}

		user = &models.User{
			Email:        spec.email,
			PasswordHash: placeholderHash,
			Name:         spec.name,
			Role:         spec.role,
			IsActive:     true,
		}
		if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
			combined = multierr.Append(combined, fmt.Errorf("seeding user %s: %w", spec.email, err))
			continue
		}
		s.logg.Info(s.logg.WithField(ctx, "email", spec.email), "seeded user")
		out[spec.role] = user
	}
	return out, combined
}

type categorySpec struct {
	name     string
	children []string
}

func (s *Seeder) seedCategories(ctx context.Context) (map[string]*models.ProductCategory, error) {
	tree := []categorySpec{
		{name: "Lighting", children: []string{"Ceiling Lamps", "Desk Lamps"}},
		{name: "Furniture", children: []string{"Chairs", "Tables"}},
		{name: "Decor"},
	}

	out := map[string]*models.ProductCategory{}
	var combined error
	for _, spec := range tree {
		parent, err := s.ensureCategory(ctx, spec.name, nil)
		if err != nil {
			combined = multierr.Append(combined, err)
			continue
		}
		out[parent.Slug] = parent
		for _, childName := range spec.children {
			child, err := s.ensureCategory(ctx, childName, &parent.ID)
			if err != nil {
				combined = multierr.Append(combined, err)
				continue
			}
			out[child.Slug] = child
		}
	}
	return out, combined
}

func (s *Seeder) ensureCategory(ctx context.Context, name string, parentID *uuid.UUID) (*models.ProductCategory, error) {
	catSlug := slug.Make(name)
	row := &models.ProductCategory{}
	err := s.db.WithContext(ctx).Where("slug = ?", catSlug).First(row).Error
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("looking up category %s: %w", catSlug, err)
	}

	row = &models.ProductCategory{Name: name, Slug: catSlug, ParentID: parentID}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("seeding category %s: %w", catSlug, err)
	}
	s.logg.Info(s.logg.WithField(ctx, "slug", catSlug), "seeded category")
	return row, nil
}

type productSpec struct {
	name     string
	sku      string
	category string
	price    string
	discount string
	stock    int
	gallery  int
}

func (s *Seeder) seedProducts(ctx context.Context, users map[string]*models.User, categories map[string]*models.ProductCategory) error {
	admin := users["admin"]
	if admin == nil {
		return fmt.Errorf("admin user missing, skipping products")
	}

	specs := []productSpec{
		{name: "Arc Floor Lamp", sku: "LGT-ARC-001", category: "lighting", price: "189.00", discount: "20.00", stock: 14, gallery: 2},
		{name: "Walnut Desk Lamp", sku: "LGT-WDL-002", category: "desk-lamps", price: "79.50", stock: 32, gallery: 1},
		{name: "Oak Dining Table", sku: "FRN-ODT-003", category: "tables", price: "640.00", stock: 5, gallery: 3},
		{name: "Linen Lounge Chair", sku: "FRN-LLC-004", category: "chairs", price: "420.00", discount: "35.00", stock: 9, gallery: 2},
		{name: "Ceramic Vase Set", sku: "DCR-CVS-005", category: "decor", price: "54.25", stock: 48, gallery: 1},
	}

	var combined error
	for _, spec := range specs {
		category := categories[spec.category]
		if category == nil {
			combined = multierr.Append(combined, fmt.Errorf("category %s missing for product %s", spec.category, spec.name))
			continue
		}
		if err := s.ensureProduct(ctx, spec, admin, category); err != nil {
			combined = multierr.Append(combined, err)
		}
	}
	return combined
}

func (s *Seeder) ensureProduct(ctx context.Context, spec productSpec, creator *models.User, category *models.ProductCategory) error {
	productSlug := slug.Make(spec.name)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Where("slug = ?", productSlug).Count(&count).Error; err != nil {
		return fmt.Errorf("looking up product %s: %w", productSlug, err)
	}
	if count > 0 {
		return nil
	}

	price, err := decimal.NewFromString(spec.price)
	if err != nil {
		return fmt.Errorf("product %s price: %w", productSlug, err)
	}
	var discount *decimal.Decimal
	if spec.discount != "" {
		d, err := decimal.NewFromString(spec.discount)
		if err != nil {
			return fmt.Errorf("product %s discount: %w", productSlug, err)
		}
		discount = &d
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product := &models.Product{
			Name:       spec.name,
			Slug:       productSlug,
			SKU:        spec.sku,
			Price:      price,
			Discount:   discount,
			Stock:      spec.stock,
			IsActive:   true,
			CategoryID: category.ID,
			CreatedBy:  creator.ID,
		}
		if err := tx.Create(product).Error; err != nil {
			return fmt.Errorf("seeding product %s: %w", productSlug, err)
		}

		// covers double as the featured gallery on the dashboard
		cover, err := s.ensureMedia(tx, productSlug+"-cover.png", creator.ID, category.Slug, true)
		if err != nil {
			return err
		}
		primary := &models.ProductMedia{
			ProductID: product.ID,
			MediaID:   cover.ID,
			IsPrimary: true,
			Position:  0,
		}
		if err := tx.Create(primary).Error; err != nil {
			return fmt.Errorf("seeding cover row for %s: %w", productSlug, err)
		}
		if err := tx.Model(&models.Product{}).
			Where("id = ?", product.ID).
			Update("cover_image_id", primary.ID).Error; err != nil {
			return fmt.Errorf("linking cover for %s: %w", productSlug, err)
		}

		for i := 0; i < spec.gallery; i++ {
			item, err := s.ensureMedia(tx, fmt.Sprintf("%s-gallery-%d.png", productSlug, i+1), creator.ID, category.Slug, false)
			if err != nil {
				return err
			}
			row := &models.ProductMedia{
				ProductID: product.ID,
				MediaID:   item.ID,
				Position:  i + 1,
			}
			if err := tx.Create(row).Error; err != nil {
				return fmt.Errorf("seeding gallery row %d for %s: %w", i+1, productSlug, err)
			}
		}

		s.logg.Info(s.logg.WithProductID(ctx, product.ID.String()), "seeded product")
		return nil
	})
}

func (s *Seeder) ensureMedia(tx *gorm.DB, fileName string, uploadedBy uuid.UUID, folder string, featured bool) (*models.Media, error) {
	row := &models.Media{}
	err := tx.Where("file_name = ?", fileName).First(row).Error
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("looking up media %s: %w", fileName, err)
	}

	width, height := 1200, 800
	row = &models.Media{
		FileName:     fileName,
		OriginalName: fileName,
		URL:          "https://cdn.storelane.dev/uploads/" + fileName,
		MimeType:     "image/png",
		SizeBytes:    2048,
		Width:        &width,
		Height:       &height,
		Folder:       &folder,
		Status:       enums.MediaStatusActive,
		Featured:     featured,
		UploadedBy:   uploadedBy,
	}
	if err := tx.Create(row).Error; err != nil {
		return nil, fmt.Errorf("seeding media %s: %w", fileName, err)
	}
	return row, nil
}

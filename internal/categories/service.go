package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storelane/storelane-backend/pkg/db/models"
	pkgerrors "github.com/storelane/storelane-backend/pkg/errors"
	"github.com/storelane/storelane-backend/pkg/slug"
)

// CreateCategoryInput is the raw create payload.
type CreateCategoryInput struct {
	Name        string `json:"name" validate:"required,min=2,max=120"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	ParentID    string `json:"parentId"`
}

// Service exposes category lookups for product administration.
type Service interface {
	List(ctx context.Context) ([]models.ProductCategory, error)
	Get(ctx context.Context, id uuid.UUID) (*models.ProductCategory, error)
	Create(ctx context.Context, input CreateCategoryInput) (*models.ProductCategory, error)
}

type service struct {
	repo *Repository
}

// NewService constructs the category service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]models.ProductCategory, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing categories failed")
	}
	return rows, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.ProductCategory, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading category failed")
	}
	return row, nil
}

func (s *service) Create(ctx context.Context, input CreateCategoryInput) (*models.ProductCategory, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	categorySlug := strings.TrimSpace(input.Slug)
	if categorySlug == "" {
		categorySlug = slug.Make(name)
	} else if !slug.IsValid(categorySlug) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is invalid")
	}
	if categorySlug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug cannot be derived from name")
	}

	if _, err := s.repo.FindBySlug(ctx, categorySlug); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDuplicate, "slug already in use")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking slug failed")
	}

	row := &models.ProductCategory{
		ID:   uuid.New(),
		Name: name,
		Slug: categorySlug,
	}
	if desc := strings.TrimSpace(input.Description); desc != "" {
		row.Description = &desc
	}
	if raw := strings.TrimSpace(input.ParentID); raw != "" {
		parentID, err := uuid.Parse(raw)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "parentId must be a valid uuid")
		}
		if _, err := s.repo.FindByID(ctx, parentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeReference, "parent category does not exist")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking parent failed")
		}
		row.ParentID = &parentID
	}

	if _, err := s.repo.Create(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating category failed")
	}
	return row, nil
}

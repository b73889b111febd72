package products

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storelane/storelane-backend/pkg/pagination"
)

// CreateProductInput is the validated output of ParseForm.
type CreateProductInput struct {
	Name        string
	Slug        string
	SKU         string
	Description string
	Price       decimal.Decimal
	Discount    *decimal.Decimal
	Stock       int
	IsActive    bool
	IsFeatured  bool
	CategoryID  uuid.UUID
	CreatedBy   uuid.UUID
	CoverImage  uuid.UUID
	Gallery     []uuid.UUID
}

// UpdateProductInput patches scalar fields only; gallery changes go through
// AddProductMedia/RemoveProductMedia. Nil fields are left untouched.
type UpdateProductInput struct {
	Name        *string          `json:"name,omitempty"`
	Slug        *string          `json:"slug,omitempty"`
	SKU         *string          `json:"sku,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Discount    *decimal.Decimal `json:"discount,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
	IsActive    *bool            `json:"isActive,omitempty"`
	IsFeatured  *bool            `json:"isFeatured,omitempty"`
	CategoryID  *uuid.UUID       `json:"categoryId,omitempty"`
}

// ListFilter narrows the product listing.
type ListFilter struct {
	Search     string
	CategoryID uuid.UUID
	IsActive   *bool
	Page       pagination.Params
}

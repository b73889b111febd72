package products

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/storelane/storelane-backend/pkg/errors"
	"github.com/storelane/storelane-backend/pkg/slug"
)

// CreateProductRequest is the raw create payload. Price and discount decode
// from JSON numbers or strings without ever touching floats.
type CreateProductRequest struct {
	Name         string           `json:"name"`
	Slug         string           `json:"slug"`
	SKU          string           `json:"sku"`
	Description  string           `json:"description"`
	Price        *decimal.Decimal `json:"price"`
	Discount     *decimal.Decimal `json:"discount"`
	Stock        *int             `json:"stock"`
	IsActive     *bool            `json:"isActive"`
	IsFeatured   *bool            `json:"isFeatured"`
	CategoryID   string           `json:"categoryId"`
	CreatedBy    string           `json:"createdBy"`
	CoverImageID string           `json:"coverImageId"`
	Gallery      []string         `json:"gallery"`
}

const (
	minNameLen        = 2
	maxNameLen        = 255
	maxSKULen         = 100
	maxDescriptionLen = 5000
)

// maxDiscount caps the discount at a full hundred; anything beyond is a
// mistyped payload, not a markdown.
var maxDiscount = decimal.NewFromInt(100)

// ParseForm validates the raw payload and reports every broken field at once
// rather than stopping at the first.
func ParseForm(req CreateProductRequest) (*CreateProductInput, error) {
	details := map[string]string{}

	name := strings.TrimSpace(req.Name)
	switch {
	case name == "":
		details["name"] = "is required"
	case len(name) < minNameLen:
		details["name"] = "is too short"
	case len(name) > maxNameLen:
		details["name"] = "is too long"
	}

	productSlug := strings.TrimSpace(req.Slug)
	if productSlug == "" {
		productSlug = slug.Make(name)
		if productSlug == "" && details["name"] == "" {
			details["slug"] = "cannot be derived from name"
		}
	} else if !slug.IsValid(productSlug) {
		details["slug"] = "must contain only lowercase letters, digits and single hyphens"
	}

	sku := strings.TrimSpace(req.SKU)
	switch {
	case sku == "":
		details["sku"] = "is required"
	case len(sku) > maxSKULen:
		details["sku"] = "is too long"
	}

	description := strings.TrimSpace(req.Description)
	if len(description) > maxDescriptionLen {
		details["description"] = "is too long"
	}

	var price decimal.Decimal
	if req.Price == nil {
		details["price"] = "is required"
	} else if !req.Price.IsPositive() {
		details["price"] = "must be greater than zero"
	} else {
		price = *req.Price
	}

	var discount *decimal.Decimal
	if req.Discount != nil {
		if req.Discount.IsNegative() || req.Discount.GreaterThan(maxDiscount) {
			details["discount"] = "must be between 0 and 100"
		} else {
			d := *req.Discount
			discount = &d
		}
	}

	stock := 0
	if req.Stock != nil {
		if *req.Stock < 0 {
			details["stock"] = "must not be negative"
		} else {
			stock = *req.Stock
		}
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	isFeatured := false
	if req.IsFeatured != nil {
		isFeatured = *req.IsFeatured
	}

	categoryID := parseRequiredUUID(req.CategoryID, "categoryId", details)
	createdBy := parseRequiredUUID(req.CreatedBy, "createdBy", details)
	coverImage := parseRequiredUUID(req.CoverImageID, "coverImageId", details)

	gallery := make([]uuid.UUID, 0, len(req.Gallery))
	seen := map[uuid.UUID]bool{coverImage: true}
	for _, raw := range req.Gallery {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			details["gallery"] = "contains an invalid id"
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		gallery = append(gallery, id)
	}

	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product form is invalid").WithDetails(details)
	}

	return &CreateProductInput{
		Name:        name,
		Slug:        productSlug,
		SKU:         sku,
		Description: description,
		Price:       price,
		Discount:    discount,
		Stock:       stock,
		IsActive:    isActive,
		IsFeatured:  isFeatured,
		CategoryID:  categoryID,
		CreatedBy:   createdBy,
		CoverImage:  coverImage,
		Gallery:     gallery,
	}, nil
}

func parseRequiredUUID(raw, field string, details map[string]string) uuid.UUID {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		details[field] = "is required"
		return uuid.Nil
	}
	id, err := uuid.Parse(trimmed)
	if err != nil {
		details[field] = "must be a valid uuid"
		return uuid.Nil
	}
	return id
}

// FinalPrice is the effective sale price: price minus discount, floored at
// zero. Money never goes through floats.
func FinalPrice(price decimal.Decimal, discount *decimal.Decimal) decimal.Decimal {
	if discount == nil {
		return price
	}
	final := price.Sub(*discount)
	if final.IsNegative() {
		return decimal.Zero
	}
	return final
}

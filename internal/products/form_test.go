package products

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/storelane/storelane-backend/pkg/errors"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func validRequest() CreateProductRequest {
	return CreateProductRequest{
		Name:         "Modern Desk Lamp",
		SKU:          "LGT-MDL-100",
		Price:        dec("49.90"),
		CategoryID:   uuid.NewString(),
		CreatedBy:    uuid.NewString(),
		CoverImageID: uuid.NewString(),
	}
}

func TestParseFormDerivesSlug(t *testing.T) {
	input, err := ParseForm(validRequest())
	if err != nil {
		t.Fatalf("ParseForm: %v", err)
	}
	if input.Slug != "modern-desk-lamp" {
		t.Fatalf("slug = %q", input.Slug)
	}
	if !input.IsActive {
		t.Fatal("isActive should default to true")
	}
	if input.Stock != 0 {
		t.Fatalf("stock should default to 0, got %d", input.Stock)
	}
	if input.IsFeatured {
		t.Fatal("isFeatured should default to false")
	}
}

func TestParseFormKeepsExplicitSlug(t *testing.T) {
	req := validRequest()
	req.Slug = "custom-slug"
	input, err := ParseForm(req)
	if err != nil {
		t.Fatalf("ParseForm: %v", err)
	}
	if input.Slug != "custom-slug" {
		t.Fatalf("slug = %q", input.Slug)
	}
}

func TestParseFormAggregatesAllErrors(t *testing.T) {
	stock := -1
	req := CreateProductRequest{
		Name:       "x",
		Slug:       "Bad Slug!",
		Price:      dec("-1"),
		Discount:   dec("-5"),
		Stock:      &stock,
		CategoryID: "not-a-uuid",
		Gallery:    []string{"also-not-a-uuid"},
	}

	_, err := ParseForm(req)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("details type %T", typed.Details())
	}
	for _, field := range []string{"name", "slug", "sku", "price", "discount", "stock", "categoryId", "createdBy", "coverImageId", "gallery"} {
		if _, found := details[field]; !found {
			t.Fatalf("missing %q in aggregated details %v", field, details)
		}
	}
}

func TestParseFormRejectsZeroPrice(t *testing.T) {
	req := validRequest()
	req.Price = dec("0")

	_, err := ParseForm(req)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details := typed.Details().(map[string]string)
	if details["price"] == "" {
		t.Fatalf("price must be flagged, details %v", details)
	}
}

func TestParseFormDiscountBounds(t *testing.T) {
	over := validRequest()
	over.Discount = dec("150")
	_, err := ParseForm(over)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("discount above 100 must be rejected, got %v", err)
	}

	full := validRequest()
	full.Discount = dec("100")
	input, err := ParseForm(full)
	if err != nil {
		t.Fatalf("a 100 discount is legal: %v", err)
	}
	if input.Discount == nil || !input.Discount.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("discount not kept: %v", input.Discount)
	}
}

func TestParseFormLengthLimits(t *testing.T) {
	req := validRequest()
	req.Name = strings.Repeat("n", maxNameLen+1)
	req.SKU = strings.Repeat("s", maxSKULen+1)
	req.Description = strings.Repeat("d", maxDescriptionLen+1)

	_, err := ParseForm(req)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected validation error, got %v", err)
	}
	details := typed.Details().(map[string]string)
	for _, field := range []string{"name", "sku", "description"} {
		if details[field] == "" {
			t.Fatalf("field %s must be flagged, details %v", field, details)
		}
	}

	atLimit := validRequest()
	atLimit.Name = strings.Repeat("n", maxNameLen)
	atLimit.SKU = strings.Repeat("s", maxSKULen)
	atLimit.Description = strings.Repeat("d", maxDescriptionLen)
	atLimit.Slug = "at-limit"
	if _, err := ParseForm(atLimit); err != nil {
		t.Fatalf("values at the limit must pass: %v", err)
	}
}

func TestParseFormDedupesGallery(t *testing.T) {
	req := validRequest()
	galleryID := uuid.NewString()
	req.Gallery = []string{galleryID, galleryID, req.CoverImageID}

	input, err := ParseForm(req)
	if err != nil {
		t.Fatalf("ParseForm: %v", err)
	}
	if len(input.Gallery) != 1 {
		t.Fatalf("duplicates and the cover id must be dropped, got %v", input.Gallery)
	}
}

func TestFinalPrice(t *testing.T) {
	price := decimal.RequireFromString("49.90")

	if got := FinalPrice(price, nil); !got.Equal(price) {
		t.Fatalf("no discount: %s", got)
	}
	if got := FinalPrice(price, dec("10.00")); !got.Equal(decimal.RequireFromString("39.90")) {
		t.Fatalf("discounted: %s", got)
	}
	if got := FinalPrice(price, dec("100")); !got.Equal(decimal.Zero) {
		t.Fatalf("oversized discount must clamp at zero: %s", got)
	}
	if got := FinalPrice(price, dec("49.90")); !got.Equal(decimal.Zero) {
		t.Fatalf("exact discount yields zero: %s", got)
	}
}

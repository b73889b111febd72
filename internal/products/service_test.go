package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/storelane/storelane-backend/pkg/db/models"
	"github.com/storelane/storelane-backend/pkg/enums"
	pkgerrors "github.com/storelane/storelane-backend/pkg/errors"
	"github.com/storelane/storelane-backend/pkg/metrics"
	"github.com/storelane/storelane-backend/pkg/pagination"
)

func countRows(t *testing.T, f *fixture, model any) int64 {
	t.Helper()
	var count int64
	if err := f.client.DB().Model(model).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return count
}

func TestCreateProductBuildsOrderedGallery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	input := f.validInput(t, "desk-lamp", 3)
	product, err := f.svc.CreateProduct(ctx, input)
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	if len(product.Media) != 4 {
		t.Fatalf("expected 4 join rows, got %d", len(product.Media))
	}

	primaries := 0
	for i, row := range product.Media {
		if row.Position != i {
			t.Fatalf("row %d has position %d", i, row.Position)
		}
		if row.IsPrimary {
			primaries++
			if row.Position != 0 {
				t.Fatalf("primary row must sit at position 0, got %d", row.Position)
			}
			if row.MediaID != input.CoverImage {
				t.Fatal("primary row must reference the cover media")
			}
		}
	}
	if primaries != 1 {
		t.Fatalf("expected exactly one primary row, got %d", primaries)
	}

	if product.CoverImageID == nil || *product.CoverImageID != product.Media[0].ID {
		t.Fatal("cover pointer must reference the primary join row")
	}
}

func TestCreateProductMissingCategoryLeavesNoRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	input := f.validInput(t, "orphan-check", 2)
	input.CategoryID = uuid.New()

	_, err := f.svc.CreateProduct(ctx, input)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeReference {
		t.Fatalf("expected reference error, got %v", err)
	}

	if n := countRows(t, f, &models.Product{}); n != 0 {
		t.Fatalf("no product rows may exist, found %d", n)
	}
	if n := countRows(t, f, &models.ProductMedia{}); n != 0 {
		t.Fatalf("no join rows may exist, found %d", n)
	}
}

func TestCreateProductMissingCoverLeavesNoRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	input := f.validInput(t, "no-cover", 0)
	input.CoverImage = uuid.New()

	_, err := f.svc.CreateProduct(ctx, input)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeReference {
		t.Fatalf("expected reference error, got %v", err)
	}
	if n := countRows(t, f, &models.Product{}); n != 0 {
		t.Fatalf("found %d orphan product rows", n)
	}
}

func TestCreateProductRejectsDeletedCover(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	input := f.validInput(t, "deleted-cover", 0)
	if _, err := f.mediaRepo.UpdateStatus(ctx, []uuid.UUID{input.CoverImage}, enums.MediaStatusDeleted); err != nil {
		t.Fatalf("soft delete cover: %v", err)
	}

	_, err := f.svc.CreateProduct(ctx, input)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeReference {
		t.Fatalf("expected reference error, got %v", err)
	}
}

func TestCreateProductDuplicateSlug(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.CreateProduct(ctx, f.validInput(t, "same-slug", 0)); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := f.svc.CreateProduct(ctx, f.validInput(t, "same-slug", 0))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDuplicate {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	if n := countRows(t, f, &models.Product{}); n != 1 {
		t.Fatalf("duplicate attempt must not add rows, found %d", n)
	}
}

func TestUpdateProductScalarsOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product, err := f.svc.CreateProduct(ctx, f.validInput(t, "update-me", 2))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Renamed Lamp"
	price := mustDecimal(t, "99.00")
	inactive := false
	updated, err := f.svc.UpdateProduct(ctx, product.ID, UpdateProductInput{
		Name:     &name,
		Price:    &price,
		IsActive: &inactive,
	})
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}

	if updated.Name != "Renamed Lamp" || !updated.Price.Equal(price) || updated.IsActive {
		t.Fatalf("scalars not applied: %+v", updated)
	}
	if len(updated.Media) != 3 {
		t.Fatalf("gallery must be untouched by update, got %d rows", len(updated.Media))
	}
	if updated.CoverImageID == nil {
		t.Fatal("cover pointer must survive scalar update")
	}
}

func TestUpdateProductValidatesBounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product, err := f.svc.CreateProduct(ctx, f.validInput(t, "bounds-check", 0))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	zero := mustDecimal(t, "0")
	_, err = f.svc.UpdateProduct(ctx, product.ID, UpdateProductInput{Price: &zero})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("zero price must be rejected, got %v", err)
	}

	over := mustDecimal(t, "150")
	_, err = f.svc.UpdateProduct(ctx, product.ID, UpdateProductInput{Discount: &over})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("discount above 100 must be rejected, got %v", err)
	}

	full := mustDecimal(t, "100")
	if _, err := f.svc.UpdateProduct(ctx, product.ID, UpdateProductInput{Discount: &full}); err != nil {
		t.Fatalf("a 100 discount is legal: %v", err)
	}

	blank := "  "
	_, err = f.svc.UpdateProduct(ctx, product.ID, UpdateProductInput{SKU: &blank})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("blank sku must be rejected, got %v", err)
	}

	sku := "SKU-RENUMBERED"
	featured := true
	updated, err := f.svc.UpdateProduct(ctx, product.ID, UpdateProductInput{SKU: &sku, IsFeatured: &featured})
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if updated.SKU != sku || !updated.IsFeatured {
		t.Fatalf("sku/isFeatured not applied: %+v", updated)
	}
}

func TestUpdateProductCountsTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reg := prometheus.NewRegistry()
	svc, err := NewService(f.client, f.repo, f.mediaRepo, metrics.New(reg), nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	product, err := svc.CreateProduct(ctx, f.validInput(t, "metered", 0))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	name := "Metered Lamp"
	if _, err := svc.UpdateProduct(ctx, product.ID, UpdateProductInput{Name: &name}); err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := false
	for _, family := range families {
		if family.GetName() != "product_transaction_success" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetValue() == "update_product" && metric.GetCounter().GetValue() == 1 {
					found = true
				}
			}
		}
	}
	if !found {
		t.Fatal("update_product success was not counted")
	}
}

func TestUpdateProductMissing(t *testing.T) {
	f := newFixture(t)
	name := "x"
	_, err := f.svc.UpdateProduct(context.Background(), uuid.New(), UpdateProductInput{Name: &name})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateProductBadCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product, err := f.svc.CreateProduct(ctx, f.validInput(t, "cat-check", 0))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	ghost := uuid.New()
	_, err = f.svc.UpdateProduct(ctx, product.ID, UpdateProductInput{CategoryID: &ghost})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeReference {
		t.Fatalf("expected reference error, got %v", err)
	}
}

func TestAddProductMediaAppendsAfterMax(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product, err := f.svc.CreateProduct(ctx, f.validInput(t, "append-here", 2))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	extraA := f.seedMedia(t, "extra-a.png")
	extraB := f.seedMedia(t, "extra-b.png")

	inserted, err := f.svc.AddProductMedia(ctx, product.ID, []uuid.UUID{extraA.ID, extraB.ID})
	if err != nil {
		t.Fatalf("AddProductMedia: %v", err)
	}
	if len(inserted) != 2 {
		t.Fatalf("expected 2 inserted rows, got %d", len(inserted))
	}
	if inserted[0].Position != 3 || inserted[1].Position != 4 {
		t.Fatalf("appends must continue after max position: %d, %d", inserted[0].Position, inserted[1].Position)
	}
	if inserted[0].IsPrimary || inserted[1].IsPrimary {
		t.Fatal("appended rows are never primary")
	}
}

func TestAddProductMediaSkipsAttached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	input := f.validInput(t, "skip-dupes", 1)
	product, err := f.svc.CreateProduct(ctx, input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	inserted, err := f.svc.AddProductMedia(ctx, product.ID, []uuid.UUID{input.Gallery[0]})
	if err != nil {
		t.Fatalf("AddProductMedia: %v", err)
	}
	if len(inserted) != 0 {
		t.Fatalf("already-attached media must be skipped, inserted %d", len(inserted))
	}
}

func TestAddProductMediaMissingReference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product, err := f.svc.CreateProduct(ctx, f.validInput(t, "missing-ref", 0))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	before := countRows(t, f, &models.ProductMedia{})
	_, err = f.svc.AddProductMedia(ctx, product.ID, []uuid.UUID{uuid.New()})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeReference {
		t.Fatalf("expected reference error, got %v", err)
	}
	if countRows(t, f, &models.ProductMedia{}) != before {
		t.Fatal("failed attach must not add rows")
	}
}

func TestRemoveProductMedia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	input := f.validInput(t, "detach-me", 1)
	product, err := f.svc.CreateProduct(ctx, input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := f.svc.RemoveProductMedia(ctx, product.ID, input.Gallery[0]); err != nil {
		t.Fatalf("RemoveProductMedia: %v", err)
	}

	reloaded, err := f.svc.Get(ctx, product.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(reloaded.Media) != 1 {
		t.Fatalf("expected only the primary row left, got %d", len(reloaded.Media))
	}
	if reloaded.CoverImageID == nil {
		t.Fatal("removing a gallery row must keep the cover")
	}
}

func TestRemoveProductMediaPrimaryClearsCover(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	input := f.validInput(t, "drop-cover", 1)
	product, err := f.svc.CreateProduct(ctx, input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := f.svc.RemoveProductMedia(ctx, product.ID, input.CoverImage); err != nil {
		t.Fatalf("RemoveProductMedia: %v", err)
	}

	reloaded, err := f.svc.Get(ctx, product.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.CoverImageID != nil {
		t.Fatal("removing the primary row must clear the cover pointer")
	}
}

func TestRemoveProductMediaNotAttached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product, err := f.svc.CreateProduct(ctx, f.validInput(t, "not-attached", 0))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = f.svc.RemoveProductMedia(ctx, product.ID, uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteProductRemovesJoinRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product, err := f.svc.CreateProduct(ctx, f.validInput(t, "delete-me", 2))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := f.svc.DeleteProduct(ctx, product.ID); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	if n := countRows(t, f, &models.Product{}); n != 0 {
		t.Fatalf("product rows left: %d", n)
	}
	if n := countRows(t, f, &models.ProductMedia{}); n != 0 {
		t.Fatalf("join rows left: %d", n)
	}
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.CreateProduct(ctx, f.validInput(t, "blue-lamp", 0)); err != nil {
		t.Fatalf("create: %v", err)
	}
	inactive := f.validInput(t, "red-chair", 0)
	inactive.IsActive = false
	if _, err := f.svc.CreateProduct(ctx, inactive); err != nil {
		t.Fatalf("create: %v", err)
	}

	rows, meta, err := f.svc.List(ctx, ListFilter{Search: "lamp", Page: pagination.Params{}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 1 || rows[0].Slug != "blue-lamp" {
		t.Fatalf("search filter failed: %v", rows)
	}
	if meta.Total != 1 {
		t.Fatalf("meta total = %d", meta.Total)
	}

	active := true
	rows, _, err = f.svc.List(ctx, ListFilter{IsActive: &active, Page: pagination.Params{}})
	if err != nil {
		t.Fatalf("List active: %v", err)
	}
	if len(rows) != 1 || rows[0].Slug != "blue-lamp" {
		t.Fatalf("isActive filter failed: %v", rows)
	}
}

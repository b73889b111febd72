package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a catalog listing managed through the admin panel.
// CoverImageID references a ProductMedia join row, not a Media row, so the
// cover always stays consistent with the gallery.
type Product struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name         string           `gorm:"column:name;not null" json:"name"`
	Slug         string           `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	SKU          string           `gorm:"column:sku;not null" json:"sku"`
	Description  *string          `gorm:"column:description" json:"description,omitempty"`
	Price        decimal.Decimal  `gorm:"column:price;type:decimal(12,2);not null" json:"price"`
	Discount     *decimal.Decimal `gorm:"column:discount;type:decimal(12,2)" json:"discount,omitempty"`
	Stock        int              `gorm:"column:stock;not null;default:0" json:"stock"`
	IsActive     bool             `gorm:"column:is_active;not null;default:true" json:"isActive"`
	IsFeatured   bool             `gorm:"column:is_featured;not null;default:false" json:"isFeatured"`
	CoverImageID *uuid.UUID       `gorm:"column:cover_image_id;type:uuid" json:"coverImageId,omitempty"`
	CategoryID   uuid.UUID        `gorm:"column:category_id;type:uuid;not null" json:"categoryId"`
	CreatedBy    uuid.UUID        `gorm:"column:created_by;type:uuid;not null" json:"createdBy"`
	Category     *ProductCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Media        []ProductMedia   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"media,omitempty"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (p *Product) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductMedia stores ordered gallery entries for products. Position 0 is the
// primary image; at most one row per product may carry IsPrimary.
type ProductMedia struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_product_media_position" json:"productId"`
	MediaID   uuid.UUID `gorm:"column:media_id;type:uuid;not null" json:"mediaId"`
	IsPrimary bool      `gorm:"column:is_primary;not null;default:false" json:"isPrimary"`
	Position  int       `gorm:"column:position;not null;default:0;uniqueIndex:idx_product_media_position" json:"position"`
	Media     *Media    `gorm:"foreignKey:MediaID" json:"media,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (pm *ProductMedia) BeforeCreate(_ *gorm.DB) error {
	if pm.ID == uuid.Nil {
		pm.ID = uuid.New()
	}
	return nil
}

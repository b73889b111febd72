package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductCategory is a self-referential category tree node.
type ProductCategory struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name        string           `gorm:"column:name;not null" json:"name"`
	Slug        string           `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	Description *string          `gorm:"column:description" json:"description,omitempty"`
	ParentID    *uuid.UUID       `gorm:"column:parent_id;type:uuid" json:"parentId,omitempty"`
	Parent      *ProductCategory `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (c *ProductCategory) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Package admin provides a generic CRUD surface over a fixed set of entities.
// The set is enumerated at startup; there is no runtime schema reflection.
package admin

import (
	"github.com/storelane/storelane-backend/pkg/db/models"
)

// FieldInfo describes one editable attribute of an admin entity.
type FieldInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	Mutable  bool   `json:"mutable"`
}

type column struct {
	json     string
	column   string
	typ      string
	required bool
	mutable  bool
}

type descriptor struct {
	name     string
	newModel func() any
	newSlice func() any
	order    string
	columns  []column
}

func (d *descriptor) fields() []FieldInfo {
	out := make([]FieldInfo, 0, len(d.columns))
	for _, c := range d.columns {
		out = append(out, FieldInfo{Name: c.json, Type: c.typ, Required: c.required, Mutable: c.mutable})
	}
	return out
}

func buildRegistry() map[string]*descriptor {
	return map[string]*descriptor{
		"users": {
			name:     "users",
			newModel: func() any { return &models.User{} },
			newSlice: func() any { return &[]models.User{} },
			order:    "created_at DESC",
			columns: []column{
				{json: "id", column: "id", typ: "uuid"},
				{json: "email", column: "email", typ: "string", required: true, mutable: true},
				{json: "name", column: "name", typ: "string", required: true, mutable: true},
				{json: "role", column: "role", typ: "string", mutable: true},
				{json: "isActive", column: "is_active", typ: "boolean", mutable: true},
			},
		},
		"categories": {
			name:     "categories",
			newModel: func() any { return &models.ProductCategory{} },
			newSlice: func() any { return &[]models.ProductCategory{} },
			order:    "name ASC",
			columns: []column{
				{json: "id", column: "id", typ: "uuid"},
				{json: "name", column: "name", typ: "string", required: true, mutable: true},
				{json: "slug", column: "slug", typ: "string", required: true, mutable: true},
				{json: "description", column: "description", typ: "string", mutable: true},
				{json: "parentId", column: "parent_id", typ: "uuid", mutable: true},
			},
		},
		"media": {
			name:     "media",
			newModel: func() any { return &models.Media{} },
			newSlice: func() any { return &[]models.Media{} },
			order:    "created_at DESC",
			columns: []column{
				{json: "id", column: "id", typ: "uuid"},
				{json: "fileName", column: "file_name", typ: "string", required: true},
				{json: "originalName", column: "original_name", typ: "string", required: true},
				{json: "url", column: "url", typ: "string", required: true},
				{json: "mimeType", column: "mime_type", typ: "string", required: true},
				{json: "sizeBytes", column: "size_bytes", typ: "integer", required: true},
				{json: "alt", column: "alt", typ: "string", mutable: true},
				{json: "description", column: "description", typ: "string", mutable: true},
				{json: "folder", column: "folder", typ: "string", mutable: true},
				{json: "status", column: "status", typ: "string", mutable: true},
				{json: "featured", column: "featured", typ: "boolean", mutable: true},
			},
		},
		"products": {
			name:     "products",
			newModel: func() any { return &models.Product{} },
			newSlice: func() any { return &[]models.Product{} },
			order:    "created_at DESC",
			columns: []column{
				{json: "id", column: "id", typ: "uuid"},
				{json: "name", column: "name", typ: "string", required: true, mutable: true},
				{json: "slug", column: "slug", typ: "string", required: true, mutable: true},
				{json: "sku", column: "sku", typ: "string", required: true, mutable: true},
				{json: "description", column: "description", typ: "string", mutable: true},
				{json: "price", column: "price", typ: "decimal", required: true, mutable: true},
				{json: "discount", column: "discount", typ: "decimal", mutable: true},
				{json: "stock", column: "stock", typ: "integer", mutable: true},
				{json: "isActive", column: "is_active", typ: "boolean", mutable: true},
				{json: "isFeatured", column: "is_featured", typ: "boolean", mutable: true},
				{json: "categoryId", column: "category_id", typ: "uuid", required: true, mutable: true},
			},
		},
	}
}

package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/storelane/storelane-backend/pkg/errors"
	"github.com/storelane/storelane-backend/pkg/pagination"
	"github.com/storelane/storelane-backend/pkg/types"
)

// Service exposes list/get/create/update/delete over the registered entities.
type Service interface {
	Entities() []string
	Fields(entity string) ([]FieldInfo, error)
	List(ctx context.Context, entity string, page pagination.Params) (any, *types.PageMeta, error)
	Get(ctx context.Context, entity string, id uuid.UUID) (any, error)
	Create(ctx context.Context, entity string, payload json.RawMessage) (any, error)
	Update(ctx context.Context, entity string, id uuid.UUID, payload json.RawMessage) (any, error)
	Delete(ctx context.Context, entity string, id uuid.UUID) error
}

type service struct {
	db       *gorm.DB
	registry map[string]*descriptor
}

// NewService compiles the entity registry against the shared connection.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db connection required")
	}
	return &service{db: db, registry: buildRegistry()}, nil
}

func (s *service) resolve(entity string) (*descriptor, error) {
	if desc, ok := s.registry[entity]; ok {
		return desc, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown admin entity").
		WithDetails(map[string]any{"entity": entity})
}

func (s *service) Entities() []string {
	names := make([]string, 0, len(s.registry))
	for name := range s.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *service) Fields(entity string) ([]FieldInfo, error) {
	desc, err := s.resolve(entity)
	if err != nil {
		return nil, err
	}
	return desc.fields(), nil
}

func (s *service) List(ctx context.Context, entity string, page pagination.Params) (any, *types.PageMeta, error) {
	desc, err := s.resolve(entity)
	if err != nil {
		return nil, nil, err
	}
	page = page.Normalize()

	var total int64
	if err := s.db.WithContext(ctx).Model(desc.newModel()).Count(&total).Error; err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "counting rows failed")
	}

	rows := desc.newSlice()
	if err := s.db.WithContext(ctx).
		Model(desc.newModel()).
		Order(desc.order).
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(rows).Error; err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing rows failed")
	}
	return rows, page.Meta(total), nil
}

func (s *service) Get(ctx context.Context, entity string, id uuid.UUID) (any, error) {
	desc, err := s.resolve(entity)
	if err != nil {
		return nil, err
	}
	row := desc.newModel()
	if err := s.db.WithContext(ctx).First(row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading record failed")
	}
	return row, nil
}

func (s *service) Create(ctx context.Context, entity string, payload json.RawMessage) (any, error) {
	desc, err := s.resolve(entity)
	if err != nil {
		return nil, err
	}
	row := desc.newModel()
	if err := json.Unmarshal(payload, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payload")
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating record failed")
	}
	return row, nil
}

// Update applies only registered mutable columns; anything else in the
// payload is ignored.
func (s *service) Update(ctx context.Context, entity string, id uuid.UUID, payload json.RawMessage) (any, error) {
	desc, err := s.resolve(entity)
	if err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payload")
	}

	updates := map[string]any{}
	for _, col := range desc.columns {
		value, ok := raw[col.json]
		if !ok || !col.mutable {
			continue
		}
		var decoded any
		if err := json.Unmarshal(value, &decoded); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid field "+col.json)
		}
		updates[col.column] = decoded
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no mutable fields in payload")
	}

	res := s.db.WithContext(ctx).
		Model(desc.newModel()).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "updating record failed")
	}
	if res.RowsAffected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
	}
	return s.Get(ctx, entity, id)
}

func (s *service) Delete(ctx context.Context, entity string, id uuid.UUID) error {
	desc, err := s.resolve(entity)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(desc.newModel())
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "deleting record failed")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
	}
	return nil
}

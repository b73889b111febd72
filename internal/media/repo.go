package media

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storelane/storelane-backend/pkg/db/models"
	"github.com/storelane/storelane-backend/pkg/enums"
	"github.com/storelane/storelane-backend/pkg/pagination"
)

// Repository exposes media record persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a media repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create persists a media record.
func (r *Repository) Create(ctx context.Context, m *models.Media) (*models.Media, error) {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// FindByID retrieves a media record by ID regardless of status.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	var m models.Media
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// FindByIDs returns records for the given ids in input order. Unknown ids are
// skipped, not errors; status is deliberately not filtered so association
// checks can see soft-deleted rows.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Media, error) {
	if len(ids) == 0 {
		return []models.Media{}, nil
	}

	var rows []models.Media
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.Media, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	ordered := make([]models.Media, 0, len(rows))
	for _, id := range ids {
		if row, ok := byID[id]; ok {
			ordered = append(ordered, row)
		}
	}
	return ordered, nil
}

// FindByNameContains searches file names case-insensitively. Soft-deleted
// rows never match unless DELETED is requested explicitly.
func (r *Repository) FindByNameContains(ctx context.Context, q string, status enums.MediaStatus, page pagination.Params) ([]models.Media, int64, error) {
	page = page.Normalize()

	query := r.db.WithContext(ctx).Model(&models.Media{})
	if q != "" {
		query = query.Where("LOWER(file_name) LIKE ?", "%"+lower(q)+"%")
	}
	if status == "" {
		query = query.Where("status = ?", enums.MediaStatusActive)
	} else {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Media
	if err := query.
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// List applies the library filters with pagination.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Media, int64, error) {
	page := filter.Page.Normalize()

	query := r.db.WithContext(ctx).Model(&models.Media{})
	if filter.Search != "" {
		query = query.Where("LOWER(file_name) LIKE ?", "%"+lower(filter.Search)+"%")
	}
	if filter.Folder != "" {
		query = query.Where("folder = ?", filter.Folder)
	}
	if filter.Status == "" {
		query = query.Where("status <> ?", enums.MediaStatusDeleted)
	} else {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.UploadedBy != uuid.Nil {
		query = query.Where("uploaded_by = ?", filter.UploadedBy)
	}
	if filter.Tag != "" {
		query = query.Where("? = ANY(tags)", filter.Tag)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Media
	if err := query.
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// UpdateStatus moves every given id to the target status.
func (r *Repository) UpdateStatus(ctx context.Context, ids []uuid.UUID, status enums.MediaStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.Media{}).
		Where("id IN ?", ids).
		Update("status", status)
	return res.RowsAffected, res.Error
}

// UpdateMetadata applies a partial metadata patch.
func (r *Repository) UpdateMetadata(ctx context.Context, id uuid.UUID, patch MetadataPatch) (*models.Media, error) {
	updates := map[string]any{}
	if patch.Alt != nil {
		updates["alt"] = *patch.Alt
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Tags != nil {
		updates["tags"] = toStringArray(patch.Tags)
	}
	if patch.Folder != nil {
		updates["folder"] = *patch.Folder
	}
	if patch.Featured != nil {
		updates["featured"] = *patch.Featured
	}

	if len(updates) > 0 {
		res := r.db.WithContext(ctx).
			Model(&models.Media{}).
			Where("id = ?", id).
			Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return r.FindByID(ctx, id)
}

// DeleteRow removes the record entirely.
func (r *Repository) DeleteRow(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Media{})
	return res.RowsAffected, res.Error
}

// Folders lists the distinct folders in use.
func (r *Repository) Folders(ctx context.Context) ([]string, error) {
	var folders []string
	err := r.db.WithContext(ctx).
		Model(&models.Media{}).
		Where("folder IS NOT NULL AND folder <> ''").
		Distinct("folder").
		Order("folder").
		Pluck("folder", &folders).Error
	return folders, err
}

// Tags lists the distinct tags across the library. Postgres only.
func (r *Repository) Tags(ctx context.Context) ([]string, error) {
	var tags []string
	err := r.db.WithContext(ctx).
		Raw("SELECT DISTINCT unnest(tags) AS tag FROM media ORDER BY tag").
		Scan(&tags).Error
	return tags, err
}

// Stats aggregates counts and byte totals.
func (r *Repository) Stats(ctx context.Context, uploadedBy uuid.UUID) (*Stats, error) {
	query := r.db.WithContext(ctx).Model(&models.Media{})
	if uploadedBy != uuid.Nil {
		query = query.Where("uploaded_by = ?", uploadedBy)
	}

	type statusRow struct {
		Status string
		Count  int64
		Size   int64
	}
	var rows []statusRow
	if err := query.
		Select("status, COUNT(*) AS count, COALESCE(SUM(size_bytes), 0) AS size").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	stats := &Stats{ByStatus: map[string]int64{}}
	for _, row := range rows {
		stats.TotalCount += row.Count
		stats.TotalSizeBytes += row.Size
		stats.ByStatus[row.Status] = row.Count
	}
	return stats, nil
}

// Featured returns the most recent active records carrying the featured flag.
func (r *Repository) Featured(ctx context.Context, limit int) ([]models.Media, error) {
	limit = pagination.NormalizeLimit(limit)
	var rows []models.Media
	err := r.db.WithContext(ctx).
		Where("featured = ?", true).
		Where("status = ?", enums.MediaStatusActive).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

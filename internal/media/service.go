package media

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/storelane/storelane-backend/pkg/db/models"
	"github.com/storelane/storelane-backend/pkg/enums"
	pkgerrors "github.com/storelane/storelane-backend/pkg/errors"
	"github.com/storelane/storelane-backend/pkg/imagemeta"
	"github.com/storelane/storelane-backend/pkg/logger"
	"github.com/storelane/storelane-backend/pkg/metrics"
	"github.com/storelane/storelane-backend/pkg/pagination"
	"github.com/storelane/storelane-backend/pkg/types"
)

type repository interface {
	Create(ctx context.Context, m *models.Media) (*models.Media, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Media, error)
	FindByNameContains(ctx context.Context, q string, status enums.MediaStatus, page pagination.Params) ([]models.Media, int64, error)
	List(ctx context.Context, filter ListFilter) ([]models.Media, int64, error)
	UpdateStatus(ctx context.Context, ids []uuid.UUID, status enums.MediaStatus) (int64, error)
	UpdateMetadata(ctx context.Context, id uuid.UUID, patch MetadataPatch) (*models.Media, error)
	DeleteRow(ctx context.Context, id uuid.UUID) (int64, error)
	Folders(ctx context.Context) ([]string, error)
	Tags(ctx context.Context) ([]string, error)
	Stats(ctx context.Context, uploadedBy uuid.UUID) (*Stats, error)
	Featured(ctx context.Context, limit int) ([]models.Media, error)
}

type storageBackend interface {
	Write(ctx context.Context, fileName string, data []byte) error
	Delete(ctx context.Context, fileName string) error
	PublicURL(fileName string) string
}

// Service exposes the media upload pipeline and record store.
type Service interface {
	Upload(ctx context.Context, input UploadInput) (*models.Media, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Media, error)
	Search(ctx context.Context, q string, status enums.MediaStatus, page pagination.Params) ([]models.Media, *types.PageMeta, error)
	List(ctx context.Context, filter ListFilter) ([]models.Media, *types.PageMeta, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Media, error)
	UpdateMetadata(ctx context.Context, id uuid.UUID, patch MetadataPatch) (*models.Media, error)
	BulkUpdateStatus(ctx context.Context, ids []uuid.UUID, status enums.MediaStatus) error
	Archive(ctx context.Context, ids []uuid.UUID) error
	SoftDelete(ctx context.Context, ids []uuid.UUID) error
	Purge(ctx context.Context, id uuid.UUID) error
	Folders(ctx context.Context) ([]string, error)
	Tags(ctx context.Context) ([]string, error)
	Stats(ctx context.Context, uploadedBy uuid.UUID) (*Stats, error)
	Featured(ctx context.Context, limit int) ([]models.Media, error)
}

type service struct {
	repo           repository
	storage        storageBackend
	metrics        *metrics.Metrics
	logg           *logger.Logger
	maxUploadBytes int64
}

// NewService constructs a media service backed by the provided repository and
// storage backend.
func NewService(repo repository, storage storageBackend, m *metrics.Metrics, logg *logger.Logger, maxUploadBytes int64) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("media repository required")
	}
	if storage == nil {
		return nil, fmt.Errorf("storage backend required")
	}
	if maxUploadBytes <= 0 {
		return nil, fmt.Errorf("max upload bytes must be positive")
	}
	return &service{
		repo:           repo,
		storage:        storage,
		metrics:        m,
		logg:           logg,
		maxUploadBytes: maxUploadBytes,
	}, nil
}

// Upload validates the payload, durably stores the bytes, then records the
// metadata row. A failed disk write leaves no record; a failed insert can
// leave an orphan file, which is tolerated.
func (s *service) Upload(ctx context.Context, input UploadInput) (*models.Media, error) {
	start := time.Now()
	row, err := s.upload(ctx, input)
	s.metrics.ObserveUpload(input.MimeType, time.Since(start), err, failureReason(err))
	return row, err
}

func (s *service) upload(ctx context.Context, input UploadInput) (*models.Media, error) {
	name := strings.TrimSpace(input.DeclaredName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file name is required")
	}
	mimeType := strings.TrimSpace(input.MimeType)
	if mimeType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mime type is required")
	}
	if input.UploadedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "uploader identity missing")
	}
	if len(input.Bytes) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "upload is empty")
	}
	if int64(len(input.Bytes)) > s.maxUploadBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("upload exceeds %d bytes", s.maxUploadBytes))
	}

	// Integrity gate: declared size must match the received bytes exactly,
	// before anything touches disk or the database.
	if input.DeclaredSize != int64(len(input.Bytes)) {
		return nil, pkgerrors.New(pkgerrors.CodeIntegrity, "declared size does not match received bytes").
			WithDetails(map[string]any{"declared": input.DeclaredSize, "received": len(input.Bytes)})
	}

	fileName := generateFileName(name)

	if err := s.storage.Write(ctx, fileName, input.Bytes); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "storing upload failed")
	}

	row := &models.Media{
		ID:           uuid.New(),
		FileName:     fileName,
		OriginalName: name,
		URL:          s.storage.PublicURL(fileName),
		MimeType:     mimeType,
		SizeBytes:    int64(len(input.Bytes)),
		Tags:         toStringArray(input.Meta.Tags),
		Status:       enums.MediaStatusActive,
		UploadedBy:   input.UploadedBy,
	}
	if alt := strings.TrimSpace(input.Meta.Alt); alt != "" {
		row.Alt = &alt
	}
	if desc := strings.TrimSpace(input.Meta.Description); desc != "" {
		row.Description = &desc
	}
	if folder := strings.TrimSpace(input.Meta.Folder); folder != "" {
		row.Folder = &folder
	}

	// Best-effort dimension probe; undecodable image bytes are not an error.
	if imagemeta.IsImageMime(mimeType) {
		if dims, ok := imagemeta.Probe(input.Bytes); ok {
			row.Width = &dims.Width
			row.Height = &dims.Height
		} else if s.logg != nil {
			s.logg.Warn(ctx, "image dimensions unreadable for "+fileName)
		}
	}

	if _, err := s.repo.Create(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting media record failed")
	}
	return row, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "media id is required")
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading media failed")
	}
	return row, nil
}

func (s *service) Search(ctx context.Context, q string, status enums.MediaStatus, page pagination.Params) ([]models.Media, *types.PageMeta, error) {
	if status != "" && !status.IsValid() {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid media status")
	}
	rows, total, err := s.repo.FindByNameContains(ctx, strings.TrimSpace(q), status, page)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "searching media failed")
	}
	return rows, page.Meta(total), nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]models.Media, *types.PageMeta, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid media status")
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing media failed")
	}
	return rows, filter.Page.Meta(total), nil
}

func (s *service) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Media, error) {
	rows, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading media batch failed")
	}
	return rows, nil
}

func (s *service) UpdateMetadata(ctx context.Context, id uuid.UUID, patch MetadataPatch) (*models.Media, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "media id is required")
	}
	row, err := s.repo.UpdateMetadata(ctx, id, patch)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating media metadata failed")
	}
	return row, nil
}

func (s *service) BulkUpdateStatus(ctx context.Context, ids []uuid.UUID, status enums.MediaStatus) error {
	if len(ids) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one media id is required")
	}
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid media status")
	}
	if _, err := s.repo.UpdateStatus(ctx, ids, status); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bulk status update failed")
	}
	return nil
}

func (s *service) Archive(ctx context.Context, ids []uuid.UUID) error {
	return s.BulkUpdateStatus(ctx, ids, enums.MediaStatusArchived)
}

func (s *service) SoftDelete(ctx context.Context, ids []uuid.UUID) error {
	return s.BulkUpdateStatus(ctx, ids, enums.MediaStatusDeleted)
}

// Purge removes the row permanently and makes a best-effort attempt to remove
// the stored file.
func (s *service) Purge(ctx context.Context, id uuid.UUID) error {
	row, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	affected, err := s.repo.DeleteRow(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "purging media failed")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
	}

	if err := s.storage.Delete(ctx, row.FileName); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "stored file left behind for "+row.FileName)
	}
	return nil
}

func (s *service) Folders(ctx context.Context) ([]string, error) {
	folders, err := s.repo.Folders(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing folders failed")
	}
	return folders, nil
}

func (s *service) Tags(ctx context.Context) ([]string, error) {
	tags, err := s.repo.Tags(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing tags failed")
	}
	return tags, nil
}

func (s *service) Stats(ctx context.Context, uploadedBy uuid.UUID) (*Stats, error) {
	stats, err := s.repo.Stats(ctx, uploadedBy)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "computing media stats failed")
	}
	return stats, nil
}

func (s *service) Featured(ctx context.Context, limit int) ([]models.Media, error) {
	rows, err := s.repo.Featured(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading featured media failed")
	}
	return rows, nil
}

// generateFileName produces a storage-unique name: the sanitized base, a uuid
// fragment, and the original extension.
func generateFileName(declared string) string {
	ext := strings.ToLower(path.Ext(declared))
	base := sanitizeBaseName(strings.TrimSuffix(declared, path.Ext(declared)))
	if base == "" {
		base = "file"
	}
	fragment := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return base + "-" + fragment + ext
}

func sanitizeBaseName(name string) string {
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen && b.Len() > 0:
			b.WriteRune('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}

func failureReason(err error) string {
	if err == nil {
		return ""
	}
	if typed := pkgerrors.As(err); typed != nil {
		return strings.ToLower(string(typed.Code()))
	}
	return "unknown"
}

func lower(s string) string {
	return strings.ToLower(s)
}

func toStringArray(values []string) pq.StringArray {
	out := make(pq.StringArray, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

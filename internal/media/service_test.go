package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/storelane/storelane-backend/pkg/db/models"
	"github.com/storelane/storelane-backend/pkg/enums"
	pkgerrors "github.com/storelane/storelane-backend/pkg/errors"
	"github.com/storelane/storelane-backend/pkg/pagination"
)

type stubRepo struct {
	created   []*models.Media
	createErr error
	rows      map[uuid.UUID]*models.Media
	deleted   []uuid.UUID
}

func newStubRepo() *stubRepo {
	return &stubRepo{rows: map[uuid.UUID]*models.Media{}}
}

func (s *stubRepo) Create(_ context.Context, m *models.Media) (*models.Media, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, m)
	s.rows[m.ID] = m
	return m, nil
}

func (s *stubRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Media, error) {
	if row, ok := s.rows[id]; ok {
		return row, nil
	}
	return nil, errors.New("record not found")
}

func (s *stubRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.Media, error) {
	out := []models.Media{}
	for _, id := range ids {
		if row, ok := s.rows[id]; ok {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (s *stubRepo) FindByNameContains(_ context.Context, _ string, _ enums.MediaStatus, _ pagination.Params) ([]models.Media, int64, error) {
	return nil, 0, nil
}

func (s *stubRepo) List(_ context.Context, _ ListFilter) ([]models.Media, int64, error) {
	return nil, 0, nil
}

func (s *stubRepo) UpdateStatus(_ context.Context, _ []uuid.UUID, _ enums.MediaStatus) (int64, error) {
	return 0, nil
}

func (s *stubRepo) UpdateMetadata(_ context.Context, _ uuid.UUID, _ MetadataPatch) (*models.Media, error) {
	return nil, nil
}

func (s *stubRepo) DeleteRow(_ context.Context, id uuid.UUID) (int64, error) {
	if _, ok := s.rows[id]; !ok {
		return 0, nil
	}
	delete(s.rows, id)
	s.deleted = append(s.deleted, id)
	return 1, nil
}

func (s *stubRepo) Folders(_ context.Context) ([]string, error) { return nil, nil }
func (s *stubRepo) Tags(_ context.Context) ([]string, error)    { return nil, nil }
func (s *stubRepo) Stats(_ context.Context, _ uuid.UUID) (*Stats, error) {
	return &Stats{}, nil
}
func (s *stubRepo) Featured(_ context.Context, _ int) ([]models.Media, error) { return nil, nil }

type stubStorage struct {
	writes   map[string][]byte
	writeErr error
	deletes  []string
}

func newStubStorage() *stubStorage {
	return &stubStorage{writes: map[string][]byte{}}
}

func (s *stubStorage) Write(_ context.Context, fileName string, data []byte) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.writes[fileName] = data
	return nil
}

func (s *stubStorage) Delete(_ context.Context, fileName string) error {
	s.deletes = append(s.deletes, fileName)
	return nil
}

func (s *stubStorage) PublicURL(fileName string) string {
	return "https://cdn.example/uploads/" + fileName
}

func newTestService(t *testing.T, repo *stubRepo, storage *stubStorage) Service {
	t.Helper()
	svc, err := NewService(repo, storage, nil, nil, 20*1024*1024)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func validInput(t *testing.T) UploadInput {
	data := pngBytes(t, 8, 4)
	return UploadInput{
		Bytes:        data,
		DeclaredName: "Product Photo.PNG",
		DeclaredSize: int64(len(data)),
		MimeType:     "image/png",
		UploadedBy:   uuid.New(),
	}
}

func TestUploadHappyPath(t *testing.T) {
	repo := newStubRepo()
	storage := newStubStorage()
	svc := newTestService(t, repo, storage)

	row, err := svc.Upload(context.Background(), validInput(t))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if row.Status != enums.MediaStatusActive {
		t.Fatalf("status = %s", row.Status)
	}
	if !strings.HasPrefix(row.FileName, "product-photo-") || !strings.HasSuffix(row.FileName, ".png") {
		t.Fatalf("unexpected file name %q", row.FileName)
	}
	if row.OriginalName != "Product Photo.PNG" {
		t.Fatalf("declared name must be preserved, got %q", row.OriginalName)
	}
	if row.URL != "https://cdn.example/uploads/"+row.FileName {
		t.Fatalf("unexpected url %q", row.URL)
	}
	if row.Width == nil || *row.Width != 8 || row.Height == nil || *row.Height != 4 {
		t.Fatalf("dimensions not probed: %+v", row)
	}
	if len(storage.writes) != 1 {
		t.Fatalf("expected one stored file, got %d", len(storage.writes))
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one record, got %d", len(repo.created))
	}
}

func TestUploadSizeMismatchWritesNothing(t *testing.T) {
	repo := newStubRepo()
	storage := newStubStorage()
	svc := newTestService(t, repo, storage)

	input := validInput(t)
	input.DeclaredSize = input.DeclaredSize + 1

	_, err := svc.Upload(context.Background(), input)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeIntegrity {
		t.Fatalf("expected integrity error, got %v", err)
	}
	if len(storage.writes) != 0 {
		t.Fatal("no bytes may be written on size mismatch")
	}
	if len(repo.created) != 0 {
		t.Fatal("no record may exist on size mismatch")
	}
}

func TestUploadStorageFailureLeavesNoRecord(t *testing.T) {
	repo := newStubRepo()
	storage := newStubStorage()
	storage.writeErr = errors.New("disk full")
	svc := newTestService(t, repo, storage)

	_, err := svc.Upload(context.Background(), validInput(t))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStorage {
		t.Fatalf("expected storage error, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatal("storage failure must not produce a record")
	}
}

func TestUploadInsertFailureToleratesOrphanFile(t *testing.T) {
	repo := newStubRepo()
	repo.createErr = errors.New("db down")
	storage := newStubStorage()
	svc := newTestService(t, repo, storage)

	_, err := svc.Upload(context.Background(), validInput(t))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if len(storage.writes) != 1 {
		t.Fatal("file should have been written before the failed insert")
	}
}

func TestUploadNonImageSkipsProbe(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, newStubStorage())

	data := []byte("%PDF-1.7 ...")
	row, err := svc.Upload(context.Background(), UploadInput{
		Bytes:        data,
		DeclaredName: "manual.pdf",
		DeclaredSize: int64(len(data)),
		MimeType:     "application/pdf",
		UploadedBy:   uuid.New(),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if row.Width != nil || row.Height != nil {
		t.Fatalf("non-image must not carry dimensions: %+v", row)
	}
}

func TestUploadUndecodableImageStillSucceeds(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, newStubStorage())

	data := []byte("not really a png")
	row, err := svc.Upload(context.Background(), UploadInput{
		Bytes:        data,
		DeclaredName: "broken.png",
		DeclaredSize: int64(len(data)),
		MimeType:     "image/png",
		UploadedBy:   uuid.New(),
	})
	if err != nil {
		t.Fatalf("probe failure must not fail the upload: %v", err)
	}
	if row.Width != nil || row.Height != nil {
		t.Fatalf("unexpected dimensions on undecodable image: %+v", row)
	}
}

func TestUploadValidation(t *testing.T) {
	svc := newTestService(t, newStubRepo(), newStubStorage())
	ctx := context.Background()

	base := validInput(t)

	missingName := base
	missingName.DeclaredName = "  "
	missingMime := base
	missingMime.MimeType = ""
	missingUploader := base
	missingUploader.UploadedBy = uuid.Nil
	empty := base
	empty.Bytes = nil
	empty.DeclaredSize = 0

	for name, input := range map[string]UploadInput{
		"name":     missingName,
		"mime":     missingMime,
		"uploader": missingUploader,
		"empty":    empty,
	} {
		_, err := svc.Upload(ctx, input)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestUploadFileNamesAreUnique(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, newStubStorage())
	ctx := context.Background()

	first, err := svc.Upload(ctx, validInput(t))
	if err != nil {
		t.Fatalf("first upload: %v", err)
	}
	second, err := svc.Upload(ctx, validInput(t))
	if err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if first.FileName == second.FileName {
		t.Fatalf("same declared name must yield distinct stored names, both %q", first.FileName)
	}
}

func TestPurgeRemovesRowAndFile(t *testing.T) {
	repo := newStubRepo()
	storage := newStubStorage()
	svc := newTestService(t, repo, storage)
	ctx := context.Background()

	row, err := svc.Upload(ctx, validInput(t))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := svc.Purge(ctx, row.ID); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if len(repo.deleted) != 1 {
		t.Fatal("row should be removed")
	}
	if len(storage.deletes) != 1 || storage.deletes[0] != row.FileName {
		t.Fatalf("stored file should be removed, got %v", storage.deletes)
	}
}

func TestBulkUpdateStatusValidation(t *testing.T) {
	svc := newTestService(t, newStubRepo(), newStubStorage())
	ctx := context.Background()

	if err := svc.BulkUpdateStatus(ctx, nil, enums.MediaStatusArchived); err == nil {
		t.Fatal("expected validation error for empty ids")
	}
	if err := svc.BulkUpdateStatus(ctx, []uuid.UUID{uuid.New()}, enums.MediaStatus("BOGUS")); err == nil {
		t.Fatal("expected validation error for bad status")
	}
}

func TestGenerateFileName(t *testing.T) {
	got := generateFileName("My Fancy Photo!.JPG")
	if !strings.HasPrefix(got, "my-fancy-photo-") || !strings.HasSuffix(got, ".jpg") {
		t.Fatalf("unexpected name %q", got)
	}

	got = generateFileName("???.png")
	if !strings.HasPrefix(got, "file-") {
		t.Fatalf("all-symbol base should fall back, got %q", got)
	}
}

package disk

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/storelane/storelane-backend/pkg/config"
	"github.com/storelane/storelane-backend/pkg/logger"
)

// uploadsPrefix is the public path segment under which stored files are served.
const uploadsPrefix = "/uploads/"

// Backend persists upload bytes and resolves their public URLs.
type Backend interface {
	Write(ctx context.Context, fileName string, data []byte) error
	Delete(ctx context.Context, fileName string) error
	PublicURL(fileName string) string
	Exists(fileName string) bool
}

// Store writes uploads to a local directory and serves them under the
// configured public base URL.
type Store struct {
	baseDir       string
	publicBaseURL string
	logg          *logger.Logger
}

// New ensures the upload directory exists and returns a disk store.
func New(cfg config.StorageConfig, logg *logger.Logger) (*Store, error) {
	if cfg.UploadDir == "" {
		return nil, errors.New("upload dir is required")
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &Store{
		baseDir:       cfg.UploadDir,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		logg:          logg,
	}, nil
}

// Write durably stores data under fileName. The bytes land in a temp file
// first and are renamed into place, so readers never see partial writes.
func (s *Store) Write(ctx context.Context, fileName string, data []byte) error {
	clean, err := s.resolve(fileName)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.baseDir, ".upload-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing upload bytes: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing upload: %w", err)
	}

	if err := os.Rename(tmpName, clean); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("placing upload: %w", err)
	}

	if s.logg != nil {
		s.logg.Info(ctx, "stored upload "+fileName)
	}
	return nil
}

// Delete removes the stored file; a missing file is not an error.
func (s *Store) Delete(ctx context.Context, fileName string) error {
	clean, err := s.resolve(fileName)
	if err != nil {
		return err
	}
	if err := os.Remove(clean); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing upload: %w", err)
	}
	return nil
}

// PublicURL builds the retrievable address for a stored file.
func (s *Store) PublicURL(fileName string) string {
	return s.publicBaseURL + uploadsPrefix + fileName
}

// Exists reports whether the file is present on disk.
func (s *Store) Exists(fileName string) bool {
	clean, err := s.resolve(fileName)
	if err != nil {
		return false
	}
	_, statErr := os.Stat(clean)
	return statErr == nil
}

// Dir returns the base directory, used to mount the static file server.
func (s *Store) Dir() string {
	return s.baseDir
}

// resolve rejects names that would escape the upload directory.
func (s *Store) resolve(fileName string) (string, error) {
	if fileName == "" {
		return "", errors.New("file name is required")
	}
	if strings.Contains(fileName, "/") || strings.Contains(fileName, "\\") || fileName == "." || fileName == ".." {
		return "", fmt.Errorf("invalid file name %q", fileName)
	}
	return filepath.Join(s.baseDir, fileName), nil
}

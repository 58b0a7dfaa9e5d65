// Package imagestore manages the uploaded image blobs on disk. Each stored
// blob is owned by exactly one analysis record, the record's deletion drives
// the blob's removal.
package imagestore

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tsuchida/bunrui-go/internal/conf"
	"github.com/tsuchida/bunrui-go/internal/errors"
	"github.com/tsuchida/bunrui-go/internal/logging"
)

// Store persists uploaded images under a date-partitioned directory tree,
// uploads/YYYY/MM/DD/<uuid><ext>.
type Store struct {
	basePath string
	logger   *slog.Logger
}

// New creates a Store rooted at the configured upload path. The directory
// is created if it does not exist.
func New(settings *conf.UploadConfig) (*Store, error) {
	basePath := conf.GetBasePath(settings.Path)

	info, err := os.Stat(basePath)
	if err != nil {
		return nil, errors.New(err).
			Component("imagestore").
			Category(errors.CategoryFileIO).
			Context("operation", "stat_base_path").
			Build()
	}
	if !info.IsDir() {
		return nil, errors.Newf("upload path %s is not a directory", basePath).
			Component("imagestore").
			Category(errors.CategoryConfiguration).
			Build()
	}

	logger := logging.ForService("imagestore")
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{basePath: basePath, logger: logger}, nil
}

// BasePath returns the absolute root of the blob storage area.
func (s *Store) BasePath() string {
	return s.basePath
}

// Save writes the uploaded bytes to a new date-partitioned blob and returns
// its path relative to the store root. The original filename only
// contributes its extension, the stored name is a random UUID.
func (s *Store) Save(r io.Reader, originalFilename string) (string, error) {
	now := time.Now()
	relDir := path.Join(now.Format("2006"), now.Format("01"), now.Format("02"))

	absDir := filepath.Join(s.basePath, filepath.FromSlash(relDir))
	if err := os.MkdirAll(absDir, 0o750); err != nil {
		return "", errors.New(err).
			Component("imagestore").
			Category(errors.CategoryFileIO).
			Context("operation", "create_partition_dir").
			Build()
	}

	ext := strings.ToLower(filepath.Ext(originalFilename))
	relPath := path.Join(relDir, uuid.New().String()+ext)
	absPath := filepath.Join(s.basePath, filepath.FromSlash(relPath))

	out, err := os.OpenFile(absPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640) //nolint:gosec // G304: path is store-generated
	if err != nil {
		return "", errors.New(err).
			Component("imagestore").
			Category(errors.CategoryFileIO).
			Context("operation", "create_blob").
			Build()
	}

	written, err := io.Copy(out, r)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		// Do not leave a partial blob behind
		if removeErr := os.Remove(absPath); removeErr != nil {
			s.logger.Warn("failed to remove partial blob", "path", relPath, "error", removeErr)
		}
		return "", errors.New(err).
			Component("imagestore").
			Category(errors.CategoryFileIO).
			Context("operation", "write_blob").
			Context("bytes_written", written).
			Build()
	}

	s.logger.Debug("stored image blob", "path", relPath, "bytes", written)
	return relPath, nil
}

// Remove deletes a stored blob. A blob that is already gone is not an
// error, the desired state is reached either way.
func (s *Store) Remove(relPath string) error {
	absPath, err := s.AbsolutePath(relPath)
	if err != nil {
		return err
	}

	if err := os.Remove(absPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.New(err).
			Component("imagestore").
			Category(errors.CategoryFileIO).
			Context("operation", "remove_blob").
			Build()
	}
	return nil
}

// AbsolutePath resolves a relative blob path against the store root with a
// containment check, rejecting any path that would escape the storage area.
func (s *Store) AbsolutePath(relPath string) (string, error) {
	if relPath == "" {
		return "", errors.Newf("empty blob path").
			Component("imagestore").
			Category(errors.CategoryValidation).
			Build()
	}

	cleaned := filepath.Clean(filepath.FromSlash(relPath))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", errors.Newf("blob path escapes storage area").
			Component("imagestore").
			Category(errors.CategoryValidation).
			Context("operation", "containment_check").
			Build()
	}

	absPath := filepath.Join(s.basePath, cleaned)
	if !strings.HasPrefix(absPath, s.basePath+string(filepath.Separator)) {
		return "", errors.Newf("blob path escapes storage area").
			Component("imagestore").
			Category(errors.CategoryValidation).
			Context("operation", "containment_check").
			Build()
	}

	return absPath, nil
}

// Exists reports whether a stored blob is present on disk.
func (s *Store) Exists(relPath string) bool {
	absPath, err := s.AbsolutePath(relPath)
	if err != nil {
		return false
	}
	_, err = os.Stat(absPath)
	return err == nil
}

// URLPath returns the public URL path for a stored blob.
func (s *Store) URLPath(relPath string) string {
	return fmt.Sprintf("/media/uploads/%s", path.Clean(filepath.ToSlash(relPath)))
}

package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/ISTE-SCTCE/Admin/internal/common"
	"github.com/ISTE-SCTCE/Admin/internal/logging"
	"github.com/ISTE-SCTCE/Admin/internal/server/auth"
	"github.com/ISTE-SCTCE/Admin/internal/server/blob"
	"github.com/ISTE-SCTCE/Admin/internal/server/metrics"
	"github.com/ISTE-SCTCE/Admin/internal/server/models"
	"github.com/ISTE-SCTCE/Admin/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const (
	defaultUploader = "Admin"
	defaultMimeType = "application/octet-stream"
	publicPrefix    = "/uploads/"
)

// Upload describes an incoming file.
type Upload struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

// FileService stores uploaded files in a blob.Store and their metadata in
// the files collection.
type FileService struct {
	repomanager repomanager.RepositoryManager
	blobs       blob.Store
	metrics     *metrics.Metrics
	logger      logging.Logger
	newKey      func(ext string) string
}

func NewFileService(m repomanager.RepositoryManager, blobs blob.Store, met *metrics.Metrics, logger logging.Logger) *FileService {
	return &FileService{
		repomanager: m,
		blobs:       blobs,
		metrics:     met,
		logger:      logger.With("module", "files"),
		newKey:      func(ext string) string { return uuid.NewString() + ext },
	}
}

func (s *FileService) List(ctx context.Context) ([]models.File, error) {
	files, err := s.repomanager.Files().FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing files: %w", err)
	}
	return files, nil
}

// Upload stores the blob under a fresh key that keeps the original
// extension, then records its metadata. The uploader is the caller's name.
func (s *FileService) Upload(ctx context.Context, caller *auth.Identity, up Upload) (*models.File, error) {
	original := path.Base(filepath.ToSlash(strings.TrimSpace(up.Name)))
	if original == "" || original == "." || original == "/" || up.Body == nil {
		return nil, fmt.Errorf("%w: no file uploaded", common.ErrValidation)
	}

	contentType := up.ContentType
	if contentType == "" {
		contentType = defaultMimeType
	}

	key := s.newKey(strings.ToLower(path.Ext(original)))
	if err := s.blobs.Put(ctx, key, up.Body, up.Size, contentType); err != nil {
		return nil, fmt.Errorf("error storing file: %w", err)
	}

	uploader := defaultUploader
	if caller != nil && strings.TrimSpace(caller.Name) != "" {
		uploader = caller.Name
	}

	f, err := s.repomanager.Files().Create(ctx, &models.File{
		Filename:     key,
		OriginalName: original,
		FileSize:     up.Size,
		MimeType:     contentType,
		UploadedBy:   uploader,
		FilePath:     publicPrefix + key,
	})
	if err != nil {
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			s.logger.Warn(ctx, "orphaned blob", "key", key, "error", delErr)
		}
		return nil, fmt.Errorf("error saving file metadata: %w", err)
	}

	s.metrics.Uploaded(up.Size)
	s.logger.Info(ctx, "file uploaded", "file_id", f.ID, "key", key, "size", up.Size)
	return f, nil
}

// Delete removes the file's metadata. A blob that cannot be removed is logged
// and left behind.
func (s *FileService) Delete(ctx context.Context, id int64) error {
	repo := s.repomanager.Files()

	f, err := repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, f.Filename); err != nil {
		level := s.logger.Error
		if errors.Is(err, common.ErrorNotFound) {
			level = s.logger.Warn
		}
		level(ctx, "error deleting blob", "file_id", id, "key", f.Filename, "error", err)
	}

	if err := repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting file metadata: %w", err)
	}
	return nil
}

// Open returns the metadata of file id and where its contents can be read.
func (s *FileService) Open(ctx context.Context, id int64) (*models.File, blob.Location, error) {
	f, err := s.repomanager.Files().FindByID(ctx, id)
	if err != nil {
		return nil, blob.Location{}, err
	}

	loc, err := s.blobs.Locate(ctx, f.Filename)
	if err != nil {
		return nil, blob.Location{}, fmt.Errorf("error locating file: %w", err)
	}
	return f, loc, nil
}

package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/deniz/stajlink/internal/app/models"
	"github.com/deniz/stajlink/internal/pkg/apperrors"
	"github.com/deniz/stajlink/internal/pkg/logger"
)

// MaxFileSize is the upload limit: 50 MiB
const MaxFileSize = 50 << 20

// PDFMimeType is the only accepted upload content type
const PDFMimeType = "application/pdf"

// LocalStorage persists uploaded files on the local filesystem.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new LocalStorage rooted at basePath.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{basePath: basePath}, nil
}

// EntityPath derives the canonical storage subdirectory for an entity.
// It is a pure function of the whitelisted resource type and the numeric
// entity id; user-supplied filenames never reach the path.
func EntityPath(resourceType models.ResourceType, resourceID int64) string {
	return filepath.Join(strings.ToLower(string(resourceType)), fmt.Sprintf("%d", resourceID))
}

// ValidateUpload checks the declared content type and size limits of an upload.
func ValidateUpload(fileHeader *multipart.FileHeader) error {
	if fileHeader == nil {
		return apperrors.NewValidationError("file", "file is required")
	}
	if ct := fileHeader.Header.Get("Content-Type"); ct != PDFMimeType {
		return apperrors.NewCustomError(apperrors.ErrInvalidMimeType,
			fmt.Sprintf("expected %s, got %q", PDFMimeType, ct))
	}
	if fileHeader.Size > MaxFileSize {
		return apperrors.NewCustomError(apperrors.ErrFileTooLarge,
			fmt.Sprintf("file is %d bytes, limit is %d", fileHeader.Size, int64(MaxFileSize)))
	}
	return nil
}

// Store validates the upload and writes it under the entity's canonical
// directory with a random filename. The caller decides when the previous
// file, if any, may be removed; Store never touches existing files.
func (ls *LocalStorage) Store(fileHeader *multipart.FileHeader, resourceType models.ResourceType, resourceID int64) (*StoredFile, error) {
	if !resourceType.IsValid() {
		return nil, fmt.Errorf("unknown resource type %q", resourceType)
	}
	if err := ValidateUpload(fileHeader); err != nil {
		return nil, err
	}

	src, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return nil, apperrors.NewCustomError(apperrors.ErrStorageFailure, "failed to open uploaded file")
	}
	defer src.Close()

	subDir := EntityPath(resourceType, resourceID)
	fullDir := filepath.Join(ls.basePath, subDir)
	if err := os.MkdirAll(fullDir, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", fullDir).Msg("Failed to create storage subdirectory")
		return nil, apperrors.NewCustomError(apperrors.ErrStorageFailure, "failed to create storage subdirectory")
	}

	relPath := filepath.Join(subDir, uuid.New().String()+".pdf")
	dstPath := filepath.Join(ls.basePath, relPath)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return nil, apperrors.NewCustomError(apperrors.ErrStorageFailure, "failed to create destination file")
	}
	defer dst.Close()

	written, err := io.Copy(dst, src)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return nil, apperrors.NewCustomError(apperrors.ErrStorageFailure, "failed to save file content")
	}
	if err := dst.Sync(); err != nil {
		_ = os.Remove(dstPath)
		return nil, apperrors.NewCustomError(apperrors.ErrStorageFailure, "failed to sync file content")
	}

	logger.Info().
		Str("filename", fileHeader.Filename).
		Str("path", relPath).
		Int64("size", written).
		Msg("File stored")

	return &StoredFile{
		Path:     relPath,
		Filename: fileHeader.Filename,
		FileSize: written,
		MimeType: PDFMimeType,
	}, nil
}

// Open returns a reader over a stored file. The path is resolved against the
// storage root and refused if it escapes it.
func (ls *LocalStorage) Open(relPath string) (io.ReadSeekCloser, error) {
	full, err := ls.resolve(relPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.ErrFileNotFound
		}
		logger.Error().Err(err).Str("path", full).Msg("Failed to open stored file")
		return nil, apperrors.NewCustomError(apperrors.ErrStorageFailure, "failed to open stored file")
	}
	return f, nil
}

// Remove deletes a stored file. Missing files are treated as already removed.
func (ls *LocalStorage) Remove(relPath string) error {
	if relPath == "" {
		return nil
	}
	full, err := ls.resolve(relPath)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", full).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", full).Msg("Failed to delete file")
		return apperrors.NewCustomError(apperrors.ErrStorageFailure, "failed to delete file")
	}

	logger.Info().Str("path", full).Msg("File deleted")
	return nil
}

// resolve joins relPath onto the storage root and rejects traversal.
func (ls *LocalStorage) resolve(relPath string) (string, error) {
	cleaned := filepath.Clean(relPath)
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid file path: %s", relPath)
	}
	return filepath.Join(ls.basePath, cleaned), nil
}

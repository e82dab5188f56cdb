package filestorage

import (
	"io"
	"mime/multipart"

	"github.com/deniz/stajlink/internal/app/models"
)

// StoredFile describes a file after it has been durably written to storage
type StoredFile struct {
	Path     string // Relative storage path, canonical, never client derived
	Filename string // Original client filename, kept for display only
	FileSize int64  // Size in bytes
	MimeType string // Declared MIME type, validated before storing
}

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// Store validates and persists an uploaded file under the canonical
	// directory for the owning entity, returning its stored metadata
	Store(fileHeader *multipart.FileHeader, resourceType models.ResourceType, resourceID int64) (*StoredFile, error)

	// Open returns a reader for a stored file path
	Open(relPath string) (io.ReadSeekCloser, error)

	// Remove deletes a stored file; removing a missing file is not an error
	Remove(relPath string) error
}

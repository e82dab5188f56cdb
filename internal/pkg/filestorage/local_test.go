package filestorage

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deniz/stajlink/internal/app/models"
	"github.com/deniz/stajlink/internal/pkg/apperrors"
)

// pdfUpload builds a real multipart file header the way gin hands it to the
// controllers
func pdfUpload(t *testing.T, name, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, name))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func TestLocalStorage_StoreAndOpen(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	content := []byte("%PDF-1.4 test bytes")
	upload := pdfUpload(t, "defter.pdf", PDFMimeType, content)

	stored, err := storage.Store(upload, models.ResourceLogbookPDF, 42)
	require.NoError(t, err)
	assert.Equal(t, "defter.pdf", stored.Filename)
	assert.Equal(t, int64(len(content)), stored.FileSize)
	assert.Equal(t, PDFMimeType, stored.MimeType)
	assert.True(t, strings.HasPrefix(stored.Path, EntityPath(models.ResourceLogbookPDF, 42)))
	assert.True(t, strings.HasSuffix(stored.Path, ".pdf"))

	rc, err := storage.Open(stored.Path)
	require.NoError(t, err)
	defer rc.Close()
	read, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, read)
}

func TestLocalStorage_StoreNeverTouchesPreviousFiles(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	first, err := storage.Store(pdfUpload(t, "v1.pdf", PDFMimeType, []byte("one")), models.ResourceLogbookPDF, 1)
	require.NoError(t, err)
	second, err := storage.Store(pdfUpload(t, "v2.pdf", PDFMimeType, []byte("two")), models.ResourceLogbookPDF, 1)
	require.NoError(t, err)

	assert.NotEqual(t, first.Path, second.Path)
	rc, err := storage.Open(first.Path)
	require.NoError(t, err)
	rc.Close()
}

func TestLocalStorage_Remove(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	stored, err := storage.Store(pdfUpload(t, "defter.pdf", PDFMimeType, []byte("x")), models.ResourceLogbookPDF, 1)
	require.NoError(t, err)

	require.NoError(t, storage.Remove(stored.Path))
	_, err = storage.Open(stored.Path)
	assert.ErrorIs(t, err, apperrors.ErrFileNotFound)

	// Removing again, or removing nothing, is fine
	assert.NoError(t, storage.Remove(stored.Path))
	assert.NoError(t, storage.Remove(""))
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = storage.Open("../etc/passwd")
	assert.Error(t, err)
	_, err = storage.Open("/etc/passwd")
	assert.Error(t, err)
	assert.Error(t, storage.Remove("../somewhere"))
}

func TestLocalStorage_RejectsUnknownResourceType(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = storage.Store(pdfUpload(t, "defter.pdf", PDFMimeType, []byte("x")), models.ResourceType("SELFIE"), 1)
	assert.Error(t, err)
}

func TestValidateUpload(t *testing.T) {
	assert.ErrorIs(t, ValidateUpload(nil), apperrors.ErrValidationFailed)

	wrongType := pdfUpload(t, "resim.png", "image/png", []byte("x"))
	assert.ErrorIs(t, ValidateUpload(wrongType), apperrors.ErrInvalidMimeType)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Type", PDFMimeType)
	tooBig := &multipart.FileHeader{Filename: "defter.pdf", Size: MaxFileSize + 1, Header: header}
	assert.ErrorIs(t, ValidateUpload(tooBig), apperrors.ErrFileTooLarge)

	ok := pdfUpload(t, "defter.pdf", PDFMimeType, []byte("x"))
	assert.NoError(t, ValidateUpload(ok))
}

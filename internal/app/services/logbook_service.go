package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/rs/zerolog"

	"github.com/deniz/stajlink/internal/app/models"
	"github.com/deniz/stajlink/internal/app/models/dto"
	"github.com/deniz/stajlink/internal/pkg/apperrors"
	"github.com/deniz/stajlink/internal/pkg/filestorage"
)

// logbookStore is the part of LogbookRepository the service needs
type logbookStore interface {
	GetByID(ctx context.Context, id int64) (*models.Logbook, error)
	GetByBasvuruID(ctx context.Context, basvuruID int64) (*models.Logbook, error)
	AttachFile(ctx context.Context, logbookID int64, stored models.File) (string, error)
	DetachFile(ctx context.Context, logbookID int64) (string, error)
	UpdateStatus(ctx context.Context, id int64, from, to models.LogbookStatus) (bool, error)
	ForceStatus(ctx context.Context, id int64, newStatus models.LogbookStatus, actorID int64) (*models.LogbookAuditEntry, error)
	ListAudit(ctx context.Context, logbookID int64) ([]models.LogbookAuditEntry, error)
}

// fileStore is the part of FileRepository the service needs
type fileStore interface {
	GetByResource(ctx context.Context, resourceType models.ResourceType, resourceID int64) (*models.File, error)
	ReplaceForResource(ctx context.Context, file *models.File) (*models.File, string, error)
}

// applicationReader is the read-only application access the service needs
type applicationReader interface {
	GetByID(ctx context.Context, id int64) (*models.Application, error)
}

// LogbookService handles staj defteri operations and application documents
type LogbookService struct {
	logbooks     logbookStore
	files        fileStore
	applications applicationReader
	storage      filestorage.FileStorage
	logger       zerolog.Logger
}

// NewLogbookService creates a new LogbookService
func NewLogbookService(logbooks logbookStore, files fileStore, applications applicationReader, storage filestorage.FileStorage, logger zerolog.Logger) *LogbookService {
	return &LogbookService{
		logbooks:     logbooks,
		files:        files,
		applications: applications,
		storage:      storage,
		logger:       logger,
	}
}

// GetByID retrieves a single logbook
func (s *LogbookService) GetByID(ctx context.Context, id int64) (*dto.LogbookResponse, error) {
	lb, err := s.logbooks.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get logbook: %w", err)
	}
	if lb == nil {
		return nil, apperrors.ErrLogbookNotFound
	}
	resp := dto.ToLogbookResponse(lb)
	return &resp, nil
}

// GetByBasvuruID retrieves the logbook belonging to an application
func (s *LogbookService) GetByBasvuruID(ctx context.Context, basvuruID int64) (*dto.LogbookResponse, error) {
	lb, err := s.logbooks.GetByBasvuruID(ctx, basvuruID)
	if err != nil {
		return nil, fmt.Errorf("failed to get logbook: %w", err)
	}
	if lb == nil {
		return nil, apperrors.ErrLogbookNotFound
	}
	resp := dto.ToLogbookResponse(lb)
	return &resp, nil
}

// UploadPDF stores a new logbook PDF and attaches it. The new bytes are
// written before the database row is repointed, and the previous file is
// unlinked only after the swap committed, so a crash at any point leaves the
// row referencing bytes that exist.
func (s *LogbookService) UploadPDF(ctx context.Context, logbookID, studentID int64, fileHeader *multipart.FileHeader) (*dto.LogbookResponse, error) {
	lb, err := s.logbooks.GetByID(ctx, logbookID)
	if err != nil {
		return nil, fmt.Errorf("failed to get logbook: %w", err)
	}
	if lb == nil {
		return nil, apperrors.ErrLogbookNotFound
	}
	if lb.Application == nil || lb.Application.StudentID != studentID {
		return nil, apperrors.ErrPermissionDenied
	}
	if lb.Application.Status != models.ApplicationApproved {
		return nil, apperrors.NewConflictError(fmt.Sprintf("application is %s, uploads are closed", lb.Application.Status))
	}
	if lb.Status == models.LogbookApproved {
		return nil, apperrors.NewConflictError("logbook is already approved")
	}

	stored, err := s.storage.Store(fileHeader, models.ResourceLogbookPDF, logbookID)
	if err != nil {
		return nil, err
	}

	oldPath, err := s.logbooks.AttachFile(ctx, logbookID, models.File{
		FileName:   stored.Filename,
		FilePath:   stored.Path,
		FileSize:   stored.FileSize,
		MimeType:   stored.MimeType,
		UploadedBy: &studentID,
	})
	if err != nil {
		if rmErr := s.storage.Remove(stored.Path); rmErr != nil {
			s.logger.Warn().Err(rmErr).Str("path", stored.Path).Msg("Could not clean up orphaned upload")
		}
		return nil, err
	}

	if oldPath != "" {
		if err := s.storage.Remove(oldPath); err != nil {
			s.logger.Warn().Err(err).Str("path", oldPath).Msg("Could not remove replaced logbook file")
		}
	}

	s.logger.Info().Int64("logbookID", logbookID).Int64("studentID", studentID).Msg("Logbook PDF uploaded")
	return s.GetByID(ctx, logbookID)
}

// OpenPDF returns a reader over the logbook's current PDF together with its
// metadata. The caller closes the reader.
func (s *LogbookService) OpenPDF(ctx context.Context, logbookID int64) (io.ReadSeekCloser, *models.File, error) {
	lb, err := s.logbooks.GetByID(ctx, logbookID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get logbook: %w", err)
	}
	if lb == nil {
		return nil, nil, apperrors.ErrLogbookNotFound
	}
	if lb.File == nil {
		return nil, nil, apperrors.ErrLogbookNoFile
	}

	rc, err := s.storage.Open(lb.File.FilePath)
	if err != nil {
		return nil, nil, err
	}
	return rc, lb.File, nil
}

// DeletePDF removes the student's uploaded PDF and reverts the logbook to
// WAITING. Refused once the logbook is approved.
func (s *LogbookService) DeletePDF(ctx context.Context, logbookID, studentID int64) error {
	lb, err := s.logbooks.GetByID(ctx, logbookID)
	if err != nil {
		return fmt.Errorf("failed to get logbook: %w", err)
	}
	if lb == nil {
		return apperrors.ErrLogbookNotFound
	}
	if lb.Application == nil || lb.Application.StudentID != studentID {
		return apperrors.ErrPermissionDenied
	}

	oldPath, err := s.logbooks.DetachFile(ctx, logbookID)
	if err != nil {
		return err
	}
	if err := s.storage.Remove(oldPath); err != nil {
		s.logger.Warn().Err(err).Str("path", oldPath).Msg("Could not remove detached logbook file")
	}

	s.logger.Info().Int64("logbookID", logbookID).Int64("studentID", studentID).Msg("Logbook PDF deleted")
	return nil
}

// Decide records a company's approve or reject decision on an uploaded
// logbook. A rejection sends the logbook back to WAITING; the file is kept so
// the student can revise and replace it.
func (s *LogbookService) Decide(ctx context.Context, companyID int64, req *dto.LogbookDecisionRequest) (*dto.LogbookResponse, error) {
	lb, err := s.logbooks.GetByID(ctx, req.DefterID)
	if err != nil {
		return nil, fmt.Errorf("failed to get logbook: %w", err)
	}
	if lb == nil {
		return nil, apperrors.ErrLogbookNotFound
	}
	if lb.Application == nil || lb.Application.CompanyID != companyID {
		return nil, apperrors.ErrPermissionDenied
	}

	target := models.LogbookWaiting
	if req.Approve {
		target = models.LogbookApproved
	}

	ok, err := s.logbooks.UpdateStatus(ctx, req.DefterID, models.LogbookUploaded, target)
	if err != nil {
		return nil, fmt.Errorf("failed to update logbook status: %w", err)
	}
	if !ok {
		return nil, apperrors.NewConflictError("logbook is not in UPLOADED state")
	}

	s.logger.Info().
		Int64("logbookID", req.DefterID).
		Int64("companyID", companyID).
		Bool("approved", req.Approve).
		Msg("Logbook decision recorded")
	return s.GetByID(ctx, req.DefterID)
}

// ForceStatus is the admin override of a logbook's state. Every use is
// written to the audit log.
func (s *LogbookService) ForceStatus(ctx context.Context, logbookID, actorID int64, req *dto.UpdateLogbookStatusRequest) (*dto.LogbookResponse, error) {
	newStatus := models.LogbookStatus(req.Status)
	if !newStatus.IsValid() {
		return nil, apperrors.NewValidationError("status", "unknown logbook status")
	}

	entry, err := s.logbooks.ForceStatus(ctx, logbookID, newStatus, actorID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("logbookID", logbookID).
		Int64("actorID", actorID).
		Str("from", string(entry.OldStatus)).
		Str("to", string(entry.NewStatus)).
		Msg("Logbook status overridden")
	return s.GetByID(ctx, logbookID)
}

// ListAudit returns the override history of a logbook
func (s *LogbookService) ListAudit(ctx context.Context, logbookID int64) ([]models.LogbookAuditEntry, error) {
	lb, err := s.logbooks.GetByID(ctx, logbookID)
	if err != nil {
		return nil, fmt.Errorf("failed to get logbook: %w", err)
	}
	if lb == nil {
		return nil, apperrors.ErrLogbookNotFound
	}
	return s.logbooks.ListAudit(ctx, logbookID)
}

// UploadDocument stores a supporting document (transcript, insurance or
// service record) for an application, replacing any previous upload of the
// same type.
func (s *LogbookService) UploadDocument(ctx context.Context, basvuruID int64, resourceType models.ResourceType, studentID int64, fileHeader *multipart.FileHeader) (*dto.FileResponse, error) {
	if resourceType == models.ResourceLogbookPDF {
		return nil, apperrors.NewBadRequestError("logbook PDFs are uploaded through the logbook endpoints")
	}

	app, err := s.applications.GetByID(ctx, basvuruID)
	if err != nil {
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	if app == nil {
		return nil, apperrors.ErrApplicationNotFound
	}
	if app.StudentID != studentID {
		return nil, apperrors.ErrPermissionDenied
	}

	stored, err := s.storage.Store(fileHeader, resourceType, basvuruID)
	if err != nil {
		return nil, err
	}

	created, oldPath, err := s.files.ReplaceForResource(ctx, &models.File{
		FileName:     stored.Filename,
		FilePath:     stored.Path,
		FileSize:     stored.FileSize,
		MimeType:     stored.MimeType,
		ResourceType: resourceType,
		ResourceID:   basvuruID,
		UploadedBy:   &studentID,
	})
	if err != nil {
		if rmErr := s.storage.Remove(stored.Path); rmErr != nil {
			s.logger.Warn().Err(rmErr).Str("path", stored.Path).Msg("Could not clean up orphaned upload")
		}
		return nil, err
	}
	if oldPath != "" {
		if err := s.storage.Remove(oldPath); err != nil {
			s.logger.Warn().Err(err).Str("path", oldPath).Msg("Could not remove replaced document")
		}
	}

	s.logger.Info().
		Int64("applicationID", basvuruID).
		Str("resourceType", string(resourceType)).
		Msg("Application document uploaded")

	return &dto.FileResponse{
		ID:        created.ID,
		FileName:  created.FileName,
		FileSize:  created.FileSize,
		MimeType:  created.MimeType,
		CreatedAt: created.CreatedAt,
	}, nil
}

// OpenDocument returns a reader over an application's supporting document
func (s *LogbookService) OpenDocument(ctx context.Context, basvuruID int64, resourceType models.ResourceType) (io.ReadSeekCloser, *models.File, error) {
	file, err := s.files.GetByResource(ctx, resourceType, basvuruID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get document: %w", err)
	}
	if file == nil {
		return nil, nil, apperrors.ErrFileNotFound
	}

	rc, err := s.storage.Open(file.FilePath)
	if err != nil {
		return nil, nil, err
	}
	return rc, file, nil
}

package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/deniz/stajlink/internal/app/models"
	"github.com/deniz/stajlink/internal/app/models/dto"
	"github.com/deniz/stajlink/internal/pkg/apperrors"
	"github.com/deniz/stajlink/internal/pkg/auth"
	"github.com/deniz/stajlink/internal/pkg/helpers"
	"github.com/deniz/stajlink/internal/pkg/metrics"
	"github.com/deniz/stajlink/internal/pkg/validation"
)

// importStore is the part of ImportRepository the service needs
type importStore interface {
	CreateJob(ctx context.Context, jobType models.ImportJobType, fileName string, createdBy int64) (*models.ImportJob, error)
	GetJob(ctx context.Context, id int64) (*models.ImportJob, error)
	ListJobs(ctx context.Context, offset uint64, limit int) ([]models.ImportJob, int64, error)
	UpdateProgress(ctx context.Context, id int64, total, succeeded, failed int) error
	Finish(ctx context.Context, id int64, status models.ImportJobStatus) (bool, error)
	Cancel(ctx context.Context, id int64) (bool, error)
	IsCancelled(ctx context.Context, id int64) (bool, error)
	AddRow(ctx context.Context, jobID int64, rowNumber int, success bool, message string) error
	ListRows(ctx context.Context, jobID int64) ([]models.ImportJobRow, error)
}

// importUserCreator creates the accounts an import produces
type importUserCreator interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
}

// importWorkerTimeout bounds one background import run
const importWorkerTimeout = 10 * time.Minute

// ImportService handles bulk account imports from spreadsheet files
type ImportService struct {
	jobs   importStore
	users  importUserCreator
	logger zerolog.Logger
}

// NewImportService creates a new ImportService
func NewImportService(jobs importStore, users importUserCreator, logger zerolog.Logger) *ImportService {
	return &ImportService{
		jobs:   jobs,
		users:  users,
		logger: logger,
	}
}

// importRow is one parsed spreadsheet line
type importRow struct {
	number    int
	email     string
	firstName string
	lastName  string
	studentNo string
}

// StartImport parses the uploaded spreadsheet, records a job and processes
// the rows in the background. The returned job is in PROCESSING state; the
// caller polls it for progress.
func (s *ImportService) StartImport(ctx context.Context, jobType models.ImportJobType, fileHeader *multipart.FileHeader, adminID int64) (*dto.ImportJobResponse, error) {
	if !jobType.IsValid() {
		return nil, apperrors.NewValidationError("jobType", "unknown import type")
	}
	if fileHeader == nil {
		return nil, apperrors.NewValidationError("file", "file is required")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, apperrors.NewBadRequestError("could not open uploaded file")
	}
	defer src.Close()

	rows, err := parseSpreadsheet(src, jobType)
	if err != nil {
		return nil, err
	}

	job, err := s.jobs.CreateJob(ctx, jobType, fileHeader.Filename, adminID)
	if err != nil {
		return nil, fmt.Errorf("failed to create import job: %w", err)
	}

	go s.process(job.ID, jobType, rows)

	s.logger.Info().
		Int64("jobID", job.ID).
		Str("jobType", string(jobType)).
		Int("rows", len(rows)).
		Msg("Import started")

	resp := dto.ToImportJobResponse(job)
	resp.TotalRows = len(rows)
	return &resp, nil
}

// process runs outside the request; it owns its own context
func (s *ImportService) process(jobID int64, jobType models.ImportJobType, rows []importRow) {
	ctx, cancel := context.WithTimeout(context.Background(), importWorkerTimeout)
	defer cancel()

	succeeded, failed := 0, 0
	for i, row := range rows {
		if i%10 == 0 {
			cancelled, err := s.jobs.IsCancelled(ctx, jobID)
			if err != nil {
				s.logger.Error().Err(err).Int64("jobID", jobID).Msg("Could not check import cancellation")
			} else if cancelled {
				s.logger.Info().Int64("jobID", jobID).Msg("Import cancelled, stopping")
				return
			}
			if err := s.jobs.UpdateProgress(ctx, jobID, len(rows), succeeded, failed); err != nil {
				s.logger.Error().Err(err).Int64("jobID", jobID).Msg("Could not update import progress")
			}
		}

		if err := s.importOne(ctx, jobType, row); err != nil {
			failed++
			metrics.ObserveImportRow("failed")
			s.recordRow(ctx, jobID, row.number, false, err.Error())
		} else {
			succeeded++
			metrics.ObserveImportRow("ok")
			s.recordRow(ctx, jobID, row.number, true, "")
		}
	}

	if err := s.jobs.UpdateProgress(ctx, jobID, len(rows), succeeded, failed); err != nil {
		s.logger.Error().Err(err).Int64("jobID", jobID).Msg("Could not update final import progress")
	}

	status := models.ImportCompleted
	if len(rows) > 0 && succeeded == 0 {
		status = models.ImportFailed
	}
	if _, err := s.jobs.Finish(ctx, jobID, status); err != nil {
		s.logger.Error().Err(err).Int64("jobID", jobID).Msg("Could not finish import job")
		return
	}

	s.logger.Info().
		Int64("jobID", jobID).
		Int("succeeded", succeeded).
		Int("failed", failed).
		Msg("Import finished")
}

func (s *ImportService) recordRow(ctx context.Context, jobID int64, rowNumber int, success bool, message string) {
	if err := s.jobs.AddRow(ctx, jobID, rowNumber, success, message); err != nil {
		s.logger.Error().Err(err).Int64("jobID", jobID).Int("row", rowNumber).Msg("Could not record import row result")
	}
}

// importOne creates the account for one row. Imported accounts get a random
// password; users go through the password reset flow before first login.
func (s *ImportService) importOne(ctx context.Context, jobType models.ImportJobType, row importRow) error {
	email := strings.ToLower(strings.TrimSpace(row.email))
	if !validation.IsValidEmail(email) {
		return fmt.Errorf("invalid email %q", row.email)
	}
	if strings.TrimSpace(row.firstName) == "" || strings.TrimSpace(row.lastName) == "" {
		return fmt.Errorf("first and last name are required")
	}

	roleType := models.RoleAdvisor
	var studentNo *string
	if jobType == models.ImportStudents || jobType == models.ImportDualMajorStudents {
		roleType = models.RoleStudent
		if !validation.IsValidStudentNo(row.studentNo) {
			return fmt.Errorf("invalid student number %q", row.studentNo)
		}
		no := row.studentNo
		studentNo = &no
	}

	hashedPassword, err := auth.HashPassword(uuid.New().String())
	if err != nil {
		return fmt.Errorf("could not hash password: %w", err)
	}

	if _, err := s.users.Create(ctx, &models.User{
		Email:     email,
		Password:  hashedPassword,
		FirstName: strings.TrimSpace(row.firstName),
		LastName:  strings.TrimSpace(row.lastName),
		RoleType:  roleType,
		StudentNo: studentNo,
		IsActive:  true,
	}); err != nil {
		return err
	}
	return nil
}

// parseSpreadsheet reads the first sheet. Advisor files carry
// email/first/last columns; student files add the student number. The first
// row is treated as a header.
func parseSpreadsheet(src multipart.File, jobType models.ImportJobType) ([]importRow, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, apperrors.NewBadRequestError("file is not a readable spreadsheet")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewBadRequestError("spreadsheet has no sheets")
	}

	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.NewBadRequestError("could not read spreadsheet rows")
	}
	if len(raw) < 2 {
		return nil, apperrors.NewBadRequestError("spreadsheet has no data rows")
	}

	needStudentNo := jobType == models.ImportStudents || jobType == models.ImportDualMajorStudents

	rows := make([]importRow, 0, len(raw)-1)
	for i, cells := range raw[1:] {
		row := importRow{number: i + 2}
		if len(cells) > 0 {
			row.email = cells[0]
		}
		if len(cells) > 1 {
			row.firstName = cells[1]
		}
		if len(cells) > 2 {
			row.lastName = cells[2]
		}
		if needStudentNo && len(cells) > 3 {
			row.studentNo = cells[3]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// GetJob retrieves a job and its progress
func (s *ImportService) GetJob(ctx context.Context, id int64) (*dto.ImportJobResponse, error) {
	job, err := s.jobs.GetJob(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get import job: %w", err)
	}
	if job == nil {
		return nil, apperrors.ErrImportJobNotFound
	}
	resp := dto.ToImportJobResponse(job)
	return &resp, nil
}

// GetJobDetail retrieves a job together with its per-row results
func (s *ImportService) GetJobDetail(ctx context.Context, id int64) (*dto.ImportJobDetailResponse, error) {
	job, err := s.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.jobs.ListRows(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list import rows: %w", err)
	}

	items := make([]dto.ImportJobRowResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, dto.ImportJobRowResponse{
			RowNumber: row.RowNumber,
			Success:   row.Success,
			Message:   row.Message,
		})
	}

	return &dto.ImportJobDetailResponse{Job: *job, Rows: items}, nil
}

// ListJobs returns a page of import jobs, newest first
func (s *ImportService) ListJobs(ctx context.Context, page, size int) ([]dto.ImportJobResponse, dto.PaginationInfo, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	jobs, total, err := s.jobs.ListJobs(ctx, offset, limit)
	if err != nil {
		return nil, dto.PaginationInfo{}, fmt.Errorf("failed to list import jobs: %w", err)
	}

	items := make([]dto.ImportJobResponse, 0, len(jobs))
	for i := range jobs {
		items = append(items, dto.ToImportJobResponse(&jobs[i]))
	}
	return items, helpers.NewPaginationInfo(total, page, size), nil
}

// CancelJob stops a running import. Rows already imported stay.
func (s *ImportService) CancelJob(ctx context.Context, id int64) error {
	job, err := s.jobs.GetJob(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get import job: %w", err)
	}
	if job == nil {
		return apperrors.ErrImportJobNotFound
	}

	ok, err := s.jobs.Cancel(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to cancel import job: %w", err)
	}
	if !ok {
		return apperrors.NewConflictError(fmt.Sprintf("import job is %s, only a processing job can be cancelled", job.Status))
	}

	s.logger.Info().Int64("jobID", id).Msg("Import job cancelled")
	return nil
}

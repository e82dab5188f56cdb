package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/deniz/stajlink/internal/app/models"
	"github.com/deniz/stajlink/internal/app/models/dto"
	"github.com/deniz/stajlink/internal/pkg/apperrors"
	"github.com/deniz/stajlink/internal/pkg/email"
	"github.com/deniz/stajlink/internal/pkg/filestorage"
	"github.com/deniz/stajlink/internal/pkg/helpers"
	"github.com/deniz/stajlink/internal/pkg/validation"
)

// applicationStore is the part of ApplicationRepository the service needs
type applicationStore interface {
	Create(ctx context.Context, app *models.Application) (*models.Application, error)
	GetByID(ctx context.Context, id int64) (*models.Application, error)
	List(ctx context.Context, studentID, companyID int64, status string, offset uint64, limit int) ([]models.Application, int64, error)
	HasOverlapping(ctx context.Context, studentID int64, start, end time.Time, excludeID int64) (bool, error)
	UpdateStatus(ctx context.Context, id int64, from, to models.ApplicationStatus, rejectionReason *string) (bool, error)
	ApproveAndCreateLogbook(ctx context.Context, id int64) (bool, error)
	CancelApproved(ctx context.Context, id int64) (bool, error)
	UpdateDates(ctx context.Context, id int64, start, end time.Time) (bool, error)
	Delete(ctx context.Context, id int64) ([]string, bool, error)
}

// companyStore is the part of CompanyRepository the service needs
type companyStore interface {
	GetByID(ctx context.Context, id int64) (*models.Company, error)
	GetByTaxNo(ctx context.Context, taxNo string) (*models.Company, error)
	GetOrCreate(ctx context.Context, company *models.Company) (*models.Company, error)
}

// studentGate confirms the caller holds the student role before an
// application is filed on their behalf
type studentGate interface {
	ValidateStudent(ctx context.Context, userID int64) error
}

// ApplicationService handles staj başvurusu operations
type ApplicationService struct {
	applications applicationStore
	companies    companyStore
	students     studentGate
	storage      filestorage.FileStorage
	emailService email.EmailService
	logger       zerolog.Logger
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(applications applicationStore, companies companyStore, students studentGate, storage filestorage.FileStorage, emailService email.EmailService, logger zerolog.Logger) *ApplicationService {
	return &ApplicationService{
		applications: applications,
		companies:    companies,
		students:     students,
		storage:      storage,
		emailService: emailService,
		logger:       logger,
	}
}

// Create files a new application for the student. The target company is
// created on first contact and matched by tax number afterwards. Only
// student accounts may file applications.
func (s *ApplicationService) Create(ctx context.Context, studentID int64, req *dto.CreateApplicationRequest) (*dto.ApplicationResponse, error) {
	if err := s.students.ValidateStudent(ctx, studentID); err != nil {
		return nil, err
	}
	if !validation.IsValidTaxNo(req.CompanyTaxNo) {
		return nil, apperrors.NewValidationError("companyTaxNo", "tax number must be 10 digits")
	}
	if !validation.IsValidEmail(strings.ToLower(req.CompanyEmail)) {
		return nil, apperrors.NewValidationError("companyEmail", "invalid email format")
	}

	start, end, ok := validation.ParseDateRange(req.StartDate, req.EndDate)
	if !ok {
		return nil, apperrors.ErrInvalidDateRange
	}

	overlaps, err := s.applications.HasOverlapping(ctx, studentID, start, end, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check overlapping applications: %w", err)
	}
	if overlaps {
		return nil, apperrors.ErrApplicationOverlap
	}

	company, err := s.companies.GetOrCreate(ctx, &models.Company{
		Name:    strings.TrimSpace(req.CompanyName),
		TaxNo:   req.CompanyTaxNo,
		Email:   strings.ToLower(strings.TrimSpace(req.CompanyEmail)),
		Phone:   req.CompanyPhone,
		Address: req.CompanyAddress,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve company: %w", err)
	}

	created, err := s.applications.Create(ctx, &models.Application{
		StudentID:   studentID,
		CompanyID:   company.ID,
		Position:    strings.TrimSpace(req.Position),
		Description: req.Description,
		StartDate:   start,
		EndDate:     end,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	s.logger.Info().
		Int64("applicationID", created.ID).
		Int64("studentID", studentID).
		Int64("companyID", company.ID).
		Msg("Application created")

	created.Company = company
	resp := dto.ToApplicationResponse(created)
	return &resp, nil
}

// GetByID retrieves a single application
func (s *ApplicationService) GetByID(ctx context.Context, id int64) (*dto.ApplicationResponse, error) {
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	if app == nil {
		return nil, apperrors.ErrApplicationNotFound
	}
	resp := dto.ToApplicationResponse(app)
	return &resp, nil
}

// List returns a page of applications matching the filter
func (s *ApplicationService) List(ctx context.Context, filter dto.ApplicationFilter) (*dto.ApplicationListResponse, error) {
	if filter.Status != "" && !models.ApplicationStatus(filter.Status).IsValid() {
		return nil, apperrors.NewValidationError("status", "unknown application status")
	}

	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.PageSize)
	apps, total, err := s.applications.List(ctx, filter.StudentID, filter.CompanyID, filter.Status, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	items := make([]dto.ApplicationResponse, 0, len(apps))
	for i := range apps {
		items = append(items, dto.ToApplicationResponse(&apps[i]))
	}

	return &dto.ApplicationListResponse{
		Applications: items,
		Pagination:   helpers.NewPaginationInfo(total, filter.Page, filter.PageSize),
	}, nil
}

// UpdateDates changes the internship period of a still pending application
func (s *ApplicationService) UpdateDates(ctx context.Context, id, studentID int64, req *dto.UpdateApplicationDatesRequest) (*dto.ApplicationResponse, error) {
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	if app == nil {
		return nil, apperrors.ErrApplicationNotFound
	}
	if app.StudentID != studentID {
		return nil, apperrors.ErrPermissionDenied
	}
	if app.Status != models.ApplicationPending {
		return nil, apperrors.NewConflictError(fmt.Sprintf("application is %s, dates can only change while PENDING", app.Status))
	}

	start, end, ok := validation.ParseDateRange(req.StartDate, req.EndDate)
	if !ok {
		return nil, apperrors.ErrInvalidDateRange
	}

	overlaps, err := s.applications.HasOverlapping(ctx, studentID, start, end, id)
	if err != nil {
		return nil, fmt.Errorf("failed to check overlapping applications: %w", err)
	}
	if overlaps {
		return nil, apperrors.ErrApplicationOverlap
	}

	updated, err := s.applications.UpdateDates(ctx, id, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to update application dates: %w", err)
	}
	if !updated {
		return nil, apperrors.NewConflictError("application is no longer pending")
	}

	return s.GetByID(ctx, id)
}

// Cancel withdraws an application. A pending one can always be withdrawn by
// its owner; an approved one only while the logbook is still waiting for its
// first upload.
func (s *ApplicationService) Cancel(ctx context.Context, id, studentID int64) error {
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get application: %w", err)
	}
	if app == nil {
		return apperrors.ErrApplicationNotFound
	}
	if app.StudentID != studentID {
		return apperrors.ErrPermissionDenied
	}

	switch app.Status {
	case models.ApplicationPending:
		ok, err := s.applications.UpdateStatus(ctx, id, models.ApplicationPending, models.ApplicationCancelled, nil)
		if err != nil {
			return fmt.Errorf("failed to cancel application: %w", err)
		}
		if !ok {
			return apperrors.NewConflictError("application is no longer pending")
		}
	case models.ApplicationApproved:
		ok, err := s.applications.CancelApproved(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to cancel approved application: %w", err)
		}
		if !ok {
			return apperrors.NewConflictError("internship already started, logbook is past WAITING")
		}
	default:
		return apperrors.NewConflictError(fmt.Sprintf("application is %s and cannot be cancelled", app.Status))
	}

	s.logger.Info().Int64("applicationID", id).Int64("studentID", studentID).Msg("Application cancelled")
	return nil
}

// Delete removes an application outright together with its logbook, audit
// and file rows. Admin operation; the stored PDFs are unlinked after the
// rows are gone.
func (s *ApplicationService) Delete(ctx context.Context, id int64) error {
	paths, found, err := s.applications.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}
	if !found {
		return apperrors.ErrApplicationNotFound
	}

	for _, path := range paths {
		if err := s.storage.Remove(path); err != nil {
			s.logger.Warn().Err(err).Str("path", path).Msg("Could not remove file of deleted application")
		}
	}

	s.logger.Info().Int64("applicationID", id).Msg("Application deleted")
	return nil
}

// Decide records a company's approve or reject decision on a pending
// application. Approval also opens the logbook; only one concurrent decision
// can win.
func (s *ApplicationService) Decide(ctx context.Context, companyID int64, req *dto.ApplicationDecisionRequest) (*dto.ApplicationResponse, error) {
	app, err := s.applications.GetByID(ctx, req.BasvuruID)
	if err != nil {
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	if app == nil {
		return nil, apperrors.ErrApplicationNotFound
	}
	if app.CompanyID != companyID {
		return nil, apperrors.ErrPermissionDenied
	}

	if req.Approve {
		ok, err := s.applications.ApproveAndCreateLogbook(ctx, req.BasvuruID)
		if err != nil {
			return nil, fmt.Errorf("failed to approve application: %w", err)
		}
		if !ok {
			return nil, apperrors.NewConflictError("application is not pending, decision already made")
		}
	} else {
		reason := ""
		if req.Reason != nil {
			reason = strings.TrimSpace(*req.Reason)
		}
		if reason == "" {
			return nil, apperrors.ErrReasonRequired
		}
		ok, err := s.applications.UpdateStatus(ctx, req.BasvuruID, models.ApplicationPending, models.ApplicationRejected, &reason)
		if err != nil {
			return nil, fmt.Errorf("failed to reject application: %w", err)
		}
		if !ok {
			return nil, apperrors.NewConflictError("application is not pending, decision already made")
		}
	}

	s.logger.Info().
		Int64("applicationID", req.BasvuruID).
		Int64("companyID", companyID).
		Bool("approved", req.Approve).
		Msg("Application decision recorded")

	s.notifyDecision(app, req)

	return s.GetByID(ctx, req.BasvuruID)
}

// notifyDecision emails the student about the outcome, best effort
func (s *ApplicationService) notifyDecision(app *models.Application, req *dto.ApplicationDecisionRequest) {
	if app.Student == nil || app.Company == nil {
		return
	}
	reason := ""
	if req.Reason != nil {
		reason = *req.Reason
	}
	if err := s.emailService.SendApplicationDecision(
		app.Student.Email, app.Student.FullName(), app.Company.Name, req.Approve, reason,
	); err != nil {
		s.logger.Warn().Err(err).Int64("applicationID", app.ID).Msg("Could not send decision email")
	}
}

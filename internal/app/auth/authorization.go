package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/deniz/stajlink/internal/app/models"
	"github.com/deniz/stajlink/internal/app/repositories"
	"github.com/deniz/stajlink/internal/pkg/apperrors"
	"github.com/deniz/stajlink/internal/pkg/logger"
)

// Common errors specific to authorization that aren't in the central apperrors
var (
	ErrNotStudent       = errors.New("only students can perform this action")
	ErrPermissionDenied = errors.New("you don't have permission for this action")
)

// AuthorizationService handles authorization operations
type AuthorizationService struct {
	userRepo        *repositories.UserRepository
	applicationRepo *repositories.ApplicationRepository
	logbookRepo     *repositories.LogbookRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(userRepo *repositories.UserRepository, applicationRepo *repositories.ApplicationRepository, logbookRepo *repositories.LogbookRepository) *AuthorizationService {
	return &AuthorizationService{
		userRepo:        userRepo,
		applicationRepo: applicationRepo,
		logbookRepo:     logbookRepo,
	}
}

// GetUserInfo returns user information
func (s *AuthorizationService) GetUserInfo(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error getting user by ID in GetUserInfo")
		return nil, fmt.Errorf("failed to get user information: %w", err)
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

// IsStaff checks if the user has a staff role (advisor, career center or admin)
func (s *AuthorizationService) IsStaff(ctx context.Context, userID int64) (bool, error) {
	user, err := s.GetUserInfo(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.RoleType.IsStaff(), nil
}

// ValidateStudent validates that the user is a student or returns an error
func (s *AuthorizationService) ValidateStudent(ctx context.Context, userID int64) error {
	user, err := s.GetUserInfo(ctx, userID)
	if err != nil {
		return err
	}
	if user.RoleType != models.RoleStudent {
		return ErrNotStudent
	}
	return nil
}

// CanAccessApplication checks whether the user may read the application.
// Students see only their own; staff see everything.
func (s *AuthorizationService) CanAccessApplication(ctx context.Context, applicationID, userID int64) (bool, error) {
	staff, err := s.IsStaff(ctx, userID)
	if err != nil {
		return false, err
	}
	if staff {
		return true, nil
	}

	app, err := s.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		logger.Error().Err(err).Int64("applicationID", applicationID).Msg("Error getting application in CanAccessApplication")
		return false, fmt.Errorf("failed to check application access: %w", err)
	}
	if app == nil {
		return false, apperrors.ErrApplicationNotFound
	}
	return app.StudentID == userID, nil
}

// ValidateApplicationAccess validates read access or returns an error
func (s *AuthorizationService) ValidateApplicationAccess(ctx context.Context, applicationID, userID int64) error {
	ok, err := s.CanAccessApplication(ctx, applicationID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPermissionDenied
	}
	return nil
}

// ValidateApplicationOwnership validates that the student owns the
// application. Staff roles do not pass this check; mutating operations on an
// application belong to its owner only.
func (s *AuthorizationService) ValidateApplicationOwnership(ctx context.Context, applicationID, userID int64) error {
	app, err := s.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		logger.Error().Err(err).Int64("applicationID", applicationID).Msg("Error getting application in ValidateApplicationOwnership")
		return fmt.Errorf("failed to check application ownership: %w", err)
	}
	if app == nil {
		return apperrors.ErrApplicationNotFound
	}
	if app.StudentID != userID {
		return ErrPermissionDenied
	}
	return nil
}

// ValidateLogbookOwnership validates that the student owns the application
// the logbook belongs to
func (s *AuthorizationService) ValidateLogbookOwnership(ctx context.Context, logbookID, userID int64) error {
	lb, err := s.logbookRepo.GetByID(ctx, logbookID)
	if err != nil {
		logger.Error().Err(err).Int64("logbookID", logbookID).Msg("Error getting logbook in ValidateLogbookOwnership")
		return fmt.Errorf("failed to check logbook ownership: %w", err)
	}
	if lb == nil {
		return apperrors.ErrLogbookNotFound
	}
	if lb.Application == nil || lb.Application.StudentID != userID {
		return ErrPermissionDenied
	}
	return nil
}

// ValidateCompanyOwnsApplication validates that the application was made to
// the given company. Company sessions may only decide their own applications.
func (s *AuthorizationService) ValidateCompanyOwnsApplication(ctx context.Context, applicationID, companyID int64) error {
	app, err := s.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		logger.Error().Err(err).Int64("applicationID", applicationID).Msg("Error getting application in ValidateCompanyOwnsApplication")
		return fmt.Errorf("failed to check company ownership: %w", err)
	}
	if app == nil {
		return apperrors.ErrApplicationNotFound
	}
	if app.CompanyID != companyID {
		return ErrPermissionDenied
	}
	return nil
}

// ValidateCompanyOwnsLogbook validates that the logbook's application was
// made to the given company
func (s *AuthorizationService) ValidateCompanyOwnsLogbook(ctx context.Context, logbookID, companyID int64) error {
	lb, err := s.logbookRepo.GetByID(ctx, logbookID)
	if err != nil {
		logger.Error().Err(err).Int64("logbookID", logbookID).Msg("Error getting logbook in ValidateCompanyOwnsLogbook")
		return fmt.Errorf("failed to check company logbook ownership: %w", err)
	}
	if lb == nil {
		return apperrors.ErrLogbookNotFound
	}
	if lb.Application == nil || lb.Application.CompanyID != companyID {
		return ErrPermissionDenied
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/deniz/stajlink/internal/app/models"
	"github.com/deniz/stajlink/internal/app/models/dto"
	"github.com/deniz/stajlink/internal/pkg/apperrors"
	"github.com/deniz/stajlink/internal/pkg/auth"
	"github.com/deniz/stajlink/internal/pkg/helpers"
	"github.com/deniz/stajlink/internal/pkg/validation"
)

// adminUserStore is the part of UserRepository the admin service needs
type adminUserStore interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, roleType string, offset uint64, limit int) ([]models.User, int64, error)
	Update(ctx context.Context, id int64, firstName, lastName *string, isActive *bool) (*models.User, error)
	Delete(ctx context.Context, id int64) error
	CountByRole(ctx context.Context, roleType models.RoleType) (int64, error)
}

// tokenRevoker invalidates refresh tokens when accounts are disabled
type tokenRevoker interface {
	RevokeAllUserTokens(ctx context.Context, userID int64) error
}

// companyCounter is the company statistic the dashboard needs
type companyCounter interface {
	Count(ctx context.Context) (int64, error)
}

// statusCounter aggregates rows by status for the dashboard
type statusCounter interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// AdminService handles user administration and dashboard statistics
type AdminService struct {
	users        adminUserStore
	tokens       tokenRevoker
	companies    companyCounter
	applications statusCounter
	logbooks     statusCounter
	logger       zerolog.Logger
}

// NewAdminService creates a new AdminService
func NewAdminService(users adminUserStore, tokens tokenRevoker, companies companyCounter, applications, logbooks statusCounter, logger zerolog.Logger) *AdminService {
	return &AdminService{
		users:        users,
		tokens:       tokens,
		companies:    companies,
		applications: applications,
		logbooks:     logbooks,
		logger:       logger,
	}
}

// CreateUser creates an account with any role. Student accounts require a
// student number; other roles must not carry one.
func (s *AdminService) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	roleType := models.RoleType(req.RoleType)
	if !roleType.IsValid() {
		return nil, apperrors.NewValidationError("roleType", "unknown role")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !validation.IsValidEmail(email) {
		return nil, apperrors.NewValidationError("email", "invalid email format")
	}
	if len(req.Password) < 8 {
		return nil, apperrors.NewValidationError("password", "password must be at least 8 characters long")
	}

	var studentNo *string
	if roleType == models.RoleStudent {
		if !validation.IsValidStudentNo(req.StudentNo) {
			return nil, apperrors.NewValidationError("studentNo", "student number must be 8 digits")
		}
		no := req.StudentNo
		studentNo = &no
	} else if req.StudentNo != "" {
		return nil, apperrors.NewValidationError("studentNo", "only students carry a student number")
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	created, err := s.users.Create(ctx, &models.User{
		Email:     email,
		Password:  hashedPassword,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		RoleType:  roleType,
		StudentNo: studentNo,
		IsActive:  true,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) || errors.Is(err, apperrors.ErrStudentNoExists) {
			return nil, err
		}
		return nil, fmt.Errorf("user creation error: %w", err)
	}

	s.logger.Info().Int64("userID", created.ID).Str("roleType", string(roleType)).Msg("User created")
	resp := dto.ToUserResponse(created)
	return &resp, nil
}

// GetUser retrieves a single user
func (s *AdminService) GetUser(ctx context.Context, id int64) (*dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}
	resp := dto.ToUserResponse(user)
	return &resp, nil
}

// ListUsers returns a page of users, optionally filtered by role
func (s *AdminService) ListUsers(ctx context.Context, roleType string, page, size int) (*dto.UserListResponse, error) {
	if roleType != "" && !models.RoleType(roleType).IsValid() {
		return nil, apperrors.NewValidationError("roleType", "unknown role")
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	users, total, err := s.users.List(ctx, roleType, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.ToUserResponse(&users[i]))
	}

	return &dto.UserListResponse{
		Users:      items,
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}, nil
}

// UpdateUser changes a user's name or active flag. Deactivating an account
// also revokes its refresh tokens so open sessions cannot be renewed.
func (s *AdminService) UpdateUser(ctx context.Context, id int64, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	updated, err := s.users.Update(ctx, id, req.FirstName, req.LastName, req.IsActive)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperrors.ErrUserNotFound
	}

	if req.IsActive != nil && !*req.IsActive {
		if err := s.tokens.RevokeAllUserTokens(ctx, id); err != nil {
			s.logger.Warn().Err(err).Int64("userID", id).Msg("Could not revoke tokens of deactivated user")
		}
	}

	s.logger.Info().Int64("userID", id).Msg("User updated")
	resp := dto.ToUserResponse(updated)
	return &resp, nil
}

// DeleteUser removes an account and revokes its tokens
func (s *AdminService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.tokens.RevokeAllUserTokens(ctx, id); err != nil {
		s.logger.Warn().Err(err).Int64("userID", id).Msg("Could not revoke tokens of deleted user")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("userID", id).Msg("User deleted")
	return nil
}

// Statistics assembles the dashboard counters
func (s *AdminService) Statistics(ctx context.Context) (*dto.StatisticsResponse, error) {
	students, err := s.users.CountByRole(ctx, models.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("failed to count students: %w", err)
	}
	companies, err := s.companies.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count companies: %w", err)
	}
	appsByStatus, err := s.applications.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}
	logbooksByStatus, err := s.logbooks.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count logbooks: %w", err)
	}

	return &dto.StatisticsResponse{
		TotalStudents:        students,
		TotalCompanies:       companies,
		ApplicationsByStatus: appsByStatus,
		LogbooksByStatus:     logbooksByStatus,
	}, nil
}

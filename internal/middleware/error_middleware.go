package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	appauth "github.com/deniz/stajlink/internal/app/auth"
	"github.com/deniz/stajlink/internal/app/models/dto"
	"github.com/deniz/stajlink/internal/pkg/apperrors"
	"github.com/deniz/stajlink/internal/pkg/logger"
)

// HandleAPIError maps application errors onto the response envelope. Every
// controller funnels its errors through here so clients see one taxonomy.
func HandleAPIError(c *gin.Context, err error) {
	var custom *apperrors.CustomError
	message := func(fallback string) string {
		if errors.As(err, &custom) && custom.Message != "" {
			return custom.Message
		}
		return fallback
	}

	switch {
	case errors.Is(err, apperrors.ErrValidationFailed),
		errors.Is(err, apperrors.ErrBadRequest),
		errors.Is(err, apperrors.ErrInvalidDateRange),
		errors.Is(err, apperrors.ErrReasonRequired):
		respond(c, http.StatusBadRequest, dto.ErrorCodeValidationFailed, message(err.Error()))

	case errors.Is(err, apperrors.ErrInvalidCredentials):
		respond(c, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, apperrors.ErrTokenExpired):
		respond(c, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid),
		errors.Is(err, apperrors.ErrTokenNotFound),
		errors.Is(err, apperrors.ErrTokenRevoked):
		respond(c, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrAccountDisabled):
		respond(c, http.StatusForbidden, dto.ErrorCodeForbidden, "Account is disabled")

	case errors.Is(err, apperrors.ErrPermissionDenied),
		errors.Is(err, appauth.ErrPermissionDenied),
		errors.Is(err, appauth.ErrNotStudent):
		respond(c, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied")

	case errors.Is(err, apperrors.ErrOTPExpired):
		respond(c, http.StatusUnauthorized, dto.ErrorCodeOTPExpired, "One-time code expired")
	case errors.Is(err, apperrors.ErrOTPAlreadyUsed):
		respond(c, http.StatusConflict, dto.ErrorCodeOTPAlreadyUsed, "One-time code already used")
	case errors.Is(err, apperrors.ErrOTPRateLimited):
		respond(c, http.StatusTooManyRequests, dto.ErrorCodeOTPRateLimited, message("Too many code requests"))

	case errors.Is(err, apperrors.ErrUserNotFound),
		errors.Is(err, apperrors.ErrApplicationNotFound),
		errors.Is(err, apperrors.ErrLogbookNotFound),
		errors.Is(err, apperrors.ErrCompanyNotFound),
		errors.Is(err, apperrors.ErrImportJobNotFound),
		errors.Is(err, apperrors.ErrFileNotFound),
		errors.Is(err, apperrors.ErrLogbookNoFile),
		errors.Is(err, apperrors.ErrResourceNotFound):
		respond(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, message(err.Error()))

	case errors.Is(err, apperrors.ErrEmailAlreadyExists),
		errors.Is(err, apperrors.ErrStudentNoExists),
		errors.Is(err, apperrors.ErrResourceAlreadyExists):
		respond(c, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, message(err.Error()))

	case errors.Is(err, apperrors.ErrApplicationOverlap):
		respond(c, http.StatusConflict, dto.ErrorCodeConflict, err.Error())
	case errors.Is(err, apperrors.ErrConflict):
		respond(c, http.StatusConflict, dto.ErrorCodeConflict, message("Conflicting state change"))

	case errors.Is(err, apperrors.ErrInvalidMimeType),
		errors.Is(err, apperrors.ErrFileTooLarge):
		respond(c, http.StatusBadRequest, dto.ErrorCodeValidationFailed, message(err.Error()))
	case errors.Is(err, apperrors.ErrStorageFailure):
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Storage failure")
		respond(c, http.StatusInternalServerError, dto.ErrorCodeStorageError, "File storage failure")

	default:
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled API error")
		respond(c, http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error")
	}
}

func respond(c *gin.Context, status int, code dto.ErrorCode, message string) {
	c.JSON(status, dto.APIResponse{
		Error:     dto.NewErrorDetail(code, message),
		Timestamp: time.Now(),
	})
}

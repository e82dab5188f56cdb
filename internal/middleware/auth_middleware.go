package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deniz/stajlink/internal/app/models"
	"github.com/deniz/stajlink/internal/app/models/dto"
	"github.com/deniz/stajlink/internal/pkg/auth"
)

// Context keys set by the auth middlewares
const (
	ContextUserID    = "userID"
	ContextEmail     = "email"
	ContextRoleType  = "roleType"
	ContextCompanyID = "companyID"
)

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// JWTAuth validates the bearer token and loads user identity into the context
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			return
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			abortUnauthorized(c, err)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRoleType, claims.RoleType)
		c.Next()
	}
}

// CompanySession validates a company session token issued through OTP
// verification. User tokens are refused here.
func (m *AuthMiddleware) CompanySession() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			return
		}

		claims, err := m.jwtService.ValidateCompanySession(tokenString)
		if err != nil {
			abortUnauthorized(c, err)
			return
		}

		c.Set(ContextCompanyID, claims.CompanyID)
		c.Next()
	}
}

// RoleRequired allows only the listed roles past. Must run after JWTAuth.
func (m *AuthMiddleware) RoleRequired(roles ...models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextRoleType)
		if !exists {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		roleStr, _ := role.(string)
		for _, allowed := range roles {
			if models.RoleType(roleStr) == allowed {
				c.Next()
				return
			}
		}

		errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
			WithDetails("You don't have sufficient permissions for this operation")
		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
	}
}

// StaffRequired allows advisor, career center and admin roles
func (m *AuthMiddleware) StaffRequired() gin.HandlerFunc {
	return m.RoleRequired(models.RoleAdvisor, models.RoleCareerCenter, models.RoleAdmin)
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
			WithDetails("Authorization header missing")
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return "", false
	}

	tokenString, err := auth.ExtractBearerToken(authHeader)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
			WithDetails("Invalid token format")
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return "", false
	}
	return tokenString, true
}

func abortUnauthorized(c *gin.Context, err error) {
	errorCode := dto.ErrorCodeInvalidToken
	details := "Invalid token"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		errorCode = dto.ErrorCodeExpiredToken
		details = "Token has expired"
	case errors.Is(err, auth.ErrWrongAudience):
		details = "Token issued for a different audience"
	}

	errorDetail := dto.NewErrorDetail(errorCode, "Authentication failed").
		WithDetails(details).
		WithSeverity(dto.ErrorSeverityError)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
}

// GetUserID reads the authenticated user id from the context
func GetUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// GetCompanyID reads the authenticated company id from the context
func GetCompanyID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(ContextCompanyID)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// GetRoleType reads the authenticated user's role from the context
func GetRoleType(c *gin.Context) models.RoleType {
	v, exists := c.Get(ContextRoleType)
	if !exists {
		return ""
	}
	roleStr, _ := v.(string)
	return models.RoleType(roleStr)
}

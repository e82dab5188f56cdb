package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/deniz/stajlink/internal/app/models"
	"github.com/deniz/stajlink/internal/app/models/dto"
	"github.com/deniz/stajlink/internal/app/repositories"
	"github.com/deniz/stajlink/internal/pkg/apperrors"
	"github.com/deniz/stajlink/internal/pkg/auth"
	"github.com/deniz/stajlink/internal/pkg/email"
	"github.com/deniz/stajlink/internal/pkg/metrics"
	"github.com/deniz/stajlink/internal/pkg/ratelimit"
	"github.com/deniz/stajlink/internal/pkg/validation"
)

// otpStore is the part of OTPRepository the service needs
type otpStore interface {
	Create(ctx context.Context, companyID int64, codeHash string, expiresAt time.Time, attempts int) (*models.CompanyOTP, error)
	Consume(ctx context.Context, companyID int64, codeHash string, now time.Time) (repositories.ConsumeResult, error)
}

// OTPSettings carries the tunables of the company login flow
type OTPSettings struct {
	CodeTTL           time.Duration
	MaxAttempts       int
	RequestsPerMinute int
	RequestBurst      int
}

// CompanyService handles passwordless company login through one-time codes
type CompanyService struct {
	companies  companyStore
	otps       otpStore
	jwtService *auth.JWTService
	email      email.EmailService
	settings   OTPSettings
	limiter    *ratelimit.KeyedLimiter
	logger     zerolog.Logger
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(companies companyStore, otps otpStore, jwtService *auth.JWTService, emailService email.EmailService, settings OTPSettings, logger zerolog.Logger) *CompanyService {
	return &CompanyService{
		companies:  companies,
		otps:       otps,
		jwtService: jwtService,
		email:      emailService,
		settings:   settings,
		limiter: ratelimit.NewKeyedLimiter(
			rate.Limit(float64(settings.RequestsPerMinute)/60.0),
			settings.RequestBurst,
			10*time.Minute,
		),
		logger: logger,
	}
}

// RequestOTP generates a one-time code for the company and mails it. The
// response does not reveal whether the tax number is known, so the endpoint
// cannot be used to enumerate registered companies.
func (s *CompanyService) RequestOTP(ctx context.Context, taxNo string) error {
	if !validation.IsValidTaxNo(taxNo) {
		return apperrors.NewValidationError("taxNo", "tax number must be 10 digits")
	}

	if !s.limiter.Allow(taxNo) {
		metrics.ObserveOTPRequest("rate_limited")
		return apperrors.ErrOTPRateLimited
	}

	company, err := s.companies.GetByTaxNo(ctx, taxNo)
	if err != nil {
		return fmt.Errorf("failed to look up company: %w", err)
	}
	if company == nil {
		metrics.ObserveOTPRequest("unknown_company")
		s.logger.Info().Str("taxNo", taxNo).Msg("Code requested for unknown tax number")
		return nil
	}

	code, err := generateOTPCode()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	expiresAt := time.Now().Add(s.settings.CodeTTL)
	if _, err := s.otps.Create(ctx, company.ID, hashOTPCode(code), expiresAt, s.settings.MaxAttempts); err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}

	if err := s.email.SendCompanyOTP(company.Email, company.Name, code); err != nil {
		metrics.ObserveOTPRequest("email_failed")
		return apperrors.NewCustomError(err, "could not send the one-time code")
	}

	metrics.ObserveOTPRequest("sent")
	s.logger.Info().Int64("companyID", company.ID).Msg("One-time code sent")
	return nil
}

// VerifyOTP redeems a one-time code for a short-lived company session token.
// Each code can be redeemed once; a wrong code costs one of a small number of
// attempts.
func (s *CompanyService) VerifyOTP(ctx context.Context, req *dto.CompanyVerifyRequest) (*dto.CompanySessionResponse, error) {
	if !validation.IsValidTaxNo(req.TaxNo) || !validation.IsValidOTPCode(req.Code) {
		return nil, apperrors.ErrInvalidCredentials
	}

	company, err := s.companies.GetByTaxNo(ctx, req.TaxNo)
	if err != nil {
		return nil, fmt.Errorf("failed to look up company: %w", err)
	}
	if company == nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	result, err := s.otps.Consume(ctx, company.ID, hashOTPCode(req.Code), time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to verify code: %w", err)
	}

	switch result {
	case repositories.ConsumeOK:
	case repositories.ConsumeExpired:
		metrics.ObserveOTPRequest("verify_expired")
		return nil, apperrors.ErrOTPExpired
	case repositories.ConsumeAlreadyUsed:
		metrics.ObserveOTPRequest("verify_replay")
		return nil, apperrors.ErrOTPAlreadyUsed
	case repositories.ConsumeNoAttempts:
		metrics.ObserveOTPRequest("verify_exhausted")
		return nil, apperrors.NewCustomError(apperrors.ErrOTPRateLimited, "verification attempts exhausted, request a new code")
	default:
		metrics.ObserveOTPRequest("verify_failed")
		return nil, apperrors.ErrInvalidCredentials
	}

	token, expiresIn, err := s.jwtService.GenerateCompanySession(company.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	metrics.ObserveOTPRequest("verify_ok")
	s.logger.Info().Int64("companyID", company.ID).Msg("Company session opened")

	return &dto.CompanySessionResponse{
		SessionToken: token,
		ExpiresIn:    expiresIn,
		CompanyID:    company.ID,
		CompanyName:  company.Name,
	}, nil
}

// generateOTPCode draws a uniformly random 6 digit code
func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// hashOTPCode hashes a code for at-rest storage. Plaintext codes only exist
// in the outgoing email.
func hashOTPCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

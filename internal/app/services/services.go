package services

import (
	"time"

	"github.com/rs/zerolog"

	appauth "github.com/deniz/stajlink/internal/app/auth"
	"github.com/deniz/stajlink/internal/app/repositories"
	"github.com/deniz/stajlink/internal/config"
	"github.com/deniz/stajlink/internal/pkg/auth"
	"github.com/deniz/stajlink/internal/pkg/email"
	"github.com/deniz/stajlink/internal/pkg/filestorage"
	"github.com/deniz/stajlink/internal/pkg/helpers"
)

// Services holds all the service instances
type Services struct {
	AuthService        *AuthService
	ApplicationService *ApplicationService
	LogbookService     *LogbookService
	CompanyService     *CompanyService
	AdminService       *AdminService
	ImportService      *ImportService
}

// NewServices initializes all services
func NewServices(
	repos *repositories.Repositories,
	authzService *appauth.AuthorizationService,
	jwtService *auth.JWTService,
	emailService email.EmailService,
	storage filestorage.FileStorage,
	cfg *config.Config,
	logger zerolog.Logger,
) *Services {
	return &Services{
		AuthService: NewAuthService(
			repos.UserRepository,
			repos.TokenRepository,
			jwtService,
			logger.With().Str("service", "auth").Logger(),
		),
		ApplicationService: NewApplicationService(
			repos.ApplicationRepository,
			repos.CompanyRepository,
			authzService,
			storage,
			emailService,
			logger.With().Str("service", "application").Logger(),
		),
		LogbookService: NewLogbookService(
			repos.LogbookRepository,
			repos.FileRepository,
			repos.ApplicationRepository,
			storage,
			logger.With().Str("service", "logbook").Logger(),
		),
		CompanyService: NewCompanyService(
			repos.CompanyRepository,
			repos.OTPRepository,
			jwtService,
			emailService,
			OTPSettings{
				CodeTTL:           helpers.ParseDuration(cfg.OTP.CodeExpiration, 5*time.Minute),
				MaxAttempts:       cfg.OTP.MaxAttempts,
				RequestsPerMinute: cfg.OTP.RequestsPerMinute,
				RequestBurst:      cfg.OTP.RequestBurst,
			},
			logger.With().Str("service", "company").Logger(),
		),
		AdminService: NewAdminService(
			repos.UserRepository,
			repos.TokenRepository,
			repos.CompanyRepository,
			repos.ApplicationRepository,
			repos.LogbookRepository,
			logger.With().Str("service", "admin").Logger(),
		),
		ImportService: NewImportService(
			repos.ImportRepository,
			repos.UserRepository,
			logger.With().Str("service", "import").Logger(),
		),
	}
}

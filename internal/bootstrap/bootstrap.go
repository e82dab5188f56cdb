package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/deniz/stajlink/docs" // Import generated swagger docs
	appAuth "github.com/deniz/stajlink/internal/app/auth"
	appControllers "github.com/deniz/stajlink/internal/app/controllers"
	appMigrations "github.com/deniz/stajlink/internal/app/migrations"
	appRepos "github.com/deniz/stajlink/internal/app/repositories"
	appRoutes "github.com/deniz/stajlink/internal/app/routes"
	appServices "github.com/deniz/stajlink/internal/app/services"
	"github.com/deniz/stajlink/internal/config"
	"github.com/deniz/stajlink/internal/db"
	appMiddleware "github.com/deniz/stajlink/internal/middleware"
	pkgAuth "github.com/deniz/stajlink/internal/pkg/auth"
	"github.com/deniz/stajlink/internal/pkg/email"
	"github.com/deniz/stajlink/internal/pkg/filestorage"
	"github.com/deniz/stajlink/internal/pkg/helpers"
	"github.com/deniz/stajlink/internal/pkg/logger"
	"github.com/deniz/stajlink/internal/pkg/metrics"
	"github.com/deniz/stajlink/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Services              *appServices.Services
	AuthController        *appControllers.AuthController
	ApplicationController *appControllers.ApplicationController
	LogbookController     *appControllers.LogbookController
	CompanyController     *appControllers.CompanyController
	AdminController       *appControllers.AdminController
	AuthMiddleware        *appMiddleware.AuthMiddleware
	Repos                 *appRepos.Repositories
	JWTService            *pkgAuth.JWTService
	AuthzService          *appAuth.AuthorizationService
	Logger                zerolog.Logger
	FileStorage           *filestorage.LocalStorage
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool, lgr)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(context.Background(), migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(context.Background(), dbPool, lgr); err != nil {
		// Log the error but don't necessarily fail the startup
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.AuthzService = appAuth.NewAuthorizationService(
		deps.Repos.UserRepository,
		deps.Repos.ApplicationRepository,
		deps.Repos.LogbookRepository,
	)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:         cfg.JWT.Secret,
		AccessTokenExp:    helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp:   helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		CompanySessionExp: helpers.ParseDuration(cfg.OTP.SessionExpiration, 2*time.Hour),
		TokenIssuer:       cfg.JWT.Issuer,
	})

	emailService := email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
	}, lgr)

	deps.Services = appServices.NewServices(deps.Repos, deps.AuthzService, deps.JWTService, emailService, deps.FileStorage, cfg, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.AuthController = appControllers.NewAuthController(deps.Services.AuthService, lgr)
	deps.ApplicationController = appControllers.NewApplicationController(
		deps.Services.ApplicationService,
		deps.Services.LogbookService,
		deps.AuthzService,
		lgr,
	)
	deps.LogbookController = appControllers.NewLogbookController(
		deps.Services.LogbookService,
		deps.AuthzService,
		lgr,
	)
	deps.CompanyController = appControllers.NewCompanyController(
		deps.Services.CompanyService,
		deps.Services.ApplicationService,
		deps.Services.LogbookService,
		deps.AuthzService,
		lgr,
	)
	deps.AdminController = appControllers.NewAdminController(
		deps.Services.AdminService,
		deps.Services.ImportService,
		deps.Services.LogbookService,
		deps.Services.ApplicationService,
		lgr,
	)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger())
	router.Use(metrics.Middleware())

	// Setup Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json"), ginSwagger.DefaultModelsExpandDepth(1)))

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.ApplicationController,
		deps.LogbookController,
		deps.CompanyController,
		deps.AdminController,
		deps.AuthMiddleware,
	)

	// Test endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}

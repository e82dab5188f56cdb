package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	appModels "github.com/deniz/stajlink/internal/app/models"
	appRepos "github.com/deniz/stajlink/internal/app/repositories"
)

// CreateDefaultData creates the default admin account and a demo company
// if the database does not contain them yet.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(dbPool)
	companyRepo := appRepos.NewCompanyRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default data...")
	var finalErr error

	// --- Default admin account --- //
	const adminEmail = "admin@stajlink.edu.tr"
	existing, err := userRepo.GetByEmail(ctx, adminEmail)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking for admin user")
		finalErr = errors.Join(finalErr, err)
	} else if existing == nil {
		lgr.Info().Msg("Creating default admin user...")

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte("Admin123!"), bcrypt.DefaultCost)
		if err != nil {
			lgr.Error().Err(err).Msg("Error hashing admin password")
			finalErr = errors.Join(finalErr, err)
		} else {
			admin := &appModels.User{
				Email:     adminEmail,
				Password:  string(hashedPassword),
				FirstName: "System",
				LastName:  "Administrator",
				RoleType:  appModels.RoleAdmin,
				IsActive:  true,
			}

			created, err := userRepo.Create(ctx, admin)
			if err != nil {
				lgr.Error().Err(err).Msg("Error creating admin user")
				finalErr = errors.Join(finalErr, err)
			} else {
				lgr.Info().Int64("adminID", created.ID).Msg("Default admin user created successfully")
			}
		}
	} else {
		lgr.Info().Msg("Admin user already exists, skipping creation")
	}

	// --- Demo company --- //
	// Gives a fresh install a company that can log in with the OTP flow.
	demo := &appModels.Company{
		Name:  "Demo Teknoloji A.S.",
		TaxNo: "1234567890",
		Email: "staj@demo-teknoloji.com.tr",
	}
	if _, err := companyRepo.GetOrCreate(ctx, demo); err != nil {
		lgr.Error().Err(err).Msg("Error creating demo company")
		finalErr = errors.Join(finalErr, err)
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}

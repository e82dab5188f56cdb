package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository        *UserRepository
	TokenRepository       *TokenRepository
	CompanyRepository     *CompanyRepository
	ApplicationRepository *ApplicationRepository
	LogbookRepository     *LogbookRepository
	FileRepository        *FileRepository
	OTPRepository         *OTPRepository
	ImportRepository      *ImportRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:        NewUserRepository(db),
		TokenRepository:       NewTokenRepository(db),
		CompanyRepository:     NewCompanyRepository(db),
		ApplicationRepository: NewApplicationRepository(db),
		LogbookRepository:     NewLogbookRepository(db),
		FileRepository:        NewFileRepository(db),
		OTPRepository:         NewOTPRepository(db),
		ImportRepository:      NewImportRepository(db),
	}
}

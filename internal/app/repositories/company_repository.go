package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deniz/stajlink/internal/app/models"
)

// CompanyRepository handles company database operations
type CompanyRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCompanyRepository creates a new CompanyRepository
func NewCompanyRepository(db *pgxpool.Pool) *CompanyRepository {
	return &CompanyRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

const companyColumns = "id, name, tax_no, email, phone, address, created_at, updated_at"

func scanCompany(row pgx.Row) (*models.Company, error) {
	var c models.Company
	err := row.Scan(&c.ID, &c.Name, &c.TaxNo, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByID retrieves a company by id; returns nil when absent
func (r *CompanyRepository) GetByID(ctx context.Context, id int64) (*models.Company, error) {
	sql, args, err := r.sb.Select(companyColumns).From("companies").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get company query: %w", err)
	}

	company, err := scanCompany(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return company, nil
}

// GetByTaxNo retrieves a company by tax number; returns nil when absent
func (r *CompanyRepository) GetByTaxNo(ctx context.Context, taxNo string) (*models.Company, error) {
	sql, args, err := r.sb.Select(companyColumns).From("companies").Where(squirrel.Eq{"tax_no": taxNo}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get company query: %w", err)
	}

	company, err := scanCompany(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company by tax no: %w", err)
	}
	return company, nil
}

// GetOrCreate finds the company by tax number or inserts it. Contact details
// are refreshed on upsert so the latest application wins.
func (r *CompanyRepository) GetOrCreate(ctx context.Context, company *models.Company) (*models.Company, error) {
	sql := `
		INSERT INTO companies (name, tax_no, email, phone, address)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tax_no) DO UPDATE
		SET name = EXCLUDED.name, email = EXCLUDED.email,
		    phone = EXCLUDED.phone, address = EXCLUDED.address, updated_at = NOW()
		RETURNING ` + companyColumns

	created, err := scanCompany(r.db.QueryRow(ctx, sql, company.Name, company.TaxNo, company.Email, company.Phone, company.Address))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert company: %w", err)
	}
	return created, nil
}

// Count returns the number of registered companies
func (r *CompanyRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM companies").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count companies: %w", err)
	}
	return count, nil
}

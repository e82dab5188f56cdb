package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deniz/stajlink/internal/app/models"
)

// ConsumeResult reports the outcome of an OTP verification attempt.
type ConsumeResult int

const (
	// ConsumeOK means the code matched and is now marked used
	ConsumeOK ConsumeResult = iota
	// ConsumeNoMatch means no active code exists or the code is wrong;
	// a wrong code costs one attempt
	ConsumeNoMatch
	// ConsumeExpired means the latest code exists but its window passed
	ConsumeExpired
	// ConsumeAlreadyUsed means the latest code was consumed before
	ConsumeAlreadyUsed
	// ConsumeNoAttempts means the attempt budget for the code is exhausted
	ConsumeNoAttempts
)

// OTPRepository manages one-time login codes for companies
type OTPRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewOTPRepository creates a new OTPRepository
func NewOTPRepository(db *pgxpool.Pool) *OTPRepository {
	return &OTPRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create stores a new hashed code and invalidates any earlier active codes
// for the same company so only the latest one can be redeemed.
func (r *OTPRepository) Create(ctx context.Context, companyID int64, codeHash string, expiresAt time.Time, attempts int) (*models.CompanyOTP, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`UPDATE company_otp_codes SET attempts_left = 0
		 WHERE company_id = $1 AND used_at IS NULL AND attempts_left > 0`,
		companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to invalidate previous codes: %w", err)
	}

	otp := &models.CompanyOTP{
		CompanyID:    companyID,
		CodeHash:     codeHash,
		ExpiresAt:    expiresAt,
		AttemptsLeft: attempts,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO company_otp_codes (company_id, code_hash, expires_at, attempts_left)
		 VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		companyID, codeHash, expiresAt, attempts).
		Scan(&otp.ID, &otp.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert otp code: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit otp create: %w", err)
	}
	return otp, nil
}

// Consume atomically redeems the latest code for the company. A matching,
// unexpired, unused code with attempts left is marked used; a mismatch
// decrements the attempt budget. Only one concurrent caller can win because
// the row is locked for the duration of the check.
func (r *OTPRepository) Consume(ctx context.Context, companyID int64, codeHash string, now time.Time) (ConsumeResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return ConsumeNoMatch, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var otp models.CompanyOTP
	err = tx.QueryRow(ctx,
		`SELECT id, company_id, code_hash, expires_at, attempts_left, used_at, created_at
		 FROM company_otp_codes
		 WHERE company_id = $1
		 ORDER BY created_at DESC LIMIT 1
		 FOR UPDATE`,
		companyID).
		Scan(&otp.ID, &otp.CompanyID, &otp.CodeHash, &otp.ExpiresAt, &otp.AttemptsLeft, &otp.UsedAt, &otp.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ConsumeNoMatch, nil
		}
		return ConsumeNoMatch, fmt.Errorf("failed to load otp code: %w", err)
	}

	switch {
	case otp.IsUsed():
		return ConsumeAlreadyUsed, nil
	case otp.IsExpired(now):
		return ConsumeExpired, nil
	case otp.AttemptsLeft <= 0:
		return ConsumeNoAttempts, nil
	}

	if otp.CodeHash != codeHash {
		if _, err := tx.Exec(ctx,
			`UPDATE company_otp_codes SET attempts_left = attempts_left - 1 WHERE id = $1`,
			otp.ID); err != nil {
			return ConsumeNoMatch, fmt.Errorf("failed to decrement otp attempts: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return ConsumeNoMatch, fmt.Errorf("failed to commit otp attempt: %w", err)
		}
		return ConsumeNoMatch, nil
	}

	if _, err := tx.Exec(ctx,
		`UPDATE company_otp_codes SET used_at = $1 WHERE id = $2`, now, otp.ID); err != nil {
		return ConsumeNoMatch, fmt.Errorf("failed to mark otp used: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return ConsumeNoMatch, fmt.Errorf("failed to commit otp consume: %w", err)
	}
	return ConsumeOK, nil
}

// DeleteExpired removes codes whose window passed before the cutoff
func (r *OTPRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM company_otp_codes WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired otp codes: %w", err)
	}
	return tag.RowsAffected(), nil
}

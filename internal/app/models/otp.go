package models

import "time"

// CompanyOTP represents a one-time login code issued to a company,
// based on the 'company_otp_codes' table. The code itself is never stored,
// only its SHA-256 hash.
type CompanyOTP struct {
	ID           int64      `json:"id" db:"id"`
	CompanyID    int64      `json:"companyId" db:"company_id"`
	CodeHash     string     `json:"-" db:"code_hash"`
	ExpiresAt    time.Time  `json:"expiresAt" db:"expires_at"`
	AttemptsLeft int        `json:"attemptsLeft" db:"attempts_left"`
	UsedAt       *time.Time `json:"usedAt,omitempty" db:"used_at"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
}

// IsExpired reports whether the code is past its expiry
func (o *CompanyOTP) IsExpired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}

// IsUsed reports whether the code has already been consumed
func (o *CompanyOTP) IsUsed() bool {
	return o.UsedAt != nil
}

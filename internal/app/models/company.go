package models

import "time"

// Company defines the host company model based on the 'companies' table.
// Companies have no user accounts; they act through OTP-authenticated sessions.
type Company struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	TaxNo     string    `json:"taxNo" db:"tax_no"`
	Email     string    `json:"email" db:"email"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Address   *string   `json:"address,omitempty" db:"address"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

package models

import "time"

// Application defines the internship application model based on the
// 'staj_basvurulari' table
type Application struct {
	ID              int64             `json:"id" db:"id"`
	StudentID       int64             `json:"studentId" db:"student_id"`
	CompanyID       int64             `json:"companyId" db:"company_id"`
	Position        string            `json:"position" db:"position"`
	Description     *string           `json:"description,omitempty" db:"description"`
	StartDate       time.Time         `json:"startDate" db:"start_date"`
	EndDate         time.Time         `json:"endDate" db:"end_date"`
	Status          ApplicationStatus `json:"status" db:"status"`
	RejectionReason *string           `json:"rejectionReason,omitempty" db:"rejection_reason"`
	CreatedAt       time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time         `json:"updatedAt" db:"updated_at"`

	Student *User    `json:"student,omitempty"` // Relation, no db tag
	Company *Company `json:"company,omitempty"` // Relation, no db tag
}

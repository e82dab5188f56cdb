package dto

import (
	"time"

	"github.com/deniz/stajlink/internal/app/models"
)

// CreateApplicationRequest represents the payload for creating a staj başvurusu
type CreateApplicationRequest struct {
	CompanyName    string  `json:"companyName" binding:"required,min=2,max=255" example:"Acme Yazılım A.Ş."`
	CompanyTaxNo   string  `json:"companyTaxNo" binding:"required" example:"1234567890"`
	CompanyEmail   string  `json:"companyEmail" binding:"required,email" example:"ik@acme.com.tr"`
	CompanyPhone   *string `json:"companyPhone,omitempty"`
	CompanyAddress *string `json:"companyAddress,omitempty"`
	Position       string  `json:"position" binding:"required,min=2,max=255" example:"Backend Intern"`
	Description    *string `json:"description,omitempty"`
	StartDate      string  `json:"startDate" binding:"required" example:"2024-03-01"` // YYYY-MM-DD
	EndDate        string  `json:"endDate" binding:"required" example:"2024-06-01"`   // YYYY-MM-DD
}

// UpdateApplicationDatesRequest represents the date-update payload,
// only valid while the application is still pending
type UpdateApplicationDatesRequest struct {
	StartDate string `json:"startDate" binding:"required" example:"2024-03-15"`
	EndDate   string `json:"endDate" binding:"required" example:"2024-06-15"`
}

// ApplicationDecisionRequest represents a company approve/reject decision
type ApplicationDecisionRequest struct {
	BasvuruID int64   `json:"basvuruId" binding:"required" example:"1"`
	Approve   bool    `json:"approve"`
	Reason    *string `json:"reason,omitempty" example:"Kontenjan dolu"` // Mandatory when rejecting
}

// ApplicationResponse represents an application returned by the API
type ApplicationResponse struct {
	ID              int64     `json:"id" example:"1"`
	StudentID       int64     `json:"studentId" example:"7"`
	StudentName     string    `json:"studentName,omitempty" example:"Ayşe Yılmaz"`
	CompanyID       int64     `json:"companyId" example:"3"`
	CompanyName     string    `json:"companyName,omitempty" example:"Acme Yazılım A.Ş."`
	Position        string    `json:"position" example:"Backend Intern"`
	Description     *string   `json:"description,omitempty"`
	StartDate       string    `json:"startDate" example:"2024-03-01"`
	EndDate         string    `json:"endDate" example:"2024-06-01"`
	Status          string    `json:"status" example:"PENDING" enums:"PENDING,APPROVED,REJECTED,CANCELLED"`
	RejectionReason *string   `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ApplicationListResponse is a page of applications
type ApplicationListResponse struct {
	Applications []ApplicationResponse `json:"applications"`
	Pagination   PaginationInfo        `json:"pagination"`
}

// ApplicationFilter carries the supported list filters
type ApplicationFilter struct {
	StudentID int64
	CompanyID int64
	Status    string
	Page      int
	PageSize  int
}

// ToApplicationResponse converts an application model to its response DTO
func ToApplicationResponse(a *models.Application) ApplicationResponse {
	resp := ApplicationResponse{
		ID:              a.ID,
		StudentID:       a.StudentID,
		CompanyID:       a.CompanyID,
		Position:        a.Position,
		Description:     a.Description,
		StartDate:       a.StartDate.Format("2006-01-02"),
		EndDate:         a.EndDate.Format("2006-01-02"),
		Status:          string(a.Status),
		RejectionReason: a.RejectionReason,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
	if a.Student != nil {
		resp.StudentName = a.Student.FullName()
	}
	if a.Company != nil {
		resp.CompanyName = a.Company.Name
	}
	return resp
}

package dto

import (
	"time"

	"github.com/deniz/stajlink/internal/app/models"
)

// ImportJobResponse represents a bulk import job and its progress
type ImportJobResponse struct {
	ID            int64     `json:"id" example:"1"`
	JobType       string    `json:"jobType" example:"STUDENT" enums:"ADVISOR,STUDENT,DUAL_MAJOR_STUDENT"`
	Status        string    `json:"status" example:"PROCESSING" enums:"PROCESSING,COMPLETED,FAILED,CANCELLED"`
	FileName      string    `json:"fileName" example:"ogrenciler.xlsx"`
	TotalRows     int       `json:"totalRows" example:"120"`
	SucceededRows int       `json:"succeededRows" example:"118"`
	FailedRows    int       `json:"failedRows" example:"2"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ImportJobRowResponse represents the outcome of a single imported row
type ImportJobRowResponse struct {
	RowNumber int    `json:"rowNumber" example:"14"`
	Success   bool   `json:"success" example:"false"`
	Message   string `json:"message" example:"email already exists"`
}

// ImportJobDetailResponse is a job together with its per-row result log
type ImportJobDetailResponse struct {
	Job  ImportJobResponse      `json:"job"`
	Rows []ImportJobRowResponse `json:"rows"`
}

// ToImportJobResponse converts an import job model to its response DTO
func ToImportJobResponse(j *models.ImportJob) ImportJobResponse {
	return ImportJobResponse{
		ID:            j.ID,
		JobType:       string(j.JobType),
		Status:        string(j.Status),
		FileName:      j.FileName,
		TotalRows:     j.TotalRows,
		SucceededRows: j.SucceededRows,
		FailedRows:    j.FailedRows,
		CreatedAt:     j.CreatedAt,
		UpdatedAt:     j.UpdatedAt,
	}
}

// StatisticsResponse carries the admin dashboard counters
type StatisticsResponse struct {
	TotalStudents        int64            `json:"totalStudents" example:"540"`
	TotalCompanies       int64            `json:"totalCompanies" example:"88"`
	ApplicationsByStatus map[string]int64 `json:"applicationsByStatus"`
	LogbooksByStatus     map[string]int64 `json:"logbooksByStatus"`
}

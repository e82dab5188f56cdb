package dto

import (
	"time"

	"github.com/deniz/stajlink/internal/app/models"
)

// LogbookResponse represents a staj defteri returned by the API
type LogbookResponse struct {
	ID        int64         `json:"id" example:"1"`
	BasvuruID int64         `json:"basvuruId" example:"1"`
	Status    string        `json:"status" example:"UPLOADED" enums:"WAITING,UPLOADED,APPROVED"`
	File      *FileResponse `json:"file,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// LogbookDecisionRequest represents a company approve/reject decision on a logbook
type LogbookDecisionRequest struct {
	DefterID int64 `json:"defterId" binding:"required" example:"1"`
	Approve  bool  `json:"approve"`
}

// UpdateLogbookStatusRequest represents the admin status override payload
type UpdateLogbookStatusRequest struct {
	Status string `json:"status" binding:"required" enums:"WAITING,UPLOADED,APPROVED" example:"WAITING"`
}

// FileResponse represents stored file metadata returned by the API
type FileResponse struct {
	ID        int64     `json:"id" example:"12"`
	FileName  string    `json:"fileName" example:"staj_defteri.pdf"`
	FileSize  int64     `json:"fileSize" example:"1048576"`
	MimeType  string    `json:"mimeType" example:"application/pdf"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToLogbookResponse converts a logbook model to its response DTO
func ToLogbookResponse(l *models.Logbook) LogbookResponse {
	resp := LogbookResponse{
		ID:        l.ID,
		BasvuruID: l.BasvuruID,
		Status:    string(l.Status),
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
	if l.File != nil {
		resp.File = &FileResponse{
			ID:        l.File.ID,
			FileName:  l.File.FileName,
			FileSize:  l.File.FileSize,
			MimeType:  l.File.MimeType,
			CreatedAt: l.File.CreatedAt,
		}
	}
	return resp
}

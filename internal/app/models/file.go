package models

import "time"

// ResourceType indicates which entity a stored file belongs to
type ResourceType string

const (
	ResourceLogbookPDF ResourceType = "LOGBOOK_PDF"
	ResourceTranscript ResourceType = "TRANSCRIPT"
	ResourceInsurance  ResourceType = "INSURANCE"
	ResourceServiceDoc ResourceType = "SERVICE_DOC"
)

// IsValid reports whether the resource type is one of the known document kinds
func (t ResourceType) IsValid() bool {
	switch t {
	case ResourceLogbookPDF, ResourceTranscript, ResourceInsurance, ResourceServiceDoc:
		return true
	}
	return false
}

// ParseResourceType maps the lowercase route segment used by the download
// endpoints to a ResourceType. Returns false for anything outside the whitelist.
func ParseResourceType(s string) (ResourceType, bool) {
	switch s {
	case "defter":
		return ResourceLogbookPDF, true
	case "transkript":
		return ResourceTranscript, true
	case "sigorta":
		return ResourceInsurance, true
	case "hizmet":
		return ResourceServiceDoc, true
	}
	return "", false
}

// File represents an uploaded PDF artifact in the 'files' table
type File struct {
	ID           int64        `json:"id" db:"id"`
	FileName     string       `json:"fileName" db:"file_name"` // Original client filename, display only
	FilePath     string       `json:"filePath" db:"file_path"` // Canonical storage path, never client derived
	FileSize     int64        `json:"fileSize" db:"file_size"`
	MimeType     string       `json:"mimeType" db:"mime_type"`
	ResourceType ResourceType `json:"resourceType" db:"resource_type"`
	ResourceID   int64        `json:"resourceId" db:"resource_id"`
	UploadedBy   *int64       `json:"uploadedBy" db:"uploaded_by"` // Nil once the uploading user is deleted
	CreatedAt    time.Time    `json:"createdAt" db:"created_at"`
}

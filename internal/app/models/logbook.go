package models

import "time"

// Logbook defines the internship logbook model based on the
// 'staj_defterleri' table. One logbook exists per approved application.
type Logbook struct {
	ID        int64         `json:"id" db:"id"`
	BasvuruID int64         `json:"basvuruId" db:"basvuru_id"`
	Status    LogbookStatus `json:"status" db:"status"`
	FileID    *int64        `json:"fileId,omitempty" db:"file_id"`
	CreatedAt time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time     `json:"updatedAt" db:"updated_at"`

	Application *Application `json:"application,omitempty"` // Relation, no db tag
	File        *File        `json:"file,omitempty"`        // Relation, no db tag
}

// HasFile reports whether a PDF is attached
func (l *Logbook) HasFile() bool {
	return l.FileID != nil
}

// LogbookAuditEntry records an admin-forced logbook status change,
// based on the 'logbook_audit_log' table
type LogbookAuditEntry struct {
	ID        int64         `json:"id" db:"id"`
	LogbookID int64         `json:"logbookId" db:"logbook_id"`
	ActorID   int64         `json:"actorId" db:"actor_id"`
	OldStatus LogbookStatus `json:"oldStatus" db:"old_status"`
	NewStatus LogbookStatus `json:"newStatus" db:"new_status"`
	CreatedAt time.Time     `json:"createdAt" db:"created_at"`
}

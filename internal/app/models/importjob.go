package models

import "time"

// ImportJob represents an asynchronous Excel bulk import,
// based on the 'import_jobs' table
type ImportJob struct {
	ID            int64           `json:"id" db:"id"`
	JobType       ImportJobType   `json:"jobType" db:"job_type"`
	Status        ImportJobStatus `json:"status" db:"status"`
	FileName      string          `json:"fileName" db:"file_name"`
	TotalRows     int             `json:"totalRows" db:"total_rows"`
	SucceededRows int             `json:"succeededRows" db:"succeeded_rows"`
	FailedRows    int             `json:"failedRows" db:"failed_rows"`
	CreatedBy     int64           `json:"createdBy" db:"created_by"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// ImportJobRow is the per-row outcome log of an import job,
// based on the 'import_job_rows' table
type ImportJobRow struct {
	ID        int64  `json:"id" db:"id"`
	JobID     int64  `json:"jobId" db:"job_id"`
	RowNumber int    `json:"rowNumber" db:"row_number"`
	Success   bool   `json:"success" db:"success"`
	Message   string `json:"message" db:"message"`
}

package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deniz/stajlink/internal/app/models"
)

// ImportRepository persists bulk-import jobs and their per-row results
type ImportRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewImportRepository creates a new ImportRepository
func NewImportRepository(db *pgxpool.Pool) *ImportRepository {
	return &ImportRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

const importJobColumns = "id, job_type, status, file_name, total_rows, succeeded_rows, failed_rows, created_by, created_at, updated_at"

func scanImportJob(row pgx.Row) (*models.ImportJob, error) {
	var j models.ImportJob
	err := row.Scan(&j.ID, &j.JobType, &j.Status, &j.FileName, &j.TotalRows,
		&j.SucceededRows, &j.FailedRows, &j.CreatedBy, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// CreateJob records a new job in PROCESSING state
func (r *ImportRepository) CreateJob(ctx context.Context, jobType models.ImportJobType, fileName string, createdBy int64) (*models.ImportJob, error) {
	job := &models.ImportJob{
		JobType:   jobType,
		Status:    models.ImportProcessing,
		FileName:  fileName,
		CreatedBy: createdBy,
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO import_jobs (job_type, status, file_name, created_by)
		 VALUES ($1, $2, $3, $4) RETURNING id, created_at, updated_at`,
		jobType, models.ImportProcessing, fileName, createdBy).
		Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create import job: %w", err)
	}
	return job, nil
}

// GetJob retrieves a job by id; nil when absent
func (r *ImportRepository) GetJob(ctx context.Context, id int64) (*models.ImportJob, error) {
	sql, args, err := r.sb.Select(importJobColumns).From("import_jobs").
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get job query: %w", err)
	}
	job, err := scanImportJob(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get import job: %w", err)
	}
	return job, nil
}

// ListJobs returns jobs newest first
func (r *ImportRepository) ListJobs(ctx context.Context, offset uint64, limit int) ([]models.ImportJob, int64, error) {
	sql, args, err := r.sb.Select(importJobColumns).From("import_jobs").
		OrderBy("created_at DESC").Offset(offset).Limit(uint64(limit)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list jobs query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list import jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.ImportJob
	for rows.Next() {
		job, err := scanImportJob(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan import job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate import jobs: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM import_jobs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count import jobs: %w", err)
	}
	return jobs, total, nil
}

// UpdateProgress writes row counters for a running job
func (r *ImportRepository) UpdateProgress(ctx context.Context, id int64, total, succeeded, failed int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE import_jobs SET total_rows = $2, succeeded_rows = $3, failed_rows = $4, updated_at = NOW()
		 WHERE id = $1`,
		id, total, succeeded, failed)
	if err != nil {
		return fmt.Errorf("failed to update import progress: %w", err)
	}
	return nil
}

// Finish moves a job from PROCESSING to a terminal status. A job already
// cancelled keeps its CANCELLED status; the return reports whether the
// update took effect.
func (r *ImportRepository) Finish(ctx context.Context, id int64, status models.ImportJobStatus) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE import_jobs SET status = $2, updated_at = NOW()
		 WHERE id = $1 AND status = $3`,
		id, status, models.ImportProcessing)
	if err != nil {
		return false, fmt.Errorf("failed to finish import job: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Cancel moves a PROCESSING job to CANCELLED
func (r *ImportRepository) Cancel(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE import_jobs SET status = $2, updated_at = NOW()
		 WHERE id = $1 AND status = $3`,
		id, models.ImportCancelled, models.ImportProcessing)
	if err != nil {
		return false, fmt.Errorf("failed to cancel import job: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// IsCancelled lets the worker goroutine poll for cancellation between rows
func (r *ImportRepository) IsCancelled(ctx context.Context, id int64) (bool, error) {
	var status models.ImportJobStatus
	err := r.db.QueryRow(ctx, `SELECT status FROM import_jobs WHERE id = $1`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return true, nil
		}
		return false, fmt.Errorf("failed to read import job status: %w", err)
	}
	return status == models.ImportCancelled, nil
}

// AddRow records the outcome of one spreadsheet row
func (r *ImportRepository) AddRow(ctx context.Context, jobID int64, rowNumber int, success bool, message string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO import_job_rows (job_id, row_number, success, message)
		 VALUES ($1, $2, $3, $4)`,
		jobID, rowNumber, success, message)
	if err != nil {
		return fmt.Errorf("failed to insert import row result: %w", err)
	}
	return nil
}

// ListRows returns the per-row results for a job in spreadsheet order
func (r *ImportRepository) ListRows(ctx context.Context, jobID int64) ([]models.ImportJobRow, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, job_id, row_number, success, message FROM import_job_rows
		 WHERE job_id = $1 ORDER BY row_number ASC`,
		jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list import rows: %w", err)
	}
	defer rows.Close()

	var out []models.ImportJobRow
	for rows.Next() {
		var row models.ImportJobRow
		if err := rows.Scan(&row.ID, &row.JobID, &row.RowNumber, &row.Success, &row.Message); err != nil {
			return nil, fmt.Errorf("failed to scan import row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate import rows: %w", err)
	}
	return out, nil
}

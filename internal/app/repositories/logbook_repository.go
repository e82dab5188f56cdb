package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deniz/stajlink/internal/app/models"
	"github.com/deniz/stajlink/internal/pkg/apperrors"
)

// LogbookRepository handles staj defteri database operations, including the
// file swap that must never leave the row pointing at missing bytes.
type LogbookRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewLogbookRepository creates a new LogbookRepository
func NewLogbookRepository(db *pgxpool.Pool) *LogbookRepository {
	return &LogbookRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *LogbookRepository) baseSelect() squirrel.SelectBuilder {
	return r.sb.Select(
		"d.id", "d.basvuru_id", "d.status", "d.file_id", "d.created_at", "d.updated_at",
		"f.id", "f.file_name", "f.file_path", "f.file_size", "f.mime_type", "f.created_at",
		"a.student_id", "a.company_id", "a.status",
	).
		From("staj_defterleri d").
		LeftJoin("files f ON d.file_id = f.id").
		Join("staj_basvurulari a ON d.basvuru_id = a.id")
}

func scanLogbookRow(row pgx.Row) (*models.Logbook, error) {
	var (
		l        models.Logbook
		fileID   *int64
		fileName *string
		filePath *string
		fileSize *int64
		fileMime *string
		fileAt   *time.Time
		app      models.Application
	)
	err := row.Scan(&l.ID, &l.BasvuruID, &l.Status, &l.FileID, &l.CreatedAt, &l.UpdatedAt,
		&fileID, &fileName, &filePath, &fileSize, &fileMime, &fileAt,
		&app.StudentID, &app.CompanyID, &app.Status)
	if err != nil {
		return nil, err
	}
	if fileID != nil {
		l.File = &models.File{
			ID:           *fileID,
			FileName:     *fileName,
			FilePath:     *filePath,
			FileSize:     *fileSize,
			MimeType:     *fileMime,
			ResourceType: models.ResourceLogbookPDF,
			ResourceID:   l.ID,
			CreatedAt:    *fileAt,
		}
	}
	app.ID = l.BasvuruID
	l.Application = &app
	return &l, nil
}

// GetByID retrieves a logbook with its file and owning application; nil when absent
func (r *LogbookRepository) GetByID(ctx context.Context, id int64) (*models.Logbook, error) {
	sql, args, err := r.baseSelect().Where(squirrel.Eq{"d.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get logbook query: %w", err)
	}

	logbook, err := scanLogbookRow(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get logbook: %w", err)
	}
	return logbook, nil
}

// GetByBasvuruID retrieves the logbook of an application; nil when absent
func (r *LogbookRepository) GetByBasvuruID(ctx context.Context, basvuruID int64) (*models.Logbook, error) {
	sql, args, err := r.baseSelect().Where(squirrel.Eq{"d.basvuru_id": basvuruID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get logbook query: %w", err)
	}

	logbook, err := scanLogbookRow(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get logbook by application: %w", err)
	}
	return logbook, nil
}

// AttachFile points the logbook at a newly stored PDF and marks it UPLOADED,
// replacing any previous file record in the same transaction. The new bytes
// are already durable when this runs; the caller removes the returned old
// path only after the transaction commits, so there is no window where the
// row references missing bytes.
func (r *LogbookRepository) AttachFile(ctx context.Context, logbookID int64, stored models.File) (oldPath string, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status models.LogbookStatus
	var oldFileID *int64
	err = tx.QueryRow(ctx,
		`SELECT status, file_id FROM staj_defterleri WHERE id = $1 FOR UPDATE`, logbookID).
		Scan(&status, &oldFileID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrLogbookNotFound
		}
		return "", fmt.Errorf("failed to lock logbook: %w", err)
	}

	if status == models.LogbookApproved {
		return "", apperrors.NewConflictError("logbook is APPROVED, expected WAITING or UPLOADED")
	}

	var newFileID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO files (file_name, file_path, file_size, mime_type, resource_type, resource_id, uploaded_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		stored.FileName, stored.FilePath, stored.FileSize, stored.MimeType,
		models.ResourceLogbookPDF, logbookID, stored.UploadedBy).
		Scan(&newFileID)
	if err != nil {
		return "", fmt.Errorf("failed to insert file record: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE staj_defterleri SET file_id = $2, status = 'UPLOADED', updated_at = NOW() WHERE id = $1`,
		logbookID, newFileID); err != nil {
		return "", fmt.Errorf("failed to attach file to logbook: %w", err)
	}

	if oldFileID != nil {
		if err := tx.QueryRow(ctx,
			`DELETE FROM files WHERE id = $1 RETURNING file_path`, *oldFileID).Scan(&oldPath); err != nil {
			return "", fmt.Errorf("failed to delete previous file record: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit file attach: %w", err)
	}
	return oldPath, nil
}

// DetachFile clears the logbook's file and reverts it to WAITING. The file
// row is removed in the same transaction; the caller unlinks the returned
// path after commit.
func (r *LogbookRepository) DetachFile(ctx context.Context, logbookID int64) (oldPath string, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status models.LogbookStatus
	var fileID *int64
	err = tx.QueryRow(ctx,
		`SELECT status, file_id FROM staj_defterleri WHERE id = $1 FOR UPDATE`, logbookID).
		Scan(&status, &fileID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrLogbookNotFound
		}
		return "", fmt.Errorf("failed to lock logbook: %w", err)
	}

	if fileID == nil {
		return "", apperrors.ErrLogbookNoFile
	}
	if status != models.LogbookUploaded {
		return "", apperrors.NewConflictError(fmt.Sprintf("logbook is %s, expected UPLOADED", status))
	}

	if _, err := tx.Exec(ctx,
		`UPDATE staj_defterleri SET file_id = NULL, status = 'WAITING', updated_at = NOW() WHERE id = $1`,
		logbookID); err != nil {
		return "", fmt.Errorf("failed to detach file from logbook: %w", err)
	}

	if err := tx.QueryRow(ctx,
		`DELETE FROM files WHERE id = $1 RETURNING file_path`, *fileID).Scan(&oldPath); err != nil {
		return "", fmt.Errorf("failed to delete file record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit file detach: %w", err)
	}
	return oldPath, nil
}

// UpdateStatus transitions a logbook from an expected status to a new one.
// Approval additionally requires an attached file. Returns false when the
// guard did not match.
func (r *LogbookRepository) UpdateStatus(ctx context.Context, id int64, from, to models.LogbookStatus) (bool, error) {
	builder := r.sb.Update("staj_defterleri").
		Set("status", to).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id, "status": from})
	if to == models.LogbookApproved {
		builder = builder.Where("file_id IS NOT NULL")
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build logbook status query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update logbook status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ForceStatus is the admin override: any state to any state, recorded in the
// audit log within the same transaction. Forcing APPROVED still requires a
// file, and the file is never deleted here.
func (r *LogbookRepository) ForceStatus(ctx context.Context, id int64, newStatus models.LogbookStatus, actorID int64) (*models.LogbookAuditEntry, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var oldStatus models.LogbookStatus
	var fileID *int64
	err = tx.QueryRow(ctx,
		`SELECT status, file_id FROM staj_defterleri WHERE id = $1 FOR UPDATE`, id).
		Scan(&oldStatus, &fileID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrLogbookNotFound
		}
		return nil, fmt.Errorf("failed to lock logbook: %w", err)
	}

	if newStatus == models.LogbookApproved && fileID == nil {
		return nil, apperrors.NewConflictError("cannot force APPROVED: logbook has no file")
	}

	if _, err := tx.Exec(ctx,
		`UPDATE staj_defterleri SET status = $2, updated_at = NOW() WHERE id = $1`, id, newStatus); err != nil {
		return nil, fmt.Errorf("failed to force logbook status: %w", err)
	}

	entry := &models.LogbookAuditEntry{
		LogbookID: id,
		ActorID:   actorID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO logbook_audit_log (logbook_id, actor_id, old_status, new_status)
		 VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		id, actorID, oldStatus, newStatus).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record audit entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit status override: %w", err)
	}
	return entry, nil
}

// ListAudit returns the admin override history of a logbook
func (r *LogbookRepository) ListAudit(ctx context.Context, logbookID int64) ([]models.LogbookAuditEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, logbook_id, actor_id, old_status, new_status, created_at
		 FROM logbook_audit_log WHERE logbook_id = $1 ORDER BY created_at DESC`, logbookID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []models.LogbookAuditEntry
	for rows.Next() {
		var e models.LogbookAuditEntry
		if err := rows.Scan(&e.ID, &e.LogbookID, &e.ActorID, &e.OldStatus, &e.NewStatus, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountByStatus returns logbook counts grouped by status
func (r *LogbookRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM staj_defterleri GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count logbooks by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

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
	"github.com/deniz/stajlink/internal/pkg/logger"
)

// ApplicationRepository handles staj başvurusu database operations.
// Every status transition is a compare-and-set on the current status so that
// concurrent decisions on the same row cannot both succeed.
type ApplicationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(db *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

const applicationColumns = "a.id, a.student_id, a.company_id, a.position, a.description, a.start_date, a.end_date, a.status, a.rejection_reason, a.created_at, a.updated_at"

func scanApplicationRow(row pgx.Row) (*models.Application, error) {
	var (
		a       models.Application
		student models.User
		company models.Company
	)
	err := row.Scan(&a.ID, &a.StudentID, &a.CompanyID, &a.Position, &a.Description,
		&a.StartDate, &a.EndDate, &a.Status, &a.RejectionReason, &a.CreatedAt, &a.UpdatedAt,
		&student.FirstName, &student.LastName, &student.Email, &company.Name, &company.Email)
	if err != nil {
		return nil, err
	}
	student.ID = a.StudentID
	company.ID = a.CompanyID
	a.Student = &student
	a.Company = &company
	return &a, nil
}

func (r *ApplicationRepository) baseSelect() squirrel.SelectBuilder {
	return r.sb.Select(
		applicationColumns,
		"u.first_name", "u.last_name", "u.email",
		"c.name", "c.email",
	).
		From("staj_basvurulari a").
		Join("users u ON a.student_id = u.id").
		Join("companies c ON a.company_id = c.id")
}

// Create inserts a new application in PENDING state
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) (*models.Application, error) {
	sql, args, err := r.sb.Insert("staj_basvurulari").
		Columns("student_id", "company_id", "position", "description", "start_date", "end_date", "status").
		Values(app.StudentID, app.CompanyID, app.Position, app.Description, app.StartDate, app.EndDate, models.ApplicationPending).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert application query: %w", err)
	}

	created := *app
	created.Status = models.ApplicationPending
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt); err != nil {
		logger.Error().Err(err).Int64("studentId", app.StudentID).Msg("Error inserting application")
		return nil, fmt.Errorf("failed to insert application: %w", err)
	}
	return &created, nil
}

// GetByID retrieves an application with its student and company; nil when absent
func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*models.Application, error) {
	sql, args, err := r.baseSelect().Where(squirrel.Eq{"a.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get application query: %w", err)
	}

	app, err := scanApplicationRow(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return app, nil
}

// List retrieves applications with optional filters and pagination
func (r *ApplicationRepository) List(ctx context.Context, studentID, companyID int64, status string, offset uint64, limit int) ([]models.Application, int64, error) {
	where := squirrel.And{}
	if studentID > 0 {
		where = append(where, squirrel.Eq{"a.student_id": studentID})
	}
	if companyID > 0 {
		where = append(where, squirrel.Eq{"a.company_id": companyID})
	}
	if status != "" {
		where = append(where, squirrel.Eq{"a.status": status})
	}

	countSql, countArgs, err := r.sb.Select("COUNT(*)").From("staj_basvurulari a").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count applications query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSql, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}
	if total == 0 {
		return []models.Application{}, 0, nil
	}

	sql, args, err := r.baseSelect().Where(where).
		OrderBy("a.created_at DESC").Offset(offset).Limit(uint64(limit)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list applications query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var apps []models.Application
	for rows.Next() {
		app, err := scanApplicationRow(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, *app)
	}
	return apps, total, rows.Err()
}

// HasOverlapping reports whether the student already has a PENDING or APPROVED
// application whose half-open date range intersects [start, end). A non-zero
// excludeID leaves that application out of the check, used when its own dates
// are being changed.
func (r *ApplicationRepository) HasOverlapping(ctx context.Context, studentID int64, start, end time.Time, excludeID int64) (bool, error) {
	const sql = `
		SELECT EXISTS (
			SELECT 1 FROM staj_basvurulari
			WHERE student_id = $1
			  AND id <> $4
			  AND status IN ('PENDING', 'APPROVED')
			  AND start_date < $3
			  AND $2 < end_date
		)`

	var exists bool
	if err := r.db.QueryRow(ctx, sql, studentID, start, end, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check overlapping applications: %w", err)
	}
	return exists, nil
}

// UpdateStatus transitions an application from an expected status to a new
// one. Returns false when the row was not in the expected status, which is
// how a concurrent loser learns it lost.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id int64, from, to models.ApplicationStatus, rejectionReason *string) (bool, error) {
	builder := r.sb.Update("staj_basvurulari").
		Set("status", to).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id, "status": from})
	if rejectionReason != nil {
		builder = builder.Set("rejection_reason", *rejectionReason)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build status update query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update application status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ApproveAndCreateLogbook transitions PENDING to APPROVED and creates the
// empty logbook in the same transaction. Both commit or neither.
func (r *ApplicationRepository) ApproveAndCreateLogbook(ctx context.Context, id int64) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE staj_basvurulari SET status = 'APPROVED', updated_at = NOW() WHERE id = $1 AND status = 'PENDING'`, id)
	if err != nil {
		return false, fmt.Errorf("failed to approve application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO staj_defterleri (basvuru_id, status) VALUES ($1, 'WAITING')`, id); err != nil {
		return false, fmt.Errorf("failed to create logbook: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit approval: %w", err)
	}
	return true, nil
}

// CancelApproved cancels an APPROVED application, but only while its logbook
// is still WAITING. The guard and the transition are a single statement so a
// concurrent logbook upload cannot slip in between.
func (r *ApplicationRepository) CancelApproved(ctx context.Context, id int64) (bool, error) {
	const sql = `
		UPDATE staj_basvurulari a
		SET status = 'CANCELLED', updated_at = NOW()
		WHERE a.id = $1
		  AND a.status = 'APPROVED'
		  AND EXISTS (
			SELECT 1 FROM staj_defterleri d
			WHERE d.basvuru_id = a.id AND d.status = 'WAITING'
		  )`

	tag, err := r.db.Exec(ctx, sql, id)
	if err != nil {
		return false, fmt.Errorf("failed to cancel approved application: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// UpdateDates changes the internship period, only while the application is
// still PENDING.
func (r *ApplicationRepository) UpdateDates(ctx context.Context, id int64, start, end time.Time) (bool, error) {
	const sql = `
		UPDATE staj_basvurulari
		SET start_date = $2, end_date = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'PENDING'`

	tag, err := r.db.Exec(ctx, sql, id, start, end)
	if err != nil {
		return false, fmt.Errorf("failed to update application dates: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Delete removes an application and everything hanging off it. The logbook
// and its audit rows cascade; file rows carry no foreign key to the
// application, so they are deleted explicitly and their storage paths are
// returned for the caller to unlink.
func (r *ApplicationRepository) Delete(ctx context.Context, id int64) ([]string, bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	const filePredicate = `
		(resource_type = $2 AND resource_id IN (
			SELECT id FROM staj_defterleri WHERE basvuru_id = $1))
		OR (resource_type <> $2 AND resource_id = $1)`

	rows, err := tx.Query(ctx, `SELECT file_path FROM files WHERE `+filePredicate,
		id, models.ResourceLogbookPDF)
	if err != nil {
		return nil, false, fmt.Errorf("failed to collect application files: %w", err)
	}
	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			rows.Close()
			return nil, false, fmt.Errorf("failed to scan file path: %w", err)
		}
		paths = append(paths, path)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("failed to read application files: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM files WHERE `+filePredicate,
		id, models.ResourceLogbookPDF); err != nil {
		return nil, false, fmt.Errorf("failed to delete application files: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM staj_basvurulari WHERE id = $1`, id)
	if err != nil {
		return nil, false, fmt.Errorf("failed to delete application: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to commit application delete: %w", err)
	}
	return paths, tag.RowsAffected() == 1, nil
}

// CountByStatus returns application counts grouped by status
func (r *ApplicationRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM staj_basvurulari GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications by status: %w", err)
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

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

// FileRepository handles stored-file metadata for application documents
// (transcript, insurance, service). Logbook PDFs are managed through
// LogbookRepository because their swap is coupled to the logbook status.
type FileRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewFileRepository creates a new FileRepository
func NewFileRepository(db *pgxpool.Pool) *FileRepository {
	return &FileRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

const fileColumns = "id, file_name, file_path, file_size, mime_type, resource_type, resource_id, uploaded_by, created_at"

func scanFile(row pgx.Row) (*models.File, error) {
	var f models.File
	err := row.Scan(&f.ID, &f.FileName, &f.FilePath, &f.FileSize, &f.MimeType,
		&f.ResourceType, &f.ResourceID, &f.UploadedBy, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// GetByResource retrieves the file attached to an entity; nil when absent
func (r *FileRepository) GetByResource(ctx context.Context, resourceType models.ResourceType, resourceID int64) (*models.File, error) {
	sql, args, err := r.sb.Select(fileColumns).From("files").
		Where(squirrel.Eq{"resource_type": resourceType, "resource_id": resourceID}).
		OrderBy("created_at DESC").Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get file query: %w", err)
	}

	file, err := scanFile(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get file by resource: %w", err)
	}
	return file, nil
}

// ReplaceForResource inserts the new file record and removes any previous one
// for the same entity in one transaction. The new bytes are already durable;
// the caller unlinks the returned old path only after commit.
func (r *FileRepository) ReplaceForResource(ctx context.Context, file *models.File) (created *models.File, oldPath string, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var oldID *int64
	err = tx.QueryRow(ctx,
		`SELECT id FROM files WHERE resource_type = $1 AND resource_id = $2
		 ORDER BY created_at DESC LIMIT 1 FOR UPDATE`,
		file.ResourceType, file.ResourceID).Scan(&oldID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", fmt.Errorf("failed to lock previous file: %w", err)
	}

	created = &models.File{}
	*created = *file
	err = tx.QueryRow(ctx,
		`INSERT INTO files (file_name, file_path, file_size, mime_type, resource_type, resource_id, uploaded_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`,
		file.FileName, file.FilePath, file.FileSize, file.MimeType,
		file.ResourceType, file.ResourceID, file.UploadedBy).
		Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, "", fmt.Errorf("failed to insert file record: %w", err)
	}

	if oldID != nil {
		if err := tx.QueryRow(ctx,
			`DELETE FROM files WHERE id = $1 RETURNING file_path`, *oldID).Scan(&oldPath); err != nil {
			return nil, "", fmt.Errorf("failed to delete previous file record: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, "", fmt.Errorf("failed to commit file replace: %w", err)
	}
	return created, oldPath, nil
}

// Delete removes a file record and returns its storage path for unlinking
func (r *FileRepository) Delete(ctx context.Context, id int64) (string, error) {
	var path string
	err := r.db.QueryRow(ctx, `DELETE FROM files WHERE id = $1 RETURNING file_path`, id).Scan(&path)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to delete file record: %w", err)
	}
	return path, nil
}

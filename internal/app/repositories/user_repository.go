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
	"github.com/deniz/stajlink/internal/pkg/dberrors"
	"github.com/deniz/stajlink/internal/pkg/logger"
)

// UserRepository handles user database operations
type UserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

const userColumns = "id, email, password, first_name, last_name, role_type, student_no, is_active, last_login_at, created_at, updated_at"

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName,
		&u.RoleType, &u.StudentNo, &u.IsActive, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user and returns it with its generated fields
func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	sql, args, err := r.sb.Insert("users").
		Columns("email", "password", "first_name", "last_name", "role_type", "student_no", "is_active").
		Values(user.Email, user.Password, user.FirstName, user.LastName, user.RoleType, user.StudentNo, user.IsActive).
		Suffix("RETURNING " + userColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert user query: %w", err)
	}

	created, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		if dberrors.IsDuplicateConstraintError(err, "users_student_no_key") {
			return nil, apperrors.ErrStudentNoExists
		}
		logger.Error().Err(err).Str("email", user.Email).Msg("Error inserting user")
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return created, nil
}

// GetByID retrieves a user by id; returns nil when absent
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns).From("users").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email; returns nil when absent
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns).From("users").Where(squirrel.Eq{"email": email}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// List retrieves users filtered by role with pagination
func (r *UserRepository) List(ctx context.Context, roleType string, offset uint64, limit int) ([]models.User, int64, error) {
	where := squirrel.And{}
	if roleType != "" {
		where = append(where, squirrel.Eq{"role_type": roleType})
	}

	countSql, countArgs, err := r.sb.Select("COUNT(*)").From("users").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count users query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSql, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}
	if total == 0 {
		return []models.User{}, 0, nil
	}

	sql, args, err := r.sb.Select(userColumns).From("users").Where(where).
		OrderBy("created_at DESC").Offset(offset).Limit(uint64(limit)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

// Update applies partial changes to a user
func (r *UserRepository) Update(ctx context.Context, id int64, firstName, lastName *string, isActive *bool) (*models.User, error) {
	builder := r.sb.Update("users").Set("updated_at", time.Now())
	if firstName != nil {
		builder = builder.Set("first_name", *firstName)
	}
	if lastName != nil {
		builder = builder.Set("last_name", *lastName)
	}
	if isActive != nil {
		builder = builder.Set("is_active", *isActive)
	}

	sql, args, err := builder.Where(squirrel.Eq{"id": id}).Suffix("RETURNING " + userColumns).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update user query: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// Delete removes a user
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("users").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete user query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// UpdateLastLogin stamps the user's last login time
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Update("users").Set("last_login_at", time.Now()).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build last login query: %w", err)
	}
	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// CountByRole counts users holding a role
func (r *UserRepository) CountByRole(ctx context.Context, roleType models.RoleType) (int64, error) {
	sql, args, err := r.sb.Select("COUNT(*)").From("users").Where(squirrel.Eq{"role_type": roleType}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}
	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users by role: %w", err)
	}
	return count, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"marketplace-backoffice/internal/core/domain"
	"marketplace-backoffice/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, name, email, phone, password_hash, role, status, kyc_status, plan, status_reason, must_change_password, created_at, updated_at`

// UserRepo implements ports.UserRepository.
type UserRepo struct {
	pool Pool
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(pool Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// Create inserts a new user into the database.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (id, name, email, phone, password_hash, role, status, kyc_status, plan, status_reason, must_change_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.pool.Exec(ctx, query,
		u.ID, u.Name, u.Email, u.Phone, u.PasswordHash,
		u.Role, u.Status, u.KYCStatus, u.Plan, u.StatusReason,
		u.MustChangePassword, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID fetches a user by its UUID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail fetches a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

// UpdateStatus conditionally swaps the account status. Returns false
// when the row's status no longer matches from (the CAS lost).
func (r *UserRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.UserStatus, reason *string) (bool, error) {
	query := `UPDATE users SET status = $1, status_reason = COALESCE($2, status_reason), updated_at = NOW()
		WHERE id = $3 AND status = $4`

	tag, err := r.pool.Exec(ctx, query, to, reason, id, from)
	if err != nil {
		return false, fmt.Errorf("update user status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// UpdateKYCStatus conditionally swaps the KYC status, storing the plan
// in the same write when provided.
func (r *UserRepo) UpdateKYCStatus(ctx context.Context, id uuid.UUID, from, to domain.KYCStatus, plan *domain.Plan) (bool, error) {
	query := `UPDATE users SET kyc_status = $1, plan = COALESCE($2, plan), updated_at = NOW()
		WHERE id = $3 AND kyc_status = $4`

	tag, err := r.pool.Exec(ctx, query, to, plan, id, from)
	if err != nil {
		return false, fmt.Errorf("update user kyc status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ResetCredential replaces the password hash unconditionally.
func (r *UserRepo) ResetCredential(ctx context.Context, id uuid.UUID, passwordHash string, mustChange bool) error {
	query := `UPDATE users SET password_hash = $1, must_change_password = $2, updated_at = NOW() WHERE id = $3`

	tag, err := r.pool.Exec(ctx, query, passwordHash, mustChange, id)
	if err != nil {
		return fmt.Errorf("reset user credential: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %s", id)
	}
	return nil
}

// Delete hard-removes a user row.
func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %s", id)
	}
	return nil
}

// List fetches users with filtering and pagination.
func (r *UserRepo) List(ctx context.Context, params ports.UserListParams) ([]domain.User, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.Role != nil {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argIdx))
		args = append(args, *params.Role)
		argIdx++
	}
	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM users %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT %s FROM users %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		userColumns, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u := domain.User{}
		err := rows.Scan(
			&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash,
			&u.Role, &u.Status, &u.KYCStatus, &u.Plan, &u.StatusReason,
			&u.MustChangePassword, &u.CreatedAt, &u.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate user rows: %w", err)
	}
	return users, total, nil
}

// CountByStatus counts users in a given account status.
func (r *UserRepo) CountByStatus(ctx context.Context, status domain.UserStatus) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count users by status: %w", err)
	}
	return count, nil
}

// scanUser is a helper to scan a single row into a User.
func (r *UserRepo) scanUser(row pgx.Row) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash,
		&u.Role, &u.Status, &u.KYCStatus, &u.Plan, &u.StatusReason,
		&u.MustChangePassword, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

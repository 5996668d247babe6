package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace-backoffice/internal/core/domain"
	"marketplace-backoffice/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const kycColumns = `id, user_id, documents, status, rejection_reason, reviewed_at, created_at, updated_at`

// KYCRepo implements ports.KYCRepository.
type KYCRepo struct {
	pool Pool
}

// NewKYCRepo creates a new KYCRepo.
func NewKYCRepo(pool Pool) *KYCRepo {
	return &KYCRepo{pool: pool}
}

// Create inserts a new KYC submission. The user_id unique constraint
// enforces one submission per user.
func (r *KYCRepo) Create(ctx context.Context, s *domain.KYCSubmission) error {
	query := `INSERT INTO kyc_submissions (id, user_id, documents, status, rejection_reason, reviewed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		s.ID, s.UserID, s.Documents, s.Status,
		s.RejectionReason, s.ReviewedAt, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert kyc submission: %w", err)
	}
	return nil
}

// GetByID fetches a submission by its UUID.
func (r *KYCRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.KYCSubmission, error) {
	query := fmt.Sprintf(`SELECT %s FROM kyc_submissions WHERE id = $1`, kycColumns)
	return r.scanSubmission(r.pool.QueryRow(ctx, query, id))
}

// GetByUserID fetches a user's submission.
func (r *KYCRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.KYCSubmission, error) {
	query := fmt.Sprintf(`SELECT %s FROM kyc_submissions WHERE user_id = $1`, kycColumns)
	return r.scanSubmission(r.pool.QueryRow(ctx, query, userID))
}

// Review conditionally moves a pending submission to its outcome.
func (r *KYCRepo) Review(ctx context.Context, id uuid.UUID, to domain.KYCStatus, reason *string, reviewedAt time.Time) (bool, error) {
	query := `UPDATE kyc_submissions
		SET status = $1, rejection_reason = $2, reviewed_at = $3, updated_at = NOW()
		WHERE id = $4 AND status = $5`

	tag, err := r.pool.Exec(ctx, query, to, reason, reviewedAt, id, domain.KYCStatusPending)
	if err != nil {
		return false, fmt.Errorf("review kyc submission: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// List fetches submissions with filtering and pagination.
func (r *KYCRepo) List(ctx context.Context, params ports.KYCListParams) ([]domain.KYCSubmission, int64, error) {
	where := ""
	var args []any
	argIdx := 1

	if params.Status != nil {
		where = fmt.Sprintf("WHERE status = $%d", argIdx)
		args = append(args, *params.Status)
		argIdx++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM kyc_submissions %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count kyc submissions: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT %s FROM kyc_submissions %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		kycColumns, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list kyc submissions: %w", err)
	}
	defer rows.Close()

	var subs []domain.KYCSubmission
	for rows.Next() {
		s := domain.KYCSubmission{}
		err := rows.Scan(
			&s.ID, &s.UserID, &s.Documents, &s.Status,
			&s.RejectionReason, &s.ReviewedAt, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan kyc row: %w", err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate kyc rows: %w", err)
	}
	return subs, total, nil
}

// CountByStatus counts submissions in a given status.
func (r *KYCRepo) CountByStatus(ctx context.Context, status domain.KYCStatus) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM kyc_submissions WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count kyc submissions by status: %w", err)
	}
	return count, nil
}

// scanSubmission is a helper to scan a single row into a KYCSubmission.
func (r *KYCRepo) scanSubmission(row pgx.Row) (*domain.KYCSubmission, error) {
	s := &domain.KYCSubmission{}
	err := row.Scan(
		&s.ID, &s.UserID, &s.Documents, &s.Status,
		&s.RejectionReason, &s.ReviewedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan kyc submission: %w", err)
	}
	return s, nil
}

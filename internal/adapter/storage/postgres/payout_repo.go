package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace-backoffice/internal/core/domain"
	"marketplace-backoffice/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const payoutColumns = `id, order_id, product_id, supplier_id, payable_amount, paid_amount, mode, status, paid_at, created_at, updated_at`

// PayoutRepo implements ports.PayoutRepository.
type PayoutRepo struct {
	pool Pool
}

// NewPayoutRepo creates a new PayoutRepo.
func NewPayoutRepo(pool Pool) *PayoutRepo {
	return &PayoutRepo{pool: pool}
}

// Create inserts a new payout row.
func (r *PayoutRepo) Create(ctx context.Context, p *domain.Payout) error {
	query := `INSERT INTO payouts (id, order_id, product_id, supplier_id, payable_amount, paid_amount, mode, status, paid_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.OrderID, p.ProductID, p.SupplierID,
		p.PayableAmount, p.PaidAmount, p.Mode, p.Status,
		p.PaidAt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payout: %w", err)
	}
	return nil
}

// GetByID fetches a payout by its UUID.
func (r *PayoutRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payout, error) {
	query := fmt.Sprintf(`SELECT %s FROM payouts WHERE id = $1`, payoutColumns)
	return r.scanPayout(r.pool.QueryRow(ctx, query, id))
}

// GetByOrderID fetches the payout attached to an order.
func (r *PayoutRepo) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Payout, error) {
	query := fmt.Sprintf(`SELECT %s FROM payouts WHERE order_id = $1`, payoutColumns)
	return r.scanPayout(r.pool.QueryRow(ctx, query, orderID))
}

// MarkPaid conditionally settles a pending payout.
func (r *PayoutRepo) MarkPaid(ctx context.Context, id uuid.UUID, amount int64, mode domain.PayoutMode, paidAt time.Time) (bool, error) {
	query := `UPDATE payouts
		SET status = $1, paid_amount = $2, mode = $3, paid_at = $4, updated_at = NOW()
		WHERE id = $5 AND status = $6`

	tag, err := r.pool.Exec(ctx, query,
		domain.PayoutStatusPaid, amount, mode, paidAt,
		id, domain.PayoutStatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("mark payout paid: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// List fetches payouts with filtering and pagination.
func (r *PayoutRepo) List(ctx context.Context, params ports.PayoutListParams) ([]domain.Payout, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.SupplierID != nil {
		conditions = append(conditions, fmt.Sprintf("supplier_id = $%d", argIdx))
		args = append(args, *params.SupplierID)
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

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM payouts %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count payouts: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT %s FROM payouts %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		payoutColumns, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list payouts: %w", err)
	}
	defer rows.Close()

	var payouts []domain.Payout
	for rows.Next() {
		p := domain.Payout{}
		err := rows.Scan(
			&p.ID, &p.OrderID, &p.ProductID, &p.SupplierID,
			&p.PayableAmount, &p.PaidAmount, &p.Mode, &p.Status,
			&p.PaidAt, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan payout row: %w", err)
		}
		payouts = append(payouts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate payout rows: %w", err)
	}
	return payouts, total, nil
}

// CountByStatus counts payouts in a given settlement status.
func (r *PayoutRepo) CountByStatus(ctx context.Context, status domain.PayoutStatus) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM payouts WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count payouts by status: %w", err)
	}
	return count, nil
}

// scanPayout is a helper to scan a single row into a Payout.
func (r *PayoutRepo) scanPayout(row pgx.Row) (*domain.Payout, error) {
	p := &domain.Payout{}
	err := row.Scan(
		&p.ID, &p.OrderID, &p.ProductID, &p.SupplierID,
		&p.PayableAmount, &p.PaidAmount, &p.Mode, &p.Status,
		&p.PaidAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan payout: %w", err)
	}
	return p, nil
}

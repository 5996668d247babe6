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

const orderColumns = `id, product_id, seller_id, supplier_id, quantity, total_amount, status, admin_notes, rejection_reason, created_at, updated_at`

// OrderRepo implements ports.OrderRepository.
type OrderRepo struct {
	pool Pool
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(pool Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

// Create inserts a new order into the database.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	query := `INSERT INTO orders (id, product_id, seller_id, supplier_id, quantity, total_amount, status, admin_notes, rejection_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		o.ID, o.ProductID, o.SellerID, o.SupplierID,
		o.Quantity, o.TotalAmount, o.Status,
		o.AdminNotes, o.RejectionReason, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID fetches an order by its UUID.
func (r *OrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)
	return r.scanOrder(r.pool.QueryRow(ctx, query, id))
}

// UpdateStatus conditionally swaps the order status. The write only
// lands when the row's status still equals from; a false return means
// the state moved underneath the caller.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus, notes, reason *string) (bool, error) {
	query := `UPDATE orders
		SET status = $1,
		    admin_notes = COALESCE($2, admin_notes),
		    rejection_reason = COALESCE($3, rejection_reason),
		    updated_at = NOW()
		WHERE id = $4 AND status = $5`

	tag, err := r.pool.Exec(ctx, query, to, notes, reason, id, from)
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// List fetches orders with filtering and pagination.
func (r *OrderRepo) List(ctx context.Context, params ports.OrderListParams) ([]domain.Order, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.SellerID != nil {
		conditions = append(conditions, fmt.Sprintf("seller_id = $%d", argIdx))
		args = append(args, *params.SellerID)
		argIdx++
	}
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

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM orders %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT %s FROM orders %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o := domain.Order{}
		err := rows.Scan(
			&o.ID, &o.ProductID, &o.SellerID, &o.SupplierID,
			&o.Quantity, &o.TotalAmount, &o.Status,
			&o.AdminNotes, &o.RejectionReason, &o.CreatedAt, &o.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}
	return orders, total, nil
}

// CountByStatus counts orders in a given lifecycle status.
func (r *OrderRepo) CountByStatus(ctx context.Context, status domain.OrderStatus) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count orders by status: %w", err)
	}
	return count, nil
}

// scanOrder is a helper to scan a single row into an Order.
func (r *OrderRepo) scanOrder(row pgx.Row) (*domain.Order, error) {
	o := &domain.Order{}
	err := row.Scan(
		&o.ID, &o.ProductID, &o.SellerID, &o.SupplierID,
		&o.Quantity, &o.TotalAmount, &o.Status,
		&o.AdminNotes, &o.RejectionReason, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	return o, nil
}

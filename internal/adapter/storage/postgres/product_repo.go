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

const productColumns = `id, supplier_id, name, sku, description, base_price, gst_rate, stock, status, margin, final_price, rejection_reason, approved_at, created_at, updated_at`

// ProductRepo implements ports.ProductRepository.
type ProductRepo struct {
	pool Pool
}

// NewProductRepo creates a new ProductRepo.
func NewProductRepo(pool Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

// Create inserts a new product into the database.
func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	query := `INSERT INTO products (id, supplier_id, name, sku, description, base_price, gst_rate, stock, status, margin, final_price, rejection_reason, approved_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.SupplierID, p.Name, p.SKU, p.Description,
		p.BasePrice, p.GSTRate, p.Stock, p.Status,
		p.Margin, p.FinalPrice, p.RejectionReason, p.ApprovedAt,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID fetches a product by its UUID.
func (r *ProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)
	return r.scanProduct(r.pool.QueryRow(ctx, query, id))
}

// Approve conditionally moves a pending product to approved, storing
// the margin and the derived final price. Returns false when the
// product was no longer pending.
func (r *ProductRepo) Approve(ctx context.Context, id uuid.UUID, margin, finalPrice int64, approvedAt time.Time) (bool, error) {
	query := `UPDATE products
		SET status = $1, margin = $2, final_price = $3, approved_at = $4, updated_at = NOW()
		WHERE id = $5 AND status = $6`

	tag, err := r.pool.Exec(ctx, query,
		domain.ProductStatusApproved, margin, finalPrice, approvedAt,
		id, domain.ProductStatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("approve product: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Reject conditionally moves a pending product to rejected.
func (r *ProductRepo) Reject(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	query := `UPDATE products
		SET status = $1, rejection_reason = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4`

	tag, err := r.pool.Exec(ctx, query,
		domain.ProductStatusRejected, reason, id, domain.ProductStatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("reject product: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// List fetches products with filtering and pagination.
func (r *ProductRepo) List(ctx context.Context, params ports.ProductListParams) ([]domain.Product, int64, error) {
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

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT %s FROM products %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		productColumns, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p := domain.Product{}
		err := rows.Scan(
			&p.ID, &p.SupplierID, &p.Name, &p.SKU, &p.Description,
			&p.BasePrice, &p.GSTRate, &p.Stock, &p.Status,
			&p.Margin, &p.FinalPrice, &p.RejectionReason, &p.ApprovedAt,
			&p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, total, nil
}

// CountByStatus counts products in a given approval status.
func (r *ProductRepo) CountByStatus(ctx context.Context, status domain.ProductStatus) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count products by status: %w", err)
	}
	return count, nil
}

// scanProduct is a helper to scan a single row into a Product.
func (r *ProductRepo) scanProduct(row pgx.Row) (*domain.Product, error) {
	p := &domain.Product{}
	err := row.Scan(
		&p.ID, &p.SupplierID, &p.Name, &p.SKU, &p.Description,
		&p.BasePrice, &p.GSTRate, &p.Stock, &p.Status,
		&p.Margin, &p.FinalPrice, &p.RejectionReason, &p.ApprovedAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return p, nil
}

package ports

import (
	"context"
	"time"

	"marketplace-backoffice/internal/core/domain"

	"github.com/google/uuid"
)

// Status-changing repository methods are conditional writes: they only
// apply when the row's current status equals the expected prior value
// and report whether the swap happened. This compare-and-swap is the
// sole concurrency-control primitive in the system; two concurrent
// transitions on the same entity cannot both succeed.

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// UpdateStatus swaps the account status if it still equals from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.UserStatus, reason *string) (bool, error)
	// UpdateKYCStatus swaps the KYC status if it still equals from,
	// setting the plan (sellers) in the same write.
	UpdateKYCStatus(ctx context.Context, id uuid.UUID, from, to domain.KYCStatus, plan *domain.Plan) (bool, error)
	// ResetCredential replaces the password hash and flags the account
	// as requiring a password change.
	ResetCredential(ctx context.Context, id uuid.UUID, passwordHash string, mustChange bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params UserListParams) ([]domain.User, int64, error)
	CountByStatus(ctx context.Context, status domain.UserStatus) (int64, error)
}

// UserListParams holds filter + pagination for listing users.
type UserListParams struct {
	Role     *domain.Role
	Status   *domain.UserStatus
	Page     int
	PageSize int
}

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	// Approve moves pending -> approved, storing margin and the derived
	// final price. Returns false if the product was not pending.
	Approve(ctx context.Context, id uuid.UUID, margin, finalPrice int64, approvedAt time.Time) (bool, error)
	// Reject moves pending -> rejected with the mandatory reason.
	Reject(ctx context.Context, id uuid.UUID, reason string) (bool, error)
	List(ctx context.Context, params ProductListParams) ([]domain.Product, int64, error)
	CountByStatus(ctx context.Context, status domain.ProductStatus) (int64, error)
}

// ProductListParams holds filter + pagination for listing products.
type ProductListParams struct {
	SupplierID *uuid.UUID
	Status     *domain.ProductStatus
	Page       int
	PageSize   int
}

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	// UpdateStatus swaps the order status if it still equals from.
	// notes and reason are written when non-nil.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus, notes, reason *string) (bool, error)
	List(ctx context.Context, params OrderListParams) ([]domain.Order, int64, error)
	CountByStatus(ctx context.Context, status domain.OrderStatus) (int64, error)
}

// OrderListParams holds filter + pagination for listing orders.
type OrderListParams struct {
	SellerID   *uuid.UUID
	SupplierID *uuid.UUID
	Status     *domain.OrderStatus
	Page       int
	PageSize   int
}

// KYCRepository defines persistence operations for KYC submissions.
type KYCRepository interface {
	Create(ctx context.Context, sub *domain.KYCSubmission) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.KYCSubmission, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.KYCSubmission, error)
	// Review moves pending -> approved/rejected with the review outcome.
	Review(ctx context.Context, id uuid.UUID, to domain.KYCStatus, reason *string, reviewedAt time.Time) (bool, error)
	List(ctx context.Context, params KYCListParams) ([]domain.KYCSubmission, int64, error)
	CountByStatus(ctx context.Context, status domain.KYCStatus) (int64, error)
}

// KYCListParams holds filter + pagination for listing KYC submissions.
type KYCListParams struct {
	Status   *domain.KYCStatus
	Page     int
	PageSize int
}

// PayoutRepository defines persistence operations for payouts.
type PayoutRepository interface {
	Create(ctx context.Context, payout *domain.Payout) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payout, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Payout, error)
	// MarkPaid moves pending -> paid recording amount and mode.
	MarkPaid(ctx context.Context, id uuid.UUID, amount int64, mode domain.PayoutMode, paidAt time.Time) (bool, error)
	List(ctx context.Context, params PayoutListParams) ([]domain.Payout, int64, error)
	CountByStatus(ctx context.Context, status domain.PayoutStatus) (int64, error)
}

// PayoutListParams holds filter + pagination for listing payouts.
type PayoutListParams struct {
	SupplierID *uuid.UUID
	Status     *domain.PayoutStatus
	Page       int
	PageSize   int
}

// TransitionRepository persists the append-only transition audit log.
type TransitionRepository interface {
	Append(ctx context.Context, rec *domain.TransitionRecord) error
	ListByEntity(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID) ([]domain.TransitionRecord, error)
}

// TxRepos bundles transaction-scoped repositories handed to a WithinTx
// callback. Writes made through them commit or roll back together.
type TxRepos struct {
	Users   UserRepository
	KYC     KYCRepository
	Orders  OrderRepository
	Payouts PayoutRepository
}

// Transactor runs a function inside one database transaction. Used
// where a lifecycle step must update more than one entity: a KYC
// review also moves the user record, an order approval also opens the
// supplier payout.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(TxRepos) error) error
}

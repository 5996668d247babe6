package ports

import (
	"context"
	"encoding/json"
	"time"

	"marketplace-backoffice/internal/core/domain"

	"github.com/google/uuid"
)

// Actor identifies the authenticated user performing an operation.
type Actor struct {
	ID   uuid.UUID
	Role domain.Role
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(userID uuid.UUID, role domain.Role) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID uuid.UUID
	Role   domain.Role
}

// NoticePublisher broadcasts change notices to connected admin
// clients. Delivery is best-effort and unordered; implementations must
// never block the caller for long and errors are logged, not surfaced.
type NoticePublisher interface {
	Publish(ctx context.Context, notice domain.Notice) error
}

// NoticeSink receives notices for local fan-out to connected sockets.
type NoticeSink interface {
	Broadcast(notice domain.Notice)
}

// --- Service Ports (Business Logic) ---

// AuthService defines registration and login.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, time.Time, *domain.User, error)
}

// RegisterRequest holds input for seller/supplier registration.
type RegisterRequest struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     domain.Role // seller or supplier only
}

// ProductService defines product submission and approval workflow.
type ProductService interface {
	Submit(ctx context.Context, actor Actor, req SubmitProductRequest) (*domain.Product, error)
	Approve(ctx context.Context, actor Actor, productID uuid.UUID, margin int64) (*domain.Product, error)
	Reject(ctx context.Context, actor Actor, productID uuid.UUID, reason string) (*domain.Product, error)
	List(ctx context.Context, actor Actor, params ProductListParams) ([]domain.Product, int64, error)
}

// SubmitProductRequest holds input for a supplier product submission.
type SubmitProductRequest struct {
	Name        string
	SKU         string
	Description *string
	BasePrice   int64
	GSTRate     int32
	Stock       int32
}

// KYCService defines KYC submission and review workflow.
type KYCService interface {
	Submit(ctx context.Context, actor Actor, documents json.RawMessage) (*domain.KYCSubmission, error)
	Approve(ctx context.Context, actor Actor, submissionID uuid.UUID, plan *domain.Plan) (*domain.KYCSubmission, error)
	Reject(ctx context.Context, actor Actor, submissionID uuid.UUID, reason string) (*domain.KYCSubmission, error)
	List(ctx context.Context, actor Actor, params KYCListParams) ([]domain.KYCSubmission, int64, error)
}

// OrderService defines order creation and lifecycle workflow.
type OrderService interface {
	Create(ctx context.Context, actor Actor, productID uuid.UUID, quantity int32) (*domain.Order, error)
	// Advance moves the order through the actor's own processing stage.
	Advance(ctx context.Context, actor Actor, orderID uuid.UUID) (*domain.Order, error)
	Approve(ctx context.Context, actor Actor, orderID uuid.UUID, notes *string) (*domain.Order, error)
	Reject(ctx context.Context, actor Actor, orderID uuid.UUID, reason string) (*domain.Order, error)
	List(ctx context.Context, actor Actor, params OrderListParams) ([]domain.Order, int64, error)
}

// UserAdminService defines administrative account operations.
type UserAdminService interface {
	Block(ctx context.Context, actor Actor, userID uuid.UUID, reason *string) (*domain.User, error)
	Unblock(ctx context.Context, actor Actor, userID uuid.UUID, reason *string) (*domain.User, error)
	Delete(ctx context.Context, actor Actor, userID uuid.UUID) error
	// ResetPassword sets the credential to a deterministic reset value
	// (the user's phone number) and marks the account as requiring a
	// password change on next login.
	ResetPassword(ctx context.Context, actor Actor, userID uuid.UUID) error
}

// PayoutService defines payout settlement workflow.
type PayoutService interface {
	MarkPaid(ctx context.Context, actor Actor, payoutID uuid.UUID, amount int64, mode domain.PayoutMode) (*domain.Payout, error)
	List(ctx context.Context, actor Actor, params PayoutListParams) ([]domain.Payout, int64, error)
}

// ProjectionService computes on-demand summary counts for dashboards.
// The numbers are point-in-time scans of current entity state; callers
// accept staleness relative to in-flight writes.
type ProjectionService interface {
	Summary(ctx context.Context) (*DashboardSummary, error)
}

// DashboardSummary holds aggregate counts for the admin dashboard.
type DashboardSummary struct {
	PendingProducts int64 `json:"pending_products"`
	PendingKYC      int64 `json:"pending_kyc"`
	PendingOrders   int64 `json:"pending_orders"`
	PendingPayouts  int64 `json:"pending_payouts"`
	PendingUsers    int64 `json:"pending_users"`
	ActiveUsers     int64 `json:"active_users"`
	ApprovedOrders  int64 `json:"approved_orders"`
	CompletedOrders int64 `json:"completed_orders"`
}

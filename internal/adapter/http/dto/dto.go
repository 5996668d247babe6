package dto

import "encoding/json"

// RegisterRequest is the request body for seller/supplier registration.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Phone    string `json:"phone" binding:"required,min=8,max=15"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Role     string `json:"role" binding:"required,oneof=seller supplier"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string       `json:"token"`
	Expiry int64        `json:"expiry"` // Unix timestamp
	User   UserResponse `json:"user"`
}

// UserResponse is the public representation of a user account.
type UserResponse struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Email              string  `json:"email"`
	Phone              string  `json:"phone"`
	Role               string  `json:"role"`
	Status             string  `json:"status"`
	KYCStatus          string  `json:"kyc_status"`
	Plan               *string `json:"plan,omitempty"`
	StatusReason       *string `json:"status_reason,omitempty"`
	MustChangePassword bool    `json:"must_change_password"`
	CreatedAt          string  `json:"created_at"`
}

// SubmitProductRequest is the request body for a product submission.
type SubmitProductRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=200"`
	SKU         string  `json:"sku" binding:"required,max=64,safe_id"`
	Description *string `json:"description,omitempty"`
	BasePrice   int64   `json:"base_price" binding:"required,gt=0"`
	GSTRate     int32   `json:"gst_rate" binding:"gte=0,lte=10000"`
	Stock       int32   `json:"stock" binding:"gte=0"`
}

// ApproveProductRequest is the request body for product approval.
// Margin is a pointer so an absent field is distinguishable from an
// explicit zero.
type ApproveProductRequest struct {
	Margin *int64 `json:"margin" binding:"omitempty,gte=0"`
}

// RejectRequest is the shared request body for rejection endpoints.
type RejectRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ProductResponse is the public representation of a product.
type ProductResponse struct {
	ID              string  `json:"id"`
	SupplierID      string  `json:"supplier_id"`
	Name            string  `json:"name"`
	SKU             string  `json:"sku"`
	Description     *string `json:"description,omitempty"`
	BasePrice       int64   `json:"base_price"`
	GSTRate         int32   `json:"gst_rate"`
	Stock           int32   `json:"stock"`
	Status          string  `json:"status"`
	Margin          int64   `json:"margin"`
	FinalPrice      int64   `json:"final_price"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	ApprovedAt      *string `json:"approved_at,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

// SubmitKYCRequest is the request body for a KYC submission.
type SubmitKYCRequest struct {
	Documents json.RawMessage `json:"documents" binding:"required"`
}

// ApproveKYCRequest is the request body for KYC approval.
type ApproveKYCRequest struct {
	Plan *string `json:"plan,omitempty" binding:"omitempty,oneof=starter growth scale"`
}

// KYCResponse is the public representation of a KYC submission.
type KYCResponse struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Documents       json.RawMessage `json:"documents"`
	Status          string          `json:"status"`
	RejectionReason *string         `json:"rejection_reason,omitempty"`
	ReviewedAt      *string         `json:"reviewed_at,omitempty"`
	CreatedAt       string          `json:"created_at"`
}

// CreateOrderRequest is the request body for order creation.
type CreateOrderRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int32  `json:"quantity" binding:"required,gt=0"`
}

// ApproveOrderRequest is the request body for admin order approval.
type ApproveOrderRequest struct {
	Notes *string `json:"notes,omitempty"`
}

// OrderResponse is the public representation of an order.
type OrderResponse struct {
	ID              string  `json:"id"`
	ProductID       string  `json:"product_id"`
	SellerID        string  `json:"seller_id"`
	SupplierID      string  `json:"supplier_id"`
	Quantity        int32   `json:"quantity"`
	TotalAmount     int64   `json:"total_amount"`
	Status          string  `json:"status"`
	AdminNotes      *string `json:"admin_notes,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

// BlockUserRequest is the request body for blocking and unblocking.
type BlockUserRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// MarkPayoutPaidRequest is the request body for payout settlement.
type MarkPayoutPaidRequest struct {
	Amount int64  `json:"amount" binding:"required,gt=0"`
	Mode   string `json:"mode" binding:"required,oneof=bank_transfer upi manual"`
}

// PayoutResponse is the public representation of a payout.
type PayoutResponse struct {
	ID            string  `json:"id"`
	OrderID       string  `json:"order_id"`
	ProductID     string  `json:"product_id"`
	SupplierID    string  `json:"supplier_id"`
	PayableAmount int64   `json:"payable_amount"`
	PaidAmount    int64   `json:"paid_amount"`
	Mode          *string `json:"mode,omitempty"`
	Status        string  `json:"status"`
	PaidAt        *string `json:"paid_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

// TransitionResponse is one row of an entity's audit trail.
type TransitionResponse struct {
	ID         string  `json:"id"`
	EntityType string  `json:"entity_type"`
	EntityID   string  `json:"entity_id"`
	FromStatus string  `json:"from_status"`
	ToStatus   string  `json:"to_status"`
	ActorID    string  `json:"actor_id"`
	ActorRole  string  `json:"actor_role"`
	Reason     *string `json:"reason,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

// ListResponse wraps a paginated collection.
type ListResponse[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

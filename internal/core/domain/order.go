package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the lifecycle state of an order.
// Orders move forward through the sequence or into a terminal
// rejected/cancelled state; there are no backward transitions.
type OrderStatus string

const (
	OrderStatusPending            OrderStatus = "pending"
	OrderStatusSupplierProcessing OrderStatus = "supplier_processing"
	OrderStatusSellerProcessing   OrderStatus = "seller_processing"
	OrderStatusAdminReview        OrderStatus = "admin_review"
	OrderStatusAdminApproved      OrderStatus = "admin_approved"
	OrderStatusAdminRejected      OrderStatus = "admin_rejected"
	OrderStatusCompleted          OrderStatus = "completed"
	OrderStatusCancelled          OrderStatus = "cancelled"
)

// Order represents a seller's purchase of a supplier product.
type Order struct {
	ID              uuid.UUID   `json:"id"`
	ProductID       uuid.UUID   `json:"product_id"`
	SellerID        uuid.UUID   `json:"seller_id"`
	SupplierID      uuid.UUID   `json:"supplier_id"`
	Quantity        int32       `json:"quantity"`
	TotalAmount     int64       `json:"total_amount"` // FinalPrice * Quantity at creation
	Status          OrderStatus `json:"status"`
	AdminNotes      *string     `json:"admin_notes,omitempty"`
	RejectionReason *string     `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// IsTerminal returns true if the order is in a final state.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusCompleted ||
		o.Status == OrderStatusCancelled ||
		o.Status == OrderStatusAdminRejected
}

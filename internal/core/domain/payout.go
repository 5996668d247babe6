package domain

import (
	"time"

	"github.com/google/uuid"
)

// PayoutStatus represents the settlement state of a supplier payout.
type PayoutStatus string

const (
	PayoutStatusPending PayoutStatus = "pending"
	PayoutStatusPaid    PayoutStatus = "paid"
)

// PayoutMode is the channel used to settle a payout.
type PayoutMode string

const (
	PayoutModeBankTransfer PayoutMode = "bank_transfer"
	PayoutModeUPI          PayoutMode = "upi"
	PayoutModeManual       PayoutMode = "manual"
)

// Payout tracks the amount owed to a supplier for an approved order
// versus what has actually been settled.
type Payout struct {
	ID            uuid.UUID    `json:"id"`
	OrderID       uuid.UUID    `json:"order_id"`
	ProductID     uuid.UUID    `json:"product_id"`
	SupplierID    uuid.UUID    `json:"supplier_id"`
	PayableAmount int64        `json:"payable_amount"`
	PaidAmount    int64        `json:"paid_amount"`
	Mode          *PayoutMode  `json:"mode,omitempty"`
	Status        PayoutStatus `json:"status"`
	PaidAt        *time.Time   `json:"paid_at,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// Outstanding returns the amount still owed.
func (p *Payout) Outstanding() int64 {
	return p.PayableAmount - p.PaidAmount
}

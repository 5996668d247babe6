package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProductStatus represents the approval state of a product listing.
type ProductStatus string

const (
	ProductStatusPending  ProductStatus = "pending"
	ProductStatusApproved ProductStatus = "approved"
	ProductStatusRejected ProductStatus = "rejected"
)

// Product represents a supplier-submitted listing.
// Monetary amounts are in the smallest currency unit (paise).
type Product struct {
	ID              uuid.UUID     `json:"id"`
	SupplierID      uuid.UUID     `json:"supplier_id"`
	Name            string        `json:"name"`
	SKU             string        `json:"sku"`
	Description     *string       `json:"description,omitempty"`
	BasePrice       int64         `json:"base_price"`
	GSTRate         int32         `json:"gst_rate"` // Basis points (e.g. 1800 = 18%)
	Stock           int32         `json:"stock"`
	Status          ProductStatus `json:"status"`
	Margin          int64         `json:"margin"`      // Admin-set at approval
	FinalPrice      int64         `json:"final_price"` // BasePrice + Margin once approved
	RejectionReason *string       `json:"rejection_reason,omitempty"`
	ApprovedAt      *time.Time    `json:"approved_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// IsTerminal returns true if the product is in a final approval state.
func (p *Product) IsTerminal() bool {
	return p.Status == ProductStatusApproved || p.Status == ProductStatusRejected
}

// Sellable returns true if the product can be ordered.
func (p *Product) Sellable() bool {
	return p.Status == ProductStatusApproved && p.Stock > 0
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// NoticeKind names a change event pushed to connected admin clients.
type NoticeKind string

const (
	NoticeNewSellerRegistered NoticeKind = "NEW_SELLER_REGISTERED"
	NoticeNewProductAdded     NoticeKind = "NEW_PRODUCT_ADDED"
	NoticeProductApproved     NoticeKind = "PRODUCT_APPROVED"
	NoticeProductRejected     NoticeKind = "PRODUCT_REJECTED"
	NoticePayoutUpdated       NoticeKind = "PAYOUT_UPDATED"
	NoticeOrderApproved       NoticeKind = "ORDER_APPROVED"
	NoticeOrderRejected       NoticeKind = "ORDER_REJECTED"
	NoticeKYCApproved         NoticeKind = "KYC_APPROVED"
	NoticeKYCRejected         NoticeKind = "KYC_REJECTED"
)

// Notice is a lightweight change event. It carries no entity state
// beyond the id; clients re-fetch on receipt. Delivery is best-effort:
// a disconnected client misses the notice and observes the new state
// on its next read.
type Notice struct {
	Kind       NoticeKind `json:"kind"`
	EntityType EntityType `json:"entity_type"`
	EntityID   uuid.UUID  `json:"entity_id"`
	At         time.Time  `json:"at"`
}

// NewNotice builds a notice stamped with the current time.
func NewNotice(kind NoticeKind, entityType EntityType, entityID uuid.UUID) Notice {
	return Notice{
		Kind:       kind,
		EntityType: entityType,
		EntityID:   entityID,
		At:         time.Now().UTC(),
	}
}

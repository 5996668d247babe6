package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// KYCSubmission holds a user's uploaded verification documents.
// One submission per user; the status mirrors User.KYCStatus.
type KYCSubmission struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	Documents       json.RawMessage `json:"documents"` // Opaque document references
	Status          KYCStatus       `json:"status"`
	RejectionReason *string         `json:"rejection_reason,omitempty"`
	ReviewedAt      *time.Time      `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// IsTerminal returns true if the submission has been reviewed.
func (k *KYCSubmission) IsTerminal() bool {
	return k.Status == KYCStatusApproved || k.Status == KYCStatusRejected
}

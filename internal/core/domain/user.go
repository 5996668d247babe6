package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies what a user is allowed to do in the marketplace.
type Role string

const (
	RoleSeller     Role = "seller"
	RoleSupplier   Role = "supplier"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

// IsAdmin returns true for roles with administrative privileges.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperadmin
}

// UserStatus represents the state of a user account.
type UserStatus string

const (
	UserStatusPending  UserStatus = "pending"
	UserStatusActive   UserStatus = "active"
	UserStatusBlocked  UserStatus = "blocked"
	UserStatusRejected UserStatus = "rejected"
)

// KYCStatus represents the verification state of a user's KYC submission.
type KYCStatus string

const (
	KYCStatusPending  KYCStatus = "pending"
	KYCStatusApproved KYCStatus = "approved"
	KYCStatusRejected KYCStatus = "rejected"
)

// Plan is the subscription tier assigned to a seller at KYC approval.
type Plan string

const (
	PlanStarter Plan = "starter"
	PlanGrowth  Plan = "growth"
	PlanScale   Plan = "scale"
)

// ValidPlan reports whether p is one of the assignable seller plans.
func ValidPlan(p Plan) bool {
	return p == PlanStarter || p == PlanGrowth || p == PlanScale
}

// User represents a registered marketplace account.
type User struct {
	ID                 uuid.UUID  `json:"id"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	Phone              string     `json:"phone"`
	PasswordHash       string     `json:"-"` // Never expose
	Role               Role       `json:"role"`
	Status             UserStatus `json:"status"`
	KYCStatus          KYCStatus  `json:"kyc_status"`
	Plan               *Plan      `json:"plan,omitempty"` // Sellers only, set at KYC approval
	StatusReason       *string    `json:"status_reason,omitempty"`
	MustChangePassword bool       `json:"must_change_password"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// IsActive returns true if the account may act in the marketplace.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// IsDeletable returns true if the account may be hard-deleted.
// Active accounts must be blocked or rejected first.
func (u *User) IsDeletable() bool {
	return u.Status != UserStatusActive
}

package domain

import "errors"

// EntityType names an entity class governed by the lifecycle engine.
type EntityType string

const (
	EntityUser    EntityType = "user"
	EntityProduct EntityType = "product"
	EntityOrder   EntityType = "order"
	EntityKYC     EntityType = "kyc"
	EntityPayout  EntityType = "payout"
)

// Lifecycle validation errors. Services translate these into the
// HTTP-facing error taxonomy; the domain layer only reports which
// rule was violated.
var (
	// ErrInvalidTransition: the target state is not reachable from the
	// current state (including any transition out of a terminal state).
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrInsufficientRole: the state pair is legal but the acting role
	// may not perform it.
	ErrInsufficientRole = errors.New("role may not perform this transition")
)

type edge struct {
	from string
	to   string
}

// transitions is the complete set of legal state changes per entity,
// each mapped to the roles allowed to perform it. Any (from, to) pair
// absent from an entity's table is invalid regardless of role.
var transitions = map[EntityType]map[edge][]Role{
	EntityOrder: {
		// Forward sequence, one stage per owning role.
		{from: "pending", to: "supplier_processing"}:            {RoleSupplier},
		{from: "supplier_processing", to: "seller_processing"}:  {RoleSeller},
		{from: "seller_processing", to: "admin_review"}:         {RoleSeller},
		// Admin review outcomes. "pending" is a valid source for both:
		// direct admin override without the processing stages is allowed.
		{from: "admin_review", to: "admin_approved"}: {RoleAdmin, RoleSuperadmin},
		{from: "admin_review", to: "admin_rejected"}: {RoleAdmin, RoleSuperadmin},
		{from: "pending", to: "admin_approved"}:      {RoleAdmin, RoleSuperadmin},
		{from: "pending", to: "admin_rejected"}:      {RoleAdmin, RoleSuperadmin},
		// Fulfilment close-out.
		{from: "admin_approved", to: "completed"}: {RoleAdmin, RoleSuperadmin},
		{from: "admin_approved", to: "cancelled"}: {RoleAdmin, RoleSuperadmin},
	},
	EntityProduct: {
		{from: "pending", to: "approved"}: {RoleAdmin, RoleSuperadmin},
		{from: "pending", to: "rejected"}: {RoleAdmin, RoleSuperadmin},
	},
	EntityKYC: {
		{from: "pending", to: "approved"}: {RoleAdmin, RoleSuperadmin},
		{from: "pending", to: "rejected"}: {RoleAdmin, RoleSuperadmin},
	},
	EntityUser: {
		{from: "pending", to: "active"}:   {RoleAdmin, RoleSuperadmin},
		{from: "pending", to: "rejected"}: {RoleAdmin, RoleSuperadmin},
		{from: "active", to: "blocked"}:   {RoleAdmin, RoleSuperadmin},
		{from: "blocked", to: "active"}:   {RoleAdmin, RoleSuperadmin},
	},
	EntityPayout: {
		{from: "pending", to: "paid"}: {RoleAdmin, RoleSuperadmin},
	},
}

// Step validates a requested transition against the entity's state
// table. It returns ErrInvalidTransition if the state pair is not in
// the table, ErrInsufficientRole if it is but the actor's role is not
// allowed, and nil if the transition may proceed. Step never mutates
// anything; committing the change is the caller's job.
func Step(entity EntityType, from, to string, actor Role) error {
	table, ok := transitions[entity]
	if !ok {
		return ErrInvalidTransition
	}
	roles, ok := table[edge{from: from, to: to}]
	if !ok {
		return ErrInvalidTransition
	}
	for _, r := range roles {
		if r == actor {
			return nil
		}
	}
	return ErrInsufficientRole
}

// Typed wrappers so call sites keep their status enums.

func StepOrder(from, to OrderStatus, actor Role) error {
	return Step(EntityOrder, string(from), string(to), actor)
}

func StepProduct(from, to ProductStatus, actor Role) error {
	return Step(EntityProduct, string(from), string(to), actor)
}

func StepKYC(from, to KYCStatus, actor Role) error {
	return Step(EntityKYC, string(from), string(to), actor)
}

func StepUser(from, to UserStatus, actor Role) error {
	return Step(EntityUser, string(from), string(to), actor)
}

func StepPayout(from, to PayoutStatus, actor Role) error {
	return Step(EntityPayout, string(from), string(to), actor)
}

// NextOrderStage returns the forward processing transition owned by
// the given role from the order's current state. ok is false when the
// role owns no stage reachable from the current state.
func NextOrderStage(from OrderStatus, actor Role) (OrderStatus, bool) {
	switch {
	case actor == RoleSupplier && from == OrderStatusPending:
		return OrderStatusSupplierProcessing, true
	case actor == RoleSeller && from == OrderStatusSupplierProcessing:
		return OrderStatusSellerProcessing, true
	case actor == RoleSeller && from == OrderStatusSellerProcessing:
		return OrderStatusAdminReview, true
	default:
		return from, false
	}
}

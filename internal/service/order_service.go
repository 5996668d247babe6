package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace-backoffice/internal/core/domain"
	"marketplace-backoffice/internal/core/ports"
	"marketplace-backoffice/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderServiceImpl implements ports.OrderService.
type OrderServiceImpl struct {
	orderRepo      ports.OrderRepository
	productRepo    ports.ProductRepository
	transitionRepo ports.TransitionRepository
	tx             ports.Transactor
	notifier       ports.NoticePublisher
	log            zerolog.Logger
}

// NewOrderService creates a new OrderServiceImpl. Payout writes happen
// through the transactor, inside the approval transaction.
func NewOrderService(
	orderRepo ports.OrderRepository,
	productRepo ports.ProductRepository,
	transitionRepo ports.TransitionRepository,
	tx ports.Transactor,
	notifier ports.NoticePublisher,
	log zerolog.Logger,
) *OrderServiceImpl {
	return &OrderServiceImpl{
		orderRepo:      orderRepo,
		productRepo:    productRepo,
		transitionRepo: transitionRepo,
		tx:             tx,
		notifier:       notifier,
		log:            log,
	}
}

// Create places a seller order against an approved, in-stock product.
// The total is snapshotted from the product's final price at creation.
func (s *OrderServiceImpl) Create(ctx context.Context, actor ports.Actor, productID uuid.UUID, quantity int32) (*domain.Order, error) {
	if !domain.Can(actor.Role, domain.ActionCreateOrder) {
		return nil, apperror.ErrInsufficientRole()
	}
	if quantity <= 0 {
		return nil, apperror.Validation("quantity must be positive")
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get product: %w", err))
	}
	if product == nil {
		return nil, apperror.ErrNotFound("product")
	}
	if !product.Sellable() {
		return nil, apperror.Validation("product is not available for ordering")
	}
	if quantity > product.Stock {
		return nil, apperror.Validation("quantity exceeds available stock")
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:          uuid.New(),
		ProductID:   product.ID,
		SellerID:    actor.ID,
		SupplierID:  product.SupplierID,
		Quantity:    quantity,
		TotalAmount: product.FinalPrice * int64(quantity),
		Status:      domain.OrderStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create order: %w", err))
	}
	return order, nil
}

// Advance moves the order through the processing stage owned by the
// acting role. Suppliers take pending orders into supplier_processing;
// sellers carry them through seller_processing into admin_review.
func (s *OrderServiceImpl) Advance(ctx context.Context, actor ports.Actor, orderID uuid.UUID) (*domain.Order, error) {
	if !domain.Can(actor.Role, domain.ActionAdvanceOrder) {
		return nil, apperror.ErrInsufficientRole()
	}

	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !s.ownsStage(order, actor) {
		return nil, apperror.ErrInsufficientRole()
	}

	next, ok := domain.NextOrderStage(order.Status, actor.Role)
	if !ok {
		return nil, apperror.ErrInvalidTransition("order", string(order.Status), "next stage")
	}
	if err := s.step(order, next, actor.Role); err != nil {
		return nil, err
	}

	swapped, err := s.orderRepo.UpdateStatus(ctx, orderID, order.Status, next, nil, nil)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("advance order: %w", err))
	}
	if !swapped {
		return nil, s.staleTransition(ctx, orderID, next)
	}

	s.record(ctx, orderID, order.Status, next, actor, nil)
	order.Status = next
	return order, nil
}

// Approve moves the order to admin_approved and upserts the supplier
// payout. Valid from admin_review or directly from pending.
func (s *OrderServiceImpl) Approve(ctx context.Context, actor ports.Actor, orderID uuid.UUID, notes *string) (*domain.Order, error) {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.step(order, domain.OrderStatusAdminApproved, actor.Role); err != nil {
		return nil, err
	}

	// The status swap and the payout upsert commit together; an
	// approved order without its supplier payout must not be
	// observable.
	var swapped bool
	err = s.tx.WithinTx(ctx, func(r ports.TxRepos) error {
		var txErr error
		swapped, txErr = r.Orders.UpdateStatus(ctx, orderID, order.Status, domain.OrderStatusAdminApproved, notes, nil)
		if txErr != nil {
			return fmt.Errorf("approve order: %w", txErr)
		}
		if !swapped {
			return nil
		}
		return s.ensurePayout(ctx, r.Payouts, order)
	})
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if !swapped {
		return nil, s.staleTransition(ctx, orderID, domain.OrderStatusAdminApproved)
	}

	s.record(ctx, orderID, order.Status, domain.OrderStatusAdminApproved, actor, nil)
	s.notify(ctx, domain.NewNotice(domain.NoticeOrderApproved, domain.EntityOrder, orderID))

	order.Status = domain.OrderStatusAdminApproved
	order.AdminNotes = notes
	return order, nil
}

// Reject moves the order to admin_rejected with a mandatory reason.
func (s *OrderServiceImpl) Reject(ctx context.Context, actor ports.Actor, orderID uuid.UUID, reason string) (*domain.Order, error) {
	if reason == "" {
		return nil, apperror.ErrMissingField("reason")
	}

	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.step(order, domain.OrderStatusAdminRejected, actor.Role); err != nil {
		return nil, err
	}

	swapped, err := s.orderRepo.UpdateStatus(ctx, orderID, order.Status, domain.OrderStatusAdminRejected, nil, &reason)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("reject order: %w", err))
	}
	if !swapped {
		return nil, s.staleTransition(ctx, orderID, domain.OrderStatusAdminRejected)
	}

	s.record(ctx, orderID, order.Status, domain.OrderStatusAdminRejected, actor, &reason)
	s.notify(ctx, domain.NewNotice(domain.NoticeOrderRejected, domain.EntityOrder, orderID))

	order.Status = domain.OrderStatusAdminRejected
	order.RejectionReason = &reason
	return order, nil
}

// List returns orders visible to the actor: sellers see orders they
// placed, suppliers see orders against their products, admins see all.
func (s *OrderServiceImpl) List(ctx context.Context, actor ports.Actor, params ports.OrderListParams) ([]domain.Order, int64, error) {
	switch actor.Role {
	case domain.RoleSeller:
		params.SellerID = &actor.ID
		params.SupplierID = nil
	case domain.RoleSupplier:
		params.SupplierID = &actor.ID
		params.SellerID = nil
	}
	normalizePage(&params.Page, &params.PageSize)

	orders, total, err := s.orderRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.ErrDatabaseError(fmt.Errorf("list orders: %w", err))
	}
	return orders, total, nil
}

// ensurePayout creates the pending supplier payout for an approved
// order if one does not already exist. Runs inside the approval
// transaction; an error here rolls the approval back.
func (s *OrderServiceImpl) ensurePayout(ctx context.Context, payouts ports.PayoutRepository, order *domain.Order) error {
	existing, err := payouts.GetByOrderID(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("payout lookup: %w", err)
	}
	if existing != nil {
		return nil
	}

	now := time.Now().UTC()
	payout := &domain.Payout{
		ID:            uuid.New(),
		OrderID:       order.ID,
		ProductID:     order.ProductID,
		SupplierID:    order.SupplierID,
		PayableAmount: order.TotalAmount,
		Status:        domain.PayoutStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := payouts.Create(ctx, payout); err != nil {
		return fmt.Errorf("payout create: %w", err)
	}
	return nil
}

// ownsStage reports whether the actor is a party to the order for the
// stage they are trying to advance.
func (s *OrderServiceImpl) ownsStage(order *domain.Order, actor ports.Actor) bool {
	switch actor.Role {
	case domain.RoleSupplier:
		return order.SupplierID == actor.ID
	case domain.RoleSeller:
		return order.SellerID == actor.ID
	}
	return false
}

func (s *OrderServiceImpl) getOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get order: %w", err))
	}
	if order == nil {
		return nil, apperror.ErrNotFound("order")
	}
	return order, nil
}

func (s *OrderServiceImpl) step(order *domain.Order, to domain.OrderStatus, role domain.Role) error {
	err := domain.StepOrder(order.Status, to, role)
	switch {
	case errors.Is(err, domain.ErrInvalidTransition):
		return apperror.ErrInvalidTransition("order", string(order.Status), string(to))
	case errors.Is(err, domain.ErrInsufficientRole):
		return apperror.ErrInsufficientRole()
	}
	return nil
}

func (s *OrderServiceImpl) staleTransition(ctx context.Context, id uuid.UUID, to domain.OrderStatus) error {
	current, err := s.orderRepo.GetByID(ctx, id)
	if err != nil || current == nil {
		return apperror.ErrInvalidTransition("order", "unknown", string(to))
	}
	return apperror.ErrInvalidTransition("order", string(current.Status), string(to))
}

func (s *OrderServiceImpl) record(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus, actor ports.Actor, reason *string) {
	rec := domain.NewTransitionRecord(domain.EntityOrder, id, string(from), string(to), actor.ID, actor.Role, reason)
	if err := s.transitionRepo.Append(ctx, rec); err != nil {
		s.log.Warn().Err(err).Str("order_id", id.String()).Msg("transition append failed")
	}
}

func (s *OrderServiceImpl) notify(ctx context.Context, n domain.Notice) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, n); err != nil {
		s.log.Warn().Err(err).Str("kind", string(n.Kind)).Msg("notice publish failed")
	}
}

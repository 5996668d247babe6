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

// ProductServiceImpl implements ports.ProductService.
type ProductServiceImpl struct {
	productRepo    ports.ProductRepository
	transitionRepo ports.TransitionRepository
	notifier       ports.NoticePublisher
	log            zerolog.Logger
}

// NewProductService creates a new ProductServiceImpl.
func NewProductService(
	productRepo ports.ProductRepository,
	transitionRepo ports.TransitionRepository,
	notifier ports.NoticePublisher,
	log zerolog.Logger,
) *ProductServiceImpl {
	return &ProductServiceImpl{
		productRepo:    productRepo,
		transitionRepo: transitionRepo,
		notifier:       notifier,
		log:            log,
	}
}

// Submit creates a pending product listing owned by the supplier.
func (s *ProductServiceImpl) Submit(ctx context.Context, actor ports.Actor, req ports.SubmitProductRequest) (*domain.Product, error) {
	if !domain.Can(actor.Role, domain.ActionSubmitProduct) {
		return nil, apperror.ErrInsufficientRole()
	}
	if req.BasePrice <= 0 {
		return nil, apperror.Validation("base_price must be positive")
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:          uuid.New(),
		SupplierID:  actor.ID,
		Name:        req.Name,
		SKU:         req.SKU,
		Description: req.Description,
		BasePrice:   req.BasePrice,
		GSTRate:     req.GSTRate,
		Stock:       req.Stock,
		Status:      domain.ProductStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create product: %w", err))
	}

	s.notify(ctx, domain.NewNotice(domain.NoticeNewProductAdded, domain.EntityProduct, product.ID))
	return product, nil
}

// Approve sets the admin margin and moves the product to approved. The
// final price is derived at approval time and frozen on the row.
func (s *ProductServiceImpl) Approve(ctx context.Context, actor ports.Actor, productID uuid.UUID, margin int64) (*domain.Product, error) {
	if margin < 0 {
		return nil, apperror.Validation("margin must not be negative")
	}

	product, err := s.getProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := s.step(product, domain.ProductStatusApproved, actor.Role); err != nil {
		return nil, err
	}

	finalPrice := product.BasePrice + margin
	approvedAt := time.Now().UTC()
	swapped, err := s.productRepo.Approve(ctx, productID, margin, finalPrice, approvedAt)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("approve product: %w", err))
	}
	if !swapped {
		// The row moved between read and write; report the state we
		// find on re-read.
		return nil, s.staleTransition(ctx, productID, domain.ProductStatusApproved)
	}

	product.Status = domain.ProductStatusApproved
	product.Margin = margin
	product.FinalPrice = finalPrice
	product.ApprovedAt = &approvedAt

	s.record(ctx, product.ID, domain.ProductStatusPending, domain.ProductStatusApproved, actor, nil)
	s.notify(ctx, domain.NewNotice(domain.NoticeProductApproved, domain.EntityProduct, product.ID))
	return product, nil
}

// Reject moves the product to rejected with a mandatory reason.
func (s *ProductServiceImpl) Reject(ctx context.Context, actor ports.Actor, productID uuid.UUID, reason string) (*domain.Product, error) {
	if reason == "" {
		return nil, apperror.ErrMissingField("reason")
	}

	product, err := s.getProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := s.step(product, domain.ProductStatusRejected, actor.Role); err != nil {
		return nil, err
	}

	swapped, err := s.productRepo.Reject(ctx, productID, reason)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("reject product: %w", err))
	}
	if !swapped {
		return nil, s.staleTransition(ctx, productID, domain.ProductStatusRejected)
	}

	product.Status = domain.ProductStatusRejected
	product.RejectionReason = &reason

	s.record(ctx, product.ID, domain.ProductStatusPending, domain.ProductStatusRejected, actor, &reason)
	s.notify(ctx, domain.NewNotice(domain.NoticeProductRejected, domain.EntityProduct, product.ID))
	return product, nil
}

// List returns products visible to the actor. Suppliers only see their
// own listings; admins see everything.
func (s *ProductServiceImpl) List(ctx context.Context, actor ports.Actor, params ports.ProductListParams) ([]domain.Product, int64, error) {
	if !actor.Role.IsAdmin() {
		params.SupplierID = &actor.ID
	}
	normalizePage(&params.Page, &params.PageSize)

	products, total, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.ErrDatabaseError(fmt.Errorf("list products: %w", err))
	}
	return products, total, nil
}

func (s *ProductServiceImpl) getProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get product: %w", err))
	}
	if product == nil {
		return nil, apperror.ErrNotFound("product")
	}
	return product, nil
}

func (s *ProductServiceImpl) step(product *domain.Product, to domain.ProductStatus, role domain.Role) error {
	err := domain.StepProduct(product.Status, to, role)
	switch {
	case errors.Is(err, domain.ErrInvalidTransition):
		return apperror.ErrInvalidTransition("product", string(product.Status), string(to))
	case errors.Is(err, domain.ErrInsufficientRole):
		return apperror.ErrInsufficientRole()
	}
	return nil
}

// staleTransition re-reads the row after a lost compare-and-swap so the
// error reports the state that actually won.
func (s *ProductServiceImpl) staleTransition(ctx context.Context, id uuid.UUID, to domain.ProductStatus) error {
	current, err := s.productRepo.GetByID(ctx, id)
	if err != nil || current == nil {
		return apperror.ErrInvalidTransition("product", "unknown", string(to))
	}
	return apperror.ErrInvalidTransition("product", string(current.Status), string(to))
}

func (s *ProductServiceImpl) record(ctx context.Context, id uuid.UUID, from, to domain.ProductStatus, actor ports.Actor, reason *string) {
	rec := domain.NewTransitionRecord(domain.EntityProduct, id, string(from), string(to), actor.ID, actor.Role, reason)
	if err := s.transitionRepo.Append(ctx, rec); err != nil {
		s.log.Warn().Err(err).Str("product_id", id.String()).Msg("transition append failed")
	}
}

func (s *ProductServiceImpl) notify(ctx context.Context, n domain.Notice) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, n); err != nil {
		s.log.Warn().Err(err).Str("kind", string(n.Kind)).Msg("notice publish failed")
	}
}

// normalizePage clamps pagination inputs to sane defaults.
func normalizePage(page, pageSize *int) {
	if *page < 1 {
		*page = 1
	}
	if *pageSize < 1 || *pageSize > 100 {
		*pageSize = 20
	}
}

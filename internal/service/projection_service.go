package service

import (
	"context"
	"fmt"

	"marketplace-backoffice/internal/core/domain"
	"marketplace-backoffice/internal/core/ports"
	"marketplace-backoffice/pkg/apperror"

	"github.com/rs/zerolog"
)

// ProjectionServiceImpl implements ports.ProjectionService.
type ProjectionServiceImpl struct {
	userRepo    ports.UserRepository
	productRepo ports.ProductRepository
	orderRepo   ports.OrderRepository
	kycRepo     ports.KYCRepository
	payoutRepo  ports.PayoutRepository
	log         zerolog.Logger
}

// NewProjectionService creates a new ProjectionServiceImpl.
func NewProjectionService(
	userRepo ports.UserRepository,
	productRepo ports.ProductRepository,
	orderRepo ports.OrderRepository,
	kycRepo ports.KYCRepository,
	payoutRepo ports.PayoutRepository,
	log zerolog.Logger,
) *ProjectionServiceImpl {
	return &ProjectionServiceImpl{
		userRepo:    userRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		kycRepo:     kycRepo,
		payoutRepo:  payoutRepo,
		log:         log,
	}
}

// Summary scans current entity state and returns aggregate counts.
// Each count is an independent read; the result is not a snapshot.
func (s *ProjectionServiceImpl) Summary(ctx context.Context) (*ports.DashboardSummary, error) {
	summary := &ports.DashboardSummary{}

	var err error
	if summary.PendingProducts, err = s.productRepo.CountByStatus(ctx, domain.ProductStatusPending); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("count pending products: %w", err))
	}
	if summary.PendingKYC, err = s.kycRepo.CountByStatus(ctx, domain.KYCStatusPending); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("count pending kyc: %w", err))
	}
	if summary.PendingOrders, err = s.orderRepo.CountByStatus(ctx, domain.OrderStatusPending); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("count pending orders: %w", err))
	}
	if summary.PendingPayouts, err = s.payoutRepo.CountByStatus(ctx, domain.PayoutStatusPending); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("count pending payouts: %w", err))
	}
	if summary.PendingUsers, err = s.userRepo.CountByStatus(ctx, domain.UserStatusPending); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("count pending users: %w", err))
	}
	if summary.ActiveUsers, err = s.userRepo.CountByStatus(ctx, domain.UserStatusActive); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("count active users: %w", err))
	}
	if summary.ApprovedOrders, err = s.orderRepo.CountByStatus(ctx, domain.OrderStatusAdminApproved); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("count approved orders: %w", err))
	}
	if summary.CompletedOrders, err = s.orderRepo.CountByStatus(ctx, domain.OrderStatusCompleted); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("count completed orders: %w", err))
	}

	return summary, nil
}

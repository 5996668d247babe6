package service

import (
	"context"
	"errors"
	"testing"

	"marketplace-backoffice/internal/core/domain"
	"marketplace-backoffice/internal/core/ports/mocks"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type projectionTestDeps struct {
	svc         *ProjectionServiceImpl
	userRepo    *mocks.MockUserRepository
	productRepo *mocks.MockProductRepository
	orderRepo   *mocks.MockOrderRepository
	kycRepo     *mocks.MockKYCRepository
	payoutRepo  *mocks.MockPayoutRepository
	ctrl        *gomock.Controller
}

func setupProjectionService(t *testing.T) *projectionTestDeps {
	ctrl := gomock.NewController(t)
	d := &projectionTestDeps{
		userRepo:    mocks.NewMockUserRepository(ctrl),
		productRepo: mocks.NewMockProductRepository(ctrl),
		orderRepo:   mocks.NewMockOrderRepository(ctrl),
		kycRepo:     mocks.NewMockKYCRepository(ctrl),
		payoutRepo:  mocks.NewMockPayoutRepository(ctrl),
		ctrl:        ctrl,
	}
	d.svc = NewProjectionService(d.userRepo, d.productRepo, d.orderRepo, d.kycRepo, d.payoutRepo, zerolog.Nop())
	return d
}

func TestProjectionService_Summary(t *testing.T) {
	d := setupProjectionService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()

	d.productRepo.EXPECT().CountByStatus(ctx, domain.ProductStatusPending).Return(int64(3), nil)
	d.kycRepo.EXPECT().CountByStatus(ctx, domain.KYCStatusPending).Return(int64(2), nil)
	d.orderRepo.EXPECT().CountByStatus(ctx, domain.OrderStatusPending).Return(int64(7), nil)
	d.payoutRepo.EXPECT().CountByStatus(ctx, domain.PayoutStatusPending).Return(int64(1), nil)
	d.userRepo.EXPECT().CountByStatus(ctx, domain.UserStatusPending).Return(int64(4), nil)
	d.userRepo.EXPECT().CountByStatus(ctx, domain.UserStatusActive).Return(int64(42), nil)
	d.orderRepo.EXPECT().CountByStatus(ctx, domain.OrderStatusAdminApproved).Return(int64(9), nil)
	d.orderRepo.EXPECT().CountByStatus(ctx, domain.OrderStatusCompleted).Return(int64(15), nil)

	summary, err := d.svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.PendingProducts)
	assert.Equal(t, int64(2), summary.PendingKYC)
	assert.Equal(t, int64(7), summary.PendingOrders)
	assert.Equal(t, int64(1), summary.PendingPayouts)
	assert.Equal(t, int64(4), summary.PendingUsers)
	assert.Equal(t, int64(42), summary.ActiveUsers)
	assert.Equal(t, int64(9), summary.ApprovedOrders)
	assert.Equal(t, int64(15), summary.CompletedOrders)
}

func TestProjectionService_Summary_CountFails(t *testing.T) {
	d := setupProjectionService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()

	d.productRepo.EXPECT().CountByStatus(ctx, domain.ProductStatusPending).
		Return(int64(0), errors.New("connection reset"))

	_, err := d.svc.Summary(ctx)
	assertAppError(t, err, "SYS_001")
}

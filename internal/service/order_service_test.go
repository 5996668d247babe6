package service

import (
	"context"
	"errors"
	"testing"

	"marketplace-backoffice/internal/core/domain"
	"marketplace-backoffice/internal/core/ports"
	"marketplace-backoffice/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type orderTestDeps struct {
	svc            *OrderServiceImpl
	orderRepo      *mocks.MockOrderRepository
	productRepo    *mocks.MockProductRepository
	payoutRepo     *mocks.MockPayoutRepository
	transitionRepo *mocks.MockTransitionRepository
	notifier       *mocks.MockNoticePublisher
	ctrl           *gomock.Controller
}

func setupOrderService(t *testing.T) *orderTestDeps {
	ctrl := gomock.NewController(t)
	d := &orderTestDeps{
		orderRepo:      mocks.NewMockOrderRepository(ctrl),
		productRepo:    mocks.NewMockProductRepository(ctrl),
		payoutRepo:     mocks.NewMockPayoutRepository(ctrl),
		transitionRepo: mocks.NewMockTransitionRepository(ctrl),
		notifier:       mocks.NewMockNoticePublisher(ctrl),
		ctrl:           ctrl,
	}
	tx := &stubTransactor{repos: ports.TxRepos{Orders: d.orderRepo, Payouts: d.payoutRepo}}
	d.svc = NewOrderService(d.orderRepo, d.productRepo, d.transitionRepo, tx, d.notifier, zerolog.Nop())
	return d
}

func approvedProduct(supplierID uuid.UUID) *domain.Product {
	return &domain.Product{
		ID:         uuid.New(),
		SupplierID: supplierID,
		Name:       "Cotton Kurta",
		BasePrice:  45000,
		Margin:     5000,
		FinalPrice: 50000,
		Stock:      100,
		Status:     domain.ProductStatusApproved,
	}
}

func testOrder(sellerID, supplierID uuid.UUID, status domain.OrderStatus) *domain.Order {
	return &domain.Order{
		ID:          uuid.New(),
		ProductID:   uuid.New(),
		SellerID:    sellerID,
		SupplierID:  supplierID,
		Quantity:    4,
		TotalAmount: 200000,
		Status:      status,
	}
}

// ==================== Create Tests ====================

func TestOrderService_Create_Success(t *testing.T) {
	d := setupOrderService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	seller := ports.Actor{ID: uuid.New(), Role: domain.RoleSeller}
	product := approvedProduct(uuid.New())

	d.productRepo.EXPECT().GetByID(ctx, product.ID).Return(product, nil)
	d.orderRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)

	order, err := d.svc.Create(ctx, seller, product.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, seller.ID, order.SellerID)
	assert.Equal(t, product.SupplierID, order.SupplierID)
	assert.Equal(t, int64(200000), order.TotalAmount)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
}

func TestOrderService_Create_SupplierForbidden(t *testing.T) {
	d := setupOrderService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.Create(context.Background(), supplierActor(), uuid.New(), 1)
	assertAppError(t, err, "SEC_002")
}

func TestOrderService_Create_UnapprovedProduct(t *testing.T) {
	d := setupOrderService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	product := approvedProduct(uuid.New())
	product.Status = domain.ProductStatusPending

	d.productRepo.EXPECT().GetByID(ctx, product.ID).Return(product, nil)

	_, err := d.svc.Create(ctx, ports.Actor{ID: uuid.New(), Role: domain.RoleSeller}, product.ID, 1)
	assertAppError(t, err, "WF_002")
}

func TestOrderService_Create_QuantityExceedsStock(t *testing.T) {
	d := setupOrderService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	product := approvedProduct(uuid.New())
	product.Stock = 3

	d.productRepo.EXPECT().GetByID(ctx, product.ID).Return(product, nil)

	_, err := d.svc.Create(ctx, ports.Actor{ID: uuid.New(), Role: domain.RoleSeller}, product.ID, 4)
	assertAppError(t, err, "WF_002")
}

func TestOrderService_Create_ProductNotFound(t *testing.T) {
	d := setupOrderService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	id := uuid.New()

	d.productRepo.EXPECT().GetByID(ctx, id).Return(nil, nil)

	_, err := d.svc.Create(ctx, ports.Actor{ID: uuid.New(), Role: domain.RoleSeller}, id, 1)
	assertAppError(t, err, "WF_003")
}

// ==================== Advance Tests ====================

func TestOrderService_Advance_SupplierTakesPending(t *testing.T) {
	d := setupOrderService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	supplier := supplierActor()
	order := testOrder(uuid.New(), supplier.ID, domain.OrderStatusPending)

	d.orderRepo.EXPECT().GetByID(ctx, order.ID).Return(order, nil)
	d.orderRepo.EXPECT().
		UpdateStatus(ctx, order.ID, domain.OrderStatusPending, domain.OrderStatusSupplierProcessing, (*string)(nil), (*string)(nil)).
		Return(true, nil)
	d.transitionRepo.EXPECT().Append(ctx, gomock.Any()).Return(nil)

	got, err := d.svc.Advance(ctx, supplier, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusSupplierProcessing, got.Status)
}

func TestOrderService_Advance_SellerThroughProcessing(t *testing.T) {
	d := setupOrderService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	seller := ports.Actor{ID: uuid.New(), Role: domain.RoleSeller}
	order := testOrder(seller.ID, uuid.New(), domain.OrderStatusSellerProcessing)

	d.orderRepo.EXPECT().GetByID(ctx, order.ID).Return(order, nil)
	d.orderRepo.EXPECT().
		UpdateStatus(ctx, order.ID, domain.OrderStatusSellerProcessing, domain.OrderStatusAdminReview, (*string)(nil), (*string)(nil)).
		Return(true, nil)
	d.transitionRepo.EXPECT().Append(ctx, gomock.Any()).Return(nil)

	got, err := d.svc.Advance(ctx, seller, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusAdminReview, got.Status)
}

func TestOrderService_Advance_NotAParty(t *testing.T) {
	d := setupOrderService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	supplier := supplierActor()
	// Order belongs to a different supplier.
	order := testOrder(uuid.New(), uuid.New(), domain.OrderStatusPending)

	d.orderRepo.EXPECT().GetByID(ctx, order.ID).Return(order, nil)

	_, err := d.svc.Advance(ctx, supplier, order.ID)
	assertAppError(t, err, "SEC_002")
}

func TestOrderService_Advance_NoStageForRole(t *testing.T) {
	d := setupOrderService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	supplier := supplierActor()
	// Supplier owns no stage out of seller_processing.
	order := testOrder(uuid.New(), supplier.ID, domain.OrderStatusSellerProcessing)

	d.orderRepo.EXPECT().GetByID(ctx, order.ID).Return(order, nil)

	_, err := d.svc.Advance(ctx, supplier, order.ID)
	assertAppError(t, err, "WF_001")
}

// ==================== Approve Tests ====================

func TestOrderService_Approve_FromReviewCreatesPayout(t *testing.T) {
	d := setupOrderService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	order := testOrder(uuid.New(), uuid.New(), domain.OrderStatusAdminReview)
	notes := "verified invoice"

	d.orderRepo.EXPECT().GetByID(ctx, order.ID).Return(order, nil)
	d.orderRepo.EXPECT().
		UpdateStatus(ctx, order.ID, domain.OrderStatusAdminReview, domain.OrderStatusAdminApproved, &notes, (*string)(nil)).
		Return(true, nil)
	d.payoutRepo.EXPECT().GetByOrderID(ctx, order.ID).Return(nil, nil)
	d.payoutRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, p *domain.Payout) error {
			assert.Equal(t, order.ID, p.OrderID)
			assert.Equal(t, order.SupplierID, p.SupplierID)
			assert.Equal(t, order.TotalAmount, p.PayableAmount)
			assert.Equal(t, domain.PayoutStatusPending, p.Status)
			return nil
		})
	d.transitionRepo.EXPECT().Append(ctx, gomock.Any()).Return(nil)
	d.notifier.EXPECT().Publish(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, n domain.Notice) error {
			assert.Equal(t, domain.NoticeOrderApproved, n.Kind)
			return nil
		})

	got, err := d.svc.Approve(ctx, adminActor(), order.ID, &notes)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusAdminApproved, got.Status)
}

func TestOrderService_Approve_PayoutCreateFailureSurfaces(t *testing.T) {
	d := setupOrderService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	order := testOrder(uuid.New(), uuid.New(), domain.OrderStatusAdminReview)

	d.orderRepo.EXPECT().GetByID(ctx, order.ID).Return(order, nil)
	d.orderRepo.EXPECT().
		UpdateStatus(ctx, order.ID, domain.OrderStatusAdminReview, domain.OrderStatusAdminApproved, (*string)(nil), (*string)(nil)).
		Return(true, nil)
	d.payoutRepo.EXPECT().GetByOrderID(ctx, order.ID).Return(nil, nil)
	d.payoutRepo.EXPECT().Create(ctx, gomock.Any()).Return(errors.New("connection reset"))

	// A failed payout write rolls the approval back; the caller sees
	// an error instead of an approved order with no payout. No
	// transition record, no notice.
	result, err := d.svc.Approve(ctx, adminActor(), order.ID, nil)
	assertAppError(t, err, "SYS_001")
	require.Nil(t, result)
}

func TestOrderService_Approve_DirectFromPending(t *testing.T) {
	d := setupOrderService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	order := testOrder(uuid.New(), uuid.New(), domain.OrderStatusPending)

	d.orderRepo.EXPECT().GetByID(ctx, order.ID).Return(order, nil)
	d.orderRepo.EXPECT().
		UpdateStatus(ctx, order.ID, domain.OrderStatusPending, domain.OrderStatusAdminApproved, (*string)(nil), (*string)(nil)).
		Return(true, nil)
	d.payoutRepo.EXPECT().GetByOrderID(ctx, order.ID).Return(nil, nil)
	d.payoutRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
	d.transitionRepo.EXPECT().Append(ctx, gomock.Any()).Return(nil)
	d.notifier.EXPECT().Publish(ctx, gomock.Any()).Return(nil)

	_, err := d.svc.Approve(ctx, adminActor(), order.ID, nil)
	require.NoError(t, err)
}

func TestOrderService_Approve_ExistingPayoutNotDuplicated(t *testing.T) {
	d := setupOrderService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	order := testOrder(uuid.New(), uuid.New(), domain.OrderStatusAdminReview)

	d.orderRepo.EXPECT().GetByID(ctx, order.ID).Return(order, nil)
	d.orderRepo.EXPECT().UpdateStatus(ctx, order.ID, order.Status, domain.OrderStatusAdminApproved, (*string)(nil), (*string)(nil)).Return(true, nil)
	d.payoutRepo.EXPECT().GetByOrderID(ctx, order.ID).
		Return(&domain.Payout{ID: uuid.New(), OrderID: order.ID}, nil)
	// No Create expectation: the existing payout stands.
	d.transitionRepo.EXPECT().Append(ctx, gomock.Any()).Return(nil)
	d.notifier.EXPECT().Publish(ctx, gomock.Any()).Return(nil)

	_, err := d.svc.Approve(ctx, adminActor(), order.ID, nil)
	require.NoError(t, err)
}

func TestOrderService_Approve_SellerForbidden(t *testing.T) {
	d := setupOrderService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	order := testOrder(uuid.New(), uuid.New(), domain.OrderStatusAdminReview)

	d.orderRepo.EXPECT().GetByID(ctx, order.ID).Return(order, nil)

	_, err := d.svc.Approve(ctx, ports.Actor{ID: order.SellerID, Role: domain.RoleSeller}, order.ID, nil)
	assertAppError(t, err, "SEC_002")
}

// Two admins race the same review; the loser is told what actually
// happened to the order.
func TestOrderService_Approve_LostRace(t *testing.T) {
	d := setupOrderService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	order := testOrder(uuid.New(), uuid.New(), domain.OrderStatusAdminReview)

	moved := *order
	moved.Status = domain.OrderStatusAdminRejected

	d.orderRepo.EXPECT().GetByID(ctx, order.ID).Return(order, nil)
	d.orderRepo.EXPECT().
		UpdateStatus(ctx, order.ID, domain.OrderStatusAdminReview, domain.OrderStatusAdminApproved, (*string)(nil), (*string)(nil)).
		Return(false, nil)
	d.orderRepo.EXPECT().GetByID(ctx, order.ID).Return(&moved, nil)

	_, err := d.svc.Approve(ctx, adminActor(), order.ID, nil)
	assertAppError(t, err, "WF_001")
	assert.Contains(t, err.Error(), "admin_rejected")
}

// ==================== Reject Tests ====================

func TestOrderService_Reject_Success(t *testing.T) {
	d := setupOrderService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	order := testOrder(uuid.New(), uuid.New(), domain.OrderStatusAdminReview)
	reason := "pricing anomaly"

	d.orderRepo.EXPECT().GetByID(ctx, order.ID).Return(order, nil)
	d.orderRepo.EXPECT().
		UpdateStatus(ctx, order.ID, domain.OrderStatusAdminReview, domain.OrderStatusAdminRejected, (*string)(nil), &reason).
		Return(true, nil)
	d.transitionRepo.EXPECT().Append(ctx, gomock.Any()).Return(nil)
	d.notifier.EXPECT().Publish(ctx, gomock.Any()).Return(nil)

	got, err := d.svc.Reject(ctx, adminActor(), order.ID, reason)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusAdminRejected, got.Status)
}

func TestOrderService_Reject_MissingReason(t *testing.T) {
	d := setupOrderService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.Reject(context.Background(), adminActor(), uuid.New(), "")
	assertAppError(t, err, "WF_002")
}

// ==================== List Tests ====================

func TestOrderService_List_SellerScoped(t *testing.T) {
	d := setupOrderService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	seller := ports.Actor{ID: uuid.New(), Role: domain.RoleSeller}

	d.orderRepo.EXPECT().List(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, params ports.OrderListParams) ([]domain.Order, int64, error) {
			require.NotNil(t, params.SellerID)
			assert.Equal(t, seller.ID, *params.SellerID)
			assert.Nil(t, params.SupplierID)
			return nil, 0, nil
		})

	_, _, err := d.svc.List(ctx, seller, ports.OrderListParams{})
	require.NoError(t, err)
}

func TestOrderService_List_SupplierScoped(t *testing.T) {
	d := setupOrderService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	supplier := supplierActor()

	d.orderRepo.EXPECT().List(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, params ports.OrderListParams) ([]domain.Order, int64, error) {
			require.NotNil(t, params.SupplierID)
			assert.Equal(t, supplier.ID, *params.SupplierID)
			assert.Nil(t, params.SellerID)
			return nil, 0, nil
		})

	_, _, err := d.svc.List(ctx, supplier, ports.OrderListParams{})
	require.NoError(t, err)
}

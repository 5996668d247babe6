package service

import (
	"context"
	"testing"
	"time"

	"marketplace-backoffice/internal/core/domain"
	"marketplace-backoffice/internal/core/ports"
	"marketplace-backoffice/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type productTestDeps struct {
	svc            *ProductServiceImpl
	productRepo    *mocks.MockProductRepository
	transitionRepo *mocks.MockTransitionRepository
	notifier       *mocks.MockNoticePublisher
	ctrl           *gomock.Controller
}

func setupProductService(t *testing.T) *productTestDeps {
	ctrl := gomock.NewController(t)
	d := &productTestDeps{
		productRepo:    mocks.NewMockProductRepository(ctrl),
		transitionRepo: mocks.NewMockTransitionRepository(ctrl),
		notifier:       mocks.NewMockNoticePublisher(ctrl),
		ctrl:           ctrl,
	}
	d.svc = NewProductService(d.productRepo, d.transitionRepo, d.notifier, zerolog.Nop())
	return d
}

func supplierActor() ports.Actor {
	return ports.Actor{ID: uuid.New(), Role: domain.RoleSupplier}
}

func adminActor() ports.Actor {
	return ports.Actor{ID: uuid.New(), Role: domain.RoleAdmin}
}

func pendingProduct(supplierID uuid.UUID) *domain.Product {
	return &domain.Product{
		ID:         uuid.New(),
		SupplierID: supplierID,
		Name:       "Cotton Kurta",
		SKU:        "KUR-001",
		BasePrice:  45000,
		GSTRate:    5,
		Stock:      120,
		Status:     domain.ProductStatusPending,
	}
}

// ==================== Submit Tests ====================

func TestProductService_Submit_Success(t *testing.T) {
	d := setupProductService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	actor := supplierActor()

	d.productRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
	d.notifier.EXPECT().Publish(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, n domain.Notice) error {
			assert.Equal(t, domain.NoticeNewProductAdded, n.Kind)
			return nil
		})

	product, err := d.svc.Submit(ctx, actor, ports.SubmitProductRequest{
		Name: "Cotton Kurta", SKU: "KUR-001", BasePrice: 45000, GSTRate: 5, Stock: 120,
	})
	require.NoError(t, err)
	assert.Equal(t, actor.ID, product.SupplierID)
	assert.Equal(t, domain.ProductStatusPending, product.Status)
	assert.Zero(t, product.FinalPrice)
}

func TestProductService_Submit_SellerForbidden(t *testing.T) {
	d := setupProductService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.Submit(context.Background(),
		ports.Actor{ID: uuid.New(), Role: domain.RoleSeller},
		ports.SubmitProductRequest{Name: "x", BasePrice: 100})
	assertAppError(t, err, "SEC_002")
}

func TestProductService_Submit_NonPositivePrice(t *testing.T) {
	d := setupProductService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.Submit(context.Background(), supplierActor(),
		ports.SubmitProductRequest{Name: "x", BasePrice: 0})
	assertAppError(t, err, "WF_002")
}

// ==================== Approve Tests ====================

func TestProductService_Approve_Success(t *testing.T) {
	d := setupProductService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	actor := adminActor()
	product := pendingProduct(uuid.New())

	d.productRepo.EXPECT().GetByID(ctx, product.ID).Return(product, nil)
	d.productRepo.EXPECT().
		Approve(ctx, product.ID, int64(5000), int64(50000), gomock.AssignableToTypeOf(time.Time{})).
		Return(true, nil)
	d.transitionRepo.EXPECT().Append(ctx, gomock.Any()).Return(nil)
	d.notifier.EXPECT().Publish(ctx, gomock.Any()).Return(nil)

	got, err := d.svc.Approve(ctx, actor, product.ID, 5000)
	require.NoError(t, err)
	assert.Equal(t, domain.ProductStatusApproved, got.Status)
	assert.Equal(t, int64(50000), got.FinalPrice)
	require.NotNil(t, got.ApprovedAt)
}

func TestProductService_Approve_SupplierForbidden(t *testing.T) {
	d := setupProductService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	product := pendingProduct(uuid.New())

	d.productRepo.EXPECT().GetByID(ctx, product.ID).Return(product, nil)

	_, err := d.svc.Approve(ctx, supplierActor(), product.ID, 1000)
	assertAppError(t, err, "SEC_002")
}

func TestProductService_Approve_AlreadyReviewed(t *testing.T) {
	d := setupProductService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	product := pendingProduct(uuid.New())
	product.Status = domain.ProductStatusRejected

	d.productRepo.EXPECT().GetByID(ctx, product.ID).Return(product, nil)

	_, err := d.svc.Approve(ctx, adminActor(), product.ID, 1000)
	assertAppError(t, err, "WF_001")
}

func TestProductService_Approve_NegativeMargin(t *testing.T) {
	d := setupProductService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.Approve(context.Background(), adminActor(), uuid.New(), -1)
	assertAppError(t, err, "WF_002")
}

func TestProductService_Approve_NotFound(t *testing.T) {
	d := setupProductService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	id := uuid.New()

	d.productRepo.EXPECT().GetByID(ctx, id).Return(nil, nil)

	_, err := d.svc.Approve(ctx, adminActor(), id, 1000)
	assertAppError(t, err, "WF_003")
}

// A lost compare-and-swap surfaces as an invalid transition reporting
// the state that actually won the race.
func TestProductService_Approve_LostRace(t *testing.T) {
	d := setupProductService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	product := pendingProduct(uuid.New())

	moved := *product
	moved.Status = domain.ProductStatusRejected

	d.productRepo.EXPECT().GetByID(ctx, product.ID).Return(product, nil)
	d.productRepo.EXPECT().
		Approve(ctx, product.ID, int64(1000), int64(46000), gomock.Any()).
		Return(false, nil)
	d.productRepo.EXPECT().GetByID(ctx, product.ID).Return(&moved, nil)

	_, err := d.svc.Approve(ctx, adminActor(), product.ID, 1000)
	assertAppError(t, err, "WF_001")
	assert.Contains(t, err.Error(), "rejected")
}

// ==================== Reject Tests ====================

func TestProductService_Reject_Success(t *testing.T) {
	d := setupProductService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	product := pendingProduct(uuid.New())

	d.productRepo.EXPECT().GetByID(ctx, product.ID).Return(product, nil)
	d.productRepo.EXPECT().Reject(ctx, product.ID, "blurry images").Return(true, nil)
	d.transitionRepo.EXPECT().Append(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, rec *domain.TransitionRecord) error {
			require.NotNil(t, rec.Reason)
			assert.Equal(t, "blurry images", *rec.Reason)
			return nil
		})
	d.notifier.EXPECT().Publish(ctx, gomock.Any()).Return(nil)

	got, err := d.svc.Reject(ctx, adminActor(), product.ID, "blurry images")
	require.NoError(t, err)
	assert.Equal(t, domain.ProductStatusRejected, got.Status)
	require.NotNil(t, got.RejectionReason)
	assert.Equal(t, "blurry images", *got.RejectionReason)
}

func TestProductService_Reject_MissingReason(t *testing.T) {
	d := setupProductService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.Reject(context.Background(), adminActor(), uuid.New(), "")
	assertAppError(t, err, "WF_002")
}

// ==================== List Tests ====================

func TestProductService_List_SupplierScopedToOwn(t *testing.T) {
	d := setupProductService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	actor := supplierActor()

	d.productRepo.EXPECT().List(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, params ports.ProductListParams) ([]domain.Product, int64, error) {
			require.NotNil(t, params.SupplierID)
			assert.Equal(t, actor.ID, *params.SupplierID)
			assert.Equal(t, 1, params.Page)
			assert.Equal(t, 20, params.PageSize)
			return nil, 0, nil
		})

	_, _, err := d.svc.List(ctx, actor, ports.ProductListParams{})
	require.NoError(t, err)
}

func TestProductService_List_AdminSeesAll(t *testing.T) {
	d := setupProductService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()

	d.productRepo.EXPECT().List(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, params ports.ProductListParams) ([]domain.Product, int64, error) {
			assert.Nil(t, params.SupplierID)
			return []domain.Product{*pendingProduct(uuid.New())}, 1, nil
		})

	products, total, err := d.svc.List(ctx, adminActor(), ports.ProductListParams{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, int64(1), total)
}

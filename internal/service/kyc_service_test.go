package service

import (
	"context"
	"encoding/json"
	"errors"
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

type kycTestDeps struct {
	svc            *KYCServiceImpl
	kycRepo        *mocks.MockKYCRepository
	userRepo       *mocks.MockUserRepository
	transitionRepo *mocks.MockTransitionRepository
	notifier       *mocks.MockNoticePublisher
	ctrl           *gomock.Controller
}

// stubTransactor hands the mock repos straight to the callback.
// Rollback semantics live in the postgres transactor and its tests;
// here the interesting part is which writes share the transaction.
type stubTransactor struct {
	repos ports.TxRepos
}

func (s *stubTransactor) WithinTx(ctx context.Context, fn func(ports.TxRepos) error) error {
	return fn(s.repos)
}

func setupKYCService(t *testing.T) *kycTestDeps {
	ctrl := gomock.NewController(t)
	d := &kycTestDeps{
		kycRepo:        mocks.NewMockKYCRepository(ctrl),
		userRepo:       mocks.NewMockUserRepository(ctrl),
		transitionRepo: mocks.NewMockTransitionRepository(ctrl),
		notifier:       mocks.NewMockNoticePublisher(ctrl),
		ctrl:           ctrl,
	}
	tx := &stubTransactor{repos: ports.TxRepos{Users: d.userRepo, KYC: d.kycRepo}}
	d.svc = NewKYCService(d.kycRepo, d.userRepo, d.transitionRepo, tx, d.notifier, zerolog.Nop())
	return d
}

var testDocuments = json.RawMessage(`{"pan":"ABCDE1234F","gstin":"22ABCDE1234F1Z5"}`)

func pendingSubmission(userID uuid.UUID) *domain.KYCSubmission {
	return &domain.KYCSubmission{
		ID:        uuid.New(),
		UserID:    userID,
		Documents: testDocuments,
		Status:    domain.KYCStatusPending,
	}
}

func pendingSeller() *domain.User {
	return &domain.User{
		ID:        uuid.New(),
		Role:      domain.RoleSeller,
		Status:    domain.UserStatusPending,
		KYCStatus: domain.KYCStatusPending,
	}
}

// ==================== Submit Tests ====================

func TestKYCService_Submit_Success(t *testing.T) {
	d := setupKYCService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	actor := ports.Actor{ID: uuid.New(), Role: domain.RoleSeller}

	d.kycRepo.EXPECT().GetByUserID(ctx, actor.ID).Return(nil, nil)
	d.kycRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)

	sub, err := d.svc.Submit(ctx, actor, testDocuments)
	require.NoError(t, err)
	assert.Equal(t, actor.ID, sub.UserID)
	assert.Equal(t, domain.KYCStatusPending, sub.Status)
}

func TestKYCService_Submit_Duplicate(t *testing.T) {
	d := setupKYCService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	actor := ports.Actor{ID: uuid.New(), Role: domain.RoleSupplier}

	d.kycRepo.EXPECT().GetByUserID(ctx, actor.ID).Return(pendingSubmission(actor.ID), nil)

	_, err := d.svc.Submit(ctx, actor, testDocuments)
	assertAppError(t, err, "WF_004")
}

func TestKYCService_Submit_EmptyDocuments(t *testing.T) {
	d := setupKYCService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.Submit(context.Background(),
		ports.Actor{ID: uuid.New(), Role: domain.RoleSeller}, nil)
	assertAppError(t, err, "WF_002")
}

func TestKYCService_Submit_AdminForbidden(t *testing.T) {
	d := setupKYCService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.Submit(context.Background(), adminActor(), testDocuments)
	assertAppError(t, err, "SEC_002")
}

// ==================== Approve Tests ====================

func TestKYCService_Approve_SellerWithPlan(t *testing.T) {
	d := setupKYCService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	user := pendingSeller()
	sub := pendingSubmission(user.ID)
	plan := domain.PlanGrowth

	d.kycRepo.EXPECT().GetByID(ctx, sub.ID).Return(sub, nil)
	d.userRepo.EXPECT().GetByID(ctx, user.ID).Return(user, nil)
	d.kycRepo.EXPECT().
		Review(ctx, sub.ID, domain.KYCStatusApproved, (*string)(nil), gomock.AssignableToTypeOf(time.Time{})).
		Return(true, nil)
	d.userRepo.EXPECT().
		UpdateKYCStatus(ctx, user.ID, domain.KYCStatusPending, domain.KYCStatusApproved, &plan).
		Return(true, nil)
	// KYC approval activates the still-pending account.
	d.userRepo.EXPECT().
		UpdateStatus(ctx, user.ID, domain.UserStatusPending, domain.UserStatusActive, (*string)(nil)).
		Return(true, nil)
	d.transitionRepo.EXPECT().Append(ctx, gomock.Any()).Return(nil)
	d.notifier.EXPECT().Publish(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, n domain.Notice) error {
			assert.Equal(t, domain.NoticeKYCApproved, n.Kind)
			return nil
		})

	got, err := d.svc.Approve(ctx, adminActor(), sub.ID, &plan)
	require.NoError(t, err)
	assert.Equal(t, domain.KYCStatusApproved, got.Status)
	require.NotNil(t, got.ReviewedAt)
}

func TestKYCService_Approve_SellerWithoutPlan(t *testing.T) {
	d := setupKYCService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	user := pendingSeller()
	sub := pendingSubmission(user.ID)

	d.kycRepo.EXPECT().GetByID(ctx, sub.ID).Return(sub, nil)
	d.userRepo.EXPECT().GetByID(ctx, user.ID).Return(user, nil)

	_, err := d.svc.Approve(ctx, adminActor(), sub.ID, nil)
	assertAppError(t, err, "WF_002")
}

func TestKYCService_Approve_SupplierIgnoresPlan(t *testing.T) {
	d := setupKYCService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	user := pendingSeller()
	user.Role = domain.RoleSupplier
	user.Status = domain.UserStatusActive
	sub := pendingSubmission(user.ID)
	plan := domain.PlanStarter

	d.kycRepo.EXPECT().GetByID(ctx, sub.ID).Return(sub, nil)
	d.userRepo.EXPECT().GetByID(ctx, user.ID).Return(user, nil)
	d.kycRepo.EXPECT().Review(ctx, sub.ID, domain.KYCStatusApproved, (*string)(nil), gomock.Any()).Return(true, nil)
	// Plan is dropped for suppliers, and an already-active account is
	// left alone.
	d.userRepo.EXPECT().
		UpdateKYCStatus(ctx, user.ID, domain.KYCStatusPending, domain.KYCStatusApproved, (*domain.Plan)(nil)).
		Return(true, nil)
	d.transitionRepo.EXPECT().Append(ctx, gomock.Any()).Return(nil)
	d.notifier.EXPECT().Publish(ctx, gomock.Any()).Return(nil)

	_, err := d.svc.Approve(ctx, adminActor(), sub.ID, &plan)
	require.NoError(t, err)
}

func TestKYCService_Approve_AlreadyReviewed(t *testing.T) {
	d := setupKYCService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	user := pendingSeller()
	sub := pendingSubmission(user.ID)
	sub.Status = domain.KYCStatusApproved
	plan := domain.PlanStarter

	d.kycRepo.EXPECT().GetByID(ctx, sub.ID).Return(sub, nil)
	d.userRepo.EXPECT().GetByID(ctx, user.ID).Return(user, nil)

	_, err := d.svc.Approve(ctx, adminActor(), sub.ID, &plan)
	assertAppError(t, err, "WF_001")
}

func TestKYCService_Approve_LostRace(t *testing.T) {
	d := setupKYCService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	user := pendingSeller()
	sub := pendingSubmission(user.ID)
	plan := domain.PlanScale

	moved := *sub
	moved.Status = domain.KYCStatusRejected

	d.kycRepo.EXPECT().GetByID(ctx, sub.ID).Return(sub, nil)
	d.userRepo.EXPECT().GetByID(ctx, user.ID).Return(user, nil)
	d.kycRepo.EXPECT().Review(ctx, sub.ID, domain.KYCStatusApproved, (*string)(nil), gomock.Any()).Return(false, nil)
	d.kycRepo.EXPECT().GetByID(ctx, sub.ID).Return(&moved, nil)

	_, err := d.svc.Approve(ctx, adminActor(), sub.ID, &plan)
	assertAppError(t, err, "WF_001")
	assert.Contains(t, err.Error(), "rejected")
}

func TestKYCService_Approve_UserUpdateFailureSurfaces(t *testing.T) {
	d := setupKYCService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	user := pendingSeller()
	sub := pendingSubmission(user.ID)
	plan := domain.PlanStarter

	d.kycRepo.EXPECT().GetByID(ctx, sub.ID).Return(sub, nil)
	d.userRepo.EXPECT().GetByID(ctx, user.ID).Return(user, nil)
	d.kycRepo.EXPECT().Review(ctx, sub.ID, domain.KYCStatusApproved, (*string)(nil), gomock.Any()).Return(true, nil)
	d.userRepo.EXPECT().
		UpdateKYCStatus(ctx, user.ID, domain.KYCStatusPending, domain.KYCStatusApproved, &plan).
		Return(false, errors.New("connection reset"))

	// The user-record write failing rolls the whole review back; the
	// caller must see an error, not an approved submission. No record
	// is appended and no notice goes out.
	result, err := d.svc.Approve(ctx, adminActor(), sub.ID, &plan)
	assertAppError(t, err, "SYS_001")
	require.Nil(t, result)
}

func TestKYCService_Approve_ActivationFailureSurfaces(t *testing.T) {
	d := setupKYCService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	user := pendingSeller()
	sub := pendingSubmission(user.ID)
	plan := domain.PlanGrowth

	d.kycRepo.EXPECT().GetByID(ctx, sub.ID).Return(sub, nil)
	d.userRepo.EXPECT().GetByID(ctx, user.ID).Return(user, nil)
	d.kycRepo.EXPECT().Review(ctx, sub.ID, domain.KYCStatusApproved, (*string)(nil), gomock.Any()).Return(true, nil)
	d.userRepo.EXPECT().
		UpdateKYCStatus(ctx, user.ID, domain.KYCStatusPending, domain.KYCStatusApproved, &plan).
		Return(true, nil)
	d.userRepo.EXPECT().
		UpdateStatus(ctx, user.ID, domain.UserStatusPending, domain.UserStatusActive, (*string)(nil)).
		Return(false, errors.New("connection reset"))

	result, err := d.svc.Approve(ctx, adminActor(), sub.ID, &plan)
	assertAppError(t, err, "SYS_001")
	require.Nil(t, result)
}

// ==================== Reject Tests ====================

func TestKYCService_Reject_Success(t *testing.T) {
	d := setupKYCService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	user := pendingSeller()
	sub := pendingSubmission(user.ID)
	reason := "PAN mismatch"

	d.kycRepo.EXPECT().GetByID(ctx, sub.ID).Return(sub, nil)
	d.userRepo.EXPECT().GetByID(ctx, user.ID).Return(user, nil)
	d.kycRepo.EXPECT().Review(ctx, sub.ID, domain.KYCStatusRejected, &reason, gomock.Any()).Return(true, nil)
	d.userRepo.EXPECT().
		UpdateKYCStatus(ctx, user.ID, domain.KYCStatusPending, domain.KYCStatusRejected, (*domain.Plan)(nil)).
		Return(true, nil)
	d.transitionRepo.EXPECT().Append(ctx, gomock.Any()).Return(nil)
	d.notifier.EXPECT().Publish(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, n domain.Notice) error {
			assert.Equal(t, domain.NoticeKYCRejected, n.Kind)
			return nil
		})

	got, err := d.svc.Reject(ctx, adminActor(), sub.ID, reason)
	require.NoError(t, err)
	assert.Equal(t, domain.KYCStatusRejected, got.Status)
	require.NotNil(t, got.RejectionReason)
}

func TestKYCService_Reject_MissingReason(t *testing.T) {
	d := setupKYCService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.Reject(context.Background(), adminActor(), uuid.New(), "")
	assertAppError(t, err, "WF_002")
}

// ==================== List Tests ====================

func TestKYCService_List_NonAdminSeesOwnOnly(t *testing.T) {
	d := setupKYCService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	actor := ports.Actor{ID: uuid.New(), Role: domain.RoleSeller}
	sub := pendingSubmission(actor.ID)

	d.kycRepo.EXPECT().GetByUserID(ctx, actor.ID).Return(sub, nil)

	subs, total, err := d.svc.List(ctx, actor, ports.KYCListParams{})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, sub.ID, subs[0].ID)
	assert.Equal(t, int64(1), total)
}

func TestKYCService_List_AdminPaginated(t *testing.T) {
	d := setupKYCService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()

	d.kycRepo.EXPECT().List(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, params ports.KYCListParams) ([]domain.KYCSubmission, int64, error) {
			assert.Equal(t, 1, params.Page)
			assert.Equal(t, 20, params.PageSize)
			return nil, 0, nil
		})

	_, _, err := d.svc.List(ctx, adminActor(), ports.KYCListParams{Page: -3, PageSize: 10000})
	require.NoError(t, err)
}

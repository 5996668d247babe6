package service

import (
	"context"
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

type userAdminTestDeps struct {
	svc            *UserAdminServiceImpl
	userRepo       *mocks.MockUserRepository
	hashSvc        *mocks.MockHashService
	transitionRepo *mocks.MockTransitionRepository
	ctrl           *gomock.Controller
}

func setupUserAdminService(t *testing.T) *userAdminTestDeps {
	ctrl := gomock.NewController(t)
	d := &userAdminTestDeps{
		userRepo:       mocks.NewMockUserRepository(ctrl),
		hashSvc:        mocks.NewMockHashService(ctrl),
		transitionRepo: mocks.NewMockTransitionRepository(ctrl),
		ctrl:           ctrl,
	}
	d.svc = NewUserAdminService(d.userRepo, d.hashSvc, d.transitionRepo, zerolog.Nop())
	return d
}

func superadminActor() ports.Actor {
	return ports.Actor{ID: uuid.New(), Role: domain.RoleSuperadmin}
}

func accountWithStatus(status domain.UserStatus) *domain.User {
	return &domain.User{
		ID:     uuid.New(),
		Name:   "Asha Traders",
		Email:  "asha@example.com",
		Phone:  "9876543210",
		Role:   domain.RoleSeller,
		Status: status,
	}
}

// ==================== Block / Unblock Tests ====================

func TestUserAdminService_Block_Success(t *testing.T) {
	d := setupUserAdminService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	user := accountWithStatus(domain.UserStatusActive)
	reason := "chargeback abuse"

	d.userRepo.EXPECT().GetByID(ctx, user.ID).Return(user, nil)
	d.userRepo.EXPECT().
		UpdateStatus(ctx, user.ID, domain.UserStatusActive, domain.UserStatusBlocked, &reason).
		Return(true, nil)
	d.transitionRepo.EXPECT().Append(ctx, gomock.Any()).Return(nil)

	got, err := d.svc.Block(ctx, adminActor(), user.ID, &reason)
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusBlocked, got.Status)
	require.NotNil(t, got.StatusReason)
	assert.Equal(t, reason, *got.StatusReason)
}

func TestUserAdminService_Block_AlreadyBlocked(t *testing.T) {
	d := setupUserAdminService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	user := accountWithStatus(domain.UserStatusBlocked)

	d.userRepo.EXPECT().GetByID(ctx, user.ID).Return(user, nil)

	_, err := d.svc.Block(ctx, adminActor(), user.ID, nil)
	assertAppError(t, err, "WF_001")
}

func TestUserAdminService_Block_SellerForbidden(t *testing.T) {
	d := setupUserAdminService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	user := accountWithStatus(domain.UserStatusActive)

	d.userRepo.EXPECT().GetByID(ctx, user.ID).Return(user, nil)

	_, err := d.svc.Block(ctx, ports.Actor{ID: uuid.New(), Role: domain.RoleSeller}, user.ID, nil)
	assertAppError(t, err, "SEC_002")
}

func TestUserAdminService_Block_LostRace(t *testing.T) {
	d := setupUserAdminService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	user := accountWithStatus(domain.UserStatusActive)

	moved := *user
	moved.Status = domain.UserStatusBlocked

	d.userRepo.EXPECT().GetByID(ctx, user.ID).Return(user, nil)
	d.userRepo.EXPECT().
		UpdateStatus(ctx, user.ID, domain.UserStatusActive, domain.UserStatusBlocked, (*string)(nil)).
		Return(false, nil)
	d.userRepo.EXPECT().GetByID(ctx, user.ID).Return(&moved, nil)

	_, err := d.svc.Block(ctx, adminActor(), user.ID, nil)
	assertAppError(t, err, "WF_001")
	assert.Contains(t, err.Error(), "blocked")
}

func TestUserAdminService_Unblock_Success(t *testing.T) {
	d := setupUserAdminService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	user := accountWithStatus(domain.UserStatusBlocked)

	d.userRepo.EXPECT().GetByID(ctx, user.ID).Return(user, nil)
	d.userRepo.EXPECT().
		UpdateStatus(ctx, user.ID, domain.UserStatusBlocked, domain.UserStatusActive, (*string)(nil)).
		Return(true, nil)
	d.transitionRepo.EXPECT().Append(ctx, gomock.Any()).Return(nil)

	got, err := d.svc.Unblock(ctx, adminActor(), user.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusActive, got.Status)
}

func TestUserAdminService_NotFound(t *testing.T) {
	d := setupUserAdminService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	id := uuid.New()

	d.userRepo.EXPECT().GetByID(ctx, id).Return(nil, nil)

	_, err := d.svc.Block(ctx, adminActor(), id, nil)
	assertAppError(t, err, "WF_003")
}

// ==================== Delete Tests ====================

func TestUserAdminService_Delete_BlockedAccount(t *testing.T) {
	d := setupUserAdminService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	user := accountWithStatus(domain.UserStatusBlocked)

	d.userRepo.EXPECT().GetByID(ctx, user.ID).Return(user, nil)
	d.userRepo.EXPECT().Delete(ctx, user.ID).Return(nil)

	err := d.svc.Delete(ctx, superadminActor(), user.ID)
	require.NoError(t, err)
}

func TestUserAdminService_Delete_ActiveAccountRefused(t *testing.T) {
	d := setupUserAdminService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	user := accountWithStatus(domain.UserStatusActive)

	d.userRepo.EXPECT().GetByID(ctx, user.ID).Return(user, nil)

	err := d.svc.Delete(ctx, superadminActor(), user.ID)
	assertAppError(t, err, "WF_002")
}

func TestUserAdminService_Delete_AdminForbidden(t *testing.T) {
	d := setupUserAdminService(t)
	defer d.ctrl.Finish()

	// Deletion is superadmin-only; a plain admin may not.
	err := d.svc.Delete(context.Background(), adminActor(), uuid.New())
	assertAppError(t, err, "SEC_002")
}

// ==================== ResetPassword Tests ====================

func TestUserAdminService_ResetPassword_Success(t *testing.T) {
	d := setupUserAdminService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()
	user := accountWithStatus(domain.UserStatusActive)

	d.userRepo.EXPECT().GetByID(ctx, user.ID).Return(user, nil)
	d.hashSvc.EXPECT().Hash(user.Phone).Return("argon2id$phone-hash", nil)
	d.userRepo.EXPECT().ResetCredential(ctx, user.ID, "argon2id$phone-hash", true).Return(nil)

	err := d.svc.ResetPassword(ctx, adminActor(), user.ID)
	require.NoError(t, err)
}

func TestUserAdminService_ResetPassword_SellerForbidden(t *testing.T) {
	d := setupUserAdminService(t)
	defer d.ctrl.Finish()

	err := d.svc.ResetPassword(context.Background(),
		ports.Actor{ID: uuid.New(), Role: domain.RoleSeller}, uuid.New())
	assertAppError(t, err, "SEC_002")
}

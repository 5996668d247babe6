package postgres

import (
	"context"
	"testing"
	"time"

	"marketplace-backoffice/internal/core/domain"
	"marketplace-backoffice/internal/core/ports"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func newTestUser() *domain.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.User{
		ID:           uuid.New(),
		Name:         "Asha Traders",
		Email:        "asha@example.com",
		Phone:        "9876543210",
		PasswordHash: "argon2_hash",
		Role:         domain.RoleSeller,
		Status:       domain.UserStatusActive,
		KYCStatus:    domain.KYCStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func userDBColumns() []string {
	return []string{"id", "name", "email", "phone", "password_hash", "role", "status",
		"kyc_status", "plan", "status_reason", "must_change_password", "created_at", "updated_at"}
}

func userRow(u *domain.User) *pgxmock.Rows {
	return pgxmock.NewRows(userDBColumns()).AddRow(
		u.ID, u.Name, u.Email, u.Phone, u.PasswordHash,
		u.Role, u.Status, u.KYCStatus, u.Plan, u.StatusReason,
		u.MustChangePassword, u.CreatedAt, u.UpdatedAt,
	)
}

func TestUserRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	u := newTestUser()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(
			u.ID, u.Name, u.Email, u.Phone, u.PasswordHash,
			u.Role, u.Status, u.KYCStatus, u.Plan, u.StatusReason,
			u.MustChangePassword, u.CreatedAt, u.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), u)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	u := newTestUser()

	mock.ExpectQuery("SELECT .+ FROM users WHERE email").
		WithArgs(u.Email).
		WillReturnRows(userRow(u))

	result, err := repo.GetByEmail(context.Background(), u.Email)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, u.ID, result.ID)
	assert.Equal(t, u.Email, result.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(userDBColumns()))

	result, err := repo.GetByID(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_UpdateStatus_Swapped(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	id := uuid.New()
	reason := strPtr("fraudulent listings")

	mock.ExpectExec("UPDATE users SET status").
		WithArgs(domain.UserStatusBlocked, reason, id, domain.UserStatusActive).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	swapped, err := repo.UpdateStatus(context.Background(), id, domain.UserStatusActive, domain.UserStatusBlocked, reason)
	assert.NoError(t, err)
	assert.True(t, swapped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_UpdateStatus_StatusMoved(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE users SET status").
		WithArgs(domain.UserStatusBlocked, (*string)(nil), id, domain.UserStatusActive).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	swapped, err := repo.UpdateStatus(context.Background(), id, domain.UserStatusActive, domain.UserStatusBlocked, nil)
	assert.NoError(t, err)
	assert.False(t, swapped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_UpdateKYCStatus_WithPlan(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	id := uuid.New()
	plan := domain.PlanGrowth

	mock.ExpectExec("UPDATE users SET kyc_status").
		WithArgs(domain.KYCStatusApproved, &plan, id, domain.KYCStatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	swapped, err := repo.UpdateKYCStatus(context.Background(), id, domain.KYCStatusPending, domain.KYCStatusApproved, &plan)
	assert.NoError(t, err)
	assert.True(t, swapped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_ResetCredential(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs("new_hash", true, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.ResetCredential(context.Background(), id, "new_hash", true)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Delete_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)

	mock.ExpectExec("DELETE FROM users").
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err = repo.Delete(context.Background(), uuid.New())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_List_FilterByRole(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)
	u := newTestUser()
	role := domain.RoleSeller

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(role).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT .+ FROM users WHERE role").
		WithArgs(role, 20, 0).
		WillReturnRows(userRow(u))

	users, total, err := repo.List(context.Background(), ports.UserListParams{
		Role: &role, Page: 1, PageSize: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, u.Email, users[0].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_CountByStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepo(mock)

	mock.ExpectQuery("SELECT COUNT.+ FROM users WHERE status").
		WithArgs(domain.UserStatusBlocked).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))

	count, err := repo.CountByStatus(context.Background(), domain.UserStatusBlocked)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

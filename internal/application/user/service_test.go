package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egovle/sevasetu/internal/domain/task"
	domain "github.com/egovle/sevasetu/internal/domain/user"
	"github.com/egovle/sevasetu/internal/infrastructure/memory"
)

func register(t *testing.T, svc *Service, username string, role domain.Role) *domain.User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterInput{
		Username: username,
		Password: "a-long-enough-one",
		Name:     username,
		Role:     role,
	})
	require.NoError(t, err)
	return u
}

func TestRegisterOpensWallet(t *testing.T) {
	st := memory.NewStore()
	svc := NewService(st, zerolog.Nop())
	ctx := context.Background()

	u := register(t, svc, "sita", domain.RoleCustomer)
	account, err := st.Wallets().GetAccount(ctx, u.UserID)
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, int64(0), account.Balance)

	admin := register(t, svc, "admin", domain.RoleAdmin)
	account, err = st.Wallets().GetAccount(ctx, admin.UserID)
	require.NoError(t, err)
	assert.Nil(t, account, "admins have no ledger account")
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(memory.NewStore(), zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "x", Password: "a-long-enough-one", Name: "X", Role: domain.RoleCustomer})
	require.Error(t, err, "bad username")
	_, err = svc.Register(ctx, RegisterInput{Username: "sita", Password: "short", Name: "Sita", Role: domain.RoleCustomer})
	require.Error(t, err, "bad password")
	_, err = svc.Register(ctx, RegisterInput{Username: "sita", Password: "a-long-enough-one", Role: domain.RoleCustomer})
	require.Error(t, err, "missing name")
	_, err = svc.Register(ctx, RegisterInput{Username: "sita", Password: "a-long-enough-one", Name: "Sita", Role: domain.Role("BOGUS")})
	require.Error(t, err, "bad role")
}

func TestRegisterDuplicateUsernameLeavesNoWallet(t *testing.T) {
	st := memory.NewStore()
	svc := NewService(st, zerolog.Nop())

	register(t, svc, "sita", domain.RoleCustomer)
	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "sita", Password: "a-long-enough-one", Name: "Other", Role: domain.RoleCustomer,
	})
	require.Error(t, err)
}

func TestVLEApprovalFlow(t *testing.T) {
	st := memory.NewStore()
	svc := NewService(st, zerolog.Nop())
	ctx := context.Background()

	vle := register(t, svc, "vle-one", domain.RoleVLE)
	assert.False(t, vle.Approved)
	assert.False(t, vle.CanBeAssigned())

	_, err := svc.ApproveVLE(ctx, domain.RoleVLE, vle.UserID)
	require.ErrorIs(t, err, task.ErrPermissionDenied)

	approved, err := svc.ApproveVLE(ctx, domain.RoleAdmin, vle.UserID)
	require.NoError(t, err)
	assert.True(t, approved.Approved)

	available, err := svc.SetAvailability(ctx, vle.UserID, true)
	require.NoError(t, err)
	assert.True(t, available.CanBeAssigned())
}

func TestApproveVLERejectsNonVLE(t *testing.T) {
	svc := NewService(memory.NewStore(), zerolog.Nop())
	customer := register(t, svc, "sita", domain.RoleCustomer)

	_, err := svc.ApproveVLE(context.Background(), domain.RoleAdmin, customer.UserID)
	require.Error(t, err)
}

func TestSetServices(t *testing.T) {
	svc := NewService(memory.NewStore(), zerolog.Nop())
	ctx := context.Background()
	vle := register(t, svc, "vle-one", domain.RoleVLE)

	services := []uuid.UUID{uuid.New(), uuid.New()}
	updated, err := svc.SetServices(ctx, vle.UserID, services)
	require.NoError(t, err)
	assert.Equal(t, services, updated.Services)
}

func TestSetStatusDisablesAccount(t *testing.T) {
	svc := NewService(memory.NewStore(), zerolog.Nop())
	ctx := context.Background()
	u := register(t, svc, "sita", domain.RoleCustomer)

	disabled, err := svc.SetStatus(ctx, domain.RoleAdmin, u.UserID, domain.StatusDisabled)
	require.NoError(t, err)
	assert.False(t, disabled.IsActive())

	_, err = svc.SetStatus(ctx, domain.RoleCustomer, u.UserID, domain.StatusActive)
	require.ErrorIs(t, err, task.ErrPermissionDenied)
}

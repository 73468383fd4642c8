package payment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/egovle/sevasetu/internal/domain/notification/mocks"
	"github.com/egovle/sevasetu/internal/domain/payment"
	"github.com/egovle/sevasetu/internal/domain/task"
	"github.com/egovle/sevasetu/internal/domain/user"
	"github.com/egovle/sevasetu/internal/domain/wallet"
	"github.com/egovle/sevasetu/internal/infrastructure/memory"
)

func newService(t *testing.T) (*Service, *memory.Store, uuid.UUID, uuid.UUID) {
	t.Helper()
	st := memory.NewStore()
	dispatcher := new(mocks.MockDispatcher)
	dispatcher.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe()
	dispatcher.On("NotifyAdmins", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe()
	svc := NewService(st, dispatcher, zerolog.Nop())

	ctx := context.Background()
	now := time.Now().UTC()
	customerID := uuid.New()
	require.NoError(t, st.Users().Create(ctx, &user.User{
		UserID: customerID, Username: "customer", Name: "Customer",
		Role: user.RoleCustomer, Status: user.StatusActive, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, st.Wallets().CreateAccount(ctx, &wallet.Account{
		UserID: customerID, Role: user.RoleCustomer, CreatedAt: now, UpdatedAt: now,
	}))
	adminID := uuid.New()
	require.NoError(t, st.Users().Create(ctx, &user.User{
		UserID: adminID, Username: "admin", Name: "Admin",
		Role: user.RoleAdmin, Status: user.StatusActive, CreatedAt: now, UpdatedAt: now,
	}))
	return svc, st, customerID, adminID
}

func TestCreateRequestValidation(t *testing.T) {
	svc, _, customerID, adminID := newService(t)
	ctx := context.Background()

	_, err := svc.CreateRequest(ctx, customerID, user.RoleCustomer, 0)
	require.ErrorIs(t, err, payment.ErrInvalidAmount)

	_, err = svc.CreateRequest(ctx, adminID, user.RoleAdmin, 500)
	require.ErrorIs(t, err, task.ErrPermissionDenied)

	req, err := svc.CreateRequest(ctx, customerID, user.RoleCustomer, 500)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPending, req.Status)
}

func TestApproveCreditsWalletOnce(t *testing.T) {
	svc, st, customerID, adminID := newService(t)
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, customerID, user.RoleCustomer, 500)
	require.NoError(t, err)

	approved, err := svc.Approve(ctx, adminID, user.RoleAdmin, req.RequestID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusApproved, approved.Status)
	require.NotNil(t, approved.DecidedBy)
	assert.Equal(t, adminID, *approved.DecidedBy)

	account, err := st.Wallets().GetAccount(ctx, customerID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), account.Balance)

	// Any further decision must fail and must not credit again.
	_, err = svc.Approve(ctx, adminID, user.RoleAdmin, req.RequestID)
	require.ErrorIs(t, err, payment.ErrAlreadyDecided)
	_, err = svc.Reject(ctx, adminID, user.RoleAdmin, req.RequestID)
	require.ErrorIs(t, err, payment.ErrAlreadyDecided)

	account, err = st.Wallets().GetAccount(ctx, customerID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), account.Balance)
}

func TestConcurrentDecisionsSettleOnce(t *testing.T) {
	svc, st, customerID, adminID := newService(t)
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, customerID, user.RoleCustomer, 500)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() { defer wg.Done(); _, errs[0] = svc.Approve(ctx, adminID, user.RoleAdmin, req.RequestID) }()
	go func() { defer wg.Done(); _, errs[1] = svc.Approve(ctx, adminID, user.RoleAdmin, req.RequestID) }()
	wg.Wait()

	winners := 0
	for _, e := range errs {
		if e == nil {
			winners++
		}
	}
	assert.Equal(t, 1, winners)

	account, err := st.Wallets().GetAccount(ctx, customerID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), account.Balance, "only one approval may credit")
}

func TestRejectLeavesWalletUntouched(t *testing.T) {
	svc, st, customerID, adminID := newService(t)
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, customerID, user.RoleCustomer, 500)
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, adminID, user.RoleAdmin, req.RequestID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusRejected, rejected.Status)

	account, err := st.Wallets().GetAccount(ctx, customerID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), account.Balance)
}

func TestWalletStatement(t *testing.T) {
	svc, st, customerID, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, st.Wallets().Apply(ctx, wallet.NewEntry(customerID, wallet.KindCredit, 1_000, "seed", "")))
	require.NoError(t, st.Wallets().Apply(ctx, wallet.NewEntry(customerID, wallet.KindDebit, 300, "task", "")))

	stmt, err := svc.WalletStatement(ctx, customerID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(700), stmt.Balance)
	require.Len(t, stmt.Entries, 2)
	assert.Equal(t, wallet.KindDebit, stmt.Entries[0].Kind, "newest entry first")

	_, err = svc.WalletStatement(ctx, uuid.New(), 10, 0)
	require.ErrorIs(t, err, wallet.ErrAccountNotFound)
}

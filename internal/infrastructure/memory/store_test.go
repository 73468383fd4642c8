package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egovle/sevasetu/internal/domain/store"
	"github.com/egovle/sevasetu/internal/domain/task"
	"github.com/egovle/sevasetu/internal/domain/user"
	"github.com/egovle/sevasetu/internal/domain/wallet"
)

func seedTask(t *testing.T, st *Store) *task.Task {
	t.Helper()
	now := time.Now().UTC()
	tk := &task.Task{
		TaskID:    uuid.New(),
		ServiceID: uuid.New(),
		Service:   "Income Certificate",
		CreatorID: uuid.New(),
		Status:    task.StatusUnassigned,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, st.Tasks().Create(context.Background(), tk))
	return tk
}

func TestTransactRollbackRestoresEverything(t *testing.T) {
	st := NewStore()
	ctx := context.Background()
	tk := seedTask(t, st)
	userID := uuid.New()
	now := time.Now().UTC()
	require.NoError(t, st.Wallets().CreateAccount(ctx, &wallet.Account{
		UserID: userID, Role: user.RoleVLE, CreatedAt: now, UpdatedAt: now,
	}))

	boom := errors.New("boom")
	err := st.Transact(ctx, func(tx store.Store) error {
		loaded, err := tx.Tasks().GetByID(ctx, tk.TaskID)
		require.NoError(t, err)
		loaded.Status = task.StatusPendingVLEAcceptance
		if err := tx.Tasks().Update(ctx, loaded); err != nil {
			return err
		}
		if err := tx.Wallets().Apply(ctx, wallet.NewEntry(userID, wallet.KindCredit, 100, "x", "")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := st.Tasks().GetByID(ctx, tk.TaskID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusUnassigned, got.Status)
	assert.Equal(t, 0, got.Version)

	account, err := st.Wallets().GetAccount(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), account.Balance)

	entries, err := st.Wallets().Entries(ctx, userID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNestedTransactJoins(t *testing.T) {
	st := NewStore()
	ctx := context.Background()
	tk := seedTask(t, st)

	boom := errors.New("boom")
	err := st.Transact(ctx, func(tx store.Store) error {
		return tx.Transact(ctx, func(inner store.Store) error {
			loaded, err := inner.Tasks().GetByID(ctx, tk.TaskID)
			require.NoError(t, err)
			loaded.Status = task.StatusPendingVLEAcceptance
			if err := inner.Tasks().Update(ctx, loaded); err != nil {
				return err
			}
			return boom
		})
	})
	require.ErrorIs(t, err, boom)

	got, err := st.Tasks().GetByID(ctx, tk.TaskID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusUnassigned, got.Status, "inner failure rolls back the outer transaction")
}

func TestUpdateComparesVersions(t *testing.T) {
	st := NewStore()
	ctx := context.Background()
	tk := seedTask(t, st)

	a, err := st.Tasks().GetByID(ctx, tk.TaskID)
	require.NoError(t, err)
	b, err := st.Tasks().GetByID(ctx, tk.TaskID)
	require.NoError(t, err)

	require.NoError(t, st.Tasks().Update(ctx, a))
	err = st.Tasks().Update(ctx, b)
	require.ErrorIs(t, err, task.ErrNoLongerAvailable)
}

func TestGetReturnsCopies(t *testing.T) {
	st := NewStore()
	ctx := context.Background()
	tk := seedTask(t, st)

	loaded, err := st.Tasks().GetByID(ctx, tk.TaskID)
	require.NoError(t, err)
	loaded.Status = task.StatusCompleted
	loaded.History = append(loaded.History, task.HistoryEntry{Action: task.ActionCreated})

	again, err := st.Tasks().GetByID(ctx, tk.TaskID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusUnassigned, again.Status, "mutation without Update must not leak into the store")
	assert.Empty(t, again.History)
}

func TestWalletApplyGuards(t *testing.T) {
	st := NewStore()
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now().UTC()
	require.NoError(t, st.Wallets().CreateAccount(ctx, &wallet.Account{
		UserID: userID, Role: user.RoleCustomer, CreatedAt: now, UpdatedAt: now,
	}))

	err := st.Wallets().Apply(ctx, wallet.NewEntry(uuid.New(), wallet.KindCredit, 100, "x", ""))
	require.ErrorIs(t, err, wallet.ErrAccountNotFound)

	err = st.Wallets().Apply(ctx, wallet.NewEntry(userID, wallet.KindDebit, 1, "x", ""))
	require.ErrorIs(t, err, wallet.ErrInsufficientFunds)

	require.NoError(t, st.Wallets().Apply(ctx, wallet.NewEntry(userID, wallet.KindCredit, 100, "x", "")))
	require.NoError(t, st.Wallets().Apply(ctx, wallet.NewEntry(userID, wallet.KindDebit, 100, "x", "")))

	account, err := st.Wallets().GetAccount(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), account.Balance)

	entries, err := st.Wallets().Entries(ctx, userID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "failed applies must not append entries")
}

func TestUserUniqueUsername(t *testing.T) {
	st := NewStore()
	ctx := context.Background()
	now := time.Now().UTC()
	mk := func(id uuid.UUID) *user.User {
		return &user.User{
			UserID: id, Username: "dup", Name: "Dup",
			Role: user.RoleCustomer, Status: user.StatusActive, CreatedAt: now, UpdatedAt: now,
		}
	}
	require.NoError(t, st.Users().Create(ctx, mk(uuid.New())))
	require.Error(t, st.Users().Create(ctx, mk(uuid.New())))
}

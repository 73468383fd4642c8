package camp

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/egovle/sevasetu/internal/domain/camp"
	"github.com/egovle/sevasetu/internal/domain/notification/mocks"
	"github.com/egovle/sevasetu/internal/domain/user"
	"github.com/egovle/sevasetu/internal/domain/wallet"
	"github.com/egovle/sevasetu/internal/infrastructure/memory"
)

type campFixture struct {
	svc     *Service
	store   *memory.Store
	adminID uuid.UUID
	vleA    uuid.UUID
	vleB    uuid.UUID
}

func newCampFixture(t *testing.T) *campFixture {
	t.Helper()
	st := memory.NewStore()
	dispatcher := new(mocks.MockDispatcher)
	dispatcher.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe()
	dispatcher.On("NotifyAdmins", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe()

	f := &campFixture{
		svc:     NewService(st, dispatcher, zerolog.Nop()),
		store:   st,
		adminID: uuid.New(),
	}
	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, st.Users().Create(ctx, &user.User{
		UserID: f.adminID, Username: "admin", Name: "Admin",
		Role: user.RoleAdmin, Status: user.StatusActive, CreatedAt: now, UpdatedAt: now,
	}))
	f.vleA = f.seedVLE(t, "vle-a")
	f.vleB = f.seedVLE(t, "vle-b")
	return f
}

func (f *campFixture) seedVLE(t *testing.T, name string) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	id := uuid.New()
	require.NoError(t, f.store.Users().Create(ctx, &user.User{
		UserID: id, Username: name, Name: name,
		Role: user.RoleVLE, Status: user.StatusActive, Approved: true, Available: true,
		CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, f.store.Wallets().CreateAccount(ctx, &wallet.Account{
		UserID: id, Role: user.RoleVLE, CreatedAt: now, UpdatedAt: now,
	}))
	return id
}

func (f *campFixture) balance(t *testing.T, userID uuid.UUID) int64 {
	t.Helper()
	account, err := f.store.Wallets().GetAccount(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, account)
	return account.Balance
}

func (f *campFixture) settled(t *testing.T) *camp.Camp {
	t.Helper()
	ctx := context.Background()
	c, err := f.svc.Create(ctx, user.RoleAdmin, "Aadhaar Camp", "Ponda", time.Now().Add(48*time.Hour))
	require.NoError(t, err)
	_, err = f.svc.Invite(ctx, user.RoleAdmin, c.CampID, f.vleA)
	require.NoError(t, err)
	_, err = f.svc.Invite(ctx, user.RoleAdmin, c.CampID, f.vleB)
	require.NoError(t, err)
	_, err = f.svc.Respond(ctx, f.vleA, c.CampID, true)
	require.NoError(t, err)
	_, err = f.svc.Respond(ctx, f.vleB, c.CampID, false)
	require.NoError(t, err)
	_, err = f.svc.Complete(ctx, user.RoleAdmin, c.CampID)
	require.NoError(t, err)
	return c
}

func TestCreateRequiresAdmin(t *testing.T) {
	f := newCampFixture(t)
	_, err := f.svc.Create(context.Background(), user.RoleVLE, "Camp", "Margao", time.Now())
	require.Error(t, err)
}

func TestInviteAndRespond(t *testing.T) {
	f := newCampFixture(t)
	ctx := context.Background()

	c, err := f.svc.Create(ctx, user.RoleAdmin, "Aadhaar Camp", "Ponda", time.Now().Add(48*time.Hour))
	require.NoError(t, err)

	invited, err := f.svc.Invite(ctx, user.RoleAdmin, c.CampID, f.vleA)
	require.NoError(t, err)
	require.Len(t, invited.Invitations, 1)
	assert.Equal(t, camp.InvitationPending, invited.Invitations[0].Status)

	// Double invitation is rejected.
	_, err = f.svc.Invite(ctx, user.RoleAdmin, c.CampID, f.vleA)
	require.ErrorIs(t, err, camp.ErrAlreadyInvited)

	answered, err := f.svc.Respond(ctx, f.vleA, c.CampID, true)
	require.NoError(t, err)
	assert.Equal(t, camp.InvitationAccepted, answered.Invitations[0].Status)

	// An invitation is answered at most once.
	_, err = f.svc.Respond(ctx, f.vleA, c.CampID, false)
	require.ErrorIs(t, err, camp.ErrAlreadyResponded)

	// Uninvited VLEs cannot respond.
	_, err = f.svc.Respond(ctx, f.vleB, c.CampID, true)
	require.ErrorIs(t, err, camp.ErrNotInvited)
}

func TestPayoutCreditsAcceptedVLEsOnce(t *testing.T) {
	f := newCampFixture(t)
	ctx := context.Background()
	c := f.settled(t)

	amounts := map[uuid.UUID]int64{f.vleA: 1_500}
	paid, err := f.svc.Payout(ctx, f.adminID, user.RoleAdmin, c.CampID, amounts, 500)
	require.NoError(t, err)
	assert.Equal(t, camp.StatusPaidOut, paid.Status)
	assert.Equal(t, int64(500), paid.AdminEarnings)
	assert.Equal(t, int64(1_500), f.balance(t, f.vleA))
	assert.Equal(t, int64(0), f.balance(t, f.vleB), "declined VLE gets nothing")

	// Settlement is one-shot.
	_, err = f.svc.Payout(ctx, f.adminID, user.RoleAdmin, c.CampID, amounts, 500)
	require.ErrorIs(t, err, camp.ErrAlreadyPaidOut)
	assert.Equal(t, int64(1_500), f.balance(t, f.vleA))
}

func TestPayoutRollsBackOnMissingAmount(t *testing.T) {
	f := newCampFixture(t)
	ctx := context.Background()
	c := f.settled(t)

	// No amount for the accepted VLE: the whole settlement must fail
	// without crediting anyone.
	_, err := f.svc.Payout(ctx, f.adminID, user.RoleAdmin, c.CampID, map[uuid.UUID]int64{}, 500)
	require.Error(t, err)
	assert.Equal(t, int64(0), f.balance(t, f.vleA))

	got, err := f.svc.Get(ctx, c.CampID)
	require.NoError(t, err)
	assert.Equal(t, camp.StatusCompleted, got.Status)
}

func TestPayoutRequiresCompletedCamp(t *testing.T) {
	f := newCampFixture(t)
	ctx := context.Background()

	c, err := f.svc.Create(ctx, user.RoleAdmin, "Aadhaar Camp", "Ponda", time.Now().Add(48*time.Hour))
	require.NoError(t, err)

	_, err = f.svc.Payout(ctx, f.adminID, user.RoleAdmin, c.CampID, nil, 0)
	require.ErrorIs(t, err, camp.ErrInvalidTransition)
}

func TestListFiltersByVLE(t *testing.T) {
	f := newCampFixture(t)
	ctx := context.Background()

	c, err := f.svc.Create(ctx, user.RoleAdmin, "Camp A", "Ponda", time.Now().Add(24*time.Hour))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, user.RoleAdmin, "Camp B", "Margao", time.Now().Add(24*time.Hour))
	require.NoError(t, err)
	_, err = f.svc.Invite(ctx, user.RoleAdmin, c.CampID, f.vleA)
	require.NoError(t, err)

	mine, err := f.svc.List(ctx, camp.Filter{VLEID: &f.vleA}, 0, 0)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, c.CampID, mine[0].CampID)
}

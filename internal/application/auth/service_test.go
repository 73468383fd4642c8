package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainUser "github.com/egovle/sevasetu/internal/domain/user"
	"github.com/egovle/sevasetu/internal/infrastructure/memory"
)

func seedAccount(t *testing.T, st *memory.Store, username, password string, status domainUser.Status) uuid.UUID {
	t.Helper()
	hash, err := domainUser.HashPassword(password)
	require.NoError(t, err)
	now := time.Now().UTC()
	id := uuid.New()
	require.NoError(t, st.Users().Create(context.Background(), &domainUser.User{
		UserID: id, Username: username, PasswordHash: hash, Name: username,
		Role: domainUser.RoleCustomer, Status: status, CreatedAt: now, UpdatedAt: now,
	}))
	return id
}

func TestLoginAndAuthenticate(t *testing.T) {
	st := memory.NewStore()
	svc := NewService(st, time.Hour, zerolog.Nop())
	ctx := context.Background()
	userID := seedAccount(t, st, "sita", "correct horse battery", domainUser.StatusActive)

	result, err := svc.Login(ctx, " SiTa ", "correct horse battery")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	assert.Equal(t, userID, result.User.UserID)

	u, sess, err := svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, userID, u.UserID)
	assert.Equal(t, result.Session.SessionID, sess.SessionID)
}

func TestLoginFailures(t *testing.T) {
	st := memory.NewStore()
	svc := NewService(st, time.Hour, zerolog.Nop())
	ctx := context.Background()
	seedAccount(t, st, "sita", "correct horse battery", domainUser.StatusActive)
	seedAccount(t, st, "gita", "another password!", domainUser.StatusDisabled)

	_, err := svc.Login(ctx, "sita", "wrong password")
	require.Error(t, err)
	_, err = svc.Login(ctx, "nobody", "correct horse battery")
	require.Error(t, err)
	_, err = svc.Login(ctx, "gita", "another password!")
	require.Error(t, err)
}

func TestAuthenticateRejectsExpiredSession(t *testing.T) {
	st := memory.NewStore()
	svc := NewService(st, -time.Minute, zerolog.Nop())
	ctx := context.Background()
	seedAccount(t, st, "sita", "correct horse battery", domainUser.StatusActive)

	result, err := svc.Login(ctx, "sita", "correct horse battery")
	require.NoError(t, err)

	_, _, err = svc.Authenticate(ctx, result.Token)
	require.Error(t, err)

	// The expired session is reaped on first use.
	sess, err := st.Sessions().GetByTokenHash(ctx, result.Session.TokenHash)
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	st := memory.NewStore()
	svc := NewService(st, time.Hour, zerolog.Nop())
	ctx := context.Background()
	seedAccount(t, st, "sita", "correct horse battery", domainUser.StatusActive)

	result, err := svc.Login(ctx, "sita", "correct horse battery")
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, result.Token))

	_, _, err = svc.Authenticate(ctx, result.Token)
	require.Error(t, err)
}

func TestCleanupExpired(t *testing.T) {
	st := memory.NewStore()
	expired := NewService(st, -time.Minute, zerolog.Nop())
	live := NewService(st, time.Hour, zerolog.Nop())
	ctx := context.Background()
	seedAccount(t, st, "sita", "correct horse battery", domainUser.StatusActive)

	_, err := expired.Login(ctx, "sita", "correct horse battery")
	require.NoError(t, err)
	keep, err := live.Login(ctx, "sita", "correct horse battery")
	require.NoError(t, err)

	n, err := live.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, _, err = live.Authenticate(ctx, keep.Token)
	require.NoError(t, err)
}

package camp

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upcoming() *Camp {
	now := time.Now().UTC()
	return &Camp{
		CampID:    uuid.New(),
		Name:      "Aadhaar Camp",
		Location:  "Ponda",
		Date:      now.Add(48 * time.Hour),
		Status:    StatusUpcoming,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestInvite(t *testing.T) {
	c := upcoming()
	vleID := uuid.New()
	now := time.Now().UTC()

	require.NoError(t, c.Invite(vleID, "Sita", now))
	require.Len(t, c.Invitations, 1)
	assert.Equal(t, InvitationPending, c.Invitations[0].Status)

	require.ErrorIs(t, c.Invite(vleID, "Sita", now), ErrAlreadyInvited)

	c.Status = StatusPaidOut
	require.ErrorIs(t, c.Invite(uuid.New(), "Gita", now), ErrAlreadyPaidOut)
}

func TestRespond(t *testing.T) {
	c := upcoming()
	vleID := uuid.New()
	now := time.Now().UTC()
	require.NoError(t, c.Invite(vleID, "Sita", now))

	require.ErrorIs(t, c.Respond(uuid.New(), true, now), ErrNotInvited)

	require.NoError(t, c.Respond(vleID, true, now))
	assert.Equal(t, InvitationAccepted, c.Invitations[0].Status)
	require.NotNil(t, c.Invitations[0].RespondedAt)

	require.ErrorIs(t, c.Respond(vleID, false, now), ErrAlreadyResponded)
}

func TestAcceptedVLEs(t *testing.T) {
	c := upcoming()
	now := time.Now().UTC()
	a, b, d := uuid.New(), uuid.New(), uuid.New()
	require.NoError(t, c.Invite(a, "A", now))
	require.NoError(t, c.Invite(b, "B", now))
	require.NoError(t, c.Invite(d, "D", now))
	require.NoError(t, c.Respond(a, true, now))
	require.NoError(t, c.Respond(b, false, now))

	accepted := c.AcceptedVLEs()
	require.Len(t, accepted, 1)
	assert.Equal(t, a, accepted[0].VLEID)
}

func TestStatusTransitions(t *testing.T) {
	c := upcoming()
	require.NoError(t, c.MarkCompleted())
	assert.Equal(t, StatusCompleted, c.Status)
	require.ErrorIs(t, c.MarkCompleted(), ErrInvalidTransition)
}

func TestMarkPaidOut(t *testing.T) {
	c := upcoming()
	now := time.Now().UTC()
	a, b := uuid.New(), uuid.New()
	require.NoError(t, c.Invite(a, "A", now))
	require.NoError(t, c.Invite(b, "B", now))
	require.NoError(t, c.Respond(a, true, now))
	require.NoError(t, c.Respond(b, false, now))
	require.NoError(t, c.MarkCompleted())

	require.NoError(t, c.MarkPaidOut(map[uuid.UUID]int64{a: 1_500, b: 900}, 500))
	assert.Equal(t, StatusPaidOut, c.Status)
	assert.Equal(t, int64(500), c.AdminEarnings)
	assert.Equal(t, int64(1_500), c.Invitations[0].Amount)
	assert.Equal(t, int64(0), c.Invitations[1].Amount, "rejected invitation never gets an amount")

	require.ErrorIs(t, c.MarkPaidOut(nil, 0), ErrAlreadyPaidOut)
}

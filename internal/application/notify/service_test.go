package notify

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egovle/sevasetu/internal/domain/notification"
	"github.com/egovle/sevasetu/internal/domain/user"
	"github.com/egovle/sevasetu/internal/infrastructure/memory"
)

type recordingHub struct {
	mu       sync.Mutex
	messages map[string][]*notification.SSEMessage
}

func newRecordingHub() *recordingHub {
	return &recordingHub{messages: make(map[string][]*notification.SSEMessage)}
}

func (h *recordingHub) BroadcastToUser(userID string, message *notification.SSEMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages[userID] = append(h.messages[userID], message)
}

func (h *recordingHub) count(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages[userID])
}

func seedAdmin(t *testing.T, st *memory.Store, name string) uuid.UUID {
	t.Helper()
	now := time.Now().UTC()
	id := uuid.New()
	require.NoError(t, st.Users().Create(context.Background(), &user.User{
		UserID: id, Username: name, Name: name,
		Role: user.RoleAdmin, Status: user.StatusActive, CreatedAt: now, UpdatedAt: now,
	}))
	return id
}

func TestNotifyPersistsAndBroadcasts(t *testing.T) {
	st := memory.NewStore()
	hub := newRecordingHub()
	svc := NewService(st, hub, zerolog.Nop())

	userID := uuid.New()
	svc.Notify(context.Background(), userID, "Task accepted", "Sita accepted your task", nil)
	svc.Wait()

	list, err := svc.ListForUser(context.Background(), userID, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Task accepted", list[0].Title)
	assert.Equal(t, notification.StatusSent, list[0].Status)
	require.NotNil(t, list[0].SentAt)

	require.Equal(t, 1, hub.count(userID.String()))
	var decoded notification.Notification
	require.NoError(t, json.Unmarshal(hub.messages[userID.String()][0].Data, &decoded))
	assert.Equal(t, "Task accepted", decoded.Title)
}

func TestNotifyAdminsFansOut(t *testing.T) {
	st := memory.NewStore()
	hub := newRecordingHub()
	svc := NewService(st, hub, zerolog.Nop())

	a := seedAdmin(t, st, "admin-one")
	b := seedAdmin(t, st, "admin-two")

	svc.NotifyAdmins(context.Background(), "Complaint raised", "Complaint on a task", nil)
	svc.Wait()

	for _, adminID := range []uuid.UUID{a, b} {
		list, err := svc.ListForUser(context.Background(), adminID, 0, 0)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	}
}

func TestNotifyWithoutHubStillPersists(t *testing.T) {
	st := memory.NewStore()
	svc := NewService(st, nil, zerolog.Nop())

	userID := uuid.New()
	svc.Notify(context.Background(), userID, "Hello", "body", nil)
	svc.Wait()

	list, err := svc.ListForUser(context.Background(), userID, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, notification.StatusSent, list[0].Status)
}

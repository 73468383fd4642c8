package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockDispatcher is a mock implementation of notification.Dispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Notify(ctx context.Context, userID uuid.UUID, title, body string, link *string) {
	m.Called(ctx, userID, title, body, link)
}

func (m *MockDispatcher) NotifyAdmins(ctx context.Context, title, body string, link *string) {
	m.Called(ctx, title, body, link)
}

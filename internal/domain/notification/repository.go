package notification

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines notification persistence.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	Update(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, error)
}

// SSEHub abstracts the in-process fan-out used by the dispatcher.
type SSEHub interface {
	BroadcastToUser(userID string, message *SSEMessage)
}

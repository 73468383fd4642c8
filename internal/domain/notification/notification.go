package notification

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status represents the delivery status of a notification.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusSent    Status = "SENT"
	StatusFailed  Status = "FAILED"
)

var (
	ErrClientNotFound = errors.New("SSE client not found")
	ErrChannelFull    = errors.New("SSE message channel full")
)

// Notification is a message for one user. Delivery is at-most-once and
// best-effort; a failed notification never rolls back the transition that
// produced it.
type Notification struct {
	ID             int64      `json:"id"`
	NotificationID uuid.UUID  `json:"notificationId"`
	UserID         uuid.UUID  `json:"userId"`
	Title          string     `json:"title"`
	Body           string     `json:"body"`
	Link           *string    `json:"link,omitempty"`
	Status         Status     `json:"status"`
	LastError      *string    `json:"lastError,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	SentAt         *time.Time `json:"sentAt,omitempty"`
}

// New creates a pending notification.
func New(userID uuid.UUID, title, body string, link *string) *Notification {
	return &Notification{
		NotificationID: uuid.New(),
		UserID:         userID,
		Title:          title,
		Body:           body,
		Link:           link,
		Status:         StatusPending,
		CreatedAt:      time.Now().UTC(),
	}
}

// MarkSent records successful delivery.
func (n *Notification) MarkSent() {
	now := time.Now().UTC()
	n.Status = StatusSent
	n.SentAt = &now
}

// MarkFailed records a delivery failure.
func (n *Notification) MarkFailed(errMsg string) {
	n.Status = StatusFailed
	n.LastError = &errMsg
}

// Dispatcher fans notifications out to affected parties after a state
// transition commits. Calls are fire-and-forget: implementations log
// failures and never surface them to the caller.
type Dispatcher interface {
	Notify(ctx context.Context, userID uuid.UUID, title, body string, link *string)
	NotifyAdmins(ctx context.Context, title, body string, link *string)
}

// SSEClient represents an active SSE connection.
type SSEClient struct {
	ClientID    string
	UserID      *string
	ConnectedAt time.Time
	MessageChan chan *SSEMessage
}

// NewSSEClient creates an SSE client with a buffered channel.
func NewSSEClient(clientID string, userID *string) *SSEClient {
	return &SSEClient{
		ClientID:    clientID,
		UserID:      userID,
		ConnectedAt: time.Now().UTC(),
		MessageChan: make(chan *SSEMessage, 100),
	}
}

// Close closes the client's message channel.
func (c *SSEClient) Close() {
	close(c.MessageChan)
}

// SSEMessage is one server-sent event.
type SSEMessage struct {
	ID        string          `json:"id"`
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewSSEMessage creates an SSE message.
func NewSSEMessage(event string, data json.RawMessage) *SSEMessage {
	return &SSEMessage{
		ID:        uuid.New().String(),
		Event:     event,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

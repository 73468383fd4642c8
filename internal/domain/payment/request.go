package payment

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/egovle/sevasetu/internal/domain/user"
)

// Status represents payment request status.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

var (
	ErrAlreadyDecided = errors.New("payment request already decided")
	ErrInvalidAmount  = errors.New("amount must be positive")
)

// Request is a wallet top-up request awaiting an admin decision. A request
// is terminated exactly once; approval credits the wallet atomically with
// the status flip.
type Request struct {
	ID        int64      `json:"id"`
	RequestID uuid.UUID  `json:"requestId"`
	UserID    uuid.UUID  `json:"userId"`
	UserRole  user.Role  `json:"userRole"`
	Amount    int64      `json:"amount"`
	Status    Status     `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	DecidedBy *uuid.UUID `json:"decidedBy,omitempty"`
	DecidedAt *time.Time `json:"decidedAt,omitempty"`
	Version   int        `json:"version"`
}

// NewRequest creates a pending top-up request.
func NewRequest(userID uuid.UUID, role user.Role, amount int64) (*Request, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return &Request{
		RequestID: uuid.New(),
		UserID:    userID,
		UserRole:  role,
		Amount:    amount,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Approve marks the request approved.
func (r *Request) Approve(by uuid.UUID, at time.Time) error {
	if r.Status != StatusPending {
		return ErrAlreadyDecided
	}
	r.Status = StatusApproved
	r.DecidedBy = &by
	r.DecidedAt = &at
	return nil
}

// Reject marks the request rejected.
func (r *Request) Reject(by uuid.UUID, at time.Time) error {
	if r.Status != StatusPending {
		return ErrAlreadyDecided
	}
	r.Status = StatusRejected
	r.DecidedBy = &by
	r.DecidedAt = &at
	return nil
}

package wallet

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/egovle/sevasetu/internal/domain/user"
)

var (
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	ErrAccountNotFound   = errors.New("wallet account not found")
	ErrInvalidAmount     = errors.New("amount must be positive")
)

// EntryKind tags the direction of a ledger entry.
type EntryKind string

const (
	KindCredit EntryKind = "CREDIT"
	KindDebit  EntryKind = "DEBIT"
)

// Account holds the current balance for a customer or VLE wallet.
// The balance is denominated in paise and never goes negative.
type Account struct {
	ID        int64     `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Role      user.Role `json:"role"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Entry is one append-only ledger record. Entries are never mutated or
// removed; corrections are new entries.
type Entry struct {
	ID        int64     `json:"id"`
	EntryID   uuid.UUID `json:"entryId"`
	UserID    uuid.UUID `json:"userId"`
	Kind      EntryKind `json:"kind"`
	Amount    int64     `json:"amount"`
	Reference string    `json:"reference"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewEntry creates a ledger entry. Amount is always positive; direction is
// carried by the kind.
func NewEntry(userID uuid.UUID, kind EntryKind, amount int64, reference, note string) *Entry {
	return &Entry{
		EntryID:   uuid.New(),
		UserID:    userID,
		Kind:      kind,
		Amount:    amount,
		Reference: reference,
		Note:      note,
		CreatedAt: time.Now().UTC(),
	}
}

// Delta returns the signed balance change for the entry.
func (e *Entry) Delta() int64 {
	if e.Kind == KindDebit {
		return -e.Amount
	}
	return e.Amount
}

package wallet

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines wallet persistence. Apply adjusts the account balance
// and appends the ledger entry as one unit; a debit exceeding the balance
// fails with ErrInsufficientFunds and writes nothing.
type Repository interface {
	CreateAccount(ctx context.Context, account *Account) error
	GetAccount(ctx context.Context, userID uuid.UUID) (*Account, error)
	Apply(ctx context.Context, entry *Entry) error
	Entries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Entry, error)
}

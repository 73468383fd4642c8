package store

import (
	"context"

	"github.com/egovle/sevasetu/internal/domain/camp"
	"github.com/egovle/sevasetu/internal/domain/catalog"
	"github.com/egovle/sevasetu/internal/domain/notification"
	"github.com/egovle/sevasetu/internal/domain/payment"
	"github.com/egovle/sevasetu/internal/domain/session"
	"github.com/egovle/sevasetu/internal/domain/task"
	"github.com/egovle/sevasetu/internal/domain/user"
	"github.com/egovle/sevasetu/internal/domain/wallet"
)

// Store is the transactional facade over all repositories. Transact runs fn
// against transaction-scoped repositories: every read and write inside fn
// commits or rolls back as one unit. Transition preconditions re-checked
// inside Transact therefore cannot produce stale writes.
//
// Nested Transact calls join the enclosing transaction.
type Store interface {
	Tasks() task.Repository
	Users() user.Repository
	Wallets() wallet.Repository
	Catalog() catalog.Repository
	Payments() payment.Repository
	Camps() camp.Repository
	Notifications() notification.Repository
	Sessions() session.Repository
	Transact(ctx context.Context, fn func(Store) error) error
}

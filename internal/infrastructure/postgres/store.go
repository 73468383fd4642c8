package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/egovle/sevasetu/internal/domain/camp"
	"github.com/egovle/sevasetu/internal/domain/catalog"
	"github.com/egovle/sevasetu/internal/domain/notification"
	"github.com/egovle/sevasetu/internal/domain/payment"
	"github.com/egovle/sevasetu/internal/domain/session"
	"github.com/egovle/sevasetu/internal/domain/store"
	"github.com/egovle/sevasetu/internal/domain/task"
	"github.com/egovle/sevasetu/internal/domain/user"
	"github.com/egovle/sevasetu/internal/domain/wallet"
)

// Store implements store.Store on PostgreSQL. Outside a transaction the
// repositories run on the pool; Transact hands fn a Store bound to a pgx.Tx.
type Store struct {
	db   DBTX
	pool *pgxpool.Pool
}

// NewStore creates a postgres-backed store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{db: pool, pool: pool}
}

// Transact runs fn inside a database transaction. A nested call joins the
// enclosing transaction.
func (s *Store) Transact(ctx context.Context, fn func(store.Store) error) error {
	if s.pool == nil {
		return fn(s)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&Store{db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) Tasks() task.Repository                 { return &TaskRepository{db: s.db} }
func (s *Store) Users() user.Repository                 { return &UserRepository{db: s.db} }
func (s *Store) Wallets() wallet.Repository             { return &WalletRepository{db: s.db} }
func (s *Store) Catalog() catalog.Repository            { return &CatalogRepository{db: s.db} }
func (s *Store) Payments() payment.Repository           { return &PaymentRepository{db: s.db} }
func (s *Store) Camps() camp.Repository                 { return &CampRepository{db: s.db} }
func (s *Store) Notifications() notification.Repository { return &NotificationRepository{db: s.db} }
func (s *Store) Sessions() session.Repository           { return &SessionRepository{db: s.db} }

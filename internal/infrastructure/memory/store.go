// Package memory provides an in-process Store used by tests and the
// single-binary demo mode. A single mutex serializes transactions; rollback
// restores a deep snapshot taken at transaction start.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

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

type data struct {
	tasks         map[uuid.UUID]*task.Task
	users         map[uuid.UUID]*user.User
	accounts      map[uuid.UUID]*wallet.Account
	entries       []*wallet.Entry
	services      map[uuid.UUID]*catalog.Service
	payments      map[uuid.UUID]*payment.Request
	camps         map[uuid.UUID]*camp.Camp
	notifications map[uuid.UUID]*notification.Notification
	sessions      map[uuid.UUID]*session.Session
}

func newData() *data {
	return &data{
		tasks:         make(map[uuid.UUID]*task.Task),
		users:         make(map[uuid.UUID]*user.User),
		accounts:      make(map[uuid.UUID]*wallet.Account),
		services:      make(map[uuid.UUID]*catalog.Service),
		payments:      make(map[uuid.UUID]*payment.Request),
		camps:         make(map[uuid.UUID]*camp.Camp),
		notifications: make(map[uuid.UUID]*notification.Notification),
		sessions:      make(map[uuid.UUID]*session.Session),
	}
}

type state struct {
	mu   sync.Mutex
	data *data
}

// Store implements store.Store against process memory.
type Store struct {
	st   *state
	inTx bool
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{st: &state{data: newData()}}
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.st.mu.Lock()
	return s.st.mu.Unlock
}

// Transact serializes the function under the store mutex and restores a
// snapshot of all data if it returns an error. A nested call joins the
// enclosing transaction.
func (s *Store) Transact(ctx context.Context, fn func(store.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	snapshot := s.st.data.clone()
	if err := fn(&Store{st: s.st, inTx: true}); err != nil {
		s.st.data = snapshot
		return err
	}
	return nil
}

func (s *Store) Tasks() task.Repository                  { return &taskRepo{s} }
func (s *Store) Users() user.Repository                  { return &userRepo{s} }
func (s *Store) Wallets() wallet.Repository              { return &walletRepo{s} }
func (s *Store) Catalog() catalog.Repository             { return &catalogRepo{s} }
func (s *Store) Payments() payment.Repository            { return &paymentRepo{s} }
func (s *Store) Camps() camp.Repository                  { return &campRepo{s} }
func (s *Store) Notifications() notification.Repository  { return &notificationRepo{s} }
func (s *Store) Sessions() session.Repository            { return &sessionRepo{s} }

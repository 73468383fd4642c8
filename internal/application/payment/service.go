package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/egovle/sevasetu/internal/domain/notification"
	"github.com/egovle/sevasetu/internal/domain/payment"
	"github.com/egovle/sevasetu/internal/domain/store"
	"github.com/egovle/sevasetu/internal/domain/task"
	"github.com/egovle/sevasetu/internal/domain/user"
	"github.com/egovle/sevasetu/internal/domain/wallet"
)

// Statement is a wallet read model: the live balance plus recent entries.
type Statement struct {
	Balance int64           `json:"balance"`
	Entries []*wallet.Entry `json:"entries"`
}

// Service handles wallet top-up requests and wallet reads.
type Service struct {
	store      store.Store
	dispatcher notification.Dispatcher
	logger     zerolog.Logger
}

func NewService(st store.Store, dispatcher notification.Dispatcher, logger zerolog.Logger) *Service {
	return &Service{
		store:      st,
		dispatcher: dispatcher,
		logger:     logger.With().Str("service", "payment").Logger(),
	}
}

// CreateRequest opens a pending top-up request for the actor's own wallet.
func (s *Service) CreateRequest(ctx context.Context, actorID uuid.UUID, role user.Role, amount int64) (*payment.Request, error) {
	if role != user.RoleCustomer && role != user.RoleVLE {
		return nil, task.ErrPermissionDenied
	}
	req, err := payment.NewRequest(actorID, role, amount)
	if err != nil {
		return nil, err
	}
	if err := s.store.Payments().Create(ctx, req); err != nil {
		return nil, err
	}
	s.dispatcher.NotifyAdmins(ctx, "Top-up requested", fmt.Sprintf("A wallet top-up of %d is awaiting review", amount), nil)
	return req, nil
}

// Approve credits the requester's wallet atomically with the status flip.
// The pending check and the version compare-and-set together guarantee a
// request credits at most once.
func (s *Service) Approve(ctx context.Context, adminID uuid.UUID, role user.Role, requestID uuid.UUID) (*payment.Request, error) {
	if role != user.RoleAdmin {
		return nil, task.ErrPermissionDenied
	}
	var updated *payment.Request
	err := s.store.Transact(ctx, func(st store.Store) error {
		req, err := s.load(ctx, st, requestID)
		if err != nil {
			return err
		}
		if err := req.Approve(adminID, time.Now().UTC()); err != nil {
			return err
		}
		entry := wallet.NewEntry(req.UserID, wallet.KindCredit, req.Amount, req.RequestID.String(), "wallet top-up")
		if err := st.Wallets().Apply(ctx, entry); err != nil {
			return err
		}
		if err := st.Payments().Update(ctx, req); err != nil {
			return err
		}
		updated = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.dispatcher.Notify(ctx, updated.UserID, "Top-up approved", fmt.Sprintf("Your wallet was credited %d", updated.Amount), nil)
	return updated, nil
}

// Reject declines the request. The wallet is untouched.
func (s *Service) Reject(ctx context.Context, adminID uuid.UUID, role user.Role, requestID uuid.UUID) (*payment.Request, error) {
	if role != user.RoleAdmin {
		return nil, task.ErrPermissionDenied
	}
	var updated *payment.Request
	err := s.store.Transact(ctx, func(st store.Store) error {
		req, err := s.load(ctx, st, requestID)
		if err != nil {
			return err
		}
		if err := req.Reject(adminID, time.Now().UTC()); err != nil {
			return err
		}
		if err := st.Payments().Update(ctx, req); err != nil {
			return err
		}
		updated = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.dispatcher.Notify(ctx, updated.UserID, "Top-up rejected", "Your wallet top-up request was rejected", nil)
	return updated, nil
}

// List returns requests matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter payment.Filter, limit, offset int) ([]*payment.Request, error) {
	return s.store.Payments().List(ctx, filter, limit, offset)
}

// WalletStatement returns the balance and the most recent ledger entries for
// a user.
func (s *Service) WalletStatement(ctx context.Context, userID uuid.UUID, limit, offset int) (*Statement, error) {
	account, err := s.store.Wallets().GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, wallet.ErrAccountNotFound
	}
	entries, err := s.store.Wallets().Entries(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &Statement{Balance: account.Balance, Entries: entries}, nil
}

func (s *Service) load(ctx context.Context, st store.Store, requestID uuid.UUID) (*payment.Request, error) {
	req, err := st.Payments().GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("payment request not found: %s", requestID)
	}
	return req, nil
}

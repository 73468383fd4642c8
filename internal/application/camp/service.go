package camp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/egovle/sevasetu/internal/domain/camp"
	"github.com/egovle/sevasetu/internal/domain/notification"
	"github.com/egovle/sevasetu/internal/domain/store"
	"github.com/egovle/sevasetu/internal/domain/task"
	"github.com/egovle/sevasetu/internal/domain/user"
	"github.com/egovle/sevasetu/internal/domain/wallet"
)

// Service manages service camps: scheduling, VLE invitations and the batch
// payout at settlement.
type Service struct {
	store      store.Store
	dispatcher notification.Dispatcher
	logger     zerolog.Logger
}

func NewService(st store.Store, dispatcher notification.Dispatcher, logger zerolog.Logger) *Service {
	return &Service{
		store:      st,
		dispatcher: dispatcher,
		logger:     logger.With().Str("service", "camp").Logger(),
	}
}

// Create schedules a camp.
func (s *Service) Create(ctx context.Context, role user.Role, name, location string, date time.Time) (*camp.Camp, error) {
	if role != user.RoleAdmin {
		return nil, task.ErrPermissionDenied
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("camp name is required")
	}
	now := time.Now().UTC()
	c := &camp.Camp{
		CampID:    uuid.New(),
		Name:      name,
		Location:  location,
		Date:      date,
		Status:    camp.StatusUpcoming,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Camps().Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Invite adds an approved VLE to the camp and notifies them.
func (s *Service) Invite(ctx context.Context, role user.Role, campID, vleID uuid.UUID) (*camp.Camp, error) {
	if role != user.RoleAdmin {
		return nil, task.ErrPermissionDenied
	}
	var updated *camp.Camp
	err := s.store.Transact(ctx, func(st store.Store) error {
		c, err := s.load(ctx, st, campID)
		if err != nil {
			return err
		}
		vle, err := st.Users().GetByID(ctx, vleID)
		if err != nil {
			return err
		}
		if vle == nil {
			return fmt.Errorf("VLE not found: %s", vleID)
		}
		if vle.Role != user.RoleVLE || !vle.IsActive() || !vle.Approved {
			return fmt.Errorf("VLE %s is not eligible for camp invitations", vle.Name)
		}
		now := time.Now().UTC()
		if err := c.Invite(vle.UserID, vle.Name, now); err != nil {
			return err
		}
		c.UpdatedAt = now
		if err := st.Camps().Update(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.dispatcher.Notify(ctx, vleID, "Camp invitation", fmt.Sprintf("You are invited to the %s camp at %s", updated.Name, updated.Location), campLink(updated.CampID))
	return updated, nil
}

// Respond records the VLE's answer to their invitation.
func (s *Service) Respond(ctx context.Context, vleID uuid.UUID, campID uuid.UUID, accept bool) (*camp.Camp, error) {
	var updated *camp.Camp
	err := s.store.Transact(ctx, func(st store.Store) error {
		c, err := s.load(ctx, st, campID)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := c.Respond(vleID, accept, now); err != nil {
			return err
		}
		c.UpdatedAt = now
		if err := st.Camps().Update(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	answer := "declined"
	if accept {
		answer = "accepted"
	}
	s.dispatcher.NotifyAdmins(ctx, "Camp response", fmt.Sprintf("A VLE %s the %s camp invitation", answer, updated.Name), campLink(updated.CampID))
	return updated, nil
}

// Complete closes the camp for payout entry.
func (s *Service) Complete(ctx context.Context, role user.Role, campID uuid.UUID) (*camp.Camp, error) {
	if role != user.RoleAdmin {
		return nil, task.ErrPermissionDenied
	}
	var updated *camp.Camp
	err := s.store.Transact(ctx, func(st store.Store) error {
		c, err := s.load(ctx, st, campID)
		if err != nil {
			return err
		}
		if err := c.MarkCompleted(); err != nil {
			return err
		}
		c.UpdatedAt = time.Now().UTC()
		if err := st.Camps().Update(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Payout credits every accepted VLE's wallet and flips the camp to PAID_OUT
// in one transaction. The status precondition is re-read inside the
// transaction, so a camp settles at most once; a partial credit never
// survives a failure later in the batch.
func (s *Service) Payout(ctx context.Context, adminID uuid.UUID, role user.Role, campID uuid.UUID, amounts map[uuid.UUID]int64, adminEarnings int64) (*camp.Camp, error) {
	if role != user.RoleAdmin {
		return nil, task.ErrPermissionDenied
	}
	if adminEarnings < 0 {
		return nil, fmt.Errorf("admin earnings must not be negative")
	}
	var updated *camp.Camp
	err := s.store.Transact(ctx, func(st store.Store) error {
		c, err := s.load(ctx, st, campID)
		if err != nil {
			return err
		}
		if c.Status == camp.StatusPaidOut {
			return camp.ErrAlreadyPaidOut
		}
		if c.Status != camp.StatusCompleted {
			return camp.ErrInvalidTransition
		}
		for _, inv := range c.AcceptedVLEs() {
			amount, ok := amounts[inv.VLEID]
			if !ok {
				return fmt.Errorf("missing payout amount for %s", inv.VLEName)
			}
			if amount <= 0 {
				return fmt.Errorf("payout amount for %s must be positive", inv.VLEName)
			}
			entry := wallet.NewEntry(inv.VLEID, wallet.KindCredit, amount, c.CampID.String(), "camp payout")
			if err := st.Wallets().Apply(ctx, entry); err != nil {
				return err
			}
		}
		now := time.Now().UTC()
		if err := c.MarkPaidOut(amounts, adminEarnings); err != nil {
			return err
		}
		c.UpdatedAt = now
		if err := st.Camps().Update(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, inv := range updated.AcceptedVLEs() {
		s.dispatcher.Notify(ctx, inv.VLEID, "Camp payout", fmt.Sprintf("Your wallet was credited %d for the %s camp", inv.Amount, updated.Name), campLink(updated.CampID))
	}
	return updated, nil
}

// Get retrieves a camp by ID.
func (s *Service) Get(ctx context.Context, campID uuid.UUID) (*camp.Camp, error) {
	return s.store.Camps().GetByID(ctx, campID)
}

// List returns camps matching the filter.
func (s *Service) List(ctx context.Context, filter camp.Filter, limit, offset int) ([]*camp.Camp, error) {
	return s.store.Camps().List(ctx, filter, limit, offset)
}

func (s *Service) load(ctx context.Context, st store.Store, campID uuid.UUID) (*camp.Camp, error) {
	c, err := st.Camps().GetByID(ctx, campID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("camp not found: %s", campID)
	}
	return c, nil
}

func campLink(campID uuid.UUID) *string {
	link := "/camps/" + campID.String()
	return &link
}

package camp

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status represents camp status.
type Status string

const (
	StatusUpcoming  Status = "UPCOMING"
	StatusCompleted Status = "COMPLETED"
	StatusPaidOut   Status = "PAID_OUT"
)

// InvitationStatus tracks a single VLE's response to a camp invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationRejected InvitationStatus = "REJECTED"
)

var (
	ErrAlreadyInvited    = errors.New("VLE already invited to camp")
	ErrNotInvited        = errors.New("VLE not invited to camp")
	ErrAlreadyResponded  = errors.New("camp invitation already answered")
	ErrAlreadyPaidOut    = errors.New("camp already paid out")
	ErrInvalidTransition = errors.New("invalid camp status transition")
	ErrConcurrentUpdate  = errors.New("camp was modified concurrently")
)

// Invitation is one VLE's participation record, including the payout amount
// the admin enters at camp settlement.
type Invitation struct {
	VLEID       uuid.UUID        `json:"vleId"`
	VLEName     string           `json:"vleName"`
	Status      InvitationStatus `json:"status"`
	Amount      int64            `json:"amount"`
	InvitedAt   time.Time        `json:"invitedAt"`
	RespondedAt *time.Time       `json:"respondedAt,omitempty"`
}

// Camp is a scheduled multi-VLE service event.
type Camp struct {
	ID            int64        `json:"id"`
	CampID        uuid.UUID    `json:"campId"`
	Name          string       `json:"name"`
	Location      string       `json:"location"`
	Date          time.Time    `json:"date"`
	Status        Status       `json:"status"`
	AdminEarnings int64        `json:"adminEarnings"`
	Invitations   []Invitation `json:"invitations"`
	Version       int          `json:"version"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// Invite adds a pending invitation for the VLE.
func (c *Camp) Invite(vleID uuid.UUID, vleName string, at time.Time) error {
	if c.Status == StatusPaidOut {
		return ErrAlreadyPaidOut
	}
	for _, inv := range c.Invitations {
		if inv.VLEID == vleID {
			return ErrAlreadyInvited
		}
	}
	c.Invitations = append(c.Invitations, Invitation{
		VLEID:     vleID,
		VLEName:   vleName,
		Status:    InvitationPending,
		InvitedAt: at,
	})
	return nil
}

// Respond records the VLE's accept/reject answer. Each invitation is
// answered at most once.
func (c *Camp) Respond(vleID uuid.UUID, accept bool, at time.Time) error {
	for i := range c.Invitations {
		if c.Invitations[i].VLEID != vleID {
			continue
		}
		if c.Invitations[i].Status != InvitationPending {
			return ErrAlreadyResponded
		}
		if accept {
			c.Invitations[i].Status = InvitationAccepted
		} else {
			c.Invitations[i].Status = InvitationRejected
		}
		respondedAt := at
		c.Invitations[i].RespondedAt = &respondedAt
		return nil
	}
	return ErrNotInvited
}

// AcceptedVLEs returns VLEs that accepted the invitation.
func (c *Camp) AcceptedVLEs() []Invitation {
	out := make([]Invitation, 0, len(c.Invitations))
	for _, inv := range c.Invitations {
		if inv.Status == InvitationAccepted {
			out = append(out, inv)
		}
	}
	return out
}

// MarkCompleted closes the camp for payout entry.
func (c *Camp) MarkCompleted() error {
	if c.Status != StatusUpcoming {
		return ErrInvalidTransition
	}
	c.Status = StatusCompleted
	return nil
}

// MarkPaidOut finalizes the camp after the ledger credits. Runs once per
// camp; the amounts map fills each accepted invitation's payout figure.
func (c *Camp) MarkPaidOut(amounts map[uuid.UUID]int64, adminEarnings int64) error {
	if c.Status == StatusPaidOut {
		return ErrAlreadyPaidOut
	}
	for i := range c.Invitations {
		if c.Invitations[i].Status != InvitationAccepted {
			continue
		}
		if amount, ok := amounts[c.Invitations[i].VLEID]; ok {
			c.Invitations[i].Amount = amount
		}
	}
	c.AdminEarnings = adminEarnings
	c.Status = StatusPaidOut
	return nil
}

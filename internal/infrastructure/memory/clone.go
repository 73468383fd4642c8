package memory

import (
	"github.com/google/uuid"

	"github.com/egovle/sevasetu/internal/domain/camp"
	"github.com/egovle/sevasetu/internal/domain/catalog"
	"github.com/egovle/sevasetu/internal/domain/notification"
	"github.com/egovle/sevasetu/internal/domain/payment"
	"github.com/egovle/sevasetu/internal/domain/session"
	"github.com/egovle/sevasetu/internal/domain/task"
	"github.com/egovle/sevasetu/internal/domain/user"
	"github.com/egovle/sevasetu/internal/domain/wallet"
)

// Reads hand out copies and writes store copies, so a caller mutating an
// entity between GetByID and Update never leaks into the store, and the
// version compare-and-set stays meaningful.

func (d *data) clone() *data {
	out := newData()
	for id, t := range d.tasks {
		out.tasks[id] = cloneTask(t)
	}
	for id, u := range d.users {
		out.users[id] = cloneUser(u)
	}
	for id, a := range d.accounts {
		out.accounts[id] = cloneAccount(a)
	}
	out.entries = make([]*wallet.Entry, len(d.entries))
	for i, e := range d.entries {
		out.entries[i] = cloneEntry(e)
	}
	for id, s := range d.services {
		out.services[id] = cloneService(s)
	}
	for id, p := range d.payments {
		out.payments[id] = cloneRequest(p)
	}
	for id, c := range d.camps {
		out.camps[id] = cloneCamp(c)
	}
	for id, n := range d.notifications {
		out.notifications[id] = cloneNotification(n)
	}
	for id, s := range d.sessions {
		out.sessions[id] = cloneSession(s)
	}
	return out
}

func cloneTask(t *task.Task) *task.Task {
	out := *t
	out.AssignedVLEID = clonePtr(t.AssignedVLEID)
	out.AssignedVLEName = clonePtr(t.AssignedVLEName)
	out.AcknowledgementNumber = clonePtr(t.AcknowledgementNumber)
	out.FinalCertificate = clonePtr(t.FinalCertificate)
	out.StatusBeforeComplaint = clonePtr(t.StatusBeforeComplaint)
	out.Documents = append([]task.Document(nil), t.Documents...)
	out.History = append([]task.HistoryEntry(nil), t.History...)
	if t.Complaint != nil {
		c := *t.Complaint
		c.Documents = append([]task.Document(nil), t.Complaint.Documents...)
		if t.Complaint.Response != nil {
			r := *t.Complaint.Response
			r.Documents = append([]task.Document(nil), t.Complaint.Response.Documents...)
			c.Response = &r
		}
		out.Complaint = &c
	}
	out.Feedback = clonePtr(t.Feedback)
	return &out
}

func cloneUser(u *user.User) *user.User {
	out := *u
	out.Services = append([]uuid.UUID(nil), u.Services...)
	return &out
}

func cloneAccount(a *wallet.Account) *wallet.Account {
	out := *a
	return &out
}

func cloneEntry(e *wallet.Entry) *wallet.Entry {
	out := *e
	return &out
}

func cloneService(s *catalog.Service) *catalog.Service {
	out := *s
	out.PriceExpression = clonePtr(s.PriceExpression)
	return &out
}

func cloneRequest(r *payment.Request) *payment.Request {
	out := *r
	out.DecidedBy = clonePtr(r.DecidedBy)
	out.DecidedAt = clonePtr(r.DecidedAt)
	return &out
}

func cloneCamp(c *camp.Camp) *camp.Camp {
	out := *c
	out.Invitations = make([]camp.Invitation, len(c.Invitations))
	for i, inv := range c.Invitations {
		cp := inv
		cp.RespondedAt = clonePtr(inv.RespondedAt)
		out.Invitations[i] = cp
	}
	return &out
}

func cloneNotification(n *notification.Notification) *notification.Notification {
	out := *n
	out.Link = clonePtr(n.Link)
	out.LastError = clonePtr(n.LastError)
	out.SentAt = clonePtr(n.SentAt)
	return &out
}

func cloneSession(s *session.Session) *session.Session {
	out := *s
	out.LastSeenAt = clonePtr(s.LastSeenAt)
	return &out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

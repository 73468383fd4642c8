package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

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

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

type taskRepo struct{ s *Store }

func (r *taskRepo) Create(ctx context.Context, t *task.Task) error {
	defer r.s.lock()()
	if _, exists := r.s.st.data.tasks[t.TaskID]; exists {
		return fmt.Errorf("task already exists: %s", t.TaskID)
	}
	t.ID = int64(len(r.s.st.data.tasks) + 1)
	r.s.st.data.tasks[t.TaskID] = cloneTask(t)
	return nil
}

func (r *taskRepo) GetByID(ctx context.Context, taskID uuid.UUID) (*task.Task, error) {
	defer r.s.lock()()
	t, ok := r.s.st.data.tasks[taskID]
	if !ok {
		return nil, nil
	}
	return cloneTask(t), nil
}

func (r *taskRepo) List(ctx context.Context, filter task.Filter, limit, offset int) ([]*task.Task, error) {
	defer r.s.lock()()
	out := make([]*task.Task, 0, len(r.s.st.data.tasks))
	for _, t := range r.s.st.data.tasks {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.CreatorID != nil && t.CreatorID != *filter.CreatorID {
			continue
		}
		if filter.AssignedVLEID != nil && !t.IsAssignedTo(*filter.AssignedVLEID) {
			continue
		}
		if filter.ServiceID != nil && t.ServiceID != *filter.ServiceID {
			continue
		}
		out = append(out, cloneTask(t))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return paginate(out, limit, offset), nil
}

func (r *taskRepo) Update(ctx context.Context, t *task.Task) error {
	defer r.s.lock()()
	cur, ok := r.s.st.data.tasks[t.TaskID]
	if !ok {
		return fmt.Errorf("task not found: %s", t.TaskID)
	}
	if cur.Version != t.Version {
		return task.ErrNoLongerAvailable
	}
	t.Version++
	t.ID = cur.ID
	r.s.st.data.tasks[t.TaskID] = cloneTask(t)
	return nil
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, u *user.User) error {
	defer r.s.lock()()
	for _, existing := range r.s.st.data.users {
		if existing.Username == u.Username {
			return fmt.Errorf("username already taken: %s", u.Username)
		}
	}
	u.ID = int64(len(r.s.st.data.users) + 1)
	r.s.st.data.users[u.UserID] = cloneUser(u)
	return nil
}

func (r *userRepo) Update(ctx context.Context, u *user.User) error {
	defer r.s.lock()()
	cur, ok := r.s.st.data.users[u.UserID]
	if !ok {
		return fmt.Errorf("user not found: %s", u.UserID)
	}
	u.ID = cur.ID
	r.s.st.data.users[u.UserID] = cloneUser(u)
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	defer r.s.lock()()
	u, ok := r.s.st.data.users[userID]
	if !ok {
		return nil, nil
	}
	return cloneUser(u), nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	defer r.s.lock()()
	username = user.NormalizeUsername(username)
	for _, u := range r.s.st.data.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (r *userRepo) List(ctx context.Context, filter user.Filter, limit, offset int) ([]*user.User, error) {
	defer r.s.lock()()
	out := make([]*user.User, 0, len(r.s.st.data.users))
	for _, u := range r.s.st.data.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.Status != nil && u.Status != *filter.Status {
			continue
		}
		if filter.Approved != nil && u.Approved != *filter.Approved {
			continue
		}
		if filter.Available != nil && u.Available != *filter.Available {
			continue
		}
		if filter.Username != nil && u.Username != user.NormalizeUsername(*filter.Username) {
			continue
		}
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, limit, offset), nil
}

func (r *userRepo) Count(ctx context.Context) (int, error) {
	defer r.s.lock()()
	return len(r.s.st.data.users), nil
}

type walletRepo struct{ s *Store }

func (r *walletRepo) CreateAccount(ctx context.Context, a *wallet.Account) error {
	defer r.s.lock()()
	if _, exists := r.s.st.data.accounts[a.UserID]; exists {
		return fmt.Errorf("wallet account already exists for user %s", a.UserID)
	}
	a.ID = int64(len(r.s.st.data.accounts) + 1)
	r.s.st.data.accounts[a.UserID] = cloneAccount(a)
	return nil
}

func (r *walletRepo) GetAccount(ctx context.Context, userID uuid.UUID) (*wallet.Account, error) {
	defer r.s.lock()()
	a, ok := r.s.st.data.accounts[userID]
	if !ok {
		return nil, nil
	}
	return cloneAccount(a), nil
}

func (r *walletRepo) Apply(ctx context.Context, entry *wallet.Entry) error {
	defer r.s.lock()()
	if entry.Amount <= 0 {
		return wallet.ErrInvalidAmount
	}
	a, ok := r.s.st.data.accounts[entry.UserID]
	if !ok {
		return wallet.ErrAccountNotFound
	}
	next := a.Balance + entry.Delta()
	if next < 0 {
		return wallet.ErrInsufficientFunds
	}
	a.Balance = next
	a.UpdatedAt = time.Now().UTC()
	e := cloneEntry(entry)
	e.ID = int64(len(r.s.st.data.entries) + 1)
	entry.ID = e.ID
	r.s.st.data.entries = append(r.s.st.data.entries, e)
	return nil
}

func (r *walletRepo) Entries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*wallet.Entry, error) {
	defer r.s.lock()()
	out := make([]*wallet.Entry, 0)
	for i := len(r.s.st.data.entries) - 1; i >= 0; i-- {
		if r.s.st.data.entries[i].UserID == userID {
			out = append(out, cloneEntry(r.s.st.data.entries[i]))
		}
	}
	return paginate(out, limit, offset), nil
}

type catalogRepo struct{ s *Store }

func (r *catalogRepo) Create(ctx context.Context, svc *catalog.Service) error {
	defer r.s.lock()()
	if _, exists := r.s.st.data.services[svc.ServiceID]; exists {
		return fmt.Errorf("service already exists: %s", svc.ServiceID)
	}
	svc.ID = int64(len(r.s.st.data.services) + 1)
	r.s.st.data.services[svc.ServiceID] = cloneService(svc)
	return nil
}

func (r *catalogRepo) GetByID(ctx context.Context, serviceID uuid.UUID) (*catalog.Service, error) {
	defer r.s.lock()()
	svc, ok := r.s.st.data.services[serviceID]
	if !ok {
		return nil, nil
	}
	return cloneService(svc), nil
}

func (r *catalogRepo) List(ctx context.Context, limit, offset int) ([]*catalog.Service, error) {
	defer r.s.lock()()
	out := make([]*catalog.Service, 0, len(r.s.st.data.services))
	for _, svc := range r.s.st.data.services {
		out = append(out, cloneService(svc))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, limit, offset), nil
}

type paymentRepo struct{ s *Store }

func (r *paymentRepo) Create(ctx context.Context, req *payment.Request) error {
	defer r.s.lock()()
	if _, exists := r.s.st.data.payments[req.RequestID]; exists {
		return fmt.Errorf("payment request already exists: %s", req.RequestID)
	}
	req.ID = int64(len(r.s.st.data.payments) + 1)
	r.s.st.data.payments[req.RequestID] = cloneRequest(req)
	return nil
}

func (r *paymentRepo) GetByID(ctx context.Context, requestID uuid.UUID) (*payment.Request, error) {
	defer r.s.lock()()
	req, ok := r.s.st.data.payments[requestID]
	if !ok {
		return nil, nil
	}
	return cloneRequest(req), nil
}

func (r *paymentRepo) List(ctx context.Context, filter payment.Filter, limit, offset int) ([]*payment.Request, error) {
	defer r.s.lock()()
	out := make([]*payment.Request, 0, len(r.s.st.data.payments))
	for _, req := range r.s.st.data.payments {
		if filter.UserID != nil && req.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && req.Status != *filter.Status {
			continue
		}
		out = append(out, cloneRequest(req))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return paginate(out, limit, offset), nil
}

func (r *paymentRepo) Update(ctx context.Context, req *payment.Request) error {
	defer r.s.lock()()
	cur, ok := r.s.st.data.payments[req.RequestID]
	if !ok {
		return fmt.Errorf("payment request not found: %s", req.RequestID)
	}
	if cur.Version != req.Version {
		return payment.ErrAlreadyDecided
	}
	req.Version++
	req.ID = cur.ID
	r.s.st.data.payments[req.RequestID] = cloneRequest(req)
	return nil
}

type campRepo struct{ s *Store }

func (r *campRepo) Create(ctx context.Context, c *camp.Camp) error {
	defer r.s.lock()()
	if _, exists := r.s.st.data.camps[c.CampID]; exists {
		return fmt.Errorf("camp already exists: %s", c.CampID)
	}
	c.ID = int64(len(r.s.st.data.camps) + 1)
	r.s.st.data.camps[c.CampID] = cloneCamp(c)
	return nil
}

func (r *campRepo) GetByID(ctx context.Context, campID uuid.UUID) (*camp.Camp, error) {
	defer r.s.lock()()
	c, ok := r.s.st.data.camps[campID]
	if !ok {
		return nil, nil
	}
	return cloneCamp(c), nil
}

func (r *campRepo) List(ctx context.Context, filter camp.Filter, limit, offset int) ([]*camp.Camp, error) {
	defer r.s.lock()()
	out := make([]*camp.Camp, 0, len(r.s.st.data.camps))
	for _, c := range r.s.st.data.camps {
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		if filter.VLEID != nil {
			invited := false
			for _, inv := range c.Invitations {
				if inv.VLEID == *filter.VLEID {
					invited = true
					break
				}
			}
			if !invited {
				continue
			}
		}
		out = append(out, cloneCamp(c))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return paginate(out, limit, offset), nil
}

func (r *campRepo) Update(ctx context.Context, c *camp.Camp) error {
	defer r.s.lock()()
	cur, ok := r.s.st.data.camps[c.CampID]
	if !ok {
		return fmt.Errorf("camp not found: %s", c.CampID)
	}
	if cur.Version != c.Version {
		return camp.ErrConcurrentUpdate
	}
	c.Version++
	c.ID = cur.ID
	r.s.st.data.camps[c.CampID] = cloneCamp(c)
	return nil
}

type notificationRepo struct{ s *Store }

func (r *notificationRepo) Create(ctx context.Context, n *notification.Notification) error {
	defer r.s.lock()()
	n.ID = int64(len(r.s.st.data.notifications) + 1)
	r.s.st.data.notifications[n.NotificationID] = cloneNotification(n)
	return nil
}

func (r *notificationRepo) Update(ctx context.Context, n *notification.Notification) error {
	defer r.s.lock()()
	cur, ok := r.s.st.data.notifications[n.NotificationID]
	if !ok {
		return fmt.Errorf("notification not found: %s", n.NotificationID)
	}
	n.ID = cur.ID
	r.s.st.data.notifications[n.NotificationID] = cloneNotification(n)
	return nil
}

func (r *notificationRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*notification.Notification, error) {
	defer r.s.lock()()
	out := make([]*notification.Notification, 0)
	for _, n := range r.s.st.data.notifications {
		if n.UserID == userID {
			out = append(out, cloneNotification(n))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return paginate(out, limit, offset), nil
}

type sessionRepo struct{ s *Store }

func (r *sessionRepo) Create(ctx context.Context, sess *session.Session) error {
	defer r.s.lock()()
	sess.ID = int64(len(r.s.st.data.sessions) + 1)
	r.s.st.data.sessions[sess.SessionID] = cloneSession(sess)
	return nil
}

func (r *sessionRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*session.Session, error) {
	defer r.s.lock()()
	for _, sess := range r.s.st.data.sessions {
		if sess.TokenHash == tokenHash {
			return cloneSession(sess), nil
		}
	}
	return nil, nil
}

func (r *sessionRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	defer r.s.lock()()
	for id, sess := range r.s.st.data.sessions {
		if sess.TokenHash == tokenHash {
			delete(r.s.st.data.sessions, id)
			return nil
		}
	}
	return nil
}

func (r *sessionRepo) UpdateLastSeen(ctx context.Context, sessionID uuid.UUID) error {
	defer r.s.lock()()
	sess, ok := r.s.st.data.sessions[sessionID]
	if !ok {
		return nil
	}
	now := time.Now().UTC()
	sess.LastSeenAt = &now
	return nil
}

func (r *sessionRepo) DeleteExpired(ctx context.Context) (int, error) {
	defer r.s.lock()()
	now := time.Now().UTC()
	deleted := 0
	for id, sess := range r.s.st.data.sessions {
		if sess.IsExpired(now) {
			delete(r.s.st.data.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

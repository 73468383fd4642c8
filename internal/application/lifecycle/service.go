package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/egovle/sevasetu/internal/application/payout"
	"github.com/egovle/sevasetu/internal/domain/catalog"
	"github.com/egovle/sevasetu/internal/domain/notification"
	"github.com/egovle/sevasetu/internal/domain/store"
	"github.com/egovle/sevasetu/internal/domain/task"
	"github.com/egovle/sevasetu/internal/domain/user"
	"github.com/egovle/sevasetu/internal/domain/wallet"
)

// Actor describes the authenticated user driving a transition.
type Actor struct {
	UserID uuid.UUID
	Name   string
	Role   user.Role
}

// Service is the task lifecycle state machine. Every transition validates
// the actor and precondition, applies the status change, the history entry
// and any ledger delta inside one store transaction, then notifies affected
// parties best-effort.
type Service struct {
	store      store.Store
	dispatcher notification.Dispatcher
	logger     zerolog.Logger
}

// NewService creates a lifecycle service.
func NewService(st store.Store, dispatcher notification.Dispatcher, logger zerolog.Logger) *Service {
	return &Service{
		store:      st,
		dispatcher: dispatcher,
		logger:     logger.With().Str("service", "lifecycle").Logger(),
	}
}

// CreateTaskInput carries the task creation request.
type CreateTaskInput struct {
	ServiceID       uuid.UUID
	Customer        string
	CustomerContact string
	Documents       []task.Document
}

// CreateTask creates a task through one of the two creation paths. Fixed-rate
// services debit the creator's wallet in the same transaction that writes the
// task; variable-rate services start at PENDING_PRICE_APPROVAL with no debit.
// VLE-originated tasks (leads) are charged the VLE rate instead of the
// customer rate.
func (s *Service) CreateTask(ctx context.Context, actor Actor, in CreateTaskInput) (*task.Task, error) {
	if actor.Role != user.RoleCustomer && actor.Role != user.RoleVLE {
		return nil, task.ErrPermissionDenied
	}
	if strings.TrimSpace(in.Customer) == "" {
		return nil, fmt.Errorf("customer name is required")
	}

	var created *task.Task
	err := s.store.Transact(ctx, func(st store.Store) error {
		svc, err := st.Catalog().GetByID(ctx, in.ServiceID)
		if err != nil {
			return err
		}
		if svc == nil {
			return fmt.Errorf("service not found: %s", in.ServiceID)
		}

		now := time.Now().UTC()
		t := &task.Task{
			TaskID:          uuid.New(),
			ServiceID:       svc.ServiceID,
			Service:         svc.Name,
			CreatorID:       actor.UserID,
			CreatorRole:     actor.Role,
			Customer:        in.Customer,
			CustomerContact: in.CustomerContact,
			Documents:       in.Documents,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		if svc.IsVariable {
			t.Status = task.StatusPendingPriceApproval
			t.AppendHistory(actor.UserID, actor.Role, task.ActionCreated, "awaiting admin pricing", now)
			created = t
			return st.Tasks().Create(ctx, t)
		}

		rate := svc.RateFor(actor.Role)
		entry := wallet.NewEntry(actor.UserID, wallet.KindDebit, rate, t.TaskID.String(), "task creation charge")
		if err := st.Wallets().Apply(ctx, entry); err != nil {
			return err
		}
		t.Status = task.StatusUnassigned
		t.TotalPaid = rate
		t.AppendHistory(actor.UserID, actor.Role, task.ActionCreated, fmt.Sprintf("paid %d from wallet", rate), now)
		created = t
		return st.Tasks().Create(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	if created.Status == task.StatusPendingPriceApproval {
		s.dispatcher.NotifyAdmins(ctx, "Pricing needed", fmt.Sprintf("New %s request needs a price", created.Service), taskLink(created.TaskID))
	} else {
		s.dispatcher.NotifyAdmins(ctx, "New task", fmt.Sprintf("New %s request is ready for assignment", created.Service), taskLink(created.TaskID))
	}
	return created, nil
}

// SetPrice applies admin pricing to a variable-rate task.
func (s *Service) SetPrice(ctx context.Context, actor Actor, taskID uuid.UUID, price int64) (*task.Task, error) {
	if actor.Role != user.RoleAdmin {
		return nil, task.ErrPermissionDenied
	}
	t, err := s.transition(ctx, taskID, func(t *task.Task, now time.Time) error {
		if err := t.SetPrice(price); err != nil {
			return err
		}
		t.AppendHistory(actor.UserID, actor.Role, task.ActionPriceSet, fmt.Sprintf("price set to %d", price), now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.dispatcher.Notify(ctx, t.CreatorID, "Price approved", fmt.Sprintf("Your %s request is priced at %d, awaiting payment", t.Service, price), taskLink(t.TaskID))
	return t, nil
}

// Pay debits the creator's wallet for a priced variable-rate task and moves
// it into the assignment pool.
func (s *Service) Pay(ctx context.Context, actor Actor, taskID uuid.UUID) (*task.Task, error) {
	var updated *task.Task
	err := s.store.Transact(ctx, func(st store.Store) error {
		t, err := s.load(ctx, st, taskID)
		if err != nil {
			return err
		}
		if t.CreatorID != actor.UserID {
			return task.ErrPermissionDenied
		}
		if t.Status != task.StatusAwaitingPayment {
			return task.ErrInvalidTransition
		}
		entry := wallet.NewEntry(actor.UserID, wallet.KindDebit, t.TotalPaid, t.TaskID.String(), "task payment")
		if err := st.Wallets().Apply(ctx, entry); err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := t.MarkPaid(); err != nil {
			return err
		}
		t.AppendHistory(actor.UserID, actor.Role, task.ActionPaymentReceived, fmt.Sprintf("paid %d from wallet", t.TotalPaid), now)
		t.UpdatedAt = now
		if err := st.Tasks().Update(ctx, t); err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.dispatcher.NotifyAdmins(ctx, "Payment received", fmt.Sprintf("%s request is ready for assignment", updated.Service), taskLink(updated.TaskID))
	return updated, nil
}

// AssignVLE invites an approved, available VLE onto an unassigned task. The
// task creator cannot be assigned to their own lead.
func (s *Service) AssignVLE(ctx context.Context, actor Actor, taskID, vleID uuid.UUID) (*task.Task, error) {
	if actor.Role != user.RoleAdmin {
		return nil, task.ErrPermissionDenied
	}
	var updated *task.Task
	err := s.store.Transact(ctx, func(st store.Store) error {
		t, err := s.load(ctx, st, taskID)
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
		if !vle.CanBeAssigned() || !vle.OffersService(t.ServiceID) {
			return fmt.Errorf("VLE %s is not eligible for this task", vle.Name)
		}
		if vle.UserID == t.CreatorID {
			return fmt.Errorf("task creator cannot be assigned their own task")
		}
		now := time.Now().UTC()
		if err := t.Assign(vle.UserID, vle.Name); err != nil {
			return err
		}
		t.AppendHistory(actor.UserID, actor.Role, task.ActionVLEAssigned, fmt.Sprintf("assigned to %s", vle.Name), now)
		t.UpdatedAt = now
		if err := st.Tasks().Update(ctx, t); err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.dispatcher.Notify(ctx, vleID, "New assignment", fmt.Sprintf("You have been invited to handle a %s task", updated.Service), taskLink(updated.TaskID))
	return updated, nil
}

// Accept confirms a pending assignment. The status is re-checked inside the
// transaction: when two acceptances race, exactly one wins and the loser
// receives ErrNoLongerAvailable.
func (s *Service) Accept(ctx context.Context, actor Actor, taskID uuid.UUID) (*task.Task, error) {
	t, err := s.transition(ctx, taskID, func(t *task.Task, now time.Time) error {
		if t.Status != task.StatusPendingVLEAcceptance {
			if t.AssignedVLEID == nil || !t.IsAssignedTo(actor.UserID) {
				return task.ErrNoLongerAvailable
			}
			return task.ErrInvalidTransition
		}
		if !t.IsAssignedTo(actor.UserID) {
			return task.ErrNoLongerAvailable
		}
		if err := t.Accept(); err != nil {
			return err
		}
		t.AppendHistory(actor.UserID, actor.Role, task.ActionVLEAccepted, "assignment accepted", now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.dispatcher.Notify(ctx, t.CreatorID, "Task accepted", fmt.Sprintf("%s accepted your %s task", actorName(t), t.Service), taskLink(t.TaskID))
	s.dispatcher.NotifyAdmins(ctx, "Task accepted", fmt.Sprintf("%s accepted a %s task", actorName(t), t.Service), taskLink(t.TaskID))
	return t, nil
}

// Reject declines a pending assignment and returns the task to the pool.
// Any VLE, including the one that rejected, may be assigned again later.
func (s *Service) Reject(ctx context.Context, actor Actor, taskID uuid.UUID) (*task.Task, error) {
	t, err := s.transition(ctx, taskID, func(t *task.Task, now time.Time) error {
		if !t.IsAssignedTo(actor.UserID) {
			return task.ErrPermissionDenied
		}
		name := actorName(t)
		if err := t.RejectAssignment(); err != nil {
			return err
		}
		t.AppendHistory(actor.UserID, actor.Role, task.ActionVLERejected, fmt.Sprintf("%s declined the assignment", name), now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.dispatcher.NotifyAdmins(ctx, "Assignment declined", fmt.Sprintf("A %s task is back in the pool", t.Service), taskLink(t.TaskID))
	return t, nil
}

// RequestDocuments asks the customer for more documents.
func (s *Service) RequestDocuments(ctx context.Context, actor Actor, taskID uuid.UUID, note string) (*task.Task, error) {
	t, err := s.transition(ctx, taskID, func(t *task.Task, now time.Time) error {
		if !t.IsAssignedTo(actor.UserID) {
			return task.ErrPermissionDenied
		}
		if err := t.RequestDocuments(); err != nil {
			return err
		}
		t.AppendHistory(actor.UserID, actor.Role, task.ActionDocumentsRequested, note, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.dispatcher.Notify(ctx, t.CreatorID, "Documents needed", fmt.Sprintf("More documents are needed for your %s task", t.Service), taskLink(t.TaskID))
	s.dispatcher.NotifyAdmins(ctx, "Documents requested", fmt.Sprintf("A %s task is waiting on customer documents", t.Service), taskLink(t.TaskID))
	return t, nil
}

// AddDocuments appends customer documents to the task. Not a status
// transition; the assigned VLE moves the task on once satisfied.
func (s *Service) AddDocuments(ctx context.Context, actor Actor, taskID uuid.UUID, docs []task.Document) (*task.Task, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents provided")
	}
	t, err := s.transition(ctx, taskID, func(t *task.Task, now time.Time) error {
		if t.CreatorID != actor.UserID {
			return task.ErrPermissionDenied
		}
		switch t.Status {
		case task.StatusAssigned, task.StatusAwaitingDocuments:
		default:
			return task.ErrInvalidTransition
		}
		t.Documents = append(t.Documents, docs...)
		t.AppendHistory(actor.UserID, actor.Role, task.ActionDocumentsUploaded, fmt.Sprintf("%d document(s) uploaded", len(docs)), now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if t.AssignedVLEID != nil {
		s.dispatcher.Notify(ctx, *t.AssignedVLEID, "Documents uploaded", fmt.Sprintf("New documents on your %s task", t.Service), taskLink(t.TaskID))
	}
	return t, nil
}

// SubmitAcknowledgement records government-side proof of filing and moves
// the task to IN_PROGRESS.
func (s *Service) SubmitAcknowledgement(ctx context.Context, actor Actor, taskID uuid.UUID, ack string) (*task.Task, error) {
	t, err := s.transition(ctx, taskID, func(t *task.Task, now time.Time) error {
		if !t.IsAssignedTo(actor.UserID) {
			return task.ErrPermissionDenied
		}
		if err := t.SubmitAcknowledgement(ack); err != nil {
			return err
		}
		t.AppendHistory(actor.UserID, actor.Role, task.ActionAcknowledged, fmt.Sprintf("acknowledgement %s", strings.TrimSpace(ack)), now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.dispatcher.Notify(ctx, t.CreatorID, "Filed with government", fmt.Sprintf("Your %s request has been filed", t.Service), taskLink(t.TaskID))
	return t, nil
}

// Complete attaches the final certificate and marks the task COMPLETED.
func (s *Service) Complete(ctx context.Context, actor Actor, taskID uuid.UUID, cert task.Document) (*task.Task, error) {
	t, err := s.transition(ctx, taskID, func(t *task.Task, now time.Time) error {
		if !t.IsAssignedTo(actor.UserID) {
			return task.ErrPermissionDenied
		}
		if err := t.Complete(cert); err != nil {
			return err
		}
		t.AppendHistory(actor.UserID, actor.Role, task.ActionCertificateUploaded, cert.Name, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.dispatcher.Notify(ctx, t.CreatorID, "Task completed", fmt.Sprintf("Your %s certificate is ready", t.Service), taskLink(t.TaskID))
	return t, nil
}

// ApprovePayout runs the payout engine and credits the assigned VLE's wallet
// atomically with the COMPLETED -> PAID_OUT flip. The status precondition is
// re-read inside the transaction, so a task pays out at most once.
func (s *Service) ApprovePayout(ctx context.Context, actor Actor, taskID uuid.UUID) (*task.Task, payout.Split, error) {
	if actor.Role != user.RoleAdmin {
		return nil, payout.Split{}, task.ErrPermissionDenied
	}
	var updated *task.Task
	var split payout.Split
	err := s.store.Transact(ctx, func(st store.Store) error {
		t, err := s.load(ctx, st, taskID)
		if err != nil {
			return err
		}
		if t.Status != task.StatusCompleted {
			return task.ErrInvalidTransition
		}
		if t.AssignedVLEID == nil {
			return fmt.Errorf("task has no assigned VLE")
		}
		svc, err := st.Catalog().GetByID(ctx, t.ServiceID)
		if err != nil {
			return err
		}
		if svc == nil {
			return fmt.Errorf("service not found: %s", t.ServiceID)
		}
		split, err = payout.Compute(t.TotalPaid, svc.VLERate, svc.GovernmentFee)
		if err != nil {
			return err
		}
		entry := wallet.NewEntry(*t.AssignedVLEID, wallet.KindCredit, split.VLECredit(), t.TaskID.String(), "task payout")
		if err := st.Wallets().Apply(ctx, entry); err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := t.MarkPaidOut(split.AdminCommission); err != nil {
			return err
		}
		t.AppendHistory(actor.UserID, actor.Role, task.ActionPayoutApproved,
			fmt.Sprintf("credited %d (commission %d + government fee %d)", split.VLECredit(), split.VLECommission, split.GovernmentFee), now)
		t.UpdatedAt = now
		if err := st.Tasks().Update(ctx, t); err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, payout.Split{}, err
	}
	s.dispatcher.Notify(ctx, *updated.AssignedVLEID, "Payout approved", fmt.Sprintf("Your wallet was credited %d for a %s task", split.VLECredit(), updated.Service), taskLink(updated.TaskID))
	return updated, split, nil
}

// RaiseComplaint opens the complaint sub-flow. One complaint per task.
func (s *Service) RaiseComplaint(ctx context.Context, actor Actor, taskID uuid.UUID, text string, docs []task.Document) (*task.Task, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("complaint text is required")
	}
	t, err := s.transition(ctx, taskID, func(t *task.Task, now time.Time) error {
		if t.CreatorID != actor.UserID {
			return task.ErrPermissionDenied
		}
		if err := t.RaiseComplaint(task.Complaint{Text: text, Date: now, Documents: docs}); err != nil {
			return err
		}
		t.AppendHistory(actor.UserID, actor.Role, task.ActionComplaintRaised, text, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.dispatcher.NotifyAdmins(ctx, "Complaint raised", fmt.Sprintf("Complaint on a %s task", t.Service), taskLink(t.TaskID))
	return t, nil
}

// RespondComplaint records the admin response; the task returns to the
// status it held before the complaint.
func (s *Service) RespondComplaint(ctx context.Context, actor Actor, taskID uuid.UUID, text string, docs []task.Document) (*task.Task, error) {
	if actor.Role != user.RoleAdmin {
		return nil, task.ErrPermissionDenied
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("response text is required")
	}
	t, err := s.transition(ctx, taskID, func(t *task.Task, now time.Time) error {
		if err := t.RespondComplaint(task.ComplaintResponse{Text: text, Documents: docs, Date: now}); err != nil {
			return err
		}
		t.AppendHistory(actor.UserID, actor.Role, task.ActionComplaintResponded, text, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.dispatcher.Notify(ctx, t.CreatorID, "Complaint answered", fmt.Sprintf("Your complaint on the %s task has a response", t.Service), taskLink(t.TaskID))
	return t, nil
}

// SubmitFeedback records the customer rating after completion.
func (s *Service) SubmitFeedback(ctx context.Context, actor Actor, taskID uuid.UUID, rating int, comment string) (*task.Task, error) {
	t, err := s.transition(ctx, taskID, func(t *task.Task, now time.Time) error {
		if t.CreatorID != actor.UserID {
			return task.ErrPermissionDenied
		}
		if err := t.SubmitFeedback(task.Feedback{Rating: rating, Comment: comment, Date: now}); err != nil {
			return err
		}
		t.AppendHistory(actor.UserID, actor.Role, task.ActionFeedbackSubmitted, fmt.Sprintf("rated %d/5", rating), now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if t.AssignedVLEID != nil {
		s.dispatcher.Notify(ctx, *t.AssignedVLEID, "Feedback received", fmt.Sprintf("A %s task was rated %d/5", t.Service, rating), taskLink(t.TaskID))
	}
	return t, nil
}

// GetTask retrieves a task by ID.
func (s *Service) GetTask(ctx context.Context, taskID uuid.UUID) (*task.Task, error) {
	return s.store.Tasks().GetByID(ctx, taskID)
}

// ListTasks lists tasks. A read-path projection, not part of the machine.
func (s *Service) ListTasks(ctx context.Context, filter task.Filter, limit, offset int) ([]*task.Task, error) {
	return s.store.Tasks().List(ctx, filter, limit, offset)
}

// CommissionReport sums the platform margin over paid-out tasks. Derived for
// reporting only; the admin has no ledger account.
func (s *Service) CommissionReport(ctx context.Context) (int64, int, error) {
	status := task.StatusPaidOut
	var total int64
	var count int
	const page = 200
	for offset := 0; ; offset += page {
		tasks, err := s.store.Tasks().List(ctx, task.Filter{Status: &status}, page, offset)
		if err != nil {
			return 0, 0, err
		}
		for _, t := range tasks {
			total += t.AdminCommission
			count++
		}
		if len(tasks) < page {
			return total, count, nil
		}
	}
}

// ListServices exposes the catalog.
func (s *Service) ListServices(ctx context.Context, limit, offset int) ([]*catalog.Service, error) {
	return s.store.Catalog().List(ctx, limit, offset)
}

// SuggestPrice evaluates a variable-rate service's price expression as an
// admin pricing aid.
func (s *Service) SuggestPrice(ctx context.Context, serviceID uuid.UUID, params map[string]interface{}) (int64, error) {
	svc, err := s.store.Catalog().GetByID(ctx, serviceID)
	if err != nil {
		return 0, err
	}
	if svc == nil {
		return 0, fmt.Errorf("service not found: %s", serviceID)
	}
	return svc.SuggestPrice(params)
}

// transition runs a task mutation inside a store transaction: load, mutate,
// stamp, CAS update.
func (s *Service) transition(ctx context.Context, taskID uuid.UUID, mutate func(*task.Task, time.Time) error) (*task.Task, error) {
	var updated *task.Task
	err := s.store.Transact(ctx, func(st store.Store) error {
		t, err := s.load(ctx, st, taskID)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := mutate(t, now); err != nil {
			return err
		}
		t.UpdatedAt = now
		if err := st.Tasks().Update(ctx, t); err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) load(ctx context.Context, st store.Store, taskID uuid.UUID) (*task.Task, error) {
	t, err := st.Tasks().GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("task not found: %s", taskID)
	}
	return t, nil
}

func taskLink(taskID uuid.UUID) *string {
	link := "/tasks/" + taskID.String()
	return &link
}

func actorName(t *task.Task) string {
	if t.AssignedVLEName != nil {
		return *t.AssignedVLEName
	}
	return "the VLE"
}

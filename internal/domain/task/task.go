package task

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/egovle/sevasetu/internal/domain/user"
)

// Status represents task status.
type Status string

const (
	StatusPendingPriceApproval Status = "PENDING_PRICE_APPROVAL"
	StatusAwaitingPayment      Status = "AWAITING_PAYMENT"
	StatusUnassigned           Status = "UNASSIGNED"
	StatusPendingVLEAcceptance Status = "PENDING_VLE_ACCEPTANCE"
	StatusAssigned             Status = "ASSIGNED"
	StatusAwaitingDocuments    Status = "AWAITING_DOCUMENTS"
	StatusInProgress           Status = "IN_PROGRESS"
	StatusCompleted            Status = "COMPLETED"
	StatusPaidOut              Status = "PAID_OUT"
	StatusComplaintRaised      Status = "COMPLAINT_RAISED"
)

// History action strings. These are part of the audit contract and must not
// change between releases.
const (
	ActionCreated             = "TASK_CREATED"
	ActionPriceSet            = "PRICE_SET"
	ActionPaymentReceived     = "PAYMENT_RECEIVED"
	ActionVLEAssigned         = "VLE_ASSIGNED"
	ActionVLEAccepted         = "VLE_ACCEPTED"
	ActionVLERejected         = "VLE_REJECTED"
	ActionDocumentsRequested  = "DOCUMENTS_REQUESTED"
	ActionDocumentsUploaded   = "DOCUMENTS_UPLOADED"
	ActionAcknowledged        = "ACKNOWLEDGEMENT_SUBMITTED"
	ActionCertificateUploaded = "CERTIFICATE_UPLOADED"
	ActionPayoutApproved      = "PAYOUT_APPROVED"
	ActionComplaintRaised     = "COMPLAINT_RAISED"
	ActionComplaintResponded  = "COMPLAINT_RESPONDED"
	ActionFeedbackSubmitted   = "FEEDBACK_SUBMITTED"
)

var (
	ErrInvalidTransition = errors.New("invalid task status transition")
	ErrPermissionDenied  = errors.New("actor not permitted for this transition")
	ErrNoLongerAvailable = errors.New("task is no longer available")
	ErrComplaintExists   = errors.New("task already has a complaint")
	ErrFeedbackExists    = errors.New("task already has feedback")
)

// Document is an opaque reference into the blob store.
type Document struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// HistoryEntry records one action on a task. Entries are append-only.
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	ActorID   uuid.UUID `json:"actorId"`
	ActorRole user.Role `json:"actorRole"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
}

// ComplaintStatus represents complaint sub-state.
type ComplaintStatus string

const (
	ComplaintOpen      ComplaintStatus = "OPEN"
	ComplaintResponded ComplaintStatus = "RESPONDED"
)

// ComplaintResponse holds the admin response to a complaint.
type ComplaintResponse struct {
	Text      string     `json:"text"`
	Documents []Document `json:"documents,omitempty"`
	Date      time.Time  `json:"date"`
}

// Complaint is the complaint sub-entity embedded in a task.
type Complaint struct {
	Text      string             `json:"text"`
	Date      time.Time          `json:"date"`
	Documents []Document         `json:"documents,omitempty"`
	Status    ComplaintStatus    `json:"status"`
	Response  *ComplaintResponse `json:"response,omitempty"`
}

// Feedback is the customer rating left after completion.
type Feedback struct {
	Rating  int       `json:"rating"`
	Comment string    `json:"comment,omitempty"`
	Date    time.Time `json:"date"`
}

// Task represents a single government-service request.
type Task struct {
	ID                    int64          `json:"id"`
	TaskID                uuid.UUID      `json:"taskId"`
	ServiceID             uuid.UUID      `json:"serviceId"`
	Service               string         `json:"service"`
	CreatorID             uuid.UUID      `json:"creatorId"`
	CreatorRole           user.Role      `json:"creatorRole"`
	Customer              string         `json:"customer"`
	CustomerContact       string         `json:"customerContact"`
	Status                Status         `json:"status"`
	AssignedVLEID         *uuid.UUID     `json:"assignedVleId,omitempty"`
	AssignedVLEName       *string        `json:"assignedVleName,omitempty"`
	TotalPaid             int64          `json:"totalPaid"`
	AdminCommission       int64          `json:"adminCommission"`
	Documents             []Document     `json:"documents,omitempty"`
	AcknowledgementNumber *string        `json:"acknowledgementNumber,omitempty"`
	FinalCertificate      *Document      `json:"finalCertificate,omitempty"`
	Complaint             *Complaint     `json:"complaint,omitempty"`
	Feedback              *Feedback      `json:"feedback,omitempty"`
	History               []HistoryEntry `json:"history"`
	StatusBeforeComplaint *Status        `json:"statusBeforeComplaint,omitempty"`
	Version               int            `json:"version"`
	CreatedAt             time.Time      `json:"createdAt"`
	UpdatedAt             time.Time      `json:"updatedAt"`
}

var transitions = map[Status][]Status{
	StatusPendingPriceApproval: {StatusAwaitingPayment},
	StatusAwaitingPayment:      {StatusUnassigned},
	StatusUnassigned:           {StatusPendingVLEAcceptance},
	StatusPendingVLEAcceptance: {StatusAssigned, StatusUnassigned},
	StatusAssigned:             {StatusAwaitingDocuments, StatusInProgress, StatusCompleted},
	StatusAwaitingDocuments:    {StatusAwaitingDocuments, StatusInProgress, StatusCompleted},
	StatusInProgress:           {StatusCompleted},
	StatusCompleted:            {StatusPaidOut, StatusComplaintRaised},
	StatusPaidOut:              {StatusComplaintRaised},
	StatusComplaintRaised:      {StatusCompleted, StatusPaidOut},
}

// CanTransitionTo validates task status transition.
func (t *Task) CanTransitionTo(target Status) bool {
	for _, s := range transitions[t.Status] {
		if s == target {
			return true
		}
	}
	return false
}

// assignedStatuses is the set of states in which AssignedVLEID must be set.
var assignedStatuses = map[Status]bool{
	StatusPendingVLEAcceptance: true,
	StatusAssigned:             true,
	StatusAwaitingDocuments:    true,
	StatusInProgress:           true,
	StatusCompleted:            true,
	StatusPaidOut:              true,
}

// RequiresAssignedVLE reports whether a status implies a non-nil assignment.
// COMPLAINT_RAISED keeps whatever assignment existed before the complaint.
func RequiresAssignedVLE(s Status) bool {
	return assignedStatuses[s]
}

// IsAssignedTo reports whether the task's current assignment matches the VLE.
func (t *Task) IsAssignedTo(vleID uuid.UUID) bool {
	return t.AssignedVLEID != nil && *t.AssignedVLEID == vleID
}

// SetPrice applies admin pricing on a variable-rate task.
func (t *Task) SetPrice(amount int64) error {
	if !t.CanTransitionTo(StatusAwaitingPayment) {
		return ErrInvalidTransition
	}
	if amount <= 0 {
		return errors.New("price must be positive")
	}
	t.TotalPaid = amount
	t.Status = StatusAwaitingPayment
	return nil
}

// MarkPaid records the creator's wallet payment.
func (t *Task) MarkPaid() error {
	if !t.CanTransitionTo(StatusUnassigned) || t.Status != StatusAwaitingPayment {
		return ErrInvalidTransition
	}
	t.Status = StatusUnassigned
	return nil
}

// Assign invites a VLE onto the task.
func (t *Task) Assign(vleID uuid.UUID, vleName string) error {
	if t.Status != StatusUnassigned {
		return ErrInvalidTransition
	}
	t.AssignedVLEID = &vleID
	t.AssignedVLEName = &vleName
	t.Status = StatusPendingVLEAcceptance
	return nil
}

// Accept confirms the pending assignment.
func (t *Task) Accept() error {
	if t.Status != StatusPendingVLEAcceptance {
		return ErrInvalidTransition
	}
	t.Status = StatusAssigned
	return nil
}

// RejectAssignment clears the pending assignment and returns the task to the
// pool.
func (t *Task) RejectAssignment() error {
	if t.Status != StatusPendingVLEAcceptance {
		return ErrInvalidTransition
	}
	t.AssignedVLEID = nil
	t.AssignedVLEName = nil
	t.Status = StatusUnassigned
	return nil
}

// RequestDocuments flags the task as waiting on customer documents.
func (t *Task) RequestDocuments() error {
	if t.Status != StatusAssigned && t.Status != StatusAwaitingDocuments {
		return ErrInvalidTransition
	}
	t.Status = StatusAwaitingDocuments
	return nil
}

// SubmitAcknowledgement records government-side proof of filing.
func (t *Task) SubmitAcknowledgement(ack string) error {
	if t.Status != StatusAssigned && t.Status != StatusAwaitingDocuments {
		return ErrInvalidTransition
	}
	ack = strings.TrimSpace(ack)
	if ack == "" {
		return errors.New("acknowledgement number is required")
	}
	t.AcknowledgementNumber = &ack
	t.Status = StatusInProgress
	return nil
}

// Complete attaches the final certificate. Allowed from any VLE-actionable
// state, not only IN_PROGRESS.
func (t *Task) Complete(cert Document) error {
	switch t.Status {
	case StatusAssigned, StatusAwaitingDocuments, StatusInProgress:
	default:
		return ErrInvalidTransition
	}
	if cert.URL == "" {
		return errors.New("certificate file is required")
	}
	c := cert
	t.FinalCertificate = &c
	t.Status = StatusCompleted
	return nil
}

// MarkPaidOut finalizes the task after the payout ledger credit.
func (t *Task) MarkPaidOut(adminCommission int64) error {
	if t.Status != StatusCompleted {
		return ErrInvalidTransition
	}
	t.AdminCommission = adminCommission
	t.Status = StatusPaidOut
	return nil
}

// RaiseComplaint opens the complaint sub-flow. Only one complaint per task.
func (t *Task) RaiseComplaint(c Complaint) error {
	if t.Complaint != nil {
		return ErrComplaintExists
	}
	if t.Status != StatusCompleted && t.Status != StatusPaidOut {
		return ErrInvalidTransition
	}
	prev := t.Status
	t.StatusBeforeComplaint = &prev
	c.Status = ComplaintOpen
	t.Complaint = &c
	t.Status = StatusComplaintRaised
	return nil
}

// RespondComplaint records the admin response and restores the task to the
// status it held before the complaint was raised.
func (t *Task) RespondComplaint(resp ComplaintResponse) error {
	if t.Status != StatusComplaintRaised || t.Complaint == nil || t.Complaint.Status != ComplaintOpen {
		return ErrInvalidTransition
	}
	t.Complaint.Status = ComplaintResponded
	t.Complaint.Response = &resp
	if t.StatusBeforeComplaint != nil {
		t.Status = *t.StatusBeforeComplaint
		t.StatusBeforeComplaint = nil
	} else {
		t.Status = StatusCompleted
	}
	return nil
}

// SubmitFeedback records the customer rating. One per task.
func (t *Task) SubmitFeedback(f Feedback) error {
	if t.Feedback != nil {
		return ErrFeedbackExists
	}
	switch t.Status {
	case StatusCompleted, StatusPaidOut:
	default:
		return ErrInvalidTransition
	}
	if f.Rating < 1 || f.Rating > 5 {
		return errors.New("rating must be between 1 and 5")
	}
	fb := f
	t.Feedback = &fb
	return nil
}

// AppendHistory adds an audit entry. Called by the lifecycle service only,
// so every transition is self-documenting.
func (t *Task) AppendHistory(actorID uuid.UUID, role user.Role, action, details string, at time.Time) {
	t.History = append(t.History, HistoryEntry{
		Timestamp: at,
		ActorID:   actorID,
		ActorRole: role,
		Action:    action,
		Details:   details,
	})
}

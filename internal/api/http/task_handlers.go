package httpapi

import (
	"net/http"

	"github.com/google/uuid"

	appLifecycle "github.com/egovle/sevasetu/internal/application/lifecycle"
	"github.com/egovle/sevasetu/internal/domain/task"
	domainUser "github.com/egovle/sevasetu/internal/domain/user"
)

type taskCreateRequest struct {
	ServiceID       uuid.UUID       `json:"service_id"`
	Customer        string          `json:"customer"`
	CustomerContact string          `json:"customer_contact,omitempty"`
	Documents       []task.Document `json:"documents,omitempty"`
}

type priceRequest struct {
	Amount int64 `json:"amount"`
}

type assignRequest struct {
	VLEID uuid.UUID `json:"vle_id"`
}

type noteRequest struct {
	Note string `json:"note,omitempty"`
}

type documentsRequest struct {
	Documents []task.Document `json:"documents"`
}

type acknowledgementRequest struct {
	AcknowledgementNumber string `json:"acknowledgement_number"`
}

type completeRequest struct {
	Certificate task.Document `json:"certificate"`
}

type complaintRequest struct {
	Text      string          `json:"text"`
	Documents []task.Document `json:"documents,omitempty"`
}

type feedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

type suggestPriceRequest struct {
	Params map[string]interface{} `json:"params"`
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req taskCreateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	t, err := s.lifecycleSvc.CreateTask(r.Context(), actorFromContext(r), appLifecycle.CreateTaskInput{
		ServiceID:       req.ServiceID,
		Customer:        req.Customer,
		CustomerContact: req.CustomerContact,
		Documents:       req.Documents,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, t)
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r, 100, 200)
	filter := task.Filter{}
	if v := r.URL.Query().Get("status"); v != "" {
		status := task.Status(v)
		filter.Status = &status
	}
	auth := authUserFromContext(r.Context())
	switch auth.Role {
	case domainUser.RoleAdmin, domainUser.RoleGovernment:
		// Full view. Optional creator/vle filters.
		if v := r.URL.Query().Get("creator_id"); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid creator_id")
				return
			}
			filter.CreatorID = &id
		}
		if v := r.URL.Query().Get("vle_id"); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid vle_id")
				return
			}
			filter.AssignedVLEID = &id
		}
	case domainUser.RoleVLE:
		if r.URL.Query().Get("mine") == "created" {
			filter.CreatorID = &auth.UserID
		} else {
			filter.AssignedVLEID = &auth.UserID
		}
	default:
		filter.CreatorID = &auth.UserID
	}
	tasks, err := s.lifecycleSvc.ListTasks(r.Context(), filter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"tasks": tasks})
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "taskId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid taskId")
		return
	}
	t, err := s.lifecycleSvc.GetTask(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if t == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "task not found")
		return
	}
	auth := authUserFromContext(r.Context())
	if !canViewTask(auth, t) {
		respondError(w, http.StatusForbidden, "FORBIDDEN", "not your task")
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func canViewTask(auth *AuthUser, t *task.Task) bool {
	switch auth.Role {
	case domainUser.RoleAdmin, domainUser.RoleGovernment:
		return true
	default:
		return t.CreatorID == auth.UserID || t.IsAssignedTo(auth.UserID)
	}
}

func (s *Server) setPrice(w http.ResponseWriter, r *http.Request) {
	s.taskTransition(w, r, func(actor appLifecycle.Actor, taskID uuid.UUID) (*task.Task, error) {
		var req priceRequest
		if err := decodeBody(r, &req); err != nil {
			return nil, err
		}
		return s.lifecycleSvc.SetPrice(r.Context(), actor, taskID, req.Amount)
	})
}

func (s *Server) payTask(w http.ResponseWriter, r *http.Request) {
	s.taskTransition(w, r, func(actor appLifecycle.Actor, taskID uuid.UUID) (*task.Task, error) {
		return s.lifecycleSvc.Pay(r.Context(), actor, taskID)
	})
}

func (s *Server) assignVLE(w http.ResponseWriter, r *http.Request) {
	s.taskTransition(w, r, func(actor appLifecycle.Actor, taskID uuid.UUID) (*task.Task, error) {
		var req assignRequest
		if err := decodeBody(r, &req); err != nil {
			return nil, err
		}
		return s.lifecycleSvc.AssignVLE(r.Context(), actor, taskID, req.VLEID)
	})
}

func (s *Server) acceptTask(w http.ResponseWriter, r *http.Request) {
	s.taskTransition(w, r, func(actor appLifecycle.Actor, taskID uuid.UUID) (*task.Task, error) {
		return s.lifecycleSvc.Accept(r.Context(), actor, taskID)
	})
}

func (s *Server) rejectTask(w http.ResponseWriter, r *http.Request) {
	s.taskTransition(w, r, func(actor appLifecycle.Actor, taskID uuid.UUID) (*task.Task, error) {
		return s.lifecycleSvc.Reject(r.Context(), actor, taskID)
	})
}

func (s *Server) requestDocuments(w http.ResponseWriter, r *http.Request) {
	s.taskTransition(w, r, func(actor appLifecycle.Actor, taskID uuid.UUID) (*task.Task, error) {
		var req noteRequest
		if err := decodeBody(r, &req); err != nil {
			return nil, err
		}
		return s.lifecycleSvc.RequestDocuments(r.Context(), actor, taskID, req.Note)
	})
}

func (s *Server) addDocuments(w http.ResponseWriter, r *http.Request) {
	s.taskTransition(w, r, func(actor appLifecycle.Actor, taskID uuid.UUID) (*task.Task, error) {
		var req documentsRequest
		if err := decodeBody(r, &req); err != nil {
			return nil, err
		}
		return s.lifecycleSvc.AddDocuments(r.Context(), actor, taskID, req.Documents)
	})
}

func (s *Server) submitAcknowledgement(w http.ResponseWriter, r *http.Request) {
	s.taskTransition(w, r, func(actor appLifecycle.Actor, taskID uuid.UUID) (*task.Task, error) {
		var req acknowledgementRequest
		if err := decodeBody(r, &req); err != nil {
			return nil, err
		}
		return s.lifecycleSvc.SubmitAcknowledgement(r.Context(), actor, taskID, req.AcknowledgementNumber)
	})
}

func (s *Server) completeTask(w http.ResponseWriter, r *http.Request) {
	s.taskTransition(w, r, func(actor appLifecycle.Actor, taskID uuid.UUID) (*task.Task, error) {
		var req completeRequest
		if err := decodeBody(r, &req); err != nil {
			return nil, err
		}
		return s.lifecycleSvc.Complete(r.Context(), actor, taskID, req.Certificate)
	})
}

func (s *Server) approvePayout(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "taskId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid taskId")
		return
	}
	t, split, err := s.lifecycleSvc.ApprovePayout(r.Context(), actorFromContext(r), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"task": t, "split": split})
}

func (s *Server) raiseComplaint(w http.ResponseWriter, r *http.Request) {
	s.taskTransition(w, r, func(actor appLifecycle.Actor, taskID uuid.UUID) (*task.Task, error) {
		var req complaintRequest
		if err := decodeBody(r, &req); err != nil {
			return nil, err
		}
		return s.lifecycleSvc.RaiseComplaint(r.Context(), actor, taskID, req.Text, req.Documents)
	})
}

func (s *Server) respondComplaint(w http.ResponseWriter, r *http.Request) {
	s.taskTransition(w, r, func(actor appLifecycle.Actor, taskID uuid.UUID) (*task.Task, error) {
		var req complaintRequest
		if err := decodeBody(r, &req); err != nil {
			return nil, err
		}
		return s.lifecycleSvc.RespondComplaint(r.Context(), actor, taskID, req.Text, req.Documents)
	})
}

func (s *Server) submitFeedback(w http.ResponseWriter, r *http.Request) {
	s.taskTransition(w, r, func(actor appLifecycle.Actor, taskID uuid.UUID) (*task.Task, error) {
		var req feedbackRequest
		if err := decodeBody(r, &req); err != nil {
			return nil, err
		}
		return s.lifecycleSvc.SubmitFeedback(r.Context(), actor, taskID, req.Rating, req.Comment)
	})
}

func (s *Server) taskTransition(w http.ResponseWriter, r *http.Request, fn func(appLifecycle.Actor, uuid.UUID) (*task.Task, error)) {
	id, err := parseUUIDParam(r, "taskId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid taskId")
		return
	}
	t, err := fn(actorFromContext(r), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (s *Server) listServices(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r, 100, 200)
	services, err := s.lifecycleSvc.ListServices(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"services": services})
}

func (s *Server) suggestPrice(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "serviceId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid serviceId")
		return
	}
	var req suggestPriceRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	price, err := s.lifecycleSvc.SuggestPrice(r.Context(), id, req.Params)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"suggested_price": price})
}

func (s *Server) commissionReport(w http.ResponseWriter, r *http.Request) {
	total, count, err := s.lifecycleSvc.CommissionReport(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"total_commission": total,
		"paid_out_tasks":   count,
	})
}

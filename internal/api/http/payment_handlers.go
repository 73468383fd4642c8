package httpapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/egovle/sevasetu/internal/domain/payment"
	domainUser "github.com/egovle/sevasetu/internal/domain/user"
)

type paymentCreateRequest struct {
	Amount int64 `json:"amount"`
}

func (s *Server) createPaymentRequest(w http.ResponseWriter, r *http.Request) {
	var req paymentCreateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	auth := authUserFromContext(r.Context())
	pr, err := s.paymentSvc.CreateRequest(r.Context(), auth.UserID, auth.Role, req.Amount)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, pr)
}

func (s *Server) listPaymentRequests(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r, 100, 200)
	filter := payment.Filter{}
	auth := authUserFromContext(r.Context())
	if auth.Role != domainUser.RoleAdmin {
		filter.UserID = &auth.UserID
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := payment.Status(v)
		filter.Status = &status
	}
	requests, err := s.paymentSvc.List(r.Context(), filter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"requests": requests})
}

func (s *Server) approvePaymentRequest(w http.ResponseWriter, r *http.Request) {
	s.decidePaymentRequest(w, r, s.paymentSvc.Approve)
}

func (s *Server) rejectPaymentRequest(w http.ResponseWriter, r *http.Request) {
	s.decidePaymentRequest(w, r, s.paymentSvc.Reject)
}

func (s *Server) decidePaymentRequest(w http.ResponseWriter, r *http.Request, decide func(ctx context.Context, adminID uuid.UUID, role domainUser.Role, requestID uuid.UUID) (*payment.Request, error)) {
	id, err := parseUUIDParam(r, "requestId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid requestId")
		return
	}
	auth := authUserFromContext(r.Context())
	pr, err := decide(r.Context(), auth.UserID, auth.Role, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pr)
}

func (s *Server) walletStatement(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r, 100, 500)
	auth := authUserFromContext(r.Context())
	userID := auth.UserID
	if v := r.URL.Query().Get("user_id"); v != "" {
		if auth.Role != domainUser.RoleAdmin {
			respondError(w, http.StatusForbidden, "FORBIDDEN", "cannot view another user's wallet")
			return
		}
		id, err := uuid.Parse(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid user_id")
			return
		}
		userID = id
	}
	statement, err := s.paymentSvc.WalletStatement(r.Context(), userID, limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, statement)
}

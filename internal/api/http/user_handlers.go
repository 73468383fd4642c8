package httpapi

import (
	"net/http"

	"github.com/google/uuid"

	domainUser "github.com/egovle/sevasetu/internal/domain/user"
)

type statusRequest struct {
	Status domainUser.Status `json:"status"`
}

type availabilityRequest struct {
	Available bool `json:"available"`
}

type servicesRequest struct {
	Services []uuid.UUID `json:"services"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r, 100, 200)
	filter := domainUser.Filter{}
	q := r.URL.Query()
	if v := q.Get("role"); v != "" {
		role := domainUser.Role(v)
		filter.Role = &role
	}
	if v := q.Get("status"); v != "" {
		status := domainUser.Status(v)
		filter.Status = &status
	}
	if v := q.Get("approved"); v != "" {
		approved := v == "true"
		filter.Approved = &approved
	}
	users, err := s.userSvc.ListUsers(r.Context(), filter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "userId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid userId")
		return
	}
	auth := authUserFromContext(r.Context())
	if auth.Role != domainUser.RoleAdmin && auth.UserID != id {
		respondError(w, http.StatusForbidden, "FORBIDDEN", "cannot view another user")
		return
	}
	u, err := s.userSvc.GetUser(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if u == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "user not found")
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (s *Server) approveVLE(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "userId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid userId")
		return
	}
	auth := authUserFromContext(r.Context())
	u, err := s.userSvc.ApproveVLE(r.Context(), auth.Role, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (s *Server) setUserStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "userId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid userId")
		return
	}
	var req statusRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	auth := authUserFromContext(r.Context())
	u, err := s.userSvc.SetStatus(r.Context(), auth.Role, id, req.Status)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (s *Server) setAvailability(w http.ResponseWriter, r *http.Request) {
	var req availabilityRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	auth := authUserFromContext(r.Context())
	u, err := s.userSvc.SetAvailability(r.Context(), auth.UserID, req.Available)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (s *Server) setServices(w http.ResponseWriter, r *http.Request) {
	var req servicesRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	auth := authUserFromContext(r.Context())
	u, err := s.userSvc.SetServices(r.Context(), auth.UserID, req.Services)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (s *Server) setPassword(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	auth := authUserFromContext(r.Context())
	if err := s.userSvc.SetPassword(r.Context(), auth.UserID, req.Password); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/egovle/sevasetu/internal/domain/camp"
	domainUser "github.com/egovle/sevasetu/internal/domain/user"
)

type campCreateRequest struct {
	Name     string    `json:"name"`
	Location string    `json:"location"`
	Date     time.Time `json:"date"`
}

type campInviteRequest struct {
	VLEID uuid.UUID `json:"vle_id"`
}

type campRespondRequest struct {
	Accept bool `json:"accept"`
}

type campPayoutRequest struct {
	Amounts       map[uuid.UUID]int64 `json:"amounts"`
	AdminEarnings int64               `json:"admin_earnings"`
}

func (s *Server) createCamp(w http.ResponseWriter, r *http.Request) {
	var req campCreateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	auth := authUserFromContext(r.Context())
	c, err := s.campSvc.Create(r.Context(), auth.Role, req.Name, req.Location, req.Date)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (s *Server) listCamps(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r, 100, 200)
	filter := camp.Filter{}
	auth := authUserFromContext(r.Context())
	if auth.Role == domainUser.RoleVLE {
		filter.VLEID = &auth.UserID
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := camp.Status(v)
		filter.Status = &status
	}
	camps, err := s.campSvc.List(r.Context(), filter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"camps": camps})
}

func (s *Server) getCamp(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "campId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid campId")
		return
	}
	c, err := s.campSvc.Get(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if c == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "camp not found")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) inviteToCamp(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "campId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid campId")
		return
	}
	var req campInviteRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	auth := authUserFromContext(r.Context())
	c, err := s.campSvc.Invite(r.Context(), auth.Role, id, req.VLEID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) respondToCamp(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "campId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid campId")
		return
	}
	var req campRespondRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	auth := authUserFromContext(r.Context())
	c, err := s.campSvc.Respond(r.Context(), auth.UserID, id, req.Accept)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) completeCamp(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "campId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid campId")
		return
	}
	auth := authUserFromContext(r.Context())
	c, err := s.campSvc.Complete(r.Context(), auth.Role, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) payoutCamp(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "campId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid campId")
		return
	}
	var req campPayoutRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	auth := authUserFromContext(r.Context())
	c, err := s.campSvc.Payout(r.Context(), auth.UserID, auth.Role, id, req.Amounts, req.AdminEarnings)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

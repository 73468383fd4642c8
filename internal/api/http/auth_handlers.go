package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	appUser "github.com/egovle/sevasetu/internal/application/user"
	domainUser "github.com/egovle/sevasetu/internal/domain/user"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Name     string      `json:"name"`
	Contact  string      `json:"contact,omitempty"`
	Role     string      `json:"role"`
	Location string      `json:"location,omitempty"`
	Services []uuid.UUID `json:"services,omitempty"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	result, err := s.authSvc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}
	if s.sessionCookieName != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     s.sessionCookieName,
			Value:    result.Token,
			Path:     "/",
			Expires:  result.Session.ExpiresAt,
			HttpOnly: true,
			Secure:   s.sessionCookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token":      result.Token,
		"user":       result.User,
		"expires_at": result.Session.ExpiresAt,
	})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	role := domainUser.Role(req.Role)
	// Admin and government accounts are provisioned out of band.
	if role != domainUser.RoleCustomer && role != domainUser.RoleVLE {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "role must be CUSTOMER or VLE")
		return
	}
	u, err := s.userSvc.Register(r.Context(), appUser.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Contact:  req.Contact,
		Role:     role,
		Location: req.Location,
		Services: req.Services,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, u)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	token := extractToken(r, s.sessionCookieName)
	if err := s.authSvc.Logout(r.Context(), token); err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if s.sessionCookieName != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     s.sessionCookieName,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			HttpOnly: true,
			Secure:   s.sessionCookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	auth := authUserFromContext(r.Context())
	u, err := s.userSvc.GetUser(r.Context(), auth.UserID)
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

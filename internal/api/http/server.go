package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appAuth "github.com/egovle/sevasetu/internal/application/auth"
	appCamp "github.com/egovle/sevasetu/internal/application/camp"
	appLifecycle "github.com/egovle/sevasetu/internal/application/lifecycle"
	appNotify "github.com/egovle/sevasetu/internal/application/notify"
	appPayment "github.com/egovle/sevasetu/internal/application/payment"
	appUser "github.com/egovle/sevasetu/internal/application/user"
	"github.com/egovle/sevasetu/internal/domain/camp"
	"github.com/egovle/sevasetu/internal/domain/payment"
	"github.com/egovle/sevasetu/internal/domain/task"
	domainUser "github.com/egovle/sevasetu/internal/domain/user"
	"github.com/egovle/sevasetu/internal/domain/wallet"
	"github.com/egovle/sevasetu/internal/infrastructure/blob"
	"github.com/egovle/sevasetu/internal/infrastructure/sse"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	lifecycleSvc        *appLifecycle.Service
	paymentSvc          *appPayment.Service
	campSvc             *appCamp.Service
	notifySvc           *appNotify.Service
	authSvc             *appAuth.Service
	userSvc             *appUser.Service
	blobs               blob.Store
	sseHub              *sse.Hub
	sessionCookieName   string
	sessionCookieSecure bool
	logger              zerolog.Logger
}

func NewServer(
	lifecycleSvc *appLifecycle.Service,
	paymentSvc *appPayment.Service,
	campSvc *appCamp.Service,
	notifySvc *appNotify.Service,
	authSvc *appAuth.Service,
	userSvc *appUser.Service,
	blobs blob.Store,
	sseHub *sse.Hub,
	sessionCookieName string,
	sessionCookieSecure bool,
	logger zerolog.Logger,
) *Server {
	return &Server{
		lifecycleSvc:        lifecycleSvc,
		paymentSvc:          paymentSvc,
		campSvc:             campSvc,
		notifySvc:           notifySvc,
		authSvc:             authSvc,
		userSvc:             userSvc,
		blobs:               blobs,
		sseHub:              sseHub,
		sessionCookieName:   sessionCookieName,
		sessionCookieSecure: sessionCookieSecure,
		logger:              logger.With().Str("component", "http").Logger(),
	}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.login)
			r.Post("/register", s.register)
			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/logout", s.logout)
				r.Get("/me", s.me)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Route("/services", func(r chi.Router) {
				r.Get("/", s.listServices)
				r.With(s.requireRole(domainUser.RoleAdmin)).Post("/{serviceId}/suggest-price", s.suggestPrice)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", s.createTask)
				r.Get("/", s.listTasks)
				r.Get("/{taskId}", s.getTask)
				r.With(s.requireRole(domainUser.RoleAdmin)).Post("/{taskId}/price", s.setPrice)
				r.Post("/{taskId}/pay", s.payTask)
				r.With(s.requireRole(domainUser.RoleAdmin)).Post("/{taskId}/assign", s.assignVLE)
				r.Post("/{taskId}/accept", s.acceptTask)
				r.Post("/{taskId}/reject", s.rejectTask)
				r.Post("/{taskId}/request-documents", s.requestDocuments)
				r.Post("/{taskId}/documents", s.addDocuments)
				r.Post("/{taskId}/acknowledgement", s.submitAcknowledgement)
				r.Post("/{taskId}/complete", s.completeTask)
				r.With(s.requireRole(domainUser.RoleAdmin)).Post("/{taskId}/payout", s.approvePayout)
				r.Post("/{taskId}/complaint", s.raiseComplaint)
				r.With(s.requireRole(domainUser.RoleAdmin)).Post("/{taskId}/complaint/respond", s.respondComplaint)
				r.Post("/{taskId}/feedback", s.submitFeedback)
			})

			r.Route("/payments", func(r chi.Router) {
				r.Post("/", s.createPaymentRequest)
				r.Get("/", s.listPaymentRequests)
				r.With(s.requireRole(domainUser.RoleAdmin)).Post("/{requestId}/approve", s.approvePaymentRequest)
				r.With(s.requireRole(domainUser.RoleAdmin)).Post("/{requestId}/reject", s.rejectPaymentRequest)
			})

			r.Get("/wallet", s.walletStatement)

			r.Route("/camps", func(r chi.Router) {
				r.With(s.requireRole(domainUser.RoleAdmin)).Post("/", s.createCamp)
				r.Get("/", s.listCamps)
				r.Get("/{campId}", s.getCamp)
				r.With(s.requireRole(domainUser.RoleAdmin)).Post("/{campId}/invite", s.inviteToCamp)
				r.Post("/{campId}/respond", s.respondToCamp)
				r.With(s.requireRole(domainUser.RoleAdmin)).Post("/{campId}/complete", s.completeCamp)
				r.With(s.requireRole(domainUser.RoleAdmin)).Post("/{campId}/payout", s.payoutCamp)
			})

			r.Route("/users", func(r chi.Router) {
				r.With(s.requireRole(domainUser.RoleAdmin)).Get("/", s.listUsers)
				r.Get("/{userId}", s.getUser)
				r.With(s.requireRole(domainUser.RoleAdmin)).Post("/{userId}/approve", s.approveVLE)
				r.With(s.requireRole(domainUser.RoleAdmin)).Post("/{userId}/status", s.setUserStatus)
				r.Post("/me/availability", s.setAvailability)
				r.Post("/me/services", s.setServices)
				r.Put("/me/password", s.setPassword)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", s.listNotifications)
				r.Get("/sse", s.sseEndpoint)
			})

			r.Route("/files", func(r chi.Router) {
				r.Post("/", s.uploadFile)
				r.Get("/{name}", s.downloadFile)
			})

			r.With(s.requireRole(domainUser.RoleAdmin)).Get("/admin/commission-report", s.commissionReport)
		})
	})

	return r
}

// Helpers

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}

// respondServiceError maps domain sentinels onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, task.ErrPermissionDenied):
		respondError(w, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, wallet.ErrInsufficientFunds):
		respondError(w, http.StatusPaymentRequired, "INSUFFICIENT_FUNDS", err.Error())
	case errors.Is(err, task.ErrNoLongerAvailable),
		errors.Is(err, task.ErrInvalidTransition),
		errors.Is(err, task.ErrComplaintExists),
		errors.Is(err, task.ErrFeedbackExists),
		errors.Is(err, payment.ErrAlreadyDecided),
		errors.Is(err, camp.ErrInvalidTransition),
		errors.Is(err, camp.ErrAlreadyPaidOut),
		errors.Is(err, camp.ErrAlreadyInvited),
		errors.Is(err, camp.ErrAlreadyResponded),
		errors.Is(err, camp.ErrConcurrentUpdate):
		respondError(w, http.StatusConflict, "CONFLICT", err.Error())
	case strings.Contains(err.Error(), "not found"):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	default:
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
	}
}

func parseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	val := chi.URLParam(r, key)
	return uuid.Parse(val)
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func parseLimitOffset(r *http.Request, defaultLimit, maxLimit int) (int, int) {
	limit := defaultLimit
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil {
			limit = l
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if o, err := strconv.Atoi(v); err == nil {
			offset = o
		}
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func actorFromContext(r *http.Request) appLifecycle.Actor {
	u := authUserFromContext(r.Context())
	if u == nil {
		return appLifecycle.Actor{}
	}
	return appLifecycle.Actor{UserID: u.UserID, Name: u.Name, Role: u.Role}
}

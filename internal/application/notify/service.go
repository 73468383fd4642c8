package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/egovle/sevasetu/internal/domain/notification"
	"github.com/egovle/sevasetu/internal/domain/store"
	"github.com/egovle/sevasetu/internal/domain/user"
)

// Service is the notification dispatcher. Dispatch runs asynchronously so a
// slow consumer never holds up the transition that produced the
// notification; failures are recorded on the notification row and logged,
// never returned.
type Service struct {
	store  store.Store
	hub    notification.SSEHub
	logger zerolog.Logger
	wg     sync.WaitGroup
}

func NewService(st store.Store, hub notification.SSEHub, logger zerolog.Logger) *Service {
	return &Service{
		store:  st,
		hub:    hub,
		logger: logger.With().Str("service", "notify").Logger(),
	}
}

// Notify sends a notification to one user.
func (s *Service) Notify(ctx context.Context, userID uuid.UUID, title, body string, link *string) {
	s.dispatch(notification.New(userID, title, body, link))
}

// NotifyAdmins fans the notification out to every active admin account.
func (s *Service) NotifyAdmins(ctx context.Context, title, body string, link *string) {
	role := user.RoleAdmin
	status := user.StatusActive
	admins, err := s.store.Users().List(ctx, user.Filter{Role: &role, Status: &status}, 0, 0)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list admins for notification")
		return
	}
	for _, admin := range admins {
		s.dispatch(notification.New(admin.UserID, title, body, link))
	}
}

// ListForUser returns a user's notifications, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*notification.Notification, error) {
	return s.store.Notifications().ListByUser(ctx, userID, limit, offset)
}

// Wait blocks until all in-flight dispatches finish. Used on shutdown and
// in tests.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) dispatch(n *notification.Notification) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.store.Notifications().Create(ctx, n); err != nil {
			s.logger.Error().Err(err).
				Str("user_id", n.UserID.String()).
				Str("title", n.Title).
				Msg("failed to persist notification")
			return
		}

		if err := s.push(n); err != nil {
			n.MarkFailed(err.Error())
			s.logger.Warn().Err(err).
				Str("user_id", n.UserID.String()).
				Str("notification_id", n.NotificationID.String()).
				Msg("notification delivery failed")
		} else {
			n.MarkSent()
		}
		if err := s.store.Notifications().Update(ctx, n); err != nil {
			s.logger.Error().Err(err).
				Str("notification_id", n.NotificationID.String()).
				Msg("failed to update notification status")
		}
	}()
}

func (s *Service) push(n *notification.Notification) error {
	if s.hub == nil {
		return nil
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	s.hub.BroadcastToUser(n.UserID.String(), notification.NewSSEMessage("notification", payload))
	return nil
}

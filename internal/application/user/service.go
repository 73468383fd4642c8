package user

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/egovle/sevasetu/internal/domain/store"
	"github.com/egovle/sevasetu/internal/domain/task"
	domain "github.com/egovle/sevasetu/internal/domain/user"
	"github.com/egovle/sevasetu/internal/domain/wallet"
)

// Service handles account management. Registration opens the user's wallet
// account in the same transaction, so every customer and VLE has a ledger
// from the first request.
type Service struct {
	store  store.Store
	logger zerolog.Logger
}

// NewService creates a user service.
func NewService(st store.Store, logger zerolog.Logger) *Service {
	return &Service{
		store:  st,
		logger: logger.With().Str("service", "user").Logger(),
	}
}

// RegisterInput defines account creation input.
type RegisterInput struct {
	Username string
	Password string
	Name     string
	Contact  string
	Role     domain.Role
	Location string
	Services []uuid.UUID
}

// Register creates an account. VLEs start unapproved and unavailable; an
// admin approves them before they can take assignments.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	username := domain.NormalizeUsername(input.Username)
	if err := domain.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(input.Password, username); err != nil {
		return nil, err
	}
	if err := domain.ValidateRole(input.Role); err != nil {
		return nil, err
	}
	if input.Name == "" {
		return nil, fmt.Errorf("name is required")
	}

	hash, err := domain.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := &domain.User{
		UserID:       uuid.New(),
		Username:     username,
		PasswordHash: hash,
		Name:         input.Name,
		Contact:      input.Contact,
		Role:         input.Role,
		Status:       domain.StatusActive,
		Location:     input.Location,
		Services:     input.Services,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.store.Transact(ctx, func(st store.Store) error {
		if err := st.Users().Create(ctx, u); err != nil {
			return err
		}
		if u.Role != domain.RoleCustomer && u.Role != domain.RoleVLE {
			return nil
		}
		account := &wallet.Account{
			UserID:    u.UserID,
			Role:      u.Role,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return st.Wallets().CreateAccount(ctx, account)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", u.UserID.String()).Str("username", u.Username).Str("role", string(u.Role)).Msg("user registered")
	return u, nil
}

// ApproveVLE marks a VLE eligible for assignments.
func (s *Service) ApproveVLE(ctx context.Context, actorRole domain.Role, vleID uuid.UUID) (*domain.User, error) {
	if actorRole != domain.RoleAdmin {
		return nil, task.ErrPermissionDenied
	}
	u, err := s.load(ctx, vleID)
	if err != nil {
		return nil, err
	}
	if u.Role != domain.RoleVLE {
		return nil, fmt.Errorf("user %s is not a VLE", vleID)
	}
	u.Approved = true
	u.UpdatedAt = time.Now().UTC()
	if err := s.store.Users().Update(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", u.UserID.String()).Msg("VLE approved")
	return u, nil
}

// SetAvailability toggles the VLE's own availability flag.
func (s *Service) SetAvailability(ctx context.Context, vleID uuid.UUID, available bool) (*domain.User, error) {
	u, err := s.load(ctx, vleID)
	if err != nil {
		return nil, err
	}
	if u.Role != domain.RoleVLE {
		return nil, fmt.Errorf("user %s is not a VLE", vleID)
	}
	u.Available = available
	u.UpdatedAt = time.Now().UTC()
	if err := s.store.Users().Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// SetServices replaces the VLE's offered service list.
func (s *Service) SetServices(ctx context.Context, vleID uuid.UUID, services []uuid.UUID) (*domain.User, error) {
	u, err := s.load(ctx, vleID)
	if err != nil {
		return nil, err
	}
	if u.Role != domain.RoleVLE {
		return nil, fmt.Errorf("user %s is not a VLE", vleID)
	}
	u.Services = services
	u.UpdatedAt = time.Now().UTC()
	if err := s.store.Users().Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// SetStatus enables or disables an account.
func (s *Service) SetStatus(ctx context.Context, actorRole domain.Role, userID uuid.UUID, status domain.Status) (*domain.User, error) {
	if actorRole != domain.RoleAdmin {
		return nil, task.ErrPermissionDenied
	}
	if err := domain.ValidateStatus(status); err != nil {
		return nil, err
	}
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.Status = status
	u.UpdatedAt = time.Now().UTC()
	if err := s.store.Users().Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword replaces the user's password.
func (s *Service) SetPassword(ctx context.Context, userID uuid.UUID, password string) error {
	u, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if err := domain.ValidatePassword(password, u.Username); err != nil {
		return err
	}
	hash, err := domain.HashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now().UTC()
	return s.store.Users().Update(ctx, u)
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.store.Users().GetByID(ctx, userID)
}

// ListUsers returns users matching the filter.
func (s *Service) ListUsers(ctx context.Context, filter domain.Filter, limit, offset int) ([]*domain.User, error) {
	return s.store.Users().List(ctx, filter, limit, offset)
}

func (s *Service) load(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	u, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("user not found: %s", userID)
	}
	return u, nil
}

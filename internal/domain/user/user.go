package user

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Role represents a user role.
type Role string

const (
	RoleCustomer   Role = "CUSTOMER"
	RoleVLE        Role = "VLE"
	RoleGovernment Role = "GOVERNMENT"
	RoleAdmin      Role = "ADMIN"
)

// Status represents account status.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusDisabled Status = "DISABLED"
)

// User represents a platform account. VLE-specific fields are zero-valued
// for every other role.
type User struct {
	ID           int64      `json:"id"`
	UserID       uuid.UUID  `json:"userId"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Name         string     `json:"name"`
	Contact      string     `json:"contact"`
	Role         Role       `json:"role"`
	Status       Status     `json:"status"`
	Location     string     `json:"location,omitempty"`
	Approved     bool       `json:"approved"`
	Available    bool       `json:"available"`
	Services     []uuid.UUID `json:"services,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// CanBeAssigned reports whether the user is a VLE that may receive task
// assignments.
func (u *User) CanBeAssigned() bool {
	return u.Role == RoleVLE && u.IsActive() && u.Approved && u.Available
}

// OffersService reports whether the VLE has the service in its offered list.
// An empty list means the VLE takes any service.
func (u *User) OffersService(serviceID uuid.UUID) bool {
	if len(u.Services) == 0 {
		return true
	}
	for _, id := range u.Services {
		if id == serviceID {
			return true
		}
	}
	return false
}

func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9._-]{2,30}[A-Za-z0-9]$`)

func ValidateUsername(username string) error {
	if username == "" {
		return errors.New("username is required")
	}
	if !usernamePattern.MatchString(username) {
		return errors.New("username must be 4-32 chars, start with a letter, and contain only letters, digits, '.', '_' or '-'")
	}
	return nil
}

func ValidatePassword(password, username string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if strings.EqualFold(password, username) {
		return errors.New("password must not equal the username")
	}
	return nil
}

func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func VerifyPassword(hash string, password string) bool {
	if hash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func ValidateRole(role Role) error {
	switch role {
	case RoleCustomer, RoleVLE, RoleGovernment, RoleAdmin:
		return nil
	default:
		return errors.New("invalid role")
	}
}

func ValidateStatus(status Status) error {
	switch status {
	case StatusActive, StatusDisabled:
		return nil
	default:
		return errors.New("invalid status")
	}
}

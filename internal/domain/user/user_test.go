package user

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUsername(t *testing.T) {
	valid := []string{"sita", "ramesh.naik", "vle_007", "a-b-c1"}
	for _, name := range valid {
		assert.NoError(t, ValidateUsername(name), name)
	}
	invalid := []string{"", "ab", "1sita", ".sita", "sita.", "has space", "way-too-long-username-for-the-pattern-limit"}
	for _, name := range invalid {
		assert.Error(t, ValidateUsername(name), name)
	}
}

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "sita", NormalizeUsername("  SiTa "))
}

func TestValidatePassword(t *testing.T) {
	require.Error(t, ValidatePassword("short", "sita"))
	require.Error(t, ValidatePassword("SitaDevi1", "sitadevi1"))
	require.NoError(t, ValidatePassword("a-long-enough-one", "sita"))
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "correct horse battery"))
	assert.False(t, VerifyPassword(hash, "wrong"))
	assert.False(t, VerifyPassword("", "anything"))
}

func TestCanBeAssigned(t *testing.T) {
	u := &User{Role: RoleVLE, Status: StatusActive, Approved: true, Available: true}
	assert.True(t, u.CanBeAssigned())

	for _, mutate := range []func(*User){
		func(u *User) { u.Role = RoleCustomer },
		func(u *User) { u.Status = StatusDisabled },
		func(u *User) { u.Approved = false },
		func(u *User) { u.Available = false },
	} {
		v := *u
		mutate(&v)
		assert.False(t, v.CanBeAssigned())
	}
}

func TestOffersService(t *testing.T) {
	serviceID := uuid.New()
	anyVLE := &User{Role: RoleVLE}
	assert.True(t, anyVLE.OffersService(serviceID), "empty list takes any service")

	specialist := &User{Role: RoleVLE, Services: []uuid.UUID{serviceID}}
	assert.True(t, specialist.OffersService(serviceID))
	assert.False(t, specialist.OffersService(uuid.New()))
}

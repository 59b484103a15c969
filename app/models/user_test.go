package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	user, err := CreateUser("Jane Doe", "jane@example.com", "secret123")
	require.NoError(t, err)

	assert.Equal(t, ROLE_USER, user.Role)
	assert.Equal(t, STATUS_ACTIVE, user.Status)
	assert.Equal(t, int64(SignupCredits), user.Credits)
	assert.NotEqual(t, "secret123", user.Password, "password must be stored hashed")
	assert.True(t, user.CheckPassword("secret123"))
	assert.False(t, user.CheckPassword("wrong"))
}

func TestCreateUserValidation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{name: "short name", username: "ab", email: "jane@example.com", password: "secret123"},
		{name: "invalid email", username: "Jane Doe", email: "not-an-email", password: "secret123"},
		{name: "short password", username: "Jane Doe", email: "jane@example.com", password: "12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateUser(tt.username, tt.email, tt.password)
			assert.Error(t, err)
		})
	}
}

func TestUserRoleAndStatusHelpers(t *testing.T) {
	admin := &User{Role: ROLE_ADMIN, Status: STATUS_ACTIVE}
	assert.True(t, admin.IsAdmin())
	assert.True(t, admin.IsActive())

	disabled := &User{Role: ROLE_USER, Status: STATUS_DISABLED}
	assert.False(t, disabled.IsAdmin())
	assert.False(t, disabled.IsActive())
}

func TestSetPassword(t *testing.T) {
	user := &User{}
	require.NoError(t, user.SetPassword("newsecret"))
	assert.True(t, user.CheckPassword("newsecret"))
}

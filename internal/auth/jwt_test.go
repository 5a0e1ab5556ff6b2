package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *JWTManager {
	return NewJWTManager("test-secret", time.Hour, "gatherhub")
}

func TestGenerateAndValidate(t *testing.T) {
	manager := newTestManager()

	token, err := manager.Generate("user-1", "alice@example.com", RoleOrganizer)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, RoleOrganizer, claims.ParsedRole())
}

func TestGenerateRequiresIdentity(t *testing.T) {
	manager := newTestManager()

	_, err := manager.Generate("", "alice@example.com", RoleAttendee)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = manager.Generate("user-1", "", RoleAttendee)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsBadTokens(t *testing.T) {
	manager := newTestManager()

	_, err := manager.Validate("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = manager.Validate("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewJWTManager("different-secret", time.Hour, "gatherhub")
	token, err := other.Generate("user-1", "alice@example.com", RoleAttendee)
	require.NoError(t, err)

	_, err = manager.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	expired := NewJWTManager("test-secret", -time.Minute, "gatherhub")
	token, err := expired.Generate("user-1", "alice@example.com", RoleAttendee)
	require.NoError(t, err)

	_, err = newTestManager().Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenFromHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "bearer token", header: "Bearer abc123", want: "abc123"},
		{name: "lowercase scheme", header: "bearer abc123", want: "abc123"},
		{name: "empty header", header: "", wantErr: true},
		{name: "missing token", header: "Bearer", wantErr: true},
		{name: "wrong scheme", header: "Basic abc123", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TokenFromHeader(tt.header)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMissingToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

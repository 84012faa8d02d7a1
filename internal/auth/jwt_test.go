package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomy/roomy/internal/auth"
)

func newService(t *testing.T, cfg auth.JWTConfig) *auth.JWTService {
	t.Helper()
	if cfg.SigningKey == "" {
		cfg.SigningKey = "test-secret-key-for-testing-only"
	}
	svc, err := auth.NewJWTService(cfg)
	require.NoError(t, err)
	return svc
}

func TestJWTService_GenerateAndValidateAccessToken(t *testing.T) {
	svc := newService(t, auth.JWTConfig{Issuer: "https://api.roomy.ng", Audience: "roomy-mobile"})

	token, expiresAt, err := svc.GenerateAccessToken("usr_test123", false)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "usr_test123", claims.UserID)
	assert.Equal(t, "usr_test123", claims.Subject)
	assert.Equal(t, "https://api.roomy.ng", claims.Issuer)
	assert.False(t, claims.Guest)

	userID, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "usr_test123", userID)
}

func TestJWTService_GuestToken(t *testing.T) {
	svc := newService(t, auth.JWTConfig{})

	id := auth.NewGuestID()
	assert.True(t, strings.HasPrefix(id, "gst_"))
	assert.NotEqual(t, id, auth.NewGuestID())

	token, _, err := svc.GenerateAccessToken(id, true)
	require.NoError(t, err)

	claims, err := svc.ParseAccessToken(token)
	require.NoError(t, err)
	assert.True(t, claims.Guest)
	assert.Equal(t, id, claims.UserID)
}

func TestJWTService_MissingSigningKey(t *testing.T) {
	_, err := auth.NewJWTService(auth.JWTConfig{})
	assert.ErrorIs(t, err, auth.ErrMissingSigningKey)
}

func TestJWTService_InvalidToken(t *testing.T) {
	svc := newService(t, auth.JWTConfig{})

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"malformed token", "not.a.valid.jwt"},
		{"invalid base64", "xxx.yyy.zzz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateAccessToken(tt.token)
			assert.ErrorIs(t, err, auth.ErrInvalidAccessToken)
		})
	}
}

func TestJWTService_WrongSigningKey(t *testing.T) {
	svc1 := newService(t, auth.JWTConfig{SigningKey: "key-one"})
	svc2 := newService(t, auth.JWTConfig{SigningKey: "key-two"})

	token, _, err := svc1.GenerateAccessToken("usr_1", false)
	require.NoError(t, err)

	_, err = svc2.ValidateAccessToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidAccessToken)
}

func TestJWTService_WrongAudience(t *testing.T) {
	svc1 := newService(t, auth.JWTConfig{Audience: "roomy-api"})
	svc2 := newService(t, auth.JWTConfig{Audience: "other-api"})

	token, _, err := svc1.GenerateAccessToken("usr_1", false)
	require.NoError(t, err)

	_, err = svc2.ValidateAccessToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidAccessToken)
}

func TestJWTService_Expired(t *testing.T) {
	issued := time.Now().Add(-2 * time.Hour)
	old := newService(t, auth.JWTConfig{Now: func() time.Time { return issued }})
	current := newService(t, auth.JWTConfig{})

	token, _, err := old.GenerateAccessToken("usr_1", false)
	require.NoError(t, err)

	_, err = current.ValidateAccessToken(token)
	assert.ErrorIs(t, err, auth.ErrAccessTokenExpired)
}

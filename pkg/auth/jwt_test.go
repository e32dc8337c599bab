package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrincipalRoundTrip(t *testing.T) {
	svc := NewJWTService("secret", "salon")
	user := uuid.New()

	token, err := svc.GenerateToken(user, time.Hour, time.Now())
	require.NoError(t, err)

	got, err := svc.Principal(token)
	require.NoError(t, err)
	assert.Equal(t, user, got)
}

func TestPrincipalRejects(t *testing.T) {
	svc := NewJWTService("secret", "salon")
	user := uuid.New()

	expired, err := svc.GenerateToken(user, time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	foreign, err := NewJWTService("other", "salon").GenerateToken(user, time.Hour, time.Now())
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{}).SignedString([]byte("secret"))
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "not-a-uuid"},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "not.a.token", ErrInvalidToken},
		{"expired", expired, ErrExpiredToken},
		{"wrong secret", foreign, ErrInvalidToken},
		{"no subject", noSubject, ErrMissingUser},
		{"bad subject", badSubject, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Principal(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims ViewerClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestVerifyValidToken(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, testSecret, ViewerClaims{
		Role: "user",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "profile-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	subject, err := (&TokenVerifier{Secret: testSecret}).Verify(token)
	require.NoError(t, err)
	require.Equal(t, "profile-1", subject)
}

func TestVerifyRejects(t *testing.T) {
	verifier := &TokenVerifier{Secret: testSecret}
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := map[string]string{
		"expired": signToken(t, jwt.SigningMethodHS256, testSecret, ViewerClaims{RegisteredClaims: jwt.RegisteredClaims{
			Subject: "p", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		}}),
		"no expiry": signToken(t, jwt.SigningMethodHS256, testSecret, ViewerClaims{RegisteredClaims: jwt.RegisteredClaims{
			Subject: "p",
		}}),
		"no subject": signToken(t, jwt.SigningMethodHS256, testSecret, ViewerClaims{RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: future,
		}}),
		"wrong secret": signToken(t, jwt.SigningMethodHS256, []byte("other"), ViewerClaims{RegisteredClaims: jwt.RegisteredClaims{
			Subject: "p", ExpiresAt: future,
		}}),
		"wrong algorithm": signToken(t, jwt.SigningMethodHS512, testSecret, ViewerClaims{RegisteredClaims: jwt.RegisteredClaims{
			Subject: "p", ExpiresAt: future,
		}}),
		"garbage": "not.a.token",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := verifier.Verify(token)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-only-key"))
	require.NoError(t, err)
	return s
}

func TestParseTokenUnverified_Success(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	raw := signedToken(t, jwt.RegisteredClaims{Subject: "user-42", ExpiresAt: jwt.NewNumericDate(exp)})

	token, err := ParseTokenUnverified(raw)
	require.NoError(t, err)

	userID, err := token.GetUserID()
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
	assert.Equal(t, raw, token.String())
	require.NotNil(t, token.ExpiresAt)
	assert.True(t, exp.Equal(token.ExpiresAt.Time))
}

func TestParseTokenUnverified_IgnoresSignature(t *testing.T) {
	raw := signedToken(t, jwt.RegisteredClaims{Subject: "u1"})
	// tamper with the signature segment
	tampered := raw[:len(raw)-2] + "xx"

	token, err := ParseTokenUnverified(tampered)
	require.NoError(t, err)
	id, _ := token.GetUserID()
	assert.Equal(t, "u1", id)
}

func TestParseTokenUnverified_Errors(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"malformed", "not-a-jwt"},
		{"no subject", signedToken(t, jwt.RegisteredClaims{Issuer: "tally"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTokenUnverified(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestParseBearerToken(t *testing.T) {
	tok, err := ParseBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", tok)

	for _, bad := range []string{"", "Bearer", "Basic abc", "Bearer a b"} {
		_, err = ParseBearerToken(bad)
		assert.Error(t, err, bad)
	}
}

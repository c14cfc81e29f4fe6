package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MKhiriev/tally-sync/models"
	"github.com/golang-jwt/jwt/v5"
)

// ParseTokenUnverified decodes the claims of a bearer token without checking
// its signature. The client holds no signing key; the backend verifies every
// request, so the claims are only used for local bookkeeping (whose session
// this is, when it expires).
//
// Returns an error if the token is malformed or carries no subject.
//
// Example usage:
//
//	token, err := utils.ParseTokenUnverified(raw)
//	if err != nil {
//	    // not a JWT
//	}
//	userID, _ := token.GetUserID()
func ParseTokenUnverified(tokenString string) (models.Token, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return models.Token{}, errors.New("empty token")
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, &claims); err != nil {
		return models.Token{}, fmt.Errorf("error occurred parsing token: %w", err)
	}
	if claims.Subject == "" {
		return models.Token{}, errors.New("empty subject error")
	}

	return models.Token{RegisteredClaims: claims, SignedString: tokenString}, nil
}

// ParseBearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func ParseBearerToken(authorizationHeader string) (string, error) {
	parts := strings.Split(strings.TrimSpace(authorizationHeader), " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}

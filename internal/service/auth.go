package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/tally-sync/internal/utils"
	"github.com/MKhiriev/tally-sync/models"
)

// TokenAuthProvider is an [AuthProvider] over a JWT bearer token.
type TokenAuthProvider struct {
	mu    sync.RWMutex
	token models.Token
	now   func() time.Time
}

// NewTokenAuthProvider returns an AuthProvider backed by a bearer token the
// host app already holds. The user id is read from the token subject; the
// signature is not verified.
func NewTokenAuthProvider(signedToken string) (*TokenAuthProvider, error) {
	p := &TokenAuthProvider{now: time.Now}
	if err := p.SetToken(signedToken); err != nil {
		return nil, err
	}
	return p, nil
}

// SetToken swaps in a renewed token.
func (p *TokenAuthProvider) SetToken(signedToken string) error {
	signedToken = strings.TrimSpace(signedToken)
	if signedToken == "" {
		return ErrNoToken
	}

	token, err := utils.ParseTokenUnverified(signedToken)
	if err != nil {
		return fmt.Errorf("parse session token: %w", err)
	}
	if _, err = token.GetUserID(); err != nil {
		return fmt.Errorf("parse session token: %w", err)
	}

	p.mu.Lock()
	p.token = token
	p.mu.Unlock()

	return nil
}

// Token implements AuthProvider. An expired token is reported as
// ErrTokenIsExpired instead of being sent.
func (p *TokenAuthProvider) Token(_ context.Context) (string, error) {
	p.mu.RLock()
	token := p.token
	p.mu.RUnlock()

	if token.SignedString == "" {
		return "", ErrNoToken
	}
	if token.ExpiresAt != nil && !p.now().Before(token.ExpiresAt.Time) {
		return "", ErrTokenIsExpired
	}
	return token.SignedString, nil
}

// UserID implements AuthProvider.
func (p *TokenAuthProvider) UserID(_ context.Context) (string, error) {
	p.mu.RLock()
	token := p.token
	p.mu.RUnlock()

	return token.GetUserID()
}

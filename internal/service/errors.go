package service

import "errors"

var (
	ErrNoToken         = errors.New("no session token")
	ErrTokenIsExpired  = errors.New("token is expired")
	ErrSessionExpired  = errors.New("session expired")
	ErrSessionClosed   = errors.New("session is closed")
	ErrUnknownDomain   = errors.New("unknown cache domain")
	ErrEmptyHabitID    = errors.New("empty habit id")
	ErrInvalidTimezone = errors.New("invalid rollover timezone")
)

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains shared application-layer constants used by the
// debug surface.
//
// All Msg* constants are human-readable strings written into HTTP response
// bodies to describe why an operation failed. Keeping them in one place
// keeps the wording consistent.
package app

const (
	// MsgInternalServerError is returned for failures the caller cannot
	// resolve.
	MsgInternalServerError = "internal server error"

	// MsgSessionClosed is returned when the session was closed or logged out.
	MsgSessionClosed = "session is closed"

	// MsgSessionExpired is returned when the backend rejected the session
	// token. The host app has to sign in again.
	MsgSessionExpired = "session expired, sign in again"

	// MsgNoToken is returned when the session holds no usable token.
	MsgNoToken = "no session token"

	// MsgUnknownDomain is returned when a refresh names a cache domain that
	// does not exist.
	MsgUnknownDomain = "unknown cache domain"

	// MsgBackendUnavailable is returned when the backend could not be
	// reached or answered with a server error.
	MsgBackendUnavailable = "backend unavailable"

	// MsgInvalidForceParam is returned when the force query parameter is not
	// a boolean.
	MsgInvalidForceParam = "force must be a boolean"
)

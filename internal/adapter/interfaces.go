// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the transport layer between the sync engine and
// the habit backend.
//
// The primary abstraction is [ServerAdapter], which decouples the service
// layer from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPServerAdapter]) built on resty.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrNotFound] for 404, [ErrUnauthorized] for 401) and
// [errors.As] with [*ServerError] for the status code itself.
package adapter

import (
	"context"

	"github.com/MKhiriev/tally-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/server_adapter_mock.go -package=mock

// ServerAdapter defines transport-agnostic communication with the backend.
// Every method takes the bearer token explicitly; the adapter keeps no
// session state.
type ServerAdapter interface {
	// FetchDeltaSnapshot performs the single authenticated delta fetch and
	// decodes it key by key. A key that is missing or malformed leaves its
	// field empty and, when malformed, adds a [models.DecodeError] to the
	// snapshot; it never fails the whole call. Transport failures return
	// [ErrNetwork]; non-2xx responses return a [*ServerError].
	FetchDeltaSnapshot(ctx context.Context, token string) (models.Snapshot, error)

	// RequestImageURL asks for a short-lived download URL of the image
	// attached to the verification with id verificationID. Returns
	// [ErrNotFound] (wrapped) when the verification has no image.
	RequestImageURL(ctx context.Context, token, verificationID string) (models.SignedURL, error)

	// DownloadImage fetches the raw bytes behind a signed URL. A response is
	// valid only with a 2xx status and a non-empty body; an empty body
	// returns [ErrEmptyBody].
	DownloadImage(ctx context.Context, url string) ([]byte, error)

	// FetchRecipientAnalytics retrieves the recipient dashboard payload.
	FetchRecipientAnalytics(ctx context.Context, token string) (models.RecipientAnalytics, error)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package imagecache implements the two-tier verification image cache.
//
// The memory tier is a bounded LRU limited by entry count and by cumulative
// byte cost. The disk tier keeps one blob per key and is only emptied by
// [Tier.ClearAll]. Concurrent requests for the same missing key share one
// download.
package imagecache

import (
	"context"

	"github.com/MKhiriev/tally-sync/models"
)

// Fetcher is the part of the server adapter the tier needs.
type Fetcher interface {
	RequestImageURL(ctx context.Context, token, verificationID string) (models.SignedURL, error)
	DownloadImage(ctx context.Context, url string) ([]byte, error)
}

// TokenSource returns the bearer token of the current session.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// EvictionObserver is told about every key that leaves the memory tier.
//
// OnEvict runs synchronously while the memory tier is locked, so it must not
// call back into the [Tier].
type EvictionObserver interface {
	OnEvict(key string)
}

// EvictionObserverFunc adapts a function to [EvictionObserver].
type EvictionObserverFunc func(key string)

// OnEvict calls f(key).
func (f EvictionObserverFunc) OnEvict(key string) {
	f(key)
}

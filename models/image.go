// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// ImageBlob is a downloaded verification image held by the image cache.
// Cost is the memory-tier accounting weight, normally len(Bytes).
type ImageBlob struct {
	Key   string
	Bytes []byte
	Cost  int
}

// SignedURL is a short-lived download link for a verification image. It is
// used for a single download attempt and never stored.
type SignedURL struct {
	URL       string     `json:"url"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

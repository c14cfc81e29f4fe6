// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// PersistedEntry is the on-disk form of one cache domain: a serialized
// payload tagged with the format version it was written with.
type PersistedEntry struct {
	Domain        string
	FormatVersion int
	UpdatedAt     time.Time
	Payload       []byte
}

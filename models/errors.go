// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "fmt"

// DecodeError is a field-scoped failure to decode one snapshot key. It
// degrades only that key; the rest of the snapshot is still usable.
type DecodeError struct {
	Field string
	Err   error
}

func (e DecodeError) Error() string {
	return fmt.Sprintf("decode %q: %v", e.Field, e.Err)
}

func (e DecodeError) Unwrap() error {
	return e.Err
}

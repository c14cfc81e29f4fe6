// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/tally-sync/internal/adapter"
)

// mapAdapterError adds the service-level meaning to a transport error. The
// original error stays in the chain, so errors.Is still matches the adapter
// sentinels.
func mapAdapterError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, adapter.ErrUnauthorized), errors.Is(err, adapter.ErrForbidden):
		return fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}

	return err
}

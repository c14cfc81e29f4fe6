// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package handler

import "errors"

// errNoHandlersAreCreated is returned by NewHandlers when no debug address
// is configured. The engine then runs without the debug listener.
var errNoHandlersAreCreated = errors.New("no handlers are created")

// IsDisabled reports whether err means the debug surface is switched off.
func IsDisabled(err error) bool {
	return errors.Is(err, errNoHandlersAreCreated)
}

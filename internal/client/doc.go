// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the sync engine process runtime.
//
// It ties a signed-in session, its background jobs and the optional debug
// server into a single process lifecycle.
package client

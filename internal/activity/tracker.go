// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package activity records when the user last mutated something locally, so
// that reconciliation can tell an in-flight optimistic update from a settled
// one.
package activity

import (
	"sync"
	"time"
)

// Clock returns the current time. Tests inject a fake one.
type Clock func() time.Time

// Tracker remembers the last user-initiated mutation per (domain, key).
// A zero key stands for the whole domain.
type Tracker struct {
	mu      sync.RWMutex
	touched map[activityKey]time.Time
	now     Clock
}

type activityKey struct {
	domain string
	key    string
}

// NewTracker returns an empty tracker using clock, or time.Now when clock is nil.
func NewTracker(clock Clock) *Tracker {
	if clock == nil {
		clock = time.Now
	}
	return &Tracker{
		touched: make(map[activityKey]time.Time),
		now:     clock,
	}
}

// Touch records a mutation of key in domain at the current time. The domain
// itself is touched as well.
func (t *Tracker) Touch(domain, key string) {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.touched[activityKey{domain: domain}] = now
	if key != "" {
		t.touched[activityKey{domain: domain, key: key}] = now
	}
}

// RecentlyActive reports whether key in domain was touched less than window
// ago. An empty key asks about the domain as a whole.
func (t *Tracker) RecentlyActive(domain, key string, window time.Duration) bool {
	if window <= 0 {
		return false
	}

	t.mu.RLock()
	at, ok := t.touched[activityKey{domain: domain, key: key}]
	t.mu.RUnlock()
	if !ok {
		return false
	}

	return t.now().Sub(at) < window
}

// LastTouched returns the time of the last recorded mutation of key.
func (t *Tracker) LastTouched(domain, key string) (time.Time, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	at, ok := t.touched[activityKey{domain: domain, key: key}]
	return at, ok
}

// Prune drops every record older than olderThan and returns how many were
// removed.
func (t *Tracker) Prune(olderThan time.Duration) int {
	cutoff := t.now().Add(-olderThan)

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for k, at := range t.touched {
		if at.Before(cutoff) {
			delete(t.touched, k)
			removed++
		}
	}
	return removed
}

// Reset forgets all recorded activity.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.touched)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// WeeklyProgressRecord is the completion counter of a weekly habit for one
// week. WeekStart and WeekEnd are calendar dates in "2006-01-02" form, so
// they compare lexicographically.
//
// IsWeekComplete must always equal CurrentCompletions >= TargetCompletions;
// every writer calls [WeeklyProgressRecord.Normalize] before storing a record.
type WeeklyProgressRecord struct {
	HabitID            string     `json:"habit_id"`
	CurrentCompletions int        `json:"current_completions"`
	TargetCompletions  int        `json:"target_completions"`
	IsWeekComplete     bool       `json:"is_week_complete"`
	WeekStart          string     `json:"week_start_date"`
	WeekEnd            string     `json:"week_end_date"`
	ServerTimestamp    *time.Time `json:"server_timestamp,omitempty"`

	// LocalUpdatedAt is set when the record was last changed by an optimistic
	// local update. It is never sent by the server.
	LocalUpdatedAt *time.Time `json:"local_updated_at,omitempty"`
}

// Normalize recomputes IsWeekComplete from the counters and returns the
// record.
func (w WeeklyProgressRecord) Normalize() WeeklyProgressRecord {
	w.IsWeekComplete = w.CurrentCompletions >= w.TargetCompletions
	return w
}

// Covers reports whether day ("2006-01-02") lies within the record's week.
func (w WeeklyProgressRecord) Covers(day string) bool {
	return w.WeekStart != "" && w.WeekEnd != "" && day >= w.WeekStart && day <= w.WeekEnd
}

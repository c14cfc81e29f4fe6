// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// DayLayout is the calendar-day format used for day buckets and week bounds.
const DayLayout = "2006-01-02"

// VerificationRecord is a single habit verification (photo, health data,
// location, ...). Records are append-only; only the streak metadata may be
// backfilled later by the server.
type VerificationRecord struct {
	ID               string    `json:"id"`
	HabitID          string    `json:"habit_id"`
	UserID           string    `json:"user_id"`
	VerificationType string    `json:"verification_type"`
	VerifiedAt       time.Time `json:"verified_at"`
	Status           string    `json:"status"`
	Result           *bool     `json:"verification_result,omitempty"`
	ImageRef         *string   `json:"image_ref,omitempty"`
	SelfieRef        *string   `json:"selfie_ref,omitempty"`
	StreakCount      *int      `json:"streak,omitempty"`
}

// Day returns the record's calendar day in loc.
func (v VerificationRecord) Day(loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return v.VerifiedAt.In(loc).Format(DayLayout)
}

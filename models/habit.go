// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Frequency values carried by [Habit.Frequency].
const (
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"
)

// Habit is a single habit owned by the current user as delivered in the
// delta snapshot. Every field is optional on the wire; missing values decode
// to their zero value.
type Habit struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	Name              string     `json:"name"`
	HabitType         string     `json:"habit_type"`
	Frequency         string     `json:"frequency,omitempty"`
	WeeklyTarget      *int       `json:"weekly_target,omitempty"`
	Weekdays          []int      `json:"weekdays,omitempty"`
	PenaltyAmount     float64    `json:"penalty_amount"`
	RecipientID       *string    `json:"recipient_id,omitempty"`
	CustomHabitTypeID *string    `json:"custom_habit_type_id,omitempty"`
	Timezone          string     `json:"timezone,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
}

// IsWeekly reports whether the habit is tracked against a weekly target.
func (h Habit) IsWeekly() bool {
	return h.Frequency == FrequencyWeekly
}

// CustomHabitType is a user-defined habit category.
type CustomHabitType struct {
	ID             string    `json:"id"`
	TypeIdentifier string    `json:"type_identifier"`
	Description    string    `json:"description"`
	CreatedAt      time.Time `json:"created_at"`
}

// AvailableHabitType is one entry of the server-side habit type catalog.
type AvailableHabitType struct {
	Type        string `json:"type"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	IsCustom    bool   `json:"is_custom"`
}

// StagedDeletionRecord describes a habit whose deletion takes effect on a
// future date rather than immediately.
type StagedDeletionRecord struct {
	HabitID       string  `json:"habit_id"`
	EffectiveDate string  `json:"effective_date"`
	Timezone      string  `json:"user_timezone,omitempty"`
	StagingID     *string `json:"staging_id,omitempty"`
}

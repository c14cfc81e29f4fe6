// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// RecipientAnalytics is the dashboard payload for a user who receives
// penalty payouts from friends' missed habits.
type RecipientAnalytics struct {
	RecipientID     string                  `json:"recipient_id"`
	TotalEarned     float64                 `json:"total_earned"`
	PendingPayout   float64                 `json:"pending_payout"`
	HabitsSupported int                     `json:"habits_supported"`
	Summaries       []RecipientHabitSummary `json:"habit_summaries"`
	ComputedAt      time.Time               `json:"computed_at"`
}

// RecipientHabitSummary aggregates earnings from one friend's habit.
type RecipientHabitSummary struct {
	HabitID      string  `json:"habit_id"`
	HabitName    string  `json:"habit_name"`
	OwnerName    string  `json:"owner_name"`
	EarnedAmount float64 `json:"earned_amount"`
	MissedCount  int     `json:"missed_count"`
}

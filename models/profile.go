// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// UserProfile is the current user's profile.
type UserProfile struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	PhoneNumber string  `json:"phone_number"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	Timezone    string  `json:"timezone,omitempty"`
}

// PaymentMethod is the card on file, if any.
type PaymentMethod struct {
	ID       string `json:"id"`
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int    `json:"exp_month"`
	ExpYear  int    `json:"exp_year"`
}

// OnboardingState is the server-side onboarding progress of the user.
type OnboardingState struct {
	Step      int  `json:"step"`
	Completed bool `json:"completed"`
}

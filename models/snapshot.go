// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Top-level keys of the delta snapshot payload.
const (
	KeyHabits                   = "habits"
	KeyFriends                  = "friends"
	KeyFriendsWithPaymentStatus = "friends_with_stripe_connect"
	KeyFeedPosts                = "feed_posts"
	KeyCustomHabitTypes         = "custom_habit_types"
	KeyAvailableHabitTypes      = "available_habit_types"
	KeyWeeklyProgress           = "weekly_progress"
	KeyVerifiedHabitsToday      = "verified_habits_today"
	KeyHabitVerifications       = "habit_verifications"
	KeyVerificationsByDay       = "verifications_by_day"
	KeyFriendRequests           = "friend_requests"
	KeyStagedDeletions          = "staged_deletions"
	KeyContactsOnPlatform       = "contacts_on_tally"
	KeyPaymentMethod            = "payment_method"
	KeyUserProfile              = "user_profile"
	KeyOnboardingState          = "onboarding_state"
)

// SnapshotKeys lists every key understood by the snapshot decoder.
var SnapshotKeys = []string{
	KeyHabits,
	KeyFriends,
	KeyFriendsWithPaymentStatus,
	KeyFeedPosts,
	KeyCustomHabitTypes,
	KeyAvailableHabitTypes,
	KeyWeeklyProgress,
	KeyVerifiedHabitsToday,
	KeyHabitVerifications,
	KeyVerificationsByDay,
	KeyFriendRequests,
	KeyStagedDeletions,
	KeyContactsOnPlatform,
	KeyPaymentMethod,
	KeyUserProfile,
	KeyOnboardingState,
}

// Snapshot is one decoded delta-sync response. It is immutable once built
// and consumed once by the sync coordinator.
//
// Every sub-collection is independently optional: a key that was absent or
// failed to decode leaves its field at the zero value and is not listed in
// Present. Decode failures are kept in DecodeErrors.
type Snapshot struct {
	Habits                   []Habit
	Friends                  []FriendSummary
	FriendsWithPaymentStatus []FriendSummary
	FeedPosts                []FeedPost
	CustomHabitTypes         []CustomHabitType
	AvailableHabitTypes      []AvailableHabitType
	WeeklyProgress           []WeeklyProgressRecord
	VerifiedHabitsToday      map[string]bool
	HabitVerifications       map[string][]VerificationRecord
	VerificationsByDay       map[string][]VerificationRecord
	FriendRequests           FriendRequests
	StagedDeletions          map[string]StagedDeletionRecord
	ContactsOnPlatform       []Contact
	PaymentMethod            *PaymentMethod
	UserProfile              *UserProfile
	OnboardingState          *OnboardingState

	// Present holds the keys that were delivered and decoded successfully.
	Present map[string]bool
	// DecodeErrors holds one entry per key that was delivered but malformed.
	DecodeErrors []DecodeError
	// ReceivedAt is the time the response was received.
	ReceivedAt time.Time
}

// Has reports whether key was delivered and decoded.
func (s Snapshot) Has(key string) bool {
	return s.Present[key]
}

// MarkPresent records key as successfully decoded.
func (s *Snapshot) MarkPresent(key string) {
	if s.Present == nil {
		s.Present = make(map[string]bool, len(SnapshotKeys))
	}
	s.Present[key] = true
}

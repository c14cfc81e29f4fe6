// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/MKhiriev/tally-sync/models"
)

// DecodeSnapshot decodes a delta snapshot body. Each top-level key is
// extracted and decoded on its own: a missing or null key is left absent, a
// malformed key is recorded in DecodeErrors and left absent, and neither
// stops the remaining keys from decoding. Only a body that is not a JSON
// object at all is an error.
func DecodeSnapshot(body []byte, receivedAt time.Time) (models.Snapshot, error) {
	if !gjson.ValidBytes(body) {
		return models.Snapshot{}, fmt.Errorf("%w: snapshot body is not valid json", ErrMalformedResponse)
	}

	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return models.Snapshot{}, fmt.Errorf("%w: snapshot body is not an object", ErrMalformedResponse)
	}

	snap := models.Snapshot{ReceivedAt: receivedAt}

	decodeKey(root, models.KeyHabits, &snap, &snap.Habits)
	decodeKey(root, models.KeyFriends, &snap, &snap.Friends)
	decodeKey(root, models.KeyFriendsWithPaymentStatus, &snap, &snap.FriendsWithPaymentStatus)
	decodeKey(root, models.KeyFeedPosts, &snap, &snap.FeedPosts)
	decodeKey(root, models.KeyCustomHabitTypes, &snap, &snap.CustomHabitTypes)
	decodeKey(root, models.KeyAvailableHabitTypes, &snap, &snap.AvailableHabitTypes)
	decodeKey(root, models.KeyWeeklyProgress, &snap, &snap.WeeklyProgress)
	decodeKey(root, models.KeyVerifiedHabitsToday, &snap, &snap.VerifiedHabitsToday)
	decodeKey(root, models.KeyHabitVerifications, &snap, &snap.HabitVerifications)
	decodeKey(root, models.KeyVerificationsByDay, &snap, &snap.VerificationsByDay)
	decodeKey(root, models.KeyFriendRequests, &snap, &snap.FriendRequests)
	decodeKey(root, models.KeyStagedDeletions, &snap, &snap.StagedDeletions)
	decodeKey(root, models.KeyContactsOnPlatform, &snap, &snap.ContactsOnPlatform)
	decodeKey(root, models.KeyPaymentMethod, &snap, &snap.PaymentMethod)
	decodeKey(root, models.KeyUserProfile, &snap, &snap.UserProfile)
	decodeKey(root, models.KeyOnboardingState, &snap, &snap.OnboardingState)

	for i := range snap.WeeklyProgress {
		snap.WeeklyProgress[i] = snap.WeeklyProgress[i].Normalize()
	}

	return snap, nil
}

func decodeKey[T any](root gjson.Result, key string, snap *models.Snapshot, dst *T) {
	raw := root.Get(key)
	if !raw.Exists() || raw.Type == gjson.Null {
		return
	}

	var v T
	if err := json.Unmarshal([]byte(raw.Raw), &v); err != nil {
		snap.DecodeErrors = append(snap.DecodeErrors, models.DecodeError{Field: key, Err: err})
		return
	}

	*dst = v
	snap.MarkPresent(key)
}

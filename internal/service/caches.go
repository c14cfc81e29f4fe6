// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"

	"github.com/MKhiriev/tally-sync/internal/cache"
	"github.com/MKhiriev/tally-sync/internal/config"
	"github.com/MKhiriev/tally-sync/models"
)

// Payload format versions. Bump one when its Go shape changes incompatibly;
// persisted entries of older versions are then dropped on load.
const (
	formatVersionDefault        = 1
	formatVersionWeeklyProgress = 2
)

// Caches holds one [cache.Cache] per snapshot domain. Domain names are the
// snapshot keys.
type Caches struct {
	Habits                   *cache.Cache[[]models.Habit]
	Friends                  *cache.Cache[[]models.FriendSummary]
	FriendsWithPaymentStatus *cache.Cache[[]models.FriendSummary]
	FeedPosts                *cache.Cache[[]models.FeedPost]
	CustomHabitTypes         *cache.Cache[[]models.CustomHabitType]
	AvailableHabitTypes      *cache.Cache[[]models.AvailableHabitType]
	WeeklyProgress           *cache.Cache[[]models.WeeklyProgressRecord]
	VerifiedHabitsToday      *cache.Cache[map[string]bool]
	HabitVerifications       *cache.Cache[map[string][]models.VerificationRecord]
	VerificationsByDay       *cache.Cache[map[string][]models.VerificationRecord]
	FriendRequests           *cache.Cache[models.FriendRequests]
	StagedDeletions          *cache.Cache[map[string]models.StagedDeletionRecord]
	ContactsOnPlatform       *cache.Cache[[]models.Contact]
	PaymentMethod            *cache.Cache[*models.PaymentMethod]
	UserProfile              *cache.Cache[*models.UserProfile]
	OnboardingState          *cache.Cache[*models.OnboardingState]

	domains []cache.Domain
}

// NewCaches builds every domain cache with the TTLs from cfg. opts are
// applied to each cache (persister, clock, logger, metrics).
func NewCaches(cfg config.Cache, opts ...cache.Option) *Caches {
	c := &Caches{
		Habits:                   cache.New[[]models.Habit](models.KeyHabits, cfg.HabitsTTL, formatVersionDefault, opts...),
		Friends:                  cache.New[[]models.FriendSummary](models.KeyFriends, cfg.FriendsTTL, formatVersionDefault, opts...),
		FriendsWithPaymentStatus: cache.New[[]models.FriendSummary](models.KeyFriendsWithPaymentStatus, cfg.FriendsTTL, formatVersionDefault, opts...),
		FeedPosts:                cache.New[[]models.FeedPost](models.KeyFeedPosts, cfg.FeedTTL, formatVersionDefault, opts...),
		CustomHabitTypes:         cache.New[[]models.CustomHabitType](models.KeyCustomHabitTypes, cfg.CustomTypesTTL, formatVersionDefault, opts...),
		AvailableHabitTypes:      cache.New[[]models.AvailableHabitType](models.KeyAvailableHabitTypes, cfg.CustomTypesTTL, formatVersionDefault, opts...),
		WeeklyProgress:           cache.New[[]models.WeeklyProgressRecord](models.KeyWeeklyProgress, cfg.WeeklyProgressTTL, formatVersionWeeklyProgress, opts...),
		VerifiedHabitsToday:      cache.New[map[string]bool](models.KeyVerifiedHabitsToday, cfg.VerifiedTodayTTL, formatVersionDefault, opts...),
		HabitVerifications:       cache.New[map[string][]models.VerificationRecord](models.KeyHabitVerifications, cfg.VerificationsTTL, formatVersionDefault, opts...),
		VerificationsByDay:       cache.New[map[string][]models.VerificationRecord](models.KeyVerificationsByDay, cfg.VerificationsTTL, formatVersionDefault, opts...),
		FriendRequests:           cache.New[models.FriendRequests](models.KeyFriendRequests, cfg.FriendRequestsTTL, formatVersionDefault, opts...),
		StagedDeletions:          cache.New[map[string]models.StagedDeletionRecord](models.KeyStagedDeletions, cfg.StagedDeletionsTTL, formatVersionDefault, opts...),
		ContactsOnPlatform:       cache.New[[]models.Contact](models.KeyContactsOnPlatform, cfg.ContactsTTL, formatVersionDefault, opts...),
		PaymentMethod:            cache.New[*models.PaymentMethod](models.KeyPaymentMethod, cfg.ProfileTTL, formatVersionDefault, opts...),
		UserProfile:              cache.New[*models.UserProfile](models.KeyUserProfile, cfg.ProfileTTL, formatVersionDefault, opts...),
		OnboardingState:          cache.New[*models.OnboardingState](models.KeyOnboardingState, cfg.ProfileTTL, formatVersionDefault, opts...),
	}

	c.domains = []cache.Domain{
		c.Habits,
		c.Friends,
		c.FriendsWithPaymentStatus,
		c.FeedPosts,
		c.CustomHabitTypes,
		c.AvailableHabitTypes,
		c.WeeklyProgress,
		c.VerifiedHabitsToday,
		c.HabitVerifications,
		c.VerificationsByDay,
		c.FriendRequests,
		c.StagedDeletions,
		c.ContactsOnPlatform,
		c.PaymentMethod,
		c.UserProfile,
		c.OnboardingState,
	}

	return c
}

// All returns every domain in snapshot key order.
func (c *Caches) All() []cache.Domain {
	return c.domains
}

// Domain looks a cache up by name.
func (c *Caches) Domain(name string) (cache.Domain, bool) {
	for _, d := range c.domains {
		if d.Name() == name {
			return d, true
		}
	}
	return nil, false
}

// AnyNeedsRefresh reports whether at least one domain is stale.
func (c *Caches) AnyNeedsRefresh() bool {
	for _, d := range c.domains {
		if d.NeedsRefresh() {
			return true
		}
	}
	return false
}

// Load reads every persisted domain. One failing domain does not stop the
// others; the errors are joined.
func (c *Caches) Load(ctx context.Context) error {
	var errs []error
	for _, d := range c.domains {
		if err := d.Load(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// InvalidateAll drops every domain from memory and from the persister.
func (c *Caches) InvalidateAll(ctx context.Context) {
	for _, d := range c.domains {
		d.Invalidate(ctx)
	}
}

// Statuses describes every domain.
func (c *Caches) Statuses() []cache.Status {
	out := make([]cache.Status, 0, len(c.domains))
	for _, d := range c.domains {
		out = append(out, d.Status())
	}
	return out
}

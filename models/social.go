// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// FriendSummary is a friend of the current user.
type FriendSummary struct {
	ID               string     `json:"id"`
	FriendID         string     `json:"friend_id"`
	Name             string     `json:"name"`
	PhoneNumber      string     `json:"phone_number,omitempty"`
	AvatarURL        *string    `json:"avatar_url,omitempty"`
	LastActive       *time.Time `json:"last_active,omitempty"`
	HasPaymentMethod *bool      `json:"has_stripe_connect,omitempty"`
}

// FeedPost is an entry of the social feed. ImageRef and SelfieRef are
// verification ids resolvable through the image cache.
type FeedPost struct {
	PostID       string    `json:"post_id"`
	HabitID      *string   `json:"habit_id,omitempty"`
	UserID       string    `json:"user_id"`
	UserName     string    `json:"user_name"`
	Caption      *string   `json:"caption,omitempty"`
	ImageRef     *string   `json:"image_ref,omitempty"`
	SelfieRef    *string   `json:"selfie_ref,omitempty"`
	Streak       *int      `json:"streak,omitempty"`
	CommentCount int       `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// FriendRequest is a pending friend request in either direction.
type FriendRequest struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	SenderName string    `json:"sender_name,omitempty"`
	Status     string    `json:"status"`
	Message    *string   `json:"message,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// FriendRequests groups received and sent requests.
type FriendRequests struct {
	Received []FriendRequest `json:"received_requests"`
	Sent     []FriendRequest `json:"sent_requests"`
}

// Contact is an address-book contact that already has an account.
type Contact struct {
	UserID      string  `json:"user_id"`
	Name        string  `json:"name"`
	PhoneNumber string  `json:"phone_number"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

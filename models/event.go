package models

import (
	"strconv"
	"time"
)

// EventKind distinguishes follow events from subscription events.
type EventKind string

const (
	EventKindFollowed   EventKind = "followed"
	EventKindSubscribed EventKind = "subscribed"
)

// Label returns the upper-case action text shown under a card's display name.
func (k EventKind) Label() string {
	switch k {
	case EventKindSubscribed:
		return "SUBSCRIBED"
	default:
		return "FOLLOWED"
	}
}

// Valid reports whether k is one of the known kinds.
func (k EventKind) Valid() bool {
	return k == EventKindFollowed || k == EventKindSubscribed
}

// EventItem is a single follow or subscription handed to the outro engine.
// Months is only meaningful for subscriptions (consecutive months subscribed).
type EventItem struct {
	DisplayName string    `json:"display_name"`
	Kind        EventKind `json:"kind"`
	Months      int       `json:"months,omitempty"`
}

// Decoration returns the repeat-count badge ("x3") for subscriptions longer
// than one month, and an empty string otherwise.
func (e EventItem) Decoration() string {
	if e.Kind != EventKindSubscribed || e.Months <= 1 {
		return ""
	}
	return "x" + strconv.Itoa(e.Months)
}

// Follower is the /followers wire record.
type Follower struct {
	ID          string    `json:"id,omitempty"`
	UserID      string    `json:"user_id,omitempty"`
	DisplayName string    `json:"display_name"`
	FollowedAt  time.Time `json:"followed_at"`
}

// Subscriber is the /subscribers wire record.
type Subscriber struct {
	ID           string    `json:"id,omitempty"`
	UserID       string    `json:"user_id,omitempty"`
	DisplayName  string    `json:"display_name"`
	Months       int       `json:"months"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

// Cheer is the /bits wire record.
type Cheer struct {
	ID          string    `json:"id,omitempty"`
	UserID      string    `json:"user_id,omitempty"`
	DisplayName string    `json:"display_name"`
	Bits        int       `json:"bits"`
	Message     string    `json:"message,omitempty"`
	CheeredAt   time.Time `json:"cheered_at"`
}

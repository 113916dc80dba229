// Package feeds manages feed subscriptions: the feeds table, its store, and
// the HTTP handlers for feed CRUD.
package feeds

import (
	"errors"
	"time"
)

// Status is the subscription state of a feed.
type Status string

const (
	StatusSubscribed   Status = "subscribed"
	StatusUnsubscribed Status = "unsubscribed"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	return s == StatusSubscribed || s == StatusUnsubscribed
}

// Feed represents a feed subscription.
type Feed struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Link          string    `json:"link"`
	Status        Status    `json:"status"`
	CheckedAt     time.Time `json:"checked_at"`
	FetchOldItems bool      `json:"fetch_old_items"`
}

// FeedToCreate is the payload for registering a new feed.
type FeedToCreate struct {
	Title         string `json:"title"`
	Link          string `json:"link"`
	FetchOldItems *bool  `json:"fetch_old_items,omitempty"`
}

// FeedToUpdate is a partial update; nil fields are left untouched.
type FeedToUpdate struct {
	Title         *string `json:"title,omitempty"`
	Link          *string `json:"link,omitempty"`
	Status        *Status `json:"status,omitempty"`
	FetchOldItems *bool   `json:"fetch_old_items,omitempty"`
}

var (
	// ErrNotFound means no feed row has the requested id.
	ErrNotFound = errors.New("feed not found")

	// ErrDuplicateFeed means another feed already has the same title and link.
	ErrDuplicateFeed = errors.New("duplicate feed")
)

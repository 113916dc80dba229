// Package items manages ingested feed entries: the items table, its store,
// and the HTTP handlers for reading and flagging items.
package items

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// Status is the read state of an item.
type Status string

const (
	StatusUnread Status = "unread"
	StatusRead   Status = "read"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	return s == StatusUnread || s == StatusRead
}

// Item is a single ingested feed entry.
type Item struct {
	ID          int64     `json:"id"`
	Fingerprint string    `json:"fingerprint"`
	Author      string    `json:"author,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Link        string    `json:"link"`
	Status      Status    `json:"status"`
	IsSaved     bool      `json:"is_saved"`
	PublishedAt time.Time `json:"published_at"`
	Feed        int64     `json:"feed"`
}

// ItemToCreate is the payload for inserting a new item. The fingerprint is
// derived from title and link, so re-ingesting the same entry is a no-op.
type ItemToCreate struct {
	Author      string    `json:"author,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"published_at"`
	Feed        int64     `json:"feed"`
}

// Fingerprint returns the dedup key for the item.
func (c *ItemToCreate) Fingerprint() string {
	return Fingerprint(c.Title, c.Link)
}

// Fingerprint computes the dedup key for an entry: a SHA-256 digest over the
// title and link, hex encoded.
func Fingerprint(title, link string) string {
	sum := sha256.Sum256([]byte(title + link))
	return hex.EncodeToString(sum[:])
}

// Filter narrows List and Count. Nil fields match everything.
type Filter struct {
	Status  *Status `json:"status,omitempty"`
	IsSaved *bool   `json:"is_saved,omitempty"`
	Feed    *int64  `json:"feed,omitempty"`
	Limit   *int64  `json:"limit,omitempty"`
	Offset  *int64  `json:"offset,omitempty"`
}

// ItemToUpdate is a partial update of a single item; nil fields are left
// untouched.
type ItemToUpdate struct {
	Status  *Status `json:"status,omitempty"`
	IsSaved *bool   `json:"is_saved,omitempty"`
}

// ItemToUpdateAll is a bulk status update across every item.
type ItemToUpdateAll struct {
	Status Status `json:"status"`
}

// ErrNotFound means no item row has the requested id.
var ErrNotFound = errors.New("item not found")

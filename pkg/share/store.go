package share

import (
	"context"
	stderrors "errors"
	"time"
)

// ErrNotFound is returned by stores when an item does not exist or has
// expired.
var ErrNotFound = stderrors.New("share item not found")

// Item is one stored payload.
type Item struct {
	ID        ItemID    `json:"id" bson:"_id"`
	Data      string    `json:"data" bson:"data"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
}

// IsExpired reports whether the item has outlived its TTL.
func (i Item) IsExpired() bool {
	return !i.ExpiresAt.IsZero() && time.Now().After(i.ExpiresAt)
}

// Store is the interface for share item backends.
type Store interface {
	// Put stores an item, replacing any item with the same id.
	Put(ctx context.Context, item Item) error

	// Get returns an item. Missing or expired items return ErrNotFound.
	Get(ctx context.Context, id ItemID) (Item, error)

	// Close releases backend resources.
	Close() error
}

package domain

import (
	"context"

	"github.com/MrSnakeDoc/coursemark/internal/keys"
)

// Store persists bookmarks.
type Store interface {
	// GetOrCreate looks up a bookmark matching every field of b
	// (owner, course, block, display name and raw path) and returns it.
	// When none matches, b is inserted with a fresh ID and timestamps.
	// The bool reports whether a row was created.
	GetOrCreate(ctx context.Context, b *Bookmark) (*Bookmark, bool, error)

	// Get returns the bookmark with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Bookmark, error)

	// ListByOwner returns the owner's bookmarks, newest first.
	// A zero course key lists every course.
	ListByOwner(ctx context.Context, owner string, course keys.CourseKey) ([]*Bookmark, error)

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

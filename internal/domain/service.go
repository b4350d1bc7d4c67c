package domain

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/coursemark/internal/keys"
)

// CreateInput holds the caller-supplied fields of a new bookmark.
type CreateInput struct {
	Owner     string
	CourseKey keys.CourseKey
	BlockKey  keys.UsageKey
}

// BookmarkService creates bookmarks, snapshotting the block display name
// and breadcrumb from the content tree.
type BookmarkService struct {
	store Store
	tree  ContentTree
	opts  PathOptions
}

// NewBookmarkService wires a service over a store and a content tree.
func NewBookmarkService(store Store, tree ContentTree, opts PathOptions) *BookmarkService {
	return &BookmarkService{store: store, tree: tree, opts: opts}
}

// Create bookmarks in.BlockKey for in.Owner.
//
// block may be supplied by callers that already fetched it; when nil it is
// resolved from the content tree. Persistence is find-or-create over the
// full field set including the computed display name and path, so a block
// renamed since an earlier bookmark yields a second row.
func (s *BookmarkService) Create(ctx context.Context, in CreateInput, block *Block) (*Bookmark, bool, error) {
	if block == nil {
		var err error
		block, err = s.tree.GetItem(ctx, in.BlockKey)
		if err != nil {
			return nil, false, fmt.Errorf("failed to get block %s: %w", in.BlockKey, err)
		}
	}

	path, err := AncestorPath(ctx, s.tree, block, s.opts)
	if err != nil {
		return nil, false, err
	}

	bookmark := &Bookmark{
		Owner:       in.Owner,
		CourseKey:   in.CourseKey,
		BlockKey:    in.BlockKey,
		DisplayName: block.DisplayName,
	}
	if err := bookmark.SetPath(path); err != nil {
		return nil, false, err
	}

	saved, created, err := s.store.GetOrCreate(ctx, bookmark)
	if err != nil {
		return nil, false, fmt.Errorf("failed to save bookmark: %w", err)
	}
	return saved, created, nil
}

// Get returns one bookmark by ID.
func (s *BookmarkService) Get(ctx context.Context, id string) (*Bookmark, error) {
	return s.store.Get(ctx, id)
}

// List returns the owner's bookmarks, optionally restricted to one course.
func (s *BookmarkService) List(ctx context.Context, owner string, course keys.CourseKey) ([]*Bookmark, error) {
	return s.store.ListByOwner(ctx, owner, course)
}

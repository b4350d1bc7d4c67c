package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/coursemark/internal/keys"
)

var demoCourse = keys.CourseKey{Org: "edX", Course: "DemoX", Run: "2024"}

// fakeTree is a parent-pointer tree keyed by usage key string.
type fakeTree struct {
	blocks   map[string]*Block
	parents  map[string]string
	getCalls int
}

func newFakeTree() *fakeTree {
	return &fakeTree{
		blocks:  make(map[string]*Block),
		parents: make(map[string]string),
	}
}

// add inserts a block under parent (nil for a root) and returns it.
func (f *fakeTree) add(parent *Block, blockType, id, name string) *Block {
	b := &Block{Location: demoCourse.MakeUsageKey(blockType, id), DisplayName: name}
	f.blocks[b.Location.String()] = b
	if parent != nil {
		f.parents[b.Location.String()] = parent.Location.String()
	}
	return b
}

func (f *fakeTree) GetItem(_ context.Context, key keys.UsageKey) (*Block, error) {
	f.getCalls++
	b, ok := f.blocks[key.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBlockNotFound, key)
	}
	return b, nil
}

func (f *fakeTree) GetParent(_ context.Context, block *Block) (*Block, error) {
	parentKey, ok := f.parents[block.Location.String()]
	if !ok {
		return nil, nil
	}
	return f.blocks[parentKey], nil
}

// fakeStore matches on the full field set, like the real backends.
type fakeStore struct {
	rows []*Bookmark
	next int
}

func (s *fakeStore) GetOrCreate(_ context.Context, b *Bookmark) (*Bookmark, bool, error) {
	for _, row := range s.rows {
		if row.Owner == b.Owner && row.CourseKey == b.CourseKey && row.BlockKey == b.BlockKey &&
			row.DisplayName == b.DisplayName && row.RawPath == b.RawPath {
			return row, false, nil
		}
	}
	s.next++
	row := *b
	row.ID = fmt.Sprintf("bm-%d", s.next)
	row.CreatedAt = time.Now()
	row.ModifiedAt = row.CreatedAt
	s.rows = append(s.rows, &row)
	return &row, true, nil
}

func (s *fakeStore) Get(_ context.Context, id string) (*Bookmark, error) {
	for _, row := range s.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeStore) ListByOwner(_ context.Context, owner string, course keys.CourseKey) ([]*Bookmark, error) {
	var out []*Bookmark
	for _, row := range s.rows {
		if row.Owner == owner && (course.IsZero() || row.CourseKey == course) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *fakeStore) Ping(context.Context) error  { return nil }
func (s *fakeStore) Close(context.Context) error { return nil }

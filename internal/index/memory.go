package index

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/MrSnakeDoc/coursemark/internal/domain"
	"github.com/MrSnakeDoc/coursemark/internal/keys"
)

// courseTree holds the blocks of a single course.
type courseTree struct {
	course  keys.CourseKey
	blocks  map[string]*domain.Block // usage key -> block
	parents map[string]string        // usage key -> parent usage key
}

// MemoryTree is an in-memory content tree, one courseTree per course.
// It implements domain.ContentTree.
type MemoryTree struct {
	mu         sync.RWMutex
	courses    map[string]*courseTree // course key -> tree
	lastReload time.Time              // Timestamp of last course replacement
}

// NewMemoryTree creates an empty tree
func NewMemoryTree() *MemoryTree {
	return &MemoryTree{
		courses: make(map[string]*courseTree),
	}
}

// ReplaceCourse swaps every block of a course in one step.
// parents maps a block usage key to its parent usage key; roots have no entry.
func (t *MemoryTree) ReplaceCourse(course keys.CourseKey, blocks []*domain.Block, parents map[string]string) {
	ct := &courseTree{
		course:  course,
		blocks:  make(map[string]*domain.Block, len(blocks)),
		parents: make(map[string]string, len(parents)),
	}
	for _, b := range blocks {
		ct.blocks[b.Location.String()] = b
	}
	for child, parent := range parents {
		ct.parents[child] = parent
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.courses[course.String()] = ct
	t.lastReload = time.Now()
}

// RemoveCourse drops a course from the tree
func (t *MemoryTree) RemoveCourse(course keys.CourseKey) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.courses, course.String())
}

// GetItem returns the block addressed by key.
func (t *MemoryTree) GetItem(_ context.Context, key keys.UsageKey) (*domain.Block, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ct, ok := t.courses[key.CourseKey().String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s (unknown course)", domain.ErrBlockNotFound, key)
	}
	b, ok := ct.blocks[key.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrBlockNotFound, key)
	}
	return b, nil
}

// GetParent returns the parent block, or nil for a root.
func (t *MemoryTree) GetParent(_ context.Context, block *domain.Block) (*domain.Block, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ct, ok := t.courses[block.Location.CourseKey().String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s (unknown course)", domain.ErrBlockNotFound, block.Location)
	}
	parentKey, ok := ct.parents[block.Location.String()]
	if !ok {
		return nil, nil
	}
	parent, ok := ct.blocks[parentKey]
	if !ok {
		return nil, fmt.Errorf("%w: parent %s of %s", domain.ErrBlockNotFound, parentKey, block.Location)
	}
	return parent, nil
}

// Courses returns the keys of all loaded courses, sorted
func (t *MemoryTree) Courses() []keys.CourseKey {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]keys.CourseKey, 0, len(t.courses))
	for _, ct := range t.courses {
		out = append(out, ct.course)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// CourseCount returns the number of loaded courses
func (t *MemoryTree) CourseCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.courses)
}

// BlockCount returns the number of blocks across all courses
func (t *MemoryTree) BlockCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := 0
	for _, ct := range t.courses {
		n += len(ct.blocks)
	}
	return n
}

// GetLastReload returns the timestamp of the last course replacement
func (t *MemoryTree) GetLastReload() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.lastReload
}

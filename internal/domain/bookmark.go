package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/coursemark/internal/keys"
)

// PathItem describes one ancestor block in a bookmark breadcrumb.
type PathItem struct {
	UsageID     string `json:"usage_id"`
	DisplayName string `json:"display_name"`
}

// Bookmark is one user's bookmark of one block in one course.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is generated by the store on creation.
	ID string

	// Owner is the opaque identity of the user who bookmarked the block.
	Owner string

	// CourseKey identifies the course the block lives in.
	CourseKey keys.CourseKey

	// BlockKey identifies the bookmarked block.
	BlockKey keys.UsageKey

	// ─────────────────────────────
	// Snapshot taken at creation
	// (never refreshed afterwards)
	// ─────────────────────────────

	// DisplayName is the block label at the time of bookmarking.
	DisplayName string

	// RawPath is the serialized breadcrumb, a JSON array of PathItem.
	// Use Path and SetPath instead of touching it directly.
	RawPath string

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	CreatedAt  time.Time
	ModifiedAt time.Time
}

// Path decodes the stored breadcrumb.
// An empty RawPath is initialized to an empty list first, so a fresh
// bookmark always yields a non-nil empty slice.
func (b *Bookmark) Path() ([]PathItem, error) {
	if b.RawPath == "" {
		b.RawPath = "[]"
	}

	var items []PathItem
	if err := json.Unmarshal([]byte(b.RawPath), &items); err != nil {
		return nil, fmt.Errorf("failed to decode bookmark path: %w", err)
	}
	if items == nil {
		items = []PathItem{}
	}
	return items, nil
}

// SetPath serializes items into RawPath. The shape is not validated.
func (b *Bookmark) SetPath(items []PathItem) error {
	raw, err := EncodePath(items)
	if err != nil {
		return err
	}
	b.RawPath = raw
	return nil
}

// EncodePath returns the stored form of a breadcrumb. nil encodes as "[]".
func EncodePath(items []PathItem) (string, error) {
	if items == nil {
		items = []PathItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode bookmark path: %w", err)
	}
	return string(data), nil
}

// Fingerprint digests the full find-or-create field set: owner, course,
// block, display name and raw path. An empty RawPath hashes like "[]".
// Fields are NUL separated so ("ab","c") and ("a","bc") differ.
func (b *Bookmark) Fingerprint() string {
	path := b.RawPath
	if path == "" {
		path = "[]"
	}
	h := sha256.New()
	for _, f := range []string{b.Owner, b.CourseKey.String(), b.BlockKey.String(), b.DisplayName, path} {
		h.Write([]byte(f))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

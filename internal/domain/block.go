package domain

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/coursemark/internal/keys"
)

var (
	// ErrBlockNotFound is returned by a ContentTree for unknown usage keys.
	ErrBlockNotFound = errors.New("block not found")
	// ErrNotFound is returned by a Store when no bookmark matches.
	ErrNotFound = errors.New("bookmark not found")
)

// Block is a unit of course content as seen by the bookmark feature.
type Block struct {
	Location    keys.UsageKey
	DisplayName string
}

// ContentTree is the read side of the course structure.
type ContentTree interface {
	// GetItem returns the block addressed by key, or ErrBlockNotFound.
	GetItem(ctx context.Context, key keys.UsageKey) (*Block, error)

	// GetParent returns the parent of block, or nil when block is a root.
	GetParent(ctx context.Context, block *Block) (*Block, error)
}

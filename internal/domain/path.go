package domain

import (
	"context"
	"fmt"
)

// PathAnchor selects which end of the ancestor walk survives truncation.
type PathAnchor string

const (
	// AnchorBlock keeps the ancestors visited first, i.e. the ones closest
	// to the bookmarked block.
	AnchorBlock PathAnchor = "block"
	// AnchorRoot keeps the ancestors closest to the course root.
	AnchorRoot PathAnchor = "root"

	// DefaultPathDepth is the number of breadcrumb entries kept.
	DefaultPathDepth = 2
)

// PathOptions tunes AncestorPath.
type PathOptions struct {
	Depth  int
	Anchor PathAnchor
}

// DefaultPathOptions returns the breadcrumb settings used when nothing is configured.
func DefaultPathOptions() PathOptions {
	return PathOptions{Depth: DefaultPathDepth, Anchor: AnchorBlock}
}

// ParsePathAnchor maps a config value to a PathAnchor.
func ParsePathAnchor(s string) (PathAnchor, error) {
	switch PathAnchor(s) {
	case AnchorBlock, AnchorRoot:
		return PathAnchor(s), nil
	case "":
		return AnchorBlock, nil
	default:
		return "", fmt.Errorf("unknown path anchor %q (want %q or %q)", s, AnchorBlock, AnchorRoot)
	}
}

// AncestorPath walks up from block's parent until the course root (or a
// parent-less block) and returns the breadcrumb ordered from the outermost
// ancestor to the innermost. The course root is never included.
func AncestorPath(ctx context.Context, tree ContentTree, block *Block, opts PathOptions) ([]PathItem, error) {
	if opts.Depth <= 0 {
		opts.Depth = DefaultPathDepth
	}

	// Collected innermost first.
	var ancestors []PathItem

	parent, err := tree.GetParent(ctx, block)
	if err != nil {
		return nil, fmt.Errorf("failed to get parent of %s: %w", block.Location, err)
	}
	for parent != nil && !parent.Location.IsCourseRoot() {
		ancestors = append(ancestors, PathItem{
			UsageID:     parent.Location.String(),
			DisplayName: parent.DisplayName,
		})

		next, err := tree.GetParent(ctx, parent)
		if err != nil {
			return nil, fmt.Errorf("failed to get parent of %s: %w", parent.Location, err)
		}
		parent = next
	}

	if len(ancestors) > opts.Depth {
		if opts.Anchor == AnchorRoot {
			ancestors = ancestors[len(ancestors)-opts.Depth:]
		} else {
			ancestors = ancestors[:opts.Depth]
		}
	}

	path := make([]PathItem, 0, len(ancestors))
	for i := len(ancestors) - 1; i >= 0; i-- {
		path = append(path, ancestors[i])
	}
	return path, nil
}

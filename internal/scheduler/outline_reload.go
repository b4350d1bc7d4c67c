package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/coursemark/internal/index"
	"github.com/MrSnakeDoc/coursemark/internal/logger"
	"github.com/MrSnakeDoc/coursemark/internal/sources/outline"
)

// OutlineReloader handles periodic reloading of course outlines into the
// content tree.
type OutlineReloader struct {
	loader        *outline.Loader
	mapper        *outline.Mapper
	tree          *index.MemoryTree
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewOutlineReloader creates a new outline reloader
func NewOutlineReloader(
	outlineDir string,
	tree *index.MemoryTree,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *OutlineReloader {
	return &OutlineReloader{
		loader:        outline.NewLoader(outlineDir),
		mapper:        outline.NewMapper(),
		tree:          tree,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the outlines once, failing fast, then reloads them on every
// tick and manual trigger until Stop or ctx is done.
func (rl *OutlineReloader) Start(ctx context.Context) error {
	// Load immediately on start
	if err := rl.Reload(ctx); err != nil {
		return fmt.Errorf("initial reload failed: %w", err)
	}

	// Start periodic reload
	ticker := time.NewTicker(rl.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := rl.Reload(ctx); err != nil {
					rl.logger.Error("failed to reload outlines, keeping previous tree",
						logger.Error(err))
				}
			case <-rl.manualTrigger:
				rl.logger.Info("manual reload triggered")
				if err := rl.Reload(ctx); err != nil {
					rl.logger.Error("failed to reload outlines, keeping previous tree",
						logger.Error(err))
				}
			case <-rl.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (rl *OutlineReloader) Stop() {
	close(rl.stopCh)
}

// Reload parses every outline and swaps them into the tree. Nothing is
// applied unless all outlines map cleanly. Courses whose outline file
// disappeared are removed.
func (rl *OutlineReloader) Reload(ctx context.Context) error {
	rl.logger.Info("reloading course outlines")

	outlines, err := rl.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load outlines: %w", err)
	}

	mapped := make([]*outline.Mapped, 0, len(outlines))
	seen := make(map[string]bool, len(outlines))
	for _, o := range outlines {
		if err := ctx.Err(); err != nil {
			return err
		}
		m, err := rl.mapper.MapOutline(o)
		if err != nil {
			return fmt.Errorf("failed to map outline %s: %w", o.Course, err)
		}
		key := m.Course.String()
		if seen[key] {
			return fmt.Errorf("course %s is defined by more than one outline", key)
		}
		seen[key] = true
		mapped = append(mapped, m)
	}

	for _, m := range mapped {
		rl.tree.ReplaceCourse(m.Course, m.Blocks, m.Parents)
	}

	var removed []string
	for _, course := range rl.tree.Courses() {
		if !seen[course.String()] {
			rl.tree.RemoveCourse(course)
			removed = append(removed, course.String())
		}
	}
	if len(removed) > 0 {
		rl.logger.Info("removed courses without outline",
			logger.Strings("courses", removed))
	}

	rl.logger.Info("loaded course outlines",
		logger.Int("courses", len(mapped)),
		logger.Int("blocks", rl.tree.BlockCount()))

	return nil
}

package outline

import (
	"fmt"

	"github.com/MrSnakeDoc/coursemark/internal/domain"
	"github.com/MrSnakeDoc/coursemark/internal/keys"
)

// RootBlockID is the block id given to every course root.
const RootBlockID = "course"

// Mapped is a course outline flattened into blocks and parent links.
type Mapped struct {
	Course  keys.CourseKey
	Blocks  []*domain.Block
	Parents map[string]string // child usage key -> parent usage key
}

// Mapper converts outlines to domain blocks
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapOutline flattens o. The course root is always the first block.
func (m *Mapper) MapOutline(o *CourseOutline) (*Mapped, error) {
	root := &domain.Block{
		Location:    o.Course.MakeUsageKey(keys.CourseBlockType, RootBlockID),
		DisplayName: o.DisplayName,
	}

	out := &Mapped{
		Course:  o.Course,
		Blocks:  []*domain.Block{root},
		Parents: make(map[string]string),
	}
	seen := map[string]bool{root.Location.String(): true}

	if err := m.walk(o.Course, root, o.Children, out, seen); err != nil {
		return nil, fmt.Errorf("outline %s: %w", o.Course, err)
	}
	return out, nil
}

func (m *Mapper) walk(course keys.CourseKey, parent *domain.Block, nodes []Node, out *Mapped, seen map[string]bool) error {
	for _, n := range nodes {
		if n.Type == "" || n.ID == "" {
			return fmt.Errorf("block under %s is missing type or id", parent.Location)
		}
		if n.Type == keys.CourseBlockType {
			return fmt.Errorf("nested course block %q under %s", n.ID, parent.Location)
		}

		key := course.MakeUsageKey(n.Type, n.ID)
		// Round-trip so invalid characters surface here rather than at lookup time.
		if _, err := keys.ParseUsageKey(key.String()); err != nil {
			return err
		}
		if seen[key.String()] {
			return fmt.Errorf("duplicate block %s", key)
		}
		seen[key.String()] = true

		b := &domain.Block{Location: key, DisplayName: n.DisplayName}
		out.Blocks = append(out.Blocks, b)
		out.Parents[key.String()] = parent.Location.String()

		if err := m.walk(course, b, n.Children, out, seen); err != nil {
			return err
		}
	}
	return nil
}

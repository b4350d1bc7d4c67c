package domain

import (
	"context"
	"errors"
	"testing"
)

// buildDeepTree returns course > chapter > sequential > vertical > problem.
func buildDeepTree() (*fakeTree, map[string]*Block) {
	tree := newFakeTree()
	course := tree.add(nil, "course", "course", "Demo Course")
	chapter := tree.add(course, "chapter", "week1", "Week 1")
	sequential := tree.add(chapter, "sequential", "intro", "Introduction")
	vertical := tree.add(sequential, "vertical", "unit1", "Unit 1")
	problem := tree.add(vertical, "problem", "p1", "Problem 1")

	return tree, map[string]*Block{
		"course":     course,
		"chapter":    chapter,
		"sequential": sequential,
		"vertical":   vertical,
		"problem":    problem,
	}
}

func TestAncestorPath(t *testing.T) {
	tree, blocks := buildDeepTree()

	tests := []struct {
		name     string
		block    string
		opts     PathOptions
		expected []string
	}{
		{
			name:     "course root has no ancestors",
			block:    "course",
			opts:     DefaultPathOptions(),
			expected: []string{},
		},
		{
			name:     "chapter directly under root",
			block:    "chapter",
			opts:     DefaultPathOptions(),
			expected: []string{},
		},
		{
			name:     "sequential",
			block:    "sequential",
			opts:     DefaultPathOptions(),
			expected: []string{"Week 1"},
		},
		{
			name:     "vertical keeps chapter and sequential",
			block:    "vertical",
			opts:     DefaultPathOptions(),
			expected: []string{"Week 1", "Introduction"},
		},
		{
			name:     "deep block anchored at block keeps nearest two",
			block:    "problem",
			opts:     PathOptions{Depth: 2, Anchor: AnchorBlock},
			expected: []string{"Introduction", "Unit 1"},
		},
		{
			name:     "deep block anchored at root keeps outermost two",
			block:    "problem",
			opts:     PathOptions{Depth: 2, Anchor: AnchorRoot},
			expected: []string{"Week 1", "Introduction"},
		},
		{
			name:     "deeper limit keeps full chain",
			block:    "problem",
			opts:     PathOptions{Depth: 5},
			expected: []string{"Week 1", "Introduction", "Unit 1"},
		},
		{
			name:     "zero depth falls back to default",
			block:    "vertical",
			opts:     PathOptions{},
			expected: []string{"Week 1", "Introduction"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := AncestorPath(context.Background(), tree, blocks[tt.block], tt.opts)
			if err != nil {
				t.Fatalf("AncestorPath() error = %v", err)
			}
			if path == nil {
				t.Fatal("AncestorPath() returned nil slice")
			}
			if len(path) != len(tt.expected) {
				t.Fatalf("AncestorPath() length = %d, want %d (%+v)", len(path), len(tt.expected), path)
			}
			for i, name := range tt.expected {
				if path[i].DisplayName != name {
					t.Errorf("AncestorPath()[%d] = %q, want %q", i, path[i].DisplayName, name)
				}
			}
		})
	}
}

func TestAncestorPathNeverIncludesRoot(t *testing.T) {
	tree, blocks := buildDeepTree()
	root := blocks["course"].Location.String()

	for _, opts := range []PathOptions{
		{Depth: 10, Anchor: AnchorBlock},
		{Depth: 10, Anchor: AnchorRoot},
	} {
		path, err := AncestorPath(context.Background(), tree, blocks["problem"], opts)
		if err != nil {
			t.Fatalf("AncestorPath() error = %v", err)
		}
		for _, item := range path {
			if item.UsageID == root {
				t.Errorf("AncestorPath(%+v) includes course root", opts)
			}
		}
	}
}

func TestAncestorPathOrphan(t *testing.T) {
	tree := newFakeTree()
	chapter := tree.add(nil, "chapter", "loose", "Loose chapter")
	seq := tree.add(chapter, "sequential", "s", "Seq")

	path, err := AncestorPath(context.Background(), tree, seq, DefaultPathOptions())
	if err != nil {
		t.Fatalf("AncestorPath() error = %v", err)
	}
	if len(path) != 1 || path[0].UsageID != chapter.Location.String() {
		t.Errorf("AncestorPath() = %+v, want only the parent-less chapter", path)
	}
}

type failingTree struct{ *fakeTree }

var errTreeDown = errors.New("tree unavailable")

func (failingTree) GetParent(context.Context, *Block) (*Block, error) {
	return nil, errTreeDown
}

func TestAncestorPathPropagatesErrors(t *testing.T) {
	tree, blocks := buildDeepTree()
	_, err := AncestorPath(context.Background(), failingTree{tree}, blocks["vertical"], DefaultPathOptions())
	if !errors.Is(err, errTreeDown) {
		t.Errorf("AncestorPath() error = %v, want %v", err, errTreeDown)
	}
}

func TestParsePathAnchor(t *testing.T) {
	tests := []struct {
		input    string
		expected PathAnchor
		wantErr  bool
	}{
		{input: "", expected: AnchorBlock},
		{input: "block", expected: AnchorBlock},
		{input: "root", expected: AnchorRoot},
		{input: "middle", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePathAnchor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePathAnchor() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParsePathAnchor() = %q, want %q", got, tt.expected)
			}
		})
	}
}

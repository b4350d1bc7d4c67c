package outline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Loader reads course outline files from a directory
type Loader struct {
	dir string
}

// NewLoader creates a new outline loader
func NewLoader(dir string) *Loader {
	return &Loader{
		dir: dir,
	}
}

// Load parses every *.yaml and *.yml file of the directory, in name order.
func (l *Loader) Load() ([]*CourseOutline, error) {
	files, err := l.files()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no outline files found in %s", l.dir)
	}

	outlines := make([]*CourseOutline, 0, len(files))
	for _, f := range files {
		o, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		outlines = append(outlines, o)
	}
	return outlines, nil
}

func (l *Loader) files() ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(l.dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to list outline files: %w", err)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// LoadFile reads and parses one outline file
func LoadFile(path string) (*CourseOutline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read outline file: %w", err)
	}

	var o CourseOutline
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("failed to parse outline %s: %w", filepath.Base(path), err)
	}
	if o.Course.IsZero() {
		return nil, fmt.Errorf("outline %s: missing course key", filepath.Base(path))
	}

	return &o, nil
}

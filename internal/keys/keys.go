package keys

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// CoursePrefix is the namespace of serialized course keys.
	CoursePrefix = "course-v1"
	// BlockPrefix is the namespace of serialized usage keys.
	BlockPrefix = "block-v1"

	// CourseBlockType is the block type of a course root.
	CourseBlockType = "course"
)

// ErrInvalidKey is returned when a serialized key cannot be parsed.
var ErrInvalidKey = errors.New("invalid key")

// CourseKey identifies a course run.
// Example: course-v1:edX+DemoX+2024
type CourseKey struct {
	Org    string
	Course string
	Run    string
}

// ParseCourseKey parses the "course-v1:Org+Course+Run" form.
func ParseCourseKey(s string) (CourseKey, error) {
	body, ok := strings.CutPrefix(strings.TrimSpace(s), CoursePrefix+":")
	if !ok {
		return CourseKey{}, fmt.Errorf("%w: course key %q: missing %s prefix", ErrInvalidKey, s, CoursePrefix)
	}

	parts := strings.Split(body, "+")
	if len(parts) != 3 {
		return CourseKey{}, fmt.Errorf("%w: course key %q: want org+course+run", ErrInvalidKey, s)
	}

	key := CourseKey{Org: parts[0], Course: parts[1], Run: parts[2]}
	if err := key.validate(); err != nil {
		return CourseKey{}, fmt.Errorf("%w: course key %q: %v", ErrInvalidKey, s, err)
	}
	return key, nil
}

func (k CourseKey) validate() error {
	for name, v := range map[string]string{"org": k.Org, "course": k.Course, "run": k.Run} {
		if !validPart(v) {
			return fmt.Errorf("bad %s %q", name, v)
		}
	}
	return nil
}

// IsZero reports whether the key is unset.
func (k CourseKey) IsZero() bool {
	return k == CourseKey{}
}

func (k CourseKey) String() string {
	if k.IsZero() {
		return ""
	}
	return CoursePrefix + ":" + k.Org + "+" + k.Course + "+" + k.Run
}

// MakeUsageKey returns the usage key of a block inside this course.
func (k CourseKey) MakeUsageKey(blockType, blockID string) UsageKey {
	return UsageKey{Course: k, BlockType: blockType, BlockID: blockID}
}

func (k CourseKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *CourseKey) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*k = CourseKey{}
		return nil
	}
	parsed, err := ParseCourseKey(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// UsageKey identifies one block inside a course.
// Example: block-v1:edX+DemoX+2024+type@sequential+block@intro
type UsageKey struct {
	Course    CourseKey
	BlockType string
	BlockID   string
}

// ParseUsageKey parses the "block-v1:Org+Course+Run+type@T+block@ID" form.
func ParseUsageKey(s string) (UsageKey, error) {
	body, ok := strings.CutPrefix(strings.TrimSpace(s), BlockPrefix+":")
	if !ok {
		return UsageKey{}, fmt.Errorf("%w: usage key %q: missing %s prefix", ErrInvalidKey, s, BlockPrefix)
	}

	parts := strings.Split(body, "+")
	if len(parts) != 5 {
		return UsageKey{}, fmt.Errorf("%w: usage key %q: want org+course+run+type@..+block@..", ErrInvalidKey, s)
	}

	blockType, ok := strings.CutPrefix(parts[3], "type@")
	if !ok || !validPart(blockType) {
		return UsageKey{}, fmt.Errorf("%w: usage key %q: bad block type", ErrInvalidKey, s)
	}
	blockID, ok := strings.CutPrefix(parts[4], "block@")
	if !ok || !validPart(blockID) {
		return UsageKey{}, fmt.Errorf("%w: usage key %q: bad block id", ErrInvalidKey, s)
	}

	course := CourseKey{Org: parts[0], Course: parts[1], Run: parts[2]}
	if err := course.validate(); err != nil {
		return UsageKey{}, fmt.Errorf("%w: usage key %q: %v", ErrInvalidKey, s, err)
	}

	return UsageKey{Course: course, BlockType: blockType, BlockID: blockID}, nil
}

// IsZero reports whether the key is unset.
func (k UsageKey) IsZero() bool {
	return k == UsageKey{}
}

// IsCourseRoot reports whether the key addresses the course block itself.
func (k UsageKey) IsCourseRoot() bool {
	return k.BlockType == CourseBlockType
}

// CourseKey returns the course the block belongs to.
func (k UsageKey) CourseKey() CourseKey {
	return k.Course
}

func (k UsageKey) String() string {
	if k.IsZero() {
		return ""
	}
	c := k.Course
	return BlockPrefix + ":" + c.Org + "+" + c.Course + "+" + c.Run +
		"+type@" + k.BlockType + "+block@" + k.BlockID
}

func (k UsageKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *UsageKey) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*k = UsageKey{}
		return nil
	}
	parsed, err := ParseUsageKey(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// validPart accepts the characters allowed in a key segment.
func validPart(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == '-', r == '.', r == '~', r == ':':
		default:
			return false
		}
	}
	return true
}

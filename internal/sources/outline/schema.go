package outline

import "github.com/MrSnakeDoc/coursemark/internal/keys"

// CourseOutline is the root structure of a course outline file.
//
//	course: course-v1:edX+DemoX+2024
//	display_name: Demo Course
//	children:
//	  - type: chapter
//	    id: week1
//	    display_name: Week 1
//	    children: [...]
type CourseOutline struct {
	Course      keys.CourseKey `yaml:"course"`
	DisplayName string         `yaml:"display_name"`
	Children    []Node         `yaml:"children,omitempty"`
}

// Node is one block below the course root
type Node struct {
	Type        string `yaml:"type"`
	ID          string `yaml:"id"`
	DisplayName string `yaml:"display_name,omitempty"`
	Children    []Node `yaml:"children,omitempty"`
}

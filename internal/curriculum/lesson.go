package curriculum

import (
	"fmt"
	"slices"
	"strings"
)

// Level is a CEFR proficiency level.
type Level string

const (
	LevelA1 Level = "A1"
	LevelA2 Level = "A2"
	LevelB1 Level = "B1"
	LevelB2 Level = "B2"
	LevelC1 Level = "C1"
)

// AllLevels returns all levels from beginner to advanced.
func AllLevels() []Level {
	return []Level{LevelA1, LevelA2, LevelB1, LevelB2, LevelC1}
}

// Valid reports whether l is a known level.
func (l Level) Valid() bool {
	return slices.Contains(AllLevels(), l)
}

// DisplayName returns a human-readable name for a level.
func (l Level) DisplayName() string {
	switch l {
	case LevelA1:
		return "A1 Beginner"
	case LevelA2:
		return "A2 Elementary"
	case LevelB1:
		return "B1 Intermediate"
	case LevelB2:
		return "B2 Upper Intermediate"
	case LevelC1:
		return "C1 Advanced"
	default:
		return string(l)
	}
}

// ParseLevel converts "a2", "B1", ... into a Level.
func ParseLevel(s string) (Level, error) {
	for _, l := range AllLevels() {
		if string(l) == strings.ToUpper(strings.TrimSpace(s)) {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown level: %q", s)
}

// Lesson is one unit of the catalog.
type Lesson struct {
	ID          string
	Title       string
	Description string
	Level       Level
	Topics      []string
}

// Topic returns the topic a session practices: the first listed topic.
func (l Lesson) Topic() string {
	if len(l.Topics) == 0 {
		return l.Title
	}
	return l.Topics[0]
}

// catalog is the fixed lesson sequence, set in seed.go.
var catalog []Lesson

// All returns the catalog in unlock order.
func All() []Lesson {
	out := make([]Lesson, len(catalog))
	for i, l := range catalog {
		l.Topics = slices.Clone(l.Topics)
		out[i] = l
	}
	return out
}

// First returns the lesson unlocked for every new learner.
func First() Lesson {
	return All()[0]
}

// Get returns a lesson by ID, or error if not found.
func Get(id string) (Lesson, error) {
	i := Index(id)
	if i < 0 {
		return Lesson{}, fmt.Errorf("lesson not found: %q", id)
	}
	return All()[i], nil
}

// Index returns the catalog position of id, or -1.
func Index(id string) int {
	return slices.IndexFunc(catalog, func(l Lesson) bool { return l.ID == id })
}

// Next returns the lesson that follows id. ok is false for the last
// lesson or an unknown id.
func Next(id string) (next Lesson, ok bool) {
	i := Index(id)
	if i < 0 || i+1 >= len(catalog) {
		return Lesson{}, false
	}
	return All()[i+1], true
}

// Validate checks the catalog for structural problems.
func Validate() error {
	return validateCatalog(catalog)
}

func validateCatalog(lessons []Lesson) error {
	if len(lessons) == 0 {
		return fmt.Errorf("catalog is empty")
	}
	seen := make(map[string]bool, len(lessons))
	for _, l := range lessons {
		switch {
		case l.ID == "":
			return fmt.Errorf("lesson %q has no ID", l.Title)
		case seen[l.ID]:
			return fmt.Errorf("duplicate lesson ID: %q", l.ID)
		case !l.Level.Valid():
			return fmt.Errorf("lesson %q has unknown level %q", l.ID, l.Level)
		case len(l.Topics) == 0:
			return fmt.Errorf("lesson %q has no topics", l.ID)
		}
		seen[l.ID] = true
	}
	return nil
}

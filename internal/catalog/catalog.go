// Package catalog provides read-only access to authored content: levels,
// ordered lessons and the items they contain.
package catalog

import (
	"errors"
	"fmt"
	"slices"

	"github.com/fluentpath/fluent-api/internal/domain"
)

// Catalog is the content lookup the progress engine depends on.
type Catalog interface {
	// Item returns the item with id or a *domain.NotFoundError.
	Item(id string) (domain.Item, error)

	// Lesson returns the lesson with id or a *domain.NotFoundError.
	Lesson(id string) (domain.Lesson, error)

	// Lessons returns every lesson ordered by level, then index.
	Lessons() []domain.Lesson

	// ItemsInLevel returns the items of every lesson in level.
	ItemsInLevel(level domain.Level) []domain.Item

	// Levels returns the level definitions from lowest to highest.
	Levels() []domain.LevelDefinition
}

// Catalog construction errors
var (
	ErrDuplicateID      = errors.New("duplicate catalog id")
	ErrDanglingItem     = errors.New("lesson references unknown item")
	ErrLessonOrder      = errors.New("lesson indexes must be contiguous from 0 within a level")
	ErrUnknownLevel     = errors.New("unknown level")
	ErrItemInTwoLessons = errors.New("item is listed by more than one lesson")
)

// Static is an immutable in-memory Catalog.
type Static struct {
	levels  []domain.LevelDefinition
	lessons []domain.Lesson
	items   map[string]domain.Item
	byID    map[string]domain.Lesson
}

var _ Catalog = (*Static)(nil)

// New builds a Static catalog and checks its referential integrity. Item
// LessonID and Level are filled from the lesson that lists the item.
func New(levels []domain.LevelDefinition, lessons []domain.Lesson, items []domain.Item) (*Static, error) {
	c := &Static{
		items: make(map[string]domain.Item, len(items)),
		byID:  make(map[string]domain.Lesson, len(lessons)),
	}

	for _, l := range levels {
		if !l.Level.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLevel, l.Level)
		}
	}
	c.levels = slices.Clone(levels)
	slices.SortFunc(c.levels, func(a, b domain.LevelDefinition) int {
		return a.Level.Rank() - b.Level.Rank()
	})

	for _, it := range items {
		if _, dup := c.items[it.ID]; dup {
			return nil, fmt.Errorf("%w: item %s", ErrDuplicateID, it.ID)
		}
		c.items[it.ID] = it
	}

	c.lessons = slices.Clone(lessons)
	slices.SortFunc(c.lessons, compareLessons)

	next := map[domain.Level]int{}
	for _, l := range c.lessons {
		if !l.Level.Valid() {
			return nil, fmt.Errorf("%w: %q in lesson %s", ErrUnknownLevel, l.Level, l.ID)
		}
		if _, dup := c.byID[l.ID]; dup {
			return nil, fmt.Errorf("%w: lesson %s", ErrDuplicateID, l.ID)
		}
		if l.Index != next[l.Level] {
			return nil, fmt.Errorf("%w: %s has index %d", ErrLessonOrder, l.ID, l.Index)
		}
		next[l.Level]++

		for _, itemID := range l.ItemIDs {
			it, ok := c.items[itemID]
			if !ok {
				return nil, fmt.Errorf("%w: %s in %s", ErrDanglingItem, itemID, l.ID)
			}
			if it.LessonID != "" && it.LessonID != l.ID {
				return nil, fmt.Errorf("%w: %s listed by %s", ErrItemInTwoLessons, itemID, l.ID)
			}
			it.LessonID = l.ID
			it.Level = l.Level
			c.items[itemID] = it
		}
		c.byID[l.ID] = l
	}

	return c, nil
}

func compareLessons(a, b domain.Lesson) int {
	if d := a.Level.Rank() - b.Level.Rank(); d != 0 {
		return d
	}
	return a.Index - b.Index
}

// Item implements Catalog.
func (c *Static) Item(id string) (domain.Item, error) {
	it, ok := c.items[id]
	if !ok {
		return domain.Item{}, domain.NewNotFoundError("item", id)
	}
	return it, nil
}

// Lesson implements Catalog.
func (c *Static) Lesson(id string) (domain.Lesson, error) {
	l, ok := c.byID[id]
	if !ok {
		return domain.Lesson{}, domain.NewNotFoundError("lesson", id)
	}
	return l, nil
}

// Lessons implements Catalog.
func (c *Static) Lessons() []domain.Lesson {
	return slices.Clone(c.lessons)
}

// ItemsInLevel implements Catalog.
func (c *Static) ItemsInLevel(level domain.Level) []domain.Item {
	var out []domain.Item
	for _, l := range c.lessons {
		if l.Level != level {
			continue
		}
		for _, id := range l.ItemIDs {
			out = append(out, c.items[id])
		}
	}
	return out
}

// Levels implements Catalog.
func (c *Static) Levels() []domain.LevelDefinition {
	return slices.Clone(c.levels)
}

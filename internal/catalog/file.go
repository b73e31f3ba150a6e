package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/fluentpath/fluent-api/internal/domain"
)

// fileItem is an item as authored in a catalog file.
type fileItem struct {
	ID          string   `json:"id"          validate:"required"`
	Text        string   `json:"text"        validate:"required"`
	Translation string   `json:"translation" validate:"required"`
	AudioURL    string   `json:"audio_url"   validate:"omitempty,url"`
	Tags        []string `json:"tags"`
}

type fileLesson struct {
	ID    string     `json:"id"    validate:"required"`
	Level string     `json:"level" validate:"required,oneof=beginner intermediate advanced"`
	Index int        `json:"index" validate:"gte=0"`
	Title string     `json:"title" validate:"required"`
	Items []fileItem `json:"items" validate:"required,min=1,dive"`
}

type fileLevel struct {
	Level            string `json:"level"             validate:"required,oneof=beginner intermediate advanced"`
	Title            string `json:"title"`
	RequiredMastered int    `json:"required_mastered" validate:"gte=0"`
}

type file struct {
	Levels  []fileLevel  `json:"levels"  validate:"required,min=1,dive"`
	Lessons []fileLesson `json:"lessons" validate:"required,min=1,dive"`
}

// LoadFile reads and parses a JSON catalog from path.
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a JSON catalog document.
func Parse(data []byte) (*Static, error) {
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	if err := validator.New().Struct(f); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}

	levels := make([]domain.LevelDefinition, 0, len(f.Levels))
	for _, l := range f.Levels {
		levels = append(levels, domain.LevelDefinition{
			Level:            domain.Level(l.Level),
			Title:            l.Title,
			RequiredMastered: l.RequiredMastered,
		})
	}

	var (
		lessons = make([]domain.Lesson, 0, len(f.Lessons))
		items   []domain.Item
	)
	for _, fl := range f.Lessons {
		lesson := domain.Lesson{
			ID:    fl.ID,
			Level: domain.Level(fl.Level),
			Index: fl.Index,
			Title: fl.Title,
		}
		for _, fi := range fl.Items {
			lesson.ItemIDs = append(lesson.ItemIDs, fi.ID)
			items = append(items, domain.Item{
				ID:          fi.ID,
				LessonID:    fl.ID,
				Level:       lesson.Level,
				Text:        fi.Text,
				Translation: fi.Translation,
				AudioURL:    fi.AudioURL,
				Tags:        fi.Tags,
			})
		}
		lessons = append(lessons, lesson)
	}

	return New(levels, lessons, items)
}

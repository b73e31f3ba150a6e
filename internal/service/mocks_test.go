package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fluentpath/fluent-api/internal/catalog"
	"github.com/fluentpath/fluent-api/internal/domain"
	"github.com/fluentpath/fluent-api/internal/domain/activity"
	"github.com/fluentpath/fluent-api/internal/domain/badge"
	"github.com/fluentpath/fluent-api/internal/domain/mastery"
	"github.com/fluentpath/fluent-api/internal/events"
	"github.com/fluentpath/fluent-api/internal/store"
)

// MockProgressStore is a mock implementation of store.ProgressStore.
type MockProgressStore struct {
	mock.Mock
}

func (m *MockProgressStore) Get(ctx context.Context, learnerID uuid.UUID, itemID string) (*domain.ProgressRecord, error) {
	args := m.Called(ctx, learnerID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProgressRecord), args.Error(1)
}

// Apply runs mutate against the record given as the first return value when
// it is a domain.ProgressRecord, mimicking the store's locked read-modify-write.
func (m *MockProgressStore) Apply(
	ctx context.Context,
	learnerID uuid.UUID,
	itemID string,
	mutate store.ProgressMutator,
) (*domain.ProgressRecord, error) {
	args := m.Called(ctx, learnerID, itemID, mutate)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	current := args.Get(0).(domain.ProgressRecord)
	next, err := mutate(current)
	if err != nil {
		return nil, err
	}
	return &next, nil
}

func (m *MockProgressStore) CountMastered(ctx context.Context, learnerID uuid.UUID) (int, error) {
	args := m.Called(ctx, learnerID)
	return args.Int(0), args.Error(1)
}

func (m *MockProgressStore) MasteredItemIDs(ctx context.Context, learnerID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockActivityStore is a mock implementation of store.ActivityStore.
type MockActivityStore struct {
	mock.Mock
}

func (m *MockActivityStore) Increment(
	ctx context.Context,
	learnerID uuid.UUID,
	date time.Time,
	delta activity.Delta,
) (*domain.DailyActivityRecord, error) {
	args := m.Called(ctx, learnerID, date, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyActivityRecord), args.Error(1)
}

func (m *MockActivityStore) Get(ctx context.Context, learnerID uuid.UUID, date time.Time) (*domain.DailyActivityRecord, error) {
	args := m.Called(ctx, learnerID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyActivityRecord), args.Error(1)
}

func (m *MockActivityStore) ListSince(ctx context.Context, learnerID uuid.UUID, from time.Time) ([]domain.DailyActivityRecord, error) {
	args := m.Called(ctx, learnerID, from)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DailyActivityRecord), args.Error(1)
}

// MockLessonStore is a mock implementation of store.LessonStore.
type MockLessonStore struct {
	mock.Mock
}

func (m *MockLessonStore) Initialize(ctx context.Context, records []domain.LessonProgressRecord) (int, error) {
	args := m.Called(ctx, records)
	return args.Int(0), args.Error(1)
}

func (m *MockLessonStore) List(ctx context.Context, learnerID uuid.UUID) ([]domain.LessonProgressRecord, error) {
	args := m.Called(ctx, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LessonProgressRecord), args.Error(1)
}

func (m *MockLessonStore) Get(ctx context.Context, learnerID uuid.UUID, lessonID string) (*domain.LessonProgressRecord, error) {
	args := m.Called(ctx, learnerID, lessonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LessonProgressRecord), args.Error(1)
}

func (m *MockLessonStore) Complete(
	ctx context.Context,
	learnerID uuid.UUID,
	lessonID string,
	now time.Time,
) (*domain.LessonProgressRecord, bool, error) {
	args := m.Called(ctx, learnerID, lessonID, now)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.LessonProgressRecord), args.Bool(1), args.Error(2)
}

func (m *MockLessonStore) Unlock(ctx context.Context, learnerID uuid.UUID, lessonID string, now time.Time) error {
	args := m.Called(ctx, learnerID, lessonID, now)
	return args.Error(0)
}

func (m *MockLessonStore) CountCompletedBetween(ctx context.Context, learnerID uuid.UUID, from, to time.Time) (int, error) {
	args := m.Called(ctx, learnerID, from, to)
	return args.Int(0), args.Error(1)
}

// MockAchievementStore is a mock implementation of store.AchievementStore.
type MockAchievementStore struct {
	mock.Mock
}

func (m *MockAchievementStore) Unlock(ctx context.Context, learnerID uuid.UUID, badgeID string, reward int, now time.Time) (bool, error) {
	args := m.Called(ctx, learnerID, badgeID, reward, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockAchievementStore) List(ctx context.Context, learnerID uuid.UUID) ([]domain.AchievementRecord, error) {
	args := m.Called(ctx, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AchievementRecord), args.Error(1)
}

func (m *MockAchievementStore) ListNew(ctx context.Context, learnerID uuid.UUID) ([]domain.AchievementRecord, error) {
	args := m.Called(ctx, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AchievementRecord), args.Error(1)
}

func (m *MockAchievementStore) Acknowledge(ctx context.Context, learnerID uuid.UUID, badgeIDs []string) (int, error) {
	args := m.Called(ctx, learnerID, badgeIDs)
	return args.Int(0), args.Error(1)
}

// MockProfileStore is a mock implementation of store.ProfileStore.
type MockProfileStore struct {
	mock.Mock
}

func (m *MockProfileStore) Get(ctx context.Context, learnerID uuid.UUID) (*domain.ProfileStats, error) {
	args := m.Called(ctx, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProfileStats), args.Error(1)
}

func (m *MockProfileStore) EnsureExists(ctx context.Context, profile domain.ProfileStats) (bool, error) {
	args := m.Called(ctx, profile)
	return args.Bool(0), args.Error(1)
}

func (m *MockProfileStore) AddPoints(ctx context.Context, learnerID uuid.UUID, points int) error {
	args := m.Called(ctx, learnerID, points)
	return args.Error(0)
}

// MockUsageCounter is a mock implementation of store.UsageCounter.
type MockUsageCounter struct {
	mock.Mock
}

func (m *MockUsageCounter) Count(ctx context.Context, learnerID uuid.UUID, feature string, day time.Time) (int, error) {
	args := m.Called(ctx, learnerID, feature, day)
	return args.Int(0), args.Error(1)
}

func (m *MockUsageCounter) IncrementWithin(
	ctx context.Context,
	learnerID uuid.UUID,
	feature string,
	day time.Time,
	limit int,
) (int, bool, error) {
	args := m.Called(ctx, learnerID, feature, day, limit)
	return args.Int(0), args.Bool(1), args.Error(2)
}

// MockEventEmitter is a mock implementation of events.EventEmitter.
type MockEventEmitter struct {
	mock.Mock
}

func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockActivityAggregator is a mock implementation of ActivityAggregator.
type MockActivityAggregator struct {
	mock.Mock
}

func (m *MockActivityAggregator) Record(
	ctx context.Context,
	learnerID uuid.UUID,
	tr mastery.Transition,
	now time.Time,
) (*domain.DailyActivityRecord, error) {
	args := m.Called(ctx, learnerID, tr, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyActivityRecord), args.Error(1)
}

func (m *MockActivityAggregator) Today(ctx context.Context, learnerID uuid.UUID) (*DayView, error) {
	args := m.Called(ctx, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DayView), args.Error(1)
}

func (m *MockActivityAggregator) History(ctx context.Context, learnerID uuid.UUID, days int) (*ActivityHistory, error) {
	args := m.Called(ctx, learnerID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ActivityHistory), args.Error(1)
}

func (m *MockActivityAggregator) GoalStreak(ctx context.Context, learnerID uuid.UUID) (int, error) {
	args := m.Called(ctx, learnerID)
	return args.Int(0), args.Error(1)
}

const testCatalogJSON = `{
  "levels": [
    {"level": "beginner", "required_mastered": 5},
    {"level": "intermediate", "required_mastered": 2}
  ],
  "lessons": [
    {"id": "b-0", "level": "beginner", "index": 0, "title": "Greetings",
     "items": [
       {"id": "hola", "text": "Hola", "translation": "Hello"},
       {"id": "gracias", "text": "Gracias", "translation": "Thanks"}
     ]},
    {"id": "b-1", "level": "beginner", "index": 1, "title": "Farewells",
     "items": [
       {"id": "adios", "text": "Adiós", "translation": "Goodbye"},
       {"id": "luego", "text": "Hasta luego", "translation": "See you later"}
     ]},
    {"id": "b-2", "level": "beginner", "index": 2, "title": "Courtesy",
     "items": [{"id": "porfavor", "text": "Por favor", "translation": "Please"}]},
    {"id": "i-0", "level": "intermediate", "index": 0, "title": "Travel",
     "items": [{"id": "donde", "text": "¿Dónde está la estación?", "translation": "Where is the station?"}]}
  ]
}`

func testCatalog(t *testing.T) *catalog.Static {
	t.Helper()
	c, err := catalog.Parse([]byte(testCatalogJSON))
	require.NoError(t, err)
	return c
}

func testBadges(t *testing.T) *badge.Catalog {
	t.Helper()
	c, err := badge.New([]badge.Definition{
		{ID: "first_words", Name: "First Words", Requirement: badge.RequirementSentencesMastered, Threshold: 1, Points: 5, Rarity: badge.RarityCommon},
		{ID: "streak_3", Name: "On a Roll", Requirement: badge.RequirementStreakDays, Threshold: 3, Points: 15, Rarity: badge.RarityRare},
		{ID: "goal_7", Name: "Goal Getter", Requirement: badge.RequirementDailyGoalDays, Threshold: 7, Points: 50, Rarity: badge.RarityEpic},
	})
	require.NoError(t, err)
	return c
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedClock returns a clock frozen at t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fluentpath/fluent-api/internal/domain"
	"github.com/fluentpath/fluent-api/internal/domain/activity"
	"github.com/fluentpath/fluent-api/internal/domain/mastery"
	"github.com/fluentpath/fluent-api/internal/platform/logger"
	"github.com/fluentpath/fluent-api/internal/store"
)

// History window bounds in days
const (
	DefaultHistoryDays = 7
	MaxHistoryDays     = 365

	// goalStreakWindow bounds how far back the goal streak is computed.
	goalStreakWindow = 730
)

// DayView is one calendar day of activity with goal_met derived from the
// learner's current goal.
type DayView struct {
	Date           string `json:"date"`
	PracticedCount int    `json:"practiced_count"`
	MasteredCount  int    `json:"mastered_count"`
	PointsEarned   int    `json:"points_earned"`
	DailyGoal      int    `json:"daily_goal"`
	GoalMet        bool   `json:"goal_met"`
}

// ActivityHistory is a zero-filled range of days, most recent first.
type ActivityHistory struct {
	Days    []DayView        `json:"days"`
	Summary activity.Summary `json:"summary"`
}

// ActivityAggregator maintains the per-learner daily rollup.
type ActivityAggregator interface {
	// Record adds one answer's transition to the learner's row for the
	// calendar day now falls on in the configured time zone.
	Record(ctx context.Context, learnerID uuid.UUID, tr mastery.Transition, now time.Time) (*domain.DailyActivityRecord, error)

	// Today returns the current day's view. A day without practice is
	// returned zeroed.
	Today(ctx context.Context, learnerID uuid.UUID) (*DayView, error)

	// History returns the last days calendar days including today. days is
	// clamped to [1, MaxHistoryDays]; 0 selects DefaultHistoryDays.
	History(ctx context.Context, learnerID uuid.UUID, days int) (*ActivityHistory, error)

	// GoalStreak returns the number of consecutive days the daily goal was met.
	GoalStreak(ctx context.Context, learnerID uuid.UUID) (int, error)
}

type activityAggregator struct {
	activity    store.ActivityStore
	profiles    store.ProfileStore
	loc         *time.Location
	defaultGoal int
	logger      *slog.Logger
	now         func() time.Time
}

// NewActivityAggregator creates an ActivityAggregator that buckets days in loc.
// Learners without a profile are measured against defaultGoal.
func NewActivityAggregator(
	activityStore store.ActivityStore,
	profiles store.ProfileStore,
	loc *time.Location,
	defaultGoal int,
	logger *slog.Logger,
) (ActivityAggregator, error) {
	if activityStore == nil {
		return nil, domain.NewValidationError("activityStore", "cannot be nil", domain.ErrValidation)
	}
	if profiles == nil {
		return nil, domain.NewValidationError("profileStore", "cannot be nil", domain.ErrValidation)
	}
	if loc == nil {
		loc = time.UTC
	}
	if defaultGoal <= 0 {
		defaultGoal = domain.DefaultDailyGoal
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &activityAggregator{
		activity:    activityStore,
		profiles:    profiles,
		loc:         loc,
		defaultGoal: defaultGoal,
		logger:      logger.With(slog.String("component", "activity_aggregator")),
		now:         time.Now,
	}, nil
}

var _ ActivityAggregator = (*activityAggregator)(nil)

// Record implements ActivityAggregator.Record.
func (s *activityAggregator) Record(
	ctx context.Context,
	learnerID uuid.UUID,
	tr mastery.Transition,
	now time.Time,
) (*domain.DailyActivityRecord, error) {
	day := domain.CalendarDate(now, s.loc)

	rec, err := s.activity.Increment(ctx, learnerID, day, activity.DeltaFor(tr))
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to record daily activity",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()),
			slog.String("date", day.Format(domain.DateLayout)))
		return nil, domain.NewPersistenceError("daily_activity", err)
	}
	return rec, nil
}

// Today implements ActivityAggregator.Today.
func (s *activityAggregator) Today(ctx context.Context, learnerID uuid.UUID) (*DayView, error) {
	goal, err := s.dailyGoal(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	today := domain.CalendarDate(s.now(), s.loc)
	rec, err := s.activity.Get(ctx, learnerID, today)
	switch {
	case errors.Is(err, store.ErrActivityNotFound):
		rec = &domain.DailyActivityRecord{LearnerID: learnerID, Date: today}
	case err != nil:
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get today's activity",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return nil, NewServiceError("activity_today", "failed to read activity", err)
	}

	view := dayView(*rec, goal)
	return &view, nil
}

// History implements ActivityAggregator.History.
func (s *activityAggregator) History(ctx context.Context, learnerID uuid.UUID, days int) (*ActivityHistory, error) {
	switch {
	case days == 0:
		days = DefaultHistoryDays
	case days < 0:
		return nil, domain.NewValidationError("days", "must be positive", domain.ErrValidation)
	case days > MaxHistoryDays:
		days = MaxHistoryDays
	}

	goal, err := s.dailyGoal(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	today := domain.CalendarDate(s.now(), s.loc)
	from := today.AddDate(0, 0, -(days - 1))

	records, err := s.activity.ListSince(ctx, learnerID, from)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list activity",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()),
			slog.Int("days", days))
		return nil, NewServiceError("activity_history", "failed to read activity", err)
	}

	byDate := make(map[string]domain.DailyActivityRecord, len(records))
	inWindow := records[:0:0]
	for _, rec := range records {
		if rec.Date.After(today) {
			continue
		}
		byDate[rec.Date.Format(domain.DateLayout)] = rec
		inWindow = append(inWindow, rec)
	}

	views := make([]DayView, 0, days)
	for d := today; !d.Before(from); d = d.AddDate(0, 0, -1) {
		rec, ok := byDate[d.Format(domain.DateLayout)]
		if !ok {
			rec = domain.DailyActivityRecord{LearnerID: learnerID, Date: d}
		}
		views = append(views, dayView(rec, goal))
	}

	return &ActivityHistory{
		Days:    views,
		Summary: activity.Summarize(inWindow, goal, days),
	}, nil
}

// GoalStreak implements ActivityAggregator.GoalStreak.
func (s *activityAggregator) GoalStreak(ctx context.Context, learnerID uuid.UUID) (int, error) {
	goal, err := s.dailyGoal(ctx, learnerID)
	if err != nil {
		return 0, err
	}

	today := domain.CalendarDate(s.now(), s.loc)
	records, err := s.activity.ListSince(ctx, learnerID, today.AddDate(0, 0, -goalStreakWindow))
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list activity for goal streak",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return 0, NewServiceError("goal_streak", "failed to read activity", err)
	}

	return activity.GoalStreak(records, goal, today), nil
}

func (s *activityAggregator) dailyGoal(ctx context.Context, learnerID uuid.UUID) (int, error) {
	profile, err := s.profiles.Get(ctx, learnerID)
	switch {
	case errors.Is(err, store.ErrProfileNotFound):
		return s.defaultGoal, nil
	case err != nil:
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get profile",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return 0, NewServiceError("daily_goal", "failed to read profile", err)
	case profile.DailyGoal <= 0:
		return s.defaultGoal, nil
	default:
		return profile.DailyGoal, nil
	}
}

func dayView(rec domain.DailyActivityRecord, goal int) DayView {
	return DayView{
		Date:           rec.Date.Format(domain.DateLayout),
		PracticedCount: rec.PracticedCount,
		MasteredCount:  rec.MasteredCount,
		PointsEarned:   rec.PointsEarned,
		DailyGoal:      goal,
		GoalMet:        rec.GoalMet(goal),
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fluentpath/fluent-api/internal/domain"
	"github.com/fluentpath/fluent-api/internal/domain/plan"
	"github.com/fluentpath/fluent-api/internal/platform/logger"
	"github.com/fluentpath/fluent-api/internal/store"
)

// PlanStatus is a learner's tier, usage and per-feature quota view.
type PlanStatus struct {
	Tier     plan.Tier            `json:"tier"`
	Limits   plan.Limits          `json:"limits"`
	Usage    plan.Usage           `json:"usage"`
	Features []plan.FeatureStatus `json:"features"`
}

// PlanGate enforces the learner's subscription limits.
type PlanGate interface {
	// Status returns the learner's current usage against their tier.
	Status(ctx context.Context, learnerID uuid.UUID) (*PlanStatus, error)

	// Check returns ErrPlanLimitReached when feature is exhausted.
	Check(ctx context.Context, learnerID uuid.UUID, feature plan.Feature) error

	// RecordChatMessage counts one chat message against today's quota.
	// The count and the limit check are a single atomic step; a message
	// over the limit is not counted and yields ErrPlanLimitReached.
	RecordChatMessage(ctx context.Context, learnerID uuid.UUID) (*plan.FeatureStatus, error)
}

type planGate struct {
	profiles store.ProfileStore
	lessons  store.LessonStore
	progress store.ProgressStore
	counter  store.UsageCounter
	loc      *time.Location
	logger   *slog.Logger
	now      func() time.Time
}

// NewPlanGate creates a PlanGate. Daily quotas reset at midnight in loc.
// It returns an error if any dependency is nil.
func NewPlanGate(
	profiles store.ProfileStore,
	lessons store.LessonStore,
	progress store.ProgressStore,
	counter store.UsageCounter,
	loc *time.Location,
	logger *slog.Logger,
) (PlanGate, error) {
	if profiles == nil {
		return nil, domain.NewValidationError("profileStore", "cannot be nil", domain.ErrValidation)
	}
	if lessons == nil {
		return nil, domain.NewValidationError("lessonStore", "cannot be nil", domain.ErrValidation)
	}
	if progress == nil {
		return nil, domain.NewValidationError("progressStore", "cannot be nil", domain.ErrValidation)
	}
	if counter == nil {
		return nil, domain.NewValidationError("usageCounter", "cannot be nil", domain.ErrValidation)
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &planGate{
		profiles: profiles,
		lessons:  lessons,
		progress: progress,
		counter:  counter,
		loc:      loc,
		logger:   logger.With(slog.String("component", "plan_gate")),
		now:      time.Now,
	}, nil
}

var _ PlanGate = (*planGate)(nil)

// Status implements PlanGate.Status.
func (s *planGate) Status(ctx context.Context, learnerID uuid.UUID) (*PlanStatus, error) {
	gate, err := s.gate(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	return &PlanStatus{
		Tier:     gate.Tier,
		Limits:   gate.Limits,
		Usage:    gate.Usage,
		Features: gate.Status(),
	}, nil
}

// Check implements PlanGate.Check.
func (s *planGate) Check(ctx context.Context, learnerID uuid.UUID, feature plan.Feature) error {
	gate, err := s.gate(ctx, learnerID)
	if err != nil {
		return err
	}
	if gate.Reached(feature) {
		logger.FromContextOrDefault(ctx, s.logger).Debug("plan limit reached",
			slog.String("learner_id", learnerID.String()),
			slog.String("tier", string(gate.Tier)),
			slog.String("feature", string(feature)))
		return NewServiceError("check_plan", fmt.Sprintf("%s limit reached", feature), ErrPlanLimitReached)
	}
	return nil
}

// RecordChatMessage implements PlanGate.RecordChatMessage.
func (s *planGate) RecordChatMessage(ctx context.Context, learnerID uuid.UUID) (*plan.FeatureStatus, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	tier, err := s.tier(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	limit := plan.LimitsFor(tier).DailyChatMessages
	day := domain.CalendarDate(s.now(), s.loc)

	count, ok, err := s.counter.IncrementWithin(ctx, learnerID, string(plan.FeatureChatMessages), day, limit)
	if err != nil {
		log.Error("failed to count chat message",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return nil, NewServiceError("record_chat_message", "failed to update usage counter", err)
	}

	gate := plan.NewGate(tier, plan.Usage{ChatMessagesToday: count})
	status := featureStatus(gate, plan.FeatureChatMessages)
	if !ok {
		log.Info("chat message limit reached",
			slog.String("learner_id", learnerID.String()),
			slog.String("tier", string(tier)),
			slog.Int("limit", limit))
		return &status, NewServiceError("record_chat_message", "daily chat message limit reached", ErrPlanLimitReached)
	}
	return &status, nil
}

func (s *planGate) gate(ctx context.Context, learnerID uuid.UUID) (plan.Gate, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	tier, err := s.tier(ctx, learnerID)
	if err != nil {
		return plan.Gate{}, err
	}

	now := s.now()
	y, m, d := now.In(s.loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, s.loc)

	lessons, err := s.lessons.CountCompletedBetween(ctx, learnerID, start, start.AddDate(0, 0, 1))
	if err != nil {
		log.Error("failed to count completed lessons",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return plan.Gate{}, NewServiceError("plan_usage", "failed to count lessons", err)
	}

	chat, err := s.counter.Count(ctx, learnerID, string(plan.FeatureChatMessages), domain.CalendarDate(now, s.loc))
	if err != nil {
		log.Error("failed to read chat counter",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return plan.Gate{}, NewServiceError("plan_usage", "failed to read chat counter", err)
	}

	sentences, err := s.progress.CountMastered(ctx, learnerID)
	if err != nil {
		log.Error("failed to count mastered items",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return plan.Gate{}, NewServiceError("plan_usage", "failed to count sentences", err)
	}

	return plan.NewGate(tier, plan.Usage{
		LessonsToday:      lessons,
		ChatMessagesToday: chat,
		TotalSentences:    sentences,
	}), nil
}

// tier reads the learner's plan. A learner without a profile is on free.
func (s *planGate) tier(ctx context.Context, learnerID uuid.UUID) (plan.Tier, error) {
	profile, err := s.profiles.Get(ctx, learnerID)
	switch {
	case errors.Is(err, store.ErrProfileNotFound):
		return plan.TierFree, nil
	case err != nil:
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get profile",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return "", NewServiceError("plan_tier", "failed to read profile", err)
	}
	return plan.ParseTier(profile.PlanTier), nil
}

func featureStatus(g plan.Gate, f plan.Feature) plan.FeatureStatus {
	for _, st := range g.Status() {
		if st.Feature == f {
			return st
		}
	}
	return plan.FeatureStatus{Feature: f, Limited: true}
}

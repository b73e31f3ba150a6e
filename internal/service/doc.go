// Package service contains the progress engine's use cases. Each service
// combines the pure rules from internal/domain with the persistence
// contracts from internal/store:
//
//   - MasteryTracker records answers against per-item progress
//   - ActivityAggregator keeps the daily rollup and the goal streak
//   - LessonGate decides lesson and level access and completes lessons
//   - AchievementEvaluator unlocks badges and queues celebrations
//   - PlanGate enforces per-tier usage limits
//
// Services receive dependencies through constructor injection and never
// depend on a concrete storage implementation.
package service

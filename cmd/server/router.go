package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fluentpath/fluent-api/internal/api"
	apiMiddleware "github.com/fluentpath/fluent-api/internal/api/middleware"
)

// setupRouter registers every route of the learner API.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	practiceHandler := api.NewPracticeHandler(app.practice, app.mastery, app.logger)
	activityHandler := api.NewActivityHandler(app.activity, app.logger)
	lessonHandler := api.NewLessonHandler(app.lessons, app.logger)
	achievementHandler := api.NewAchievementHandler(app.achievements, app.logger)
	planHandler := api.NewPlanHandler(app.plans, app.logger)
	healthHandler := api.NewHealthHandler(app.healthChecks(), app.logger)

	// Authentication runs before route matching, so unknown /api paths
	// answer 401 to anonymous callers and 404 once authenticated.
	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Post("/practice/answers", practiceHandler.SubmitAnswer)
		r.Get("/items/{id}/exercise", practiceHandler.GetExercise)
		r.Get("/progress/items/{id}", practiceHandler.GetItemProgress)

		r.Get("/activity/today", activityHandler.Today)
		r.Get("/activity/history", activityHandler.History)
		r.Get("/activity/streak", activityHandler.Streak)

		r.Get("/lessons", lessonHandler.ListLessons)
		r.Get("/levels", lessonHandler.ListLevels)
		r.Post("/lessons/{id}/complete", lessonHandler.CompleteLesson)

		r.Get("/achievements", achievementHandler.List)
		r.Get("/achievements/pending", achievementHandler.Pending)
		r.Post("/achievements/acknowledge", achievementHandler.Acknowledge)

		r.Get("/plan/usage", planHandler.Usage)
		r.Post("/plan/chat-messages", planHandler.RecordChatMessage)
	})

	r.Get("/health", healthHandler.Health)

	return r
}

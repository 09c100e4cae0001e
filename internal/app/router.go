package app

import (
	"study_mentor_backend/internal/middleware"
	"study_mentor_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories) {
	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.Check)

	public := router.Group("/api")
	{
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(a.Config), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/profile", c.user.GetProfile)
		authGroup.PATCH("/settings", c.user.UpdateSettings)

		authGroup.POST("/onboarding", c.goal.Onboard)
		authGroup.GET("/goals", c.goal.ListGoals)

		authGroup.GET("/roadmap", c.roadmap.GetRoadmap)
		authGroup.PATCH("/roadmap/tasks/:id/complete", c.roadmap.CompleteTask)

		authGroup.GET("/daily-plan", c.task.GetDailyPlan)
		authGroup.GET("/tasks/:id", c.task.GetTask)
		authGroup.POST("/tasks/:id/submit", c.task.Submit)
		authGroup.POST("/tasks/:id/submit-image", c.task.SubmitImage)
		authGroup.POST("/tasks/:id/regenerate-resources", c.task.RegenerateResources)

		authGroup.GET("/progress", c.progress.GetProgress)
		authGroup.GET("/weekly-summary", c.progress.GetWeeklySummary)

		authGroup.POST("/chat", c.chat.Ask)
	}
}

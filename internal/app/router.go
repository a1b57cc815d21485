package app

import (
	"placement_portal_backend/docs"
	"placement_portal_backend/internal/config"
	"placement_portal_backend/internal/middleware"
	"placement_portal_backend/internal/model"
	"placement_portal_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/profile", c.auth.Profile)

		// Read surfaces shared by every signed-in role; visibility narrowing
		// for students happens in the handlers.
		authGroup.GET("/quizzes", c.quiz.List)
		authGroup.GET("/quizzes/:id", middleware.RoleMiddleware(model.Staff), c.quiz.Get)
		authGroup.GET("/announcements", c.announcement.List)
		authGroup.GET("/jobs", c.job.List)
		authGroup.GET("/jobs/:id", c.job.Get)

		// The attempt engine. Starting an attempt mounts (or resumes) its
		// live session; everything after that goes through the session.
		authGroup.POST("/quizzes/:id/attempts", middleware.RoleMiddleware(model.Student), c.attempt.Start)
		authGroup.GET("/attempts/:id", c.attempt.State)
		authGroup.POST("/attempts/:id/answers", c.attempt.Answer)
		authGroup.POST("/attempts/:id/navigate", c.attempt.Navigate)
		authGroup.POST("/attempts/:id/submit", c.attempt.Submit)
		authGroup.GET("/attempts/:id/result", c.attempt.Result)

		// Authoring, staff and admin only.
		staff := authGroup.Group("")
		staff.Use(middleware.RoleMiddleware(model.Staff))
		{
			staff.POST("/quizzes", c.quiz.Create)
			staff.PUT("/quizzes/:id", c.quiz.Update)
			staff.DELETE("/quizzes/:id", c.quiz.Delete)
			staff.POST("/quizzes/:id/publish", c.quiz.Publish)
			staff.POST("/quizzes/:id/questions", c.quiz.AddQuestion)
			staff.PUT("/quizzes/:id/questions/:qid", c.quiz.UpdateQuestion)
			staff.DELETE("/quizzes/:id/questions/:qid", c.quiz.DeleteQuestion)
			staff.POST("/quizzes/images", c.quiz.UploadQuestionImage)
			staff.GET("/quizzes/:id/results", c.quiz.Attempts)

			staff.POST("/announcements", c.announcement.Create)
			staff.PUT("/announcements/:id", c.announcement.Update)
			staff.DELETE("/announcements/:id", c.announcement.Delete)

			staff.POST("/jobs", c.job.Create)
			staff.PUT("/jobs/:id", c.job.Update)
			staff.DELETE("/jobs/:id", c.job.Delete)
		}
	}
}

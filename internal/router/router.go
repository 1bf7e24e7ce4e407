package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/taskpilot-dev/taskpilot/internal/handlers"
	"github.com/taskpilot-dev/taskpilot/internal/middleware"
	"github.com/taskpilot-dev/taskpilot/internal/services"
	"github.com/taskpilot-dev/taskpilot/internal/types"
	"gorm.io/gorm"
)

// NewRouter wires the services to the HTTP surface. The caller owns the
// database handle; everything downstream receives it by injection.
func NewRouter(conn *gorm.DB) *gin.Engine {
	notificationService := services.NewNotificationService(conn)
	projectService := services.NewProjectService(conn, notificationService)
	taskService := services.NewTaskService(conn, notificationService)
	reportService := services.NewReportService(conn, notificationService)
	userService := services.NewUserService(conn)

	authHandler := handlers.NewAuthHandler(conn)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService, reportService)
	reportHandler := handlers.NewReportHandler(reportService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	userHandler := handlers.NewUserHandler(userService)

	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authRequired := middleware.AuthMiddleware(conn)
	adminOnly := middleware.RequireAdmin()

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", authRequired, authHandler.Me)
			auth.POST("/logout", authRequired, authHandler.Logout)
		}

		users := api.Group("/users", authRequired, adminOnly)
		{
			users.GET("", userHandler.List)
			users.PUT("/:user_id", userHandler.UpdateRole)
			users.DELETE("/:user_id", userHandler.Delete)
		}

		projects := api.Group("/projects", authRequired)
		{
			projects.POST("", projectHandler.Create)
			projects.GET("", projectHandler.List)
			projects.GET("/for-user", projectHandler.ListForUser)
			projects.PUT("/:project_id", projectHandler.Update)
			projects.PUT("/:project_id/finish", projectHandler.Finish)
			projects.DELETE("/:project_id", projectHandler.Delete)
		}

		tasks := api.Group("/tasks", authRequired)
		{
			tasks.POST("", taskHandler.Create)
			tasks.GET("", taskHandler.List)
			tasks.GET("/:task_id", taskHandler.Get)
			tasks.PUT("/:task_id", taskHandler.Update)
			tasks.PUT("/:task_id/status", taskHandler.UpdateStatus)
			tasks.DELETE("/:task_id", taskHandler.Delete)

			// Report endpoints
			tasks.POST("/:task_id/report", reportHandler.Submit)
			tasks.GET("/:task_id/reports", reportHandler.ListByTask)
			tasks.PUT("/:task_id/reports/seen", adminOnly, reportHandler.MarkAllSeen)
		}

		api.PUT("/reports/:report_id/seen", authRequired, adminOnly, reportHandler.MarkSeen)

		notifications := api.Group("/notifications", authRequired)
		{
			notifications.GET("", notificationHandler.List)
			notifications.PUT("/:notification_id/read", notificationHandler.MarkRead)
			notifications.POST("/read-all", notificationHandler.MarkAllRead)
		}
	}

	return r
}

package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/tablero-dev/tablero/internal/handlers"
	"github.com/tablero-dev/tablero/internal/middleware"
	"github.com/tablero-dev/tablero/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Accept", "X-Requested-With", middleware.IdentityHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", handlers.StatusRoot)

	r.POST("/register", handlers.Register)
	r.POST("/login", handlers.Login)
	r.POST("/forgot-password", handlers.ForgotPassword)
	r.POST("/reset-password", handlers.ResetPassword)
	r.POST("/api/verify-captcha", handlers.VerifyCaptcha)

	proyectos := r.Group("/proyectos", middleware.IdentityMiddleware())
	{
		proyectos.POST("", handlers.CreateProject)
		proyectos.GET("", handlers.ListProjects)
		proyectos.DELETE("/:project_id", handlers.DeleteProject)

		// Membership endpoints
		proyectos.POST("/:project_id/integrantes", handlers.AddMembers)
		proyectos.DELETE("/:project_id/integrantes", handlers.RemoveMember)

		// Task endpoints
		proyectos.POST("/:project_id/tareas", handlers.CreateTask)
		proyectos.GET("/:project_id/tareas", handlers.ListTasks)
		proyectos.DELETE("/:project_id/tareas/:task_id", handlers.DeleteTask)
		proyectos.PUT("/:project_id/tareas/:task_id/estado", handlers.UpdateTaskStatus)
		proyectos.POST("/:project_id/tareas/:task_id/responsables", handlers.AssignResponsibles)
	}

	return r
}

package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/taskflow-io/hourtrack/docs"
	"github.com/taskflow-io/hourtrack/internal/config"
	"github.com/taskflow-io/hourtrack/internal/middleware"
	"github.com/taskflow-io/hourtrack/internal/modules/handler"
	"github.com/taskflow-io/hourtrack/internal/modules/serializer"
	"github.com/taskflow-io/hourtrack/internal/modules/service"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	Config         *config.Config
	Log            *zap.Logger
	AuthService    service.AuthService
	AuthHandler    *handler.AuthHandler
	ProjectHandler *handler.ProjectHandler
	HourHandler    *handler.HourHandler
	TaskHandler    *handler.TaskHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	if d.Config.Telemetry.Enabled && d.Config.Telemetry.OtlpEndpoint != "" {
		r.Use(middleware.OtelTracing(d.Config.App.Name))
		r.Use(middleware.TraceID())
	}

	r.Use(middleware.ZapLogger(d.Log))

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "ok"}) })

	// swagger
	r.GET("/swagger", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", d.AuthHandler.Register)
			auth.POST("/login", d.AuthHandler.Login)
		}

		private := v1.Group("")
		private.Use(middleware.UserAuth(d.AuthService, d.Log))

		project := private.Group("/projects")
		{
			project.GET("", d.ProjectHandler.ListProjects)
			project.POST("", d.ProjectHandler.CreateProject)
			project.GET("/:project_id", d.ProjectHandler.GetProject)
			project.PUT("/:project_id", d.ProjectHandler.UpdateProject)
			project.DELETE("/:project_id", d.ProjectHandler.DeleteProject)

			project.GET("/:project_id/stats", d.ProjectHandler.GetProjectStats)

			project.POST("/:project_id/hours", d.HourHandler.LogHours)
			project.GET("/:project_id/hours", d.HourHandler.GetProjectHours)
		}

		hours := private.Group("/hours")
		{
			hours.GET("", d.HourHandler.ListHours)
			hours.GET("/stats", d.HourHandler.GetHourStats)
			hours.POST("/export", d.HourHandler.ExportHours)
			hours.GET("/:entry_id", d.HourHandler.GetHourEntry)
			hours.PUT("/:entry_id", d.HourHandler.UpdateHourEntry)
			hours.DELETE("/:entry_id", d.HourHandler.DeleteHourEntry)
		}

		task := private.Group("/tasks")
		{
			task.GET("", d.TaskHandler.ListTasks)
			task.POST("", d.TaskHandler.CreateTask)
			task.GET("/stats", d.TaskHandler.GetTaskStats)
			task.GET("/:task_id", d.TaskHandler.GetTask)
			task.PUT("/:task_id", d.TaskHandler.UpdateTask)
			task.DELETE("/:task_id", d.TaskHandler.DeleteTask)
		}
	}
	return r
}

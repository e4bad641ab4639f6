// Package router wires repositories, services and handlers into the HTTP API.
package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/projecttime-api/internal/auth"
	"github.com/yukikurage/projecttime-api/internal/events"
	"github.com/yukikurage/projecttime-api/internal/handlers"
	"github.com/yukikurage/projecttime-api/internal/middleware"
	"github.com/yukikurage/projecttime-api/internal/models"
	"github.com/yukikurage/projecttime-api/internal/repository"
	"github.com/yukikurage/projecttime-api/internal/services"
	"github.com/yukikurage/projecttime-api/internal/validation"
	"gorm.io/gorm"
)

type Deps struct {
	DB        *gorm.DB
	Tokens    *auth.TokenService
	Publisher events.Publisher
	// Generator is nil when no AI provider is configured
	Generator services.TaskGenerator
}

func New(deps Deps) (*gin.Engine, error) {
	if err := validation.Register(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	// Repositories
	orgRepo := repository.NewOrganizationRepository(deps.DB)
	userRepo := repository.NewUserRepository(deps.DB)
	clientRepo := repository.NewClientRepository(deps.DB)
	projectRepo := repository.NewProjectRepository(deps.DB)
	taskRepo := repository.NewTaskRepository(deps.DB)
	timesheetRepo := repository.NewTimesheetRepository(deps.DB)

	// Services
	authService := services.NewAuthService(userRepo, orgRepo, deps.Tokens)
	orgService := services.NewOrganizationService(orgRepo, userRepo)
	clientService := services.NewClientService(clientRepo)
	projectService := services.NewProjectService(projectRepo, clientRepo, taskRepo, timesheetRepo)
	taskService := services.NewTaskService(taskRepo, projectRepo, userRepo, timesheetRepo, deps.Publisher, deps.Generator)
	timesheetService := services.NewTimesheetService(timesheetRepo, projectRepo, taskRepo)

	// Handlers
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Publisher)
	authHandler := handlers.NewAuthHandler(authService)
	orgHandler := handlers.NewOrganizationHandler(orgService)
	clientHandler := handlers.NewClientHandler(clientService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)
	timesheetHandler := handlers.NewTimesheetHandler(timesheetService)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.RequestLogger(), gin.Recovery())

	r.GET("/health", healthHandler.Health)
	r.GET("/health/livez", healthHandler.Livez)
	r.GET("/health/readyz", healthHandler.Readyz)

	requireAuth := middleware.RequireAuth(deps.Tokens)
	requireActive := middleware.RequireActiveUser(userRepo)

	// Everyone except client accounts may change tasks and log time
	canWrite := middleware.RequireRole(models.RoleOwner, models.RoleAdmin, models.RoleManager, models.RoleTeamMember)
	canManage := middleware.RequireRole(models.RoleOwner, models.RoleAdmin, models.RoleManager)
	canAdminister := middleware.RequireRole(models.RoleOwner, models.RoleAdmin)

	api := r.Group("/api")
	{
		// Auth routes (public)
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.GET("/me", requireAuth, requireActive, authHandler.GetCurrentUser)
		}

		protected := api.Group("")
		protected.Use(requireAuth, requireActive)

		orgs := protected.Group("/organizations")
		{
			orgs.GET("/current", orgHandler.GetCurrentOrganization)
			orgs.PATCH("/current", canAdminister, orgHandler.UpdateCurrentOrganization)
		}

		users := protected.Group("/users")
		{
			users.GET("", orgHandler.ListUsers)
			users.GET("/:id", orgHandler.GetUser)
			users.POST("", canAdminister, orgHandler.CreateUser)
		}

		clients := protected.Group("/clients")
		{
			clients.GET("", clientHandler.ListClients)
			clients.GET("/:id", clientHandler.GetClient)
			clients.POST("", canManage, clientHandler.CreateClient)
			clients.PATCH("/:id", canManage, clientHandler.UpdateClient)
			clients.DELETE("/:id", canManage, clientHandler.DeleteClient)
		}

		projects := protected.Group("/projects")
		{
			projects.GET("", projectHandler.ListProjects)
			projects.GET("/:id", projectHandler.GetProject)
			projects.GET("/:id/summary", projectHandler.GetProjectSummary)
			projects.POST("", canManage, projectHandler.CreateProject)
			projects.PATCH("/:id", canManage, projectHandler.UpdateProject)
			projects.DELETE("/:id", canManage, projectHandler.DeleteProject)
		}

		tasks := protected.Group("/tasks")
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.GET("/kanban/:project_id", taskHandler.GetKanban)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.POST("", canWrite, taskHandler.CreateTask)
			tasks.POST("/generate", canWrite, taskHandler.GenerateTasks)
			tasks.PATCH("/order", canWrite, taskHandler.ReorderTasks)
			tasks.PATCH("/:id", canWrite, taskHandler.UpdateTask)
			tasks.DELETE("/:id", canWrite, taskHandler.DeleteTask)
		}

		timesheets := protected.Group("/timesheets")
		{
			timesheets.GET("", timesheetHandler.ListEntries)
			timesheets.GET("/weekly", timesheetHandler.Weekly)
			timesheets.GET("/:id", timesheetHandler.GetEntry)
			timesheets.POST("", canWrite, timesheetHandler.CreateEntry)
			timesheets.PATCH("/:id", canWrite, timesheetHandler.UpdateEntry)
			timesheets.DELETE("/:id", canWrite, timesheetHandler.DeleteEntry)
		}
	}

	return r, nil
}

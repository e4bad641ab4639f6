// Command seed fills an empty database with a demo organization.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"time"

	"github.com/yukikurage/projecttime-api/internal/auth"
	"github.com/yukikurage/projecttime-api/internal/config"
	"github.com/yukikurage/projecttime-api/internal/database"
	"github.com/yukikurage/projecttime-api/internal/events"
	"github.com/yukikurage/projecttime-api/internal/logger"
	"github.com/yukikurage/projecttime-api/internal/models"
	"github.com/yukikurage/projecttime-api/internal/repository"
	"github.com/yukikurage/projecttime-api/internal/services"
)

func main() {
	email := flag.String("email", "admin@example.com", "admin email")
	password := flag.String("password", "password123", "admin password")
	flag.Parse()

	cfg := config.Load()
	if err := logger.Init(logger.DefaultConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	db := database.GetDB()
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	clientRepo := repository.NewClientRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	timesheetRepo := repository.NewTimesheetRepository(db)

	authService := services.NewAuthService(userRepo, orgRepo, auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL))
	clientService := services.NewClientService(clientRepo)
	projectService := services.NewProjectService(projectRepo, clientRepo, taskRepo, timesheetRepo)
	taskService := services.NewTaskService(taskRepo, projectRepo, userRepo, timesheetRepo, events.NoopPublisher{}, nil)
	timesheetService := services.NewTimesheetService(timesheetRepo, projectRepo, taskRepo)

	result, err := authService.Register(services.RegisterInput{
		OrganizationName: "Demo Agency",
		AdminName:        "Demo Admin",
		Email:            *email,
		Password:         *password,
	})
	if err != nil {
		log.Fatalf("Failed to register demo organization: %v", err)
	}
	orgID := result.Organization.ID
	userID := result.User.ID

	client, err := clientService.CreateClient(orgID, services.ClientInput{
		Name:  "Acme Corp",
		Email: "billing@acme.example",
	})
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	budget := 120
	rate := 95.0
	project, err := projectService.CreateProject(services.CreateProjectInput{
		OrganizationID: orgID,
		ClientID:       &client.ID,
		Name:           "Website Relaunch",
		Code:           "WEB",
		Status:         models.ProjectStatusActive,
		BudgetHours:    &budget,
		HourlyRate:     &rate,
		Color:          "#3b82f6",
	})
	if err != nil {
		log.Fatalf("Failed to create project: %v", err)
	}

	ctx := context.Background()
	seedTasks := []struct {
		title  string
		status models.TaskStatus
	}{
		{"Collect content from client", models.TaskStatusDone},
		{"Design landing page", models.TaskStatusInReview},
		{"Build navigation", models.TaskStatusInProgress},
		{"Set up analytics", models.TaskStatusTodo},
		{"Write launch checklist", models.TaskStatusTodo},
	}

	var firstTaskID string
	for _, st := range seedTasks {
		task, err := taskService.CreateTask(ctx, services.CreateTaskInput{
			OrganizationID: orgID,
			ActorID:        userID,
			ProjectID:      project.ID,
			Title:          st.title,
			Status:         st.status,
		})
		if err != nil {
			log.Fatalf("Failed to create task %q: %v", st.title, err)
		}
		if firstTaskID == "" {
			firstTaskID = task.ID
		}
	}

	monday := services.MondayOf(time.Now().UTC())
	for day := 0; day < 5; day++ {
		if _, err := timesheetService.CreateEntry(services.CreateEntryInput{
			OrganizationID: orgID,
			UserID:         userID,
			ProjectID:      project.ID,
			TaskID:         &firstTaskID,
			Date:           monday.AddDate(0, 0, day),
			Minutes:        90 + 30*day,
			Notes:          "Seeded entry",
		}); err != nil {
			log.Fatalf("Failed to create timesheet entry: %v", err)
		}
	}

	slog.Info("Seed completed",
		"organization", result.Organization.Slug,
		"email", result.User.Email,
		"project", project.Code,
	)
}

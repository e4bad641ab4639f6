package services

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/yukikurage/projecttime-api/internal/constants"
	"github.com/yukikurage/projecttime-api/internal/models"
	"github.com/yukikurage/projecttime-api/internal/repository"
	"github.com/yukikurage/projecttime-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound      = errors.New("project not found")
	ErrProjectCodeTaken     = errors.New("project code already exists")
	ErrProjectNameRequired  = errors.New("project name is required")
	ErrProjectCodeRequired  = errors.New("project code is required")
	ErrInvalidProjectStatus = errors.New("invalid project status")
	ErrInvalidProjectDates  = errors.New("end date must not be before start date")
	ErrInvalidProjectBudget = errors.New("budget values cannot be negative")
)

// ProjectService provides business logic for project operations.
type ProjectService struct {
	projectRepo   repository.ProjectRepository
	clientRepo    repository.ClientRepository
	taskRepo      repository.TaskRepository
	timesheetRepo repository.TimesheetRepository
}

// NewProjectService creates a new ProjectService.
func NewProjectService(
	projectRepo repository.ProjectRepository,
	clientRepo repository.ClientRepository,
	taskRepo repository.TaskRepository,
	timesheetRepo repository.TimesheetRepository,
) *ProjectService {
	return &ProjectService{
		projectRepo:   projectRepo,
		clientRepo:    clientRepo,
		taskRepo:      taskRepo,
		timesheetRepo: timesheetRepo,
	}
}

type CreateProjectInput struct {
	OrganizationID string
	ClientID       *string
	Name           string
	Code           string
	Description    string
	Status         models.ProjectStatus
	BudgetHours    *int
	BudgetAmount   *float64
	HourlyRate     *float64
	StartDate      *time.Time
	EndDate        *time.Time
	Color          string
}

type UpdateProjectInput struct {
	ClientID     *string
	ClearClient  bool
	Name         *string
	Code         *string
	Description  *string
	Status       *models.ProjectStatus
	BudgetHours  *int
	BudgetAmount *float64
	HourlyRate   *float64
	StartDate    *time.Time
	EndDate      *time.Time
	Color        *string
}

type ListProjectsInput struct {
	OrganizationID string
	Status         *models.ProjectStatus
	ClientID       string
	Search         string
	Pagination     utils.PaginationParams
}

// ProjectSummary aggregates logged time and task counts for a project.
type ProjectSummary struct {
	Project              *models.Project
	TotalHours           float64
	BillableHours        float64
	BudgetHours          *int
	RemainingBudgetHours *float64
	Tasks                map[models.TaskStatus]int64
}

// CreateProject creates a project with a code unique to the organization.
func (s *ProjectService) CreateProject(input CreateProjectInput) (*models.Project, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Code = strings.TrimSpace(input.Code)
	if input.Name == "" {
		return nil, ErrProjectNameRequired
	}
	if input.Code == "" {
		return nil, ErrProjectCodeRequired
	}
	if input.Status == "" {
		input.Status = models.ProjectStatusPlanned
	}

	project := &models.Project{
		OrganizationID: input.OrganizationID,
		ClientID:       input.ClientID,
		Name:           input.Name,
		Code:           input.Code,
		Description:    input.Description,
		Status:         input.Status,
		BudgetHours:    input.BudgetHours,
		BudgetAmount:   input.BudgetAmount,
		HourlyRate:     input.HourlyRate,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		Color:          input.Color,
		Active:         true,
	}
	if err := validateProject(project); err != nil {
		return nil, err
	}

	if err := s.ensureCodeAvailable(input.OrganizationID, input.Code); err != nil {
		return nil, err
	}
	if input.ClientID != nil {
		if err := s.ensureClient(input.OrganizationID, *input.ClientID); err != nil {
			return nil, err
		}
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return s.projectRepo.FindByID(input.OrganizationID, project.ID, "Client")
}

// ListProjects returns active projects, newest first.
func (s *ProjectService) ListProjects(input ListProjectsInput) ([]models.Project, int64, error) {
	projects, total, err := s.projectRepo.List(repository.ProjectFilter{
		OrganizationID: input.OrganizationID,
		Status:         input.Status,
		ClientID:       input.ClientID,
		Search:         input.Search,
		Pagination:     input.Pagination,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, total, nil
}

// GetProject returns a project with its client and most recent activity.
func (s *ProjectService) GetProject(organizationID, id string) (*models.Project, error) {
	project, err := s.findProject(organizationID, id, "Client")
	if err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.ListRecentByProject(organizationID, id, constants.RecentItemsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent tasks: %w", err)
	}
	project.Tasks = tasks

	recent := utils.NewPaginationParams(1, constants.RecentItemsLimit, constants.RecentItemsLimit)
	entries, _, err := s.timesheetRepo.List(repository.TimesheetFilter{
		OrganizationID: organizationID,
		ProjectID:      id,
		Pagination:     &recent,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load recent time entries: %w", err)
	}
	project.TimesheetEntries = entries

	return project, nil
}

// UpdateProject applies a partial update.
func (s *ProjectService) UpdateProject(organizationID, id string, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.findProject(organizationID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrProjectNameRequired
		}
		project.Name = name
	}
	if input.Code != nil {
		code := strings.TrimSpace(*input.Code)
		if code == "" {
			return nil, ErrProjectCodeRequired
		}
		if code != project.Code {
			if err := s.ensureCodeAvailable(organizationID, code); err != nil {
				return nil, err
			}
		}
		project.Code = code
	}
	if input.ClearClient {
		project.ClientID = nil
	} else if input.ClientID != nil {
		if err := s.ensureClient(organizationID, *input.ClientID); err != nil {
			return nil, err
		}
		project.ClientID = input.ClientID
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Status != nil {
		project.Status = *input.Status
	}
	if input.BudgetHours != nil {
		project.BudgetHours = input.BudgetHours
	}
	if input.BudgetAmount != nil {
		project.BudgetAmount = input.BudgetAmount
	}
	if input.HourlyRate != nil {
		project.HourlyRate = input.HourlyRate
	}
	if input.StartDate != nil {
		project.StartDate = input.StartDate
	}
	if input.EndDate != nil {
		project.EndDate = input.EndDate
	}
	if input.Color != nil {
		project.Color = *input.Color
	}

	if err := validateProject(project); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return s.projectRepo.FindByID(organizationID, id, "Client")
}

// DeleteProject soft deletes a project.
func (s *ProjectService) DeleteProject(organizationID, id string) error {
	if err := s.projectRepo.Deactivate(organizationID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// GetProjectSummary reports hours against budget and tasks per status.
func (s *ProjectService) GetProjectSummary(organizationID, id string) (*ProjectSummary, error) {
	project, err := s.findProject(organizationID, id)
	if err != nil {
		return nil, err
	}

	totalMinutes, billableMinutes, err := s.projectRepo.TimeTotals(organizationID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to sum project time: %w", err)
	}

	counts, err := s.taskRepo.CountByStatus(organizationID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	summary := &ProjectSummary{
		Project:       project,
		TotalHours:    minutesToHours(totalMinutes),
		BillableHours: minutesToHours(billableMinutes),
		BudgetHours:   project.BudgetHours,
		Tasks:         counts,
	}
	if project.BudgetHours != nil && *project.BudgetHours > 0 {
		remaining := math.Max(0, float64(*project.BudgetHours)-float64(totalMinutes)/60)
		remaining = math.Round(remaining*100) / 100
		summary.RemainingBudgetHours = &remaining
	}

	return summary, nil
}

func (s *ProjectService) findProject(organizationID, id string, preload ...string) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(organizationID, id, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

func (s *ProjectService) ensureCodeAvailable(organizationID, code string) error {
	if _, err := s.projectRepo.FindByCode(organizationID, code); err == nil {
		return ErrProjectCodeTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check project code: %w", err)
	}
	return nil
}

func (s *ProjectService) ensureClient(organizationID, clientID string) error {
	if _, err := s.clientRepo.FindByID(organizationID, clientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClientNotFound
		}
		return fmt.Errorf("failed to find client: %w", err)
	}
	return nil
}

func validateProject(p *models.Project) error {
	if !p.Status.Valid() {
		return ErrInvalidProjectStatus
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return ErrInvalidProjectDates
	}
	if (p.BudgetHours != nil && *p.BudgetHours < 0) ||
		(p.BudgetAmount != nil && *p.BudgetAmount < 0) ||
		(p.HourlyRate != nil && *p.HourlyRate < 0) {
		return ErrInvalidProjectBudget
	}
	return nil
}

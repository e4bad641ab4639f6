package dto

import (
	"time"

	"github.com/yukikurage/projecttime-api/internal/models"
	"github.com/yukikurage/projecttime-api/internal/services"
)

// ClientDTO represents a client in API responses
type ClientDTO struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Address        string          `json:"address"`
	BillingAddress string          `json:"billing_address"`
	TaxID          string          `json:"tax_id"`
	Notes          string          `json:"notes"`
	Active         bool            `json:"active"`
	ProjectCount   int64           `json:"project_count"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Projects       []ProjectRefDTO `json:"projects,omitempty"`
}

type ClientRefDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID             string               `json:"id"`
	ClientID       *string              `json:"client_id"`
	Name           string               `json:"name"`
	Code           string               `json:"code"`
	Description    string               `json:"description"`
	Status         models.ProjectStatus `json:"status"`
	BudgetHours    *int                 `json:"budget_hours"`
	BudgetAmount   *float64             `json:"budget_amount"`
	HourlyRate     *float64             `json:"hourly_rate"`
	StartDate      *time.Time           `json:"start_date"`
	EndDate        *time.Time           `json:"end_date"`
	Color          string               `json:"color"`
	Active         bool                 `json:"active"`
	TaskCount      int64                `json:"task_count"`
	TimeEntryCount int64                `json:"time_entry_count"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
	Client         *ClientRefDTO        `json:"client,omitempty"`
}

// ProjectDetailDTO adds the most recent activity
type ProjectDetailDTO struct {
	ProjectDTO
	RecentTasks   []TaskRefDTO        `json:"recent_tasks"`
	RecentEntries []TimesheetEntryDTO `json:"recent_timesheet_entries"`
}

type ProjectSummaryDTO struct {
	Project              ProjectRefDTO    `json:"project"`
	TotalHours           float64          `json:"total_hours"`
	BillableHours        float64          `json:"billable_hours"`
	BudgetHours          *int             `json:"budget_hours"`
	RemainingBudgetHours *float64         `json:"remaining_budget_hours"`
	TasksByStatus        map[string]int64 `json:"tasks_by_status"`
}

func ToClientDTO(client models.Client) ClientDTO {
	dto := ClientDTO{
		ID:             client.ID,
		Name:           client.Name,
		Email:          client.Email,
		Phone:          client.Phone,
		Address:        client.Address,
		BillingAddress: client.BillingAddress,
		TaxID:          client.TaxID,
		Notes:          client.Notes,
		Active:         client.Active,
		ProjectCount:   client.ProjectCount,
		CreatedAt:      client.CreatedAt,
		UpdatedAt:      client.UpdatedAt,
	}
	if client.Projects != nil {
		dto.Projects = make([]ProjectRefDTO, len(client.Projects))
		for i, p := range client.Projects {
			dto.Projects[i] = ToProjectRefDTO(p)
		}
	}
	return dto
}

func ToProjectDTO(project models.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:             project.ID,
		ClientID:       project.ClientID,
		Name:           project.Name,
		Code:           project.Code,
		Description:    project.Description,
		Status:         project.Status,
		BudgetHours:    project.BudgetHours,
		BudgetAmount:   project.BudgetAmount,
		HourlyRate:     project.HourlyRate,
		StartDate:      project.StartDate,
		EndDate:        project.EndDate,
		Color:          project.Color,
		Active:         project.Active,
		TaskCount:      project.TaskCount,
		TimeEntryCount: project.TimeEntryCount,
		CreatedAt:      project.CreatedAt,
		UpdatedAt:      project.UpdatedAt,
	}
	if project.Client != nil {
		dto.Client = &ClientRefDTO{ID: project.Client.ID, Name: project.Client.Name}
	}
	return dto
}

func ToProjectDetailDTO(project models.Project) ProjectDetailDTO {
	dto := ProjectDetailDTO{
		ProjectDTO:    ToProjectDTO(project),
		RecentTasks:   make([]TaskRefDTO, len(project.Tasks)),
		RecentEntries: ToTimesheetEntryDTOs(project.TimesheetEntries),
	}
	for i, t := range project.Tasks {
		dto.RecentTasks[i] = ToTaskRefDTO(t)
	}
	return dto
}

// ToProjectSummaryDTO always lists the four lanes, plus any legacy status
// that still has tasks.
func ToProjectSummaryDTO(summary *services.ProjectSummary) ProjectSummaryDTO {
	byStatus := make(map[string]int64, len(models.TaskStatuses))
	for _, status := range models.TaskStatuses {
		byStatus[string(status)] = 0
	}
	for status, count := range summary.Tasks {
		byStatus[string(status)] = count
	}

	return ProjectSummaryDTO{
		Project:              ToProjectRefDTO(*summary.Project),
		TotalHours:           summary.TotalHours,
		BillableHours:        summary.BillableHours,
		BudgetHours:          summary.BudgetHours,
		RemainingBudgetHours: summary.RemainingBudgetHours,
		TasksByStatus:        byStatus,
	}
}

package dto

import (
	"time"

	"github.com/yukikurage/projecttime-api/internal/models"
	"github.com/yukikurage/projecttime-api/internal/services"
)

// ProjectRefDTO identifies the project a task or entry belongs to
type ProjectRefDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// TaskRefDTO identifies a related task
type TaskRefDTO struct {
	ID     string            `json:"id"`
	Title  string            `json:"title"`
	Status models.TaskStatus `json:"status"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID             string              `json:"id"`
	OrganizationID string              `json:"organization_id"`
	ProjectID      string              `json:"project_id"`
	ParentID       *string             `json:"parent_id"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Status         models.TaskStatus   `json:"status"`
	Priority       models.TaskPriority `json:"priority"`
	Tags           []string            `json:"tags"`
	DueDate        *time.Time          `json:"due_date"`
	EstimatedHours *int                `json:"estimated_hours"`
	OrderIndex     int                 `json:"order_index"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	Project        *ProjectRefDTO      `json:"project,omitempty"`
	Assignees      []UserSummaryDTO    `json:"assignees"`
	SubtaskCount   int64               `json:"subtask_count"`
	TimeEntryCount int64               `json:"time_entry_count"`
}

// TaskDetailDTO adds the parent, subtasks and latest time entries
type TaskDetailDTO struct {
	TaskDTO
	Parent           *TaskRefDTO         `json:"parent"`
	Subtasks         []TaskRefDTO        `json:"subtasks"`
	TimesheetEntries []TimesheetEntryDTO `json:"timesheet_entries"`
}

// BoardDTO is the board projection keyed by lane
type BoardDTO struct {
	Todo       []TaskDTO `json:"TODO"`
	InProgress []TaskDTO `json:"IN_PROGRESS"`
	InReview   []TaskDTO `json:"IN_REVIEW"`
	Done       []TaskDTO `json:"DONE"`
}

type KanbanDTO struct {
	Project ProjectRefDTO `json:"project"`
	Board   BoardDTO      `json:"board"`
}

// GeneratedTaskDTO is an AI suggestion; it is not stored
type GeneratedTaskDTO struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"due_date"`
}

func ToProjectRefDTO(project models.Project) ProjectRefDTO {
	return ProjectRefDTO{ID: project.ID, Name: project.Name, Code: project.Code}
}

func ToTaskRefDTO(task models.Task) TaskRefDTO {
	return TaskRefDTO{ID: task.ID, Title: task.Title, Status: task.Status}
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	tags := []string(task.Tags)
	if tags == nil {
		tags = []string{}
	}

	dto := TaskDTO{
		ID:             task.ID,
		OrganizationID: task.OrganizationID,
		ProjectID:      task.ProjectID,
		ParentID:       task.ParentID,
		Title:          task.Title,
		Description:    task.Description,
		Status:         task.Status,
		Priority:       task.Priority,
		Tags:           tags,
		DueDate:        task.DueDate,
		EstimatedHours: task.EstimatedHours,
		OrderIndex:     task.OrderIndex,
		CreatedAt:      task.CreatedAt,
		UpdatedAt:      task.UpdatedAt,
		Assignees:      make([]UserSummaryDTO, len(task.Assignees)),
		SubtaskCount:   task.SubtaskCount,
		TimeEntryCount: task.TimeEntryCount,
	}

	// Include project if preloaded
	if task.Project != nil {
		project := ToProjectRefDTO(*task.Project)
		dto.Project = &project
	}
	for i, u := range task.Assignees {
		dto.Assignees[i] = ToUserSummaryDTO(u)
	}

	return dto
}

func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	out := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		out[i] = ToTaskDTO(t)
	}
	return out
}

// ToTaskDetailDTO converts a task loaded with parent, subtasks and entries
func ToTaskDetailDTO(task models.Task) TaskDetailDTO {
	dto := TaskDetailDTO{
		TaskDTO:          ToTaskDTO(task),
		Subtasks:         make([]TaskRefDTO, len(task.Subtasks)),
		TimesheetEntries: ToTimesheetEntryDTOs(task.TimesheetEntries),
	}
	if task.Parent != nil {
		parent := ToTaskRefDTO(*task.Parent)
		dto.Parent = &parent
	}
	for i, s := range task.Subtasks {
		dto.Subtasks[i] = ToTaskRefDTO(s)
	}
	return dto
}

func ToKanbanDTO(kanban *services.Kanban) KanbanDTO {
	return KanbanDTO{
		Project: ToProjectRefDTO(*kanban.Project),
		Board: BoardDTO{
			Todo:       ToTaskDTOs(kanban.Board.Todo),
			InProgress: ToTaskDTOs(kanban.Board.InProgress),
			InReview:   ToTaskDTOs(kanban.Board.InReview),
			Done:       ToTaskDTOs(kanban.Board.Done),
		},
	}
}

func ToGeneratedTaskDTOs(tasks []services.GeneratedTask) []GeneratedTaskDTO {
	out := make([]GeneratedTaskDTO, len(tasks))
	for i, t := range tasks {
		out[i] = GeneratedTaskDTO{
			Title:       t.Title,
			Description: t.Description,
			Priority:    t.Priority,
			DueDate:     t.DueDate,
		}
	}
	return out
}

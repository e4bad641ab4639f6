package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusInReview   TaskStatus = "IN_REVIEW"
	TaskStatusDone       TaskStatus = "DONE"
)

// TaskStatuses lists the board lanes in display order.
var TaskStatuses = []TaskStatus{
	TaskStatusTodo,
	TaskStatusInProgress,
	TaskStatusInReview,
	TaskStatusDone,
}

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusInReview, TaskStatusDone:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
	PriorityUrgent TaskPriority = "URGENT"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type Task struct {
	ID             string                      `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrganizationID string                      `gorm:"type:varchar(36);not null;index:idx_tasks_lane,priority:1" json:"organization_id"`
	ProjectID      string                      `gorm:"type:varchar(36);not null;index:idx_tasks_lane,priority:2" json:"project_id"`
	ParentID       *string                     `gorm:"type:varchar(36);index" json:"parent_id"`
	Title          string                      `gorm:"type:varchar(255);not null" json:"title"`
	Description    string                      `gorm:"type:text" json:"description"`
	Status         TaskStatus                  `gorm:"type:varchar(20);not null;index:idx_tasks_lane,priority:3" json:"status"`
	Priority       TaskPriority                `gorm:"type:varchar(20);not null" json:"priority"`
	Tags           datatypes.JSONSlice[string] `json:"tags"`
	DueDate        *time.Time                  `json:"due_date"`
	EstimatedHours *int                        `json:"estimated_hours"`
	OrderIndex     int                         `gorm:"not null;default:0;index:idx_tasks_lane,priority:4" json:"order_index"`
	CreatedAt      time.Time                   `json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`

	// Relations
	Project          *Project         `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Parent           *Task            `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Subtasks         []Task           `gorm:"foreignKey:ParentID" json:"subtasks,omitempty"`
	Assignees        []User           `gorm:"many2many:task_assignees" json:"assignees"`
	TimesheetEntries []TimesheetEntry `gorm:"foreignKey:TaskID" json:"timesheet_entries,omitempty"`

	SubtaskCount   int64 `gorm:"->;-:migration" json:"subtask_count"`
	TimeEntryCount int64 `gorm:"->;-:migration" json:"time_entry_count"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = newID()
	}
	return nil
}

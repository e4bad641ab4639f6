package models

import (
	"time"

	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectStatusPlanned   ProjectStatus = "PLANNED"
	ProjectStatusActive    ProjectStatus = "ACTIVE"
	ProjectStatusOnHold    ProjectStatus = "ON_HOLD"
	ProjectStatusCompleted ProjectStatus = "COMPLETED"
	ProjectStatusCancelled ProjectStatus = "CANCELLED"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusPlanned, ProjectStatusActive, ProjectStatusOnHold,
		ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	}
	return false
}

type Project struct {
	ID             string        `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrganizationID string        `gorm:"type:varchar(36);not null;uniqueIndex:idx_projects_org_code,priority:1" json:"organization_id"`
	ClientID       *string       `gorm:"type:varchar(36);index" json:"client_id"`
	Name           string        `gorm:"type:varchar(255);not null" json:"name"`
	Code           string        `gorm:"type:varchar(50);not null;uniqueIndex:idx_projects_org_code,priority:2" json:"code"`
	Description    string        `gorm:"type:text" json:"description"`
	Status         ProjectStatus `gorm:"type:varchar(20);not null" json:"status"`
	BudgetHours    *int          `json:"budget_hours"`
	BudgetAmount   *float64      `json:"budget_amount"`
	HourlyRate     *float64      `json:"hourly_rate"`
	StartDate      *time.Time    `json:"start_date"`
	EndDate        *time.Time    `json:"end_date"`
	Color          string        `gorm:"type:varchar(7)" json:"color"`
	Active         bool          `gorm:"not null" json:"active"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`

	// Relations
	Client           *Client          `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Tasks            []Task           `gorm:"foreignKey:ProjectID" json:"tasks,omitempty"`
	TimesheetEntries []TimesheetEntry `gorm:"foreignKey:ProjectID" json:"timesheet_entries,omitempty"`

	TaskCount      int64 `gorm:"->;-:migration" json:"task_count"`
	TimeEntryCount int64 `gorm:"->;-:migration" json:"time_entry_count"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = newID()
	}
	return nil
}

package models

import (
	"time"

	"gorm.io/gorm"
)

type TimesheetEntry struct {
	ID             string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrganizationID string    `gorm:"type:varchar(36);not null;index" json:"organization_id"`
	UserID         string    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	ProjectID      string    `gorm:"type:varchar(36);not null;index" json:"project_id"`
	TaskID         *string   `gorm:"type:varchar(36);index" json:"task_id"`
	Date           time.Time `gorm:"not null;index" json:"date"`
	Minutes        int       `gorm:"not null" json:"minutes"`
	Billable       bool      `gorm:"not null" json:"billable"`
	HourlyRate     *float64  `json:"hourly_rate"`
	Notes          string    `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Task    *Task    `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (e *TimesheetEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = newID()
	}
	return nil
}

package models

import "time"

// TaskAssignee is the join row behind Task.Assignees.
type TaskAssignee struct {
	TaskID    string    `gorm:"type:varchar(36);primaryKey" json:"task_id"`
	UserID    string    `gorm:"type:varchar(36);primaryKey;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

package repository

import (
	"time"

	"github.com/yukikurage/projecttime-api/internal/models"
	"github.com/yukikurage/projecttime-api/internal/ordering"
	"github.com/yukikurage/projecttime-api/internal/utils"
)

// Every repository call that reads or writes tenant data takes the
// organization id explicitly; no method can reach another tenant's rows.

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create inserts a task and its assignee rows in one transaction
	Create(task *models.Task, assigneeIDs []string) error

	// FindByID finds a task by ID with optional preloading
	FindByID(organizationID, id string, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination in listing order
	List(filter TaskFilter) ([]models.Task, int64, error)

	// ListByProject returns every task of a project with assignees loaded
	ListByProject(organizationID, projectID string) ([]models.Task, error)

	// ListRecentByProject returns the newest tasks of a project
	ListRecentByProject(organizationID, projectID string, limit int) ([]models.Task, error)

	// MaxOrderIndex reports the largest order_index in a lane and whether the
	// lane has any task at all
	MaxOrderIndex(lane ordering.LaneKey) (int, bool, error)

	// Update saves scalar fields of a task and, when assigneeIDs is non-nil,
	// swaps its assignee set in the same transaction
	Update(task *models.Task, assigneeIDs *[]string) error

	// Delete removes a task and its assignee rows
	Delete(organizationID, id string) error

	// ApplyOrder writes order_index changes in one transaction
	ApplyOrder(organizationID string, changes []ordering.Change, normalize bool) ([]string, error)

	CountSubtasks(organizationID, id string) (int64, error)
	CountTimesheetEntries(organizationID, id string) (int64, error)

	// CountByStatus groups a project's tasks by status
	CountByStatus(organizationID, projectID string) (map[models.TaskStatus]int64, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	OrganizationID string
	ProjectID      string
	Status         *models.TaskStatus
	AssigneeID     string
	Search         string
	Pagination     utils.PaginationParams
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	Create(project *models.Project) error
	FindByID(organizationID, id string, preload ...string) (*models.Project, error)
	FindByCode(organizationID, code string) (*models.Project, error)
	List(filter ProjectFilter) ([]models.Project, int64, error)
	Update(project *models.Project) error

	// Deactivate soft deletes a project
	Deactivate(organizationID, id string) error

	// TimeTotals sums logged and billable minutes for a project
	TimeTotals(organizationID, id string) (total int64, billable int64, err error)
}

// ProjectFilter holds filtering options for listing projects
type ProjectFilter struct {
	OrganizationID string
	Status         *models.ProjectStatus
	ClientID       string
	Search         string
	Pagination     utils.PaginationParams
}

// ClientRepository defines the interface for client data access
type ClientRepository interface {
	Create(client *models.Client) error
	FindByID(organizationID, id string, preload ...string) (*models.Client, error)
	List(filter ClientFilter) ([]models.Client, int64, error)
	Update(client *models.Client) error

	// Delete detaches the client's projects and removes the client
	Delete(organizationID, id string) error
}

// ClientFilter holds filtering options for listing clients
type ClientFilter struct {
	OrganizationID string
	Search         string
	Pagination     utils.PaginationParams
}

// TimesheetRepository defines the interface for timesheet entry data access
type TimesheetRepository interface {
	Create(entry *models.TimesheetEntry) error
	FindByID(organizationID, id string, preload ...string) (*models.TimesheetEntry, error)
	List(filter TimesheetFilter) ([]models.TimesheetEntry, int64, error)
	Update(entry *models.TimesheetEntry) error
	Delete(organizationID, id string) error
}

// TimesheetFilter holds filtering options for listing timesheet entries.
// From and To are inclusive.
type TimesheetFilter struct {
	OrganizationID string
	UserID         string
	ProjectID      string
	TaskID         string
	From           *time.Time
	To             *time.Time
	Pagination     *utils.PaginationParams
}

// OrganizationRepository defines the interface for organization data access
type OrganizationRepository interface {
	// FindByID finds an organization by ID
	FindByID(id string, preload ...string) (*models.Organization, error)

	// SlugExists reports whether a slug is taken
	SlugExists(slug string) (bool, error)

	// Update updates an organization
	Update(org *models.Organization) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// CreateOrganizationWithAdmin creates an organization and its first user
	// within a single transaction.
	CreateOrganizationWithAdmin(org *models.Organization, user *models.User) error

	// Create creates a user inside an existing organization
	Create(user *models.User) error

	// FindByID finds a user of the organization by ID
	FindByID(organizationID, id string) (*models.User, error)

	// FindActiveByEmail finds the active user for a login email
	FindActiveByEmail(email string) (*models.User, error)

	// EmailExists reports whether any user already uses email
	EmailExists(email string) (bool, error)

	// ListActive lists the active users of an organization
	ListActive(organizationID string) ([]models.User, error)

	// CountActiveByIDs counts how many of the given user IDs are active users of the organization
	CountActiveByIDs(organizationID string, ids []string) (int64, error)

	// TouchLastLogin records a successful login
	TouchLastLogin(user *models.User, at time.Time) error
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/projecttime-api/internal/constants"
	"github.com/yukikurage/projecttime-api/internal/events"
	"github.com/yukikurage/projecttime-api/internal/logger"
	"github.com/yukikurage/projecttime-api/internal/models"
	"github.com/yukikurage/projecttime-api/internal/ordering"
	"github.com/yukikurage/projecttime-api/internal/repository"
	"github.com/yukikurage/projecttime-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrParentTaskNotFound  = errors.New("parent task not found")
	ErrAssigneeNotFound    = errors.New("one or more assignees not found")
	ErrTaskSelfParent      = errors.New("task cannot be its own parent")
	ErrTaskCycle           = errors.New("parent would create a cycle in the task hierarchy")
	ErrTaskTooDeep         = errors.New("task hierarchy is too deep")
	ErrTaskHasSubtasks     = errors.New("cannot delete task with subtasks")
	ErrTaskHasTimeEntries  = errors.New("cannot delete task with time entries")
	ErrTitleRequired       = errors.New("title is required")
	ErrTitleEmpty          = errors.New("title cannot be empty")
	ErrInvalidTaskStatus   = errors.New("invalid task status")
	ErrInvalidTaskPriority = errors.New("invalid task priority")
	ErrTooManyTags         = errors.New("too many tags")
	ErrTooManyAssignees    = errors.New("too many assignees")
	ErrInvalidEstimate     = errors.New("estimated hours cannot be negative")
	ErrInvalidOrderIndex   = errors.New("order index cannot be negative")
	ErrNothingToReorder    = errors.New("at least one task is required")

	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo      repository.TaskRepository
	projectRepo   repository.ProjectRepository
	userRepo      repository.UserRepository
	timesheetRepo repository.TimesheetRepository
	publisher     events.Publisher
	generator     TaskGenerator
}

// NewTaskService creates a new TaskService. generator may be nil when no AI
// provider is configured.
func NewTaskService(
	taskRepo repository.TaskRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	timesheetRepo repository.TimesheetRepository,
	publisher events.Publisher,
	generator TaskGenerator,
) *TaskService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &TaskService{
		taskRepo:      taskRepo,
		projectRepo:   projectRepo,
		userRepo:      userRepo,
		timesheetRepo: timesheetRepo,
		publisher:     publisher,
		generator:     generator,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	OrganizationID string
	ActorID        string
	ProjectID      string
	ParentID       *string
	Title          string
	Description    string
	Status         models.TaskStatus
	Priority       models.TaskPriority
	Tags           []string
	DueDate        *time.Time
	EstimatedHours *int
	AssigneeIDs    []string

	// OrderIndex places the task explicitly; siblings are not renumbered.
	OrderIndex *int
}

// UpdateTaskInput represents a partial update. Nil fields are left unchanged.
type UpdateTaskInput struct {
	Title               *string
	Description         *string
	Status              *models.TaskStatus
	Priority            *models.TaskPriority
	Tags                *[]string
	DueDate             *time.Time
	ClearDueDate        bool
	EstimatedHours      *int
	ClearEstimatedHours bool
	ParentID            *string
	ClearParent         bool
	AssigneeIDs         *[]string
	OrderIndex          *int
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	OrganizationID string
	ProjectID      string
	Status         *models.TaskStatus
	AssigneeID     string
	Search         string
	Pagination     utils.PaginationParams
}

// ReorderTasksInput carries a bulk reorder request
type ReorderTasksInput struct {
	OrganizationID string
	ActorID        string
	Changes        []ordering.Change

	// Normalize re-sequences every touched lane to 0..n-1 after applying Changes.
	Normalize bool
}

// Kanban is a project's board projection
type Kanban struct {
	Project *models.Project
	Board   ordering.Board
}

// CreateTask validates references and appends the task to its lane unless an
// explicit order index is given.
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, ErrTitleRequired
	}
	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if err := validateTaskFields(input.Status, input.Priority, input.Tags, input.EstimatedHours, input.OrderIndex); err != nil {
		return nil, err
	}

	if _, err := s.projectRepo.FindByID(input.OrganizationID, input.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if input.ParentID != nil {
		if _, err := s.findParent(input.OrganizationID, input.ProjectID, *input.ParentID); err != nil {
			return nil, err
		}
	}

	assigneeIDs, err := s.validateAssignees(input.OrganizationID, input.AssigneeIDs)
	if err != nil {
		return nil, err
	}

	orderIndex, err := s.resolveOrderIndex(ordering.LaneKey{
		OrganizationID: input.OrganizationID,
		ProjectID:      input.ProjectID,
		Status:         input.Status,
	}, input.OrderIndex)
	if err != nil {
		return nil, err
	}

	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}

	task := &models.Task{
		OrganizationID: input.OrganizationID,
		ProjectID:      input.ProjectID,
		ParentID:       input.ParentID,
		Title:          input.Title,
		Description:    input.Description,
		Status:         input.Status,
		Priority:       input.Priority,
		Tags:           tags,
		DueDate:        input.DueDate,
		EstimatedHours: input.EstimatedHours,
		OrderIndex:     orderIndex,
	}

	if err := s.taskRepo.Create(task, assigneeIDs); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	publish(ctx, s.publisher, events.TaskEvent{
		Type:           events.TaskCreated,
		OrganizationID: task.OrganizationID,
		ProjectID:      task.ProjectID,
		TaskID:         task.ID,
		ActorID:        input.ActorID,
		OccurredAt:     time.Now(),
	})

	return s.taskRepo.FindByID(input.OrganizationID, task.ID, "Project", "Assignees")
}

// ListTasks returns tasks in listing order: lane rank, order index, newest first.
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, int64, error) {
	tasks, total, err := s.taskRepo.List(repository.TaskFilter{
		OrganizationID: input.OrganizationID,
		ProjectID:      input.ProjectID,
		Status:         input.Status,
		AssigneeID:     input.AssigneeID,
		Search:         input.Search,
		Pagination:     input.Pagination,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	// the store pages by the same key; this keeps ties stable across drivers
	ordering.SortListing(tasks)
	return tasks, total, nil
}

// GetTask returns a task with related data
func (s *TaskService) GetTask(organizationID, taskID string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(organizationID, taskID, "Project", "Parent", "Subtasks", "Assignees")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	ordering.SortLane(task.Subtasks)

	recent := utils.NewPaginationParams(1, constants.RecentItemsLimit, constants.RecentItemsLimit)
	entries, _, err := s.timesheetRepo.List(repository.TimesheetFilter{
		OrganizationID: organizationID,
		TaskID:         taskID,
		Pagination:     &recent,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load time entries: %w", err)
	}
	task.TimesheetEntries = entries

	return task, nil
}

// GetKanban projects a project's tasks onto the four lanes. Tasks whose
// status is not a lane are left off the board and logged.
func (s *TaskService) GetKanban(ctx context.Context, organizationID, projectID string) (*Kanban, error) {
	project, err := s.projectRepo.FindByID(organizationID, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	tasks, err := s.taskRepo.ListByProject(organizationID, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project tasks: %w", err)
	}

	board, dropped := ordering.Project(tasks)
	logger.FromContext(ctx).Debug("Built kanban board",
		"project_id", projectID,
		"placed", board.Len(),
		"dropped", len(dropped),
	)
	for _, t := range dropped {
		logger.FromContext(ctx).Warn("Task with unknown status left off board",
			"task_id", t.ID,
			"project_id", projectID,
			"status", t.Status,
		)
	}

	return &Kanban{Project: project, Board: board}, nil
}

// ReorderTasks applies a bulk reorder atomically. When any referenced task is
// missing from the organization nothing is written.
func (s *TaskService) ReorderTasks(ctx context.Context, input ReorderTasksInput) error {
	if len(input.Changes) == 0 {
		return ErrNothingToReorder
	}
	for _, c := range input.Changes {
		if c.OrderIndex < 0 {
			return ErrInvalidOrderIndex
		}
	}

	written, err := s.taskRepo.ApplyOrder(input.OrganizationID, input.Changes, input.Normalize)
	if err != nil {
		if errors.Is(err, repository.ErrMissingTasks) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to reorder tasks: %w", err)
	}

	publish(ctx, s.publisher, events.TaskEvent{
		Type:           events.TaskReordered,
		OrganizationID: input.OrganizationID,
		TaskIDs:        written,
		ActorID:        input.ActorID,
		OccurredAt:     time.Now(),
	})

	return nil
}

// UpdateTask applies a partial update. A status change moves the task to
// another lane but keeps its order index.
func (s *TaskService) UpdateTask(ctx context.Context, organizationID, actorID, taskID string, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(organizationID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.Tags != nil {
		task.Tags = *input.Tags
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.ClearEstimatedHours {
		task.EstimatedHours = nil
	} else if input.EstimatedHours != nil {
		task.EstimatedHours = input.EstimatedHours
	}
	if input.OrderIndex != nil {
		task.OrderIndex = *input.OrderIndex
	}

	if err := validateTaskFields(task.Status, task.Priority, task.Tags, task.EstimatedHours, &task.OrderIndex); err != nil {
		return nil, err
	}

	if input.ClearParent {
		task.ParentID = nil
	} else if input.ParentID != nil {
		if err := s.checkParent(task, *input.ParentID); err != nil {
			return nil, err
		}
		task.ParentID = input.ParentID
	}

	var assigneeIDs *[]string
	if input.AssigneeIDs != nil {
		ids, err := s.validateAssignees(organizationID, *input.AssigneeIDs)
		if err != nil {
			return nil, err
		}
		assigneeIDs = &ids
	}

	if err := s.taskRepo.Update(task, assigneeIDs); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	publish(ctx, s.publisher, events.TaskEvent{
		Type:           events.TaskUpdated,
		OrganizationID: organizationID,
		ProjectID:      task.ProjectID,
		TaskID:         task.ID,
		ActorID:        actorID,
		OccurredAt:     time.Now(),
	})

	return s.taskRepo.FindByID(organizationID, task.ID, "Project", "Parent", "Assignees")
}

// DeleteTask removes a task that has neither subtasks nor time entries.
func (s *TaskService) DeleteTask(ctx context.Context, organizationID, actorID, taskID string) error {
	task, err := s.taskRepo.FindByID(organizationID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	subtasks, err := s.taskRepo.CountSubtasks(organizationID, taskID)
	if err != nil {
		return fmt.Errorf("failed to count subtasks: %w", err)
	}
	if subtasks > 0 {
		return ErrTaskHasSubtasks
	}

	entries, err := s.taskRepo.CountTimesheetEntries(organizationID, taskID)
	if err != nil {
		return fmt.Errorf("failed to count time entries: %w", err)
	}
	if entries > 0 {
		return ErrTaskHasTimeEntries
	}

	if err := s.taskRepo.Delete(organizationID, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	publish(ctx, s.publisher, events.TaskEvent{
		Type:           events.TaskDeleted,
		OrganizationID: organizationID,
		ProjectID:      task.ProjectID,
		TaskID:         taskID,
		ActorID:        actorID,
		OccurredAt:     time.Now(),
	})

	return nil
}

// GenerateTasksInput represents input for AI task generation
type GenerateTasksInput struct {
	OrganizationID string
	ProjectID      string
	Text           string
}

// GenerateTasks asks the AI provider for task suggestions within a project.
// Suggestions are returned to the caller and never stored.
func (s *TaskService) GenerateTasks(ctx context.Context, input GenerateTasksInput) ([]GeneratedTask, error) {
	if s.generator == nil {
		return nil, ErrAIServiceNotConfigured
	}

	project, err := s.projectRepo.FindByID(input.OrganizationID, input.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	aiTasks, err := s.generator.GenerateTasksFromText(ctx, project.Name, input.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(aiTasks) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(aiTasks) > constants.MaxAIGeneratedTasks {
		aiTasks = aiTasks[:constants.MaxAIGeneratedTasks]
	}

	validTasks := make([]GeneratedTask, 0, len(aiTasks))
	cutoff := time.Now().Add(-24 * time.Hour)
	for _, aiTask := range aiTasks {
		aiTask.Title = strings.TrimSpace(aiTask.Title)
		if aiTask.Title == "" {
			continue
		}

		if aiTask.DueDate != nil && aiTask.DueDate.Before(cutoff) {
			aiTask.DueDate = nil
		}
		if !aiTask.Priority.Valid() {
			aiTask.Priority = models.PriorityMedium
		}

		validTasks = append(validTasks, aiTask)
	}

	if len(validTasks) == 0 {
		return nil, ErrAINoValidTasks
	}

	return validTasks, nil
}

func validateTaskFields(status models.TaskStatus, priority models.TaskPriority, tags []string, estimate *int, orderIndex *int) error {
	if !status.Valid() {
		return ErrInvalidTaskStatus
	}
	if !priority.Valid() {
		return ErrInvalidTaskPriority
	}
	if len(tags) > constants.MaxTaskTags {
		return ErrTooManyTags
	}
	if estimate != nil && *estimate < 0 {
		return ErrInvalidEstimate
	}
	if orderIndex != nil && *orderIndex < 0 {
		return ErrInvalidOrderIndex
	}
	return nil
}

func (s *TaskService) resolveOrderIndex(lane ordering.LaneKey, explicit *int) (int, error) {
	if explicit != nil {
		return *explicit, nil
	}

	maxIndex, found, err := s.taskRepo.MaxOrderIndex(lane)
	if err != nil {
		return 0, fmt.Errorf("failed to compute order index: %w", err)
	}
	return ordering.NextIndex(maxIndex, !found), nil
}

// findParent loads a parent candidate that must live in the same project.
func (s *TaskService) findParent(organizationID, projectID, parentID string) (*models.Task, error) {
	parent, err := s.taskRepo.FindByID(organizationID, parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParentTaskNotFound
		}
		return nil, fmt.Errorf("failed to find parent task: %w", err)
	}
	if parent.ProjectID != projectID {
		return nil, ErrParentTaskNotFound
	}
	return parent, nil
}

// checkParent rejects a parent that is the task itself or one of its
// descendants. The ancestry walk is bounded by MaxTaskDepth.
func (s *TaskService) checkParent(task *models.Task, parentID string) error {
	if parentID == task.ID {
		return ErrTaskSelfParent
	}

	parent, err := s.findParent(task.OrganizationID, task.ProjectID, parentID)
	if err != nil {
		return err
	}

	current := parent
	for depth := 1; current.ParentID != nil; depth++ {
		if *current.ParentID == task.ID {
			return ErrTaskCycle
		}
		if depth >= constants.MaxTaskDepth {
			return ErrTaskTooDeep
		}

		next, err := s.taskRepo.FindByID(task.OrganizationID, *current.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("failed to walk task ancestry: %w", err)
		}
		current = next
	}
	return nil
}

func (s *TaskService) validateAssignees(organizationID string, ids []string) ([]string, error) {
	ids = uniqueStrings(ids)
	if len(ids) > constants.MaxTaskAssignees {
		return nil, ErrTooManyAssignees
	}
	if len(ids) == 0 {
		return ids, nil
	}

	count, err := s.userRepo.CountActiveByIDs(organizationID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to verify assignees: %w", err)
	}
	if int(count) != len(ids) {
		return nil, ErrAssigneeNotFound
	}
	return ids, nil
}

package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/projecttime-api/internal/constants"
	"github.com/yukikurage/projecttime-api/internal/dto"
	apierrors "github.com/yukikurage/projecttime-api/internal/errors"
	"github.com/yukikurage/projecttime-api/internal/models"
	"github.com/yukikurage/projecttime-api/internal/ordering"
	"github.com/yukikurage/projecttime-api/internal/services"
	"github.com/yukikurage/projecttime-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the caller's tasks in listing order
func (h *TaskHandler) ListTasks(c *gin.Context) {
	orgID, _, ok := caller(c)
	if !ok {
		return
	}

	var status *models.TaskStatus
	if raw := c.Query("status"); raw != "" {
		s := models.TaskStatus(raw)
		if !s.Valid() {
			apierrors.BadRequest(c, fmt.Sprintf("Invalid status %q", raw))
			return
		}
		status = &s
	}

	params := utils.GetPaginationParams(c, constants.DefaultTaskPageSize)
	tasks, total, err := h.taskService.ListTasks(services.ListTasksInput{
		OrganizationID: orgID,
		ProjectID:      c.Query("project_id"),
		Status:         status,
		AssigneeID:     c.Query("assignee_id"),
		Search:         c.Query("search"),
		Pagination:     params,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(tasks, total, params, dto.ToTaskDTO))
}

// GetTask returns a task with its parent, subtasks and latest time entries
func (h *TaskHandler) GetTask(c *gin.Context) {
	orgID, _, ok := caller(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(orgID, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDetailDTO(*task))
}

// GetKanban returns the board projection of a project
func (h *TaskHandler) GetKanban(c *gin.Context) {
	orgID, _, ok := caller(c)
	if !ok {
		return
	}

	kanban, err := h.taskService.GetKanban(c.Request.Context(), orgID, c.Param("project_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToKanbanDTO(kanban))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	orgID, userID, ok := caller(c)
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		ProjectID      string              `json:"project_id" binding:"required"`
		ParentID       *string             `json:"parent_id"`
		Title          string              `json:"title" binding:"required,max=255"`
		Description    string              `json:"description"`
		Status         models.TaskStatus   `json:"status" binding:"omitempty,task_status"`
		Priority       models.TaskPriority `json:"priority" binding:"omitempty,task_priority"`
		Tags           []string            `json:"tags" binding:"omitempty,max=10,dive,max=50"`
		DueDate        *time.Time          `json:"due_date"`
		EstimatedHours *int                `json:"estimated_hours" binding:"omitempty,min=0"`
		AssigneeIDs    []string            `json:"assignee_ids" binding:"omitempty,max=20"`
		OrderIndex     *int                `json:"order_index" binding:"omitempty,min=0"`
	}

	var req CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		OrganizationID: orgID,
		ActorID:        userID,
		ProjectID:      req.ProjectID,
		ParentID:       req.ParentID,
		Title:          req.Title,
		Description:    req.Description,
		Status:         req.Status,
		Priority:       req.Priority,
		Tags:           req.Tags,
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
		AssigneeIDs:    req.AssigneeIDs,
		OrderIndex:     req.OrderIndex,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update. Sending null for due_date,
// estimated_hours or parent_id clears the field.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	orgID, userID, ok := caller(c)
	if !ok {
		return
	}

	type UpdateTaskRequest struct {
		Title          *string              `json:"title" binding:"omitempty,max=255"`
		Description    *string              `json:"description"`
		Status         *models.TaskStatus   `json:"status" binding:"omitempty,task_status"`
		Priority       *models.TaskPriority `json:"priority" binding:"omitempty,task_priority"`
		Tags           *[]string            `json:"tags" binding:"omitempty,max=10,dive,max=50"`
		DueDate        *time.Time           `json:"due_date"`
		EstimatedHours *int                 `json:"estimated_hours" binding:"omitempty,min=0"`
		ParentID       *string              `json:"parent_id"`
		AssigneeIDs    *[]string            `json:"assignee_ids" binding:"omitempty,max=20"`
		OrderIndex     *int                 `json:"order_index" binding:"omitempty,min=0"`
	}

	var req UpdateTaskRequest
	raw, ok := bindPatch(c, &req)
	if !ok {
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), orgID, userID, c.Param("id"), services.UpdateTaskInput{
		Title:               req.Title,
		Description:         req.Description,
		Status:              req.Status,
		Priority:            req.Priority,
		Tags:                req.Tags,
		DueDate:             req.DueDate,
		ClearDueDate:        isNull(raw, "due_date"),
		EstimatedHours:      req.EstimatedHours,
		ClearEstimatedHours: isNull(raw, "estimated_hours"),
		ParentID:            req.ParentID,
		ClearParent:         isNull(raw, "parent_id"),
		AssigneeIDs:         req.AssigneeIDs,
		OrderIndex:          req.OrderIndex,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// ReorderTasks applies a batch of order_index changes atomically
func (h *TaskHandler) ReorderTasks(c *gin.Context) {
	orgID, userID, ok := caller(c)
	if !ok {
		return
	}

	type TaskOrder struct {
		ID         string `json:"id" binding:"required"`
		OrderIndex *int   `json:"order_index" binding:"required,min=0"`
	}
	type ReorderRequest struct {
		Tasks     []TaskOrder `json:"tasks" binding:"required,min=1,dive"`
		Normalize bool        `json:"normalize"`
	}

	var req ReorderRequest
	if !bindJSON(c, &req) {
		return
	}

	changes := make([]ordering.Change, len(req.Tasks))
	for i, t := range req.Tasks {
		changes[i] = ordering.Change{TaskID: t.ID, OrderIndex: *t.OrderIndex}
	}

	if err := h.taskService.ReorderTasks(c.Request.Context(), services.ReorderTasksInput{
		OrganizationID: orgID,
		ActorID:        userID,
		Changes:        changes,
		Normalize:      req.Normalize,
	}); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Tasks reordered successfully"})
}

// DeleteTask deletes a task without subtasks or time entries
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	orgID, userID, ok := caller(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), orgID, userID, c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Task deleted successfully"})
}

// GenerateTasks asks the AI provider for task suggestions. Nothing is stored.
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	orgID, _, ok := caller(c)
	if !ok {
		return
	}

	type GenerateTasksRequest struct {
		ProjectID string `json:"project_id" binding:"required"`
		Text      string `json:"text" binding:"required,max=5000"`
	}

	var req GenerateTasksRequest
	if !bindJSON(c, &req) {
		return
	}

	tasks, err := h.taskService.GenerateTasks(c.Request.Context(), services.GenerateTasksInput{
		OrganizationID: orgID,
		ProjectID:      req.ProjectID,
		Text:           req.Text,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToGeneratedTaskDTOs(tasks),
		"count": len(tasks),
	})
}

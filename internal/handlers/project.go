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
	"github.com/yukikurage/projecttime-api/internal/services"
	"github.com/yukikurage/projecttime-api/internal/utils"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// ListProjects returns the active projects of the caller's organization
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	orgID, _, ok := caller(c)
	if !ok {
		return
	}

	var status *models.ProjectStatus
	if raw := c.Query("status"); raw != "" {
		s := models.ProjectStatus(raw)
		if !s.Valid() {
			apierrors.BadRequest(c, fmt.Sprintf("Invalid status %q", raw))
			return
		}
		status = &s
	}

	params := utils.GetPaginationParams(c, constants.DefaultPageSize)
	projects, total, err := h.projectService.ListProjects(services.ListProjectsInput{
		OrganizationID: orgID,
		Status:         status,
		ClientID:       c.Query("client_id"),
		Search:         c.Query("search"),
		Pagination:     params,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(projects, total, params, dto.ToProjectDTO))
}

func (h *ProjectHandler) GetProject(c *gin.Context) {
	orgID, _, ok := caller(c)
	if !ok {
		return
	}

	project, err := h.projectService.GetProject(orgID, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDetailDTO(*project))
}

func (h *ProjectHandler) GetProjectSummary(c *gin.Context) {
	orgID, _, ok := caller(c)
	if !ok {
		return
	}

	summary, err := h.projectService.GetProjectSummary(orgID, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectSummaryDTO(summary))
}

func (h *ProjectHandler) CreateProject(c *gin.Context) {
	orgID, _, ok := caller(c)
	if !ok {
		return
	}

	type CreateProjectRequest struct {
		ClientID     *string              `json:"client_id"`
		Name         string               `json:"name" binding:"required,max=255"`
		Code         string               `json:"code" binding:"required,max=50"`
		Description  string               `json:"description"`
		Status       models.ProjectStatus `json:"status" binding:"omitempty,project_status"`
		BudgetHours  *int                 `json:"budget_hours" binding:"omitempty,min=0"`
		BudgetAmount *float64             `json:"budget_amount" binding:"omitempty,min=0"`
		HourlyRate   *float64             `json:"hourly_rate" binding:"omitempty,min=0"`
		StartDate    *string              `json:"start_date"`
		EndDate      *string              `json:"end_date"`
		Color        string               `json:"color" binding:"omitempty,hexcolor"`
	}

	var req CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	startDate, ok := optionalDate(c, "start_date", req.StartDate)
	if !ok {
		return
	}
	endDate, ok := optionalDate(c, "end_date", req.EndDate)
	if !ok {
		return
	}

	project, err := h.projectService.CreateProject(services.CreateProjectInput{
		OrganizationID: orgID,
		ClientID:       req.ClientID,
		Name:           req.Name,
		Code:           req.Code,
		Description:    req.Description,
		Status:         req.Status,
		BudgetHours:    req.BudgetHours,
		BudgetAmount:   req.BudgetAmount,
		HourlyRate:     req.HourlyRate,
		StartDate:      startDate,
		EndDate:        endDate,
		Color:          req.Color,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// UpdateProject applies a partial update. client_id: null detaches the client.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	orgID, _, ok := caller(c)
	if !ok {
		return
	}

	type UpdateProjectRequest struct {
		ClientID     *string               `json:"client_id"`
		Name         *string               `json:"name" binding:"omitempty,max=255"`
		Code         *string               `json:"code" binding:"omitempty,max=50"`
		Description  *string               `json:"description"`
		Status       *models.ProjectStatus `json:"status" binding:"omitempty,project_status"`
		BudgetHours  *int                  `json:"budget_hours" binding:"omitempty,min=0"`
		BudgetAmount *float64              `json:"budget_amount" binding:"omitempty,min=0"`
		HourlyRate   *float64              `json:"hourly_rate" binding:"omitempty,min=0"`
		StartDate    *string               `json:"start_date"`
		EndDate      *string               `json:"end_date"`
		Color        *string               `json:"color" binding:"omitempty,hexcolor"`
	}

	var req UpdateProjectRequest
	raw, ok := bindPatch(c, &req)
	if !ok {
		return
	}

	startDate, ok := optionalDate(c, "start_date", req.StartDate)
	if !ok {
		return
	}
	endDate, ok := optionalDate(c, "end_date", req.EndDate)
	if !ok {
		return
	}

	project, err := h.projectService.UpdateProject(orgID, c.Param("id"), services.UpdateProjectInput{
		ClientID:     req.ClientID,
		ClearClient:  isNull(raw, "client_id"),
		Name:         req.Name,
		Code:         req.Code,
		Description:  req.Description,
		Status:       req.Status,
		BudgetHours:  req.BudgetHours,
		BudgetAmount: req.BudgetAmount,
		HourlyRate:   req.HourlyRate,
		StartDate:    startDate,
		EndDate:      endDate,
		Color:        req.Color,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// DeleteProject deactivates a project; its tasks and entries are kept
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	orgID, _, ok := caller(c)
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(orgID, c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Project deleted successfully"})
}

// optionalDate parses a date field from a request body when set
func optionalDate(c *gin.Context, field string, value *string) (*time.Time, bool) {
	if value == nil || *value == "" {
		return nil, true
	}
	t, err := parseDate(*value)
	if err != nil {
		apierrors.BadRequest(c, fmt.Sprintf("Invalid %s, expected YYYY-MM-DD", field))
		return nil, false
	}
	return &t, true
}

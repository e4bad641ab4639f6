package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/projecttime-api/internal/constants"
	"github.com/yukikurage/projecttime-api/internal/dto"
	apierrors "github.com/yukikurage/projecttime-api/internal/errors"
	"github.com/yukikurage/projecttime-api/internal/middleware"
	"github.com/yukikurage/projecttime-api/internal/services"
	"github.com/yukikurage/projecttime-api/internal/utils"
)

type TimesheetHandler struct {
	timesheetService *services.TimesheetService
}

func NewTimesheetHandler(timesheetService *services.TimesheetService) *TimesheetHandler {
	return &TimesheetHandler{
		timesheetService: timesheetService,
	}
}

// ListEntries returns one page of entries plus totals for that page. Members
// without a managing role only ever see their own entries.
func (h *TimesheetHandler) ListEntries(c *gin.Context) {
	orgID, userID, ok := caller(c)
	if !ok {
		return
	}

	target := c.Query("user_id")
	if !middleware.GetRole(c).CanManage() {
		if target != "" && target != userID {
			apierrors.Forbidden(c, "Not allowed to view this user's timesheet")
			return
		}
		target = userID
	}

	from, ok := optionalDateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := optionalDateQuery(c, "to")
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c, constants.DefaultEntryPageSize)
	entries, total, summary, err := h.timesheetService.ListEntries(services.ListEntriesInput{
		OrganizationID: orgID,
		UserID:         target,
		ProjectID:      c.Query("project_id"),
		From:           from,
		To:             to,
		Pagination:     params,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimesheetListResponse(entries, total, params, summary))
}

func (h *TimesheetHandler) GetEntry(c *gin.Context) {
	orgID, userID, ok := caller(c)
	if !ok {
		return
	}

	entry, err := h.timesheetService.GetEntry(orgID, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if entry.UserID != userID && !middleware.GetRole(c).CanManage() {
		apierrors.Forbidden(c, "Not allowed to view this timesheet entry")
		return
	}

	c.JSON(http.StatusOK, dto.ToTimesheetEntryDTO(*entry))
}

// CreateEntry logs time for the caller
func (h *TimesheetHandler) CreateEntry(c *gin.Context) {
	orgID, userID, ok := caller(c)
	if !ok {
		return
	}

	type CreateEntryRequest struct {
		ProjectID  string   `json:"project_id" binding:"required"`
		TaskID     *string  `json:"task_id"`
		Date       string   `json:"date" binding:"required"`
		Minutes    int      `json:"minutes" binding:"required,min=1,max=1440"`
		Billable   *bool    `json:"billable"`
		HourlyRate *float64 `json:"hourly_rate" binding:"omitempty,min=0"`
		Notes      string   `json:"notes"`
	}

	var req CreateEntryRequest
	if !bindJSON(c, &req) {
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		apierrors.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
		return
	}

	entry, err := h.timesheetService.CreateEntry(services.CreateEntryInput{
		OrganizationID: orgID,
		UserID:         userID,
		ProjectID:      req.ProjectID,
		TaskID:         req.TaskID,
		Date:           date,
		Minutes:        req.Minutes,
		Billable:       req.Billable,
		HourlyRate:     req.HourlyRate,
		Notes:          req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTimesheetEntryDTO(*entry))
}

// UpdateEntry applies a partial update. task_id: null detaches the task.
func (h *TimesheetHandler) UpdateEntry(c *gin.Context) {
	orgID, _, ok := caller(c)
	if !ok {
		return
	}

	type UpdateEntryRequest struct {
		ProjectID  *string  `json:"project_id"`
		TaskID     *string  `json:"task_id"`
		Date       *string  `json:"date"`
		Minutes    *int     `json:"minutes" binding:"omitempty,min=1,max=1440"`
		Billable   *bool    `json:"billable"`
		HourlyRate *float64 `json:"hourly_rate" binding:"omitempty,min=0"`
		Notes      *string  `json:"notes"`
	}

	var req UpdateEntryRequest
	raw, ok := bindPatch(c, &req)
	if !ok {
		return
	}

	date, ok := optionalDate(c, "date", req.Date)
	if !ok {
		return
	}

	if !h.authorizeEntry(c, orgID) {
		return
	}

	entry, err := h.timesheetService.UpdateEntry(orgID, c.Param("id"), services.UpdateEntryInput{
		ProjectID:  req.ProjectID,
		TaskID:     req.TaskID,
		ClearTask:  isNull(raw, "task_id"),
		Date:       date,
		Minutes:    req.Minutes,
		Billable:   req.Billable,
		HourlyRate: req.HourlyRate,
		Notes:      req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimesheetEntryDTO(*entry))
}

func (h *TimesheetHandler) DeleteEntry(c *gin.Context) {
	orgID, _, ok := caller(c)
	if !ok {
		return
	}

	if !h.authorizeEntry(c, orgID) {
		return
	}

	if err := h.timesheetService.DeleteEntry(orgID, c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Timesheet entry deleted successfully"})
}

// Weekly returns the Monday-to-Sunday summary for user_id, or the caller
// when no user is given. scope=organization sums every member's time. Only
// managers may read other members' weeks.
func (h *TimesheetHandler) Weekly(c *gin.Context) {
	orgID, userID, ok := caller(c)
	if !ok {
		return
	}

	target := c.DefaultQuery("user_id", userID)
	switch c.Query("scope") {
	case "", "user":
	case "organization":
		target = ""
	default:
		apierrors.BadRequest(c, "Invalid scope, expected user or organization")
		return
	}
	if target != userID && !middleware.GetRole(c).CanManage() {
		apierrors.Forbidden(c, "Not allowed to view this user's timesheet")
		return
	}

	weekStart, ok := optionalDateQuery(c, "week_start")
	if !ok {
		return
	}

	summary, err := h.timesheetService.Weekly(orgID, target, weekStart)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWeeklySummaryDTO(summary))
}

// authorizeEntry allows the entry's author and managers through
func (h *TimesheetHandler) authorizeEntry(c *gin.Context, orgID string) bool {
	entry, err := h.timesheetService.GetEntry(orgID, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return false
	}

	userID, _ := middleware.GetUserID(c)
	if entry.UserID != userID && !middleware.GetRole(c).CanManage() {
		apierrors.Forbidden(c, "Not allowed to modify this timesheet entry")
		return false
	}
	return true
}

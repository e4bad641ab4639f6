package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/yukikurage/projecttime-api/internal/constants"
	apierrors "github.com/yukikurage/projecttime-api/internal/errors"
	"github.com/yukikurage/projecttime-api/internal/logger"
	"github.com/yukikurage/projecttime-api/internal/middleware"
	"github.com/yukikurage/projecttime-api/internal/services"
	"github.com/yukikurage/projecttime-api/internal/validation"
)

const dateLayout = "2006-01-02"

// caller returns the organization and user the request acts for. The
// organization id only ever comes from the bearer token.
func caller(c *gin.Context) (orgID, userID string, ok bool) {
	orgID, hasOrg := middleware.GetOrganizationID(c)
	userID, hasUser := middleware.GetUserID(c)
	if !hasOrg || !hasUser {
		apierrors.Unauthorized(c, "Not authenticated")
		return "", "", false
	}
	return orgID, userID, true
}

// bindJSON binds and validates the body, answering 400 on failure
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

// bindPatch binds a partial update and also returns the raw fields so explicit
// nulls can be told apart from absent fields.
func bindPatch(c *gin.Context, req any) (map[string]json.RawMessage, bool) {
	if err := c.ShouldBindBodyWith(req, binding.JSON); err != nil {
		respondBindError(c, err)
		return nil, false
	}
	var raw map[string]json.RawMessage
	if err := c.ShouldBindBodyWith(&raw, binding.JSON); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return nil, false
	}
	return raw, true
}

func isNull(raw map[string]json.RawMessage, key string) bool {
	value, ok := raw[key]
	return ok && string(value) == "null"
}

func respondBindError(c *gin.Context, err error) {
	if fields := validation.FieldErrors(err); fields != nil {
		apierrors.BadRequestWithDetails(c, "Validation failed", fields)
		return
	}
	apierrors.BadRequest(c, "Invalid request body")
}

// parseDate accepts YYYY-MM-DD or RFC 3339 and returns the time in UTC
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", value)
	}
	return t.UTC(), nil
}

// optionalDateQuery parses a date query parameter when present
func optionalDateQuery(c *gin.Context, key string) (*time.Time, bool) {
	value := c.Query(key)
	if value == "" {
		return nil, true
	}
	t, err := parseDate(value)
	if err != nil {
		apierrors.BadRequest(c, fmt.Sprintf("Invalid %s, expected YYYY-MM-DD", key))
		return nil, false
	}
	return &t, true
}

func optionalBoolQuery(c *gin.Context, key string) (bool, bool) {
	value := c.Query(key)
	if value == "" {
		return false, true
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		apierrors.BadRequest(c, fmt.Sprintf("Invalid %s", key))
		return false, false
	}
	return b, true
}

// respondServiceError maps service sentinels onto the API error envelope
func respondServiceError(c *gin.Context, err error) {
	switch {
	// NotFound
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrParentTaskNotFound),
		errors.Is(err, services.ErrAssigneeNotFound),
		errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrClientNotFound),
		errors.Is(err, services.ErrTimesheetEntryNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrOrganizationNotFound):
		apierrors.NotFound(c, err.Error())

	// Forbidden
	case errors.Is(err, services.ErrTaskSelfParent),
		errors.Is(err, services.ErrTaskCycle),
		errors.Is(err, services.ErrTaskTooDeep),
		errors.Is(err, services.ErrTaskHasSubtasks),
		errors.Is(err, services.ErrTaskHasTimeEntries):
		apierrors.Forbidden(c, err.Error())

	// Conflict
	case errors.Is(err, services.ErrProjectCodeTaken),
		errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, err.Error())

	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c)

	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrPasswordTooLong):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at most %d characters", constants.MaxPasswordLength))

	// Validation
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrInvalidTaskStatus),
		errors.Is(err, services.ErrInvalidTaskPriority),
		errors.Is(err, services.ErrTooManyTags),
		errors.Is(err, services.ErrTooManyAssignees),
		errors.Is(err, services.ErrInvalidEstimate),
		errors.Is(err, services.ErrInvalidOrderIndex),
		errors.Is(err, services.ErrNothingToReorder),
		errors.Is(err, services.ErrProjectNameRequired),
		errors.Is(err, services.ErrProjectCodeRequired),
		errors.Is(err, services.ErrInvalidProjectStatus),
		errors.Is(err, services.ErrInvalidProjectDates),
		errors.Is(err, services.ErrInvalidProjectBudget),
		errors.Is(err, services.ErrClientNameRequired),
		errors.Is(err, services.ErrInvalidMinutes),
		errors.Is(err, services.ErrDateRequired),
		errors.Is(err, services.ErrInvalidDateRange),
		errors.Is(err, services.ErrEmailRequired),
		errors.Is(err, services.ErrNameRequired),
		errors.Is(err, services.ErrInvalidOrganizationName),
		errors.Is(err, services.ErrInvalidCurrency),
		errors.Is(err, services.ErrInvalidTimezone),
		errors.Is(err, services.ErrInvalidLocale),
		errors.Is(err, services.ErrInvalidUserRole),
		errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apierrors.BadRequest(c, err.Error())

	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, err.Error())

	default:
		logger.FromContext(c.Request.Context()).Error("Request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		apierrors.InternalError(c, "")
	}
}

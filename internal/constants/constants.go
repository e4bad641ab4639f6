package constants

// Context keys set by the auth and request id middleware.
const (
	ContextKeyUserID         = "user_id"
	ContextKeyOrganizationID = "organization_id"
	ContextKeyRole           = "role"
	ContextKeyEmail          = "email"
	ContextKeyRequestID      = "request_id"
)

const RequestIDHeader = "X-Request-ID"

// Pagination
const (
	MinPageSize          = 1
	MaxPageSize          = 100
	DefaultPageSize      = 10
	DefaultTaskPageSize  = 50
	DefaultEntryPageSize = 50
)

// Auth
const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

// Tasks
const (
	// MaxTaskDepth bounds the parent chain walk used for cycle detection.
	MaxTaskDepth        = 32
	MaxTaskTags         = 10
	MaxTaskAssignees    = 20
	MaxAIGeneratedTasks = 20
	RecentItemsLimit    = 10
)

// Timesheets
const (
	MaxMinutesPerEntry = 24 * 60
)

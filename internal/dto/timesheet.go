package dto

import (
	"time"

	"github.com/yukikurage/projecttime-api/internal/models"
	"github.com/yukikurage/projecttime-api/internal/services"
	"github.com/yukikurage/projecttime-api/internal/utils"
)

// TimesheetEntryDTO represents a time entry in API responses
type TimesheetEntryDTO struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	ProjectID  string          `json:"project_id"`
	TaskID     *string         `json:"task_id"`
	Date       time.Time       `json:"date"`
	Minutes    int             `json:"minutes"`
	Hours      float64         `json:"hours"`
	Billable   bool            `json:"billable"`
	HourlyRate *float64        `json:"hourly_rate"`
	Notes      string          `json:"notes"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Project    *ProjectRefDTO  `json:"project,omitempty"`
	Task       *TaskRefDTO     `json:"task,omitempty"`
	User       *UserSummaryDTO `json:"user,omitempty"`
}

// TimesheetListResponse is a page of entries plus totals of that page
type TimesheetListResponse struct {
	ListResponse[TimesheetEntryDTO]
	Summary services.TimeSummary `json:"summary"`
}

type DaySummaryDTO struct {
	services.TimeSummary
	Entries []TimesheetEntryDTO `json:"entries"`
}

type WeeklySummaryDTO struct {
	UserID    string                        `json:"user_id"`
	WeekStart time.Time                     `json:"week_start"`
	WeekEnd   time.Time                     `json:"week_end"`
	Totals    services.TimeSummary          `json:"totals"`
	Days      map[string]DaySummaryDTO      `json:"days"`
	Projects  []services.ProjectTimeSummary `json:"projects"`
}

func ToTimesheetEntryDTO(entry models.TimesheetEntry) TimesheetEntryDTO {
	dto := TimesheetEntryDTO{
		ID:         entry.ID,
		UserID:     entry.UserID,
		ProjectID:  entry.ProjectID,
		TaskID:     entry.TaskID,
		Date:       entry.Date,
		Minutes:    entry.Minutes,
		Hours:      float64(entry.Minutes) / 60,
		Billable:   entry.Billable,
		HourlyRate: entry.HourlyRate,
		Notes:      entry.Notes,
		CreatedAt:  entry.CreatedAt,
		UpdatedAt:  entry.UpdatedAt,
	}
	if entry.Project != nil {
		project := ToProjectRefDTO(*entry.Project)
		dto.Project = &project
	}
	if entry.Task != nil {
		task := ToTaskRefDTO(*entry.Task)
		dto.Task = &task
	}
	if entry.User != nil {
		user := ToUserSummaryDTO(*entry.User)
		dto.User = &user
	}
	return dto
}

func ToTimesheetEntryDTOs(entries []models.TimesheetEntry) []TimesheetEntryDTO {
	out := make([]TimesheetEntryDTO, len(entries))
	for i, e := range entries {
		out[i] = ToTimesheetEntryDTO(e)
	}
	return out
}

func ToTimesheetListResponse(entries []models.TimesheetEntry, total int64, params utils.PaginationParams, summary services.TimeSummary) TimesheetListResponse {
	return TimesheetListResponse{
		ListResponse: NewListResponse(entries, total, params, ToTimesheetEntryDTO),
		Summary:      summary,
	}
}

func ToWeeklySummaryDTO(weekly *services.WeeklySummary) WeeklySummaryDTO {
	days := make(map[string]DaySummaryDTO, len(weekly.Days))
	for key, day := range weekly.Days {
		days[key] = DaySummaryDTO{
			TimeSummary: day.TimeSummary,
			Entries:     ToTimesheetEntryDTOs(day.Entries),
		}
	}

	return WeeklySummaryDTO{
		UserID:    weekly.UserID,
		WeekStart: weekly.WeekStart,
		WeekEnd:   weekly.WeekEnd,
		Totals:    weekly.Totals,
		Days:      days,
		Projects:  weekly.Projects,
	}
}

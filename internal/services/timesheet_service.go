package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/yukikurage/projecttime-api/internal/constants"
	"github.com/yukikurage/projecttime-api/internal/models"
	"github.com/yukikurage/projecttime-api/internal/repository"
	"github.com/yukikurage/projecttime-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTimesheetEntryNotFound = errors.New("timesheet entry not found")
	ErrInvalidMinutes         = errors.New("minutes must be between 1 and 1440")
	ErrDateRequired           = errors.New("date is required")
	ErrInvalidDateRange       = errors.New("from must not be after to")
)

const dayLayout = "2006-01-02"

// TimesheetService provides business logic for time tracking.
type TimesheetService struct {
	timesheetRepo repository.TimesheetRepository
	projectRepo   repository.ProjectRepository
	taskRepo      repository.TaskRepository
	now           func() time.Time
}

// NewTimesheetService creates a new TimesheetService.
func NewTimesheetService(
	timesheetRepo repository.TimesheetRepository,
	projectRepo repository.ProjectRepository,
	taskRepo repository.TaskRepository,
) *TimesheetService {
	return &TimesheetService{
		timesheetRepo: timesheetRepo,
		projectRepo:   projectRepo,
		taskRepo:      taskRepo,
		now:           time.Now,
	}
}

type CreateEntryInput struct {
	OrganizationID string
	UserID         string
	ProjectID      string
	TaskID         *string
	Date           time.Time
	Minutes        int
	Billable       *bool
	HourlyRate     *float64
	Notes          string
}

type UpdateEntryInput struct {
	ProjectID  *string
	TaskID     *string
	ClearTask  bool
	Date       *time.Time
	Minutes    *int
	Billable   *bool
	HourlyRate *float64
	Notes      *string
}

type ListEntriesInput struct {
	OrganizationID string
	UserID         string
	ProjectID      string
	From           *time.Time
	To             *time.Time
	Pagination     utils.PaginationParams
}

// TimeSummary totals a set of entries.
type TimeSummary struct {
	TotalMinutes    int     `json:"total_minutes"`
	BillableMinutes int     `json:"billable_minutes"`
	TotalHours      float64 `json:"total_hours"`
	BillableHours   float64 `json:"billable_hours"`
}

type DaySummary struct {
	TimeSummary
	Entries []models.TimesheetEntry `json:"entries"`
}

type ProjectTimeSummary struct {
	TimeSummary
	ProjectID   string `json:"project_id"`
	ProjectName string `json:"project_name"`
	ProjectCode string `json:"project_code"`
}

// WeeklySummary covers Monday 00:00 through the last instant of Sunday.
type WeeklySummary struct {
	UserID    string                `json:"user_id"`
	WeekStart time.Time             `json:"week_start"`
	WeekEnd   time.Time             `json:"week_end"`
	Totals    TimeSummary           `json:"totals"`
	Days      map[string]DaySummary `json:"days"`
	Projects  []ProjectTimeSummary  `json:"projects"`
}

func (s *TimesheetService) CreateEntry(input CreateEntryInput) (*models.TimesheetEntry, error) {
	if input.Date.IsZero() {
		return nil, ErrDateRequired
	}
	if err := validateMinutes(input.Minutes); err != nil {
		return nil, err
	}
	if err := s.checkProjectAndTask(input.OrganizationID, input.ProjectID, input.TaskID); err != nil {
		return nil, err
	}

	billable := true
	if input.Billable != nil {
		billable = *input.Billable
	}

	entry := &models.TimesheetEntry{
		OrganizationID: input.OrganizationID,
		UserID:         input.UserID,
		ProjectID:      input.ProjectID,
		TaskID:         input.TaskID,
		Date:           input.Date,
		Minutes:        input.Minutes,
		Billable:       billable,
		HourlyRate:     input.HourlyRate,
		Notes:          input.Notes,
	}
	if err := s.timesheetRepo.Create(entry); err != nil {
		return nil, fmt.Errorf("failed to create timesheet entry: %w", err)
	}

	return s.GetEntry(input.OrganizationID, entry.ID)
}

// ListEntries returns a page of entries and the totals of that page.
func (s *TimesheetService) ListEntries(input ListEntriesInput) ([]models.TimesheetEntry, int64, TimeSummary, error) {
	if input.From != nil && input.To != nil && input.From.After(*input.To) {
		return nil, 0, TimeSummary{}, ErrInvalidDateRange
	}

	pagination := input.Pagination
	entries, total, err := s.timesheetRepo.List(repository.TimesheetFilter{
		OrganizationID: input.OrganizationID,
		UserID:         input.UserID,
		ProjectID:      input.ProjectID,
		From:           input.From,
		To:             input.To,
		Pagination:     &pagination,
	})
	if err != nil {
		return nil, 0, TimeSummary{}, fmt.Errorf("failed to list timesheet entries: %w", err)
	}

	return entries, total, summarize(entries), nil
}

func (s *TimesheetService) GetEntry(organizationID, id string) (*models.TimesheetEntry, error) {
	entry, err := s.timesheetRepo.FindByID(organizationID, id, "Project", "Task", "User")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimesheetEntryNotFound
		}
		return nil, fmt.Errorf("failed to find timesheet entry: %w", err)
	}
	return entry, nil
}

func (s *TimesheetService) UpdateEntry(organizationID, id string, input UpdateEntryInput) (*models.TimesheetEntry, error) {
	entry, err := s.GetEntry(organizationID, id)
	if err != nil {
		return nil, err
	}

	if input.ProjectID != nil {
		entry.ProjectID = *input.ProjectID
	}
	if input.ClearTask {
		entry.TaskID = nil
	} else if input.TaskID != nil {
		entry.TaskID = input.TaskID
	}
	if input.ProjectID != nil || input.TaskID != nil {
		if err := s.checkProjectAndTask(organizationID, entry.ProjectID, entry.TaskID); err != nil {
			return nil, err
		}
	}
	if input.Date != nil {
		if input.Date.IsZero() {
			return nil, ErrDateRequired
		}
		entry.Date = *input.Date
	}
	if input.Minutes != nil {
		if err := validateMinutes(*input.Minutes); err != nil {
			return nil, err
		}
		entry.Minutes = *input.Minutes
	}
	if input.Billable != nil {
		entry.Billable = *input.Billable
	}
	if input.HourlyRate != nil {
		entry.HourlyRate = input.HourlyRate
	}
	if input.Notes != nil {
		entry.Notes = *input.Notes
	}

	if err := s.timesheetRepo.Update(entry); err != nil {
		return nil, fmt.Errorf("failed to update timesheet entry: %w", err)
	}
	return s.GetEntry(organizationID, id)
}

func (s *TimesheetService) DeleteEntry(organizationID, id string) error {
	if err := s.timesheetRepo.Delete(organizationID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTimesheetEntryNotFound
		}
		return fmt.Errorf("failed to delete timesheet entry: %w", err)
	}
	return nil
}

// Weekly summarizes one user's week, or the whole organization's when userID
// is empty. A nil weekStart means the current week; any other day is moved
// back to its Monday.
func (s *TimesheetService) Weekly(organizationID, userID string, weekStart *time.Time) (*WeeklySummary, error) {
	day := s.now().UTC()
	if weekStart != nil {
		day = weekStart.UTC()
	}
	start := MondayOf(day)
	end := start.AddDate(0, 0, 7).Add(-time.Millisecond)

	entries, _, err := s.timesheetRepo.List(repository.TimesheetFilter{
		OrganizationID: organizationID,
		UserID:         userID,
		From:           &start,
		To:             &end,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load weekly entries: %w", err)
	}

	summary := &WeeklySummary{
		UserID:    userID,
		WeekStart: start,
		WeekEnd:   end,
		Totals:    summarize(entries),
		Days:      make(map[string]DaySummary, 7),
		Projects:  []ProjectTimeSummary{},
	}

	byDay := make(map[string][]models.TimesheetEntry, 7)
	for i := 0; i < 7; i++ {
		byDay[start.AddDate(0, 0, i).Format(dayLayout)] = []models.TimesheetEntry{}
	}
	byProject := make(map[string][]models.TimesheetEntry)
	for _, e := range entries {
		key := e.Date.UTC().Format(dayLayout)
		byDay[key] = append(byDay[key], e)
		byProject[e.ProjectID] = append(byProject[e.ProjectID], e)
	}

	for key, dayEntries := range byDay {
		summary.Days[key] = DaySummary{TimeSummary: summarize(dayEntries), Entries: dayEntries}
	}
	for projectID, projectEntries := range byProject {
		ps := ProjectTimeSummary{TimeSummary: summarize(projectEntries), ProjectID: projectID}
		if p := projectEntries[0].Project; p != nil {
			ps.ProjectName = p.Name
			ps.ProjectCode = p.Code
		}
		summary.Projects = append(summary.Projects, ps)
	}
	sort.Slice(summary.Projects, func(i, j int) bool {
		if summary.Projects[i].TotalMinutes != summary.Projects[j].TotalMinutes {
			return summary.Projects[i].TotalMinutes > summary.Projects[j].TotalMinutes
		}
		return summary.Projects[i].ProjectID < summary.Projects[j].ProjectID
	})

	return summary, nil
}

// MondayOf returns 00:00 UTC of the Monday on or before t.
func MondayOf(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	return time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, time.UTC)
}

func (s *TimesheetService) checkProjectAndTask(organizationID, projectID string, taskID *string) error {
	if _, err := s.projectRepo.FindByID(organizationID, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}
	if taskID == nil {
		return nil
	}

	task, err := s.taskRepo.FindByID(organizationID, *taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}
	// a task from another project is treated as absent
	if task.ProjectID != projectID {
		return ErrTaskNotFound
	}
	return nil
}

func validateMinutes(minutes int) error {
	if minutes < 1 || minutes > constants.MaxMinutesPerEntry {
		return ErrInvalidMinutes
	}
	return nil
}

func summarize(entries []models.TimesheetEntry) TimeSummary {
	var sum TimeSummary
	for _, e := range entries {
		sum.TotalMinutes += e.Minutes
		if e.Billable {
			sum.BillableMinutes += e.Minutes
		}
	}
	sum.TotalHours = minutesToHours(int64(sum.TotalMinutes))
	sum.BillableHours = minutesToHours(int64(sum.BillableMinutes))
	return sum
}

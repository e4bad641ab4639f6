package repository

import (
	"github.com/yukikurage/projecttime-api/internal/database"
	"github.com/yukikurage/projecttime-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTimesheetRepository is a GORM implementation of TimesheetRepository
type GormTimesheetRepository struct {
	db *gorm.DB
}

// NewTimesheetRepository creates a new TimesheetRepository
func NewTimesheetRepository(db *gorm.DB) TimesheetRepository {
	return &GormTimesheetRepository{db: db}
}

func (r *GormTimesheetRepository) Create(entry *models.TimesheetEntry) error {
	return r.db.Omit(clause.Associations).Create(entry).Error
}

func (r *GormTimesheetRepository) FindByID(organizationID, id string, preload ...string) (*models.TimesheetEntry, error) {
	var entry models.TimesheetEntry
	query := r.db.Scopes(database.ForOrganization("timesheet_entries", organizationID))

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.Where("timesheet_entries.id = ?", id).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// List returns entries newest date first. Without pagination every match is returned.
func (r *GormTimesheetRepository) List(filter TimesheetFilter) ([]models.TimesheetEntry, int64, error) {
	query := r.db.Model(&models.TimesheetEntry{}).
		Scopes(database.ForOrganization("timesheet_entries", filter.OrganizationID))

	if filter.UserID != "" {
		query = query.Where("timesheet_entries.user_id = ?", filter.UserID)
	}
	if filter.ProjectID != "" {
		query = query.Where("timesheet_entries.project_id = ?", filter.ProjectID)
	}
	if filter.TaskID != "" {
		query = query.Where("timesheet_entries.task_id = ?", filter.TaskID)
	}
	if filter.From != nil {
		query = query.Where("timesheet_entries.date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("timesheet_entries.date <= ?", *filter.To)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.
		Order("timesheet_entries.date DESC").
		Order("timesheet_entries.created_at DESC")
	if filter.Pagination != nil {
		listQuery = listQuery.Scopes(database.Paginate(*filter.Pagination))
	}

	var entries []models.TimesheetEntry
	if err := listQuery.
		Preload("Project").
		Preload("Task").
		Preload("User").
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *GormTimesheetRepository) Update(entry *models.TimesheetEntry) error {
	return r.db.Omit(clause.Associations).Save(entry).Error
}

func (r *GormTimesheetRepository) Delete(organizationID, id string) error {
	result := r.db.Where("id = ? AND organization_id = ?", id, organizationID).Delete(&models.TimesheetEntry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

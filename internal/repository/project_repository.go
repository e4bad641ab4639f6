package repository

import (
	"github.com/yukikurage/projecttime-api/internal/database"
	"github.com/yukikurage/projecttime-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

const projectCountColumns = "projects.*, " +
	"(SELECT COUNT(*) FROM tasks WHERE tasks.project_id = projects.id) AS task_count, " +
	"(SELECT COUNT(*) FROM timesheet_entries WHERE timesheet_entries.project_id = projects.id) AS time_entry_count"

func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Omit(clause.Associations).Create(project).Error
}

func (r *GormProjectRepository) FindByID(organizationID, id string, preload ...string) (*models.Project, error) {
	var project models.Project
	query := r.db.Model(&models.Project{}).
		Select(projectCountColumns).
		Scopes(database.ForOrganization("projects", organizationID))

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.Where("projects.id = ?", id).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *GormProjectRepository) FindByCode(organizationID, code string) (*models.Project, error) {
	var project models.Project
	if err := r.db.Where("organization_id = ? AND code = ?", organizationID, code).
		First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// List returns active projects, newest first
func (r *GormProjectRepository) List(filter ProjectFilter) ([]models.Project, int64, error) {
	query := r.db.Model(&models.Project{}).
		Scopes(
			database.ForOrganization("projects", filter.OrganizationID),
			database.Search(filter.Search, "projects.name", "projects.code", "projects.description"),
		).
		Where("projects.active = ?", true)

	if filter.Status != nil {
		query = query.Where("projects.status = ?", *filter.Status)
	}
	if filter.ClientID != "" {
		query = query.Where("projects.client_id = ?", filter.ClientID)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []models.Project
	err := query.
		Select(projectCountColumns).
		Scopes(database.Paginate(filter.Pagination)).
		Order("projects.created_at DESC").
		Preload("Client").
		Find(&projects).Error
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Omit(clause.Associations).Save(project).Error
}

func (r *GormProjectRepository) Deactivate(organizationID, id string) error {
	result := r.db.Model(&models.Project{}).
		Where("id = ? AND organization_id = ?", id, organizationID).
		Update("active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormProjectRepository) TimeTotals(organizationID, id string) (int64, int64, error) {
	var result struct {
		Total    int64
		Billable int64
	}

	err := r.db.Model(&models.TimesheetEntry{}).
		Select("COALESCE(SUM(minutes), 0) AS total, "+
			"COALESCE(SUM(CASE WHEN billable THEN minutes ELSE 0 END), 0) AS billable").
		Where("organization_id = ? AND project_id = ?", organizationID, id).
		Scan(&result).Error
	if err != nil {
		return 0, 0, err
	}
	return result.Total, result.Billable, nil
}

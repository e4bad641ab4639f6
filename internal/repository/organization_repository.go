package repository

import (
	"github.com/yukikurage/projecttime-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrganizationRepository is a GORM implementation of OrganizationRepository
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository creates a new OrganizationRepository
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// FindByID finds an organization by ID
func (r *GormOrganizationRepository) FindByID(id string, preload ...string) (*models.Organization, error) {
	var org models.Organization
	query := r.db
	for _, p := range preload {
		if p == "Users" {
			query = query.Preload("Users", "active = ?", true)
			continue
		}
		query = query.Preload(p)
	}

	if err := query.Where("id = ?", id).First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// SlugExists reports whether a slug is taken
func (r *GormOrganizationRepository) SlugExists(slug string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Organization{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update updates an organization
func (r *GormOrganizationRepository) Update(org *models.Organization) error {
	return r.db.Omit(clause.Associations).Save(org).Error
}

package repository

import (
	"github.com/yukikurage/projecttime-api/internal/database"
	"github.com/yukikurage/projecttime-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormClientRepository is a GORM implementation of ClientRepository
type GormClientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new ClientRepository
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &GormClientRepository{db: db}
}

const clientCountColumns = "clients.*, " +
	"(SELECT COUNT(*) FROM projects WHERE projects.client_id = clients.id) AS project_count"

func (r *GormClientRepository) Create(client *models.Client) error {
	return r.db.Omit(clause.Associations).Create(client).Error
}

func (r *GormClientRepository) FindByID(organizationID, id string, preload ...string) (*models.Client, error) {
	var client models.Client
	query := r.db.Model(&models.Client{}).
		Select(clientCountColumns).
		Scopes(database.ForOrganization("clients", organizationID))

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.Where("clients.id = ?", id).First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *GormClientRepository) List(filter ClientFilter) ([]models.Client, int64, error) {
	query := r.db.Model(&models.Client{}).
		Scopes(
			database.ForOrganization("clients", filter.OrganizationID),
			database.Search(filter.Search, "clients.name", "clients.email"),
		).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var clients []models.Client
	err := query.
		Select(clientCountColumns).
		Scopes(database.Paginate(filter.Pagination)).
		Order("clients.name ASC").
		Find(&clients).Error
	if err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

func (r *GormClientRepository) Update(client *models.Client) error {
	return r.db.Omit(clause.Associations).Save(client).Error
}

func (r *GormClientRepository) Delete(organizationID, id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Project{}).
			Where("organization_id = ? AND client_id = ?", organizationID, id).
			Update("client_id", nil).Error; err != nil {
			return err
		}

		result := tx.Where("id = ? AND organization_id = ?", id, organizationID).Delete(&models.Client{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/projecttime-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

var (
	// ErrCreateOrganization is returned when creating an organization fails inside the registration transaction.
	ErrCreateOrganization = errors.New("user repository: create organization failed")
	// ErrCreateUser is returned when creating a user fails inside the registration transaction.
	ErrCreateUser = errors.New("user repository: create user failed")
)

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// CreateOrganizationWithAdmin creates an organization and its first user atomically.
func (r *GormUserRepository) CreateOrganizationWithAdmin(org *models.Organization, user *models.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(org).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateOrganization, err)
		}

		user.OrganizationID = org.ID

		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateUser, err)
		}

		return nil
	})
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Omit(clause.Associations).Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(organizationID, id string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("id = ? AND organization_id = ?", id, organizationID).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindActiveByEmail runs before authentication, so it is the one lookup not
// scoped to an organization.
func (r *GormUserRepository) FindActiveByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ? AND active = ?", email, true).
		Order("created_at ASC").
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) EmailExists(email string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormUserRepository) ListActive(organizationID string) ([]models.User, error) {
	var users []models.User
	if err := r.db.Where("organization_id = ? AND active = ?", organizationID, true).
		Order("name ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CountActiveByIDs counts how many of the given user IDs are active users of the organization
func (r *GormUserRepository) CountActiveByIDs(organizationID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.Model(&models.User{}).
		Where("organization_id = ? AND active = ? AND id IN ?", organizationID, true, ids).
		Count(&count).Error
	return count, err
}

func (r *GormUserRepository) TouchLastLogin(user *models.User, at time.Time) error {
	if err := r.db.Model(&models.User{}).
		Where("id = ? AND organization_id = ?", user.ID, user.OrganizationID).
		Update("last_login_at", at).Error; err != nil {
		return err
	}
	user.LastLoginAt = &at
	return nil
}

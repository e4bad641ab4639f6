package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/yukikurage/projecttime-api/internal/models"
	"github.com/yukikurage/projecttime-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrInvalidCurrency      = errors.New("currency must be a 3-letter code")
	ErrInvalidTimezone      = errors.New("unknown timezone")
	ErrInvalidLocale        = errors.New("locale cannot be empty")
	ErrInvalidUserRole      = errors.New("invalid user role")
)

// OrganizationService provides business logic for the caller's organization and its users.
type OrganizationService struct {
	orgRepo  repository.OrganizationRepository
	userRepo repository.UserRepository
}

// NewOrganizationService creates a new OrganizationService.
func NewOrganizationService(orgRepo repository.OrganizationRepository, userRepo repository.UserRepository) *OrganizationService {
	return &OrganizationService{
		orgRepo:  orgRepo,
		userRepo: userRepo,
	}
}

// UpdateOrganizationInput holds the editable organization settings.
type UpdateOrganizationInput struct {
	Name     *string
	Locale   *string
	Currency *string
	Timezone *string
}

// CreateUserInput adds a user to an existing organization.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     models.UserRole
}

// GetCurrent returns the organization with its active users.
func (s *OrganizationService) GetCurrent(organizationID string) (*models.Organization, error) {
	return s.findOrganization(organizationID, "Users")
}

// UpdateCurrent applies a partial update to the organization settings.
func (s *OrganizationService) UpdateCurrent(organizationID string, input UpdateOrganizationInput) (*models.Organization, error) {
	org, err := s.findOrganization(organizationID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrInvalidOrganizationName
		}
		org.Name = name
	}
	if input.Locale != nil {
		locale := strings.TrimSpace(*input.Locale)
		if locale == "" {
			return nil, ErrInvalidLocale
		}
		org.Locale = locale
	}
	if input.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*input.Currency))
		if len(currency) != 3 {
			return nil, ErrInvalidCurrency
		}
		org.Currency = currency
	}
	if input.Timezone != nil {
		if _, err := time.LoadLocation(*input.Timezone); err != nil || *input.Timezone == "" {
			return nil, ErrInvalidTimezone
		}
		org.Timezone = *input.Timezone
	}

	if err := s.orgRepo.Update(org); err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}

	return org, nil
}

// ListUsers returns the active users of the organization.
func (s *OrganizationService) ListUsers(organizationID string) ([]models.User, error) {
	users, err := s.userRepo.ListActive(organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetUser returns an active user of the organization.
func (s *OrganizationService) GetUser(organizationID, id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(organizationID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !user.Active {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// CreateUser adds a user to the organization.
func (s *OrganizationService) CreateUser(organizationID string, input CreateUserInput) (*models.User, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	role := input.Role
	if role == "" {
		role = models.RoleTeamMember
	}
	if !role.Valid() {
		return nil, ErrInvalidUserRole
	}

	passwordHash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	if err := ensureEmailAvailable(s.userRepo, email); err != nil {
		return nil, err
	}

	user := &models.User{
		OrganizationID: organizationID,
		Email:          email,
		Name:           name,
		Role:           role,
		PasswordHash:   passwordHash,
		Active:         true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *OrganizationService) findOrganization(id string, preload ...string) (*models.Organization, error) {
	org, err := s.orgRepo.FindByID(id, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}
	return org, nil
}

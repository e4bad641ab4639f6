package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/yukikurage/projecttime-api/internal/auth"
	"github.com/yukikurage/projecttime-api/internal/constants"
	"github.com/yukikurage/projecttime-api/internal/models"
	"github.com/yukikurage/projecttime-api/internal/repository"
	"github.com/yukikurage/projecttime-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken              = errors.New("email already exists")
	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrPasswordTooShort        = errors.New("password too short")
	ErrPasswordTooLong         = errors.New("password too long")
	ErrEmailRequired           = errors.New("email is required")
	ErrNameRequired            = errors.New("name is required")
	ErrUserNotFound            = errors.New("user not found")
	ErrFailedToHashPassword    = errors.New("failed to hash password")
	ErrFailedToCreateUser      = errors.New("failed to create user")
	ErrFailedToCreateOrg       = errors.New("failed to create organization")
	ErrFailedToIssueToken      = errors.New("failed to issue token")
	ErrSlugGenerationFailed    = errors.New("failed to generate organization slug")
	ErrInvalidOrganizationName = errors.New("organization name cannot be empty")
)

const slugAttempts = 5

// AuthService handles registration, login and token issuing.
type AuthService struct {
	userRepo repository.UserRepository
	orgRepo  repository.OrganizationRepository
	tokens   *auth.TokenService
	now      func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, orgRepo repository.OrganizationRepository, tokens *auth.TokenService) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		orgRepo:  orgRepo,
		tokens:   tokens,
		now:      time.Now,
	}
}

// RegisterInput represents the information needed to open a new organization.
type RegisterInput struct {
	OrganizationName string
	AdminName        string
	Email            string
	Password         string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token        string
	User         *models.User
	Organization *models.Organization
}

// Register creates an organization together with its first ADMIN user.
func (s *AuthService) Register(input RegisterInput) (*AuthResult, error) {
	orgName := strings.TrimSpace(input.OrganizationName)
	if orgName == "" {
		return nil, ErrInvalidOrganizationName
	}
	adminName := strings.TrimSpace(input.AdminName)
	if adminName == "" {
		return nil, ErrNameRequired
	}
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	passwordHash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	if err := ensureEmailAvailable(s.userRepo, email); err != nil {
		return nil, err
	}

	orgSlug, err := s.uniqueSlug(orgName)
	if err != nil {
		return nil, err
	}

	org := &models.Organization{
		Name:     orgName,
		Slug:     orgSlug,
		Plan:     models.PlanFree,
		Locale:   "en",
		Currency: "USD",
		Timezone: "UTC",
	}
	user := &models.User{
		Email:        email,
		Name:         adminName,
		Role:         models.RoleAdmin,
		PasswordHash: passwordHash,
		Active:       true,
	}

	if err := s.userRepo.CreateOrganizationWithAdmin(org, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrCreateUser):
			return nil, ErrFailedToCreateUser
		case errors.Is(err, repository.ErrCreateOrganization):
			return nil, ErrFailedToCreateOrg
		default:
			return nil, fmt.Errorf("failed to complete registration: %w", err)
		}
	}

	return s.issue(user, org)
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials of an active user and returns a fresh token.
func (s *AuthService) Login(input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.FindActiveByEmail(normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.userRepo.TouchLastLogin(user, s.now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}

	org, err := s.orgRepo.FindByID(user.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}

	return s.issue(user, org)
}

// GetUser retrieves a user of the organization by ID.
func (s *AuthService) GetUser(organizationID, id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(organizationID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

func (s *AuthService) issue(user *models.User, org *models.Organization) (*AuthResult, error) {
	token, err := s.tokens.Issue(auth.Identity{
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
		Role:           user.Role,
		Email:          user.Email,
	})
	if err != nil {
		return nil, ErrFailedToIssueToken
	}
	return &AuthResult{Token: token, User: user, Organization: org}, nil
}

// uniqueSlug derives a slug from name and appends a random suffix on clashes.
func (s *AuthService) uniqueSlug(name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "org"
	}

	candidate := base
	for i := 0; i < slugAttempts; i++ {
		exists, err := s.orgRepo.SlugExists(candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !exists {
			return candidate, nil
		}

		suffix, err := utils.RandomSuffix(3)
		if err != nil {
			return "", ErrSlugGenerationFailed
		}
		candidate = base + "-" + suffix
	}
	return "", ErrSlugGenerationFailed
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	if len(password) < constants.MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	if len(password) > constants.MaxPasswordLength {
		return "", ErrPasswordTooLong
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", ErrFailedToHashPassword
	}
	return string(hashed), nil
}

func ensureEmailAvailable(userRepo repository.UserRepository, email string) error {
	exists, err := userRepo.EmailExists(email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return ErrEmailTaken
	}
	return nil
}

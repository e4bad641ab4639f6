package dto

import (
	"time"

	"github.com/yukikurage/projecttime-api/internal/models"
	"github.com/yukikurage/projecttime-api/internal/services"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID             string          `json:"id"`
	OrganizationID string          `json:"organization_id"`
	Email          string          `json:"email"`
	Name           string          `json:"name"`
	Role           models.UserRole `json:"role"`
	Active         bool            `json:"active"`
	LastLoginAt    *time.Time      `json:"last_login_at"`
	CreatedAt      time.Time       `json:"created_at"`
}

// UserSummaryDTO is the short form used inside other resources
type UserSummaryDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// OrganizationDTO represents an organization in API responses
type OrganizationDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Plan      string    `json:"plan"`
	Locale    string    `json:"locale"`
	Currency  string    `json:"currency"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"created_at"`
}

// OrganizationDetailDTO represents an organization with its active users
type OrganizationDetailDTO struct {
	OrganizationDTO
	Users []UserDTO `json:"users"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Token        string          `json:"token"`
	User         UserDTO         `json:"user"`
	Organization OrganizationDTO `json:"organization"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:             user.ID,
		OrganizationID: user.OrganizationID,
		Email:          user.Email,
		Name:           user.Name,
		Role:           user.Role,
		Active:         user.Active,
		LastLoginAt:    user.LastLoginAt,
		CreatedAt:      user.CreatedAt,
	}
}

func ToUserDTOs(users []models.User) []UserDTO {
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = ToUserDTO(u)
	}
	return out
}

func ToUserSummaryDTO(user models.User) UserSummaryDTO {
	return UserSummaryDTO{ID: user.ID, Name: user.Name, Email: user.Email}
}

// ToOrganizationDTO converts an Organization model to OrganizationDTO
func ToOrganizationDTO(org models.Organization) OrganizationDTO {
	return OrganizationDTO{
		ID:        org.ID,
		Name:      org.Name,
		Slug:      org.Slug,
		Plan:      org.Plan,
		Locale:    org.Locale,
		Currency:  org.Currency,
		Timezone:  org.Timezone,
		CreatedAt: org.CreatedAt,
	}
}

// ToOrganizationDetailDTO converts an organization with preloaded users
func ToOrganizationDetailDTO(org models.Organization) OrganizationDetailDTO {
	return OrganizationDetailDTO{
		OrganizationDTO: ToOrganizationDTO(org),
		Users:           ToUserDTOs(org.Users),
	}
}

func ToAuthResponse(result *services.AuthResult) AuthResponse {
	return AuthResponse{
		Token:        result.Token,
		User:         ToUserDTO(*result.User),
		Organization: ToOrganizationDTO(*result.Organization),
	}
}

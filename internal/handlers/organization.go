package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/projecttime-api/internal/dto"
	apierrors "github.com/yukikurage/projecttime-api/internal/errors"
	"github.com/yukikurage/projecttime-api/internal/middleware"
	"github.com/yukikurage/projecttime-api/internal/models"
	"github.com/yukikurage/projecttime-api/internal/services"
)

type OrganizationHandler struct {
	orgService *services.OrganizationService
}

func NewOrganizationHandler(orgService *services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{
		orgService: orgService,
	}
}

// GetCurrentOrganization returns the caller's organization with its users
func (h *OrganizationHandler) GetCurrentOrganization(c *gin.Context) {
	orgID, _, ok := caller(c)
	if !ok {
		return
	}

	org, err := h.orgService.GetCurrent(orgID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDetailDTO(*org))
}

// UpdateCurrentOrganization updates name, locale, currency or timezone
func (h *OrganizationHandler) UpdateCurrentOrganization(c *gin.Context) {
	orgID, _, ok := caller(c)
	if !ok {
		return
	}

	type UpdateOrgRequest struct {
		Name     *string `json:"name" binding:"omitempty,max=255"`
		Locale   *string `json:"locale" binding:"omitempty,max=10"`
		Currency *string `json:"currency" binding:"omitempty,len=3"`
		Timezone *string `json:"timezone" binding:"omitempty,max=64"`
	}

	var req UpdateOrgRequest
	if !bindJSON(c, &req) {
		return
	}

	org, err := h.orgService.UpdateCurrent(orgID, services.UpdateOrganizationInput{
		Name:     req.Name,
		Locale:   req.Locale,
		Currency: req.Currency,
		Timezone: req.Timezone,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDTO(*org))
}

// ListUsers returns the active users of the caller's organization
func (h *OrganizationHandler) ListUsers(c *gin.Context) {
	orgID, _, ok := caller(c)
	if !ok {
		return
	}

	users, err := h.orgService.ListUsers(orgID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": dto.ToUserDTOs(users)})
}

// GetUser returns one active user of the caller's organization
func (h *OrganizationHandler) GetUser(c *gin.Context) {
	orgID, _, ok := caller(c)
	if !ok {
		return
	}

	user, err := h.orgService.GetUser(orgID, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// CreateUser adds a user to the caller's organization
func (h *OrganizationHandler) CreateUser(c *gin.Context) {
	orgID, _, ok := caller(c)
	if !ok {
		return
	}

	type CreateUserRequest struct {
		Name     string          `json:"name" binding:"required,max=255"`
		Email    string          `json:"email" binding:"required,email,max=255"`
		Password string          `json:"password" binding:"required"`
		Role     models.UserRole `json:"role" binding:"omitempty,user_role"`
	}

	var req CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	// only owners may create owners
	if req.Role == models.RoleOwner && middleware.GetRole(c) != models.RoleOwner {
		apierrors.Forbidden(c, "Only owners can create owners")
		return
	}

	user, err := h.orgService.CreateUser(orgID, services.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

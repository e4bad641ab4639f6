package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/projecttime-api/internal/constants"
	"github.com/yukikurage/projecttime-api/internal/dto"
	"github.com/yukikurage/projecttime-api/internal/services"
	"github.com/yukikurage/projecttime-api/internal/utils"
)

type ClientHandler struct {
	clientService *services.ClientService
}

func NewClientHandler(clientService *services.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

func (h *ClientHandler) ListClients(c *gin.Context) {
	orgID, _, ok := caller(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c, constants.DefaultPageSize)
	clients, total, err := h.clientService.ListClients(orgID, c.Query("search"), params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(clients, total, params, dto.ToClientDTO))
}

// GetClient returns a client with its projects
func (h *ClientHandler) GetClient(c *gin.Context) {
	orgID, _, ok := caller(c)
	if !ok {
		return
	}

	client, err := h.clientService.GetClient(orgID, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToClientDTO(*client))
}

func (h *ClientHandler) CreateClient(c *gin.Context) {
	orgID, _, ok := caller(c)
	if !ok {
		return
	}

	type CreateClientRequest struct {
		Name           string `json:"name" binding:"required,max=255"`
		Email          string `json:"email" binding:"omitempty,email,max=255"`
		Phone          string `json:"phone" binding:"max=50"`
		Address        string `json:"address"`
		BillingAddress string `json:"billing_address"`
		TaxID          string `json:"tax_id" binding:"max=50"`
		Notes          string `json:"notes"`
	}

	var req CreateClientRequest
	if !bindJSON(c, &req) {
		return
	}

	client, err := h.clientService.CreateClient(orgID, services.ClientInput{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		BillingAddress: req.BillingAddress,
		TaxID:          req.TaxID,
		Notes:          req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToClientDTO(*client))
}

func (h *ClientHandler) UpdateClient(c *gin.Context) {
	orgID, _, ok := caller(c)
	if !ok {
		return
	}

	type UpdateClientRequest struct {
		Name           *string `json:"name" binding:"omitempty,max=255"`
		Email          *string `json:"email" binding:"omitempty,max=255"`
		Phone          *string `json:"phone" binding:"omitempty,max=50"`
		Address        *string `json:"address"`
		BillingAddress *string `json:"billing_address"`
		TaxID          *string `json:"tax_id" binding:"omitempty,max=50"`
		Notes          *string `json:"notes"`
		Active         *bool   `json:"active"`
	}

	var req UpdateClientRequest
	if !bindJSON(c, &req) {
		return
	}

	client, err := h.clientService.UpdateClient(orgID, c.Param("id"), services.UpdateClientInput{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		BillingAddress: req.BillingAddress,
		TaxID:          req.TaxID,
		Notes:          req.Notes,
		Active:         req.Active,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToClientDTO(*client))
}

// DeleteClient removes a client; its projects stay without a client
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	orgID, _, ok := caller(c)
	if !ok {
		return
	}

	if err := h.clientService.DeleteClient(orgID, c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Client deleted successfully"})
}

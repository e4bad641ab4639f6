package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/projecttime-api/internal/models"
	"github.com/yukikurage/projecttime-api/internal/repository"
	"github.com/yukikurage/projecttime-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrClientNotFound     = errors.New("client not found")
	ErrClientNameRequired = errors.New("client name is required")
)

// ClientService provides business logic for client operations.
type ClientService struct {
	clientRepo repository.ClientRepository
}

// NewClientService creates a new ClientService.
func NewClientService(clientRepo repository.ClientRepository) *ClientService {
	return &ClientService{clientRepo: clientRepo}
}

type ClientInput struct {
	Name           string
	Email          string
	Phone          string
	Address        string
	BillingAddress string
	TaxID          string
	Notes          string
}

type UpdateClientInput struct {
	Name           *string
	Email          *string
	Phone          *string
	Address        *string
	BillingAddress *string
	TaxID          *string
	Notes          *string
	Active         *bool
}

func (s *ClientService) CreateClient(organizationID string, input ClientInput) (*models.Client, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrClientNameRequired
	}

	client := &models.Client{
		OrganizationID: organizationID,
		Name:           name,
		Email:          strings.TrimSpace(input.Email),
		Phone:          input.Phone,
		Address:        input.Address,
		BillingAddress: input.BillingAddress,
		TaxID:          input.TaxID,
		Notes:          input.Notes,
		Active:         true,
	}
	if err := s.clientRepo.Create(client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

func (s *ClientService) ListClients(organizationID, search string, pagination utils.PaginationParams) ([]models.Client, int64, error) {
	clients, total, err := s.clientRepo.List(repository.ClientFilter{
		OrganizationID: organizationID,
		Search:         search,
		Pagination:     pagination,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, total, nil
}

// GetClient returns a client with its projects.
func (s *ClientService) GetClient(organizationID, id string) (*models.Client, error) {
	return s.findClient(organizationID, id, "Projects")
}

func (s *ClientService) UpdateClient(organizationID, id string, input UpdateClientInput) (*models.Client, error) {
	client, err := s.findClient(organizationID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrClientNameRequired
		}
		client.Name = name
	}
	if input.Email != nil {
		client.Email = strings.TrimSpace(*input.Email)
	}
	if input.Phone != nil {
		client.Phone = *input.Phone
	}
	if input.Address != nil {
		client.Address = *input.Address
	}
	if input.BillingAddress != nil {
		client.BillingAddress = *input.BillingAddress
	}
	if input.TaxID != nil {
		client.TaxID = *input.TaxID
	}
	if input.Notes != nil {
		client.Notes = *input.Notes
	}
	if input.Active != nil {
		client.Active = *input.Active
	}

	if err := s.clientRepo.Update(client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	return s.findClient(organizationID, id)
}

// DeleteClient removes a client. Its projects are kept without a client.
func (s *ClientService) DeleteClient(organizationID, id string) error {
	if err := s.clientRepo.Delete(organizationID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClientNotFound
		}
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return nil
}

func (s *ClientService) findClient(organizationID, id string, preload ...string) (*models.Client, error) {
	client, err := s.clientRepo.FindByID(organizationID, id, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to find client: %w", err)
	}
	return client, nil
}

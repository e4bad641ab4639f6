package models

import (
	"time"

	"gorm.io/gorm"
)

type Client struct {
	ID             string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrganizationID string    `gorm:"type:varchar(36);not null;index" json:"organization_id"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	Email          string    `gorm:"type:varchar(255)" json:"email"`
	Phone          string    `gorm:"type:varchar(50)" json:"phone"`
	Address        string    `gorm:"type:text" json:"address"`
	BillingAddress string    `gorm:"type:text" json:"billing_address"`
	TaxID          string    `gorm:"type:varchar(50)" json:"tax_id"`
	Notes          string    `gorm:"type:text" json:"notes"`
	Active         bool      `gorm:"not null" json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	Projects []Project `gorm:"foreignKey:ClientID" json:"projects,omitempty"`

	ProjectCount int64 `gorm:"->;-:migration" json:"project_count"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = newID()
	}
	return nil
}

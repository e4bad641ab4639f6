package models

import (
	"time"

	"gorm.io/gorm"
)

// PlanFree is the plan every registered organization starts on.
const PlanFree = "FREE"

type Organization struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Slug      string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"slug"`
	Plan      string    `gorm:"type:varchar(30);not null" json:"plan"`
	Locale    string    `gorm:"type:varchar(10);not null" json:"locale"`
	Currency  string    `gorm:"type:varchar(3);not null" json:"currency"`
	Timezone  string    `gorm:"type:varchar(64);not null" json:"timezone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Users []User `gorm:"foreignKey:OrganizationID" json:"users,omitempty"`
}

func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = newID()
	}
	return nil
}

package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleOwner      UserRole = "OWNER"
	RoleAdmin      UserRole = "ADMIN"
	RoleManager    UserRole = "MANAGER"
	RoleTeamMember UserRole = "TEAM_MEMBER"
	RoleClient     UserRole = "CLIENT"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleManager, RoleTeamMember, RoleClient:
		return true
	}
	return false
}

// CanManage reports whether the role may act on other members' time entries.
func (r UserRole) CanManage() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleManager
}

type User struct {
	ID             string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrganizationID string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_users_org_email,priority:1" json:"organization_id"`
	Email          string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_users_org_email,priority:2" json:"email"`
	Name           string     `gorm:"type:varchar(255);not null" json:"name"`
	Role           UserRole   `gorm:"type:varchar(20);not null" json:"role"`
	PasswordHash   string     `gorm:"type:varchar(255)" json:"-"`
	Active         bool       `gorm:"not null" json:"active"`
	LastLoginAt    *time.Time `json:"last_login_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = newID()
	}
	return nil
}

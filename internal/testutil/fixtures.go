package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/projecttime-api/internal/models"
	"gorm.io/gorm"
)

func CreateOrganization(t testing.TB, db *gorm.DB, name string) *models.Organization {
	t.Helper()
	org := &models.Organization{
		Name:     name,
		Slug:     name + "-" + time.Now().Format("150405.000000000"),
		Plan:     models.PlanFree,
		Locale:   "en",
		Currency: "USD",
		Timezone: "UTC",
	}
	require.NoError(t, db.Create(org).Error)
	return org
}

func CreateUser(t testing.TB, db *gorm.DB, orgID, email string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		OrganizationID: orgID,
		Email:          email,
		Name:           email,
		Role:           role,
		Active:         true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateProject(t testing.TB, db *gorm.DB, orgID, code string) *models.Project {
	t.Helper()
	project := &models.Project{
		OrganizationID: orgID,
		Name:           "Project " + code,
		Code:           code,
		Status:         models.ProjectStatusActive,
		Active:         true,
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

// CreateTask inserts a task row directly, bypassing ordering rules.
func CreateTask(t testing.TB, db *gorm.DB, project *models.Project, title string, status models.TaskStatus, orderIndex int) *models.Task {
	t.Helper()
	task := &models.Task{
		OrganizationID: project.OrganizationID,
		ProjectID:      project.ID,
		Title:          title,
		Status:         status,
		Priority:       models.PriorityMedium,
		OrderIndex:     orderIndex,
	}
	require.NoError(t, db.Create(task).Error)
	return task
}

package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/projecttime-api/internal/models"
	"github.com/yukikurage/projecttime-api/internal/testutil"
	"github.com/yukikurage/projecttime-api/internal/utils"
	"gorm.io/gorm"
)

func TestProjectRepository_ListAndTotals(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewProjectRepository(db)
	org := testutil.CreateOrganization(t, db, "acme")
	user := testutil.CreateUser(t, db, org.ID, "a@example.com", models.RoleAdmin)

	web := testutil.CreateProject(t, db, org.ID, "WEB")
	testutil.CreateProject(t, db, org.ID, "APP")
	archived := testutil.CreateProject(t, db, org.ID, "OLD")
	require.NoError(t, repo.Deactivate(org.ID, archived.ID))

	testutil.CreateTask(t, db, web, "t", models.TaskStatusTodo, 0)
	for _, e := range []models.TimesheetEntry{
		{Minutes: 90, Billable: true},
		{Minutes: 30, Billable: false},
	} {
		e.OrganizationID = org.ID
		e.UserID = user.ID
		e.ProjectID = web.ID
		e.Date = time.Now()
		require.NoError(t, db.Create(&e).Error)
	}

	projects, total, err := repo.List(ProjectFilter{
		OrganizationID: org.ID,
		Pagination:     utils.NewPaginationParams(1, 10, 10),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, projects, 2)

	projects, _, err = repo.List(ProjectFilter{
		OrganizationID: org.ID,
		Search:         "web",
		Pagination:     utils.NewPaginationParams(1, 10, 10),
	})
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, int64(1), projects[0].TaskCount)
	assert.Equal(t, int64(2), projects[0].TimeEntryCount)

	minutes, billable, err := repo.TimeTotals(org.ID, web.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(120), minutes)
	assert.Equal(t, int64(90), billable)

	_, err = repo.FindByCode(org.ID, "APP")
	assert.NoError(t, err)
	_, err = repo.FindByCode(org.ID, "NOPE")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestClientRepository_DeleteDetachesProjects(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewClientRepository(db)
	org := testutil.CreateOrganization(t, db, "acme")

	client := &models.Client{OrganizationID: org.ID, Name: "Globex", Active: true}
	require.NoError(t, repo.Create(client))

	project := testutil.CreateProject(t, db, org.ID, "GX")
	project.ClientID = &client.ID
	require.NoError(t, db.Save(project).Error)

	found, err := repo.FindByID(org.ID, client.ID, "Projects")
	require.NoError(t, err)
	assert.Equal(t, int64(1), found.ProjectCount)
	assert.Len(t, found.Projects, 1)

	require.NoError(t, repo.Delete(org.ID, client.ID))

	var reloaded models.Project
	require.NoError(t, db.First(&reloaded, "id = ?", project.ID).Error)
	assert.Nil(t, reloaded.ClientID)
	assert.ErrorIs(t, repo.Delete(org.ID, client.ID), gorm.ErrRecordNotFound)
}

func TestTimesheetRepository_ListRange(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewTimesheetRepository(db)
	org := testutil.CreateOrganization(t, db, "acme")
	user := testutil.CreateUser(t, db, org.ID, "a@example.com", models.RoleTeamMember)
	project := testutil.CreateProject(t, db, org.ID, "WEB")

	day := func(d int) time.Time { return time.Date(2026, 2, d, 0, 0, 0, 0, time.UTC) }
	for _, d := range []int{1, 2, 3, 9} {
		require.NoError(t, repo.Create(&models.TimesheetEntry{
			OrganizationID: org.ID,
			UserID:         user.ID,
			ProjectID:      project.ID,
			Date:           day(d),
			Minutes:        60,
			Billable:       true,
		}))
	}

	from, to := day(2), day(3)
	entries, total, err := repo.List(TimesheetFilter{OrganizationID: org.ID, From: &from, To: &to})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Date.After(entries[1].Date))
	assert.Equal(t, project.ID, entries[0].Project.ID)

	page := utils.NewPaginationParams(2, 3, 50)
	entries, total, err = repo.List(TimesheetFilter{OrganizationID: org.ID, Pagination: &page})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, entries, 1)
}

func TestUserRepository_Registration(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)

	org := &models.Organization{Name: "Acme", Slug: "acme", Plan: "FREE", Locale: "en", Currency: "USD", Timezone: "UTC"}
	user := &models.User{Email: "owner@acme.test", Name: "Owner", Role: models.RoleAdmin, Active: true}
	require.NoError(t, repo.CreateOrganizationWithAdmin(org, user))
	assert.Equal(t, org.ID, user.OrganizationID)

	exists, err := repo.EmailExists("owner@acme.test")
	require.NoError(t, err)
	assert.True(t, exists)

	found, err := repo.FindActiveByEmail("owner@acme.test")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	count, err := repo.CountActiveByIDs(org.ID, []string{user.ID, "nope"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	now := time.Now()
	require.NoError(t, repo.TouchLastLogin(found, now))
	assert.NotNil(t, found.LastLoginAt)

	// a clashing slug aborts registration before the user is written
	dup := &models.Organization{Name: "Acme", Slug: "acme", Plan: "FREE", Locale: "en", Currency: "USD", Timezone: "UTC"}
	err = repo.CreateOrganizationWithAdmin(dup, &models.User{Email: "x@acme.test", Name: "X", Role: models.RoleAdmin, Active: true})
	assert.ErrorIs(t, err, ErrCreateOrganization)

	exists, err = repo.EmailExists("x@acme.test")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestOrganizationRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewOrganizationRepository(db)
	org := testutil.CreateOrganization(t, db, "acme")
	testutil.CreateUser(t, db, org.ID, "a@example.com", models.RoleAdmin)
	inactive := testutil.CreateUser(t, db, org.ID, "b@example.com", models.RoleTeamMember)
	require.NoError(t, db.Model(inactive).Update("active", false).Error)

	found, err := repo.FindByID(org.ID, "Users")
	require.NoError(t, err)
	assert.Len(t, found.Users, 1)

	taken, err := repo.SlugExists(org.Slug)
	require.NoError(t, err)
	assert.True(t, taken)

	found.Name = "Acme Corp"
	require.NoError(t, repo.Update(found))

	reloaded, err := repo.FindByID(org.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", reloaded.Name)
}

package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/projecttime-api/internal/models"
	"github.com/yukikurage/projecttime-api/internal/repository"
	"github.com/yukikurage/projecttime-api/internal/testutil"
	"github.com/yukikurage/projecttime-api/internal/utils"
	"gorm.io/gorm"
)

type ProjectServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	projects *ProjectService
	clients  *ClientService
	org      *models.Organization
	user     *models.User
}

func (suite *ProjectServiceTestSuite) SetupTest() {
	suite.db = testutil.NewTestDB(suite.T())
	clientRepo := repository.NewClientRepository(suite.db)
	suite.projects = NewProjectService(
		repository.NewProjectRepository(suite.db),
		clientRepo,
		repository.NewTaskRepository(suite.db),
		repository.NewTimesheetRepository(suite.db),
	)
	suite.clients = NewClientService(clientRepo)
	suite.org = testutil.CreateOrganization(suite.T(), suite.db, "studio")
	suite.user = testutil.CreateUser(suite.T(), suite.db, suite.org.ID, "me@studio.test", models.RoleManager)
}

func (suite *ProjectServiceTestSuite) TestCreateProject() {
	client, err := suite.clients.CreateClient(suite.org.ID, ClientInput{Name: "Globex"})
	suite.Require().NoError(err)

	project, err := suite.projects.CreateProject(CreateProjectInput{
		OrganizationID: suite.org.ID,
		ClientID:       &client.ID,
		Name:           "Website",
		Code:           "WEB",
	})
	suite.Require().NoError(err)
	suite.Equal(models.ProjectStatusPlanned, project.Status)
	suite.True(project.Active)
	suite.Require().NotNil(project.Client)
	suite.Equal("Globex", project.Client.Name)

	_, err = suite.projects.CreateProject(CreateProjectInput{OrganizationID: suite.org.ID, Name: "Again", Code: "WEB"})
	suite.ErrorIs(err, ErrProjectCodeTaken)

	// codes are unique per organization only
	other := testutil.CreateOrganization(suite.T(), suite.db, "elsewhere")
	_, err = suite.projects.CreateProject(CreateProjectInput{OrganizationID: other.ID, Name: "Website", Code: "WEB"})
	suite.NoError(err)

	missing := "missing"
	_, err = suite.projects.CreateProject(CreateProjectInput{OrganizationID: suite.org.ID, ClientID: &missing, Name: "X", Code: "X"})
	suite.ErrorIs(err, ErrClientNotFound)
}

func (suite *ProjectServiceTestSuite) TestCreateProject_Validation() {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)
	negative := -5

	cases := []struct {
		name  string
		input CreateProjectInput
		err   error
	}{
		{"no name", CreateProjectInput{Code: "A"}, ErrProjectNameRequired},
		{"no code", CreateProjectInput{Name: "A"}, ErrProjectCodeRequired},
		{"bad status", CreateProjectInput{Name: "A", Code: "A", Status: "DRAFT"}, ErrInvalidProjectStatus},
		{"dates reversed", CreateProjectInput{Name: "A", Code: "A", StartDate: &start, EndDate: &end}, ErrInvalidProjectDates},
		{"negative budget", CreateProjectInput{Name: "A", Code: "A", BudgetHours: &negative}, ErrInvalidProjectBudget},
	}
	for _, tc := range cases {
		suite.Run(tc.name, func() {
			tc.input.OrganizationID = suite.org.ID
			_, err := suite.projects.CreateProject(tc.input)
			suite.ErrorIs(err, tc.err)
		})
	}
}

func (suite *ProjectServiceTestSuite) TestUpdateAndDeleteProject() {
	first := testutil.CreateProject(suite.T(), suite.db, suite.org.ID, "ONE")
	testutil.CreateProject(suite.T(), suite.db, suite.org.ID, "TWO")

	taken := "TWO"
	_, err := suite.projects.UpdateProject(suite.org.ID, first.ID, UpdateProjectInput{Code: &taken})
	suite.ErrorIs(err, ErrProjectCodeTaken)

	same := "ONE"
	name := "Renamed"
	updated, err := suite.projects.UpdateProject(suite.org.ID, first.ID, UpdateProjectInput{Code: &same, Name: &name})
	suite.Require().NoError(err)
	suite.Equal("Renamed", updated.Name)

	suite.Require().NoError(suite.projects.DeleteProject(suite.org.ID, first.ID))
	projects, total, err := suite.projects.ListProjects(ListProjectsInput{
		OrganizationID: suite.org.ID,
		Pagination:     utils.NewPaginationParams(1, 10, 10),
	})
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Equal("TWO", projects[0].Code)

	suite.ErrorIs(suite.projects.DeleteProject(suite.org.ID, "missing"), ErrProjectNotFound)
}

func (suite *ProjectServiceTestSuite) TestGetProjectSummary() {
	budget := 10
	project, err := suite.projects.CreateProject(CreateProjectInput{
		OrganizationID: suite.org.ID,
		Name:           "Budgeted",
		Code:           "BUD",
		BudgetHours:    &budget,
	})
	suite.Require().NoError(err)

	stored := &models.Project{}
	suite.Require().NoError(suite.db.First(stored, "id = ?", project.ID).Error)
	testutil.CreateTask(suite.T(), suite.db, stored, "a", models.TaskStatusTodo, 0)
	testutil.CreateTask(suite.T(), suite.db, stored, "b", models.TaskStatusTodo, 1)
	testutil.CreateTask(suite.T(), suite.db, stored, "c", models.TaskStatusDone, 0)

	for _, e := range []struct {
		minutes  int
		billable bool
	}{{90, true}, {40, false}} {
		suite.Require().NoError(suite.db.Create(&models.TimesheetEntry{
			OrganizationID: suite.org.ID,
			UserID:         suite.user.ID,
			ProjectID:      project.ID,
			Date:           testDay,
			Minutes:        e.minutes,
			Billable:       e.billable,
		}).Error)
	}

	summary, err := suite.projects.GetProjectSummary(suite.org.ID, project.ID)
	suite.Require().NoError(err)
	suite.Equal(2.17, summary.TotalHours)
	suite.Equal(1.5, summary.BillableHours)
	suite.Require().NotNil(summary.RemainingBudgetHours)
	suite.Equal(7.83, *summary.RemainingBudgetHours)
	suite.Equal(int64(2), summary.Tasks[models.TaskStatusTodo])
	suite.Equal(int64(1), summary.Tasks[models.TaskStatusDone])

	detail, err := suite.projects.GetProject(suite.org.ID, project.ID)
	suite.Require().NoError(err)
	suite.Len(detail.Tasks, 3)
	suite.Len(detail.TimesheetEntries, 2)
	suite.Equal(int64(3), detail.TaskCount)
}

func (suite *ProjectServiceTestSuite) TestGetProjectSummary_BudgetNeverNegative() {
	budget := 1
	project, err := suite.projects.CreateProject(CreateProjectInput{
		OrganizationID: suite.org.ID,
		Name:           "Overrun",
		Code:           "OVR",
		BudgetHours:    &budget,
	})
	suite.Require().NoError(err)
	suite.Require().NoError(suite.db.Create(&models.TimesheetEntry{
		OrganizationID: suite.org.ID,
		UserID:         suite.user.ID,
		ProjectID:      project.ID,
		Date:           testDay,
		Minutes:        300,
		Billable:       true,
	}).Error)

	summary, err := suite.projects.GetProjectSummary(suite.org.ID, project.ID)
	suite.Require().NoError(err)
	suite.Require().NotNil(summary.RemainingBudgetHours)
	suite.Zero(*summary.RemainingBudgetHours)

	unbudgeted := testutil.CreateProject(suite.T(), suite.db, suite.org.ID, "FREE")
	summary, err = suite.projects.GetProjectSummary(suite.org.ID, unbudgeted.ID)
	suite.Require().NoError(err)
	suite.Nil(summary.RemainingBudgetHours)
	suite.Empty(summary.Tasks)
}

func (suite *ProjectServiceTestSuite) TestDeleteClientDetachesProjects() {
	client, err := suite.clients.CreateClient(suite.org.ID, ClientInput{Name: "Initech", Email: "ops@initech.test"})
	suite.Require().NoError(err)
	project, err := suite.projects.CreateProject(CreateProjectInput{
		OrganizationID: suite.org.ID,
		ClientID:       &client.ID,
		Name:           "TPS",
		Code:           "TPS",
	})
	suite.Require().NoError(err)

	found, total, err := suite.clients.ListClients(suite.org.ID, "initech", utils.NewPaginationParams(1, 10, 10))
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Equal(int64(1), found[0].ProjectCount)

	suite.Require().NoError(suite.clients.DeleteClient(suite.org.ID, client.ID))

	_, err = suite.clients.GetClient(suite.org.ID, client.ID)
	suite.ErrorIs(err, ErrClientNotFound)

	reloaded, err := suite.projects.GetProject(suite.org.ID, project.ID)
	suite.Require().NoError(err)
	suite.Nil(reloaded.ClientID)
}

func TestProjectServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProjectServiceTestSuite))
}

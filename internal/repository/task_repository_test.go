package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/projecttime-api/internal/models"
	"github.com/yukikurage/projecttime-api/internal/ordering"
	"github.com/yukikurage/projecttime-api/internal/testutil"
	"github.com/yukikurage/projecttime-api/internal/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type TaskRepositoryTestSuite struct {
	suite.Suite
	db      *gorm.DB
	repo    TaskRepository
	org     *models.Organization
	project *models.Project
}

func (suite *TaskRepositoryTestSuite) SetupTest() {
	suite.db = testutil.NewTestDB(suite.T())
	suite.repo = NewTaskRepository(suite.db)
	suite.org = testutil.CreateOrganization(suite.T(), suite.db, "acme")
	suite.project = testutil.CreateProject(suite.T(), suite.db, suite.org.ID, "WEB")
}

func (suite *TaskRepositoryTestSuite) orderOf(id string) int {
	var task models.Task
	suite.Require().NoError(suite.db.First(&task, "id = ?", id).Error)
	return task.OrderIndex
}

func (suite *TaskRepositoryTestSuite) TestMaxOrderIndex() {
	lane := ordering.LaneKey{OrganizationID: suite.org.ID, ProjectID: suite.project.ID, Status: models.TaskStatusTodo}

	_, found, err := suite.repo.MaxOrderIndex(lane)
	suite.Require().NoError(err)
	suite.False(found)

	testutil.CreateTask(suite.T(), suite.db, suite.project, "a", models.TaskStatusTodo, 3)
	testutil.CreateTask(suite.T(), suite.db, suite.project, "b", models.TaskStatusTodo, 7)
	testutil.CreateTask(suite.T(), suite.db, suite.project, "c", models.TaskStatusDone, 99)

	maxIndex, found, err := suite.repo.MaxOrderIndex(lane)
	suite.Require().NoError(err)
	suite.True(found)
	suite.Equal(7, maxIndex)
}

func (suite *TaskRepositoryTestSuite) TestFindByID_ScopedToOrganization() {
	task := testutil.CreateTask(suite.T(), suite.db, suite.project, "a", models.TaskStatusTodo, 0)
	other := testutil.CreateOrganization(suite.T(), suite.db, "other")

	found, err := suite.repo.FindByID(suite.org.ID, task.ID)
	suite.Require().NoError(err)
	suite.Equal(task.ID, found.ID)

	_, err = suite.repo.FindByID(other.ID, task.ID)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (suite *TaskRepositoryTestSuite) TestFindByID_Counts() {
	parent := testutil.CreateTask(suite.T(), suite.db, suite.project, "parent", models.TaskStatusTodo, 0)
	child := testutil.CreateTask(suite.T(), suite.db, suite.project, "child", models.TaskStatusTodo, 1)
	child.ParentID = &parent.ID
	suite.Require().NoError(suite.db.Save(child).Error)

	found, err := suite.repo.FindByID(suite.org.ID, parent.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(1), found.SubtaskCount)
	suite.Equal(int64(0), found.TimeEntryCount)
}

func (suite *TaskRepositoryTestSuite) TestList_OrderAndFilters() {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mk := func(title string, status models.TaskStatus, idx int, offset time.Duration) *models.Task {
		task := &models.Task{
			OrganizationID: suite.org.ID,
			ProjectID:      suite.project.ID,
			Title:          title,
			Status:         status,
			Priority:       models.PriorityLow,
			OrderIndex:     idx,
			CreatedAt:      base.Add(offset),
		}
		suite.Require().NoError(suite.repo.Create(task, nil))
		return task
	}

	mk("done", models.TaskStatusDone, 0, 0)
	mk("todo old", models.TaskStatusTodo, 1, 0)
	mk("todo new", models.TaskStatusTodo, 1, time.Minute)
	mk("review", models.TaskStatusInReview, 0, 0)
	mk("first", models.TaskStatusTodo, 0, 0)

	tasks, total, err := suite.repo.List(TaskFilter{
		OrganizationID: suite.org.ID,
		Pagination:     utils.NewPaginationParams(1, 50, 50),
	})
	suite.Require().NoError(err)
	suite.Equal(int64(5), total)

	titles := make([]string, len(tasks))
	for i, t := range tasks {
		titles[i] = t.Title
	}
	suite.Equal([]string{"first", "todo new", "todo old", "review", "done"}, titles)
	suite.Equal(suite.project.ID, tasks[0].Project.ID)

	tasks, total, err = suite.repo.List(TaskFilter{
		OrganizationID: suite.org.ID,
		Search:         "TODO",
		Pagination:     utils.NewPaginationParams(1, 1, 50),
	})
	suite.Require().NoError(err)
	suite.Equal(int64(2), total)
	suite.Len(tasks, 1)
	suite.Equal("todo new", tasks[0].Title)
}

func (suite *TaskRepositoryTestSuite) TestList_AssigneeFilter() {
	user := testutil.CreateUser(suite.T(), suite.db, suite.org.ID, "dev@example.com", models.RoleTeamMember)
	mine := testutil.CreateTask(suite.T(), suite.db, suite.project, "mine", models.TaskStatusTodo, 0)
	testutil.CreateTask(suite.T(), suite.db, suite.project, "theirs", models.TaskStatusTodo, 1)

	suite.Require().NoError(suite.repo.Update(mine, &[]string{user.ID}))

	tasks, total, err := suite.repo.List(TaskFilter{
		OrganizationID: suite.org.ID,
		AssigneeID:     user.ID,
		Pagination:     utils.NewPaginationParams(1, 50, 50),
	})
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Equal(mine.ID, tasks[0].ID)
	suite.Require().Len(tasks[0].Assignees, 1)
	suite.Equal(user.ID, tasks[0].Assignees[0].ID)
}

func (suite *TaskRepositoryTestSuite) TestUpdate_Assignees() {
	a := testutil.CreateUser(suite.T(), suite.db, suite.org.ID, "a@example.com", models.RoleTeamMember)
	b := testutil.CreateUser(suite.T(), suite.db, suite.org.ID, "b@example.com", models.RoleTeamMember)
	task := testutil.CreateTask(suite.T(), suite.db, suite.project, "t", models.TaskStatusTodo, 0)

	suite.Require().NoError(suite.repo.Update(task, &[]string{a.ID, b.ID}))
	suite.Require().NoError(suite.repo.Update(task, &[]string{b.ID}))

	task.Title = "renamed"
	suite.Require().NoError(suite.repo.Update(task, nil))

	found, err := suite.repo.FindByID(suite.org.ID, task.ID, "Assignees")
	suite.Require().NoError(err)
	suite.Equal("renamed", found.Title)
	suite.Require().Len(found.Assignees, 1)
	suite.Equal(b.ID, found.Assignees[0].ID)

	suite.Require().NoError(suite.repo.Update(task, &[]string{}))
	found, err = suite.repo.FindByID(suite.org.ID, task.ID, "Assignees")
	suite.Require().NoError(err)
	suite.Empty(found.Assignees)
}

func (suite *TaskRepositoryTestSuite) TestCreate_WithAssignees() {
	a := testutil.CreateUser(suite.T(), suite.db, suite.org.ID, "a@example.com", models.RoleTeamMember)
	task := &models.Task{
		OrganizationID: suite.org.ID,
		ProjectID:      suite.project.ID,
		Title:          "assigned",
		Status:         models.TaskStatusTodo,
		Priority:       models.PriorityMedium,
	}
	suite.Require().NoError(suite.repo.Create(task, []string{a.ID}))

	found, err := suite.repo.FindByID(suite.org.ID, task.ID, "Assignees")
	suite.Require().NoError(err)
	suite.Require().Len(found.Assignees, 1)
	suite.Equal(a.ID, found.Assignees[0].ID)
}

func (suite *TaskRepositoryTestSuite) TestCreate_AssigneeFailureLeavesNoTask() {
	a := testutil.CreateUser(suite.T(), suite.db, suite.org.ID, "a@example.com", models.RoleTeamMember)
	task := &models.Task{
		OrganizationID: suite.org.ID,
		ProjectID:      suite.project.ID,
		Title:          "orphan",
		Status:         models.TaskStatusTodo,
		Priority:       models.PriorityMedium,
	}

	// duplicate rows violate the (task_id, user_id) primary key
	suite.Error(suite.repo.Create(task, []string{a.ID, a.ID}))

	var count int64
	suite.Require().NoError(suite.db.Model(&models.Task{}).Where("title = ?", "orphan").Count(&count).Error)
	suite.Zero(count)
}

func (suite *TaskRepositoryTestSuite) TestUpdate_AssigneeFailureKeepsOldFields() {
	a := testutil.CreateUser(suite.T(), suite.db, suite.org.ID, "a@example.com", models.RoleTeamMember)
	task := testutil.CreateTask(suite.T(), suite.db, suite.project, "before", models.TaskStatusTodo, 0)

	task.Title = "after"
	suite.Error(suite.repo.Update(task, &[]string{a.ID, a.ID}))

	found, err := suite.repo.FindByID(suite.org.ID, task.ID, "Assignees")
	suite.Require().NoError(err)
	suite.Equal("before", found.Title)
	suite.Empty(found.Assignees)
}

func (suite *TaskRepositoryTestSuite) TestApplyOrder() {
	a := testutil.CreateTask(suite.T(), suite.db, suite.project, "A", models.TaskStatusTodo, 0)
	b := testutil.CreateTask(suite.T(), suite.db, suite.project, "B", models.TaskStatusTodo, 1)

	written, err := suite.repo.ApplyOrder(suite.org.ID, []ordering.Change{
		{TaskID: a.ID, OrderIndex: 5},
		{TaskID: b.ID, OrderIndex: 2},
	}, false)
	suite.Require().NoError(err)
	suite.ElementsMatch([]string{a.ID, b.ID}, written)

	suite.Equal(5, suite.orderOf(a.ID))
	suite.Equal(2, suite.orderOf(b.ID))
}

func (suite *TaskRepositoryTestSuite) TestApplyOrder_DuplicateLastWins() {
	a := testutil.CreateTask(suite.T(), suite.db, suite.project, "A", models.TaskStatusTodo, 0)

	_, err := suite.repo.ApplyOrder(suite.org.ID, []ordering.Change{
		{TaskID: a.ID, OrderIndex: 4},
		{TaskID: a.ID, OrderIndex: 9},
	}, false)
	suite.Require().NoError(err)
	suite.Equal(9, suite.orderOf(a.ID))
}

func (suite *TaskRepositoryTestSuite) TestApplyOrder_MissingTaskChangesNothing() {
	a := testutil.CreateTask(suite.T(), suite.db, suite.project, "A", models.TaskStatusTodo, 0)

	_, err := suite.repo.ApplyOrder(suite.org.ID, []ordering.Change{
		{TaskID: a.ID, OrderIndex: 7},
		{TaskID: "missing", OrderIndex: 1},
	}, false)
	suite.ErrorIs(err, ErrMissingTasks)
	suite.Equal(0, suite.orderOf(a.ID))
}

func (suite *TaskRepositoryTestSuite) TestApplyOrder_ForeignTaskRejected() {
	other := testutil.CreateOrganization(suite.T(), suite.db, "other")
	foreignProject := testutil.CreateProject(suite.T(), suite.db, other.ID, "X")
	foreign := testutil.CreateTask(suite.T(), suite.db, foreignProject, "F", models.TaskStatusTodo, 3)

	_, err := suite.repo.ApplyOrder(suite.org.ID, []ordering.Change{{TaskID: foreign.ID, OrderIndex: 0}}, false)
	suite.ErrorIs(err, ErrMissingTasks)
	suite.Equal(3, suite.orderOf(foreign.ID))
}

func (suite *TaskRepositoryTestSuite) TestApplyOrder_Normalize() {
	a := testutil.CreateTask(suite.T(), suite.db, suite.project, "A", models.TaskStatusTodo, 0)
	b := testutil.CreateTask(suite.T(), suite.db, suite.project, "B", models.TaskStatusTodo, 10)
	c := testutil.CreateTask(suite.T(), suite.db, suite.project, "C", models.TaskStatusTodo, 20)
	done := testutil.CreateTask(suite.T(), suite.db, suite.project, "D", models.TaskStatusDone, 40)

	written, err := suite.repo.ApplyOrder(suite.org.ID, []ordering.Change{{TaskID: a.ID, OrderIndex: 30}}, true)
	suite.Require().NoError(err)

	suite.Equal(2, suite.orderOf(a.ID))
	suite.Equal(0, suite.orderOf(b.ID))
	suite.Equal(1, suite.orderOf(c.ID))
	suite.Equal(40, suite.orderOf(done.ID), "untouched lane keeps its indices")
	suite.ElementsMatch([]string{a.ID, b.ID, c.ID}, written)
}

func (suite *TaskRepositoryTestSuite) TestApplyOrder_NormalizeEveryTouchedLane() {
	todoA := testutil.CreateTask(suite.T(), suite.db, suite.project, "A", models.TaskStatusTodo, 5)
	todoB := testutil.CreateTask(suite.T(), suite.db, suite.project, "B", models.TaskStatusTodo, 9)
	doneA := testutil.CreateTask(suite.T(), suite.db, suite.project, "C", models.TaskStatusDone, 3)
	doneB := testutil.CreateTask(suite.T(), suite.db, suite.project, "D", models.TaskStatusDone, 8)

	_, err := suite.repo.ApplyOrder(suite.org.ID, []ordering.Change{
		{TaskID: todoA.ID, OrderIndex: 20},
		{TaskID: doneB.ID, OrderIndex: 1},
	}, true)
	suite.Require().NoError(err)

	suite.Equal(1, suite.orderOf(todoA.ID))
	suite.Equal(0, suite.orderOf(todoB.ID))
	suite.Equal(0, suite.orderOf(doneB.ID))
	suite.Equal(1, suite.orderOf(doneA.ID))
}

func (suite *TaskRepositoryTestSuite) TestDeleteAndCounts() {
	task := testutil.CreateTask(suite.T(), suite.db, suite.project, "t", models.TaskStatusTodo, 0)
	user := testutil.CreateUser(suite.T(), suite.db, suite.org.ID, "dev@example.com", models.RoleTeamMember)
	entry := &models.TimesheetEntry{
		OrganizationID: suite.org.ID,
		UserID:         user.ID,
		ProjectID:      suite.project.ID,
		TaskID:         &task.ID,
		Date:           time.Now(),
		Minutes:        30,
	}
	suite.Require().NoError(suite.db.Create(entry).Error)

	count, err := suite.repo.CountTimesheetEntries(suite.org.ID, task.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(1), count)

	count, err = suite.repo.CountSubtasks(suite.org.ID, task.ID)
	suite.Require().NoError(err)
	suite.Zero(count)

	suite.Require().NoError(suite.repo.Delete(suite.org.ID, task.ID))
	suite.ErrorIs(suite.repo.Delete(suite.org.ID, task.ID), gorm.ErrRecordNotFound)
}

func (suite *TaskRepositoryTestSuite) TestCountByStatus() {
	testutil.CreateTask(suite.T(), suite.db, suite.project, "a", models.TaskStatusTodo, 0)
	testutil.CreateTask(suite.T(), suite.db, suite.project, "b", models.TaskStatusTodo, 1)
	testutil.CreateTask(suite.T(), suite.db, suite.project, "c", models.TaskStatusDone, 0)

	counts, err := suite.repo.CountByStatus(suite.org.ID, suite.project.ID)
	suite.Require().NoError(err)
	suite.Equal(map[models.TaskStatus]int64{
		models.TaskStatusTodo: 2,
		models.TaskStatusDone: 1,
	}, counts)
}

func TestTaskRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(TaskRepositoryTestSuite))
}

// A failing write inside ApplyOrder must roll the whole batch back.
func TestApplyOrder_RollsBackOnWriteFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "tasks"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec(`UPDATE "tasks" SET "order_index"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "tasks" SET "order_index"`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	repo := NewTaskRepository(db)
	_, err = repo.ApplyOrder("org", []ordering.Change{
		{TaskID: "a", OrderIndex: 1},
		{TaskID: "b", OrderIndex: 0},
	}, false)

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

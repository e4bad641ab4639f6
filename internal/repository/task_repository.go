package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/projecttime-api/internal/database"
	"github.com/yukikurage/projecttime-api/internal/models"
	"github.com/yukikurage/projecttime-api/internal/ordering"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrMissingTasks is returned by ApplyOrder when a referenced task does not
// exist in the organization. Nothing is written in that case.
var ErrMissingTasks = errors.New("task repository: one or more tasks not found")

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// laneRankExpr is ordering.LaneRank as SQL so pagination cuts the listing
// at the same place the in-memory sort would.
var laneRankExpr = func() string {
	var b strings.Builder
	b.WriteString("CASE tasks.status")
	for _, s := range models.TaskStatuses {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", s, ordering.LaneRank(s))
	}
	fmt.Fprintf(&b, " ELSE %d END", ordering.LaneRank(""))
	return b.String()
}()

const taskCountColumns = "tasks.*, " +
	"(SELECT COUNT(*) FROM tasks AS subtasks WHERE subtasks.parent_id = tasks.id) AS subtask_count, " +
	"(SELECT COUNT(*) FROM timesheet_entries WHERE timesheet_entries.task_id = tasks.id) AS time_entry_count"

func withTaskCounts(db *gorm.DB) *gorm.DB {
	return db.Select(taskCountColumns)
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task, assigneeIDs []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(task).Error; err != nil {
			return err
		}
		if len(assigneeIDs) == 0 {
			return nil
		}
		return replaceAssignees(tx, task.OrganizationID, task.ID, assigneeIDs)
	})
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(organizationID, id string, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db.Model(&models.Task{}).
		Scopes(database.ForOrganization("tasks", organizationID), withTaskCounts)

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.Where("tasks.id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	query := r.db.Model(&models.Task{}).
		Scopes(
			database.ForOrganization("tasks", filter.OrganizationID),
			database.Search(filter.Search, "tasks.title", "tasks.description"),
		)

	if filter.ProjectID != "" {
		query = query.Where("tasks.project_id = ?", filter.ProjectID)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.AssigneeID != "" {
		assigneeSubQuery := r.db.Model(&models.TaskAssignee{}).
			Select("1").
			Where("task_assignees.task_id = tasks.id").
			Where("task_assignees.user_id = ?", filter.AssigneeID)
		query = query.Where("EXISTS (?)", assigneeSubQuery)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []models.Task
	err := query.
		Scopes(withTaskCounts, database.Paginate(filter.Pagination)).
		Order(laneRankExpr).
		Order("tasks.status ASC").
		Order("tasks.order_index ASC").
		Order("tasks.created_at DESC").
		Order("tasks.id ASC").
		Preload("Project").
		Preload("Assignees").
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// ListByProject returns every task of a project
func (r *GormTaskRepository) ListByProject(organizationID, projectID string) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Model(&models.Task{}).
		Scopes(database.ForOrganization("tasks", organizationID), withTaskCounts).
		Where("tasks.project_id = ?", projectID).
		Order("tasks.order_index ASC").
		Order("tasks.created_at DESC").
		Preload("Assignees").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *GormTaskRepository) ListRecentByProject(organizationID, projectID string, limit int) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.Model(&models.Task{}).
		Scopes(database.ForOrganization("tasks", organizationID)).
		Where("tasks.project_id = ?", projectID).
		Order("tasks.created_at DESC").
		Limit(limit).
		Preload("Assignees").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// MaxOrderIndex reports the highest index in a lane
func (r *GormTaskRepository) MaxOrderIndex(lane ordering.LaneKey) (int, bool, error) {
	var result struct {
		MaxIndex *int
		Total    int64
	}

	err := r.db.Model(&models.Task{}).
		Select("MAX(order_index) AS max_index, COUNT(*) AS total").
		Where("organization_id = ? AND project_id = ? AND status = ?",
			lane.OrganizationID, lane.ProjectID, lane.Status).
		Scan(&result).Error
	if err != nil {
		return 0, false, err
	}

	if result.Total == 0 || result.MaxIndex == nil {
		return 0, false, nil
	}
	return *result.MaxIndex, true, nil
}

// Update saves a task. A nil assigneeIDs leaves the assignees untouched;
// otherwise the set is replaced in the same transaction.
func (r *GormTaskRepository) Update(task *models.Task, assigneeIDs *[]string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(task).Error; err != nil {
			return err
		}
		if assigneeIDs == nil {
			return nil
		}
		return replaceAssignees(tx, task.OrganizationID, task.ID, *assigneeIDs)
	})
}

func replaceAssignees(tx *gorm.DB, organizationID, taskID string, userIDs []string) error {
	var owned int64
	if err := tx.Model(&models.Task{}).
		Where("id = ? AND organization_id = ?", taskID, organizationID).
		Count(&owned).Error; err != nil {
		return err
	}
	if owned == 0 {
		return gorm.ErrRecordNotFound
	}

	if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskAssignee{}).Error; err != nil {
		return err
	}

	if len(userIDs) == 0 {
		return nil
	}

	rows := make([]models.TaskAssignee, len(userIDs))
	for i, userID := range userIDs {
		rows[i] = models.TaskAssignee{TaskID: taskID, UserID: userID}
	}
	return tx.Create(&rows).Error
}

// Delete removes a task
func (r *GormTaskRepository) Delete(organizationID, id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskAssignee{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ? AND organization_id = ?", id, organizationID).Delete(&models.Task{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func countTasks(db *gorm.DB, organizationID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := db.Model(&models.Task{}).
		Where("organization_id = ? AND id IN ?", organizationID, ids).
		Count(&count).Error
	return count, err
}

// ApplyOrder writes every change inside one transaction, after checking that
// all referenced tasks exist in the organization. Changes are applied in
// order, so for a duplicated id the last change wins. With normalize set,
// each lane touched by the batch is re-sequenced to 0..n-1 before commit.
// It returns the ids of every task whose index was written.
func (r *GormTaskRepository) ApplyOrder(organizationID string, changes []ordering.Change, normalize bool) ([]string, error) {
	ids := distinctTaskIDs(changes)
	if len(ids) == 0 {
		return nil, nil
	}

	var written []string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		count, err := countTasks(tx, organizationID, ids)
		if err != nil {
			return err
		}
		if int(count) != len(ids) {
			return ErrMissingTasks
		}

		if err := writeOrder(tx, organizationID, changes); err != nil {
			return err
		}
		written = ids

		if !normalize {
			return nil
		}

		var touched []models.Task
		if err := tx.Select("id", "organization_id", "project_id", "status").
			Where("organization_id = ? AND id IN ?", organizationID, ids).
			Find(&touched).Error; err != nil {
			return err
		}

		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			seen[id] = true
		}

		for lane := range ordering.GroupByLane(touched) {
			var members []models.Task
			if err := tx.Select("id", "order_index", "created_at").
				Where("organization_id = ? AND project_id = ? AND status = ?",
					lane.OrganizationID, lane.ProjectID, lane.Status).
				Find(&members).Error; err != nil {
				return err
			}

			renumber := ordering.Renormalize(members)
			if err := writeOrder(tx, organizationID, renumber); err != nil {
				return err
			}
			for _, c := range renumber {
				if !seen[c.TaskID] {
					seen[c.TaskID] = true
					written = append(written, c.TaskID)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return written, nil
}

func writeOrder(tx *gorm.DB, organizationID string, changes []ordering.Change) error {
	for _, c := range changes {
		err := tx.Model(&models.Task{}).
			Where("id = ? AND organization_id = ?", c.TaskID, organizationID).
			Update("order_index", c.OrderIndex).Error
		if err != nil {
			return fmt.Errorf("failed to update order of task %s: %w", c.TaskID, err)
		}
	}
	return nil
}

func distinctTaskIDs(changes []ordering.Change) []string {
	seen := make(map[string]struct{}, len(changes))
	ids := make([]string, 0, len(changes))
	for _, c := range changes {
		if _, ok := seen[c.TaskID]; ok {
			continue
		}
		seen[c.TaskID] = struct{}{}
		ids = append(ids, c.TaskID)
	}
	return ids
}

func (r *GormTaskRepository) CountSubtasks(organizationID, id string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).
		Where("organization_id = ? AND parent_id = ?", organizationID, id).
		Count(&count).Error
	return count, err
}

func (r *GormTaskRepository) CountTimesheetEntries(organizationID, id string) (int64, error) {
	var count int64
	err := r.db.Model(&models.TimesheetEntry{}).
		Where("organization_id = ? AND task_id = ?", organizationID, id).
		Count(&count).Error
	return count, err
}

// CountByStatus groups a project's tasks by status
func (r *GormTaskRepository) CountByStatus(organizationID, projectID string) (map[models.TaskStatus]int64, error) {
	var rows []struct {
		Status models.TaskStatus
		Total  int64
	}

	err := r.db.Model(&models.Task{}).
		Select("status, COUNT(*) AS total").
		Where("organization_id = ? AND project_id = ?", organizationID, projectID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.TaskStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

package database

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

// AddIndexes adds the secondary indexes that list and board queries rely on.
// The lane index itself is declared on models.Task.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Task listing: tenant + project filters, newest first tie-break
		{"tasks", "idx_tasks_org_created_at", "organization_id, created_at"},
		{"tasks", "idx_tasks_project_id", "project_id"},

		// Timesheet range scans for weekly summaries
		{"timesheet_entries", "idx_timesheet_entries_org_user_date", "organization_id, user_id, date"},
		{"timesheet_entries", "idx_timesheet_entries_org_project_date", "organization_id, project_id, date"},

		// Project listing
		{"projects", "idx_projects_org_active_created_at", "organization_id, active, created_at"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		slog.Debug("Created index", "index", idx.name, "table", idx.table, "columns", idx.columns)
	}

	return nil
}

package ordering

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/projecttime-api/internal/models"
)

func TestProject_ExampleScenario(t *testing.T) {
	// After reordering A->5 and B->2 in TODO.
	tasks := []models.Task{
		task("A", models.TaskStatusTodo, 5, 0),
		task("B", models.TaskStatusTodo, 2, time.Second),
		task("C", models.TaskStatusDone, 0, 2*time.Second),
	}

	board, dropped := Project(tasks)

	assert.Empty(t, dropped)
	assert.Equal(t, []string{"B", "A"}, ids(board.Todo))
	assert.Equal(t, []string{"C"}, ids(board.Done))
	assert.NotNil(t, board.InProgress)
	assert.Empty(t, board.InProgress)
	assert.NotNil(t, board.InReview)
	assert.Empty(t, board.InReview)
}

func TestProject_CompleteAndDisjoint(t *testing.T) {
	var tasks []models.Task
	for i, status := range models.TaskStatuses {
		for j := 0; j < 3; j++ {
			tasks = append(tasks, task(string(status)+string(rune('a'+j)), status, j, time.Duration(i)))
		}
	}

	board, dropped := Project(tasks)

	assert.Empty(t, dropped)
	assert.Equal(t, len(tasks), board.Len())

	seen := map[string]bool{}
	for _, status := range models.TaskStatuses {
		for _, placed := range *board.Lane(status) {
			assert.Equal(t, status, placed.Status)
			assert.False(t, seen[placed.ID], "duplicate %s", placed.ID)
			seen[placed.ID] = true
		}
	}
}

func TestProject_UnknownStatusDropped(t *testing.T) {
	tasks := []models.Task{
		task("ok", models.TaskStatusInReview, 0, 0),
		task("legacy", models.TaskStatus("BLOCKED"), 0, 0),
	}

	board, dropped := Project(tasks)

	require.Len(t, dropped, 1)
	assert.Equal(t, "legacy", dropped[0].ID)
	assert.Equal(t, 1, board.Len())
	assert.Nil(t, board.Lane(models.TaskStatus("BLOCKED")))
}

func TestProject_DuplicateIndicesStayWellDefined(t *testing.T) {
	tasks := []models.Task{
		task("first", models.TaskStatusTodo, 1, 0),
		task("second", models.TaskStatusTodo, 1, time.Hour),
		task("third", models.TaskStatusTodo, 0, 0),
	}

	board, _ := Project(tasks)

	assert.Equal(t, []string{"third", "second", "first"}, ids(board.Todo))
}

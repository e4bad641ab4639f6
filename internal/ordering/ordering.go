// Package ordering implements the lane ordering rules for tasks and the
// projection of a project's tasks onto the four-lane board.
//
// A lane is the set of tasks sharing (organization, project, status). Order
// inside a lane is a comparison relation, not a dense index: order_index
// ascending, then created_at descending, then id ascending. Duplicate indices
// are legal and resolved by the tie-breaks.
package ordering

import (
	"cmp"
	"slices"

	"github.com/yukikurage/projecttime-api/internal/models"
)

// LaneKey identifies the ordering domain a task's order_index belongs to.
type LaneKey struct {
	OrganizationID string
	ProjectID      string
	Status         models.TaskStatus
}

func LaneOf(t models.Task) LaneKey {
	return LaneKey{
		OrganizationID: t.OrganizationID,
		ProjectID:      t.ProjectID,
		Status:         t.Status,
	}
}

// Compare orders two tasks of the same lane.
func Compare(a, b models.Task) int {
	if c := cmp.Compare(a.OrderIndex, b.OrderIndex); c != 0 {
		return c
	}
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// LaneRank is the position of a status on the board. Unknown statuses sort
// after every lane.
func LaneRank(status models.TaskStatus) int {
	for i, s := range models.TaskStatuses {
		if s == status {
			return i
		}
	}
	return len(models.TaskStatuses)
}

// CompareListing orders tasks across lanes: lane rank first, then Compare.
func CompareListing(a, b models.Task) int {
	if c := cmp.Compare(LaneRank(a.Status), LaneRank(b.Status)); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Status, b.Status); c != 0 {
		return c
	}
	return Compare(a, b)
}

func SortLane(tasks []models.Task) {
	slices.SortStableFunc(tasks, Compare)
}

func SortListing(tasks []models.Task) {
	slices.SortStableFunc(tasks, CompareListing)
}

// NextIndex returns the index that appends a task to a lane whose current
// maximum is maxIndex. An empty lane starts at 0.
func NextIndex(maxIndex int, laneEmpty bool) int {
	if laneEmpty {
		return 0
	}
	return maxIndex + 1
}

// Change is a pending order_index assignment.
type Change struct {
	TaskID     string
	OrderIndex int
}

// Renormalize sorts a single lane and returns the assignments needed to make
// its indices contiguous from 0. Tasks already at their target are skipped.
func Renormalize(lane []models.Task) []Change {
	sorted := slices.Clone(lane)
	SortLane(sorted)

	var changes []Change
	for i, t := range sorted {
		if t.OrderIndex != i {
			changes = append(changes, Change{TaskID: t.ID, OrderIndex: i})
		}
	}
	return changes
}

// GroupByLane splits tasks by lane key, preserving input order inside groups.
func GroupByLane(tasks []models.Task) map[LaneKey][]models.Task {
	groups := make(map[LaneKey][]models.Task)
	for _, t := range tasks {
		key := LaneOf(t)
		groups[key] = append(groups[key], t)
	}
	return groups
}

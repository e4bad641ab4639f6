package ordering

import "github.com/yukikurage/projecttime-api/internal/models"

// Board holds a project's tasks split into the four lanes, each sorted with
// Compare. Lanes are never nil so they encode as empty arrays.
type Board struct {
	Todo       []models.Task
	InProgress []models.Task
	InReview   []models.Task
	Done       []models.Task
}

func NewBoard() Board {
	return Board{
		Todo:       []models.Task{},
		InProgress: []models.Task{},
		InReview:   []models.Task{},
		Done:       []models.Task{},
	}
}

// Lane returns the lane for status, or nil when status is not a board lane.
func (b *Board) Lane(status models.TaskStatus) *[]models.Task {
	switch status {
	case models.TaskStatusTodo:
		return &b.Todo
	case models.TaskStatusInProgress:
		return &b.InProgress
	case models.TaskStatusInReview:
		return &b.InReview
	case models.TaskStatusDone:
		return &b.Done
	}
	return nil
}

// Len is the number of tasks placed on the board.
func (b *Board) Len() int {
	return len(b.Todo) + len(b.InProgress) + len(b.InReview) + len(b.Done)
}

// Project partitions tasks into lanes. Tasks whose status is not one of the
// four lanes are returned separately and placed nowhere.
func Project(tasks []models.Task) (Board, []models.Task) {
	board := NewBoard()
	var dropped []models.Task

	for _, t := range tasks {
		lane := board.Lane(t.Status)
		if lane == nil {
			dropped = append(dropped, t)
			continue
		}
		*lane = append(*lane, t)
	}

	for _, status := range models.TaskStatuses {
		SortLane(*board.Lane(status))
	}

	return board, dropped
}

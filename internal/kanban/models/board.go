package models

import "strings"

// Board is a point-in-time snapshot of one project's board: its columns in
// display order and the ordered task list of every column.
type Board struct {
	ProjectID int64
	Columns   []Column
	Tasks     map[int64][]Task // columnID -> tasks, ascending DisplayOrder
}

// GetColumnIndex returns the index of the column with the given id
func (b Board) GetColumnIndex(id int64) int {
	for i := range b.Columns {
		if b.Columns[i].ID == id {
			return i
		}
	}
	return -1
}

// HasColumnName reports whether another column already uses name
// (case-insensitive). The column with id except is ignored.
func (b Board) HasColumnName(name string, except int64) bool {
	for _, col := range b.Columns {
		if col.ID != except && strings.EqualFold(strings.TrimSpace(col.Name), strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

// CanDeleteColumn returns (bool, errorMessage)
func (b Board) CanDeleteColumn(id int64) (bool, string) {
	if b.GetColumnIndex(id) < 0 {
		return false, "unknown column"
	}

	if len(b.Columns) <= 1 {
		return false, "cannot delete the only column in the project"
	}

	return true, ""
}

// TaskCount returns the total number of tasks on the board
func (b Board) TaskCount() int {
	n := 0
	for _, tasks := range b.Tasks {
		n += len(tasks)
	}
	return n
}

package fs

import (
	"cmp"
	"slices"

	"wyboard/internal/kanban/models"
)

// ChangeKind classifies a difference between two boards
type ChangeKind string

const (
	ChangeAdded   ChangeKind = "added"
	ChangeRemoved ChangeKind = "removed"
	ChangeMoved   ChangeKind = "moved"
	ChangeRenamed ChangeKind = "renamed"
)

// Change is one task-level difference. From and To hold column names for
// moves and titles for renames.
type Change struct {
	Kind   ChangeKind
	TaskID int64
	Title  string
	From   string
	To     string
}

type placed struct {
	task   models.Task
	column string
}

func index(b models.Board) map[int64]placed {
	out := make(map[int64]placed)
	for _, col := range b.Columns {
		for _, t := range b.Tasks[col.ID] {
			out[t.ID] = placed{task: t, column: col.Name}
		}
	}
	return out
}

// Diff lists what happened to tasks between an earlier board and the
// current one, ordered by task id
func Diff(before, after models.Board) []Change {
	old := index(before)
	cur := index(after)

	var changes []Change
	for id, now := range cur {
		was, ok := old[id]
		switch {
		case !ok:
			changes = append(changes, Change{Kind: ChangeAdded, TaskID: id, Title: now.task.Title, To: now.column})
		case was.column != now.column:
			changes = append(changes, Change{Kind: ChangeMoved, TaskID: id, Title: now.task.Title, From: was.column, To: now.column})
		case was.task.Title != now.task.Title:
			changes = append(changes, Change{Kind: ChangeRenamed, TaskID: id, Title: now.task.Title, From: was.task.Title, To: now.task.Title})
		}
	}
	for id, was := range old {
		if _, ok := cur[id]; !ok {
			changes = append(changes, Change{Kind: ChangeRemoved, TaskID: id, Title: was.task.Title, From: was.column})
		}
	}

	slices.SortFunc(changes, func(a, b Change) int {
		return cmp.Or(cmp.Compare(a.TaskID, b.TaskID), cmp.Compare(a.Kind, b.Kind))
	})
	return changes
}

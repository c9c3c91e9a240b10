package operations

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"wyboard/internal/kanban/board"
	"wyboard/internal/kanban/models"
)

// DragKind is what is being dragged
type DragKind int

const (
	DragTask DragKind = iota + 1
	DragColumn
)

func (k DragKind) String() string {
	switch k {
	case DragTask:
		return "task"
	case DragColumn:
		return "column"
	}
	return "none"
}

type dragState struct {
	kind DragKind // zero when idle
}

// DropEvent describes where a dragged task was released
type DropEvent struct {
	SourceColumnID int64
	DestColumnID   int64
	SourceIndex    int
	DestIndex      int
}

// maxParallelReorders bounds the per-task reorder calls of one drop
const maxParallelReorders = 8

// StartDrag enters the dragging state
func (e *Engine) StartDrag(kind DragKind) error {
	if err := e.guard(); err != nil {
		return err
	}
	if kind != DragTask && kind != DragColumn {
		return invalid("drag", ErrInvalidDrop)
	}
	e.drag = dragState{kind: kind}
	return nil
}

// CancelDrag returns to idle without touching the board
func (e *Engine) CancelDrag() {
	e.drag = dragState{}
}

// Dragging returns the current drag kind, if any
func (e *Engine) Dragging() (DragKind, bool) {
	return e.drag.kind, e.drag.kind != 0
}

// DropTask ends a task drag. Within one column the tasks are permuted and
// every task's position is confirmed on a best-effort basis. Across columns
// the task is moved locally and confirmed with a single move call; a failed
// move reloads the board. Dropping a task where it started returns a nil
// Pending.
func (e *Engine) DropTask(ev DropEvent) (*Pending, error) {
	kind := e.drag.kind
	e.drag = dragState{}
	if err := e.guard(); err != nil {
		return nil, err
	}
	if kind == 0 {
		return nil, ErrNotDragging
	}
	if kind != DragTask {
		return nil, invalid("drop", ErrInvalidDrop)
	}

	if _, ok := e.store.Column(ev.SourceColumnID); !ok {
		return nil, invalid("source column", ErrUnknownColumn)
	}
	if _, ok := e.store.Column(ev.DestColumnID); !ok {
		return nil, invalid("destination column", ErrUnknownColumn)
	}
	task, ok := e.store.TaskAt(ev.SourceColumnID, ev.SourceIndex)
	if !ok || ev.DestIndex < 0 {
		return nil, invalid("drop", ErrInvalidDrop)
	}

	if ev.SourceColumnID == ev.DestColumnID {
		return e.reorderWithinColumn(ev)
	}
	return e.moveAcrossColumns(ev, task)
}

func (e *Engine) reorderWithinColumn(ev DropEvent) (*Pending, error) {
	to := min(ev.DestIndex, e.store.WIPCount(ev.SourceColumnID)-1)
	if to == ev.SourceIndex {
		return nil, nil
	}
	if _, err := e.store.ReorderTask(ev.SourceColumnID, ev.SourceIndex, to); err != nil {
		return nil, fmt.Errorf("reordering column %d: %w", ev.SourceColumnID, err)
	}

	ordered := e.store.Tasks(ev.SourceColumnID)
	ids := make([]int64, len(ordered))
	for i, t := range ordered {
		ids[i] = t.ID
	}

	return newPending(OpReorderTask, PolicyLogOnly, func(ctx context.Context) (settleFunc, error) {
		var (
			g    errgroup.Group
			errs = make([]error, len(ids))
		)
		g.SetLimit(maxParallelReorders)
		for i, id := range ids {
			g.Go(func() error {
				if _, err := e.svc.ReorderTask(ctx, id, i); err != nil {
					e.log.WithFields(log.Fields{"task_id": id, "position": i}).
						WithError(err).Warn("failed to confirm task position")
					errs[i] = fmt.Errorf("task %d: %w", id, err)
				}
				return nil
			})
		}
		_ = g.Wait()
		return nil, errors.Join(errs...)
	}), nil
}

func (e *Engine) moveAcrossColumns(ev DropEvent, task models.Task) (*Pending, error) {
	dest := min(ev.DestIndex, e.store.WIPCount(ev.DestColumnID))
	if _, err := e.store.MoveTask(ev.SourceColumnID, ev.SourceIndex, ev.DestColumnID, dest); err != nil {
		return nil, fmt.Errorf("moving task %d: %w", task.ID, err)
	}

	columnID := ev.DestColumnID
	return newPending(OpMoveTask, PolicyReload, func(ctx context.Context) (settleFunc, error) {
		moved, err := e.svc.MoveTask(ctx, task.ID, columnID, dest)
		if err != nil {
			return nil, fmt.Errorf("moving task %d to column %d: %w", task.ID, columnID, err)
		}
		return func(m board.Mutator) bool {
			return !m.UpsertTask(moved)
		}, nil
	}), nil
}

// DropColumn ends a column drag, moving the column at index from to index
// to. The new order is confirmed on a best-effort basis.
func (e *Engine) DropColumn(from, to int) (*Pending, error) {
	kind := e.drag.kind
	e.drag = dragState{}
	if err := e.guard(); err != nil {
		return nil, err
	}
	if kind == 0 {
		return nil, ErrNotDragging
	}
	if kind != DragColumn {
		return nil, invalid("drop", ErrInvalidDrop)
	}

	n := len(e.store.Columns())
	if from < 0 || from >= n || to < 0 || to >= n {
		return nil, invalid("drop", ErrInvalidDrop)
	}
	if from == to {
		return nil, nil
	}
	if err := e.store.ReorderColumns(from, to); err != nil {
		return nil, fmt.Errorf("reordering columns: %w", err)
	}

	cols := e.store.Columns()
	ids := make([]int64, len(cols))
	for i, col := range cols {
		ids[i] = col.ID
	}
	projectID := e.store.ProjectID()

	return newPending(OpReorderColumn, PolicyLogOnly, func(ctx context.Context) (settleFunc, error) {
		if err := e.svc.ReorderColumns(ctx, projectID, ids); err != nil {
			return nil, fmt.Errorf("reordering columns of project %d: %w", projectID, err)
		}
		return nil, nil
	}), nil
}

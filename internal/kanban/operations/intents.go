package operations

import (
	"fmt"

	"wyboard/internal/kanban/models"
)

// IntentType is the kind of entity a form works on
type IntentType string

const (
	IntentTask   IntentType = "task"
	IntentColumn IntentType = "column"
)

// IntentAction distinguishes new entities from edits
type IntentAction string

const (
	ActionCreate IntentAction = "create"
	ActionUpdate IntentAction = "update"
)

// SaveIntent is what a closed editor hands back. Exactly one of Task and
// Column is set, matching Type.
type SaveIntent struct {
	Type   IntentType
	Action IntentAction
	Task   *TaskForm
	Column *ColumnForm
}

// DeleteIntent asks for a task or column to be deleted. For tasks ColumnID
// is the column holding the task; for columns TargetColumnID receives the
// deleted column's tasks.
type DeleteIntent struct {
	Type           IntentType
	ID             int64
	ColumnID       int64
	TargetColumnID int64
}

// HandleSave routes a save intent to the matching operation
func (e *Engine) HandleSave(in SaveIntent) (*Pending, error) {
	switch in.Type {
	case IntentTask:
		if in.Task == nil {
			return nil, invalid("intent", fmt.Errorf("%s intent without a task form", in.Action))
		}
		switch in.Action {
		case ActionCreate:
			return e.CreateTask(*in.Task)
		case ActionUpdate:
			return e.UpdateTask(*in.Task)
		}
	case IntentColumn:
		if in.Column == nil {
			return nil, invalid("intent", fmt.Errorf("%s intent without a column form", in.Action))
		}
		switch in.Action {
		case ActionCreate:
			return e.CreateColumn(*in.Column)
		case ActionUpdate:
			return e.EditColumn(in.Column.ID, columnUpdate(*in.Column))
		}
	default:
		return nil, invalid("intent", fmt.Errorf("unknown intent type %q", in.Type))
	}
	return nil, invalid("intent", fmt.Errorf("unknown action %q", in.Action))
}

// HandleDelete routes a delete intent to the matching operation
func (e *Engine) HandleDelete(in DeleteIntent) (*Pending, error) {
	switch in.Type {
	case IntentTask:
		return e.DeleteTask(in.ID, in.ColumnID)
	case IntentColumn:
		return e.DeleteColumn(in.ID, in.TargetColumnID)
	}
	return nil, invalid("intent", fmt.Errorf("unknown intent type %q", in.Type))
}

// columnUpdate turns an editor form into a partial update. The name is
// always sent; an empty color or a nil WIP limit leaves the field alone.
func columnUpdate(f ColumnForm) models.ColumnUpdate {
	upd := models.ColumnUpdate{Name: models.StringPtr(f.Name), WIPLimit: f.WIPLimit}
	if f.Color != "" {
		upd.Color = models.StringPtr(f.Color)
	}
	return upd
}

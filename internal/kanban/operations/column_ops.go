package operations

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"wyboard/internal/kanban/board"
	"wyboard/internal/kanban/models"
)

// MaxColumnNameLength is the longest accepted column name, in characters
const MaxColumnNameLength = 50

// ColumnForm is the column editor's payload. ID is only used for updates.
type ColumnForm struct {
	ID        int64
	Name      string
	Color     string
	WIPLimit  *int
	IsDefault bool
}

// ValidateColumnName trims the name and checks its length
func ValidateColumnName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return "", invalid("name", ErrColumnNameRequired)
	}

	if utf8.RuneCountInString(trimmed) > MaxColumnNameLength {
		return "", invalid("name", ErrColumnNameTooLong)
	}

	return trimmed, nil
}

func validateWIPLimit(limit *int) error {
	if limit != nil && *limit < 1 {
		return invalid("wip limit", ErrInvalidWIPLimit)
	}
	return nil
}

// CreateColumn validates the form and, once confirmed, inserts the
// server's column with an empty task list. Nothing is inserted locally
// before confirmation.
func (e *Engine) CreateColumn(form ColumnForm) (*Pending, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}

	name, err := ValidateColumnName(form.Name)
	if err != nil {
		return nil, err
	}
	if e.snapshotColumns().HasColumnName(name, 0) {
		return nil, invalid("name", ErrDuplicateColumnName)
	}
	if err := validateWIPLimit(form.WIPLimit); err != nil {
		return nil, err
	}

	color := strings.TrimSpace(form.Color)
	if color == "" {
		color = e.defaultColor
	}
	req := models.ColumnRequest{
		Name:         name,
		Color:        color,
		DisplayOrder: len(e.store.Columns()),
		IsDefault:    form.IsDefault,
		WIPLimit:     form.WIPLimit,
	}
	projectID := e.store.ProjectID()

	return newPending(OpCreateColumn, PolicyReload, func(ctx context.Context) (settleFunc, error) {
		col, err := e.svc.CreateColumn(ctx, projectID, req)
		if err != nil {
			return nil, fmt.Errorf("creating column %q: %w", name, err)
		}
		return func(m board.Mutator) bool {
			m.UpsertColumn(col)
			return false
		}, nil
	}), nil
}

// EditColumn applies a partial update optimistically, then replaces the
// column with the server's copy. The column's tasks are left alone.
func (e *Engine) EditColumn(columnID int64, upd models.ColumnUpdate) (*Pending, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}

	current, ok := e.store.Column(columnID)
	if !ok {
		return nil, invalid("column", ErrUnknownColumn)
	}
	if upd.Name != nil {
		name, err := ValidateColumnName(*upd.Name)
		if err != nil {
			return nil, err
		}
		if e.snapshotColumns().HasColumnName(name, columnID) {
			return nil, invalid("name", ErrDuplicateColumnName)
		}
		upd.Name = &name
	}
	if err := validateWIPLimit(upd.WIPLimit); err != nil {
		return nil, err
	}

	e.store.UpsertColumn(upd.Apply(current))
	projectID := e.store.ProjectID()

	return newPending(OpEditColumn, PolicyReload, func(ctx context.Context) (settleFunc, error) {
		col, err := e.svc.UpdateColumn(ctx, projectID, columnID, upd)
		if err != nil {
			return nil, fmt.Errorf("updating column %d: %w", columnID, err)
		}
		return func(m board.Mutator) bool {
			m.UpsertColumn(col)
			return false
		}, nil
	}), nil
}

// DeleteCandidates returns the columns that can receive the tasks of a
// column about to be deleted
func (e *Engine) DeleteCandidates(columnID int64) ([]models.Column, error) {
	if err := e.checkDeletable(columnID); err != nil {
		return nil, err
	}
	var out []models.Column
	for _, col := range e.store.Columns() {
		if col.ID != columnID {
			out = append(out, col)
		}
	}
	return out, nil
}

// DeleteColumn deletes a column and lets the backend migrate its tasks to
// the target column. The board is reloaded whether the call succeeds or not.
func (e *Engine) DeleteColumn(columnID, targetColumnID int64) (*Pending, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	if err := e.checkDeletable(columnID); err != nil {
		return nil, err
	}
	if _, ok := e.store.Column(targetColumnID); !ok || targetColumnID == columnID {
		return nil, invalid("target column", ErrInvalidMigrationTarget)
	}
	projectID := e.store.ProjectID()

	return newPending(OpDeleteColumn, PolicyReload, func(ctx context.Context) (settleFunc, error) {
		if err := e.svc.DeleteColumn(ctx, projectID, columnID, targetColumnID); err != nil {
			return nil, fmt.Errorf("deleting column %d: %w", columnID, err)
		}
		return func(m board.Mutator) bool {
			m.RemoveColumn(columnID)
			return true
		}, nil
	}), nil
}

func (e *Engine) checkDeletable(columnID int64) error {
	b := e.snapshotColumns()
	if b.GetColumnIndex(columnID) < 0 {
		return invalid("column", ErrUnknownColumn)
	}
	if ok, _ := b.CanDeleteColumn(columnID); !ok {
		return invalid("column", ErrLastColumn)
	}
	return nil
}

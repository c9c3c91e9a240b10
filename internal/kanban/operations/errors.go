package operations

import (
	"errors"
	"fmt"

	"wyboard/internal/kanban/board"
)

var (
	ErrColumnNameRequired     = errors.New("column name cannot be empty")
	ErrColumnNameTooLong      = fmt.Errorf("column name too long (max %d characters)", MaxColumnNameLength)
	ErrDuplicateColumnName    = errors.New("column name already exists")
	ErrInvalidWIPLimit        = errors.New("WIP limit must be at least 1")
	ErrLastColumn             = errors.New("cannot delete the only column in the project")
	ErrInvalidMigrationTarget = errors.New("select a different column to receive the tasks")
	ErrUnknownColumn          = board.ErrUnknownColumn
	ErrUnknownTask            = errors.New("unknown task")
	ErrTitleRequired          = errors.New("title is required")
	ErrColumnRequired         = errors.New("column is required")
	ErrAssigneeRequired       = errors.New("assignee is required")
	ErrInvalidProgress        = errors.New("progress must be between 0 and 100")
	ErrInvalidPriority        = errors.New("unknown priority")
	ErrInvalidDueDate         = errors.New("due date must be YYYY-MM-DD")
	ErrInvalidDrop            = errors.New("invalid drop position")

	// ErrBusy is returned by every mutating entry point while a reload runs
	ErrBusy = errors.New("board is reloading")

	// ErrNotDragging is returned when a drop arrives with no drag in progress
	ErrNotDragging = errors.New("no drag in progress")
)

// ValidationError is a rejected input. Nothing was mutated and no remote
// call was made.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// IsValidation reports whether err was a local validation failure
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

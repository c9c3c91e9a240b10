// Package remote is the request/response boundary to the project-management
// backend. The board engine only ever talks to the Service interface.
package remote

import (
	"context"

	"wyboard/internal/kanban/models"
)

// Service defines the backend operations consumed by the board engine.
// Errors are opaque to callers beyond success/failure; nothing is retried.
type Service interface {
	// ListColumns returns the columns of a project in any order.
	ListColumns(ctx context.Context, projectID int64) ([]models.Column, error)

	// ListTasks returns the tasks of one column in any order.
	ListTasks(ctx context.Context, columnID int64) ([]models.Task, error)

	// CreateColumn creates a column and returns the server representation.
	CreateColumn(ctx context.Context, projectID int64, req models.ColumnRequest) (models.Column, error)

	// UpdateColumn applies a partial update to a column.
	UpdateColumn(ctx context.Context, projectID, columnID int64, upd models.ColumnUpdate) (models.Column, error)

	// DeleteColumn deletes a column; the server migrates its tasks to targetColumnID.
	DeleteColumn(ctx context.Context, projectID, columnID, targetColumnID int64) error

	// ReorderColumns stores the full left-to-right column order of a project.
	ReorderColumns(ctx context.Context, projectID int64, columnIDs []int64) error

	// CreateTask creates a task.
	CreateTask(ctx context.Context, req models.TaskRequest) (models.Task, error)

	// UpdateTask replaces the editable fields of a task.
	UpdateTask(ctx context.Context, taskID int64, req models.TaskRequest) (models.Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, taskID int64) error

	// MoveTask moves a task to another column at a zero-based position.
	MoveTask(ctx context.Context, taskID, columnID int64, position int) (models.Task, error)

	// ReorderTask sets a task's zero-based position within its column.
	ReorderTask(ctx context.Context, taskID int64, newPosition int) (models.Task, error)

	// ListMembers returns the users of a project.
	ListMembers(ctx context.Context, projectID int64) ([]models.Member, error)
}

package operations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wyboard/internal/kanban/board"
	"wyboard/internal/kanban/models"
)

// TaskForm is the task editor's payload. ID is only used for updates.
// Priority and DueDate may be empty, meaning MEDIUM and today.
type TaskForm struct {
	ID                 int64
	Title              string
	Description        string
	Priority           string
	DueDate            string
	EstimatedHours     float64
	ActualHours        float64
	ProgressPercentage int
	Dependencies       string
	AssigneeID         int64
	ParentTaskID       *int64
	ColumnID           int64
}

// FormFromTask prefills a form for editing an existing task
func FormFromTask(t models.Task) TaskForm {
	return TaskForm{
		ID:                 t.ID,
		Title:              t.Title,
		Description:        t.Description,
		Priority:           string(t.Priority),
		DueDate:            t.DueDate,
		EstimatedHours:     t.EstimatedHours,
		ActualHours:        t.ActualHours,
		ProgressPercentage: t.ProgressPercentage,
		Dependencies:       t.Dependencies,
		AssigneeID:         t.AssigneeID,
		ParentTaskID:       t.ParentTaskID,
		ColumnID:           t.ColumnID,
	}
}

// buildTaskRequest validates a form against the board
func (e *Engine) buildTaskRequest(f TaskForm) (models.TaskRequest, error) {
	title := strings.TrimSpace(f.Title)
	if title == "" {
		return models.TaskRequest{}, invalid("title", ErrTitleRequired)
	}
	if f.ColumnID == 0 {
		return models.TaskRequest{}, invalid("column", ErrColumnRequired)
	}
	if _, ok := e.store.Column(f.ColumnID); !ok {
		return models.TaskRequest{}, invalid("column", ErrUnknownColumn)
	}
	if f.AssigneeID == 0 {
		return models.TaskRequest{}, invalid("assignee", ErrAssigneeRequired)
	}
	if f.ProgressPercentage < 0 || f.ProgressPercentage > 100 {
		return models.TaskRequest{}, invalid("progress", ErrInvalidProgress)
	}

	priority := models.PriorityMedium
	if strings.TrimSpace(f.Priority) != "" {
		p, ok := models.ParsePriority(f.Priority)
		if !ok {
			return models.TaskRequest{}, invalid("priority", ErrInvalidPriority)
		}
		priority = p
	}

	due := strings.TrimSpace(f.DueDate)
	if due == "" {
		due = e.now().Format(models.DateLayout)
	} else if _, err := time.Parse(models.DateLayout, due); err != nil {
		return models.TaskRequest{}, invalid("due date", ErrInvalidDueDate)
	}

	return models.TaskRequest{
		Title:              title,
		Description:        f.Description,
		Priority:           priority,
		DueDate:            due,
		EstimatedHours:     f.EstimatedHours,
		ActualHours:        f.ActualHours,
		ProgressPercentage: f.ProgressPercentage,
		Dependencies:       strings.TrimSpace(f.Dependencies),
		AssigneeID:         f.AssigneeID,
		ProjectID:          e.store.ProjectID(),
		ParentTaskID:       f.ParentTaskID,
		ColumnID:           f.ColumnID,
		DisplayOrder:       e.store.WIPCount(f.ColumnID),
	}, nil
}

// CreateTask validates the form and, once confirmed, inserts the server's
// task into its column
func (e *Engine) CreateTask(f TaskForm) (*Pending, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	req, err := e.buildTaskRequest(f)
	if err != nil {
		return nil, err
	}

	return newPending(OpCreateTask, PolicyReload, func(ctx context.Context) (settleFunc, error) {
		task, err := e.svc.CreateTask(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("creating task %q: %w", req.Title, err)
		}
		return func(m board.Mutator) bool {
			return !m.UpsertTask(task)
		}, nil
	}), nil
}

// UpdateTask applies the edited fields optimistically, then replaces the
// task with the server's copy
func (e *Engine) UpdateTask(f TaskForm) (*Pending, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	current, ok := e.store.Task(f.ID)
	if !ok {
		return nil, invalid("task", ErrUnknownTask)
	}
	req, err := e.buildTaskRequest(f)
	if err != nil {
		return nil, err
	}
	if req.ColumnID == current.ColumnID {
		req.DisplayOrder = current.DisplayOrder
	}

	e.store.UpsertTask(req.Merge(current))
	taskID := current.ID

	return newPending(OpUpdateTask, PolicyReload, func(ctx context.Context) (settleFunc, error) {
		task, err := e.svc.UpdateTask(ctx, taskID, req)
		if err != nil {
			return nil, fmt.Errorf("updating task %d: %w", taskID, err)
		}
		return func(m board.Mutator) bool {
			return !m.UpsertTask(task)
		}, nil
	}), nil
}

// DeleteTask removes the task optimistically. columnID may be zero, in which
// case the task's own column is used.
func (e *Engine) DeleteTask(taskID, columnID int64) (*Pending, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	task, ok := e.store.Task(taskID)
	if !ok {
		return nil, invalid("task", ErrUnknownTask)
	}
	if columnID == 0 {
		columnID = task.ColumnID
	}
	if !e.store.RemoveTask(taskID, columnID) {
		return nil, invalid("column", ErrUnknownColumn)
	}

	return newPending(OpDeleteTask, PolicyReload, func(ctx context.Context) (settleFunc, error) {
		if err := e.svc.DeleteTask(ctx, taskID); err != nil {
			return nil, fmt.Errorf("deleting task %d: %w", taskID, err)
		}
		return nil, nil
	}), nil
}
